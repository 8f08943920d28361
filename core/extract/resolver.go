package extract

import (
	"sort"

	"github.com/radekw/apollo/model"
)

// resolveMentions reduces the overlapping candidate stream to a
// non-overlapping partition of the text by span.
//
// Candidates are ordered by start offset, then longer spans first (a
// multi-word name must not be fragmented into its words), then lexicon
// before model (curated lists are the higher-precision signal), then
// higher confidence first, then canonical name for a deterministic
// total order. A greedy sweep then accepts each candidate whose span
// does not overlap an already-accepted one.
func resolveMentions(mentions []model.Mention) []model.Mention {
	if len(mentions) == 0 {
		return nil
	}

	candidates := make([]model.Mention, len(mentions))
	copy(candidates, mentions)

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Source != b.Source {
			return a.Source == model.MentionSourceLexicon
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.CanonicalName() < b.CanonicalName()
	})

	var accepted []model.Mention
	lastEnd := -1
	for _, candidate := range candidates {
		if candidate.Start < lastEnd {
			continue
		}
		accepted = append(accepted, candidate)
		lastEnd = candidate.End
	}

	return accepted
}

// groupMentions folds the non-overlapping mentions into one
// ResolvedEntity per canonical identity, accumulating all spans. The
// canonical name is lexicon-derived when a lexicon match exists;
// model-only mentions group by exact surface form.
func groupMentions(kept []model.Mention) []*model.ResolvedEntity {
	byIdentity := make(map[string]*model.ResolvedEntity)
	var order []string

	for _, mention := range kept {
		key := mention.CanonicalName() + "\x00" + string(mention.Type)
		entity, exists := byIdentity[key]
		if !exists {
			entity = &model.ResolvedEntity{
				CanonicalName: mention.CanonicalName(),
				Type:          mention.Type,
			}
			byIdentity[key] = entity
			order = append(order, key)
		}
		entity.Spans = append(entity.Spans, mention.Span)
		if mention.Confidence > entity.Confidence {
			entity.Confidence = mention.Confidence
		}
	}

	entities := make([]*model.ResolvedEntity, 0, len(order))
	for _, key := range order {
		entities = append(entities, byIdentity[key])
	}
	return entities
}
