package extract

import (
	"sort"
	"strings"

	"github.com/radekw/apollo/model"
)

// triggerRule promotes a co-occurring entity-type pair to a typed
// relationship when one of its lexical trigger patterns appears between
// the two mentions. Directionality is fixed by the rule: the subject is
// always the SubjectType-typed endpoint, never inferred from word order.
type triggerRule struct {
	SubjectType model.EntityType
	ObjectType  model.EntityType
	Predicate   model.Predicate
	Triggers    []string
}

var triggerRules = []triggerRule{
	{
		SubjectType: model.EntityTypeDisease,
		ObjectType:  model.EntityTypeBiomarker,
		Predicate:   model.PredicateHasBiomarker,
		Triggers:    []string{"characterized by", "biomarker", "marker of"},
	},
	{
		SubjectType: model.EntityTypeDisease,
		ObjectType:  model.EntityTypeProtein,
		Predicate:   model.PredicateHasBiomarker,
		Triggers:    []string{"characterized by", "biomarker", "marker of"},
	},
	{
		SubjectType: model.EntityTypeProtein,
		ObjectType:  model.EntityTypeBiomarker,
		Predicate:   model.PredicateIsA,
		Triggers:    []string{"is a", "type of"},
	},
	{
		SubjectType: model.EntityTypeProtein,
		ObjectType:  model.EntityTypeBrainRegion,
		Predicate:   model.PredicateFoundIn,
		Triggers:    []string{"found in", "in the", "localized to"},
	},
	{
		SubjectType: model.EntityTypeBiomarker,
		ObjectType:  model.EntityTypeBrainRegion,
		Predicate:   model.PredicateFoundIn,
		Triggers:    []string{"found in", "in the", "localized to"},
	},
}

// ruleFor returns the trigger rule for an unordered type pair.
func ruleFor(a, b model.EntityType) (triggerRule, bool) {
	for _, rule := range triggerRules {
		if (rule.SubjectType == a && rule.ObjectType == b) || (rule.SubjectType == b && rule.ObjectType == a) {
			return rule, true
		}
	}
	return triggerRule{}, false
}

// inferRelationships proposes typed triples between entities whose
// mentions co-occur within one sentence. A pair is promoted only when a
// trigger pattern for its type pair appears between the two spans:
// silence is preferred to a low-confidence guess. Confidence is the
// product of the endpoint mention confidences and the fixed trigger
// weight. Duplicate triples within the document are merged, keeping the
// maximum confidence and the union of evidence spans.
func (e *Extractor) inferRelationships(sentences []model.Sentence, kept []model.Mention, entities []*model.ResolvedEntity) []*model.RelationshipTriple {
	identity := make(map[string]*model.ResolvedEntity, len(entities))
	for _, entity := range entities {
		identity[entity.CanonicalName+"\x00"+string(entity.Type)] = entity
	}

	merged := make(map[string]*model.RelationshipTriple)
	var order []string

	for _, sentence := range sentences {
		inSentence := resolvedMentionsIn(sentence, kept, identity)

		for i := 0; i < len(inSentence); i++ {
			for j := i + 1; j < len(inSentence); j++ {
				a, b := inSentence[i], inSentence[j]
				if a.CanonicalName() == b.CanonicalName() && a.Type == b.Type {
					continue
				}

				rule, ok := ruleFor(a.Type, b.Type)
				if !ok {
					continue
				}

				between := textBetween(sentence, a.Span, b.Span)
				if !containsTrigger(between, rule.Triggers) {
					continue
				}

				subject, object := a, b
				if b.Type == rule.SubjectType && a.Type != rule.SubjectType {
					subject, object = b, a
				}

				evidence := model.Span{
					Start: min(a.Start, b.Start),
					End:   max(a.End, b.End),
				}
				triple := &model.RelationshipTriple{
					Subject:     subject.CanonicalName(),
					SubjectType: subject.Type,
					Predicate:   rule.Predicate,
					Object:      object.CanonicalName(),
					ObjectType:  object.Type,
					Confidence:  a.Confidence * b.Confidence * e.config.TriggerWeight,
					Evidence:    []model.Span{evidence},
				}

				key := triple.Key()
				if existing, exists := merged[key]; exists {
					if triple.Confidence > existing.Confidence {
						existing.Confidence = triple.Confidence
					}
					existing.Evidence = mergeSpans(existing.Evidence, evidence)
				} else {
					merged[key] = triple
					order = append(order, key)
				}
			}
		}
	}

	triples := make([]*model.RelationshipTriple, 0, len(order))
	for _, key := range order {
		triples = append(triples, merged[key])
	}
	return triples
}

// resolvedMentionsIn returns the resolved mentions inside one sentence,
// restricted to spans that survived into the resolved entity set (alias
// evidence spans did not).
func resolvedMentionsIn(sentence model.Sentence, kept []model.Mention, identity map[string]*model.ResolvedEntity) []model.Mention {
	var inSentence []model.Mention
	for _, m := range kept {
		if m.Start < sentence.Start || m.End > sentence.End {
			continue
		}
		entity, ok := identity[m.CanonicalName()+"\x00"+string(m.Type)]
		if !ok || !entityOwnsSpan(entity, m.Span) {
			continue
		}
		inSentence = append(inSentence, m)
	}
	sort.Slice(inSentence, func(i, j int) bool { return inSentence[i].Start < inSentence[j].Start })
	return inSentence
}

func entityOwnsSpan(entity *model.ResolvedEntity, span model.Span) bool {
	for _, s := range entity.Spans {
		if s == span {
			return true
		}
	}
	return false
}

// textBetween returns the lowercased sentence text between two spans.
func textBetween(sentence model.Sentence, a, b model.Span) string {
	start, end := a.End, b.Start
	if b.End < a.Start {
		start, end = b.End, a.Start
	}
	if end <= start {
		return ""
	}
	return strings.ToLower(sentence.Text[start-sentence.Start : end-sentence.Start])
}

func containsTrigger(between string, triggers []string) bool {
	for _, trigger := range triggers {
		if strings.Contains(between, trigger) {
			return true
		}
	}
	return false
}

// mergeSpans adds span to spans unless already present.
func mergeSpans(spans []model.Span, span model.Span) []model.Span {
	for _, s := range spans {
		if s == span {
			return spans
		}
	}
	return append(spans, span)
}
