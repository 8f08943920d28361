package extract

import (
	"sort"

	"github.com/google/uuid"

	"github.com/radekw/apollo/model"
)

// bindProvenance attaches citations to every record right before the
// batch is handed to storage. This is the single point where document
// identity enters the extraction core; everything upstream operates on
// offset-relative text only.
//
// Entities cite their first-occurrence span, aliases their evidence
// span, relationships their triggering sentence range. Output order is
// made deterministic here so re-extraction of identical input yields an
// identical batch.
func bindProvenance(documentRID uuid.UUID, sentences []model.Sentence, entities []*model.ResolvedEntity, aliases []*model.Alias, relationships []*model.RelationshipTriple) {
	for _, entity := range entities {
		sort.Slice(entity.Spans, func(i, j int) bool { return entity.Spans[i].Start < entity.Spans[j].Start })
		first := entity.Spans[0]
		entity.Citation = model.Citation{
			DocumentRID:   documentRID,
			SentenceIndex: sentenceIndexFor(sentences, first),
			Span:          first,
		}
	}
	sort.Slice(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if a.Spans[0].Start != b.Spans[0].Start {
			return a.Spans[0].Start < b.Spans[0].Start
		}
		return a.CanonicalName < b.CanonicalName
	})

	for _, alias := range aliases {
		alias.Citation = model.Citation{
			DocumentRID:   documentRID,
			SentenceIndex: sentenceIndexFor(sentences, alias.Evidence),
			Span:          alias.Evidence,
		}
	}
	sort.Slice(aliases, func(i, j int) bool { return aliases[i].Evidence.Start < aliases[j].Evidence.Start })

	for _, rel := range relationships {
		sort.Slice(rel.Evidence, func(i, j int) bool { return rel.Evidence[i].Start < rel.Evidence[j].Start })
		first := rel.Evidence[0]
		rel.Citation = model.Citation{
			DocumentRID:   documentRID,
			SentenceIndex: sentenceIndexFor(sentences, first),
			Span:          first,
		}
	}
	sort.Slice(relationships, func(i, j int) bool {
		a, b := relationships[i], relationships[j]
		if a.Evidence[0].Start != b.Evidence[0].Start {
			return a.Evidence[0].Start < b.Evidence[0].Start
		}
		return a.Key() < b.Key()
	})
}

// sentenceIndexFor returns the index of the sentence containing the
// span's start offset. A span outside every sentence cites the nearest
// preceding sentence, so an out-of-range start never fabricates a
// citation into an unrelated later sentence.
func sentenceIndexFor(sentences []model.Sentence, span model.Span) int {
	nearest := 0
	for _, s := range sentences {
		if span.Start >= s.Start && span.Start < s.End {
			return s.Index
		}
		if span.Start >= s.End {
			nearest = s.Index
		}
	}
	return nearest
}
