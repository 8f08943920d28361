package extract

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radekw/apollo/model"
)

func TestInferRelationships(t *testing.T) {
	documentRID := uuid.New()
	e := testExtractor(nil)

	t.Run("Trigger between disease and protein", func(t *testing.T) {
		text := "Alzheimer's disease is characterized by amyloid beta."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Relationships))

		triple := batch.Relationships[0]
		assert.Equal(t, "Alzheimer's Disease", triple.Subject)
		assert.Equal(t, model.PredicateHasBiomarker, triple.Predicate)
		assert.Equal(t, "amyloid beta", triple.Object)
		assert.InDelta(t, 0.9, triple.Confidence, 0.0001)
		assert.Equal(t, 0, triple.Citation.SentenceIndex)
		assert.Equal(t, documentRID, triple.Citation.DocumentRID)
	})

	t.Run("Direction is fixed by type, not word order", func(t *testing.T) {
		text := "Amyloid beta is a biomarker of Alzheimer's disease."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Relationships))

		triple := batch.Relationships[0]
		assert.Equal(t, "Alzheimer's Disease", triple.Subject, "Expected the disease to be the subject")
		assert.Equal(t, model.PredicateHasBiomarker, triple.Predicate)
		assert.Equal(t, "amyloid beta", triple.Object)
	})

	t.Run("Protein is a biomarker", func(t *testing.T) {
		text := "Amyloid beta is a core biomarker."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Relationships))

		triple := batch.Relationships[0]
		assert.Equal(t, "amyloid beta", triple.Subject)
		assert.Equal(t, model.PredicateIsA, triple.Predicate)
		assert.Equal(t, "core biomarker", triple.Object)
	})

	t.Run("Two proteins in one region give two triples", func(t *testing.T) {
		text := "Tau and p-tau are found in the hippocampus."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 2, len(batch.Relationships))

		assert.Equal(t, "tau", batch.Relationships[0].Subject)
		assert.Equal(t, model.PredicateFoundIn, batch.Relationships[0].Predicate)
		assert.Equal(t, "hippocampus", batch.Relationships[0].Object)

		assert.Equal(t, "p-tau", batch.Relationships[1].Subject)
		assert.Equal(t, model.PredicateFoundIn, batch.Relationships[1].Predicate)
		assert.Equal(t, "hippocampus", batch.Relationships[1].Object)
	})

	t.Run("Duplicate triples merge with evidence union", func(t *testing.T) {
		text := "Tau is found in the hippocampus. Tau is localized to the hippocampus."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Relationships))

		triple := batch.Relationships[0]
		assert.Equal(t, "tau", triple.Subject)
		require.Equal(t, 2, len(triple.Evidence), "Expected the evidence spans of both sentences")
		assert.Equal(t, 0, triple.Citation.SentenceIndex)
	})

	t.Run("Co-occurrence without trigger stays silent", func(t *testing.T) {
		text := "Tau and the hippocampus were examined separately."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		assert.Empty(t, batch.Relationships)
		assert.Equal(t, 2, len(batch.Entities))
	})

	t.Run("Unrelated type pair stays silent", func(t *testing.T) {
		text := "Memory loss is characterized by tau."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		assert.Empty(t, batch.Relationships)
	})

	t.Run("Trigger must sit between the mentions", func(t *testing.T) {
		text := "Tau and the hippocampus were found in every sample."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		assert.Empty(t, batch.Relationships, "Expected triggers after both mentions to be ignored")
	})

	t.Run("Mentions in different sentences never pair", func(t *testing.T) {
		text := "Tau was measured. The hippocampus is found in the medial temporal region."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		assert.Empty(t, batch.Relationships)
	})
}

func TestRuleFor(t *testing.T) {
	t.Run("Matches unordered pairs", func(t *testing.T) {
		rule, ok := ruleFor(model.EntityTypeProtein, model.EntityTypeDisease)
		require.True(t, ok)
		assert.Equal(t, model.PredicateHasBiomarker, rule.Predicate)

		reversed, ok := ruleFor(model.EntityTypeDisease, model.EntityTypeProtein)
		require.True(t, ok)
		assert.Equal(t, rule.Predicate, reversed.Predicate)
	})

	t.Run("No rule for uncovered pairs", func(t *testing.T) {
		_, ok := ruleFor(model.EntityTypeSymptom, model.EntityTypeProtein)
		assert.False(t, ok)

		_, ok = ruleFor(model.EntityTypeProtein, model.EntityTypeProtein)
		assert.False(t, ok)
	})
}
