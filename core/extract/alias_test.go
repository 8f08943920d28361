package extract

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radekw/apollo/model"
)

func TestDetectAliases(t *testing.T) {
	documentRID := uuid.New()
	e := testExtractor(nil)

	t.Run("Long form followed by short form", func(t *testing.T) {
		text := "Alzheimer's disease (AD) is a progressive disorder."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Aliases))

		alias := batch.Aliases[0]
		assert.Equal(t, "AD", alias.Alias)
		assert.Equal(t, "Alzheimer's Disease", alias.CanonicalName)
		assert.Equal(t, model.EntityTypeDisease, alias.EntityType)
		assert.Equal(t, 21, alias.Evidence.Start)
		assert.Equal(t, 23, alias.Evidence.End)
		assert.Equal(t, 0, alias.Citation.SentenceIndex)
		assert.Equal(t, documentRID, alias.Citation.DocumentRID)
	})

	t.Run("Short form followed by long form", func(t *testing.T) {
		text := "MCI (mild cognitive impairment) was assessed at baseline."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Aliases))

		alias := batch.Aliases[0]
		assert.Equal(t, "MCI", alias.Alias)
		assert.Equal(t, "Mild Cognitive Impairment", alias.CanonicalName)
		assert.Equal(t, model.EntityTypeSyndrome, alias.EntityType)
		assert.Equal(t, 0, alias.Evidence.Start)
		assert.Equal(t, 3, alias.Evidence.End)

		// The long form keeps its entity.
		require.Equal(t, 1, len(batch.Entities))
		assert.Equal(t, "Mild Cognitive Impairment", batch.Entities[0].CanonicalName)
	})

	t.Run("Short form suppressed at evidence location only", func(t *testing.T) {
		text := "Alzheimer's disease (AD) is progressive. AD affects memory."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Aliases))

		// The parenthetical AD is alias evidence, the later AD stays an
		// entity of its own.
		require.Equal(t, 2, len(batch.Entities))
		assert.Equal(t, "Alzheimer's Disease", batch.Entities[0].CanonicalName)
		assert.Equal(t, "AD", batch.Entities[1].CanonicalName)
		require.Equal(t, 1, len(batch.Entities[1].Spans))
		assert.Equal(t, 1, batch.Entities[1].Citation.SentenceIndex)
	})

	t.Run("Short form entity dropped when evidence is its only span", func(t *testing.T) {
		text := "Alzheimer's disease (AD) is progressive."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 1, len(batch.Entities))
		assert.Equal(t, "Alzheimer's Disease", batch.Entities[0].CanonicalName)
	})

	t.Run("Same short form aliases two entities", func(t *testing.T) {
		text := "Alzheimer's disease (AD) is common. Alcohol dependence (AD) is treatable."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		require.Equal(t, 2, len(batch.Aliases))
		assert.Equal(t, "Alzheimer's Disease", batch.Aliases[0].CanonicalName)
		assert.Equal(t, "Alcohol Dependence", batch.Aliases[1].CanonicalName)
		assert.Equal(t, "AD", batch.Aliases[0].Alias)
		assert.Equal(t, "AD", batch.Aliases[1].Alias)
		assert.NotEqual(t, batch.Aliases[0].Evidence, batch.Aliases[1].Evidence, "Expected distinct evidence spans")
	})

	t.Run("Lowercase parenthetical is not a short form", func(t *testing.T) {
		text := "The protein (tau) accumulates."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		assert.Empty(t, batch.Aliases)
		require.Equal(t, 1, len(batch.Entities))
		assert.Equal(t, "tau", batch.Entities[0].CanonicalName)
	})

	t.Run("Non host entity type gets no alias", func(t *testing.T) {
		text := "Memory loss (ML) was reported."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		assert.Empty(t, batch.Aliases)
	})

	t.Run("Parenthetical without adjacent entity", func(t *testing.T) {
		text := "The cohort (N=42) was recruited."

		batch, err := e.Process(documentRID, SplitSentences(text))

		require.NoError(t, err)
		assert.Empty(t, batch.Aliases)
	})
}

func TestIsShortForm(t *testing.T) {
	e := testExtractor(nil)

	assert.True(t, e.isShortForm("AD"))
	assert.True(t, e.isShortForm("MCI"))
	assert.True(t, e.isShortForm("P-301L"), "Expected digits and hyphens to be allowed")
	assert.True(t, e.isShortForm("ApoE4"))

	assert.False(t, e.isShortForm(""))
	assert.False(t, e.isShortForm("tau"), "Expected all-lowercase to be rejected")
	assert.False(t, e.isShortForm("TOOLONGFORM"), "Expected length cap to hold")
	assert.False(t, e.isShortForm("A D"), "Expected internal spaces to be rejected")
	assert.False(t, e.isShortForm("N=42"), "Expected symbols to be rejected")
	assert.False(t, e.isShortForm("123"), "Expected at least one letter")
}
