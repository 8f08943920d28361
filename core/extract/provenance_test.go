package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radekw/apollo/model"
)

func TestSentenceIndexFor(t *testing.T) {
	sentences := []model.Sentence{
		{Index: 0, Start: 0, End: 20, Text: "First sentence here."},
		{Index: 1, Start: 21, End: 40, Text: "Second one follows."},
		{Index: 2, Start: 45, End: 60, Text: "Third, after a gap."},
	}

	t.Run("Span inside a sentence", func(t *testing.T) {
		index := sentenceIndexFor(sentences, model.Span{Start: 25, End: 31})

		assert.Equal(t, 1, index, "Expected the containing sentence index")
	})

	t.Run("Span starting on a sentence boundary", func(t *testing.T) {
		index := sentenceIndexFor(sentences, model.Span{Start: 21, End: 27})

		assert.Equal(t, 1, index, "Expected the sentence starting at the span start")
	})

	t.Run("Span in a gap between sentences", func(t *testing.T) {
		index := sentenceIndexFor(sentences, model.Span{Start: 42, End: 44})

		assert.Equal(t, 1, index, "Expected the nearest preceding sentence for a gap span")
	})

	t.Run("Span past the last sentence", func(t *testing.T) {
		index := sentenceIndexFor(sentences, model.Span{Start: 200, End: 210})

		assert.Equal(t, 2, index, "Expected the last sentence for a span past the end")
	})

	t.Run("Span before the first sentence", func(t *testing.T) {
		shifted := []model.Sentence{
			{Index: 0, Start: 10, End: 30, Text: "Indented first line."},
		}

		index := sentenceIndexFor(shifted, model.Span{Start: 2, End: 5})

		assert.Equal(t, 0, index, "Expected the first sentence for a span before it")
	})

	t.Run("No sentences", func(t *testing.T) {
		index := sentenceIndexFor(nil, model.Span{Start: 0, End: 5})

		assert.Equal(t, 0, index, "Expected index 0 when there are no sentences")
	})
}
