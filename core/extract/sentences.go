package extract

import "github.com/radekw/apollo/model"

// SplitSentences segments cleaned text into sentences with stable
// character offsets: each returned sentence satisfies
// text[s.Start:s.End] == s.Text. A sentence ends after '.', '!' or '?'
// followed by whitespace or end of text. Callers that already receive
// sentence-segmented text do not need this.
func SplitSentences(text string) []model.Sentence {
	var sentences []model.Sentence

	start := -1
	index := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
				continue
			}
			start = i
		}

		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(text) && !isBoundary(text[i+1]) {
			continue
		}

		sentences = append(sentences, model.Sentence{
			Index: index,
			Start: start,
			End:   i + 1,
			Text:  text[start : i+1],
		})
		index++
		start = -1
	}

	// Trailing text without terminal punctuation still forms a sentence.
	if start >= 0 {
		end := len(text)
		for end > start && isBoundary(text[end-1]) {
			end--
		}
		if end > start {
			sentences = append(sentences, model.Sentence{
				Index: index,
				Start: start,
				End:   end,
				Text:  text[start:end],
			})
		}
	}

	return sentences
}

func isBoundary(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
