package extract

import (
	"log/slog"

	"github.com/radekw/apollo/model"
)

// detectMentions produces the union of the model-derived and
// lexicon-derived candidate streams. The streams are generated
// independently, may overlap, and are not merged here; that is the
// resolver's job.
//
// A failing recognizer is treated as unavailable, not transient: the
// failure is logged once per Extractor and detection degrades to
// lexicon-only without retry.
func (e *Extractor) detectMentions(sentences []model.Sentence) []model.Mention {
	var mentions []model.Mention

	if e.recognizer != nil {
		predicted, err := e.recognizer.Predict(sentences)
		if err != nil {
			e.degradeOnce.Do(func() {
				e.log.Warn("statistical recognizer unavailable, continuing lexicon-only", slog.String("error", err.Error()))
			})
		} else {
			mentions = append(mentions, predicted...)
		}
	}

	for _, sentence := range sentences {
		mentions = append(mentions, e.index.ScanSentence(sentence)...)
	}

	return mentions
}
