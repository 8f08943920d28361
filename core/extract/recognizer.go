package extract

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
)

// Recognizer is the pluggable statistical entity recognizer. Predict
// runs the model over all sentences of one document in a single batch
// (amortizing model-invocation overhead) and returns typed mentions
// with document-absolute spans. A nil Recognizer means lexicon-only
// detection.
type Recognizer interface {
	Predict(sentences []model.Sentence) ([]model.Mention, error)
}

// HugotRecognizer runs a token-classification NER model through hugot.
type HugotRecognizer struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
}

// nerModelName is the biomedical NER model pulled from HuggingFace.
const nerModelName = "KnightsAnalytics/distilbert-NER"

// NewHugotRecognizer downloads the NER model if needed and builds the
// token-classification pipeline. The Go backend runs inference on CPU;
// selecting DeviceGPU requires an onnxruntime-enabled build and is
// rejected here rather than silently ignored.
func NewHugotRecognizer(device model.Device) (*HugotRecognizer, error) {
	if device == model.DeviceGPU {
		return nil, fmt.Errorf("gpu inference requires an onnxruntime-enabled build, use device %q", model.DeviceCPU)
	}

	modelPath, err := helper.PrepareModel(nerModelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return &HugotRecognizer{
		session:  session,
		pipeline: nerPipeline,
	}, nil
}

// Predict runs NER over all sentences in one batch. Labels outside the
// closed entity type set map to OTHER; BIO prefixes are stripped.
func (r *HugotRecognizer) Predict(sentences []model.Sentence) ([]model.Mention, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}

	result, err := r.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to run NER: %w", err)
	}

	var mentions []model.Mention
	for i, sentenceEntities := range result.Entities {
		if i >= len(sentences) {
			break
		}
		base := sentences[i].Start

		for _, entity := range sentenceEntities {
			start := base + int(entity.Start)
			end := base + int(entity.End)
			if end <= start {
				continue
			}

			mentions = append(mentions, model.Mention{
				Span:       model.Span{Start: start, End: end},
				Surface:    strings.TrimSpace(entity.Word),
				Type:       model.EntityTypeFromLabel(entity.Entity),
				Source:     model.MentionSourceModel,
				Confidence: float64(entity.Score),
			})
		}
	}

	return mentions, nil
}

// Close releases the underlying hugot session.
func (r *HugotRecognizer) Close() error {
	if r.session == nil {
		return nil
	}
	return r.session.Destroy()
}
