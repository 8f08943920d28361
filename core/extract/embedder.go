package extract

import (
	"fmt"

	"github.com/knights-analytics/hugot"

	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
)

// EmbedFunc generates an embedding vector for a piece of text. Used to
// embed canonical entity names for cross-document similarity search.
type EmbedFunc func(text string) ([]float32, error)

// embeddingModelName produces 384-dimensional sentence embeddings.
const embeddingModelName = "sentence-transformers/all-MiniLM-L6-v2"

// EmbeddingDim is the dimensionality of NewNameEmbedder vectors.
const EmbeddingDim = 384

// NewNameEmbedder creates an embedder over the all-MiniLM-L6-v2
// sentence transformer, downloading the model on first use.
func NewNameEmbedder() (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(embeddingModelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "name-embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create embedding pipeline: %w", err)
	}

	return func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}, nil
}

// EmbedEntities fills in embeddings for the canonical names of a batch
// of resolved entities. Kept separate from extraction so the engine
// itself stays model-optional.
func EmbedEntities(embedder EmbedFunc, entities []*model.ResolvedEntity) ([][]float32, error) {
	embeddings := make([][]float32, len(entities))
	for i, entity := range entities {
		embedding, err := embedder(entity.CanonicalName)
		if err != nil {
			return nil, fmt.Errorf("embedding for entity %q: %w", entity.CanonicalName, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}
