// Package extract implements the entity and relationship extraction
// engine: mention detection from a statistical recognizer and a curated
// lexicon, span resolution, alias linking, relationship inference and
// provenance binding. One Extractor processes one document per call,
// synchronously; independent calls may run concurrently since the only
// shared state is the read-only lexicon index.
package extract

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/radekw/apollo/core/lexicon"
	"github.com/radekw/apollo/helper"
	"github.com/radekw/apollo/model"
)

// MalformedInputError reports cleaned text whose offsets or sentence
// indexes cannot be trusted. Offsets are load-bearing for every
// downstream stage, so the whole document is rejected.
type MalformedInputError struct {
	DocumentRID   uuid.UUID
	SentenceIndex int
	Reason        string
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input in document %s at sentence %d: %s", e.DocumentRID, e.SentenceIndex, e.Reason)
}

// Extractor runs the full extraction pipeline for one document at a
// time. It holds no per-document state between calls.
type Extractor struct {
	config     model.ExtractorConfig
	index      *lexicon.Index
	recognizer Recognizer
	log        *slog.Logger

	// degradeOnce gates the one-time "recognizer unavailable" warning.
	degradeOnce sync.Once
}

// NewExtractor creates an extraction pipeline over the given lexicon
// index. recognizer may be nil for deliberate lexicon-only operation.
func NewExtractor(index *lexicon.Index, recognizer Recognizer, config model.ExtractorConfig, logger *slog.Logger) *Extractor {
	if !config.UseRecognizer {
		recognizer = nil
	}
	return &Extractor{
		config:     config,
		index:      index,
		recognizer: recognizer,
		log:        logger,
	}
}

// Process extracts entities, aliases and relationships from one
// document's cleaned sentences and returns them as a single batch with
// citations attached. The call is all-or-nothing: on malformed input no
// partial batch is emitted.
func (e *Extractor) Process(documentRID uuid.UUID, sentences []model.Sentence) (*model.Batch, error) {
	if err := validateSentences(documentRID, sentences); err != nil {
		return nil, helper.NewError("validate input", err)
	}

	mentions := e.detectMentions(sentences)
	kept := resolveMentions(mentions)
	entities := groupMentions(kept)
	aliases, entities := e.detectAliases(sentences, kept, entities)
	relationships := e.inferRelationships(sentences, kept, entities)

	bindProvenance(documentRID, sentences, entities, aliases, relationships)

	return &model.Batch{
		DocumentRID:   documentRID,
		Entities:      entities,
		Aliases:       aliases,
		Relationships: relationships,
	}, nil
}

// validateSentences fails fast on missing offsets or index gaps.
func validateSentences(documentRID uuid.UUID, sentences []model.Sentence) error {
	previousEnd := 0
	for i, s := range sentences {
		if s.Index != i {
			return &MalformedInputError{
				DocumentRID:   documentRID,
				SentenceIndex: s.Index,
				Reason:        fmt.Sprintf("sentence index gap, expected %d", i),
			}
		}
		if s.End <= s.Start {
			return &MalformedInputError{
				DocumentRID:   documentRID,
				SentenceIndex: s.Index,
				Reason:        fmt.Sprintf("invalid offset range [%d, %d)", s.Start, s.End),
			}
		}
		if len(s.Text) != s.End-s.Start {
			return &MalformedInputError{
				DocumentRID:   documentRID,
				SentenceIndex: s.Index,
				Reason:        fmt.Sprintf("text length %d does not match offset range [%d, %d)", len(s.Text), s.Start, s.End),
			}
		}
		if s.Start < previousEnd {
			return &MalformedInputError{
				DocumentRID:   documentRID,
				SentenceIndex: s.Index,
				Reason:        fmt.Sprintf("offset %d overlaps previous sentence ending at %d", s.Start, previousEnd),
			}
		}
		previousEnd = s.End
	}
	return nil
}
