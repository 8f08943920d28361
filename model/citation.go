package model

import "github.com/google/uuid"

// Citation is the provenance record attached to every emitted entity,
// alias and relationship. It is the sole link back to the source
// document: which document, which sentence, which character range.
type Citation struct {
	DocumentRID   uuid.UUID `json:"document_rid"`
	SentenceIndex int       `json:"sentence_index"`
	Span
}

// Sentence is the input unit of the extraction engine: one sentence of
// cleaned text with its stable character offsets into the original
// document and a monotonically increasing index.
type Sentence struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}
