package model

import "github.com/google/uuid"

// Batch is the fully materialized output of one document-processing
// call, handed to the storage layer as a unit. Extraction is
// all-or-nothing: a batch is either complete or not emitted at all.
type Batch struct {
	DocumentRID   uuid.UUID             `json:"document_rid"`
	Entities      []*ResolvedEntity     `json:"entities"`
	Aliases       []*Alias              `json:"aliases"`
	Relationships []*RelationshipTriple `json:"relationships"`
}
