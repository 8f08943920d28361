package model

import "time"

// LexiconEntry is one row of a curated entity list: a surface form, the
// canonical name it resolves to, and its semantic type. The five
// curated lists (diseases, symptoms, proteins, brain regions, acronyms)
// all load into this shape.
type LexiconEntry struct {
	ID            int64      `json:"id,omitempty"`
	Surface       string     `json:"surface"`
	CanonicalName string     `json:"canonical_name"`
	Type          EntityType `json:"entity_type"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
}
