package model

import "time"

// Alias links a short form (usually a parenthetical acronym) to a
// canonical entity via in-text evidence. The canonical name and type
// together reference a ResolvedEntity in the same document's output;
// an alias never outlives the document scope unless the storage layer
// promotes it.
type Alias struct {
	ID int64 `json:"id,omitempty"`
	// EntityID is the persisted host entity reference, set by the
	// storage layer. In-memory results identify the host by canonical
	// name and type instead.
	EntityID      int64      `json:"entity_id,omitempty"`
	CanonicalName string     `json:"canonical_name"`
	EntityType    EntityType `json:"entity_type"`
	Alias         string     `json:"alias"`
	Evidence      Span       `json:"evidence_span"`
	Citation      Citation   `json:"citation"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
}
