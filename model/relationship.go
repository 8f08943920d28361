package model

import "time"

// Predicate is the closed set of relationship types inferred between
// co-occurring entities.
type Predicate string

const (
	PredicateHasBiomarker Predicate = "HAS_BIOMARKER"
	PredicateIsA          Predicate = "IS_A"
	PredicateFoundIn      Predicate = "FOUND_IN"
)

// RelationshipTriple is a directed, typed, evidenced link between two
// resolved entities. Subject and object each reference a ResolvedEntity
// in the same document's output by canonical name and type.
type RelationshipTriple struct {
	ID int64 `json:"id,omitempty"`
	// SubjectID and ObjectID are the persisted entity references, set
	// by the storage layer after the endpoints are stored.
	SubjectID   int64      `json:"subject_id,omitempty"`
	ObjectID    int64      `json:"object_id,omitempty"`
	Subject     string     `json:"subject"`
	SubjectType EntityType `json:"subject_type"`
	Predicate   Predicate  `json:"predicate"`
	Object      string     `json:"object"`
	ObjectType  EntityType `json:"object_type"`
	Confidence  float64    `json:"confidence"`
	Evidence    []Span     `json:"evidence_spans"`
	Citation    Citation   `json:"citation"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
}

// Key identifies a triple up to evidence: two triples with the same key
// within one document are merged, keeping the maximum confidence and
// the union of evidence spans.
func (r *RelationshipTriple) Key() string {
	return r.Subject + "\x00" + string(r.Predicate) + "\x00" + r.Object
}
