package model

import (
	"strings"
	"time"
)

// EntityType classifies an extracted entity. The set is closed: labels
// coming out of a statistical model that do not map to one of these
// values are folded into EntityTypeOther, never dropped.
type EntityType string

const (
	EntityTypeDisease        EntityType = "DISEASE"
	EntityTypeSymptom        EntityType = "SYMPTOM"
	EntityTypeProtein        EntityType = "PROTEIN"
	EntityTypeBrainRegion    EntityType = "BRAIN_REGION"
	EntityTypeBiomarker      EntityType = "BIOMARKER"
	EntityTypeSyndrome       EntityType = "SYNDROME"
	EntityTypeNeuropathology EntityType = "NEUROPATHOLOGIC"
	EntityTypeAcronym        EntityType = "ACRONYM"
	EntityTypeOther          EntityType = "OTHER"
)

// knownEntityTypes maps normalized model labels to the closed type set.
// Model vocabularies differ; common biomedical label spellings are
// included alongside the canonical names.
var knownEntityTypes = map[string]EntityType{
	"DISEASE":         EntityTypeDisease,
	"DISO":            EntityTypeDisease,
	"SYMPTOM":         EntityTypeSymptom,
	"SIGN_SYMPTOM":    EntityTypeSymptom,
	"PROTEIN":         EntityTypeProtein,
	"GENE_PROTEIN":    EntityTypeProtein,
	"BRAIN_REGION":    EntityTypeBrainRegion,
	"ANATOMY":         EntityTypeBrainRegion,
	"BIOMARKER":       EntityTypeBiomarker,
	"SYNDROME":        EntityTypeSyndrome,
	"NEUROPATHOLOGIC": EntityTypeNeuropathology,
	"ACRONYM":         EntityTypeAcronym,
	"OTHER":           EntityTypeOther,
}

// EntityTypeFromLabel maps a raw model label to the closed entity type
// set. BIO tagging prefixes (B-, I-) are stripped first. Unrecognized
// labels map to EntityTypeOther.
func EntityTypeFromLabel(label string) EntityType {
	label = strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")
	label = strings.ToUpper(strings.TrimSpace(label))
	if t, ok := knownEntityTypes[label]; ok {
		return t
	}
	return EntityTypeOther
}

// MentionSource identifies which detection stream produced a mention.
type MentionSource string

const (
	MentionSourceModel   MentionSource = "MODEL"
	MentionSourceLexicon MentionSource = "LEXICON"
)

// Span is a half-open character offset range [Start, End) into the
// original document text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share at least one character.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Len returns the span length in characters.
func (s Span) Len() int {
	return s.End - s.Start
}

// Mention is a detected occurrence of an entity at a text span, before
// resolution. Mentions are ephemeral: they exist only within one
// document-processing call and are discarded after resolution.
type Mention struct {
	Span
	Surface    string        `json:"surface"`
	Type       EntityType    `json:"entity_type"`
	Source     MentionSource `json:"source"`
	Confidence float64       `json:"confidence"`
	// Canonical is the lexicon-derived canonical name. Empty for
	// model-only mentions, where the surface form stands in.
	Canonical string `json:"canonical,omitempty"`
}

// CanonicalName returns the canonical identity of the mention: the
// lexicon canonical name when one exists, else the surface form.
func (m Mention) CanonicalName() string {
	if m.Canonical != "" {
		return m.Canonical
	}
	return m.Surface
}

// ResolvedEntity is a deduplicated, canonically named entity with all
// of its mention spans within one document.
type ResolvedEntity struct {
	ID            int64      `json:"id,omitempty"`
	CanonicalName string     `json:"canonical_name"`
	Type          EntityType `json:"entity_type"`
	Spans         []Span     `json:"mention_spans"`
	// MentionCount is the persisted mention tally. Within a single
	// document it equals len(Spans); across documents the storage
	// layer accumulates it.
	MentionCount int       `json:"mention_count,omitempty"`
	Confidence   float64   `json:"confidence"`
	Citation     Citation  `json:"citation"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}
