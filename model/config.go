package model

// Device selects where the statistical recognizer runs.
type Device string

const (
	DeviceCPU Device = "cpu"
	DeviceGPU Device = "gpu"
)

// ExtractorConfig configures one extraction pipeline instance.
type ExtractorConfig struct {
	// UseRecognizer enables the statistical recognizer stage. When
	// false the pipeline runs lexicon-only by design and no
	// degradation is logged.
	UseRecognizer bool `json:"use_recognizer"`

	// Device selects CPU or GPU inference for the recognizer.
	Device Device `json:"device"`

	// TriggerWeight is the fixed weight multiplied into relationship
	// confidence alongside the two endpoint mention confidences.
	TriggerWeight float64 `json:"trigger_weight"`

	// MaxShortFormLen is the maximum character length of a
	// parenthetical short form considered an acronym candidate.
	MaxShortFormLen int `json:"max_short_form_len"`

	// MinUppercaseRatio is the minimum share of uppercase letters a
	// short form must carry to count as an acronym.
	MinUppercaseRatio float64 `json:"min_uppercase_ratio"`
}

// DefaultExtractorConfig returns the configuration used in production:
// recognizer enabled on CPU, trigger weight 0.9, parenthetical short
// forms up to 6 characters with at least half uppercase.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		UseRecognizer:     true,
		Device:            DeviceCPU,
		TriggerWeight:     0.9,
		MaxShortFormLen:   6,
		MinUppercaseRatio: 0.5,
	}
}
