package models

// Tone is the requested voice of generated email copy
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneUrgent       Tone = "urgent"
	ToneEnthusiastic Tone = "enthusiastic"
)

// EmailLength is the requested size of the email body
type EmailLength string

const (
	EmailLengthShort  EmailLength = "short"
	EmailLengthMedium EmailLength = "medium"
	EmailLengthLong   EmailLength = "long"
)

// PersonalizationLevel controls how targeted the copy should be
type PersonalizationLevel string

const (
	PersonalizationLow    PersonalizationLevel = "low"
	PersonalizationMedium PersonalizationLevel = "medium"
	PersonalizationHigh   PersonalizationLevel = "high"
)

const (
	DefaultVariantsCount = 1
	MaxVariantsCount     = 5
	DefaultTemperature   = 0.7
)

// GenerationOptions are the caller's knobs for a generation or refinement job.
// Pointer fields distinguish "not provided" from zero values so defaults can be applied.
type GenerationOptions struct {
	Tone                 Tone                 `json:"tone,omitempty" mapstructure:"tone"`
	Length               EmailLength          `json:"length,omitempty" mapstructure:"length"`
	IncludeCTA           *bool                `json:"include_cta,omitempty" mapstructure:"include_cta"`
	CTAText              *string              `json:"cta_text,omitempty" mapstructure:"cta_text"`
	PersonalizationLevel PersonalizationLevel `json:"personalization_level,omitempty" mapstructure:"personalization_level"`
	VariantsCount        int                  `json:"variants_count,omitempty" mapstructure:"variants_count"`
	IncludePreviewText   *bool                `json:"include_preview_text,omitempty" mapstructure:"include_preview_text"`
	Temperature          *float64             `json:"temperature,omitempty" mapstructure:"temperature"`
	FocusAreas           []string             `json:"focus_areas,omitempty" mapstructure:"focus_areas"`
}

// WithDefaults returns a copy with every unset option filled in
func (o GenerationOptions) WithDefaults() GenerationOptions {
	out := o
	if out.Tone == "" {
		out.Tone = ToneProfessional
	}
	if out.Length == "" {
		out.Length = EmailLengthMedium
	}
	if out.IncludeCTA == nil {
		v := true
		out.IncludeCTA = &v
	}
	if out.PersonalizationLevel == "" {
		out.PersonalizationLevel = PersonalizationHigh
	}
	if out.VariantsCount <= 0 {
		out.VariantsCount = DefaultVariantsCount
	}
	if out.IncludePreviewText == nil {
		v := true
		out.IncludePreviewText = &v
	}
	if out.Temperature == nil {
		v := DefaultTemperature
		out.Temperature = &v
	}
	return out
}

// TemperatureOr returns the requested temperature or the fallback when unset
func (o GenerationOptions) TemperatureOr(fallback float64) float64 {
	if o.Temperature == nil {
		return fallback
	}
	return *o.Temperature
}

// WordCountForLength returns the approximate word range for a length option
func WordCountForLength(length EmailLength) string {
	switch length {
	case EmailLengthShort:
		return "100-150"
	case EmailLengthLong:
		return "400-500"
	default:
		return "200-300"
	}
}
