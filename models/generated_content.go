package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Variant is one candidate email (or subject line) produced by a job
type Variant struct {
	VariantID        int     `json:"variant_id"`
	SubjectLine      string  `json:"subject_line"`
	PreviewText      *string `json:"preview_text,omitempty"`
	HTMLContent      string  `json:"html_content,omitempty"`
	PlainTextContent string  `json:"plain_text_content,omitempty"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Reasoning        *string `json:"reasoning,omitempty"`
}

// OptimizationChange describes one edit made by an optimization job
type OptimizationChange struct {
	Section        string `json:"section,omitempty"`
	Change         string `json:"change"`
	ExpectedImpact string `json:"expected_impact,omitempty"`
}

// GeneratedContent is the output document of a completed job
type GeneratedContent struct {
	Variants []Variant            `json:"variants"`
	Changes  []OptimizationChange `json:"changes,omitempty"`
}

// Value implements the driver.Valuer interface for GeneratedContent
func (g GeneratedContent) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements the sql.Scanner interface for GeneratedContent
func (g *GeneratedContent) Scan(value any) error {
	if value == nil {
		*g = GeneratedContent{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into GeneratedContent", value)
	}

	return json.Unmarshal(bytes, g)
}

// FindVariant returns the variant with the given 1-based id
func (g *GeneratedContent) FindVariant(variantID int) (*Variant, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Variants {
		if g.Variants[i].VariantID == variantID {
			return &g.Variants[i], true
		}
	}
	return nil, false
}

// MeanConfidence is the arithmetic mean of the variant scores, 0 when empty
func (g *GeneratedContent) MeanConfidence() float64 {
	if g == nil || len(g.Variants) == 0 {
		return 0
	}
	var sum float64
	for _, v := range g.Variants {
		sum += v.ConfidenceScore
	}
	return sum / float64(len(g.Variants))
}
