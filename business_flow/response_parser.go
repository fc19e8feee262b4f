package businessflow

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/utils"
	"github.com/go-viper/mapstructure/v2"
)

const (
	rawFallbackSubject   = "Generated Email"
	rawFallbackReasoning = "Raw AI output"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// ConfidenceDefaults are the scores given to variants the model did not score
type ConfidenceDefaults struct {
	Generation  float64
	Refinement  float64
	SubjectLine float64
	RawFallback float64
}

// ParseOutcome is the normalized output of one model response
type ParseOutcome struct {
	Content models.GeneratedContent
	// Recovered is set when the response had no usable shape and was wrapped as a raw variant
	Recovered bool
}

// ResponseParser turns raw model text into generated content
type ResponseParser struct {
	defaults ConfidenceDefaults
}

// NewResponseParser creates a parser with the given fallback scores
func NewResponseParser(defaults ConfidenceDefaults) *ResponseParser {
	return &ResponseParser{defaults: defaults}
}

type rawVariant struct {
	VariantID        *int     `mapstructure:"variant_id"`
	SubjectLine      string   `mapstructure:"subject_line"`
	PreviewText      *string  `mapstructure:"preview_text"`
	HTMLContent      string   `mapstructure:"html_content"`
	PlainTextContent string   `mapstructure:"plain_text_content"`
	ConfidenceScore  *float64 `mapstructure:"confidence_score"`
	Reasoning        *string  `mapstructure:"reasoning"`
	ChangesMade      *string  `mapstructure:"changes_made"`
}

// Parse extracts the JSON object from raw and normalizes it for jobType.
// Output that is not JSON, or JSON without a usable variant shape, is wrapped
// as a single raw variant for every job type except subject_line_test, where
// it is a parse failure.
func (p *ResponseParser) Parse(jobType models.JobType, raw string) (*ParseOutcome, error) {
	doc, ok := extractJSONObject(raw)
	if !ok {
		if jobType == models.JobTypeSubjectLineTest {
			return nil, fmt.Errorf("%w: subject line output is not a JSON object", ErrParseFailure)
		}
		return &ParseOutcome{Content: p.rawFallback(raw), Recovered: true}, nil
	}

	var (
		content models.GeneratedContent
		err     error
	)
	switch {
	case jobType == models.JobTypeSubjectLineTest:
		content, err = p.subjectLines(doc)
	case jobType == models.JobTypeOptimization:
		content, err = p.optimization(doc)
	case jobType == models.JobTypeRefinement:
		content, err = p.emailVariants(doc, p.defaults.Refinement, true)
	case jobType.IsGenerationFamily():
		content, err = p.emailVariants(doc, p.defaults.Generation, true)
	default:
		return nil, fmt.Errorf("%w: unsupported job type %s", ErrParseFailure, jobType)
	}
	if err != nil {
		if jobType != models.JobTypeSubjectLineTest && IsParseFailure(err) {
			return &ParseOutcome{Content: p.rawFallback(raw), Recovered: true}, nil
		}
		return nil, err
	}

	return &ParseOutcome{Content: content}, nil
}

// extractJSONObject tries a strict parse, then the first fenced ```json block
func extractJSONObject(raw string) (map[string]any, bool) {
	text := strings.TrimSpace(raw)

	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err == nil && doc != nil {
		return doc, true
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		doc = nil
		if err := json.Unmarshal([]byte(m[1]), &doc); err == nil && doc != nil {
			return doc, true
		}
	}
	return nil, false
}

func (p *ResponseParser) rawFallback(raw string) models.GeneratedContent {
	text := strings.TrimSpace(raw)
	return models.GeneratedContent{
		Variants: []models.Variant{{
			VariantID:        1,
			SubjectLine:      rawFallbackSubject,
			HTMLContent:      text,
			PlainTextContent: text,
			ConfidenceScore:  p.defaults.RawFallback,
			Reasoning:        utils.ToPtr(rawFallbackReasoning),
		}},
	}
}

// emailVariants accepts {"variants": [...]} or a single flat variant object
func (p *ResponseParser) emailVariants(doc map[string]any, fallback float64, renderHTML bool) (models.GeneratedContent, error) {
	raws, err := decodeVariantList(doc)
	if err != nil {
		return models.GeneratedContent{}, err
	}
	if raws == nil {
		flat, ok, err := decodeFlatVariant(doc)
		if err != nil {
			return models.GeneratedContent{}, err
		}
		if !ok {
			return models.GeneratedContent{}, fmt.Errorf("%w: response has no variants", ErrParseFailure)
		}
		raws = []rawVariant{flat}
	}
	if len(raws) == 0 {
		return models.GeneratedContent{}, fmt.Errorf("%w: response has no variants", ErrParseFailure)
	}

	return models.GeneratedContent{Variants: normalizeVariants(raws, fallback, renderHTML)}, nil
}

func (p *ResponseParser) subjectLines(doc map[string]any) (models.GeneratedContent, error) {
	raws, err := decodeVariantList(doc)
	if err != nil {
		return models.GeneratedContent{}, err
	}

	kept := raws[:0]
	for _, r := range raws {
		if strings.TrimSpace(r.SubjectLine) != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return models.GeneratedContent{}, fmt.Errorf("%w: response has no subject lines", ErrParseFailure)
	}

	return models.GeneratedContent{Variants: normalizeVariants(kept, p.defaults.SubjectLine, false)}, nil
}

// optimization accepts {"optimized_content": {...}, "changes": [...], "confidence_score": n}
// and falls back to the variant shapes
func (p *ResponseParser) optimization(doc map[string]any) (models.GeneratedContent, error) {
	optimized, ok := doc["optimized_content"].(map[string]any)
	if !ok {
		return p.emailVariants(doc, p.defaults.Refinement, true)
	}

	var v rawVariant
	if err := weakDecode(optimized, &v); err != nil {
		return models.GeneratedContent{}, err
	}
	if score, ok := doc["confidence_score"]; ok && v.ConfidenceScore == nil {
		var s float64
		if err := weakDecode(score, &s); err == nil {
			v.ConfidenceScore = &s
		}
	}

	changes := decodeChanges(doc["changes"])
	if v.Reasoning == nil && len(changes) > 0 {
		v.Reasoning = utils.ToPtr(summarizeChanges(changes))
	}

	return models.GeneratedContent{
		Variants: normalizeVariants([]rawVariant{v}, p.defaults.Refinement, true),
		Changes:  changes,
	}, nil
}

// decodeVariantList returns nil (not an error) when the document has no variants key
func decodeVariantList(doc map[string]any) ([]rawVariant, error) {
	list, ok := doc["variants"]
	if !ok || list == nil {
		return nil, nil
	}
	items, ok := list.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: variants is not a list", ErrParseFailure)
	}

	out := make([]rawVariant, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: variant %d is not an object", ErrParseFailure, i+1)
		}
		var v rawVariant
		if err := weakDecode(m, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeFlatVariant reads a document that is itself one email
func decodeFlatVariant(doc map[string]any) (rawVariant, bool, error) {
	if _, ok := doc["subject_line"]; !ok {
		return rawVariant{}, false, nil
	}
	var v rawVariant
	if err := weakDecode(doc, &v); err != nil {
		return rawVariant{}, false, err
	}
	if v.Reasoning == nil && v.ChangesMade != nil {
		v.Reasoning = v.ChangesMade
	}
	return v, true, nil
}

func decodeChanges(raw any) []models.OptimizationChange {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []models.OptimizationChange
	for _, item := range items {
		switch t := item.(type) {
		case string:
			if t != "" {
				out = append(out, models.OptimizationChange{Change: t})
			}
		case map[string]any:
			var c models.OptimizationChange
			if err := weakDecode(t, &c); err == nil && c.Change != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

func summarizeChanges(changes []models.OptimizationChange) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		if c.Section != "" {
			parts = append(parts, c.Section+": "+c.Change)
		} else {
			parts = append(parts, c.Change)
		}
	}
	return strings.Join(parts, "; ")
}

// normalizeVariants clamps scores, fills missing ones, renumbers ids when they are
// missing or repeated, and renders HTML from plain text when only text was returned
func normalizeVariants(raws []rawVariant, fallback float64, renderHTML bool) []models.Variant {
	renumber := false
	seen := make(map[int]bool, len(raws))
	for _, r := range raws {
		if r.VariantID == nil || *r.VariantID <= 0 || seen[*r.VariantID] {
			renumber = true
			break
		}
		seen[*r.VariantID] = true
	}

	out := make([]models.Variant, 0, len(raws))
	for i, r := range raws {
		v := models.Variant{
			SubjectLine:      strings.TrimSpace(r.SubjectLine),
			PreviewText:      r.PreviewText,
			HTMLContent:      r.HTMLContent,
			PlainTextContent: r.PlainTextContent,
			ConfidenceScore:  fallback,
			Reasoning:        r.Reasoning,
		}
		if renumber {
			v.VariantID = i + 1
		} else {
			v.VariantID = *r.VariantID
		}
		if r.ConfidenceScore != nil {
			v.ConfidenceScore = clampScore(*r.ConfidenceScore)
		}
		if renderHTML && strings.TrimSpace(v.HTMLContent) == "" && strings.TrimSpace(v.PlainTextContent) != "" {
			v.HTMLContent = plainTextToHTML(v.PlainTextContent)
		}
		out = append(out, v)
	}
	return out
}

func clampScore(s float64) float64 {
	switch {
	case s != s: // NaN
		return 0
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}

func plainTextToHTML(text string) string {
	rendered, err := utils.RenderMarkdown(text)
	if err != nil {
		return "<pre>" + html.EscapeString(text) + "</pre>"
	}
	return rendered
}

func weakDecode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return nil
}
