package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// JobPayload is the typed input frozen into a job at creation time. Each job family
// has its own shape; the jsonb context column is only the serialization boundary.
type JobPayload interface {
	// Family is the job type whose payload shape this is
	Family() JobType
	// Overrides are caller-supplied keys with no typed home
	Overrides() map[string]any
}

// ObjectiveSnapshot is a campaign objective as seen by the prompt builder
type ObjectiveSnapshot struct {
	ObjectiveType string  `json:"objective_type" mapstructure:"objective_type"`
	Description   string  `json:"description" mapstructure:"description"`
	KPIName       string  `json:"kpi_name" mapstructure:"kpi_name"`
	TargetValue   float64 `json:"target_value" mapstructure:"target_value"`
	Priority      int     `json:"priority" mapstructure:"priority"`
}

// CampaignSnapshot is the point-in-time campaign framing of a job
type CampaignSnapshot struct {
	ID                        string              `json:"id" mapstructure:"id"`
	Name                      string              `json:"name" mapstructure:"name"`
	Description               *string             `json:"description,omitempty" mapstructure:"description"`
	PrimaryGoal               string              `json:"primary_goal" mapstructure:"primary_goal"`
	TargetAudienceDescription *string             `json:"target_audience_description,omitempty" mapstructure:"target_audience_description"`
	SuccessCriteria           *string             `json:"success_criteria,omitempty" mapstructure:"success_criteria"`
	Objectives                []ObjectiveSnapshot `json:"objectives,omitempty" mapstructure:"objectives"`
}

// CompanyProfileSnapshot is the brand context of a job
type CompanyProfileSnapshot struct {
	CompanyName            string         `json:"company_name,omitempty" mapstructure:"company_name"`
	Industry               *string        `json:"industry,omitempty" mapstructure:"industry"`
	BrandVoice             *string        `json:"brand_voice,omitempty" mapstructure:"brand_voice"`
	ValuePropositions      []string       `json:"value_propositions,omitempty" mapstructure:"value_propositions"`
	PainPoints             []string       `json:"pain_points,omitempty" mapstructure:"pain_points"`
	CompetitiveAdvantages  []string       `json:"competitive_advantages,omitempty" mapstructure:"competitive_advantages"`
	ComplianceRequirements []string       `json:"compliance_requirements,omitempty" mapstructure:"compliance_requirements"`
	TargetAudience         map[string]any `json:"target_audience,omitempty" mapstructure:"target_audience"`
	ProductServices        map[string]any `json:"product_services,omitempty" mapstructure:"product_services"`
	BrandGuidelines        map[string]any `json:"brand_guidelines,omitempty" mapstructure:"brand_guidelines"`
}

// ForbiddenWords returns brand_guidelines.forbidden_words
func (p *CompanyProfileSnapshot) ForbiddenWords() []string {
	if p == nil || p.BrandGuidelines == nil {
		return nil
	}
	return JSONDocument(p.BrandGuidelines).StringSlice("forbidden_words")
}

// TemplateSnapshot is the content of an existing template a job works on
type TemplateSnapshot struct {
	TemplateID       string  `json:"id" mapstructure:"id"`
	Version          int     `json:"version" mapstructure:"version"`
	SubjectLine      string  `json:"subject_line" mapstructure:"subject_line"`
	PreviewText      *string `json:"preview_text,omitempty" mapstructure:"preview_text"`
	HTMLContent      string  `json:"html_content" mapstructure:"html_content"`
	PlainTextContent string  `json:"plain_text_content" mapstructure:"plain_text_content"`
}

// SubjectLineCampaignContext is the campaign framing passed to subject-line jobs
type SubjectLineCampaignContext struct {
	Name                      string  `json:"name,omitempty" mapstructure:"name"`
	PrimaryGoal               string  `json:"primary_goal" mapstructure:"primary_goal"`
	TargetAudienceDescription *string `json:"target_audience_description,omitempty" mapstructure:"target_audience_description"`
}

// InitialGenerationPayload drives initial_generation, revision and ab_variant jobs
type InitialGenerationPayload struct {
	Campaign          CampaignSnapshot        `json:"campaign" mapstructure:"campaign"`
	GenerationOptions GenerationOptions       `json:"generation_options" mapstructure:"generation_options"`
	UserPrompt        string                  `json:"user_prompt" mapstructure:"user_prompt"`
	CompanyProfile    *CompanyProfileSnapshot `json:"company_profile,omitempty" mapstructure:"company_profile"`
	Extras            map[string]any          `json:"-" mapstructure:",remain"`
}

func (p *InitialGenerationPayload) Family() JobType { return JobTypeInitialGeneration }
func (p *InitialGenerationPayload) Overrides() map[string]any { return p.Extras }

// RefinementPayload drives refinement jobs
type RefinementPayload struct {
	OriginalTemplate       TemplateSnapshot        `json:"original_template" mapstructure:"original_template"`
	RefinementInstructions string                  `json:"refinement_instructions" mapstructure:"refinement_instructions"`
	SectionsToChange       []string                `json:"sections_to_change,omitempty" mapstructure:"sections_to_change"`
	GenerationOptions      *GenerationOptions      `json:"generation_options,omitempty" mapstructure:"generation_options"`
	CompanyProfile         *CompanyProfileSnapshot `json:"company_profile,omitempty" mapstructure:"company_profile"`
	Extras                 map[string]any          `json:"-" mapstructure:",remain"`
}

func (p *RefinementPayload) Family() JobType { return JobTypeRefinement }
func (p *RefinementPayload) Overrides() map[string]any { return p.Extras }

// SubjectLinePayload drives subject_line_test jobs
type SubjectLinePayload struct {
	EmailContent    *string                     `json:"email_content,omitempty" mapstructure:"email_content"`
	CampaignContext *SubjectLineCampaignContext `json:"campaign_context,omitempty" mapstructure:"campaign_context"`
	Count           int                         `json:"count" mapstructure:"count"`
	Style           *string                     `json:"style,omitempty" mapstructure:"style"`
	CompanyProfile  *CompanyProfileSnapshot     `json:"company_profile,omitempty" mapstructure:"company_profile"`
	Extras          map[string]any              `json:"-" mapstructure:",remain"`
}

func (p *SubjectLinePayload) Family() JobType { return JobTypeSubjectLineTest }
func (p *SubjectLinePayload) Overrides() map[string]any { return p.Extras }

// OptimizationPayload drives optimization jobs
type OptimizationPayload struct {
	OriginalTemplate  TemplateSnapshot        `json:"original_template" mapstructure:"original_template"`
	OptimizationGoals []string                `json:"optimization_goals" mapstructure:"optimization_goals"`
	CompanyProfile    *CompanyProfileSnapshot `json:"company_profile,omitempty" mapstructure:"company_profile"`
	Extras            map[string]any          `json:"-" mapstructure:",remain"`
}

func (p *OptimizationPayload) Family() JobType { return JobTypeOptimization }
func (p *OptimizationPayload) Overrides() map[string]any { return p.Extras }

// EncodeJobPayload flattens a payload into the jsonb document stored on the job.
// override keys are merged last and win over any assembled key.
func EncodeJobPayload(payload JobPayload, override map[string]any) (JSONDocument, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", payload.Family(), err)
	}

	doc := JSONDocument{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", payload.Family(), err)
	}

	for k, v := range payload.Overrides() {
		doc[k] = v
	}
	for k, v := range override {
		doc[k] = v
	}
	return doc, nil
}

// DecodeJobPayload turns a stored context document back into the payload for jobType
func DecodeJobPayload(jobType JobType, doc JSONDocument) (JobPayload, error) {
	var payload JobPayload
	switch jobType {
	case JobTypeInitialGeneration, JobTypeRevision, JobTypeABVariant:
		payload = &InitialGenerationPayload{}
	case JobTypeRefinement:
		payload = &RefinementPayload{}
	case JobTypeSubjectLineTest:
		payload = &SubjectLinePayload{}
	case JobTypeOptimization:
		payload = &OptimizationPayload{}
	default:
		return nil, fmt.Errorf("unsupported job type: %s", jobType)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           payload,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build %s payload decoder: %w", jobType, err)
	}
	if err := decoder.Decode(map[string]any(doc)); err != nil {
		return nil, fmt.Errorf("decode %s context: %w", jobType, err)
	}
	return payload, nil
}
