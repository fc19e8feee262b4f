package dto

import "time"

// GenerationOptionsDTO are the caller's knobs for generation and refinement jobs
type GenerationOptionsDTO struct {
	Tone                 string   `json:"tone,omitempty" validate:"omitempty,oneof=professional friendly formal casual urgent enthusiastic"`
	Length               string   `json:"length,omitempty" validate:"omitempty,oneof=short medium long"`
	IncludeCTA           *bool    `json:"include_cta,omitempty"`
	CTAText              *string  `json:"cta_text,omitempty" validate:"omitempty,max=100"`
	PersonalizationLevel string   `json:"personalization_level,omitempty" validate:"omitempty,oneof=low medium high"`
	VariantsCount        int      `json:"variants_count,omitempty" validate:"omitempty,min=1,max=5"`
	IncludePreviewText   *bool    `json:"include_preview_text,omitempty"`
	Temperature          *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=1"`
	FocusAreas           []string `json:"focus_areas,omitempty" validate:"omitempty,max=10,dive,max=100"`
}

// CreateGenerationJobRequest represents the request to generate email content for a campaign
type CreateGenerationJobRequest struct {
	CampaignID        string                `json:"-"`
	UserID            uint                  `json:"-"`
	OrganizationID    uint                  `json:"-"`
	JobType           string                `json:"job_type,omitempty" validate:"omitempty,oneof=initial_generation revision ab_variant"`
	UserPrompt        string                `json:"user_prompt" validate:"required,min=10,max=2000"`
	GenerationOptions *GenerationOptionsDTO `json:"generation_options,omitempty" validate:"omitempty"`
	ContextOverride   map[string]any        `json:"context_override,omitempty"`
}

// RefineTemplateRequest represents the request to refine an existing template
type RefineTemplateRequest struct {
	CampaignID             string                `json:"-"`
	TemplateID             string                `json:"-"`
	UserID                 uint                  `json:"-"`
	OrganizationID         uint                  `json:"-"`
	RefinementInstructions string                `json:"refinement_instructions" validate:"required,min=10,max=1000"`
	SectionsToChange       []string              `json:"sections_to_change,omitempty" validate:"omitempty,max=10,dive,max=50"`
	GenerationOptions      *GenerationOptionsDTO `json:"generation_options,omitempty" validate:"omitempty"`
}

// OptimizeTemplateRequest represents the request to optimize an existing template
type OptimizeTemplateRequest struct {
	CampaignID        string   `json:"-"`
	TemplateID        string   `json:"-"`
	UserID            uint     `json:"-"`
	OrganizationID    uint     `json:"-"`
	OptimizationGoals []string `json:"optimization_goals" validate:"required,min=1,max=8,dive,required,max=50"`
}

// SubjectLineVariantsRequest represents the request to generate subject line variants
type SubjectLineVariantsRequest struct {
	CampaignID     string  `json:"-"`
	UserID         uint    `json:"-"`
	OrganizationID uint    `json:"-"`
	TemplateID     *string `json:"template_id,omitempty" validate:"omitempty,uuid"`
	EmailContent   *string `json:"email_content,omitempty" validate:"omitempty,max=50000"`
	Count          int     `json:"count,omitempty" validate:"omitempty,min=1,max=10"`
	Style          *string `json:"style,omitempty" validate:"omitempty,max=100"`
}

// GetGenerationJobRequest identifies one job of a campaign
type GetGenerationJobRequest struct {
	CampaignID     string `json:"-"`
	JobID          string `json:"-"`
	UserID         uint   `json:"-"`
	OrganizationID uint   `json:"-"`
}

// ListGenerationJobsRequest represents a paginated job listing
type ListGenerationJobsRequest struct {
	CampaignID     string `json:"-"`
	UserID         uint   `json:"-"`
	OrganizationID uint   `json:"-"`
	Page           int    `json:"page" validate:"omitempty,min=1"`
	PerPage        int    `json:"per_page" validate:"omitempty,min=1,max=100"`
}

// CreateTemplateFromVariantRequest materializes a variant into a template
type CreateTemplateFromVariantRequest struct {
	CampaignID     string `json:"-"`
	JobID          string `json:"-"`
	UserID         uint   `json:"-"`
	OrganizationID uint   `json:"-"`
	VariantID      int    `json:"variant_id" validate:"required,min=1"`
}

// EmailVariantDTO is one generated variant
type EmailVariantDTO struct {
	VariantID        int     `json:"variant_id"`
	SubjectLine      string  `json:"subject_line"`
	PreviewText      *string `json:"preview_text,omitempty"`
	HTMLContent      string  `json:"html_content,omitempty"`
	PlainTextContent string  `json:"plain_text_content,omitempty"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Reasoning        *string `json:"reasoning,omitempty"`
}

// OptimizationChangeDTO is one edit reported by an optimization job
type OptimizationChangeDTO struct {
	Section        string `json:"section,omitempty"`
	Change         string `json:"change"`
	ExpectedImpact string `json:"expected_impact,omitempty"`
}

// GeneratedContentDTO is the output of a completed job
type GeneratedContentDTO struct {
	Variants []EmailVariantDTO       `json:"variants"`
	Changes  []OptimizationChangeDTO `json:"changes,omitempty"`
}

// GenerationJobResponse is the client projection of a job
type GenerationJobResponse struct {
	ID                         string               `json:"id"`
	CampaignID                 string               `json:"campaign_id"`
	Status                     string               `json:"status"`
	JobType                    string               `json:"job_type"`
	GeneratedContent           *GeneratedContentDTO `json:"generated_content,omitempty"`
	AIModel                    *string              `json:"ai_model,omitempty"`
	TokensUsed                 *int                 `json:"tokens_used,omitempty"`
	ConfidenceScore            *float64             `json:"confidence_score,omitempty"`
	EstimatedCompletionSeconds *int                 `json:"estimated_completion_seconds,omitempty"`
	ErrorMessage               *string              `json:"error_message,omitempty"`
	TemplateID                 *string              `json:"template_id,omitempty"`
	CreatedAt                  time.Time            `json:"created_at"`
	StartedAt                  *time.Time           `json:"started_at,omitempty"`
	CompletedAt                *time.Time           `json:"completed_at,omitempty"`
}

// ListGenerationJobsResponse is a page of jobs
type ListGenerationJobsResponse struct {
	Jobs    []GenerationJobResponse `json:"jobs"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	PerPage int                     `json:"per_page"`
	Pages   int                     `json:"pages"`
}

// TemplateResponse is the identity of a materialized template
type TemplateResponse struct {
	ID              string    `json:"id"`
	CampaignID      string    `json:"campaign_id"`
	Version         int       `json:"version"`
	IsCurrent       bool      `json:"is_current"`
	Status          string    `json:"status"`
	SubjectLine     string    `json:"subject_line"`
	PreviewText     *string   `json:"preview_text,omitempty"`
	GeneratedBy     string    `json:"generated_by"`
	AIModelUsed     *string   `json:"ai_model_used,omitempty"`
	SourceJobID     string    `json:"source_job_id"`
	SourceVariantID int       `json:"source_variant_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// VariantExport is an xlsx workbook of a job's variants
type VariantExport struct {
	Filename string
	Content  []byte
}
