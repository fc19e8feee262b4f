// Package businessflow contains the core business logic for AI email generation workflows
package businessflow

import (
	"github.com/amirphl/mailwright/app/dto"
	"github.com/amirphl/mailwright/models"
)

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToGenerationJobResponse projects a job for API clients. generated_content is only
// exposed for completed jobs and error_message only for failed ones.
func ToGenerationJobResponse(job *models.GenerationJob, campaignUUID string, templateUUID *string) dto.GenerationJobResponse {
	resp := dto.GenerationJobResponse{
		ID:          job.UUID.String(),
		CampaignID:  campaignUUID,
		Status:      job.Status.String(),
		JobType:     job.JobType.String(),
		AIModel:     job.AIModel,
		TokensUsed:  job.TokensUsed,
		TemplateID:  templateUUID,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}

	switch job.Status {
	case models.JobStatusCompleted:
		resp.ConfidenceScore = job.ConfidenceScore
		if job.GeneratedContent != nil {
			content := ToGeneratedContentDTO(*job.GeneratedContent)
			resp.GeneratedContent = &content
		}
	case models.JobStatusFailed:
		resp.ErrorMessage = job.ErrorMessage
	}

	return resp
}

// ToGeneratedContentDTO converts a job output document to its DTO
func ToGeneratedContentDTO(content models.GeneratedContent) dto.GeneratedContentDTO {
	out := dto.GeneratedContentDTO{
		Variants: make([]dto.EmailVariantDTO, 0, len(content.Variants)),
	}
	for _, v := range content.Variants {
		out.Variants = append(out.Variants, dto.EmailVariantDTO{
			VariantID:        v.VariantID,
			SubjectLine:      v.SubjectLine,
			PreviewText:      v.PreviewText,
			HTMLContent:      v.HTMLContent,
			PlainTextContent: v.PlainTextContent,
			ConfidenceScore:  v.ConfidenceScore,
			Reasoning:        v.Reasoning,
		})
	}
	for _, c := range content.Changes {
		out.Changes = append(out.Changes, dto.OptimizationChangeDTO{
			Section:        c.Section,
			Change:         c.Change,
			ExpectedImpact: c.ExpectedImpact,
		})
	}
	return out
}

// ToTemplateResponse converts a materialized template to its DTO
func ToTemplateResponse(t *models.EmailTemplate, campaignUUID, jobUUID string, variantID int) dto.TemplateResponse {
	return dto.TemplateResponse{
		ID:              t.UUID.String(),
		CampaignID:      campaignUUID,
		Version:         t.Version,
		IsCurrent:       t.IsCurrent,
		Status:          t.Status.String(),
		SubjectLine:     t.SubjectLine,
		PreviewText:     t.PreviewText,
		GeneratedBy:     t.GeneratedBy,
		AIModelUsed:     t.AIModelUsed,
		SourceJobID:     jobUUID,
		SourceVariantID: variantID,
		CreatedAt:       t.CreatedAt,
	}
}

// toGenerationOptions maps the request DTO onto the model options
func toGenerationOptions(in *dto.GenerationOptionsDTO) models.GenerationOptions {
	if in == nil {
		return models.GenerationOptions{}
	}
	return models.GenerationOptions{
		Tone:                 models.Tone(in.Tone),
		Length:               models.EmailLength(in.Length),
		IncludeCTA:           in.IncludeCTA,
		CTAText:              in.CTAText,
		PersonalizationLevel: models.PersonalizationLevel(in.PersonalizationLevel),
		VariantsCount:        in.VariantsCount,
		IncludePreviewText:   in.IncludePreviewText,
		Temperature:          in.Temperature,
		FocusAreas:           in.FocusAreas,
	}
}
