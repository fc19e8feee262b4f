package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/repository"
	"github.com/google/uuid"
)

// ContextAssembler loads tenant-scoped campaign data and freezes it into the
// context document stored on a job. The worker never reads the campaign again.
type ContextAssembler interface {
	Campaign(ctx context.Context, campaignID string, organizationID uint) (*models.Campaign, error)
	Template(ctx context.Context, templateID string, campaign *models.Campaign) (*models.EmailTemplate, error)
	GenerationContext(ctx context.Context, campaign *models.Campaign, options models.GenerationOptions, userPrompt string, override map[string]any) (models.JSONDocument, error)
	RefinementContext(ctx context.Context, campaign *models.Campaign, template *models.EmailTemplate, instructions string, sections []string, options *models.GenerationOptions) (models.JSONDocument, error)
	SubjectLineContext(ctx context.Context, campaign *models.Campaign, emailContent string, count int, style *string) (models.JSONDocument, error)
	OptimizationContext(ctx context.Context, campaign *models.Campaign, template *models.EmailTemplate, goals []string) (models.JSONDocument, error)
}

// ContextAssemblerImpl implements ContextAssembler
type ContextAssemblerImpl struct {
	campaignRepo repository.CampaignRepository
	profileRepo  repository.CompanyProfileRepository
	templateRepo repository.EmailTemplateRepository
}

// NewContextAssembler creates a new context assembler
func NewContextAssembler(
	campaignRepo repository.CampaignRepository,
	profileRepo repository.CompanyProfileRepository,
	templateRepo repository.EmailTemplateRepository,
) ContextAssembler {
	return &ContextAssemblerImpl{
		campaignRepo: campaignRepo,
		profileRepo:  profileRepo,
		templateRepo: templateRepo,
	}
}

// Campaign loads a campaign with its objectives. A campaign of another
// organization is reported exactly like a missing one.
func (a *ContextAssemblerImpl) Campaign(ctx context.Context, campaignID string, organizationID uint) (*models.Campaign, error) {
	id, err := uuid.Parse(campaignID)
	if err != nil {
		return nil, NewBusinessError("INVALID_CAMPAIGN_ID", "Invalid campaign id", ErrInvalidIdentifier)
	}

	campaign, err := a.campaignRepo.ByUUIDForOrganization(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// Template loads a template that must belong to campaign
func (a *ContextAssemblerImpl) Template(ctx context.Context, templateID string, campaign *models.Campaign) (*models.EmailTemplate, error) {
	id, err := uuid.Parse(templateID)
	if err != nil {
		return nil, NewBusinessError("INVALID_TEMPLATE_ID", "Invalid template id", ErrInvalidIdentifier)
	}

	template, err := a.templateRepo.ByUUIDForCampaign(ctx, id, campaign.ID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

// GenerationContext assembles the payload of initial_generation, revision and ab_variant jobs
func (a *ContextAssemblerImpl) GenerationContext(ctx context.Context, campaign *models.Campaign, options models.GenerationOptions, userPrompt string, override map[string]any) (models.JSONDocument, error) {
	profile, err := a.companyProfile(ctx, campaign.OrganizationID)
	if err != nil {
		return nil, err
	}

	payload := &models.InitialGenerationPayload{
		Campaign:          SnapshotCampaign(campaign),
		GenerationOptions: options.WithDefaults(),
		UserPrompt:        userPrompt,
		CompanyProfile:    profile,
	}
	return models.EncodeJobPayload(payload, override)
}

// RefinementContext assembles the payload of refinement jobs
func (a *ContextAssemblerImpl) RefinementContext(ctx context.Context, campaign *models.Campaign, template *models.EmailTemplate, instructions string, sections []string, options *models.GenerationOptions) (models.JSONDocument, error) {
	profile, err := a.companyProfile(ctx, campaign.OrganizationID)
	if err != nil {
		return nil, err
	}

	payload := &models.RefinementPayload{
		OriginalTemplate:       template.ContentSnapshot(),
		RefinementInstructions: instructions,
		SectionsToChange:       sections,
		GenerationOptions:      options,
		CompanyProfile:         profile,
	}
	return models.EncodeJobPayload(payload, nil)
}

// SubjectLineContext assembles the payload of subject_line_test jobs
func (a *ContextAssemblerImpl) SubjectLineContext(ctx context.Context, campaign *models.Campaign, emailContent string, count int, style *string) (models.JSONDocument, error) {
	profile, err := a.companyProfile(ctx, campaign.OrganizationID)
	if err != nil {
		return nil, err
	}

	payload := &models.SubjectLinePayload{
		EmailContent: &emailContent,
		CampaignContext: &models.SubjectLineCampaignContext{
			Name:                      campaign.Name,
			PrimaryGoal:               campaign.PrimaryGoal,
			TargetAudienceDescription: campaign.TargetAudienceDescription,
		},
		Count:          count,
		Style:          style,
		CompanyProfile: profile,
	}
	return models.EncodeJobPayload(payload, nil)
}

// OptimizationContext assembles the payload of optimization jobs
func (a *ContextAssemblerImpl) OptimizationContext(ctx context.Context, campaign *models.Campaign, template *models.EmailTemplate, goals []string) (models.JSONDocument, error) {
	profile, err := a.companyProfile(ctx, campaign.OrganizationID)
	if err != nil {
		return nil, err
	}

	payload := &models.OptimizationPayload{
		OriginalTemplate:  template.ContentSnapshot(),
		OptimizationGoals: goals,
		CompanyProfile:    profile,
	}
	return models.EncodeJobPayload(payload, nil)
}

// companyProfile returns the organization's brand profile; a missing profile is not an error
func (a *ContextAssemblerImpl) companyProfile(ctx context.Context, organizationID uint) (*models.CompanyProfileSnapshot, error) {
	profile, err := a.profileRepo.ByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}
	return SnapshotCompanyProfile(profile), nil
}

// SnapshotCampaign copies the prompt-relevant campaign fields
func SnapshotCampaign(c *models.Campaign) models.CampaignSnapshot {
	snap := models.CampaignSnapshot{
		ID:                        c.UUID.String(),
		Name:                      c.Name,
		Description:               copyString(c.Description),
		PrimaryGoal:               c.PrimaryGoal,
		TargetAudienceDescription: copyString(c.TargetAudienceDescription),
		SuccessCriteria:           copyString(c.SuccessCriteria),
	}
	for _, o := range c.Objectives {
		snap.Objectives = append(snap.Objectives, models.ObjectiveSnapshot{
			ObjectiveType: o.ObjectiveType,
			Description:   o.Description,
			KPIName:       o.KPIName,
			TargetValue:   o.TargetValue,
			Priority:      o.Priority,
		})
	}
	return snap
}

// SnapshotCompanyProfile copies the brand fields used by the system prompt
func SnapshotCompanyProfile(p *models.CompanyProfile) *models.CompanyProfileSnapshot {
	return &models.CompanyProfileSnapshot{
		CompanyName:            p.CompanyName,
		Industry:               copyString(p.Industry),
		BrandVoice:             copyString(p.BrandVoice),
		ValuePropositions:      append([]string(nil), p.ValuePropositions...),
		PainPoints:             append([]string(nil), p.PainPoints...),
		CompetitiveAdvantages:  append([]string(nil), p.CompetitiveAdvantages...),
		ComplianceRequirements: append([]string(nil), p.ComplianceRequirements...),
		TargetAudience:         p.TargetAudience.Clone(),
		ProductServices:        p.ProductServices.Clone(),
		BrandGuidelines:        p.BrandGuidelines.Clone(),
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
