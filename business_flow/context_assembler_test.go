package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssembler(p *pipeline) ContextAssembler {
	return NewContextAssembler(p.campaigns, p.profiles, p.templates)
}

func TestContextAssembler_Campaign(t *testing.T) {
	p := newPipeline()
	campaign := seedCampaign(p)
	assembler := newAssembler(p)

	got, err := assembler.Campaign(context.Background(), campaign.UUID.String(), orgID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, got.ID)

	_, err = assembler.Campaign(context.Background(), campaign.UUID.String(), otherOrgID)
	assert.True(t, IsCampaignNotFound(err))

	_, err = assembler.Campaign(context.Background(), uuid.NewString(), orgID)
	assert.True(t, IsCampaignNotFound(err))

	_, err = assembler.Campaign(context.Background(), "not-a-uuid", orgID)
	assert.True(t, IsInvalidIdentifier(err))
}

func TestContextAssembler_Template(t *testing.T) {
	p := newPipeline()
	campaign := seedCampaign(p)
	other := seedCampaign(p)
	tpl := seedTemplate(t, p, campaign, 1)
	assembler := newAssembler(p)

	got, err := assembler.Template(context.Background(), tpl.UUID.String(), campaign)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, got.ID)

	_, err = assembler.Template(context.Background(), tpl.UUID.String(), other)
	assert.True(t, IsTemplateNotFound(err))

	_, err = assembler.Template(context.Background(), "abc", campaign)
	assert.True(t, IsInvalidIdentifier(err))
}

func TestContextAssembler_GenerationContext(t *testing.T) {
	p := newPipeline()
	campaign := seedCampaign(p)
	require.NoError(t, p.profiles.Save(context.Background(), &models.CompanyProfile{
		OrganizationID:         orgID,
		CompanyName:            "Acme Clinical",
		ValuePropositions:      pq.StringArray{"60% faster submissions"},
		ComplianceRequirements: pq.StringArray{"HIPAA"},
		BrandGuidelines:        models.JSONDocument{"forbidden_words": []any{"cheap"}},
	}))
	assembler := newAssembler(p)

	doc, err := assembler.GenerationContext(context.Background(), campaign, models.GenerationOptions{VariantsCount: 2}, "Announce the launch", map[string]any{
		"user_prompt":        "from override",
		"additional_context": "Mention the webinar",
	})
	require.NoError(t, err)
	assert.Equal(t, "from override", doc["user_prompt"])

	payload, err := models.DecodeJobPayload(models.JobTypeInitialGeneration, doc)
	require.NoError(t, err)
	gen := payload.(*models.InitialGenerationPayload)

	assert.Equal(t, campaign.UUID.String(), gen.Campaign.ID)
	assert.Equal(t, "conversion", gen.Campaign.PrimaryGoal)
	assert.Equal(t, 2, gen.GenerationOptions.VariantsCount)
	assert.Equal(t, models.ToneProfessional, gen.GenerationOptions.Tone)
	require.NotNil(t, gen.GenerationOptions.Temperature)
	assert.Equal(t, models.DefaultTemperature, *gen.GenerationOptions.Temperature)
	require.NotNil(t, gen.CompanyProfile)
	assert.Equal(t, "Acme Clinical", gen.CompanyProfile.CompanyName)
	assert.Equal(t, []string{"HIPAA"}, gen.CompanyProfile.ComplianceRequirements)
	assert.Equal(t, "Mention the webinar", gen.Extras["additional_context"])
}

func TestContextAssembler_SnapshotIsDetached(t *testing.T) {
	p := newPipeline()
	campaign := seedCampaign(p)
	assembler := newAssembler(p)

	doc, err := assembler.SubjectLineContext(context.Background(), campaign, "Body", 3, utils.ToPtr("curiosity"))
	require.NoError(t, err)

	*campaign.TargetAudienceDescription = "Everyone"
	campaign.Name = "Renamed"

	payload, err := models.DecodeJobPayload(models.JobTypeSubjectLineTest, doc)
	require.NoError(t, err)
	sl := payload.(*models.SubjectLinePayload)
	assert.Equal(t, "Q3 Clinical Docs Launch", sl.CampaignContext.Name)
	assert.Equal(t, "Clinical research managers", *sl.CampaignContext.TargetAudienceDescription)
	assert.Equal(t, 3, sl.Count)
	assert.Equal(t, "curiosity", *sl.Style)
	assert.Nil(t, sl.CompanyProfile)
}

func TestContextAssembler_TemplateContexts(t *testing.T) {
	p := newPipeline()
	campaign := seedCampaign(p)
	tpl := seedTemplate(t, p, campaign, 4)
	assembler := newAssembler(p)

	doc, err := assembler.RefinementContext(context.Background(), campaign, tpl, "Make it more urgent", []string{"cta"}, nil)
	require.NoError(t, err)
	payload, err := models.DecodeJobPayload(models.JobTypeRefinement, doc)
	require.NoError(t, err)
	ref := payload.(*models.RefinementPayload)
	assert.Equal(t, tpl.UUID.String(), ref.OriginalTemplate.TemplateID)
	assert.Equal(t, 4, ref.OriginalTemplate.Version)
	assert.Equal(t, "Meet the platform", ref.OriginalTemplate.SubjectLine)
	assert.Equal(t, []string{"cta"}, ref.SectionsToChange)
	assert.Nil(t, ref.GenerationOptions)

	doc, err = assembler.OptimizationContext(context.Background(), campaign, tpl, []string{"increase_clicks"})
	require.NoError(t, err)
	payload, err = models.DecodeJobPayload(models.JobTypeOptimization, doc)
	require.NoError(t, err)
	opt := payload.(*models.OptimizationPayload)
	assert.Equal(t, []string{"increase_clicks"}, opt.OptimizationGoals)
	assert.Equal(t, "<p>Our platform saves time.</p>", opt.OriginalTemplate.HTMLContent)
}

func TestContextAssembler_ProfileLookupFailure(t *testing.T) {
	p := newPipeline()
	campaign := seedCampaign(p)
	p.profiles.err = errors.New("connection reset")

	_, err := newAssembler(p).GenerationContext(context.Background(), campaign, models.GenerationOptions{}, "Announce the launch", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load company profile")
}
