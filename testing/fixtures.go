package testing

import (
	"fmt"
	"math/rand"

	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/utils"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// RandomOrganizationID returns an organization id unlikely to collide between tests
func RandomOrganizationID() uint {
	return uint(rand.Intn(1_000_000) + 1)
}

// CreateTestCampaign creates a draft campaign with a single conversion objective
func (tf *TestFixtures) CreateTestCampaign(organizationID uint) (*models.Campaign, error) {
	campaign := &models.Campaign{
		OrganizationID:            organizationID,
		Name:                      fmt.Sprintf("Test campaign %d", rand.Intn(100000)),
		Description:               utils.ToPtr("Quarterly product announcement"),
		PrimaryGoal:               "conversion",
		TargetAudienceDescription: utils.ToPtr("Clinical research managers"),
		SuccessCriteria:           utils.ToPtr("5% demo bookings"),
		Objectives: []models.CampaignObjective{
			{
				ObjectiveType: "primary",
				Description:   "Book product demos",
				KPIName:       "conversion",
				TargetValue:   5.0,
				Priority:      1,
			},
		},
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestCompanyProfile creates a brand profile for the organization
func (tf *TestFixtures) CreateTestCompanyProfile(organizationID uint) (*models.CompanyProfile, error) {
	profile := &models.CompanyProfile{
		OrganizationID:         organizationID,
		CompanyName:            "Acme Clinical",
		BrandVoice:             utils.ToPtr("Confident and precise"),
		ValuePropositions:      pq.StringArray{"60% faster submissions", "Audit-ready documents"},
		CompetitiveAdvantages:  pq.StringArray{"Domain-trained models"},
		ComplianceRequirements: pq.StringArray{"21 CFR Part 11"},
		TargetAudience:         models.JSONDocument{"roles": []any{"clinical research manager"}},
		BrandGuidelines:        models.JSONDocument{"forbidden_words": []any{"guarantee"}},
	}

	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test company profile: %w", err)
	}
	return profile, nil
}

// CreateTestTemplate creates a template at the given version
func (tf *TestFixtures) CreateTestTemplate(campaign *models.Campaign, version int) (*models.EmailTemplate, error) {
	template := &models.EmailTemplate{
		CampaignID:       campaign.ID,
		OrganizationID:   campaign.OrganizationID,
		Version:          version,
		SubjectLine:      fmt.Sprintf("Version %d subject", version),
		HTMLContent:      "<p>Hello there</p>",
		PlainTextContent: "Hello there",
	}

	if err := tf.DB.DB.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to create test template: %w", err)
	}
	return template, nil
}

// CreateTestJob creates a pending initial-generation job for the campaign
func (tf *TestFixtures) CreateTestJob(campaign *models.Campaign) (*models.GenerationJob, error) {
	job := &models.GenerationJob{
		CampaignID:     campaign.ID,
		OrganizationID: campaign.OrganizationID,
		JobType:        models.JobTypeInitialGeneration,
		UserPrompt:     "Write a launch announcement",
		Context: models.JSONDocument{
			"campaign":    map[string]any{"name": campaign.Name, "primary_goal": campaign.PrimaryGoal},
			"user_prompt": "Write a launch announcement",
		},
	}

	if err := tf.DB.DB.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create test job: %w", err)
	}
	return job, nil
}
