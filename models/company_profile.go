package models

import (
	"time"

	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CompanyProfile holds an organization's brand context used to steer generation
type CompanyProfile struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	UUID                   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_company_profiles_uuid" json:"uuid"`
	OrganizationID         uint           `gorm:"not null;uniqueIndex:uk_company_profiles_organization_id" json:"organization_id"`
	CompanyName            string         `gorm:"size:255;not null" json:"company_name"`
	Industry               *string        `gorm:"size:100" json:"industry,omitempty"`
	BrandVoice             *string        `gorm:"type:text" json:"brand_voice,omitempty"`
	ValuePropositions      pq.StringArray `gorm:"type:text[]" json:"value_propositions,omitempty"`
	PainPoints             pq.StringArray `gorm:"type:text[]" json:"pain_points,omitempty"`
	CompetitiveAdvantages  pq.StringArray `gorm:"type:text[]" json:"competitive_advantages,omitempty"`
	ComplianceRequirements pq.StringArray `gorm:"type:text[]" json:"compliance_requirements,omitempty"`
	TargetAudience         JSONDocument   `gorm:"type:jsonb" json:"target_audience,omitempty"`
	ProductServices        JSONDocument   `gorm:"type:jsonb" json:"product_services,omitempty"`
	BrandGuidelines        JSONDocument   `gorm:"type:jsonb" json:"brand_guidelines,omitempty"`
	CreatedAt              time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt              *time.Time     `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (CompanyProfile) TableName() string {
	return "company_profiles"
}

// BeforeCreate is called before creating a new record
func (p *CompanyProfile) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *CompanyProfile) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// ForbiddenWords returns brand_guidelines.forbidden_words
func (p *CompanyProfile) ForbiddenWords() []string {
	if p == nil || p.BrandGuidelines == nil {
		return nil
	}
	return p.BrandGuidelines.StringSlice("forbidden_words")
}

// CompanyProfileFilter represents filter criteria for company profiles
type CompanyProfileFilter struct {
	ID             *uint
	OrganizationID *uint
}
