package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateStatus represents the review status of an email template
type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "draft"
	TemplateStatusReview   TemplateStatus = "review"
	TemplateStatusApproved TemplateStatus = "approved"
	TemplateStatusRejected TemplateStatus = "rejected"
	TemplateStatusArchived TemplateStatus = "archived"
)

func (s TemplateStatus) String() string {
	return string(s)
}

func (s TemplateStatus) Valid() bool {
	switch s {
	case TemplateStatusDraft, TemplateStatusReview, TemplateStatusApproved,
		TemplateStatusRejected, TemplateStatusArchived:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for TemplateStatus
func (s *TemplateStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = TemplateStatus(v)
	case []byte:
		*s = TemplateStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into TemplateStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for TemplateStatus
func (s TemplateStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid TemplateStatus: %s", s)
	}
	return string(s), nil
}

// Template provenance values
const (
	GeneratedByAI     = "ai"
	GeneratedByHuman  = "human"
	GeneratedByHybrid = "hybrid"
)

// EmailTemplate is a versioned piece of email content belonging to a campaign
type EmailTemplate struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UUID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_email_templates_uuid" json:"uuid"`
	CampaignID       uint           `gorm:"not null;uniqueIndex:uk_email_templates_campaign_version,priority:1;index:idx_email_templates_campaign_id" json:"campaign_id"`
	OrganizationID   uint           `gorm:"not null;index:idx_email_templates_organization_id" json:"organization_id"`
	Version          int            `gorm:"not null;uniqueIndex:uk_email_templates_campaign_version,priority:2" json:"version"`
	IsCurrent        bool           `gorm:"not null;default:false" json:"is_current"`
	SubjectLine      string         `gorm:"size:500;not null" json:"subject_line"`
	PreviewText      *string        `gorm:"size:500" json:"preview_text,omitempty"`
	HTMLContent      string         `gorm:"column:html_content;type:text;not null" json:"html_content"`
	PlainTextContent string         `gorm:"type:text;not null" json:"plain_text_content"`
	GeneratedBy      string         `gorm:"size:20;not null;default:'human'" json:"generated_by"`
	AIModelUsed      *string        `gorm:"column:ai_model_used;size:100" json:"ai_model_used,omitempty"`
	GenerationPrompt *string        `gorm:"type:text" json:"generation_prompt,omitempty"`
	AIMetadata       JSONDocument   `gorm:"column:ai_metadata;type:jsonb" json:"ai_metadata,omitempty"`
	Status           TemplateStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_email_templates_status" json:"status"`
	CreatedBy        *uint          `json:"created_by,omitempty"`
	CreatedAt        time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt        *time.Time     `json:"updated_at,omitempty"`

	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for the model
func (EmailTemplate) TableName() string {
	return "email_templates"
}

// BeforeCreate is called before creating a new record
func (t *EmailTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TemplateStatusDraft
	}
	if t.GeneratedBy == "" {
		t.GeneratedBy = GeneratedByHuman
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (t *EmailTemplate) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	t.UpdatedAt = &now
	return nil
}

// ContentSnapshot is the part of a template a refinement or optimization job works on
func (t *EmailTemplate) ContentSnapshot() TemplateSnapshot {
	return TemplateSnapshot{
		TemplateID:       t.UUID.String(),
		Version:          t.Version,
		SubjectLine:      t.SubjectLine,
		PreviewText:      t.PreviewText,
		HTMLContent:      t.HTMLContent,
		PlainTextContent: t.PlainTextContent,
	}
}

// EmailTemplateFilter represents filter criteria for templates
type EmailTemplateFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	CampaignID *uint
	IsCurrent  *bool
	Status     *TemplateStatus
}
