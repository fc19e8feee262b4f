package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus represents the lifecycle status of an email campaign
type CampaignStatus string

const (
	CampaignStatusDraft      CampaignStatus = "draft"
	CampaignStatusGenerating CampaignStatus = "generating"
	CampaignStatusReview     CampaignStatus = "review"
	CampaignStatusScheduled  CampaignStatus = "scheduled"
	CampaignStatusSending    CampaignStatus = "sending"
	CampaignStatusSent       CampaignStatus = "sent"
	CampaignStatusPaused     CampaignStatus = "paused"
	CampaignStatusArchived   CampaignStatus = "archived"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusGenerating, CampaignStatusReview,
		CampaignStatusScheduled, CampaignStatusSending, CampaignStatusSent,
		CampaignStatusPaused, CampaignStatusArchived:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// Campaign represents an email campaign owned by an organization
type Campaign struct {
	ID                        uint           `gorm:"primaryKey" json:"id"`
	UUID                      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_email_campaigns_uuid" json:"uuid"`
	OrganizationID            uint           `gorm:"not null;index:idx_email_campaigns_organization_id" json:"organization_id"`
	CreatedBy                 *uint          `json:"created_by,omitempty"`
	Name                      string         `gorm:"size:255;not null;index:idx_email_campaigns_name" json:"name"`
	Description               *string        `gorm:"type:text" json:"description,omitempty"`
	Status                    CampaignStatus `gorm:"type:varchar(50);not null;default:'draft';index:idx_email_campaigns_status" json:"status"`
	PrimaryGoal               string         `gorm:"size:100;not null" json:"primary_goal"`
	TargetAudienceDescription *string        `gorm:"type:text" json:"target_audience_description,omitempty"`
	SuccessCriteria           *string        `gorm:"type:text" json:"success_criteria,omitempty"`
	CreatedAt                 time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_email_campaigns_created_at" json:"created_at"`
	UpdatedAt                 *time.Time     `json:"updated_at,omitempty"`

	// Relations
	Objectives []CampaignObjective `gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE" json:"objectives,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "email_campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsEditable checks if the campaign content can still be changed
func (c *Campaign) IsEditable() bool {
	switch c.Status {
	case CampaignStatusDraft, CampaignStatusGenerating, CampaignStatusReview, CampaignStatusPaused:
		return true
	default:
		return false
	}
}

// CampaignObjective is a measurable goal attached to a campaign
type CampaignObjective struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_campaign_objectives_uuid" json:"uuid"`
	CampaignID    uint      `gorm:"not null;index:idx_campaign_objectives_campaign_id" json:"campaign_id"`
	ObjectiveType string    `gorm:"size:50;not null;default:'primary'" json:"objective_type"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	KPIName       string    `gorm:"column:kpi_name;size:100;not null" json:"kpi_name"`
	TargetValue   float64   `gorm:"not null" json:"target_value"`
	Priority      int       `gorm:"not null;default:1" json:"priority"`
	CreatedAt     time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (CampaignObjective) TableName() string {
	return "campaign_objectives"
}

// BeforeCreate is called before creating a new record
func (o *CampaignObjective) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID             *uint           `json:"id,omitempty"`
	UUID           *uuid.UUID      `json:"uuid,omitempty"`
	OrganizationID *uint           `json:"organization_id,omitempty"`
	Status         *CampaignStatus `json:"status,omitempty"`
	Name           *string         `json:"name,omitempty"`
	CreatedAfter   *time.Time      `json:"created_after,omitempty"`
	CreatedBefore  *time.Time      `json:"created_before,omitempty"`
}
