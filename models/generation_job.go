package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobStatus represents the lifecycle status of a generation job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// String returns the string representation of the status
func (s JobStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// CanTransitionTo checks if a job can move from s to next.
// pending may only skip processing when it is cancelled or fails before the worker starts.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing || next == JobStatusCancelled || next == JobStatusFailed
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed || next == JobStatusCancelled
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for JobStatus
func (s *JobStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = JobStatus(v)
	case []byte:
		*s = JobStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into JobStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for JobStatus
func (s JobStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid JobStatus: %s", s)
	}
	return string(s), nil
}

// JobType classifies the work a generation job performs
type JobType string

const (
	JobTypeInitialGeneration JobType = "initial_generation"
	JobTypeRevision          JobType = "revision"
	JobTypeRefinement        JobType = "refinement"
	JobTypeABVariant         JobType = "ab_variant"
	JobTypeSubjectLineTest   JobType = "subject_line_test"
	JobTypeOptimization      JobType = "optimization"
)

// String returns the string representation of the job type
func (t JobType) String() string {
	return string(t)
}

// Valid checks if the job type is valid
func (t JobType) Valid() bool {
	switch t {
	case JobTypeInitialGeneration, JobTypeRevision, JobTypeRefinement,
		JobTypeABVariant, JobTypeSubjectLineTest, JobTypeOptimization:
		return true
	default:
		return false
	}
}

// IsGenerationFamily reports whether the type produces full emails from campaign context
func (t JobType) IsGenerationFamily() bool {
	return t == JobTypeInitialGeneration || t == JobTypeRevision || t == JobTypeABVariant
}

// Scan implements the sql.Scanner interface for JobType
func (t *JobType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = JobType(v)
	case []byte:
		*t = JobType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into JobType", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for JobType
func (t JobType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid JobType: %s", t)
	}
	return string(t), nil
}

// GenerationJob is a unit of asynchronous AI generation work
type GenerationJob struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	UUID             uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uk_ai_generation_jobs_uuid" json:"uuid"`
	CampaignID       uint              `gorm:"not null;index:idx_ai_generation_jobs_campaign_created,priority:1" json:"campaign_id"`
	OrganizationID   uint              `gorm:"not null;index:idx_ai_generation_jobs_organization_id" json:"organization_id"`
	CreatedBy        *uint             `json:"created_by,omitempty"`
	TemplateID       *uint             `gorm:"index:idx_ai_generation_jobs_template_id" json:"template_id,omitempty"`
	JobType          JobType           `gorm:"type:varchar(50);not null" json:"job_type"`
	Status           JobStatus         `gorm:"type:varchar(20);not null;default:'pending';index:idx_ai_generation_jobs_status_created,priority:1" json:"status"`
	UserPrompt       string            `gorm:"type:text;not null" json:"user_prompt"`
	Context          JSONDocument      `gorm:"type:jsonb;not null" json:"context"`
	GeneratedContent *GeneratedContent `gorm:"type:jsonb" json:"generated_content,omitempty"`
	AIModel          *string           `gorm:"column:ai_model;size:100" json:"ai_model,omitempty"`
	TokensUsed       *int              `json:"tokens_used,omitempty"`
	ConfidenceScore  *float64          `json:"confidence_score,omitempty"`
	ErrorMessage     *string           `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_ai_generation_jobs_campaign_created,priority:2;index:idx_ai_generation_jobs_status_created,priority:2" json:"created_at"`
	UpdatedAt        *time.Time        `json:"updated_at,omitempty"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`

	Campaign *Campaign      `gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Template *EmailTemplate `gorm:"foreignKey:TemplateID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName returns the table name for the model
func (GenerationJob) TableName() string {
	return "ai_generation_jobs"
}

// BeforeCreate is called before creating a new record
func (j *GenerationJob) BeforeCreate(tx *gorm.DB) error {
	if j.UUID == uuid.Nil {
		j.UUID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.Context == nil {
		j.Context = JSONDocument{}
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsCancellable reports whether the client may still cancel the job
func (j *GenerationJob) IsCancellable() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusProcessing
}

// Payload decodes the frozen context into the typed payload for this job's type
func (j *GenerationJob) Payload() (JobPayload, error) {
	return DecodeJobPayload(j.JobType, j.Context)
}

// GenerationJobFilter represents filter criteria for generation jobs
type GenerationJobFilter struct {
	ID             *uint
	UUID           *uuid.UUID
	CampaignID     *uint
	OrganizationID *uint
	JobType        *JobType
	Status         *JobStatus
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
}
