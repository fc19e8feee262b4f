// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/mailwright/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CampaignRepository defines operations for email campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	// ByUUIDForOrganization loads a campaign and its objectives, nil when it is
	// missing or owned by another organization
	ByUUIDForOrganization(ctx context.Context, campaignUUID uuid.UUID, organizationID uint) (*models.Campaign, error)
	UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error
}

// CompanyProfileRepository defines operations for brand profiles
type CompanyProfileRepository interface {
	Repository[models.CompanyProfile, models.CompanyProfileFilter]
	ByOrganizationID(ctx context.Context, organizationID uint) (*models.CompanyProfile, error)
}

// EmailTemplateRepository defines operations for versioned email templates
type EmailTemplateRepository interface {
	Repository[models.EmailTemplate, models.EmailTemplateFilter]
	ByUUIDForCampaign(ctx context.Context, templateUUID uuid.UUID, campaignID uint) (*models.EmailTemplate, error)
	// MaxVersion returns the highest template version of a campaign, 0 when none exist
	MaxVersion(ctx context.Context, campaignID uint) (int, error)
}

// JobCompletion carries the output written by processing -> completed
type JobCompletion struct {
	Content         models.GeneratedContent
	AIModel         string
	TokensUsed      int
	ConfidenceScore float64
	CompletedAt     time.Time
}

// GenerationJobRepository is the job store. Every state transition is a single
// conditional update; the boolean result reports whether the row was in the
// expected pre-state and was changed.
type GenerationJobRepository interface {
	Repository[models.GenerationJob, models.GenerationJobFilter]
	ByUUID(ctx context.Context, jobUUID uuid.UUID) (*models.GenerationJob, error)
	ByUUIDForCampaign(ctx context.Context, jobUUID uuid.UUID, campaignID uint) (*models.GenerationJob, error)
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.GenerationJob, error)
	CountByCampaign(ctx context.Context, campaignID uint) (int64, error)

	MarkProcessing(ctx context.Context, id uint, startedAt time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id uint, completion JobCompletion) (bool, error)
	MarkFailed(ctx context.Context, id uint, message string, failedAt time.Time) (bool, error)
	Cancel(ctx context.Context, id uint, cancelledAt time.Time) (bool, error)
	SetTemplate(ctx context.Context, id uint, templateID uint) error

	ListStaleProcessing(ctx context.Context, startedBefore time.Time, limit int) ([]*models.GenerationJob, error)
	ListStalePending(ctx context.Context, idleSince time.Time, limit int) ([]*models.GenerationJob, error)
	MarkRedispatched(ctx context.Context, id uint, dispatchedAt time.Time) (bool, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
}
