package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/mailwright/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	cancellableStatuses = []string{string(models.JobStatusPending), string(models.JobStatusProcessing)}
	failableStatuses    = cancellableStatuses
)

// GenerationJobRepositoryImpl implements GenerationJobRepository
type GenerationJobRepositoryImpl struct {
	*BaseRepository[models.GenerationJob, models.GenerationJobFilter]
}

// NewGenerationJobRepository creates a new generation job repository
func NewGenerationJobRepository(db *gorm.DB) GenerationJobRepository {
	return &GenerationJobRepositoryImpl{
		BaseRepository: NewBaseRepository[models.GenerationJob, models.GenerationJobFilter](db),
	}
}

// ByUUID retrieves a job by its public identifier
func (r *GenerationJobRepositoryImpl) ByUUID(ctx context.Context, jobUUID uuid.UUID) (*models.GenerationJob, error) {
	db := r.getDB(ctx)

	var job models.GenerationJob
	err := db.Where("uuid = ?", jobUUID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find generation job %s: %w", jobUUID, err)
	}

	return &job, nil
}

// ByUUIDForCampaign retrieves a job only if it belongs to the campaign
func (r *GenerationJobRepositoryImpl) ByUUIDForCampaign(ctx context.Context, jobUUID uuid.UUID, campaignID uint) (*models.GenerationJob, error) {
	db := r.getDB(ctx)

	var job models.GenerationJob
	err := db.Where("uuid = ? AND campaign_id = ?", jobUUID, campaignID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find generation job %s: %w", jobUUID, err)
	}

	return &job, nil
}

// ListByCampaign lists a campaign's jobs newest first
func (r *GenerationJobRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.GenerationJob, error) {
	filter := models.GenerationJobFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
}

// CountByCampaign counts a campaign's jobs
func (r *GenerationJobRepositoryImpl) CountByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	return r.Count(ctx, models.GenerationJobFilter{CampaignID: &campaignID})
}

// MarkProcessing moves a pending job to processing
func (r *GenerationJobRepositoryImpl) MarkProcessing(ctx context.Context, id uint, startedAt time.Time) (bool, error) {
	return r.transition(ctx, id, []string{string(models.JobStatusPending)}, map[string]any{
		"status":     models.JobStatusProcessing,
		"started_at": startedAt,
		"updated_at": startedAt,
	})
}

// MarkCompleted stores the output of a processing job and completes it
func (r *GenerationJobRepositoryImpl) MarkCompleted(ctx context.Context, id uint, completion JobCompletion) (bool, error) {
	return r.transition(ctx, id, []string{string(models.JobStatusProcessing)}, map[string]any{
		"status":            models.JobStatusCompleted,
		"generated_content": completion.Content,
		"ai_model":          completion.AIModel,
		"tokens_used":       completion.TokensUsed,
		"confidence_score":  completion.ConfidenceScore,
		"completed_at":      completion.CompletedAt,
		"updated_at":        completion.CompletedAt,
	})
}

// MarkFailed fails a pending or processing job. started_at is filled in when
// the job never reached processing.
func (r *GenerationJobRepositoryImpl) MarkFailed(ctx context.Context, id uint, message string, failedAt time.Time) (bool, error) {
	return r.transition(ctx, id, failableStatuses, map[string]any{
		"status":        models.JobStatusFailed,
		"error_message": message,
		"started_at":    gorm.Expr("COALESCE(started_at, ?)", failedAt),
		"completed_at":  failedAt,
		"updated_at":    failedAt,
	})
}

// Cancel cancels a pending or processing job
func (r *GenerationJobRepositoryImpl) Cancel(ctx context.Context, id uint, cancelledAt time.Time) (bool, error) {
	return r.transition(ctx, id, cancellableStatuses, map[string]any{
		"status":       models.JobStatusCancelled,
		"started_at":   gorm.Expr("COALESCE(started_at, ?)", cancelledAt),
		"completed_at": cancelledAt,
		"updated_at":   cancelledAt,
	})
}

// MarkRedispatched stamps updated_at on a still-pending job so the next stale
// scan measures its age from this re-enqueue
func (r *GenerationJobRepositoryImpl) MarkRedispatched(ctx context.Context, id uint, dispatchedAt time.Time) (bool, error) {
	return r.transition(ctx, id, []string{string(models.JobStatusPending)}, map[string]any{
		"updated_at": dispatchedAt,
	})
}

// SetTemplate records the template materialized from this job
func (r *GenerationJobRepositoryImpl) SetTemplate(ctx context.Context, id uint, templateID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	err = db.Model(&models.GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"template_id": templateID,
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		err = fmt.Errorf("failed to link template to job %d: %w", id, err)
	}

	return finish(db, shouldCommit, err)
}

// transition applies updates only when the row is in one of the expected statuses
func (r *GenerationJobRepositoryImpl) transition(ctx context.Context, id uint, from []string, updates map[string]any) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}

	res := db.Model(&models.GenerationJob{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		err = fmt.Errorf("failed to transition job %d to %v: %w", id, updates["status"], res.Error)
	}

	if err := finish(db, shouldCommit, err); err != nil {
		return false, err
	}
	return res.RowsAffected == 1, nil
}

// ListStaleProcessing lists processing jobs started before the cutoff
func (r *GenerationJobRepositoryImpl) ListStaleProcessing(ctx context.Context, startedBefore time.Time, limit int) ([]*models.GenerationJob, error) {
	db := r.getDB(ctx)

	var jobs []*models.GenerationJob
	err := db.Where("status = ? AND started_at < ?", models.JobStatusProcessing, startedBefore).
		Order("started_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale processing jobs: %w", err)
	}

	return jobs, nil
}

// ListStalePending lists pending jobs neither created nor re-dispatched since the cutoff
func (r *GenerationJobRepositoryImpl) ListStalePending(ctx context.Context, idleSince time.Time, limit int) ([]*models.GenerationJob, error) {
	db := r.getDB(ctx)

	var jobs []*models.GenerationJob
	err := db.Where("status = ? AND COALESCE(updated_at, created_at) < ?", models.JobStatusPending, idleSince).
		Order("COALESCE(updated_at, created_at) ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending jobs: %w", err)
	}

	return jobs, nil
}

// ByFilter retrieves jobs based on filter criteria
func (r *GenerationJobRepositoryImpl) ByFilter(ctx context.Context, filter models.GenerationJobFilter, orderBy string, limit, offset int) ([]*models.GenerationJob, error) {
	db := r.getDB(ctx)

	var jobs []*models.GenerationJob
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list generation jobs: %w", err)
	}

	return jobs, nil
}

// Count returns the number of jobs matching the filter
func (r *GenerationJobRepositoryImpl) Count(ctx context.Context, filter models.GenerationJobFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.GenerationJob{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count generation jobs: %w", err)
	}

	return count, nil
}

func (r *GenerationJobRepositoryImpl) applyFilter(db *gorm.DB, filter models.GenerationJobFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.OrganizationID != nil {
		db = db.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.JobType != nil {
		db = db.Where("job_type = ?", *filter.JobType)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}
	return db
}
