package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/mailwright/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailTemplateRepositoryImpl implements EmailTemplateRepository
type EmailTemplateRepositoryImpl struct {
	*BaseRepository[models.EmailTemplate, models.EmailTemplateFilter]
}

// NewEmailTemplateRepository creates a new email template repository
func NewEmailTemplateRepository(db *gorm.DB) EmailTemplateRepository {
	return &EmailTemplateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EmailTemplate, models.EmailTemplateFilter](db),
	}
}

// ByUUIDForCampaign retrieves a template only if it belongs to the campaign
func (r *EmailTemplateRepositoryImpl) ByUUIDForCampaign(ctx context.Context, templateUUID uuid.UUID, campaignID uint) (*models.EmailTemplate, error) {
	db := r.getDB(ctx)

	var template models.EmailTemplate
	err := db.Where("uuid = ? AND campaign_id = ?", templateUUID, campaignID).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &template, nil
}

// MaxVersion returns the latest template version of the campaign. Inside a
// transaction it first locks the campaign row, so a second materialization
// waits for the first to commit and then reads its version. The lock holds
// even when the campaign has no templates yet.
func (r *EmailTemplateRepositoryImpl) MaxVersion(ctx context.Context, campaignID uint) (int, error) {
	db := r.getDB(ctx)

	if locking := lockingClause(ctx); len(locking) > 0 {
		var locked []uint
		err := db.Model(&models.Campaign{}).
			Clauses(locking...).
			Where("id = ?", campaignID).
			Pluck("id", &locked).Error
		if err != nil {
			return 0, fmt.Errorf("failed to lock campaign %d: %w", campaignID, err)
		}
	}

	var versions []int
	err := db.Model(&models.EmailTemplate{}).
		Where("campaign_id = ?", campaignID).
		Order("version DESC").
		Limit(1).
		Pluck("version", &versions).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max template version: %w", err)
	}

	if len(versions) == 0 {
		return 0, nil
	}
	return versions[0], nil
}

func (r *EmailTemplateRepositoryImpl) ByFilter(ctx context.Context, filter models.EmailTemplateFilter, orderBy string, limit, offset int) ([]*models.EmailTemplate, error) {
	db := r.getDB(ctx)

	var templates []*models.EmailTemplate
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

	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *EmailTemplateRepositoryImpl) Count(ctx context.Context, filter models.EmailTemplateFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.getDB(ctx).Model(&models.EmailTemplate{}), filter).Count(&count).Error
	return count, err
}

func (r *EmailTemplateRepositoryImpl) applyFilter(db *gorm.DB, filter models.EmailTemplateFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.IsCurrent != nil {
		db = db.Where("is_current = ?", *filter.IsCurrent)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	return db
}
