package repository

import (
	"context"
	"errors"

	"github.com/amirphl/mailwright/models"
	"gorm.io/gorm"
)

// CompanyProfileRepositoryImpl implements CompanyProfileRepository
type CompanyProfileRepositoryImpl struct {
	*BaseRepository[models.CompanyProfile, models.CompanyProfileFilter]
}

// NewCompanyProfileRepository creates a new company profile repository
func NewCompanyProfileRepository(db *gorm.DB) CompanyProfileRepository {
	return &CompanyProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CompanyProfile, models.CompanyProfileFilter](db),
	}
}

// ByOrganizationID returns the organization's profile or nil if it has none
func (r *CompanyProfileRepositoryImpl) ByOrganizationID(ctx context.Context, organizationID uint) (*models.CompanyProfile, error) {
	db := r.getDB(ctx)

	var profile models.CompanyProfile
	err := db.Where("organization_id = ?", organizationID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

func (r *CompanyProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.CompanyProfileFilter, orderBy string, limit, offset int) ([]*models.CompanyProfile, error) {
	db := r.getDB(ctx)

	var profiles []*models.CompanyProfile
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

	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *CompanyProfileRepositoryImpl) Count(ctx context.Context, filter models.CompanyProfileFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.getDB(ctx).Model(&models.CompanyProfile{}), filter).Count(&count).Error
	return count, err
}

func (r *CompanyProfileRepositoryImpl) applyFilter(db *gorm.DB, filter models.CompanyProfileFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.OrganizationID != nil {
		db = db.Where("organization_id = ?", *filter.OrganizationID)
	}
	return db
}
