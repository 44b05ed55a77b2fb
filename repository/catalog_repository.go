package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
	"gorm.io/gorm"
)

// CatalogRepositoryImpl implements CatalogRepository
type CatalogRepositoryImpl struct {
	*BaseRepository[models.Catalog, models.CatalogFilter]
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &CatalogRepositoryImpl{BaseRepository: NewBaseRepository[models.Catalog, models.CatalogFilter](db)}
}

func (r *CatalogRepositoryImpl) applyFilter(db *gorm.DB, filter models.CatalogFilter) *gorm.DB {
	if filter.AppID != nil {
		db = db.Where("app_id = ?", *filter.AppID)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

func (r *CatalogRepositoryImpl) ByFilter(ctx context.Context, filter models.CatalogFilter, orderBy string, limit, offset int) ([]*models.Catalog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Catalog{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Catalog
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find catalogs by filter: %w", err)
	}
	return rows, nil
}

func (r *CatalogRepositoryImpl) Count(ctx context.Context, filter models.CatalogFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Catalog{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count catalogs: %w", err)
	}
	return count, nil
}

func (r *CatalogRepositoryImpl) Exists(ctx context.Context, filter models.CatalogFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *CatalogRepositoryImpl) ActiveByAppID(ctx context.Context, appID uint) (*models.Catalog, error) {
	db := r.getDB(ctx)
	var row models.Catalog
	if err := db.Where("app_id = ? AND is_active = ?", appID, true).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *CatalogRepositoryImpl) DeactivateByAppID(ctx context.Context, appID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Catalog{}).
		Where("app_id = ? AND is_active = ?", appID, true).
		Updates(map[string]any{"is_active": false, "updated_at": utils.UTCNow()}).Error
}
