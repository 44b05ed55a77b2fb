package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppRepositoryImpl implements AppRepository
type AppRepositoryImpl struct {
	*BaseRepository[models.App, models.AppFilter]
}

func NewAppRepository(db *gorm.DB) AppRepository {
	return &AppRepositoryImpl{BaseRepository: NewBaseRepository[models.App, models.AppFilter](db)}
}

func (r *AppRepositoryImpl) applyFilter(db *gorm.DB, filter models.AppFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.ShopDomain != nil {
		db = db.Where("shop_domain = ?", *filter.ShopDomain)
	}
	if filter.OwnerUUID != nil {
		db = db.Where("owner_uuid = ?", *filter.OwnerUUID)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

func (r *AppRepositoryImpl) ByFilter(ctx context.Context, filter models.AppFilter, orderBy string, limit, offset int) ([]*models.App, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.App{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.App
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find apps by filter: %w", err)
	}
	return rows, nil
}

func (r *AppRepositoryImpl) Count(ctx context.Context, filter models.AppFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.App{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count apps: %w", err)
	}
	return count, nil
}

func (r *AppRepositoryImpl) Exists(ctx context.Context, filter models.AppFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *AppRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.App, error) {
	db := r.getDB(ctx)
	var row models.App
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AppRepositoryImpl) ByShopDomain(ctx context.Context, shopDomain string) (*models.App, error) {
	db := r.getDB(ctx)
	var row models.App
	if err := db.Where("shop_domain = ?", shopDomain).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// MarkUninstalled soft-disables the app; event rows are removed by the
// tenant-wide cascade handled at the flow level.
func (r *AppRepositoryImpl) MarkUninstalled(ctx context.Context, appID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.App{}).
		Where("id = ?", appID).
		Updates(map[string]any{
			"is_active":      false,
			"uninstalled_at": utils.UTCNow(),
			"updated_at":     utils.UTCNow(),
		}).Error
}
