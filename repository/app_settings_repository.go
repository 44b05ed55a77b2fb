package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
	"gorm.io/gorm"
)

// AppSettingsRepositoryImpl implements AppSettingsRepository
type AppSettingsRepositoryImpl struct {
	*BaseRepository[models.AppSettings, models.AppSettingsFilter]
}

func NewAppSettingsRepository(db *gorm.DB) AppSettingsRepository {
	return &AppSettingsRepositoryImpl{BaseRepository: NewBaseRepository[models.AppSettings, models.AppSettingsFilter](db)}
}

func (r *AppSettingsRepositoryImpl) applyFilter(db *gorm.DB, filter models.AppSettingsFilter) *gorm.DB {
	if filter.AppID != nil {
		db = db.Where("app_id = ?", *filter.AppID)
	}
	if filter.Enabled != nil {
		db = db.Where("enabled = ?", *filter.Enabled)
	}
	return db
}

func (r *AppSettingsRepositoryImpl) ByFilter(ctx context.Context, filter models.AppSettingsFilter, orderBy string, limit, offset int) ([]*models.AppSettings, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AppSettings{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.AppSettings
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find app settings by filter: %w", err)
	}
	return rows, nil
}

func (r *AppSettingsRepositoryImpl) Count(ctx context.Context, filter models.AppSettingsFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.AppSettings{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count app settings: %w", err)
	}
	return count, nil
}

func (r *AppSettingsRepositoryImpl) Exists(ctx context.Context, filter models.AppSettingsFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *AppSettingsRepositoryImpl) ByAppID(ctx context.Context, appID uint) (*models.AppSettings, error) {
	db := r.getDB(ctx)
	var row models.AppSettings
	if err := db.Where("app_id = ?", appID).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AppSettingsRepositoryImpl) Update(ctx context.Context, settings *models.AppSettings) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	settings.UpdatedAt = utils.UTCNow()
	err = db.Save(settings).Error
	if err != nil {
		return fmt.Errorf("failed to update app settings: %w", err)
	}

	return nil
}
