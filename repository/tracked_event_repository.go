package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackedEventRepositoryImpl implements TrackedEventRepository
type TrackedEventRepositoryImpl struct {
	*BaseRepository[models.TrackedEvent, models.TrackedEventFilter]
}

func NewTrackedEventRepository(db *gorm.DB) TrackedEventRepository {
	return &TrackedEventRepositoryImpl{BaseRepository: NewBaseRepository[models.TrackedEvent, models.TrackedEventFilter](db)}
}

func (r *TrackedEventRepositoryImpl) applyFilter(db *gorm.DB, filter models.TrackedEventFilter) *gorm.DB {
	if filter.AppID != nil {
		db = db.Where("app_id = ?", *filter.AppID)
	}
	if filter.EventName != nil {
		db = db.Where("event_name = ?", *filter.EventName)
	}
	if filter.Source != nil {
		db = db.Where("source = ?", *filter.Source)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter returns events most-recent-first unless the caller overrides the
// ordering. Pagination is plain offset/limit; a concurrent insert between
// two pages can shift results.
func (r *TrackedEventRepositoryImpl) ByFilter(ctx context.Context, filter models.TrackedEventFilter, orderBy string, limit, offset int) ([]*models.TrackedEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TrackedEvent{}), filter)
	if orderBy == "" {
		orderBy = "created_at DESC, id DESC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.TrackedEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find events by filter: %w", err)
	}
	return rows, nil
}

func (r *TrackedEventRepositoryImpl) Count(ctx context.Context, filter models.TrackedEventFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.TrackedEvent{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *TrackedEventRepositoryImpl) Exists(ctx context.Context, filter models.TrackedEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *TrackedEventRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.TrackedEvent, error) {
	db := r.getDB(ctx)
	var row models.TrackedEvent
	if err := db.Where("uuid = ?", id).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *TrackedEventRepositoryImpl) CountByEventName(ctx context.Context, appID uint, since time.Time) ([]EventNameCount, error) {
	db := r.getDB(ctx)
	var rows []EventNameCount
	err := db.Model(&models.TrackedEvent{}).
		Select("event_name, COUNT(*) AS count, COALESCE(SUM(value), 0) AS total_value").
		Where("app_id = ? AND created_at >= ?", appID, since).
		Group("event_name").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate events by name: %w", err)
	}
	return rows, nil
}

func (r *TrackedEventRepositoryImpl) CountByDay(ctx context.Context, appID uint, since time.Time) ([]DailyCount, error) {
	db := r.getDB(ctx)
	var rows []DailyCount
	err := db.Model(&models.TrackedEvent{}).
		Select("date_trunc('day', created_at) AS day, COUNT(*) AS count, COALESCE(SUM(value), 0) AS total_value").
		Where("app_id = ? AND created_at >= ?", appID, since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate events by day: %w", err)
	}
	return rows, nil
}

// CountBySource groups on the utm_source/utm_medium pair carried in the
// JSONB custom-data bag. Events without UTM data land in the '(none)' bucket.
func (r *TrackedEventRepositoryImpl) CountBySource(ctx context.Context, appID uint, since time.Time) ([]UTMCount, error) {
	db := r.getDB(ctx)
	var rows []UTMCount
	err := db.Model(&models.TrackedEvent{}).
		Select("COALESCE(custom_data->>'utm_source', '(none)') AS source, COALESCE(custom_data->>'utm_medium', '(none)') AS medium, COUNT(*) AS count, COALESCE(SUM(value), 0) AS total_value").
		Where("app_id = ? AND created_at >= ?", appID, since).
		Group("source, medium").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate events by utm source: %w", err)
	}
	return rows, nil
}

func (r *TrackedEventRepositoryImpl) CountByCampaign(ctx context.Context, appID uint, since time.Time) ([]UTMCount, error) {
	db := r.getDB(ctx)
	var rows []UTMCount
	err := db.Model(&models.TrackedEvent{}).
		Select("COALESCE(custom_data->>'utm_campaign', '(none)') AS campaign, COUNT(*) AS count, COALESCE(SUM(value), 0) AS total_value").
		Where("app_id = ? AND created_at >= ?", appID, since).
		Group("campaign").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate events by utm campaign: %w", err)
	}
	return rows, nil
}

// DeleteByAppID is the tenant-wide cascade used on uninstall. It is the
// only delete path for event rows.
func (r *TrackedEventRepositoryImpl) DeleteByAppID(ctx context.Context, appID uint) error {
	db := r.getDB(ctx)
	if err := db.Where("app_id = ?", appID).Delete(&models.TrackedEvent{}).Error; err != nil {
		return fmt.Errorf("failed to delete events for app %d: %w", appID, err)
	}
	return nil
}
