// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AppRepository defines operations for connected store installations
type AppRepository interface {
	Repository[models.App, models.AppFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.App, error)
	ByShopDomain(ctx context.Context, shopDomain string) (*models.App, error)
	MarkUninstalled(ctx context.Context, appID uint) error
}

// AppSettingsRepository defines operations for per-app advertising settings
type AppSettingsRepository interface {
	Repository[models.AppSettings, models.AppSettingsFilter]
	ByAppID(ctx context.Context, appID uint) (*models.AppSettings, error)
	Update(ctx context.Context, settings *models.AppSettings) error
}

// EventNameCount is one row of the counts-by-event-name aggregate
type EventNameCount struct {
	EventName  string  `json:"event_name"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// DailyCount is one row of the counts-by-calendar-day aggregate
type DailyCount struct {
	Day        time.Time `json:"day"`
	Count      int64     `json:"count"`
	TotalValue float64   `json:"total_value"`
}

// UTMCount is one row of a UTM breakdown aggregate. Which of the three
// fields is populated depends on the grouping requested.
type UTMCount struct {
	Source     string  `json:"source,omitempty"`
	Medium     string  `json:"medium,omitempty"`
	Campaign   string  `json:"campaign,omitempty"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// TrackedEventRepository defines operations for the append-only event store.
// There is deliberately no update or single-row delete operation.
type TrackedEventRepository interface {
	Repository[models.TrackedEvent, models.TrackedEventFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.TrackedEvent, error)
	CountByEventName(ctx context.Context, appID uint, since time.Time) ([]EventNameCount, error)
	CountByDay(ctx context.Context, appID uint, since time.Time) ([]DailyCount, error)
	CountBySource(ctx context.Context, appID uint, since time.Time) ([]UTMCount, error)
	CountByCampaign(ctx context.Context, appID uint, since time.Time) ([]UTMCount, error)
	DeleteByAppID(ctx context.Context, appID uint) error
}

// CatalogRepository defines operations for remote catalog links
type CatalogRepository interface {
	Repository[models.Catalog, models.CatalogFilter]
	ActiveByAppID(ctx context.Context, appID uint) (*models.Catalog, error)
	DeactivateByAppID(ctx context.Context, appID uint) error
}
