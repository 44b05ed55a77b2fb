package models

import (
	"time"

	"github.com/google/uuid"
)

// Catalog links an app's pixel to a remote product catalog. Practically at
// most one row per app is active; creating a new catalog deactivates the
// previous one.
type Catalog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_catalogs_uuid;not null" json:"uuid"`
	AppID             uint      `gorm:"index:idx_catalogs_app_id;not null" json:"app_id"`
	ExternalCatalogID string    `gorm:"size:64;not null" json:"external_catalog_id"`
	Name              string    `gorm:"size:255" json:"name"`
	IsActive          *bool     `gorm:"default:true;index:idx_catalogs_is_active" json:"is_active"`
	CreatedAt         time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt         time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Catalog
func (Catalog) TableName() string { return "catalogs" }

// CatalogFilter defines filter criteria for catalog queries
type CatalogFilter struct {
	AppID    *uint `json:"app_id,omitempty"`
	IsActive *bool `json:"is_active,omitempty"`
}
