package models

import (
	"time"

	"github.com/google/uuid"
)

// App represents one connected store installation (a tenant).
// ShopDomain is the unique external identifier assigned by the commerce
// platform at install time.
type App struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_apps_uuid;not null" json:"uuid"`
	ShopDomain    string     `gorm:"size:255;uniqueIndex:idx_apps_shop_domain;not null" json:"shop_domain"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	OwnerUUID     uuid.UUID  `gorm:"type:uuid;index:idx_apps_owner_uuid;not null" json:"owner_uuid"`
	IsActive      *bool      `gorm:"default:true" json:"is_active"`
	UninstalledAt *time.Time `json:"uninstalled_at,omitempty"`
	CreatedAt     time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Settings *AppSettings `gorm:"foreignKey:AppID" json:"settings,omitempty"`
}

// TableName returns the table name for App
func (App) TableName() string { return "apps" }

// AppFilter defines filter criteria for app queries
type AppFilter struct {
	UUID       *uuid.UUID `json:"uuid,omitempty"`
	ShopDomain *string    `json:"shop_domain,omitempty"`
	OwnerUUID  *uuid.UUID `json:"owner_uuid,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
}
