package models

import (
	"time"
)

// AppSettings holds the advertising-platform configuration for one app.
// Exactly one row per app. AccessToken is stored sealed (AEAD); the
// plaintext never touches the database.
type AppSettings struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AppID             uint      `gorm:"uniqueIndex:idx_app_settings_app_id;not null" json:"app_id"`
	Enabled           *bool     `gorm:"default:false" json:"enabled"`
	AccessTokenSealed string    `gorm:"type:text" json:"-"`
	PixelID           string    `gorm:"size:64" json:"pixel_id"`
	CatalogID         *string   `gorm:"size:64" json:"catalog_id,omitempty"`
	TestEventCode     *string   `gorm:"size:64" json:"test_event_code,omitempty"`
	Currency          string    `gorm:"size:3;default:'USD'" json:"currency"`
	TrackPageview     *bool     `gorm:"default:true" json:"track_pageview"`
	TrackAddToCart    *bool     `gorm:"default:true" json:"track_add_to_cart"`
	TrackPurchase     *bool     `gorm:"default:true" json:"track_purchase"`
	CreatedAt         time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt         time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for AppSettings
func (AppSettings) TableName() string { return "app_settings" }

// AppSettingsFilter defines filter criteria for settings queries
type AppSettingsFilter struct {
	AppID   *uint `json:"app_id,omitempty"`
	Enabled *bool `json:"enabled,omitempty"`
}

// AutoTrackEnabled reports whether the per-event auto-tracking toggle for
// the given standard event name is on. Custom event names are always on.
func (s *AppSettings) AutoTrackEnabled(eventName EventName) bool {
	switch eventName {
	case EventNamePageview:
		return s.TrackPageview == nil || *s.TrackPageview
	case EventNameAddToCart:
		return s.TrackAddToCart == nil || *s.TrackAddToCart
	case EventNamePurchase:
		return s.TrackPurchase == nil || *s.TrackPurchase
	default:
		return true
	}
}
