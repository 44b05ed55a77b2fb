package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventName represents a storefront event name. The three standard names
// map onto the advertising platform's canonical events; anything else is
// treated as a custom event and forwarded verbatim.
type EventName string

const (
	EventNamePageview  EventName = "pageview"
	EventNameAddToCart EventName = "addToCart"
	EventNamePurchase  EventName = "purchase"
)

// Standard reports whether the name is one of the built-in storefront events.
func (n EventName) Standard() bool {
	switch n {
	case EventNamePageview, EventNameAddToCart, EventNamePurchase:
		return true
	default:
		return false
	}
}

// EventSource tags where an event record originated.
type EventSource string

const (
	EventSourceWebhook EventSource = "webhook"
	EventSourcePixel   EventSource = "pixel"
)

// Valid checks if the source is valid.
func (s EventSource) Valid() bool {
	switch s {
	case EventSourceWebhook, EventSourcePixel:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for EventSource.
func (s *EventSource) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = EventSource(v)
	case []byte:
		*s = EventSource(string(v))
	default:
		return fmt.Errorf("cannot scan %T into EventSource", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for EventSource.
func (s EventSource) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid EventSource: %s", s)
	}
	return string(s), nil
}

// TrackedEvent represents a single recorded storefront action. Rows are
// append-only: there is no update path and the only delete is the
// tenant-wide cascade on uninstall.
type TrackedEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_tracked_events_uuid;not null" json:"uuid"`
	AppID       uint           `gorm:"index:idx_tracked_events_app_id;not null" json:"app_id"`
	EventName   EventName      `gorm:"size:64;index:idx_tracked_events_event_name;not null" json:"event_name"`
	ProductID   *string        `gorm:"size:64" json:"product_id,omitempty"`
	ProductName *string        `gorm:"size:255" json:"product_name,omitempty"`
	Value       float64        `gorm:"type:numeric(14,2);default:0" json:"value"`
	Quantity    int            `gorm:"default:0" json:"quantity"`
	CustomData  map[string]any `gorm:"type:jsonb;default:'{}';serializer:json" json:"custom_data"`
	Source      EventSource    `gorm:"size:16;not null" json:"source"`
	CreatedAt   time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tracked_events_created_at" json:"created_at"`
}

// TableName returns the table name for TrackedEvent
func (TrackedEvent) TableName() string { return "tracked_events" }

// TrackedEventFilter defines filter criteria for event queries
type TrackedEventFilter struct {
	AppID         *uint        `json:"app_id,omitempty"`
	EventName     *EventName   `json:"event_name,omitempty"`
	Source        *EventSource `json:"source,omitempty"`
	CreatedAfter  *time.Time   `json:"created_after,omitempty"`
	CreatedBefore *time.Time   `json:"created_before,omitempty"`
}
