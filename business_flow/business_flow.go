// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/config"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and request tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func redisKey(cacheConfig config.CacheConfig, key string) string {
	return cacheConfig.RedisPrefix + key
}

// ToEventResponse converts a stored event to its response representation
func ToEventResponse(event models.TrackedEvent) dto.EventResponse {
	return dto.EventResponse{
		UUID:        event.UUID.String(),
		EventName:   string(event.EventName),
		ProductID:   event.ProductID,
		ProductName: event.ProductName,
		Value:       event.Value,
		Quantity:    event.Quantity,
		CustomData:  event.CustomData,
		Source:      string(event.Source),
		CreatedAt:   event.CreatedAt,
	}
}

// ToSettingsResponse converts stored settings to their response representation.
// The sealed access token never leaves the flow layer, only a masked tail.
func ToSettingsResponse(settings models.AppSettings, maskedToken string) dto.SettingsResponse {
	currency := settings.Currency
	if currency == "" {
		currency = "USD"
	}
	return dto.SettingsResponse{
		Enabled:           utils.IsTrue(settings.Enabled),
		AccessTokenMasked: maskedToken,
		PixelID:           settings.PixelID,
		CatalogID:         settings.CatalogID,
		TestEventCode:     settings.TestEventCode,
		Currency:          currency,
		TrackPageview:     settings.TrackPageview == nil || *settings.TrackPageview,
		TrackAddToCart:    settings.TrackAddToCart == nil || *settings.TrackAddToCart,
		TrackPurchase:     settings.TrackPurchase == nil || *settings.TrackPurchase,
	}
}
