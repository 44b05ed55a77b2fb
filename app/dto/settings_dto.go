package dto

// GetSettingsRequest represents the request to fetch the caller's forwarding settings
type GetSettingsRequest struct {
	AppUUID string `json:"-" validate:"required,uuid4"`
}

// UpdateSettingsRequest represents the request to update forwarding settings.
// Omitted fields keep their stored values.
type UpdateSettingsRequest struct {
	AppUUID        string  `json:"-" validate:"required,uuid4"`
	Enabled        *bool   `json:"enabled,omitempty"`
	AccessToken    *string `json:"access_token,omitempty" validate:"omitempty,min=8,max=512"`
	PixelID        *string `json:"pixel_id,omitempty" validate:"omitempty,max=64"`
	TestEventCode  *string `json:"test_event_code,omitempty" validate:"omitempty,max=64"`
	Currency       *string `json:"currency,omitempty" validate:"omitempty,len=3"`
	TrackPageview  *bool   `json:"track_pageview,omitempty"`
	TrackAddToCart *bool   `json:"track_add_to_cart,omitempty"`
	TrackPurchase  *bool   `json:"track_purchase,omitempty"`
}

// SettingsResponse represents forwarding settings in responses. The stored
// access token is never returned, only a masked marker of its tail.
type SettingsResponse struct {
	Enabled           bool    `json:"enabled"`
	AccessTokenMasked string  `json:"access_token_masked,omitempty"`
	PixelID           string  `json:"pixel_id,omitempty"`
	CatalogID         *string `json:"catalog_id,omitempty"`
	TestEventCode     *string `json:"test_event_code,omitempty"`
	Currency          string  `json:"currency"`
	TrackPageview     bool    `json:"track_pageview"`
	TrackAddToCart    bool    `json:"track_add_to_cart"`
	TrackPurchase     bool    `json:"track_purchase"`
}
