package businessflow

import (
	"context"

	"github.com/amirphl/Pixel-Bridge/app/services"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
)

// ForwardStatus is the outcome class of one forwarding attempt
type ForwardStatus string

const (
	ForwardStatusSent    ForwardStatus = "sent"
	ForwardStatusSkipped ForwardStatus = "skipped"
	ForwardStatusFailed  ForwardStatus = "failed"
)

// Skip reasons for ForwardResult
const (
	SkipReasonDisabled     = "forwarding disabled"
	SkipReasonNoToken      = "no access token configured"
	SkipReasonNoPixel      = "no pixel configured"
	SkipReasonAutoTrackOff = "auto-tracking disabled for event"
)

// ForwardResult is the explicit outcome of one forwarding attempt. A skipped
// event is a normal, expected outcome (tenant opted out, nothing configured)
// and is never conflated with a failure. Callers log the outcome; nothing is
// retried and nothing is queued.
type ForwardResult struct {
	Status         ForwardStatus
	SkipReason     string
	Err            error
	EventsReceived int
	TraceID        string
}

// Sent reports whether the event reached the remote API
func (r ForwardResult) Sent() bool { return r.Status == ForwardStatusSent }

// Skipped reports whether the attempt was intentionally not made
func (r ForwardResult) Skipped() bool { return r.Status == ForwardStatusSkipped }

// Failed reports whether the attempt was made and did not succeed
func (r ForwardResult) Failed() bool { return r.Status == ForwardStatusFailed }

// ForwardSkipped builds a skipped result with the given reason
func ForwardSkipped(reason string) ForwardResult {
	return ForwardResult{Status: ForwardStatusSkipped, SkipReason: reason}
}

// ForwardFailed builds a failed result wrapping the transport or API error
func ForwardFailed(err error) ForwardResult {
	return ForwardResult{Status: ForwardStatusFailed, Err: err}
}

// ConversionForwarder sends one stored event to the advertising platform on
// behalf of its tenant. Eligibility (enabled flag, token, pixel) is decided
// here; per-event auto-tracking toggles are decided by the calling flow
// because they only apply to pixel traffic.
type ConversionForwarder interface {
	Forward(ctx context.Context, settings *models.AppSettings, event *models.TrackedEvent, catalog *models.Catalog, metadata *ClientMetadata) ForwardResult
}

// ConversionForwarderImpl implements ConversionForwarder
type ConversionForwarderImpl struct {
	client services.ConversionsClient
	cipher services.SecretCipher
}

// NewConversionForwarder creates a new forwarder instance
func NewConversionForwarder(client services.ConversionsClient, cipher services.SecretCipher) ConversionForwarder {
	return &ConversionForwarderImpl{client: client, cipher: cipher}
}

// platformEventName maps a storefront event name onto the advertising
// platform's canonical name. Custom names pass through verbatim.
func platformEventName(name models.EventName) string {
	switch name {
	case models.EventNamePageview:
		return "PageView"
	case models.EventNameAddToCart:
		return "AddToCart"
	case models.EventNamePurchase:
		return "Purchase"
	default:
		return string(name)
	}
}

// Forward attempts exactly one outbound call for the given event
func (f *ConversionForwarderImpl) Forward(ctx context.Context, settings *models.AppSettings, event *models.TrackedEvent, catalog *models.Catalog, metadata *ClientMetadata) ForwardResult {
	if settings == nil || !utils.IsTrue(settings.Enabled) {
		return ForwardSkipped(SkipReasonDisabled)
	}
	if settings.AccessTokenSealed == "" {
		return ForwardSkipped(SkipReasonNoToken)
	}
	if settings.PixelID == "" {
		return ForwardSkipped(SkipReasonNoPixel)
	}

	accessToken, err := f.cipher.Open(settings.AccessTokenSealed)
	if err != nil {
		return ForwardFailed(NewBusinessError("TOKEN_UNSEAL_FAILED", "Failed to unseal access token", err))
	}

	currency := settings.Currency
	if currency == "" {
		currency = "USD"
	}

	customData := services.CustomData{
		Value:    event.Value,
		Currency: currency,
		NumItems: event.Quantity,
	}
	if event.ProductID != nil && *event.ProductID != "" {
		customData.ContentIDs = []string{*event.ProductID}
		customData.ContentType = "product"
	}
	if catalog != nil && catalog.ExternalCatalogID != "" {
		customData.CatalogID = catalog.ExternalCatalogID
	}

	// Server-side events still need match keys. Pixel traffic carries real
	// client context; webhook traffic does not, so the server identifies
	// itself instead.
	userData := services.UserData{
		ClientIPAddress: "0.0.0.0",
		ClientUserAgent: "pixel-bridge/1.0 (server-side)",
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			userData.ClientIPAddress = metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			userData.ClientUserAgent = metadata.UserAgent
		}
	}

	req := &services.ConversionsRequest{
		Data: []services.ConversionEvent{
			{
				EventName:    platformEventName(event.EventName),
				EventTime:    event.CreatedAt.Unix(),
				ActionSource: "website",
				UserData:     userData,
				CustomData:   customData,
			},
		},
		AccessToken: accessToken,
	}
	if settings.TestEventCode != nil && *settings.TestEventCode != "" {
		req.TestEventCode = *settings.TestEventCode
	}

	resp, err := f.client.SendEvents(ctx, settings.PixelID, req)
	if err != nil {
		return ForwardFailed(err)
	}

	return ForwardResult{
		Status:         ForwardStatusSent,
		EventsReceived: resp.EventsReceived,
		TraceID:        resp.TraceID,
	}
}
