package businessflow

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/repository"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookFlow ingests commerce-platform webhooks. Signature verification and
// JSON parsing happen at the handler, which has the raw body; this flow
// receives the parsed payload and the resolved shop domain.
type WebhookFlow interface {
	HandleOrderWebhook(ctx context.Context, shopDomain string, payload *dto.OrderWebhookPayload, metadata *ClientMetadata) (*dto.WebhookAckResponse, error)
	HandleCartWebhook(ctx context.Context, shopDomain string, payload *dto.CartWebhookPayload, metadata *ClientMetadata) (*dto.WebhookAckResponse, error)
	HandleUninstallWebhook(ctx context.Context, shopDomain string) error
}

// WebhookFlowImpl implements the webhook ingestion flow
type WebhookFlowImpl struct {
	appRepo      repository.AppRepository
	settingsRepo repository.AppSettingsRepository
	eventRepo    repository.TrackedEventRepository
	catalogRepo  repository.CatalogRepository
	forwarder    ConversionForwarder
	db           *gorm.DB
}

// NewWebhookFlow creates a new webhook flow instance
func NewWebhookFlow(
	appRepo repository.AppRepository,
	settingsRepo repository.AppSettingsRepository,
	eventRepo repository.TrackedEventRepository,
	catalogRepo repository.CatalogRepository,
	forwarder ConversionForwarder,
	db *gorm.DB,
) WebhookFlow {
	return &WebhookFlowImpl{
		appRepo:      appRepo,
		settingsRepo: settingsRepo,
		eventRepo:    eventRepo,
		catalogRepo:  catalogRepo,
		forwarder:    forwarder,
		db:           db,
	}
}

// HandleOrderWebhook turns an order delivery into one purchase event per line item
func (f *WebhookFlowImpl) HandleOrderWebhook(ctx context.Context, shopDomain string, payload *dto.OrderWebhookPayload, metadata *ClientMetadata) (*dto.WebhookAckResponse, error) {
	if payload == nil {
		return nil, ErrWebhookPayloadMalformed
	}

	extra := map[string]any{
		"order_id": strconv.FormatUint(payload.ID, 10),
	}
	if payload.Currency != "" {
		extra["currency"] = payload.Currency
	}

	return f.ingest(ctx, shopDomain, models.EventNamePurchase, payload.LineItems, extra, metadata)
}

// HandleCartWebhook turns a cart delivery into one add-to-cart event per line item
func (f *WebhookFlowImpl) HandleCartWebhook(ctx context.Context, shopDomain string, payload *dto.CartWebhookPayload, metadata *ClientMetadata) (*dto.WebhookAckResponse, error) {
	if payload == nil {
		return nil, ErrWebhookPayloadMalformed
	}

	extra := map[string]any{}
	if payload.Token != "" {
		extra["cart_token"] = payload.Token
	}

	return f.ingest(ctx, shopDomain, models.EventNameAddToCart, payload.LineItems, extra, metadata)
}

// HandleUninstallWebhook deletes everything stored for the shop's tenant.
// This cascade is the only delete path for event rows.
func (f *WebhookFlowImpl) HandleUninstallWebhook(ctx context.Context, shopDomain string) error {
	app, err := f.appRepo.ByShopDomain(ctx, shopDomain)
	if err != nil {
		return NewBusinessError("APP_LOOKUP_FAILED", "Failed to lookup app", err)
	}
	if app == nil {
		// Unknown shop, nothing to clean up
		return nil
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.appRepo.MarkUninstalled(txCtx, app.ID); err != nil {
			return err
		}
		if err := f.catalogRepo.DeactivateByAppID(txCtx, app.ID); err != nil {
			return err
		}
		return f.eventRepo.DeleteByAppID(txCtx, app.ID)
	})
	if err != nil {
		return NewBusinessError("UNINSTALL_CLEANUP_FAILED", "Failed to clean up uninstalled app", err)
	}

	log.Printf("uninstall cleanup completed for shop %s (app %d)", shopDomain, app.ID)
	return nil
}

// ingest stores one event per line item, then attempts forwarding per event.
// Forwarding outcomes never affect the ack; deliveries for unknown shops are
// acknowledged without storing anything.
func (f *WebhookFlowImpl) ingest(ctx context.Context, shopDomain string, eventName models.EventName, lineItems []dto.WebhookLineItem, extra map[string]any, metadata *ClientMetadata) (*dto.WebhookAckResponse, error) {
	app, err := f.appRepo.ByShopDomain(ctx, shopDomain)
	if err != nil {
		return nil, NewBusinessError("APP_LOOKUP_FAILED", "Failed to lookup app", err)
	}
	if app == nil {
		return &dto.WebhookAckResponse{}, nil
	}

	settings, err := f.settingsRepo.ByAppID(ctx, app.ID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to lookup settings", err)
	}

	// One catalog lookup per delivery, not per line item
	catalog, err := f.catalogRepo.ActiveByAppID(ctx, app.ID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_LOOKUP_FAILED", "Failed to lookup active catalog", err)
	}

	events := make([]*models.TrackedEvent, 0, len(lineItems))
	for _, item := range lineItems {
		events = append(events, normalizeLineItem(app.ID, eventName, item, catalog, extra))
	}

	ack := &dto.WebhookAckResponse{}
	if len(events) == 0 {
		return ack, nil
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.eventRepo.SaveBatch(txCtx, events)
	})
	if err != nil {
		return nil, NewBusinessError("EVENT_SAVE_FAILED", "Failed to store events", err)
	}
	ack.Stored = len(events)

	for _, event := range events {
		result := f.forwarder.Forward(ctx, settings, event, catalog, metadata)
		switch {
		case result.Sent():
			ack.Forwarded++
			log.Printf("forwarded event %s (%s) for app %d, trace %s", event.UUID, event.EventName, app.ID, result.TraceID)
		case result.Skipped():
			ack.Skipped++
			log.Printf("skipped event %s (%s) for app %d: %s", event.UUID, event.EventName, app.ID, result.SkipReason)
		default:
			ack.Failed++
			log.Printf("failed to forward event %s (%s) for app %d: %v", event.UUID, event.EventName, app.ID, result.Err)
		}
	}

	return ack, nil
}

// normalizeLineItem maps one webhook line item onto a stored event. Value is
// the unit price; quantity rides separately so the ads platform receives
// num_items rather than a pre-multiplied total.
func normalizeLineItem(appID uint, eventName models.EventName, item dto.WebhookLineItem, catalog *models.Catalog, extra map[string]any) *models.TrackedEvent {
	customData := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		customData[k] = v
	}
	if item.VariantID != 0 {
		customData["variant_id"] = strconv.FormatUint(item.VariantID, 10)
	}
	if item.SKU != "" {
		customData["sku"] = item.SKU
	}
	if catalog != nil && catalog.ExternalCatalogID != "" {
		customData["catalog_id"] = catalog.ExternalCatalogID
	}

	event := &models.TrackedEvent{
		UUID:       uuid.New(),
		AppID:      appID,
		EventName:  eventName,
		Value:      parsePrice(item.Price),
		Quantity:   maxInt(item.Quantity, 0),
		CustomData: customData,
		Source:     models.EventSourceWebhook,
		CreatedAt:  utils.UTCNow(),
	}
	if item.ProductID != 0 {
		event.ProductID = utils.ToPtr(strconv.FormatUint(item.ProductID, 10))
	}
	if item.Title != "" {
		event.ProductName = utils.ToPtr(item.Title)
	}
	return event
}

// parsePrice coerces a wire price string leniently. Unparsable or negative
// values become 0 rather than dropping the event.
func parsePrice(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
