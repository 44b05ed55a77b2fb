package businessflow

import (
	"context"
	"log"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/repository"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
)

// TrackFlow handles client pixel track calls and dashboard event listings
type TrackFlow interface {
	TrackEvent(ctx context.Context, req *dto.TrackEventRequest, metadata *ClientMetadata) (*dto.TrackEventResponse, error)
	ListEvents(ctx context.Context, req *dto.ListEventsRequest) (*dto.ListEventsResponse, error)
}

// TrackFlowImpl implements the pixel track flow
type TrackFlowImpl struct {
	appRepo      repository.AppRepository
	settingsRepo repository.AppSettingsRepository
	eventRepo    repository.TrackedEventRepository
	catalogRepo  repository.CatalogRepository
	forwarder    ConversionForwarder
}

// NewTrackFlow creates a new track flow instance
func NewTrackFlow(
	appRepo repository.AppRepository,
	settingsRepo repository.AppSettingsRepository,
	eventRepo repository.TrackedEventRepository,
	catalogRepo repository.CatalogRepository,
	forwarder ConversionForwarder,
) TrackFlow {
	return &TrackFlowImpl{
		appRepo:      appRepo,
		settingsRepo: settingsRepo,
		eventRepo:    eventRepo,
		catalogRepo:  catalogRepo,
		forwarder:    forwarder,
	}
}

// TrackEvent stores one client-side event and attempts forwarding. Storage
// is unconditional; the per-event auto-tracking toggles only gate the
// outbound call.
func (f *TrackFlowImpl) TrackEvent(ctx context.Context, req *dto.TrackEventRequest, metadata *ClientMetadata) (*dto.TrackEventResponse, error) {
	app, err := f.resolveApp(ctx, req.AppUUID)
	if err != nil {
		return nil, err
	}

	catalog, err := f.catalogRepo.ActiveByAppID(ctx, app.ID)
	if err != nil {
		return nil, NewBusinessError("CATALOG_LOOKUP_FAILED", "Failed to lookup active catalog", err)
	}

	eventName := models.EventName(req.EventName)
	customData := make(map[string]any, len(req.CustomData)+1)
	for k, v := range req.CustomData {
		customData[k] = v
	}
	if catalog != nil && catalog.ExternalCatalogID != "" {
		customData["catalog_id"] = catalog.ExternalCatalogID
	}

	event := &models.TrackedEvent{
		UUID:        uuid.New(),
		AppID:       app.ID,
		EventName:   eventName,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Value:       req.Value,
		Quantity:    maxInt(req.Quantity, 0),
		CustomData:  customData,
		Source:      models.EventSourcePixel,
		CreatedAt:   utils.UTCNow(),
	}
	if err := f.eventRepo.Save(ctx, event); err != nil {
		return nil, NewBusinessError("EVENT_SAVE_FAILED", "Failed to store event", err)
	}

	settings, err := f.settingsRepo.ByAppID(ctx, app.ID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to lookup settings", err)
	}

	var result ForwardResult
	if settings != nil && eventName.Standard() && !settings.AutoTrackEnabled(eventName) {
		result = ForwardSkipped(SkipReasonAutoTrackOff)
	} else {
		result = f.forwarder.Forward(ctx, settings, event, catalog, metadata)
	}

	switch {
	case result.Sent():
		log.Printf("forwarded event %s (%s) for app %d, trace %s", event.UUID, event.EventName, app.ID, result.TraceID)
	case result.Skipped():
		log.Printf("skipped event %s (%s) for app %d: %s", event.UUID, event.EventName, app.ID, result.SkipReason)
	default:
		log.Printf("failed to forward event %s (%s) for app %d: %v", event.UUID, event.EventName, app.ID, result.Err)
	}

	return &dto.TrackEventResponse{
		Message:   "Event recorded",
		UUID:      event.UUID.String(),
		Forwarded: result.Sent(),
	}, nil
}

// ListEvents returns a page of stored events, newest first
func (f *TrackFlowImpl) ListEvents(ctx context.Context, req *dto.ListEventsRequest) (*dto.ListEventsResponse, error) {
	app, err := f.resolveApp(ctx, req.AppUUID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = utils.DefaultEventPageSize
	}
	if limit > utils.MaxEventPageSize {
		limit = utils.MaxEventPageSize
	}
	offset := maxInt(req.Offset, 0)

	filter := models.TrackedEventFilter{AppID: &app.ID}
	if req.EventName != nil && *req.EventName != "" {
		name := models.EventName(*req.EventName)
		filter.EventName = &name
	}

	events, err := f.eventRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, NewBusinessError("EVENT_LIST_FAILED", "Failed to list events", err)
	}

	total, err := f.eventRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("EVENT_COUNT_FAILED", "Failed to count events", err)
	}

	out := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, ToEventResponse(*event))
	}

	return &dto.ListEventsResponse{
		Events: out,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (f *TrackFlowImpl) resolveApp(ctx context.Context, appUUID string) (*models.App, error) {
	parsed, err := uuid.Parse(appUUID)
	if err != nil {
		return nil, ErrAppNotFound
	}
	app, err := f.appRepo.ByUUID(ctx, parsed)
	if err != nil {
		return nil, NewBusinessError("APP_LOOKUP_FAILED", "Failed to lookup app", err)
	}
	if app == nil {
		return nil, ErrAppNotFound
	}
	if app.UninstalledAt != nil {
		return nil, ErrAppUninstalled
	}
	return app, nil
}
