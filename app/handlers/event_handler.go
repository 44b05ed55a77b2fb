package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	businessflow "github.com/amirphl/Pixel-Bridge/business_flow"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// EventHandlerInterface defines the contract for event handlers.
type EventHandlerInterface interface {
	Track(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// EventHandler handles pixel track calls and dashboard event listings.
type EventHandler struct {
	flow      businessflow.TrackFlow
	validator *validator.Validate
}

// NewEventHandler creates a new event handler.
func NewEventHandler(flow businessflow.TrackFlow) *EventHandler {
	return &EventHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *EventHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *EventHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Track records one client-side event.
// @Summary Track a storefront event
// @Description Records one client pixel event and forwards it per the tenant's settings
// @Tags Events
// @Accept json
// @Produce json
// @Param request body dto.TrackEventRequest true "Event payload"
// @Success 201 {object} dto.APIResponse{data=dto.TrackEventResponse} "Recorded"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Unknown app"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/events/track [post]
func (h *EventHandler) Track(c fiber.Ctx) error {
	var req dto.TrackEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.TrackEvent(h.createRequestContext(c, "/api/v1/events/track"), &req, metadata)
	if err != nil {
		if businessflow.IsAppNotFound(err) || businessflow.IsAppUninstalled(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record event", "EVENT_TRACK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Event recorded successfully", res)
}

// List returns a page of stored events for the caller's app.
// @Summary List stored events
// @Description Lists stored events newest first with offset pagination (authenticated)
// @Tags Events
// @Produce json
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Page offset"
// @Param eventName query string false "Filter by event name"
// @Success 200 {object} dto.APIResponse{data=dto.ListEventsResponse} "Retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/events [get]
func (h *EventHandler) List(c fiber.Ctx) error {
	appUUID, ok := c.Locals("app_uuid").(string)
	if !ok || appUUID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "App UUID not found in context", "MISSING_APP_UUID", nil)
	}

	req := dto.ListEventsRequest{AppUUID: appUUID}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			req.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			req.Offset = parsed
		}
	}
	if v := c.Query("eventName"); v != "" {
		req.EventName = &v
	}

	res, err := h.flow.ListEvents(h.createRequestContext(c, "/api/v1/events"), &req)
	if err != nil {
		if businessflow.IsAppNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list events", "EVENT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Events retrieved", res)
}

func (h *EventHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *EventHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	if appUUID, ok := c.Locals("app_uuid").(string); ok && appUUID != "" {
		ctx = context.WithValue(ctx, utils.AppUUIDKey, appUUID)
	}
	return ctx
}
