package handlers

import (
	"context"
	"time"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	businessflow "github.com/amirphl/Pixel-Bridge/business_flow"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// SettingsHandlerInterface defines the contract for settings handlers.
type SettingsHandlerInterface interface {
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
}

// SettingsHandler handles forwarding settings requests.
type SettingsHandler struct {
	flow      businessflow.SettingsFlow
	validator *validator.Validate
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(flow businessflow.SettingsFlow) *SettingsHandler {
	return &SettingsHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *SettingsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SettingsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Get returns the caller's forwarding settings.
// @Summary Get forwarding settings
// @Description Returns the tenant's forwarding settings with the access token masked (authenticated)
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(c fiber.Ctx) error {
	appUUID, ok := c.Locals("app_uuid").(string)
	if !ok || appUUID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "App UUID not found in context", "MISSING_APP_UUID", nil)
	}

	res, err := h.flow.GetSettings(h.createRequestContext(c, "/api/v1/settings"), &dto.GetSettingsRequest{AppUUID: appUUID})
	if err != nil {
		if businessflow.IsAppNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get settings", "SETTINGS_GET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Settings retrieved", res)
}

// Update applies a partial settings update.
// @Summary Update forwarding settings
// @Description Updates the tenant's forwarding settings; omitted fields are kept (authenticated)
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse} "Updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(c fiber.Ctx) error {
	appUUID, ok := c.Locals("app_uuid").(string)
	if !ok || appUUID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "App UUID not found in context", "MISSING_APP_UUID", nil)
	}

	var req dto.UpdateSettingsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.AppUUID = appUUID
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.UpdateSettings(h.createRequestContext(c, "/api/v1/settings"), &req)
	if err != nil {
		switch {
		case businessflow.IsAppNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		case err == businessflow.ErrSettingsUpdateEmpty:
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "EMPTY_UPDATE", nil)
		case err == businessflow.ErrCurrencyInvalid:
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Currency must be a 3-letter code", "INVALID_CURRENCY", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update settings", "SETTINGS_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Settings updated successfully", res)
}

func (h *SettingsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *SettingsHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
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
