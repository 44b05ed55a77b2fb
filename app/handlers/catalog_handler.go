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

// CatalogHandlerInterface defines the contract for catalog handlers.
type CatalogHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// CatalogHandler handles remote catalog registration requests.
type CatalogHandler struct {
	flow      businessflow.CatalogFlow
	validator *validator.Validate
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(flow businessflow.CatalogFlow) *CatalogHandler {
	return &CatalogHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CatalogHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CatalogHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create registers a remote catalog for the caller's app.
// @Summary Register a catalog
// @Description Registers a remote catalog id and deactivates the previously active one (authenticated)
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param request body dto.CreateCatalogRequest true "Catalog payload"
// @Success 201 {object} dto.APIResponse{data=dto.CatalogResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/catalogs [post]
func (h *CatalogHandler) Create(c fiber.Ctx) error {
	appUUID, ok := c.Locals("app_uuid").(string)
	if !ok || appUUID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "App UUID not found in context", "MISSING_APP_UUID", nil)
	}

	var req dto.CreateCatalogRequest
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

	res, err := h.flow.CreateCatalog(h.createRequestContext(c, "/api/v1/catalogs"), &req)
	if err != nil {
		switch {
		case businessflow.IsAppNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		case err == businessflow.ErrCatalogNameRequired:
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Catalog name is required", "CATALOG_NAME_REQUIRED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to register catalog", "CATALOG_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Catalog registered successfully", res)
}

// List returns the catalogs registered for the caller's app.
// @Summary List catalogs
// @Description Lists registered catalogs newest first (authenticated)
// @Tags Catalogs
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListCatalogsResponse} "Retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/catalogs [get]
func (h *CatalogHandler) List(c fiber.Ctx) error {
	appUUID, ok := c.Locals("app_uuid").(string)
	if !ok || appUUID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "App UUID not found in context", "MISSING_APP_UUID", nil)
	}

	res, err := h.flow.ListCatalogs(h.createRequestContext(c, "/api/v1/catalogs"), appUUID)
	if err != nil {
		if businessflow.IsAppNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list catalogs", "CATALOG_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Catalogs retrieved", res)
}

func (h *CatalogHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CatalogHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
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
