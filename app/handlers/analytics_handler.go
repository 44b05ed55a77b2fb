package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	businessflow "github.com/amirphl/Pixel-Bridge/business_flow"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/gofiber/fiber/v3"
)

// AnalyticsHandlerInterface defines the contract for analytics handlers.
type AnalyticsHandlerInterface interface {
	GetReport(c fiber.Ctx) error
	ExportReport(c fiber.Ctx) error
}

// AnalyticsHandler handles dashboard reporting requests.
type AnalyticsHandler struct {
	flow businessflow.AnalyticsFlow
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(flow businessflow.AnalyticsFlow) *AnalyticsHandler {
	return &AnalyticsHandler{flow: flow}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetReport builds a ranged analytics report.
// @Summary Get analytics report
// @Description Builds a ranged report over stored events; unknown ranges fall back to 30d (authenticated)
// @Tags Analytics
// @Produce json
// @Param range query string false "Window: 7d, 30d, 90d or 365d (default 30d)"
// @Param type query string false "Report type: facebook, campaigns or sources (default facebook)"
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse} "Retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/reports [get]
func (h *AnalyticsHandler) GetReport(c fiber.Ctx) error {
	appUUID, ok := c.Locals("app_uuid").(string)
	if !ok || appUUID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "App UUID not found in context", "MISSING_APP_UUID", nil)
	}

	req := dto.GetReportRequest{
		AppUUID: appUUID,
		Range:   c.Query("range"),
		Type:    c.Query("type"),
	}

	res, err := h.flow.GetReport(h.createRequestContext(c, "/api/v1/reports"), &req)
	if err != nil {
		if businessflow.IsAppNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build report", "REPORT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Report retrieved", res)
}

// ExportReport downloads a report as an XLSX workbook.
// @Summary Export analytics report
// @Description Renders the requested report as an XLSX download (authenticated)
// @Tags Analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param range query string false "Window: 7d, 30d, 90d or 365d (default 30d)"
// @Param type query string false "Report type: facebook, campaigns or sources (default facebook)"
// @Success 200 {file} binary "Workbook"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/reports/export [get]
func (h *AnalyticsHandler) ExportReport(c fiber.Ctx) error {
	appUUID, ok := c.Locals("app_uuid").(string)
	if !ok || appUUID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "App UUID not found in context", "MISSING_APP_UUID", nil)
	}

	req := dto.ExportReportRequest{
		AppUUID: appUUID,
		Range:   c.Query("range"),
		Type:    c.Query("type"),
	}

	filename, content, err := h.flow.ExportReport(h.createRequestContext(c, "/api/v1/reports/export"), &req)
	if err != nil {
		if businessflow.IsAppNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "App not found", "APP_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export report", "REPORT_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(content)
}

func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *AnalyticsHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
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
