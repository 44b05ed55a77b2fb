package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/app/middleware"
	"github.com/amirphl/Pixel-Bridge/app/services"
	businessflow "github.com/amirphl/Pixel-Bridge/business_flow"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/gofiber/fiber/v3"
)

// Webhook header names used by the commerce platform
const (
	HeaderWebhookSignature = "X-Shopify-Hmac-Sha256"
	HeaderWebhookShop      = "X-Shopify-Shop-Domain"
)

// WebhookHandlerInterface defines the contract for webhook handlers.
type WebhookHandlerInterface interface {
	HandleOrders(c fiber.Ctx) error
	HandleCarts(c fiber.Ctx) error
	HandleUninstalled(c fiber.Ctx) error
}

// WebhookHandler handles inbound commerce-platform webhooks. The raw body
// is needed for signature verification, so JSON parsing happens here rather
// than through the body binder.
type WebhookHandler struct {
	flow             businessflow.WebhookFlow
	verifier         services.WebhookVerifier
	enforceSignature bool
}

// NewWebhookHandler creates a new webhook handler. Signature enforcement is
// off outside production deployments.
func NewWebhookHandler(flow businessflow.WebhookFlow, verifier services.WebhookVerifier, enforceSignature bool) *WebhookHandler {
	return &WebhookHandler{
		flow:             flow,
		verifier:         verifier,
		enforceSignature: enforceSignature,
	}
}

func (h *WebhookHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *WebhookHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// HandleOrders processes an order creation webhook.
// @Summary Receive order webhook
// @Description Receives a signed orders webhook and records one purchase event per line item
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.WebhookAckResponse} "Acknowledged"
// @Failure 400 {object} dto.APIResponse "Malformed payload"
// @Failure 401 {object} dto.APIResponse "Invalid signature"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /webhooks/shopify/orders [post]
func (h *WebhookHandler) HandleOrders(c fiber.Ctx) error {
	body, shopDomain, ok := h.authenticate(c)
	if !ok {
		middleware.CountWebhookDelivery("orders", fiber.StatusUnauthorized)
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Webhook signature verification failed", "INVALID_SIGNATURE", nil)
	}

	var payload dto.OrderWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		middleware.CountWebhookDelivery("orders", fiber.StatusBadRequest)
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook payload", "INVALID_PAYLOAD", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ack, err := h.flow.HandleOrderWebhook(h.createRequestContext(c, "/webhooks/shopify/orders"), shopDomain, &payload, metadata)
	if err != nil {
		middleware.CountWebhookDelivery("orders", fiber.StatusInternalServerError)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process webhook", "WEBHOOK_PROCESSING_FAILED", nil)
	}

	middleware.CountWebhookDelivery("orders", fiber.StatusOK)
	return h.SuccessResponse(c, fiber.StatusOK, "Webhook processed", ack)
}

// HandleCarts processes a cart update webhook.
// @Summary Receive cart webhook
// @Description Receives a signed carts webhook and records one add-to-cart event per line item
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.WebhookAckResponse} "Acknowledged"
// @Failure 400 {object} dto.APIResponse "Malformed payload"
// @Failure 401 {object} dto.APIResponse "Invalid signature"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /webhooks/shopify/carts [post]
func (h *WebhookHandler) HandleCarts(c fiber.Ctx) error {
	body, shopDomain, ok := h.authenticate(c)
	if !ok {
		middleware.CountWebhookDelivery("carts", fiber.StatusUnauthorized)
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Webhook signature verification failed", "INVALID_SIGNATURE", nil)
	}

	var payload dto.CartWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		middleware.CountWebhookDelivery("carts", fiber.StatusBadRequest)
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook payload", "INVALID_PAYLOAD", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	ack, err := h.flow.HandleCartWebhook(h.createRequestContext(c, "/webhooks/shopify/carts"), shopDomain, &payload, metadata)
	if err != nil {
		middleware.CountWebhookDelivery("carts", fiber.StatusInternalServerError)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process webhook", "WEBHOOK_PROCESSING_FAILED", nil)
	}

	middleware.CountWebhookDelivery("carts", fiber.StatusOK)
	return h.SuccessResponse(c, fiber.StatusOK, "Webhook processed", ack)
}

// HandleUninstalled processes an app uninstall webhook.
// @Summary Receive uninstall webhook
// @Description Marks the shop's app uninstalled and deletes its stored events
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse "Acknowledged"
// @Failure 401 {object} dto.APIResponse "Invalid signature"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /webhooks/shopify/app_uninstalled [post]
func (h *WebhookHandler) HandleUninstalled(c fiber.Ctx) error {
	_, shopDomain, ok := h.authenticate(c)
	if !ok {
		middleware.CountWebhookDelivery("app_uninstalled", fiber.StatusUnauthorized)
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Webhook signature verification failed", "INVALID_SIGNATURE", nil)
	}

	if err := h.flow.HandleUninstallWebhook(h.createRequestContext(c, "/webhooks/shopify/app_uninstalled"), shopDomain); err != nil {
		middleware.CountWebhookDelivery("app_uninstalled", fiber.StatusInternalServerError)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process webhook", "WEBHOOK_PROCESSING_FAILED", nil)
	}

	middleware.CountWebhookDelivery("app_uninstalled", fiber.StatusOK)
	return h.SuccessResponse(c, fiber.StatusOK, "Webhook processed", nil)
}

// authenticate verifies the delivery signature over the raw body and returns
// the body and shop domain
func (h *WebhookHandler) authenticate(c fiber.Ctx) ([]byte, string, bool) {
	body := c.Body()
	shopDomain := c.Get(HeaderWebhookShop)

	if h.enforceSignature {
		signature := c.Get(HeaderWebhookSignature)
		if !h.verifier.Verify(body, signature) {
			return nil, "", false
		}
	}

	return body, shopDomain, true
}

func (h *WebhookHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *WebhookHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
