package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/app/services"
	businessflow "github.com/amirphl/Pixel-Bridge/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWebhookFlow records flow invocations for handler tests
type stubWebhookFlow struct {
	orderShops   []string
	cartShops    []string
	uninstalled  []string
	lastPayload  *dto.OrderWebhookPayload
	lastMetadata *businessflow.ClientMetadata
}

func (s *stubWebhookFlow) HandleOrderWebhook(_ context.Context, shopDomain string, payload *dto.OrderWebhookPayload, metadata *businessflow.ClientMetadata) (*dto.WebhookAckResponse, error) {
	s.orderShops = append(s.orderShops, shopDomain)
	s.lastPayload = payload
	s.lastMetadata = metadata
	return &dto.WebhookAckResponse{Stored: len(payload.LineItems)}, nil
}

func (s *stubWebhookFlow) HandleCartWebhook(_ context.Context, shopDomain string, payload *dto.CartWebhookPayload, _ *businessflow.ClientMetadata) (*dto.WebhookAckResponse, error) {
	s.cartShops = append(s.cartShops, shopDomain)
	return &dto.WebhookAckResponse{Stored: len(payload.LineItems)}, nil
}

func (s *stubWebhookFlow) HandleUninstallWebhook(_ context.Context, shopDomain string) error {
	s.uninstalled = append(s.uninstalled, shopDomain)
	return nil
}

func newWebhookTestApp(flow businessflow.WebhookFlow, verifier services.WebhookVerifier, enforce bool) *fiber.App {
	handler := NewWebhookHandler(flow, verifier, enforce)
	app := fiber.New()
	app.Post("/webhooks/shopify/orders", handler.HandleOrders)
	app.Post("/webhooks/shopify/carts", handler.HandleCarts)
	app.Post("/webhooks/shopify/app_uninstalled", handler.HandleUninstalled)
	return app
}

func TestHandleOrdersAcceptsSignedDelivery(t *testing.T) {
	flow := &stubWebhookFlow{}
	verifier := services.NewWebhookVerifier("shpss_test_secret")
	app := newWebhookTestApp(flow, verifier, true)

	body := []byte(`{"id":900001,"currency":"USD","line_items":[{"product_id":42,"price":"19.99","quantity":2}]}`)
	req := httptest.NewRequest("POST", "/webhooks/shopify/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderWebhookShop, "demo-shop.myshopify.com")
	req.Header.Set(HeaderWebhookSignature, verifier.Sign(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, []string{"demo-shop.myshopify.com"}, flow.orderShops)
	require.NotNil(t, flow.lastPayload)
	assert.Equal(t, uint64(900001), flow.lastPayload.ID)
	require.Len(t, flow.lastPayload.LineItems, 1)
	assert.Equal(t, "19.99", flow.lastPayload.LineItems[0].Price)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var apiResp dto.APIResponse
	require.NoError(t, json.Unmarshal(raw, &apiResp))
	assert.True(t, apiResp.Success)
}

func TestHandleOrdersRejectsBadSignature(t *testing.T) {
	flow := &stubWebhookFlow{}
	verifier := services.NewWebhookVerifier("shpss_test_secret")
	app := newWebhookTestApp(flow, verifier, true)

	body := []byte(`{"id":900001,"line_items":[]}`)
	req := httptest.NewRequest("POST", "/webhooks/shopify/orders", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookShop, "demo-shop.myshopify.com")
	req.Header.Set(HeaderWebhookSignature, "bm90LXRoZS1yaWdodC1zaWduYXR1cmU=")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, flow.orderShops)
}

func TestHandleOrdersRejectsMissingSignature(t *testing.T) {
	flow := &stubWebhookFlow{}
	verifier := services.NewWebhookVerifier("shpss_test_secret")
	app := newWebhookTestApp(flow, verifier, true)

	req := httptest.NewRequest("POST", "/webhooks/shopify/orders", bytes.NewReader([]byte(`{"id":1,"line_items":[]}`)))
	req.Header.Set(HeaderWebhookShop, "demo-shop.myshopify.com")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, flow.orderShops)
}

func TestHandleOrdersSkipsVerificationWhenNotEnforced(t *testing.T) {
	flow := &stubWebhookFlow{}
	verifier := services.NewWebhookVerifier("shpss_test_secret")
	app := newWebhookTestApp(flow, verifier, false)

	req := httptest.NewRequest("POST", "/webhooks/shopify/orders", bytes.NewReader([]byte(`{"id":1,"line_items":[]}`)))
	req.Header.Set(HeaderWebhookShop, "demo-shop.myshopify.com")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"demo-shop.myshopify.com"}, flow.orderShops)
}

func TestHandleOrdersRejectsMalformedJSON(t *testing.T) {
	flow := &stubWebhookFlow{}
	verifier := services.NewWebhookVerifier("shpss_test_secret")
	app := newWebhookTestApp(flow, verifier, true)

	body := []byte(`{"id":900001,`)
	req := httptest.NewRequest("POST", "/webhooks/shopify/orders", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookShop, "demo-shop.myshopify.com")
	req.Header.Set(HeaderWebhookSignature, verifier.Sign(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, flow.orderShops)
}

func TestHandleCartsAcceptsSignedDelivery(t *testing.T) {
	flow := &stubWebhookFlow{}
	verifier := services.NewWebhookVerifier("shpss_test_secret")
	app := newWebhookTestApp(flow, verifier, true)

	body := []byte(`{"id":"cart-abc","token":"tok-123","line_items":[{"product_id":42,"price":"5.00","quantity":1}]}`)
	req := httptest.NewRequest("POST", "/webhooks/shopify/carts", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookShop, "demo-shop.myshopify.com")
	req.Header.Set(HeaderWebhookSignature, verifier.Sign(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"demo-shop.myshopify.com"}, flow.cartShops)
}

func TestHandleUninstalledAcceptsSignedDelivery(t *testing.T) {
	flow := &stubWebhookFlow{}
	verifier := services.NewWebhookVerifier("shpss_test_secret")
	app := newWebhookTestApp(flow, verifier, true)

	body := []byte(`{"id":900001,"domain":"demo-shop.myshopify.com"}`)
	req := httptest.NewRequest("POST", "/webhooks/shopify/app_uninstalled", bytes.NewReader(body))
	req.Header.Set(HeaderWebhookShop, "demo-shop.myshopify.com")
	req.Header.Set(HeaderWebhookSignature, verifier.Sign(body))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"demo-shop.myshopify.com"}, flow.uninstalled)
}
