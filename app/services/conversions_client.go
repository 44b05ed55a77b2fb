// Package services provides external service integrations and technical concerns like tokens and outbound API clients
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/amirphl/Pixel-Bridge/config"
	"github.com/amirphl/Pixel-Bridge/utils"
)

// ConversionsClient sends server-side events to the advertising platform's
// Conversions API
type ConversionsClient interface {
	SendEvents(ctx context.Context, pixelID string, req *ConversionsRequest) (*ConversionsResponse, error)
}

// UserData carries the per-user match keys of a conversion event. Webhook
// traffic has no real client context, so placeholders are sent.
type UserData struct {
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
}

// CustomData carries the commerce fields of a conversion event
type CustomData struct {
	ContentIDs  []string `json:"content_ids,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	Value       float64  `json:"value"`
	Currency    string   `json:"currency,omitempty"`
	NumItems    int      `json:"num_items,omitempty"`
	CatalogID   string   `json:"catalog_id,omitempty"`
}

// ConversionEvent is one entry of the events payload
type ConversionEvent struct {
	EventName    string     `json:"event_name"`
	EventTime    int64      `json:"event_time"`
	ActionSource string     `json:"action_source"`
	UserData     UserData   `json:"user_data"`
	CustomData   CustomData `json:"custom_data"`
}

// ConversionsRequest is the request body for the events endpoint
type ConversionsRequest struct {
	Data          []ConversionEvent `json:"data"`
	AccessToken   string            `json:"access_token"`
	TestEventCode string            `json:"test_event_code,omitempty"`
}

// ConversionsResponse is the platform's acknowledgement
type ConversionsResponse struct {
	EventsReceived int    `json:"events_received"`
	TraceID        string `json:"fbtrace_id"`
}

// ConversionsClientImpl implements ConversionsClient over the Graph API
type ConversionsClientImpl struct {
	config *config.MetaConfig
	client *http.Client
}

// NewConversionsClient creates a new Conversions API client. The HTTP
// timeout bounds how long a slow remote API can hold a request open.
func NewConversionsClient(cfg *config.MetaConfig) ConversionsClient {
	return &ConversionsClientImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendEvents posts a batch of conversion events to the pixel's events edge
func (c *ConversionsClientImpl) SendEvents(ctx context.Context, pixelID string, req *ConversionsRequest) (*ConversionsResponse, error) {
	if req == nil || len(req.Data) == 0 {
		return &ConversionsResponse{}, nil
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversions request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/events", c.config.GraphAPIBaseURL, c.config.APIVersion, pixelID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send conversions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("conversions API rejected events: %s (%s, code %d)", apiErr.Error.Message, apiErr.Error.Type, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("conversions API http status: %d", resp.StatusCode)
	}

	var out ConversionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode conversions response: %w", err)
	}
	return &out, nil
}

// MockConversionsClient implements ConversionsClient for testing
type MockConversionsClient struct {
	SentRequests []MockConversionsCall
	FailWith     error
}

// MockConversionsCall records one SendEvents invocation
type MockConversionsCall struct {
	PixelID string
	Request ConversionsRequest
	SentAt  time.Time
}

// NewMockConversionsClient creates a new mock Conversions API client
func NewMockConversionsClient() *MockConversionsClient {
	return &MockConversionsClient{
		SentRequests: make([]MockConversionsCall, 0),
	}
}

// SendEvents records the call and returns a canned acknowledgement
func (m *MockConversionsClient) SendEvents(_ context.Context, pixelID string, req *ConversionsRequest) (*ConversionsResponse, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.SentRequests = append(m.SentRequests, MockConversionsCall{
		PixelID: pixelID,
		Request: *req,
		SentAt:  utils.UTCNow(),
	})
	return &ConversionsResponse{EventsReceived: len(req.Data)}, nil
}

// CallCount returns the number of recorded SendEvents calls
func (m *MockConversionsClient) CallCount() int {
	return len(m.SentRequests)
}
