package utils

import (
	"time"
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Context keys populated by handlers for downstream flows
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
	AppUUIDKey    ContextKey = "app_uuid"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Event listing defaults
const (
	DefaultEventPageSize = 50
	MaxEventPageSize     = 500
)

// Reporting constants
const (
	// DefaultReportRange is applied when the range query parameter is
	// missing or not one of the supported windows
	DefaultReportRange = "30d"

	// ReportCacheTTL bounds how stale a cached report response may be
	ReportCacheTTL = 60 * time.Second

	// ReportCacheKey is the redis key prefix for cached report payloads
	ReportCacheKey = "reports:v1"
)

// Event source tags
const (
	EventSourceWebhook = "webhook"
	EventSourcePixel   = "pixel"
)
