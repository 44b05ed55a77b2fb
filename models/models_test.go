package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestEventNameStandard(t *testing.T) {
	assert.True(t, EventNamePageview.Standard())
	assert.True(t, EventNameAddToCart.Standard())
	assert.True(t, EventNamePurchase.Standard())
	assert.False(t, EventName("newsletter_signup").Standard())
	assert.False(t, EventName("").Standard())
}

func TestEventSourceScanAndValue(t *testing.T) {
	var s EventSource
	require.NoError(t, s.Scan("webhook"))
	assert.Equal(t, EventSourceWebhook, s)

	require.NoError(t, s.Scan([]byte("pixel")))
	assert.Equal(t, EventSourcePixel, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, EventSource(""), s)

	assert.Error(t, s.Scan(42))

	v, err := EventSourcePixel.Value()
	require.NoError(t, err)
	assert.Equal(t, "pixel", v)

	_, err = EventSource("carrier-pigeon").Value()
	assert.Error(t, err)
}

func TestAutoTrackEnabled(t *testing.T) {
	tests := []struct {
		name      string
		settings  AppSettings
		eventName EventName
		enabled   bool
	}{
		{
			name:      "unset toggles default to on",
			settings:  AppSettings{},
			eventName: EventNamePurchase,
			enabled:   true,
		},
		{
			name:      "explicit off",
			settings:  AppSettings{TrackPurchase: boolPtr(false)},
			eventName: EventNamePurchase,
			enabled:   false,
		},
		{
			name:      "toggle only affects its own event",
			settings:  AppSettings{TrackPurchase: boolPtr(false), TrackPageview: boolPtr(true)},
			eventName: EventNamePageview,
			enabled:   true,
		},
		{
			name:      "custom names are always on",
			settings:  AppSettings{TrackPageview: boolPtr(false), TrackAddToCart: boolPtr(false), TrackPurchase: boolPtr(false)},
			eventName: EventName("newsletter_signup"),
			enabled:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, tt.settings.AutoTrackEnabled(tt.eventName))
		})
	}
}
