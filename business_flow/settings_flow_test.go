package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/app/services"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settingsFlowHarness struct {
	flow     SettingsFlow
	app      *models.App
	settings *fakeSettingsRepo
	cipher   services.SecretCipher
}

func newSettingsFlowHarness(t *testing.T) *settingsFlowHarness {
	t.Helper()

	app := newTestApp(1, "demo-shop.myshopify.com")
	appRepo := &fakeAppRepo{apps: []*models.App{app}}
	settingsRepo := newFakeSettingsRepo()
	cipher := newTestCipher()

	return &settingsFlowHarness{
		flow:     NewSettingsFlow(appRepo, settingsRepo, cipher, nil),
		app:      app,
		settings: settingsRepo,
		cipher:   cipher,
	}
}

func TestGetSettingsReturnsDefaultsForFreshApp(t *testing.T) {
	h := newSettingsFlowHarness(t)

	resp, err := h.flow.GetSettings(context.Background(), &dto.GetSettingsRequest{AppUUID: h.app.UUID.String()})
	require.NoError(t, err)

	assert.False(t, resp.Enabled)
	assert.Empty(t, resp.AccessTokenMasked)
	assert.Empty(t, resp.PixelID)
	assert.Equal(t, "USD", resp.Currency)
	assert.True(t, resp.TrackPageview)
	assert.True(t, resp.TrackAddToCart)
	assert.True(t, resp.TrackPurchase)

	// Reading defaults must not create a row
	assert.Empty(t, h.settings.settings)
}

func TestGetSettingsRejectsUnknownApp(t *testing.T) {
	h := newSettingsFlowHarness(t)

	_, err := h.flow.GetSettings(context.Background(), &dto.GetSettingsRequest{AppUUID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestUpdateSettingsRejectsEmptyUpdate(t *testing.T) {
	h := newSettingsFlowHarness(t)

	_, err := h.flow.UpdateSettings(context.Background(), &dto.UpdateSettingsRequest{AppUUID: h.app.UUID.String()})
	assert.ErrorIs(t, err, ErrSettingsUpdateEmpty)
}

func TestUpdateSettingsSealsAccessToken(t *testing.T) {
	h := newSettingsFlowHarness(t)

	resp, err := h.flow.UpdateSettings(context.Background(), &dto.UpdateSettingsRequest{
		AppUUID:     h.app.UUID.String(),
		Enabled:     utils.ToPtr(true),
		AccessToken: utils.ToPtr("EAAB-secret-token"),
		PixelID:     utils.ToPtr("1234567890"),
	})
	require.NoError(t, err)

	stored := h.settings.settings[h.app.ID]
	require.NotNil(t, stored)

	// The plaintext never hits the database; the sealed value round-trips
	assert.NotEqual(t, "EAAB-secret-token", stored.AccessTokenSealed)
	assert.NotContains(t, stored.AccessTokenSealed, "EAAB")
	opened, err := h.cipher.Open(stored.AccessTokenSealed)
	require.NoError(t, err)
	assert.Equal(t, "EAAB-secret-token", opened)

	// Responses expose only the tail
	assert.Equal(t, "****oken", resp.AccessTokenMasked)
	assert.True(t, resp.Enabled)
	assert.Equal(t, "1234567890", resp.PixelID)
}

func TestUpdateSettingsIsPartial(t *testing.T) {
	h := newSettingsFlowHarness(t)

	_, err := h.flow.UpdateSettings(context.Background(), &dto.UpdateSettingsRequest{
		AppUUID:     h.app.UUID.String(),
		Enabled:     utils.ToPtr(true),
		AccessToken: utils.ToPtr("EAAB-secret-token"),
		PixelID:     utils.ToPtr("1234567890"),
		Currency:    utils.ToPtr("eur"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, h.settings.saves)

	// Second update touches one field and leaves the rest alone
	resp, err := h.flow.UpdateSettings(context.Background(), &dto.UpdateSettingsRequest{
		AppUUID:       h.app.UUID.String(),
		TrackPageview: utils.ToPtr(false),
	})
	require.NoError(t, err)
	require.Equal(t, 1, h.settings.updates)

	assert.True(t, resp.Enabled)
	assert.Equal(t, "1234567890", resp.PixelID)
	assert.Equal(t, "EUR", resp.Currency)
	assert.False(t, resp.TrackPageview)
	assert.True(t, resp.TrackPurchase)
	assert.Equal(t, "****oken", resp.AccessTokenMasked)
}

func TestUpdateSettingsValidatesCurrency(t *testing.T) {
	h := newSettingsFlowHarness(t)

	tests := []struct {
		name        string
		currency    string
		expectError bool
		stored      string
	}{
		{name: "lowercase is normalized", currency: "eur", stored: "EUR"},
		{name: "padded is trimmed", currency: " gbp ", stored: "GBP"},
		{name: "too short", currency: "us", expectError: true},
		{name: "too long", currency: "usdollar", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.flow.UpdateSettings(context.Background(), &dto.UpdateSettingsRequest{
				AppUUID:  h.app.UUID.String(),
				Currency: utils.ToPtr(tt.currency),
			})
			if tt.expectError {
				assert.ErrorIs(t, err, ErrCurrencyInvalid)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.stored, resp.Currency)
			}
		})
	}
}

func TestUpdateSettingsRejectsUnknownApp(t *testing.T) {
	h := newSettingsFlowHarness(t)

	_, err := h.flow.UpdateSettings(context.Background(), &dto.UpdateSettingsRequest{
		AppUUID: uuid.NewString(),
		Enabled: utils.ToPtr(true),
	})
	assert.ErrorIs(t, err, ErrAppNotFound)
}
