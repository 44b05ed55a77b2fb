package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/app/services"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/repository"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettingsFlow handles the per-tenant forwarding configuration
type SettingsFlow interface {
	GetSettings(ctx context.Context, req *dto.GetSettingsRequest) (*dto.SettingsResponse, error)
	UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

// SettingsFlowImpl implements the settings flow
type SettingsFlowImpl struct {
	appRepo      repository.AppRepository
	settingsRepo repository.AppSettingsRepository
	cipher       services.SecretCipher
	db           *gorm.DB
}

// NewSettingsFlow creates a new settings flow instance
func NewSettingsFlow(
	appRepo repository.AppRepository,
	settingsRepo repository.AppSettingsRepository,
	cipher services.SecretCipher,
	db *gorm.DB,
) SettingsFlow {
	return &SettingsFlowImpl{
		appRepo:      appRepo,
		settingsRepo: settingsRepo,
		cipher:       cipher,
		db:           db,
	}
}

// GetSettings returns the stored settings for the caller's app. An app that
// has never saved settings gets the defaults back.
func (f *SettingsFlowImpl) GetSettings(ctx context.Context, req *dto.GetSettingsRequest) (*dto.SettingsResponse, error) {
	app, err := f.resolveApp(ctx, req.AppUUID)
	if err != nil {
		return nil, err
	}

	settings, err := f.settingsRepo.ByAppID(ctx, app.ID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to lookup settings", err)
	}
	if settings == nil {
		settings = &models.AppSettings{AppID: app.ID, Currency: "USD"}
	}

	resp := ToSettingsResponse(*settings, f.maskToken(settings.AccessTokenSealed))
	return &resp, nil
}

// UpdateSettings applies a partial update. Omitted fields keep their stored
// values; a provided access token is sealed before it is written.
func (f *SettingsFlowImpl) UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	if req.Enabled == nil && req.AccessToken == nil && req.PixelID == nil &&
		req.TestEventCode == nil && req.Currency == nil &&
		req.TrackPageview == nil && req.TrackAddToCart == nil && req.TrackPurchase == nil {
		return nil, ErrSettingsUpdateEmpty
	}

	app, err := f.resolveApp(ctx, req.AppUUID)
	if err != nil {
		return nil, err
	}

	settings, err := f.settingsRepo.ByAppID(ctx, app.ID)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LOOKUP_FAILED", "Failed to lookup settings", err)
	}
	isNew := settings == nil
	if isNew {
		settings = &models.AppSettings{AppID: app.ID, Currency: "USD"}
	}

	if req.Enabled != nil {
		settings.Enabled = req.Enabled
	}
	if req.AccessToken != nil {
		sealed, err := f.cipher.Seal(*req.AccessToken)
		if err != nil {
			return nil, NewBusinessError("TOKEN_SEAL_FAILED", "Failed to seal access token", err)
		}
		settings.AccessTokenSealed = sealed
	}
	if req.PixelID != nil {
		settings.PixelID = strings.TrimSpace(*req.PixelID)
	}
	if req.TestEventCode != nil {
		settings.TestEventCode = req.TestEventCode
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(currency) != 3 {
			return nil, ErrCurrencyInvalid
		}
		settings.Currency = currency
	}
	if req.TrackPageview != nil {
		settings.TrackPageview = req.TrackPageview
	}
	if req.TrackAddToCart != nil {
		settings.TrackAddToCart = req.TrackAddToCart
	}
	if req.TrackPurchase != nil {
		settings.TrackPurchase = req.TrackPurchase
	}
	settings.UpdatedAt = utils.UTCNow()

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if isNew {
			return f.settingsRepo.Save(txCtx, settings)
		}
		return f.settingsRepo.Update(txCtx, settings)
	})
	if err != nil {
		return nil, NewBusinessError("SETTINGS_SAVE_FAILED", "Failed to save settings", err)
	}

	resp := ToSettingsResponse(*settings, f.maskToken(settings.AccessTokenSealed))
	return &resp, nil
}

// maskToken exposes only the tail of the stored token
func (f *SettingsFlowImpl) maskToken(sealed string) string {
	if sealed == "" {
		return ""
	}
	plain, err := f.cipher.Open(sealed)
	if err != nil {
		return "****"
	}
	return utils.MaskSecret(plain)
}

func (f *SettingsFlowImpl) resolveApp(ctx context.Context, appUUID string) (*models.App, error) {
	parsed, err := uuid.Parse(appUUID)
	if err != nil {
		return nil, ErrAppNotFound
	}
	app, err := f.appRepo.ByUUID(ctx, parsed)
	if err != nil {
		return nil, NewBusinessError("APP_LOOKUP_FAILED", "Failed to lookup app", err)
	}
	if app == nil {
		return nil, ErrAppNotFound
	}
	return app, nil
}
