// Package testing provides test utilities and database setup for integration testing
package testing

import (
	"fmt"
	"math/rand"

	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestApp creates an installed app with a random shop domain
func (tf *TestFixtures) CreateTestApp() (*models.App, error) {
	app := &models.App{
		UUID:       uuid.New(),
		ShopDomain: fmt.Sprintf("shop-%06d.myshopify.com", rand.Intn(1000000)),
		Name:       "Test Shop",
		OwnerUUID:  uuid.New(),
		IsActive:   utils.ToPtr(true),
		CreatedAt:  utils.UTCNow(),
		UpdatedAt:  utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(app).Error; err != nil {
		return nil, fmt.Errorf("failed to create test app: %w", err)
	}
	return app, nil
}

// CreateTestSettings creates enabled forwarding settings for the app. The
// sealed token is stored as given; callers that need a real round-trip seal
// it themselves.
func (tf *TestFixtures) CreateTestSettings(appID uint, sealedToken, pixelID string) (*models.AppSettings, error) {
	settings := &models.AppSettings{
		AppID:             appID,
		Enabled:           utils.ToPtr(true),
		AccessTokenSealed: sealedToken,
		PixelID:           pixelID,
		Currency:          "USD",
		TrackPageview:     utils.ToPtr(true),
		TrackAddToCart:    utils.ToPtr(true),
		TrackPurchase:     utils.ToPtr(true),
		CreatedAt:         utils.UTCNow(),
		UpdatedAt:         utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create test settings: %w", err)
	}
	return settings, nil
}

// CreateTestEvent creates one stored event for the app
func (tf *TestFixtures) CreateTestEvent(appID uint, eventName models.EventName, value float64, quantity int) (*models.TrackedEvent, error) {
	event := &models.TrackedEvent{
		UUID:       uuid.New(),
		AppID:      appID,
		EventName:  eventName,
		Value:      value,
		Quantity:   quantity,
		CustomData: map[string]any{},
		Source:     models.EventSourcePixel,
		CreatedAt:  utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test event: %w", err)
	}
	return event, nil
}

// CreateTestCatalog creates an active catalog link for the app
func (tf *TestFixtures) CreateTestCatalog(appID uint, externalID string) (*models.Catalog, error) {
	catalog := &models.Catalog{
		UUID:              uuid.New(),
		AppID:             appID,
		ExternalCatalogID: externalID,
		Name:              "Test Catalog",
		IsActive:          utils.ToPtr(true),
		CreatedAt:         utils.UTCNow(),
		UpdatedAt:         utils.UTCNow(),
	}
	if err := tf.DB.DB.Create(catalog).Error; err != nil {
		return nil, fmt.Errorf("failed to create test catalog: %w", err)
	}
	return catalog, nil
}
