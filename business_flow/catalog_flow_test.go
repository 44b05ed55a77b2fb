package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFlowHarness struct {
	flow     CatalogFlow
	app      *models.App
	settings *fakeSettingsRepo
	catalogs *fakeCatalogRepo
}

func newCatalogFlowHarness(t *testing.T) *catalogFlowHarness {
	t.Helper()

	app := newTestApp(1, "demo-shop.myshopify.com")
	appRepo := &fakeAppRepo{apps: []*models.App{app}}
	settingsRepo := newFakeSettingsRepo()
	catalogRepo := &fakeCatalogRepo{}

	return &catalogFlowHarness{
		flow:     NewCatalogFlow(appRepo, settingsRepo, catalogRepo, nil),
		app:      app,
		settings: settingsRepo,
		catalogs: catalogRepo,
	}
}

func TestCreateCatalog(t *testing.T) {
	h := newCatalogFlowHarness(t)

	resp, err := h.flow.CreateCatalog(context.Background(), &dto.CreateCatalogRequest{
		AppUUID:           h.app.UUID.String(),
		ExternalCatalogID: " cat-777 ",
		Name:              "Spring Collection",
	})
	require.NoError(t, err)

	assert.Equal(t, "cat-777", resp.ExternalCatalogID)
	assert.Equal(t, "Spring Collection", resp.Name)
	assert.True(t, resp.IsActive)
	assert.NotEmpty(t, resp.UUID)

	// The settings row mirrors the active external id
	settings := h.settings.settings[h.app.ID]
	require.NotNil(t, settings)
	require.NotNil(t, settings.CatalogID)
	assert.Equal(t, "cat-777", *settings.CatalogID)
}

func TestCreateCatalogRequiresName(t *testing.T) {
	h := newCatalogFlowHarness(t)

	_, err := h.flow.CreateCatalog(context.Background(), &dto.CreateCatalogRequest{
		AppUUID:           h.app.UUID.String(),
		ExternalCatalogID: "cat-777",
		Name:              "   ",
	})
	assert.ErrorIs(t, err, ErrCatalogNameRequired)
	assert.Empty(t, h.catalogs.catalogs)
}

func TestCreateCatalogDeactivatesPrevious(t *testing.T) {
	h := newCatalogFlowHarness(t)

	_, err := h.flow.CreateCatalog(context.Background(), &dto.CreateCatalogRequest{
		AppUUID:           h.app.UUID.String(),
		ExternalCatalogID: "cat-old",
		Name:              "Old Catalog",
	})
	require.NoError(t, err)

	_, err = h.flow.CreateCatalog(context.Background(), &dto.CreateCatalogRequest{
		AppUUID:           h.app.UUID.String(),
		ExternalCatalogID: "cat-new",
		Name:              "New Catalog",
	})
	require.NoError(t, err)

	require.Len(t, h.catalogs.catalogs, 2)
	assert.False(t, utils.IsTrue(h.catalogs.catalogs[0].IsActive))
	assert.True(t, utils.IsTrue(h.catalogs.catalogs[1].IsActive))

	active, err := h.catalogs.ActiveByAppID(context.Background(), h.app.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "cat-new", active.ExternalCatalogID)

	// The settings mirror follows the newest catalog
	settings := h.settings.settings[h.app.ID]
	require.NotNil(t, settings)
	assert.Equal(t, "cat-new", *settings.CatalogID)
}

func TestCreateCatalogUpdatesExistingSettings(t *testing.T) {
	h := newCatalogFlowHarness(t)
	h.settings.settings[h.app.ID] = &models.AppSettings{
		ID:      1,
		AppID:   h.app.ID,
		Enabled: utils.ToPtr(true),
		PixelID: "1234567890",
	}

	_, err := h.flow.CreateCatalog(context.Background(), &dto.CreateCatalogRequest{
		AppUUID:           h.app.UUID.String(),
		ExternalCatalogID: "cat-777",
		Name:              "Spring Collection",
	})
	require.NoError(t, err)

	settings := h.settings.settings[h.app.ID]
	assert.Equal(t, "cat-777", *settings.CatalogID)
	assert.Equal(t, "1234567890", settings.PixelID)
	assert.Equal(t, 1, h.settings.updates)
	assert.Equal(t, 0, h.settings.saves)
}

func TestListCatalogsNewestFirst(t *testing.T) {
	h := newCatalogFlowHarness(t)

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := h.flow.CreateCatalog(context.Background(), &dto.CreateCatalogRequest{
			AppUUID:           h.app.UUID.String(),
			ExternalCatalogID: "cat-" + name,
			Name:              name,
		})
		require.NoError(t, err)
	}

	resp, err := h.flow.ListCatalogs(context.Background(), h.app.UUID.String())
	require.NoError(t, err)

	require.Len(t, resp.Catalogs, 3)
	assert.Equal(t, "Third", resp.Catalogs[0].Name)
	assert.True(t, resp.Catalogs[0].IsActive)
	assert.Equal(t, "First", resp.Catalogs[2].Name)
	assert.False(t, resp.Catalogs[2].IsActive)
}

func TestCatalogFlowRejectsUnknownApp(t *testing.T) {
	h := newCatalogFlowHarness(t)

	_, err := h.flow.CreateCatalog(context.Background(), &dto.CreateCatalogRequest{
		AppUUID:           uuid.NewString(),
		ExternalCatalogID: "cat-777",
		Name:              "Spring Collection",
	})
	assert.ErrorIs(t, err, ErrAppNotFound)

	_, err = h.flow.ListCatalogs(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrAppNotFound)
}
