package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/repository"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogFlow manages the tenant's remote catalog links
type CatalogFlow interface {
	CreateCatalog(ctx context.Context, req *dto.CreateCatalogRequest) (*dto.CatalogResponse, error)
	ListCatalogs(ctx context.Context, appUUID string) (*dto.ListCatalogsResponse, error)
}

// CatalogFlowImpl implements the catalog flow
type CatalogFlowImpl struct {
	appRepo      repository.AppRepository
	settingsRepo repository.AppSettingsRepository
	catalogRepo  repository.CatalogRepository
	db           *gorm.DB
}

// NewCatalogFlow creates a new catalog flow instance
func NewCatalogFlow(
	appRepo repository.AppRepository,
	settingsRepo repository.AppSettingsRepository,
	catalogRepo repository.CatalogRepository,
	db *gorm.DB,
) CatalogFlow {
	return &CatalogFlowImpl{
		appRepo:      appRepo,
		settingsRepo: settingsRepo,
		catalogRepo:  catalogRepo,
		db:           db,
	}
}

// CreateCatalog registers a remote catalog and deactivates any previously
// active one, so at most one catalog is active per app. The settings row
// mirrors the active external id for the dashboard.
func (f *CatalogFlowImpl) CreateCatalog(ctx context.Context, req *dto.CreateCatalogRequest) (*dto.CatalogResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrCatalogNameRequired
	}

	app, err := f.resolveApp(ctx, req.AppUUID)
	if err != nil {
		return nil, err
	}

	catalog := &models.Catalog{
		UUID:              uuid.New(),
		AppID:             app.ID,
		ExternalCatalogID: strings.TrimSpace(req.ExternalCatalogID),
		Name:              name,
		IsActive:          utils.ToPtr(true),
		CreatedAt:         utils.UTCNow(),
		UpdatedAt:         utils.UTCNow(),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.catalogRepo.DeactivateByAppID(txCtx, app.ID); err != nil {
			return err
		}
		if err := f.catalogRepo.Save(txCtx, catalog); err != nil {
			return err
		}

		settings, err := f.settingsRepo.ByAppID(txCtx, app.ID)
		if err != nil {
			return err
		}
		if settings == nil {
			settings = &models.AppSettings{AppID: app.ID, Currency: "USD", CatalogID: utils.ToPtr(catalog.ExternalCatalogID)}
			return f.settingsRepo.Save(txCtx, settings)
		}
		settings.CatalogID = utils.ToPtr(catalog.ExternalCatalogID)
		settings.UpdatedAt = utils.UTCNow()
		return f.settingsRepo.Update(txCtx, settings)
	})
	if err != nil {
		return nil, NewBusinessError("CATALOG_SAVE_FAILED", "Failed to register catalog", err)
	}

	resp := toCatalogResponse(*catalog)
	return &resp, nil
}

// ListCatalogs returns all catalogs registered for the app, newest first
func (f *CatalogFlowImpl) ListCatalogs(ctx context.Context, appUUID string) (*dto.ListCatalogsResponse, error) {
	app, err := f.resolveApp(ctx, appUUID)
	if err != nil {
		return nil, err
	}

	rows, err := f.catalogRepo.ByFilter(ctx, models.CatalogFilter{AppID: &app.ID}, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("CATALOG_LIST_FAILED", "Failed to list catalogs", err)
	}

	out := make([]dto.CatalogResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCatalogResponse(*row))
	}
	return &dto.ListCatalogsResponse{Catalogs: out}, nil
}

func toCatalogResponse(catalog models.Catalog) dto.CatalogResponse {
	return dto.CatalogResponse{
		UUID:              catalog.UUID.String(),
		ExternalCatalogID: catalog.ExternalCatalogID,
		Name:              catalog.Name,
		IsActive:          utils.IsTrue(catalog.IsActive),
		CreatedAt:         catalog.CreatedAt,
	}
}

func (f *CatalogFlowImpl) resolveApp(ctx context.Context, appUUID string) (*models.App, error) {
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
