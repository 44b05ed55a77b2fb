package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/Pixel-Bridge/app/services"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/repository"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
)

// In-memory repository fakes. Flows under test are constructed with a nil
// *gorm.DB, so transactional sections run against these directly.

const testSealKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var (
	_ repository.AppRepository          = (*fakeAppRepo)(nil)
	_ repository.AppSettingsRepository  = (*fakeSettingsRepo)(nil)
	_ repository.TrackedEventRepository = (*fakeEventRepo)(nil)
	_ repository.CatalogRepository      = (*fakeCatalogRepo)(nil)
)

func newTestCipher() services.SecretCipher {
	cipher, err := services.NewSecretCipher(testSealKey)
	if err != nil {
		panic(err)
	}
	return cipher
}

func newTestApp(id uint, shopDomain string) *models.App {
	return &models.App{
		ID:         id,
		UUID:       uuid.New(),
		ShopDomain: shopDomain,
		Name:       "Test Shop",
		OwnerUUID:  uuid.New(),
		IsActive:   utils.ToPtr(true),
		CreatedAt:  utils.UTCNow(),
		UpdatedAt:  utils.UTCNow(),
	}
}

type fakeAppRepo struct {
	apps []*models.App
	err  error
}

func (r *fakeAppRepo) ByID(_ context.Context, id uint) (*models.App, error) {
	for _, app := range r.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) ByFilter(_ context.Context, _ models.AppFilter, _ string, _, _ int) ([]*models.App, error) {
	return r.apps, nil
}

func (r *fakeAppRepo) Save(_ context.Context, app *models.App) error {
	app.ID = uint(len(r.apps) + 1)
	r.apps = append(r.apps, app)
	return nil
}

func (r *fakeAppRepo) SaveBatch(ctx context.Context, apps []*models.App) error {
	for _, app := range apps {
		if err := r.Save(ctx, app); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAppRepo) Count(_ context.Context, _ models.AppFilter) (int64, error) {
	return int64(len(r.apps)), nil
}

func (r *fakeAppRepo) Exists(_ context.Context, _ models.AppFilter) (bool, error) {
	return len(r.apps) > 0, nil
}

func (r *fakeAppRepo) ByUUID(_ context.Context, id uuid.UUID) (*models.App, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, app := range r.apps {
		if app.UUID == id {
			return app, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) ByShopDomain(_ context.Context, shopDomain string) (*models.App, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, app := range r.apps {
		if app.ShopDomain == shopDomain {
			return app, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) MarkUninstalled(_ context.Context, appID uint) error {
	for _, app := range r.apps {
		if app.ID == appID {
			app.UninstalledAt = utils.UTCNowPtr()
			app.IsActive = utils.ToPtr(false)
		}
	}
	return nil
}

type fakeSettingsRepo struct {
	settings map[uint]*models.AppSettings
	saves    int
	updates  int
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[uint]*models.AppSettings)}
}

func (r *fakeSettingsRepo) ByID(_ context.Context, id uint) (*models.AppSettings, error) {
	for _, s := range r.settings {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSettingsRepo) ByFilter(_ context.Context, _ models.AppSettingsFilter, _ string, _, _ int) ([]*models.AppSettings, error) {
	out := make([]*models.AppSettings, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, settings *models.AppSettings) error {
	settings.ID = uint(len(r.settings) + 1)
	r.settings[settings.AppID] = settings
	r.saves++
	return nil
}

func (r *fakeSettingsRepo) SaveBatch(ctx context.Context, rows []*models.AppSettings) error {
	for _, s := range rows {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSettingsRepo) Count(_ context.Context, _ models.AppSettingsFilter) (int64, error) {
	return int64(len(r.settings)), nil
}

func (r *fakeSettingsRepo) Exists(_ context.Context, _ models.AppSettingsFilter) (bool, error) {
	return len(r.settings) > 0, nil
}

func (r *fakeSettingsRepo) ByAppID(_ context.Context, appID uint) (*models.AppSettings, error) {
	return r.settings[appID], nil
}

func (r *fakeSettingsRepo) Update(_ context.Context, settings *models.AppSettings) error {
	r.settings[settings.AppID] = settings
	r.updates++
	return nil
}

type fakeEventRepo struct {
	events  []*models.TrackedEvent
	saveErr error

	byName     []repository.EventNameCount
	byDay      []repository.DailyCount
	bySource   []repository.UTMCount
	byCampaign []repository.UTMCount
}

func (r *fakeEventRepo) ByID(_ context.Context, id uint) (*models.TrackedEvent, error) {
	for _, e := range r.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepo) matches(e *models.TrackedEvent, filter models.TrackedEventFilter) bool {
	if filter.AppID != nil && e.AppID != *filter.AppID {
		return false
	}
	if filter.EventName != nil && e.EventName != *filter.EventName {
		return false
	}
	if filter.Source != nil && e.Source != *filter.Source {
		return false
	}
	return true
}

func (r *fakeEventRepo) ByFilter(_ context.Context, filter models.TrackedEventFilter, _ string, limit, offset int) ([]*models.TrackedEvent, error) {
	// Newest first, mirroring the default ordering of the real repository
	matched := make([]*models.TrackedEvent, 0, len(r.events))
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.matches(r.events[i], filter) {
			matched = append(matched, r.events[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeEventRepo) Save(_ context.Context, event *models.TrackedEvent) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	event.ID = uint(len(r.events) + 1)
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) SaveBatch(ctx context.Context, events []*models.TrackedEvent) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, e := range events {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeEventRepo) Count(_ context.Context, filter models.TrackedEventFilter) (int64, error) {
	var n int64
	for _, e := range r.events {
		if r.matches(e, filter) {
			n++
		}
	}
	return n, nil
}

func (r *fakeEventRepo) Exists(ctx context.Context, filter models.TrackedEventFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeEventRepo) ByUUID(_ context.Context, id uuid.UUID) (*models.TrackedEvent, error) {
	for _, e := range r.events {
		if e.UUID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepo) CountByEventName(_ context.Context, _ uint, _ time.Time) ([]repository.EventNameCount, error) {
	return r.byName, nil
}

func (r *fakeEventRepo) CountByDay(_ context.Context, _ uint, _ time.Time) ([]repository.DailyCount, error) {
	return r.byDay, nil
}

func (r *fakeEventRepo) CountBySource(_ context.Context, _ uint, _ time.Time) ([]repository.UTMCount, error) {
	return r.bySource, nil
}

func (r *fakeEventRepo) CountByCampaign(_ context.Context, _ uint, _ time.Time) ([]repository.UTMCount, error) {
	return r.byCampaign, nil
}

func (r *fakeEventRepo) DeleteByAppID(_ context.Context, appID uint) error {
	kept := r.events[:0]
	for _, e := range r.events {
		if e.AppID != appID {
			kept = append(kept, e)
		}
	}
	r.events = kept
	return nil
}

type fakeCatalogRepo struct {
	catalogs []*models.Catalog
}

func (r *fakeCatalogRepo) ByID(_ context.Context, id uint) (*models.Catalog, error) {
	for _, c := range r.catalogs {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCatalogRepo) ByFilter(_ context.Context, filter models.CatalogFilter, _ string, _, _ int) ([]*models.Catalog, error) {
	// Newest first
	out := make([]*models.Catalog, 0, len(r.catalogs))
	for i := len(r.catalogs) - 1; i >= 0; i-- {
		c := r.catalogs[i]
		if filter.AppID != nil && c.AppID != *filter.AppID {
			continue
		}
		if filter.IsActive != nil && utils.IsTrue(c.IsActive) != *filter.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCatalogRepo) Save(_ context.Context, catalog *models.Catalog) error {
	catalog.ID = uint(len(r.catalogs) + 1)
	r.catalogs = append(r.catalogs, catalog)
	return nil
}

func (r *fakeCatalogRepo) SaveBatch(ctx context.Context, catalogs []*models.Catalog) error {
	for _, c := range catalogs {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCatalogRepo) Count(_ context.Context, _ models.CatalogFilter) (int64, error) {
	return int64(len(r.catalogs)), nil
}

func (r *fakeCatalogRepo) Exists(_ context.Context, _ models.CatalogFilter) (bool, error) {
	return len(r.catalogs) > 0, nil
}

func (r *fakeCatalogRepo) ActiveByAppID(_ context.Context, appID uint) (*models.Catalog, error) {
	for i := len(r.catalogs) - 1; i >= 0; i-- {
		c := r.catalogs[i]
		if c.AppID == appID && utils.IsTrue(c.IsActive) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCatalogRepo) DeactivateByAppID(_ context.Context, appID uint) error {
	for _, c := range r.catalogs {
		if c.AppID == appID {
			c.IsActive = utils.ToPtr(false)
		}
	}
	return nil
}
