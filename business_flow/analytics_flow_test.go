package businessflow

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type analyticsFlowHarness struct {
	flow   AnalyticsFlow
	app    *models.App
	events *fakeEventRepo
}

func newAnalyticsFlowHarness(t *testing.T) *analyticsFlowHarness {
	t.Helper()

	app := newTestApp(1, "demo-shop.myshopify.com")
	appRepo := &fakeAppRepo{apps: []*models.App{app}}
	eventRepo := &fakeEventRepo{
		byName: []repository.EventNameCount{
			{EventName: "purchase", Count: 10, TotalValue: 199.90},
			{EventName: "pageview", Count: 25, TotalValue: 0},
		},
		byDay: []repository.DailyCount{
			{Day: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), Count: 20, TotalValue: 120},
			{Day: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), Count: 15, TotalValue: 79.90},
		},
		bySource: []repository.UTMCount{
			{Source: "google", Count: 12, TotalValue: 100},
			{Source: "newsletter", Count: 3, TotalValue: 40},
		},
		byCampaign: []repository.UTMCount{
			{Source: "google", Medium: "cpc", Campaign: "summer-sale", Count: 8, TotalValue: 150},
		},
	}

	// Redis client deliberately nil: caching must be a no-op
	return &analyticsFlowHarness{
		flow:   NewAnalyticsFlow(appRepo, eventRepo, nil, nil),
		app:    app,
		events: eventRepo,
	}
}

func TestRangeDays(t *testing.T) {
	tests := []struct {
		in   string
		rng  string
		days int
	}{
		{"7d", "7d", 7},
		{"30d", "30d", 30},
		{"90d", "90d", 90},
		{"365d", "365d", 365},
		{"", "30d", 30},
		{"12d", "30d", 30},
		{"all", "30d", 30},
	}

	for _, tt := range tests {
		rng, days := rangeDays(tt.in)
		assert.Equal(t, tt.rng, rng, "range for %q", tt.in)
		assert.Equal(t, tt.days, days, "days for %q", tt.in)
	}
}

func TestGetReportFacebookBreakdown(t *testing.T) {
	h := newAnalyticsFlowHarness(t)

	report, err := h.flow.GetReport(context.Background(), &dto.GetReportRequest{
		AppUUID: h.app.UUID.String(),
		Range:   "7d",
		Type:    "facebook",
	})
	require.NoError(t, err)

	assert.Equal(t, "7d", report.Range)
	assert.Equal(t, ReportTypeFacebook, report.Type)
	assert.Equal(t, int64(35), report.TotalEvents)
	assert.InDelta(t, 199.90, report.TotalValue, 0.001)

	require.Len(t, report.ByEventName, 2)
	assert.Equal(t, "purchase", report.ByEventName[0].EventName)
	assert.Equal(t, int64(10), report.ByEventName[0].Count)

	require.Len(t, report.ByDay, 2)
	assert.Equal(t, "2026-08-28", report.ByDay[0].Day)
	assert.Empty(t, report.ByCampaign)
	assert.Empty(t, report.BySource)
}

func TestGetReportCampaignBreakdown(t *testing.T) {
	h := newAnalyticsFlowHarness(t)

	report, err := h.flow.GetReport(context.Background(), &dto.GetReportRequest{
		AppUUID: h.app.UUID.String(),
		Type:    "campaigns",
	})
	require.NoError(t, err)

	assert.Equal(t, ReportTypeCampaigns, report.Type)
	assert.Equal(t, int64(8), report.TotalEvents)
	require.Len(t, report.ByCampaign, 1)
	assert.Equal(t, "summer-sale", report.ByCampaign[0].Campaign)
	assert.Equal(t, "cpc", report.ByCampaign[0].Medium)
	assert.Empty(t, report.ByEventName)
}

func TestGetReportSourceBreakdown(t *testing.T) {
	h := newAnalyticsFlowHarness(t)

	report, err := h.flow.GetReport(context.Background(), &dto.GetReportRequest{
		AppUUID: h.app.UUID.String(),
		Type:    "sources",
	})
	require.NoError(t, err)

	assert.Equal(t, ReportTypeSources, report.Type)
	assert.Equal(t, int64(15), report.TotalEvents)
	assert.InDelta(t, 140, report.TotalValue, 0.001)
	require.Len(t, report.BySource, 2)
	assert.Equal(t, "google", report.BySource[0].Source)
}

func TestGetReportNormalizesRangeAndType(t *testing.T) {
	h := newAnalyticsFlowHarness(t)

	report, err := h.flow.GetReport(context.Background(), &dto.GetReportRequest{
		AppUUID: h.app.UUID.String(),
		Range:   "all-time",
		Type:    "bogus",
	})
	require.NoError(t, err)

	assert.Equal(t, "30d", report.Range)
	assert.Equal(t, ReportTypeFacebook, report.Type)
}

func TestGetReportRejectsUnknownApp(t *testing.T) {
	h := newAnalyticsFlowHarness(t)

	_, err := h.flow.GetReport(context.Background(), &dto.GetReportRequest{AppUUID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrAppNotFound)

	_, err = h.flow.GetReport(context.Background(), &dto.GetReportRequest{AppUUID: "not-a-uuid"})
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestExportReportProducesWorkbook(t *testing.T) {
	h := newAnalyticsFlowHarness(t)

	filename, content, err := h.flow.ExportReport(context.Background(), &dto.ExportReportRequest{
		AppUUID: h.app.UUID.String(),
		Range:   "90d",
		Type:    "facebook",
	})
	require.NoError(t, err)

	assert.Equal(t, "report_90d_facebook.xlsx", filename)
	require.NotEmpty(t, content)

	xl, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.ElementsMatch(t, []string{"Events", "Daily"}, xl.GetSheetList())

	header, err := xl.GetCellValue("Events", "A1")
	require.NoError(t, err)
	assert.Equal(t, "event_name", header)

	firstName, err := xl.GetCellValue("Events", "A2")
	require.NoError(t, err)
	assert.Equal(t, "purchase", firstName)

	firstCount, err := xl.GetCellValue("Events", "B2")
	require.NoError(t, err)
	assert.Equal(t, "10", firstCount)
}

func TestExportReportCampaignWorkbook(t *testing.T) {
	h := newAnalyticsFlowHarness(t)

	filename, content, err := h.flow.ExportReport(context.Background(), &dto.ExportReportRequest{
		AppUUID: h.app.UUID.String(),
		Type:    "campaigns",
	})
	require.NoError(t, err)

	assert.Equal(t, "report_30d_campaigns.xlsx", filename)

	xl, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.Equal(t, []string{"Campaigns"}, xl.GetSheetList())

	campaign, err := xl.GetCellValue("Campaigns", "C2")
	require.NoError(t, err)
	assert.Equal(t, "summer-sale", campaign)
}
