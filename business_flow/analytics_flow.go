package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/amirphl/Pixel-Bridge/app/dto"
	"github.com/amirphl/Pixel-Bridge/config"
	"github.com/amirphl/Pixel-Bridge/models"
	"github.com/amirphl/Pixel-Bridge/repository"
	"github.com/amirphl/Pixel-Bridge/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

// Report types served by the analytics flow
const (
	ReportTypeFacebook  = "facebook"
	ReportTypeCampaigns = "campaigns"
	ReportTypeSources   = "sources"
)

// AnalyticsFlow builds ranged reports over the stored events. Reports are
// computed from the event rows on every request; the only caching is the
// 60-second response cache in Redis.
type AnalyticsFlow interface {
	GetReport(ctx context.Context, req *dto.GetReportRequest) (*dto.ReportResponse, error)
	ExportReport(ctx context.Context, req *dto.ExportReportRequest) (string, []byte, error)
}

// AnalyticsFlowImpl implements the analytics flow
type AnalyticsFlowImpl struct {
	appRepo     repository.AppRepository
	eventRepo   repository.TrackedEventRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
}

// NewAnalyticsFlow creates a new analytics flow instance
func NewAnalyticsFlow(
	appRepo repository.AppRepository,
	eventRepo repository.TrackedEventRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		appRepo:     appRepo,
		eventRepo:   eventRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

// rangeDays maps a range token onto a day count. Unknown tokens fall back to
// the 30-day default rather than erroring.
func rangeDays(rng string) (string, int) {
	switch rng {
	case "7d":
		return "7d", 7
	case "30d":
		return "30d", 30
	case "90d":
		return "90d", 90
	case "365d":
		return "365d", 365
	default:
		return utils.DefaultReportRange, 30
	}
}

func normalizeReportType(t string) string {
	switch t {
	case ReportTypeCampaigns, ReportTypeSources:
		return t
	default:
		return ReportTypeFacebook
	}
}

// GetReport builds a report for the requested range and type
func (f *AnalyticsFlowImpl) GetReport(ctx context.Context, req *dto.GetReportRequest) (*dto.ReportResponse, error) {
	app, err := f.resolveApp(ctx, req.AppUUID)
	if err != nil {
		return nil, err
	}

	rng, days := rangeDays(req.Range)
	reportType := normalizeReportType(req.Type)

	var cacheKey string
	if f.cacheEnabled() {
		cacheKey = redisKey(*f.cacheConfig, fmt.Sprintf("%s:%s:%s:%s", utils.ReportCacheKey, req.AppUUID, rng, reportType))
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.ReportResponse
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	since := utils.UTCNow().AddDate(0, 0, -days)
	report := &dto.ReportResponse{Range: rng, Type: reportType}

	switch reportType {
	case ReportTypeCampaigns:
		rows, err := f.eventRepo.CountByCampaign(ctx, app.ID, since)
		if err != nil {
			return nil, NewBusinessError("REPORT_QUERY_FAILED", "Failed to aggregate events by campaign", err)
		}
		for _, r := range rows {
			report.ByCampaign = append(report.ByCampaign, dto.ReportCampaignRow{
				Source:     r.Source,
				Medium:     r.Medium,
				Campaign:   r.Campaign,
				Count:      r.Count,
				TotalValue: r.TotalValue,
			})
			report.TotalEvents += r.Count
			report.TotalValue += r.TotalValue
		}
	case ReportTypeSources:
		rows, err := f.eventRepo.CountBySource(ctx, app.ID, since)
		if err != nil {
			return nil, NewBusinessError("REPORT_QUERY_FAILED", "Failed to aggregate events by source", err)
		}
		for _, r := range rows {
			report.BySource = append(report.BySource, dto.ReportSourceRow{
				Source:     r.Source,
				Count:      r.Count,
				TotalValue: r.TotalValue,
			})
			report.TotalEvents += r.Count
			report.TotalValue += r.TotalValue
		}
	default:
		byName, err := f.eventRepo.CountByEventName(ctx, app.ID, since)
		if err != nil {
			return nil, NewBusinessError("REPORT_QUERY_FAILED", "Failed to aggregate events by name", err)
		}
		for _, r := range byName {
			report.ByEventName = append(report.ByEventName, dto.ReportEventRow{
				EventName:  r.EventName,
				Count:      r.Count,
				TotalValue: r.TotalValue,
			})
			report.TotalEvents += r.Count
			report.TotalValue += r.TotalValue
		}
		byDay, err := f.eventRepo.CountByDay(ctx, app.ID, since)
		if err != nil {
			return nil, NewBusinessError("REPORT_QUERY_FAILED", "Failed to aggregate events by day", err)
		}
		for _, r := range byDay {
			report.ByDay = append(report.ByDay, dto.ReportDayRow{
				Day:        r.Day.UTC().Format("2006-01-02"),
				Count:      r.Count,
				TotalValue: r.TotalValue,
			})
		}
	}

	if f.cacheEnabled() {
		if bs, err := json.Marshal(report); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, utils.ReportCacheTTL).Err()
		}
	}

	return report, nil
}

// ExportReport renders a report as an XLSX workbook for dashboard download
func (f *AnalyticsFlowImpl) ExportReport(ctx context.Context, req *dto.ExportReportRequest) (string, []byte, error) {
	report, err := f.GetReport(ctx, &dto.GetReportRequest{
		AppUUID: req.AppUUID,
		Range:   req.Range,
		Type:    req.Type,
	})
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	writeSheet := func(name string, header []string, rows [][]string) {
		if xl.GetSheetName(0) == "Sheet1" && len(xl.GetSheetList()) == 1 {
			xl.SetSheetName("Sheet1", name)
		} else {
			_, _ = xl.NewSheet(name)
		}
		_ = xl.SetSheetRow(name, "A1", &header)
		for ri, record := range rows {
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			_ = xl.SetSheetRow(name, cellRef, &record)
		}
	}

	formatValue := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	switch report.Type {
	case ReportTypeCampaigns:
		rows := make([][]string, 0, len(report.ByCampaign))
		for _, r := range report.ByCampaign {
			rows = append(rows, []string{r.Source, r.Medium, r.Campaign, strconv.FormatInt(r.Count, 10), formatValue(r.TotalValue)})
		}
		writeSheet("Campaigns", []string{"utm_source", "utm_medium", "utm_campaign", "count", "total_value"}, rows)
	case ReportTypeSources:
		rows := make([][]string, 0, len(report.BySource))
		for _, r := range report.BySource {
			rows = append(rows, []string{r.Source, strconv.FormatInt(r.Count, 10), formatValue(r.TotalValue)})
		}
		writeSheet("Sources", []string{"utm_source", "count", "total_value"}, rows)
	default:
		nameRows := make([][]string, 0, len(report.ByEventName))
		for _, r := range report.ByEventName {
			nameRows = append(nameRows, []string{r.EventName, strconv.FormatInt(r.Count, 10), formatValue(r.TotalValue)})
		}
		writeSheet("Events", []string{"event_name", "count", "total_value"}, nameRows)

		dayRows := make([][]string, 0, len(report.ByDay))
		for _, r := range report.ByDay {
			dayRows = append(dayRows, []string{r.Day, strconv.FormatInt(r.Count, 10), formatValue(r.TotalValue)})
		}
		writeSheet("Daily", []string{"day", "count", "total_value"}, dayRows)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("report_%s_%s.xlsx", report.Range, report.Type)
	return filename, buf.Bytes(), nil
}

func (f *AnalyticsFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled
}

func (f *AnalyticsFlowImpl) resolveApp(ctx context.Context, appUUID string) (*models.App, error) {
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
