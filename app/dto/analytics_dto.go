package dto

// GetReportRequest represents the request to build an analytics report
type GetReportRequest struct {
	AppUUID string `json:"-" validate:"required,uuid4"`
	Range   string `json:"-" validate:"omitempty,max=8"`
	Type    string `json:"-" validate:"omitempty,oneof=facebook campaigns sources"`
}

// ReportEventRow represents one event name in a report
type ReportEventRow struct {
	EventName  string  `json:"event_name"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// ReportDayRow represents one day bucket in a report
type ReportDayRow struct {
	Day        string  `json:"day"` // YYYY-MM-DD
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// ReportCampaignRow represents one UTM campaign bucket in a report
type ReportCampaignRow struct {
	Source     string  `json:"source"`
	Medium     string  `json:"medium"`
	Campaign   string  `json:"campaign"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// ReportSourceRow represents one ingestion source bucket in a report
type ReportSourceRow struct {
	Source     string  `json:"source"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// ReportResponse represents an analytics report. Only the sections of the
// requested report type are populated.
type ReportResponse struct {
	Range       string              `json:"range"`
	Type        string              `json:"type"`
	TotalEvents int64               `json:"total_events"`
	TotalValue  float64             `json:"total_value"`
	ByEventName []ReportEventRow    `json:"by_event_name,omitempty"`
	ByDay       []ReportDayRow      `json:"by_day,omitempty"`
	ByCampaign  []ReportCampaignRow `json:"by_campaign,omitempty"`
	BySource    []ReportSourceRow   `json:"by_source,omitempty"`
}

// ExportReportRequest represents the request to export a report as a spreadsheet
type ExportReportRequest struct {
	AppUUID string `json:"-" validate:"required,uuid4"`
	Range   string `json:"-" validate:"omitempty,max=8"`
	Type    string `json:"-" validate:"omitempty,oneof=facebook campaigns sources"`
}
