package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/clean"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/quality"
)

type siteInfo struct {
	ID   model.LocationID `json:"id"`
	Name string           `json:"name"`
	// WeatherFeatures lists the canonical weather columns this site's
	// station provides, sorted.
	WeatherFeatures []string `json:"weather_features"`
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	sites := model.Locations()
	out := make([]siteInfo, 0, len(sites))
	for _, site := range sites {
		features := make([]string, 0, len(site.WeatherColumns))
		for canon := range site.WeatherColumns {
			features = append(features, canon)
		}
		sort.Strings(features)
		out = append(out, siteInfo{ID: site.ID, Name: site.Name, WeatherFeatures: features})
	}
	writeJSON(w, out)
}

// categorySummary describes what one category's load produced.
type categorySummary struct {
	Rows             int            `json:"rows"`
	FilesLoaded      int            `json:"files_loaded"`
	MissingDays      []string       `json:"missing_days"`
	Warnings         []string       `json:"warnings,omitempty"`
	DirectoryMissing bool           `json:"directory_missing,omitempty"`
	Start            string         `json:"start,omitempty"`
	End              string         `json:"end,omitempty"`
	Columns          []string       `json:"columns"`
	Outliers         map[string]int `json:"outliers,omitempty"`
}

type summaryResponse struct {
	RequestID    string           `json:"request_id"`
	Location     model.LocationID `json:"location"`
	Days         int              `json:"days"`
	Completeness float64          `json:"completeness"`
	MPPT         categorySummary  `json:"mppt"`
	Weather      categorySummary  `json:"weather"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	logger, reqID := s.requestLogger(w, r)
	req, err := parseRequest(r, false)
	if err != nil {
		fail(w, logger, err)
		return
	}

	bundle, report, err := s.loader.LoadLocation(req)
	if err != nil {
		fail(w, logger, err)
		return
	}
	mppt, _ := clean.Clean(bundle.MPPT)
	weather, _ := clean.Clean(bundle.Weather)

	s.bridge.OnDataLoaded(mppt, report.MPPT)
	s.bridge.OnDataLoaded(weather, report.Weather)
	s.bridge.OnQualityUpdate(&report)

	logger.Info().
		Str("location", string(req.Location)).
		Int("mppt_rows", mppt.Len()).
		Int("weather_rows", weather.Len()).
		Float64("completeness", report.Completeness()).
		Msg("summary served")

	writeJSON(w, summaryResponse{
		RequestID:    reqID,
		Location:     req.Location,
		Days:         report.Days,
		Completeness: report.Completeness(),
		MPPT:         summarizeCategory(mppt, report.MPPT),
		Weather:      summarizeCategory(weather, report.Weather),
	})
}

func summarizeCategory(f *model.Frame, rep quality.CategoryReport) categorySummary {
	out := categorySummary{
		Rows:             f.Len(),
		FilesLoaded:      rep.FilesLoaded,
		MissingDays:      dayStrings(rep.MissingDays),
		Warnings:         rep.Warnings,
		DirectoryMissing: rep.DirectoryMissing,
		Columns:          f.Columns,
		Outliers:         quality.OutlierCounts(f),
	}
	if tr, ok := f.TimeBounds(); ok {
		out.Start = tr.Start.Format(time.RFC3339)
		out.End = tr.End.Format(time.RFC3339)
	}
	return out
}

type categoryQuality struct {
	FilesLoaded      int            `json:"files_loaded"`
	MissingDays      []string       `json:"missing_days"`
	Warnings         []string       `json:"warnings,omitempty"`
	DirectoryMissing bool           `json:"directory_missing,omitempty"`
	// ColumnCompleteness is the per-column share of non-null cells, [0, 1].
	ColumnCompleteness map[string]float64 `json:"column_completeness"`
	Outliers           map[string]int     `json:"outliers,omitempty"`
}

type qualityResponse struct {
	RequestID    string           `json:"request_id"`
	Location     model.LocationID `json:"location"`
	Days         int              `json:"days"`
	Completeness float64          `json:"completeness"`
	MPPT         categoryQuality  `json:"mppt"`
	Weather      categoryQuality  `json:"weather"`
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	logger, reqID := s.requestLogger(w, r)
	req, err := parseRequest(r, false)
	if err != nil {
		fail(w, logger, err)
		return
	}

	bundle, report, err := s.loader.LoadLocation(req)
	if err != nil {
		fail(w, logger, err)
		return
	}
	mppt, _ := clean.Clean(bundle.MPPT)
	weather, _ := clean.Clean(bundle.Weather)

	s.bridge.OnQualityUpdate(&report)

	logger.Info().
		Str("location", string(req.Location)).
		Float64("completeness", report.Completeness()).
		Msg("quality report served")

	writeJSON(w, qualityResponse{
		RequestID:    reqID,
		Location:     req.Location,
		Days:         report.Days,
		Completeness: report.Completeness(),
		MPPT:         qualityCategory(mppt, report.MPPT),
		Weather:      qualityCategory(weather, report.Weather),
	})
}

func qualityCategory(f *model.Frame, rep quality.CategoryReport) categoryQuality {
	return categoryQuality{
		FilesLoaded:        rep.FilesLoaded,
		MissingDays:        dayStrings(rep.MissingDays),
		Warnings:           rep.Warnings,
		DirectoryMissing:   rep.DirectoryMissing,
		ColumnCompleteness: quality.ColumnCompleteness(f),
		Outliers:           quality.OutlierCounts(f),
	}
}

func dayStrings(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(dayFormat)
	}
	return out
}
