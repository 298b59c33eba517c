package api

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/aggregate"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/clean"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/export"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// tableRow is the wire form of one Reading. Empty maps are omitted so
// sparse buckets stay small on the wire.
type tableRow struct {
	Timestamp string             `json:"timestamp,omitempty"`
	Values    map[string]float64 `json:"values,omitempty"`
	Labels    map[string]string  `json:"labels,omitempty"`
	Outliers  []string           `json:"outliers,omitempty"`
}

type tableResponse struct {
	RequestID   string                `json:"request_id"`
	Location    model.LocationID      `json:"location"`
	Category    model.Category        `json:"category"`
	Granularity aggregate.Granularity `json:"granularity"`
	Columns     []string              `json:"columns"`
	Rows        []tableRow            `json:"rows"`
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	logger, reqID := s.requestLogger(w, r)
	req, err := parseRequest(r, true)
	if err != nil {
		fail(w, logger, err)
		return
	}
	gran, err := parseGranularity(r)
	if err != nil {
		fail(w, logger, err)
		return
	}

	frame, _, err := s.loader.Load(req)
	if err != nil {
		fail(w, logger, err)
		return
	}
	cleaned, _ := clean.Clean(frame)
	resampled := aggregate.Resample(cleaned, gran)

	logger.Info().
		Str("location", string(req.Location)).
		Str("category", string(req.Category)).
		Str("granularity", string(gran)).
		Int("rows", resampled.Len()).
		Msg("aggregate served")

	writeJSON(w, tableResponse{
		RequestID:   reqID,
		Location:    req.Location,
		Category:    req.Category,
		Granularity: gran,
		Columns:     resampled.Columns,
		Rows:        tableRows(resampled),
	})
}

func tableRows(f *model.Frame) []tableRow {
	rows := make([]tableRow, 0, f.Len())
	for _, r := range f.Rows {
		row := tableRow{}
		if !r.Timestamp.IsZero() {
			row.Timestamp = r.Timestamp.Format(time.RFC3339)
		}
		if len(r.Values) > 0 {
			row.Values = r.Values
		}
		if len(r.Labels) > 0 {
			row.Labels = r.Labels
		}
		for col, flagged := range r.Outliers {
			if flagged {
				row.Outliers = append(row.Outliers, col)
			}
		}
		sort.Strings(row.Outliers)
		rows = append(rows, row)
	}
	return rows
}

// handleExport streams the cleaned (optionally resampled) frame as a
// spreadsheet-compatible CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	logger, _ := s.requestLogger(w, r)
	req, err := parseRequest(r, true)
	if err != nil {
		fail(w, logger, err)
		return
	}
	gran, err := parseGranularity(r)
	if err != nil {
		fail(w, logger, err)
		return
	}

	frame, _, err := s.loader.Load(req)
	if err != nil {
		fail(w, logger, err)
		return
	}
	cleaned, _ := clean.Clean(frame)
	cleaned = aggregate.Resample(cleaned, gran)

	name := export.Filename(req.Location, req.Category, req.Start, req.End)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if err := export.WriteCSV(w, cleaned); err != nil {
		logger.Error().Err(err).Msg("csv export failed")
		panic(http.ErrAbortHandler)
	}
	logger.Info().Str("filename", name).Int("rows", cleaned.Len()).Msg("csv export served")
}
