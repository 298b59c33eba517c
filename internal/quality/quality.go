// Package quality reports how complete a loaded date range actually is:
// which day files were found, which are missing, and how densely populated
// the loaded columns are. Missing data is descriptive metadata here, never
// an error.
package quality

import (
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// CategoryReport covers one (location, category) load.
type CategoryReport struct {
	Category    model.Category `json:"category"`
	FilesLoaded int            `json:"files_loaded"`
	// MissingDays lists requested days with no file, in date order.
	MissingDays []time.Time `json:"missing_days"`
	// Warnings records files that existed but could not be parsed. Those
	// days count as missing.
	Warnings []string `json:"warnings,omitempty"`
	// DirectoryMissing is set when the category root itself was absent,
	// so "no sensor installed" can be told apart from "sensor data lost".
	DirectoryMissing bool `json:"directory_missing,omitempty"`
}

// Report rolls both categories of one location up over a requested range.
type Report struct {
	Location model.LocationID `json:"location"`
	Days     int              `json:"days"`
	MPPT     CategoryReport   `json:"mppt"`
	Weather  CategoryReport   `json:"weather"`
}

// Completeness is the share of expected day files that loaded, in percent.
// Both categories are expected for every requested day, so the denominator
// is twice the day count. Always within [0, 100].
func (r Report) Completeness() float64 {
	if r.Days <= 0 {
		return 0
	}
	pct := 100 * float64(r.MPPT.FilesLoaded+r.Weather.FilesLoaded) / float64(2*r.Days)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ColumnCompleteness returns, per column, the share of rows holding a value
// (numeric or label) in [0, 1]. An empty frame yields an empty map.
func ColumnCompleteness(f *model.Frame) map[string]float64 {
	out := make(map[string]float64, len(f.Columns))
	if f.Len() == 0 {
		return out
	}
	for _, col := range f.Columns {
		filled := 0
		for _, row := range f.Rows {
			if _, ok := row.Values[col]; ok {
				filled++
				continue
			}
			if _, ok := row.Labels[col]; ok {
				filled++
			}
		}
		out[col] = float64(filled) / float64(f.Len())
	}
	return out
}

// OutlierCounts tallies flagged cells per column.
func OutlierCounts(f *model.Frame) map[string]int {
	out := make(map[string]int)
	for _, row := range f.Rows {
		for col, flagged := range row.Outliers {
			if flagged {
				out[col]++
			}
		}
	}
	return out
}
