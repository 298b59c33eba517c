// Package clean normalizes a freshly loaded frame: exact duplicates go,
// timestamps get parsed, and suspicious values get flagged. Flagging never
// removes data; the quantile fences only mark cells so downstream consumers
// and the dashboard can see what the station probably mismeasured.
package clean

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// minSamplesForFlagging is the smallest column population worth fencing.
// Quantiles over a handful of points flag almost everything.
const minSamplesForFlagging = 6

// Stats summarizes what one cleaning pass changed.
type Stats struct {
	DuplicatesRemoved int
	RowsDroppedNoTime int
	OutliersFlagged   map[string]int
}

// Clean returns a normalized copy of the frame: duplicates removed, the
// time column parsed into Reading.Timestamp (rows that resist parsing are
// dropped), per-column outliers flagged, and rows sorted by time. Weather
// frames additionally gain std_-prefixed alias columns mapping the station's
// raw labels to canonical names.
func Clean(f *model.Frame) (*model.Frame, Stats) {
	stats := Stats{OutliersFlagged: make(map[string]int)}

	rows := dedupe(f, &stats)
	rows = coerceTimestamps(f.TimeColumn, rows, &stats)

	out := f.WithRows(rows)
	flagOutliers(out, &stats)

	if out.Category == model.CategoryWeather {
		aliasWeatherColumns(out)
	}

	out.SortByTime()
	return out, stats
}

func dedupe(f *model.Frame, stats *Stats) []model.Reading {
	seen := make(map[string]bool, len(f.Rows))
	rows := make([]model.Reading, 0, len(f.Rows))
	for _, r := range f.Rows {
		key := rowKey(r, f.Columns)
		if seen[key] {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		rows = append(rows, r)
	}
	return rows
}

// rowKey serializes a row's cells in column order. Two rows with identical
// cells collide regardless of map iteration order.
func rowKey(r model.Reading, columns []string) string {
	var b strings.Builder
	for _, col := range columns {
		b.WriteString(col)
		b.WriteByte('=')
		if v, ok := r.Values[col]; ok {
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		} else if s, ok := r.Labels[col]; ok {
			b.WriteString(s)
		}
		b.WriteByte(';')
	}
	return b.String()
}

func coerceTimestamps(timeCol string, rows []model.Reading, stats *Stats) []model.Reading {
	kept := rows[:0]
	for _, r := range rows {
		ts, ok := rowTimestamp(timeCol, r)
		if !ok {
			stats.RowsDroppedNoTime++
			continue
		}
		r.Timestamp = ts
		kept = append(kept, r)
	}
	return kept
}

func rowTimestamp(timeCol string, r model.Reading) (time.Time, bool) {
	if raw, ok := r.Labels[timeCol]; ok {
		if ts, err := ParseTimestamp(raw); err == nil {
			return ts, true
		}
		return time.Time{}, false
	}
	// Spreadsheet date cells can surface as serial numbers.
	if v, ok := r.Values[timeCol]; ok {
		if ts, err := parseExcelSerial(v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// timestampLayouts covers the formats seen across both stations' exports.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp tries each known layout in order.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// excelEpoch is day zero of the 1900 date system.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func parseExcelSerial(v float64) (time.Time, error) {
	// Plausible serials for this archive land between 1954 and 2118.
	if v < 20000 || v > 80000 {
		return time.Time{}, strconv.ErrRange
	}
	days, frac := math.Modf(v)
	ts := excelEpoch.AddDate(0, 0, int(days))
	return ts.Add(time.Duration(math.Round(frac*86400)) * time.Second), nil
}

// quantileParams returns the fence configuration per category. Electrical
// telemetry swings hard intraday, so it gets a tight quantile window with a
// wide multiplier; weather gets the opposite.
func quantileParams(cat model.Category) (qLow, qHigh, k float64) {
	if cat == model.CategoryMPPT {
		return 0.15, 0.85, 2.0
	}
	return 0.05, 0.95, 3.0
}

func flagOutliers(f *model.Frame, stats *Stats) {
	qLow, qHigh, k := quantileParams(f.Category)

	for _, col := range f.NumericColumns() {
		vals := f.ColumnValues(col)
		if len(vals) < minSamplesForFlagging {
			continue
		}

		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)

		lo := quantile(sorted, qLow)
		hi := quantile(sorted, qHigh)
		iqr := hi - lo
		if iqr == 0 {
			continue
		}

		lower := lo - k*iqr
		upper := hi + k*iqr
		for i := range f.Rows {
			v, ok := f.Rows[i].Values[col]
			if !ok {
				continue
			}
			if v < lower || v > upper {
				f.Rows[i].SetOutlier(col)
				stats.OutliersFlagged[col]++
			}
		}
	}
}

// quantile interpolates linearly between order statistics; sorted must be
// ascending and non-empty.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// aliasWeatherColumns copies each mapped raw column into std_<canonical> so
// downstream analysis addresses features by stable names.
func aliasWeatherColumns(f *model.Frame) {
	site, ok := model.SiteCatalog[f.Location]
	if !ok {
		return
	}

	present := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		present[c] = true
	}

	for canonical, raw := range site.WeatherColumns {
		if !present[raw] {
			continue
		}
		alias := "std_" + canonical
		f.AddColumn(alias)
		for i := range f.Rows {
			if v, ok := f.Rows[i].Values[raw]; ok {
				f.Rows[i].Values[alias] = v
			}
			if f.Rows[i].Outliers[raw] {
				f.Rows[i].SetOutlier(alias)
			}
		}
	}
}
