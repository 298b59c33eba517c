// Package aggregate resamples a cleaned frame into fixed time buckets and
// summarizes every column. Buckets that contain no rows are omitted, never
// padded, so gaps in the archive stay visible downstream.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

type Granularity string

const (
	Native    Granularity = "native"
	TenMinute Granularity = "10min"
	Hourly    Granularity = "hour"
	Daily     Granularity = "day"
	Weekly    Granularity = "week"
	Monthly   Granularity = "month"
)

var ErrBadGranularity = errors.New("unknown granularity")

// ParseGranularity accepts our names plus the resample-rule aliases the
// first dashboard generation used.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "native", "":
		return Native, nil
	case "10min", "10T":
		return TenMinute, nil
	case "hour", "1H":
		return Hourly, nil
	case "day", "1D":
		return Daily, nil
	case "week", "1W":
		return Weekly, nil
	case "month", "1M":
		return Monthly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadGranularity, s)
}

// numericStats is the summary emitted per numeric column per bucket.
var numericStats = []string{"mean", "max", "min", "std", "count"}

// Resample groups rows by bucket and flattens per-column summaries into
// <col>_<stat> columns. Native granularity returns the frame unchanged.
// Bucket rows are labeled with the bucket start and sorted ascending.
func Resample(f *model.Frame, g Granularity) *model.Frame {
	if g == Native {
		return f
	}

	numeric := make(map[string]bool)
	for _, col := range f.NumericColumns() {
		numeric[col] = true
	}

	type bucket struct {
		start time.Time
		rows  []model.Reading
	}
	buckets := make(map[int64]*bucket)
	for _, r := range f.Rows {
		start := BucketStart(r.Timestamp, g)
		key := start.UnixNano()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{start: start}
			buckets[key] = b
		}
		b.rows = append(b.rows, r)
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := f.WithRows(nil)
	out.Columns = nil
	out.AddColumn(f.TimeColumn)
	for _, col := range f.Columns {
		if col == f.TimeColumn {
			continue
		}
		if numeric[col] {
			for _, stat := range numericStats {
				out.AddColumn(col + "_" + stat)
			}
		} else if columnHasLabels(f, col) {
			out.AddColumn(col + "_first")
		}
	}

	for _, k := range keys {
		b := buckets[k]
		row := model.Reading{
			Timestamp: b.start,
			Values:    make(map[string]float64),
			Labels:    map[string]string{f.TimeColumn: b.start.Format("2006-01-02 15:04:05")},
			FileDate:  b.start,
			Source:    f.Location,
		}

		for _, col := range f.Columns {
			if col == f.TimeColumn {
				continue
			}
			if numeric[col] {
				summarize(&row, col, b.rows)
			} else if first, ok := firstLabel(b.rows, col); ok {
				row.Labels[col+"_first"] = first
			}
		}
		out.Append(row)
	}

	return out
}

func columnHasLabels(f *model.Frame, col string) bool {
	for _, r := range f.Rows {
		if _, ok := r.Labels[col]; ok {
			return true
		}
	}
	return false
}

func firstLabel(rows []model.Reading, col string) (string, bool) {
	for _, r := range rows {
		if s, ok := r.Labels[col]; ok {
			return s, true
		}
	}
	return "", false
}

// summarize fills row with col's bucket statistics. Std needs two values;
// an all-null bucket contributes only count=0.
func summarize(row *model.Reading, col string, rows []model.Reading) {
	var vals []float64
	for _, r := range rows {
		if v, ok := r.Values[col]; ok {
			vals = append(vals, v)
		}
	}

	row.Values[col+"_count"] = float64(len(vals))
	if len(vals) == 0 {
		return
	}

	sum, minV, maxV := vals[0], vals[0], vals[0]
	for _, v := range vals[1:] {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean := sum / float64(len(vals))

	row.Values[col+"_mean"] = mean
	row.Values[col+"_max"] = maxV
	row.Values[col+"_min"] = minV

	if len(vals) >= 2 {
		var ss float64
		for _, v := range vals {
			d := v - mean
			ss += d * d
		}
		row.Values[col+"_std"] = math.Sqrt(ss / float64(len(vals)-1))
	}
}

// BucketStart truncates ts to the start of its bucket. Weeks start Monday,
// months on the 1st.
func BucketStart(ts time.Time, g Granularity) time.Time {
	switch g {
	case TenMinute:
		return ts.Truncate(10 * time.Minute)
	case Hourly:
		return ts.Truncate(time.Hour)
	case Daily:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	case Weekly:
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		shift := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -shift)
	case Monthly:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
	}
	return ts
}
