package model

import "time"

// Reading is one row of a day file after parsing. Numeric cells land in
// Values, everything else (including the raw timestamp text) in Labels.
// Timestamp stays zero until the cleaner coerces the raw text; FileDate is
// the day the source file represents and is set even when parsing fails.
type Reading struct {
	Timestamp time.Time
	Values    map[string]float64
	Labels    map[string]string
	// Outliers marks per-column quantile violations. Flagged values are
	// kept in Values untouched.
	Outliers map[string]bool
	FileDate time.Time
	Source   LocationID
}

// Value returns the numeric cell for col and whether it is present.
func (r Reading) Value(col string) (float64, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// SetOutlier marks col as an outlier, allocating the map lazily.
func (r *Reading) SetOutlier(col string) {
	if r.Outliers == nil {
		r.Outliers = make(map[string]bool, 1)
	}
	r.Outliers[col] = true
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Days enumerates calendar days from Start to End inclusive, normalized to
// midnight. Returns nil when Start is after End.
func (tr TimeRange) Days() []time.Time {
	start := time.Date(tr.Start.Year(), tr.Start.Month(), tr.Start.Day(), 0, 0, 0, 0, tr.Start.Location())
	end := time.Date(tr.End.Year(), tr.End.Month(), tr.End.Day(), 0, 0, 0, 0, tr.End.Location())
	if start.After(end) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
