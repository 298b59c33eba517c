package forecast

import (
	"fmt"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/aggregate"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/stat"
)

var (
	lagSteps       = []int{1, 2, 3, 6, 12, 24}
	rollingWindows = []int{6, 12, 24}
)

// exogColumns lists the canonical weather features offered to the models,
// in feature-vector order.
var exogColumns = []string{"temperature", "humidity", "wind_speed", "pressure", "radiation"}

// FeatureSet is the training matrix: one row per retained observation, in
// chronological order.
type FeatureSet struct {
	Names  []string
	Rows   [][]float64
	Target []float64
	Times  []time.Time
}

// featureNames builds the stable column order: calendar, lags, rollings,
// then whichever exogenous columns the weather series offers.
func featureNames(exog []string) []string {
	names := []string{"timestamp", "hour", "day_of_week", "month", "day_of_year", "is_weekend"}
	for _, k := range lagSteps {
		names = append(names, fmt.Sprintf("lag_%d", k))
	}
	for _, w := range rollingWindows {
		names = append(names, fmt.Sprintf("rolling_mean_%d", w))
		names = append(names, fmt.Sprintf("rolling_std_%d", w))
	}
	names = append(names, exog...)
	return names
}

func calendarFeatures(ts time.Time) []float64 {
	weekend := 0.0
	if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
		weekend = 1
	}
	return []float64{
		float64(ts.Unix()),
		float64(ts.Hour()),
		float64(ts.Weekday()),
		float64(ts.Month()),
		float64(ts.YearDay()),
		weekend,
	}
}

// exogLookup serves hourly-mean weather values keyed by bucket start.
type exogLookup struct {
	cols   []string
	byHour map[int64]map[string]float64
	// lastSeen keeps each column's most recent value for horizon fallback.
	lastSeen map[string]float64
}

// buildExogLookup hourly-resamples the weather frame and notes which of the
// canonical columns actually carry data. A nil or empty frame yields no
// exogenous features at all.
func buildExogLookup(weather *model.Frame) *exogLookup {
	lu := &exogLookup{byHour: make(map[int64]map[string]float64), lastSeen: make(map[string]float64)}
	if weather == nil || weather.Len() == 0 {
		return lu
	}

	hourly := aggregate.Resample(weather, aggregate.Hourly)
	present := make(map[string]bool)
	for _, r := range hourly.Rows {
		cell := make(map[string]float64)
		for _, canon := range exogColumns {
			if v, ok := r.Values["std_"+canon+"_mean"]; ok {
				cell[canon] = v
				present[canon] = true
				lu.lastSeen[canon] = v
			}
		}
		if len(cell) > 0 {
			lu.byHour[r.Timestamp.UnixNano()] = cell
		}
	}

	for _, canon := range exogColumns {
		if present[canon] {
			lu.cols = append(lu.cols, canon)
		}
	}
	return lu
}

// at returns the exogenous vector for a timestamp's hour; absent cells are
// zero-filled.
func (lu *exogLookup) at(ts time.Time) []float64 {
	out := make([]float64, len(lu.cols))
	cell := lu.byHour[aggregate.BucketStart(ts, aggregate.Hourly).UnixNano()]
	for i, canon := range lu.cols {
		if v, ok := cell[canon]; ok {
			out[i] = v
		}
	}
	return out
}

// dayMeans averages each column over one calendar day, falling back to the
// last seen value, then zero. Used to pin exogenous features on the horizon.
func (lu *exogLookup) dayMeans(day time.Time) []float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	dayStart := day.UnixNano()
	dayEnd := day.AddDate(0, 0, 1).UnixNano()
	for key, cell := range lu.byHour {
		if key < dayStart || key >= dayEnd {
			continue
		}
		for canon, v := range cell {
			sums[canon] += v
			counts[canon]++
		}
	}

	out := make([]float64, len(lu.cols))
	for i, canon := range lu.cols {
		switch {
		case counts[canon] > 0:
			out[i] = sums[canon] / float64(counts[canon])
		default:
			out[i] = lu.lastSeen[canon] // zero value when never seen
		}
	}
	return out
}

// buildFeatures assembles the training matrix from a chronological target
// series. Rows whose lags or rolling windows reach before the start of the
// series are dropped; exogenous gaps are zero-filled instead, matching how
// the horizon must be built.
func buildFeatures(times []time.Time, target []float64, exog *exogLookup) *FeatureSet {
	fs := &FeatureSet{Names: featureNames(exog.cols)}

	maxLag := lagSteps[len(lagSteps)-1]
	maxWindow := rollingWindows[len(rollingWindows)-1]
	minIndex := maxLag
	if maxWindow > minIndex {
		minIndex = maxWindow
	}

	for i := minIndex; i < len(target); i++ {
		row := calendarFeatures(times[i])
		for _, k := range lagSteps {
			row = append(row, target[i-k])
		}
		for _, w := range rollingWindows {
			window := target[i-w : i]
			row = append(row, stat.Mean(window), stat.SampleStd(window))
		}
		row = append(row, exog.at(times[i])...)

		fs.Rows = append(fs.Rows, row)
		fs.Target = append(fs.Target, target[i])
		fs.Times = append(fs.Times, times[i])
	}
	return fs
}

// horizonFeatures builds one feature row per horizon timestamp. Lags and
// rolling windows are pinned to the seed series of observed values; they do
// not advance with model output.
func horizonFeatures(grid []time.Time, seed []float64, exogPin []float64, exog *exogLookup) [][]float64 {
	rows := make([][]float64, 0, len(grid))
	for _, ts := range grid {
		row := calendarFeatures(ts)
		for _, k := range lagSteps {
			row = append(row, seedLag(seed, k))
		}
		for _, w := range rollingWindows {
			window := seedWindow(seed, w)
			row = append(row, stat.Mean(window), stat.SampleStd(window))
		}
		row = append(row, exogPin...)
		rows = append(rows, row)
	}
	return rows
}

func seedLag(seed []float64, k int) float64 {
	if len(seed) == 0 {
		return 0
	}
	if k > len(seed) {
		return seed[0]
	}
	return seed[len(seed)-k]
}

func seedWindow(seed []float64, w int) []float64 {
	if len(seed) <= w {
		return seed
	}
	return seed[len(seed)-w:]
}
