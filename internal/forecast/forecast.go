// Package forecast trains competing models on the electrical history and
// projects the remaining afternoon of the last observed day. Every run is
// self-contained: features, scaling, and residual spread all derive from the
// frames passed in, nothing is remembered between calls.
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/analysis"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/stat"
)

const (
	// minTrainingRows bounds both the raw history and the post-feature
	// matrix. Below this the run refuses rather than extrapolate noise.
	minTrainingRows = 20

	horizonStartHour = 13
	horizonEndHour   = 17
	horizonStep      = 30 * time.Minute

	// matchTolerance bounds horizon-to-actual alignment when scoring
	// realized accuracy.
	matchTolerance = 30 * time.Minute
)

// bandLevels are the confidence bands reported around the best model's
// horizon, tightest first.
var bandLevels = []struct {
	Level string
	Z     float64
}{
	{"68", 1.0},
	{"95", 1.96},
	{"99", 2.58},
}

type Options struct {
	// TargetColumn overrides the keyword heuristic.
	TargetColumn string
	// Seed drives the boosted ensemble's row/column sampling.
	Seed uint64
}

// ModelResult is one candidate's scores and predictions.
type ModelResult struct {
	Name            string    `json:"name"`
	MAE             float64   `json:"mae"`
	MSE             float64   `json:"mse"`
	R2              float64   `json:"r2"`
	TestPredictions []float64 `json:"test_predictions"`
	Horizon         []float64 `json:"horizon"`
}

// Band is one confidence interval around the best model's horizon. Lower is
// clamped at zero: the array cannot produce negative power.
type Band struct {
	Level string    `json:"level"`
	Z     float64   `json:"z"`
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// RealizedScore compares a model's horizon against afternoon measurements
// that arrived after the forecast cutoff.
type RealizedScore struct {
	Model   string  `json:"model"`
	Matched int     `json:"matched"`
	MAE     float64 `json:"mae"`
	R2      float64 `json:"r2"`
}

type Result struct {
	TargetColumn string          `json:"target_column"`
	FeatureNames []string        `json:"feature_names"`
	TrainRows    int             `json:"train_rows"`
	TestRows     int             `json:"test_rows"`
	Models       []ModelResult   `json:"models"`
	Best         int             `json:"best"`
	HorizonTimes []time.Time     `json:"horizon_times"`
	Bands        []Band          `json:"bands"`
	ResidualStd  float64         `json:"residual_std"`
	Realized     []RealizedScore `json:"realized,omitempty"`
}

// BestModel returns the winning candidate's result.
func (r *Result) BestModel() ModelResult {
	return r.Models[r.Best]
}

type observation struct {
	ts    time.Time
	value float64
}

// Run trains every available candidate on history before 13:00 of the last
// observed day and predicts the afternoon at 30-minute steps. Afternoon
// rows already in the frame never reach training; they only score the
// realized accuracy afterwards.
func Run(mppt, weather *model.Frame, opts Options) (*Result, error) {
	target := opts.TargetColumn
	if target == "" {
		var err error
		target, err = analysis.PickTargetColumn(mppt)
		if err != nil {
			return nil, err
		}
	}

	series := targetSeries(mppt, target)
	if len(series) == 0 {
		return nil, &InsufficientDataError{Stage: "history", Need: minTrainingRows, Have: 0}
	}

	lastTS := series[len(series)-1].ts
	lastDay := time.Date(lastTS.Year(), lastTS.Month(), lastTS.Day(), 0, 0, 0, 0, lastTS.Location())
	cutoff := lastDay.Add(horizonStartHour * time.Hour)

	var history, afternoon []observation
	for _, obs := range series {
		if obs.ts.Before(cutoff) {
			history = append(history, obs)
		} else {
			afternoon = append(afternoon, obs)
		}
	}
	if len(history) < minTrainingRows {
		return nil, &InsufficientDataError{Stage: "history", Need: minTrainingRows, Have: len(history)}
	}

	times := make([]time.Time, len(history))
	values := make([]float64, len(history))
	for i, obs := range history {
		times[i] = obs.ts
		values[i] = obs.value
	}

	exog := buildExogLookup(weather)
	fs := buildFeatures(times, values, exog)
	if len(fs.Rows) < minTrainingRows {
		return nil, &InsufficientDataError{Stage: "features", Need: minTrainingRows, Have: len(fs.Rows)}
	}

	split := len(fs.Rows) * 4 / 5
	trainX, testX := fs.Rows[:split], fs.Rows[split:]
	trainY, testY := fs.Target[:split], fs.Target[split:]

	scaler := FitScaler(trainX)
	trainXs := scaler.Transform(trainX)
	testXs := scaler.Transform(testX)

	res := &Result{
		TargetColumn: target,
		FeatureNames: fs.Names,
		TrainRows:    len(trainX),
		TestRows:     len(testX),
	}

	var fitted []Model
	for _, m := range candidates(opts.Seed) {
		if err := m.Fit(trainXs, trainY); err != nil {
			log.Warn().Str("model", m.Name()).Err(err).Msg("candidate failed to fit, dropping it")
			continue
		}

		preds := predictAll(m, testXs)
		res.Models = append(res.Models, ModelResult{
			Name:            m.Name(),
			MAE:             stat.MAE(preds, testY),
			MSE:             stat.MSE(preds, testY),
			R2:              stat.R2(preds, testY),
			TestPredictions: preds,
		})
		fitted = append(fitted, m)
	}
	if len(fitted) == 0 {
		return nil, ErrAllModelsFailed
	}

	res.Best = pickBest(res.Models)

	trainPreds := predictAll(fitted[res.Best], trainXs)
	residuals := make([]float64, len(trainPreds))
	for i := range trainPreds {
		residuals[i] = trainY[i] - trainPreds[i]
	}
	res.ResidualStd = stat.PopStd(residuals)

	res.HorizonTimes = horizonGrid(lastDay)
	seed := seedSeries(history, lastDay, cutoff)
	horizonRows := scaler.Transform(horizonFeatures(res.HorizonTimes, seed, exog.dayMeans(lastDay), exog))
	for i, m := range fitted {
		res.Models[i].Horizon = predictAll(m, horizonRows)
	}

	res.Bands = buildBands(res.Models[res.Best].Horizon, res.ResidualStd)
	res.Realized = scoreRealized(res, afternoon)

	return res, nil
}

// targetSeries extracts (timestamp, target) pairs in chronological order.
func targetSeries(f *model.Frame, target string) []observation {
	var series []observation
	for _, r := range f.Rows {
		if r.Timestamp.IsZero() {
			continue
		}
		if v, ok := r.Values[target]; ok {
			series = append(series, observation{ts: r.Timestamp, value: v})
		}
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].ts.Before(series[j].ts) })
	return series
}

// seedSeries picks the values that pin horizon lags: the last day's morning
// when it exists, otherwise the tail of the history.
func seedSeries(history []observation, lastDay, cutoff time.Time) []float64 {
	var morning []float64
	for _, obs := range history {
		if !obs.ts.Before(lastDay) && obs.ts.Before(cutoff) {
			morning = append(morning, obs.value)
		}
	}
	if len(morning) > 0 {
		return morning
	}

	tail := history
	if len(tail) > 24 {
		tail = tail[len(tail)-24:]
	}
	values := make([]float64, len(tail))
	for i, obs := range tail {
		values[i] = obs.value
	}
	return values
}

func horizonGrid(lastDay time.Time) []time.Time {
	var grid []time.Time
	end := lastDay.Add(horizonEndHour * time.Hour)
	for ts := lastDay.Add(horizonStartHour * time.Hour); !ts.After(end); ts = ts.Add(horizonStep) {
		grid = append(grid, ts)
	}
	return grid
}

func predictAll(m Model, rows [][]float64) []float64 {
	preds := make([]float64, len(rows))
	for i, row := range rows {
		preds[i] = m.Predict(row)
	}
	return preds
}

// pickBest prefers the highest R2 and breaks ties with the lower MAE.
func pickBest(models []ModelResult) int {
	best := 0
	for i := 1; i < len(models); i++ {
		if models[i].R2 > models[best].R2 {
			best = i
		} else if models[i].R2 == models[best].R2 && models[i].MAE < models[best].MAE {
			best = i
		}
	}
	return best
}

func buildBands(horizon []float64, residualStd float64) []Band {
	bands := make([]Band, 0, len(bandLevels))
	for _, lvl := range bandLevels {
		band := Band{
			Level: lvl.Level,
			Z:     lvl.Z,
			Lower: make([]float64, len(horizon)),
			Upper: make([]float64, len(horizon)),
		}
		for i, h := range horizon {
			band.Lower[i] = math.Max(0, h-lvl.Z*residualStd)
			band.Upper[i] = h + lvl.Z*residualStd
		}
		bands = append(bands, band)
	}
	return bands
}

// scoreRealized aligns afternoon measurements to the nearest horizon point
// within the tolerance and scores each model against them.
func scoreRealized(res *Result, afternoon []observation) []RealizedScore {
	if len(afternoon) == 0 {
		return nil
	}

	type pair struct {
		grid   int
		actual float64
	}
	var pairs []pair
	for _, obs := range afternoon {
		best, bestDiff := -1, matchTolerance+1
		for i, ts := range res.HorizonTimes {
			diff := obs.ts.Sub(ts)
			if diff < 0 {
				diff = -diff
			}
			if diff <= matchTolerance && diff < bestDiff {
				best, bestDiff = i, diff
			}
		}
		if best >= 0 {
			pairs = append(pairs, pair{grid: best, actual: obs.value})
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	scores := make([]RealizedScore, 0, len(res.Models))
	for _, m := range res.Models {
		preds := make([]float64, len(pairs))
		actuals := make([]float64, len(pairs))
		for i, p := range pairs {
			preds[i] = m.Horizon[p.grid]
			actuals[i] = p.actual
		}
		scores = append(scores, RealizedScore{
			Model:   m.Name,
			Matched: len(pairs),
			MAE:     stat.MAE(preds, actuals),
			R2:      stat.R2(preds, actuals),
		})
	}
	return scores
}
