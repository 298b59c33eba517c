// Package analysis aligns the electrical and weather series onto a common
// hourly grid and measures how they move together. The two series are
// sampled by unrelated hardware on unrelated clocks; nothing here assumes
// matching row counts or synchronized timestamps.
package analysis

import (
	"errors"
	"fmt"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/aggregate"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/stat"
)

var (
	ErrNoData                  = errors.New("no data to analyze")
	ErrInsufficientMatchedData = errors.New("too few matched hours")
	ErrNoTarget                = errors.New("no usable target column")
)

// minMatchedHours is the smallest joined sample a correlation speaks for.
const minMatchedHours = 3

// preferredEnvColumns lists canonical weather features in the order the
// matrix reports them. At most maxEnvColumns survive.
var preferredEnvColumns = []string{"temperature", "humidity", "wind_speed", "pressure", "radiation"}

const (
	maxEnvColumns     = 5
	maxRegressionCols = 3
	minRegressionRows = 10
)

type Options struct {
	// TargetColumn overrides the keyword heuristic.
	TargetColumn string
}

// Trend is a degree-1 least-squares fit of the target against one feature.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	N         int     `json:"n"`
}

// Multivariate is the optional joint fit over up to three features.
type Multivariate struct {
	EnvColumns []string  `json:"env_columns"`
	Weights    []float64 `json:"weights"` // intercept first
	R2         float64   `json:"r2"`
}

type Result struct {
	TargetColumn string `json:"target_column"`
	MatchedHours int    `json:"matched_hours"`
	// Columns orders the Pearson matrix: target first, then env features
	// by canonical name.
	Columns      []string         `json:"columns"`
	Pearson      [][]float64      `json:"pearson"`
	Trends       map[string]Trend `json:"trends"`
	Multivariate *Multivariate    `json:"multivariate,omitempty"`
}

// joinedRow is one hour present in both series. Env cells stay sparse.
type joinedRow struct {
	target float64
	env    map[string]float64
}

// Correlate resamples both frames to hourly means, inner-joins them on the
// hour, and reports Pearson correlations plus trend fits. Hours present in
// only one series never participate.
func Correlate(mppt, weather *model.Frame, opts Options) (*Result, error) {
	if mppt.Len() == 0 || weather.Len() == 0 {
		return nil, fmt.Errorf("%w: mppt %d rows, weather %d rows", ErrNoData, mppt.Len(), weather.Len())
	}

	target := opts.TargetColumn
	if target == "" {
		var err error
		target, err = PickTargetColumn(mppt)
		if err != nil {
			return nil, err
		}
	}

	hourlyT := aggregate.Resample(mppt, aggregate.Hourly)
	hourlyE := aggregate.Resample(weather, aggregate.Hourly)

	targetCol := target + "_mean"
	envByHour := make(map[int64]model.Reading, hourlyE.Len())
	for _, r := range hourlyE.Rows {
		envByHour[r.Timestamp.UnixNano()] = r
	}

	var joined []joinedRow
	for _, r := range hourlyT.Rows {
		tv, ok := r.Values[targetCol]
		if !ok {
			continue
		}
		er, ok := envByHour[r.Timestamp.UnixNano()]
		if !ok {
			continue
		}
		row := joinedRow{target: tv, env: make(map[string]float64)}
		for _, canon := range preferredEnvColumns {
			if v, ok := er.Values["std_"+canon+"_mean"]; ok {
				row.env[canon] = v
			}
		}
		joined = append(joined, row)
	}

	if len(joined) < minMatchedHours {
		return nil, fmt.Errorf("%w: %d matched, need %d", ErrInsufficientMatchedData, len(joined), minMatchedHours)
	}

	res := &Result{
		TargetColumn: target,
		MatchedHours: len(joined),
		Trends:       make(map[string]Trend),
	}

	envCols := presentEnvColumns(joined)
	res.Columns = append([]string{target}, envCols...)
	res.Pearson = pearsonMatrix(joined, envCols)

	for _, canon := range []string{"temperature", "radiation"} {
		xs, ys := pairedVectors(joined, canon)
		if slope, intercept, ok := stat.LinearFit(xs, ys); ok {
			res.Trends[canon] = Trend{Slope: slope, Intercept: intercept, N: len(xs)}
		}
	}

	res.Multivariate = fitMultivariate(joined, envCols)
	return res, nil
}

func presentEnvColumns(joined []joinedRow) []string {
	var cols []string
	for _, canon := range preferredEnvColumns {
		for _, row := range joined {
			if _, ok := row.env[canon]; ok {
				cols = append(cols, canon)
				break
			}
		}
		if len(cols) == maxEnvColumns {
			break
		}
	}
	return cols
}

// pearsonMatrix computes pairwise-complete correlations: each cell uses
// exactly the joined hours where both of its columns have values.
func pearsonMatrix(joined []joinedRow, envCols []string) [][]float64 {
	cols := len(envCols) + 1
	matrix := make([][]float64, cols)
	for i := range matrix {
		matrix[i] = make([]float64, cols)
		matrix[i][i] = 1
	}

	value := func(row joinedRow, idx int) (float64, bool) {
		if idx == 0 {
			return row.target, true
		}
		v, ok := row.env[envCols[idx-1]]
		return v, ok
	}

	for i := 0; i < cols; i++ {
		for j := i + 1; j < cols; j++ {
			var xs, ys []float64
			for _, row := range joined {
				x, okX := value(row, i)
				y, okY := value(row, j)
				if okX && okY {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			r := stat.Pearson(xs, ys)
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return matrix
}

func pairedVectors(joined []joinedRow, canon string) (xs, ys []float64) {
	for _, row := range joined {
		if v, ok := row.env[canon]; ok {
			xs = append(xs, v)
			ys = append(ys, row.target)
		}
	}
	return xs, ys
}

// fitMultivariate fits target against up to three env features over complete
// cases. Too few rows or a singular system yields nil, not an error.
func fitMultivariate(joined []joinedRow, envCols []string) *Multivariate {
	if len(envCols) == 0 {
		return nil
	}
	if len(envCols) > maxRegressionCols {
		envCols = envCols[:maxRegressionCols]
	}

	var rows [][]float64
	var target []float64
	for _, row := range joined {
		feats := make([]float64, 0, len(envCols))
		complete := true
		for _, canon := range envCols {
			v, ok := row.env[canon]
			if !ok {
				complete = false
				break
			}
			feats = append(feats, v)
		}
		if !complete {
			continue
		}
		rows = append(rows, feats)
		target = append(target, row.target)
	}

	if len(rows) < minRegressionRows {
		return nil
	}

	weights, ok := stat.OLS(rows, target)
	if !ok {
		return nil
	}

	pred := make([]float64, len(rows))
	for i, feats := range rows {
		p := weights[0]
		for j, v := range feats {
			p += weights[j+1] * v
		}
		pred[i] = p
	}

	return &Multivariate{
		EnvColumns: envCols,
		Weights:    weights,
		R2:         stat.R2(pred, target),
	}
}
