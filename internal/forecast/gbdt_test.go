package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearFitPredict(t *testing.T) {
	var rows [][]float64
	var target []float64
	for x := 0.0; x < 10; x++ {
		rows = append(rows, []float64{x})
		target = append(target, 2*x+1)
	}

	m := NewLinear()
	require.NoError(t, m.Fit(rows, target))
	assert.InDelta(t, 2*12+1, m.Predict([]float64{12}), 1e-6)
}

func TestLinearFitDuplicateColumns(t *testing.T) {
	// Identical columns are exactly collinear; the ridge term still yields a
	// usable fit.
	rows := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	target := []float64{2, 4, 6, 8}

	m := NewLinear()
	require.NoError(t, m.Fit(rows, target))
	assert.InDelta(t, 10, m.Predict([]float64{5, 5}), 1e-3)
}

func TestLinearFitNoRows(t *testing.T) {
	m := NewLinear()
	assert.Error(t, m.Fit(nil, nil))
}

func TestBoostedTreesLearnsStep(t *testing.T) {
	var rows [][]float64
	var target []float64
	for i := 0; i < 40; i++ {
		x := float64(i) - 20
		rows = append(rows, []float64{x})
		if x > 0 {
			target = append(target, 10)
		} else {
			target = append(target, 0)
		}
	}

	m := NewBoostedTrees(DefaultGBTConfig(42))
	require.NoError(t, m.Fit(rows, target))

	assert.InDelta(t, 10, m.Predict([]float64{15}), 1.0)
	assert.InDelta(t, 0, m.Predict([]float64{-15}), 1.0)
}

func TestBoostedTreesSurvivesConstantFeatures(t *testing.T) {
	// No split gain anywhere: every tree degenerates to a leaf and the
	// ensemble still predicts the target mean.
	rows := make([][]float64, 10)
	target := make([]float64, 10)
	for i := range rows {
		rows[i] = []float64{1, 1}
		target[i] = 4
	}

	m := NewBoostedTrees(DefaultGBTConfig(1))
	require.NoError(t, m.Fit(rows, target))
	assert.InDelta(t, 4, m.Predict([]float64{1, 1}), 1e-6)
}

func TestBoostedTreesTooFewRows(t *testing.T) {
	m := NewBoostedTrees(DefaultGBTConfig(1))
	err := m.Fit([][]float64{{1}}, []float64{1})
	assert.Error(t, err)
}

func TestBoostedTreesDeterministicForSeed(t *testing.T) {
	var rows [][]float64
	var target []float64
	for i := 0; i < 30; i++ {
		x := float64(i)
		rows = append(rows, []float64{x, math.Sin(x)})
		target = append(target, 3*x+5*math.Sin(x))
	}

	a := NewBoostedTrees(DefaultGBTConfig(7))
	require.NoError(t, a.Fit(rows, target))
	b := NewBoostedTrees(DefaultGBTConfig(7))
	require.NoError(t, b.Fit(rows, target))

	probe := []float64{12.5, math.Sin(12.5)}
	assert.Equal(t, a.Predict(probe), b.Predict(probe))
}

func TestScalerStandardizes(t *testing.T) {
	rows := [][]float64{{1, 100}, {2, 100}, {3, 100}}
	s := FitScaler(rows)

	out := s.Transform(rows)
	assert.InDelta(t, -1.2247, out[0][0], 1e-3)
	assert.InDelta(t, 0, out[1][0], 1e-9)
	// Constant column: std guards to 1, values center to zero.
	assert.InDelta(t, 0, out[0][1], 1e-9)
	assert.InDelta(t, 0, out[2][1], 1e-9)
}
