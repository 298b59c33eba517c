package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

var t0 = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// mpptSeries builds a cleaned electrical frame with one reading per hour.
func mpptSeries(power []float64) *model.Frame {
	f := model.NewFrame(model.SiteA, model.CategoryMPPT)
	f.AddColumn("eventTime")
	f.AddColumn("pv_power")
	for i, p := range power {
		ts := t0.Add(time.Duration(i) * time.Hour)
		f.Append(model.Reading{
			Timestamp: ts,
			Values:    map[string]float64{"pv_power": p},
			Labels:    map[string]string{"eventTime": ts.Format("2006-01-02 15:04:05")},
		})
	}
	return f
}

// weatherSeries builds a cleaned weather frame with std_ alias columns
// already in place, offset lets tests shift it off the electrical hours.
func weatherSeries(offset time.Duration, cols map[string][]float64) *model.Frame {
	f := model.NewFrame(model.SiteA, model.CategoryWeather)
	f.AddColumn("Date")
	n := 0
	for name, vals := range cols {
		f.AddColumn("std_" + name)
		if len(vals) > n {
			n = len(vals)
		}
	}
	for i := 0; i < n; i++ {
		ts := t0.Add(offset + time.Duration(i)*time.Hour)
		values := make(map[string]float64)
		for name, vals := range cols {
			if i < len(vals) {
				values["std_"+name] = vals[i]
			}
		}
		f.Append(model.Reading{
			Timestamp: ts,
			Values:    values,
			Labels:    map[string]string{"Date": ts.Format("2006-01-02 15:04:05")},
		})
	}
	return f
}

func TestCorrelatePerfectLinearRelation(t *testing.T) {
	temps := []float64{10, 12, 14, 16, 18, 20}
	power := make([]float64, len(temps))
	for i, c := range temps {
		power[i] = 2*c + 1
	}

	res, err := Correlate(mpptSeries(power), weatherSeries(0, map[string][]float64{"temperature": temps}), Options{})
	require.NoError(t, err)

	assert.Equal(t, "pv_power", res.TargetColumn)
	assert.Equal(t, 6, res.MatchedHours)
	require.Equal(t, []string{"pv_power", "temperature"}, res.Columns)
	assert.InDelta(t, 1, res.Pearson[0][1], 1e-9)
	assert.InDelta(t, 1, res.Pearson[1][0], 1e-9)

	trend, ok := res.Trends["temperature"]
	require.True(t, ok)
	assert.InDelta(t, 2, trend.Slope, 1e-9)
	assert.InDelta(t, 1, trend.Intercept, 1e-9)
	assert.Equal(t, 6, trend.N)

	// No radiation column on this mast, so no radiation trend.
	_, ok = res.Trends["radiation"]
	assert.False(t, ok)
}

func TestCorrelateInnerJoinDropsUnmatchedHours(t *testing.T) {
	// Electrical: hours 0..5; weather: hours 2..9. Overlap: 2..5.
	power := []float64{1, 2, 3, 4, 5, 6}
	temps := []float64{20, 21, 22, 23, 24, 25, 26, 27}

	res, err := Correlate(mpptSeries(power), weatherSeries(2*time.Hour, map[string][]float64{"temperature": temps}), Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.MatchedHours)
}

func TestCorrelateRefusesTwoMatchedHours(t *testing.T) {
	power := []float64{1, 2}
	temps := []float64{20, 21}

	_, err := Correlate(mpptSeries(power), weatherSeries(0, map[string][]float64{"temperature": temps}), Options{})
	assert.ErrorIs(t, err, ErrInsufficientMatchedData)
}

func TestCorrelateNoData(t *testing.T) {
	empty := model.NewFrame(model.SiteA, model.CategoryWeather)
	_, err := Correlate(mpptSeries([]float64{1, 2, 3}), empty, Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCorrelateMultivariate(t *testing.T) {
	n := 12
	temps := make([]float64, n)
	hums := make([]float64, n)
	power := make([]float64, n)
	for i := 0; i < n; i++ {
		temps[i] = 10 + float64(i)
		hums[i] = 80 - 3*float64(i%5)
		power[i] = 3 + 2*temps[i] - hums[i]
	}

	res, err := Correlate(mpptSeries(power), weatherSeries(0, map[string][]float64{
		"temperature": temps,
		"humidity":    hums,
	}), Options{})
	require.NoError(t, err)

	mv := res.Multivariate
	require.NotNil(t, mv)
	assert.Equal(t, []string{"temperature", "humidity"}, mv.EnvColumns)
	require.Len(t, mv.Weights, 3)
	assert.InDelta(t, 3, mv.Weights[0], 1e-6)
	assert.InDelta(t, 2, mv.Weights[1], 1e-6)
	assert.InDelta(t, -1, mv.Weights[2], 1e-6)
	assert.InDelta(t, 1, mv.R2, 1e-9)
}

func TestCorrelateMultivariateNeedsTenRows(t *testing.T) {
	temps := []float64{10, 11, 12, 13, 14}
	power := []float64{21, 23, 25, 27, 29}

	res, err := Correlate(mpptSeries(power), weatherSeries(0, map[string][]float64{"temperature": temps}), Options{})
	require.NoError(t, err)
	assert.Nil(t, res.Multivariate)
}

func TestCorrelateTargetOverride(t *testing.T) {
	f := mpptSeries([]float64{1, 2, 3, 4})
	f.AddColumn("dc_voltage")
	for i := range f.Rows {
		f.Rows[i].Values["dc_voltage"] = 300 + float64(i)
	}

	res, err := Correlate(f, weatherSeries(0, map[string][]float64{"temperature": {20, 21, 22, 23}}), Options{TargetColumn: "dc_voltage"})
	require.NoError(t, err)
	assert.Equal(t, "dc_voltage", res.TargetColumn)
}

func TestPickTargetColumn(t *testing.T) {
	f := model.NewFrame(model.SiteA, model.CategoryMPPT)
	f.AddColumn("eventTime")
	f.AddColumn("dc_voltage")
	f.AddColumn("直流功率")
	f.Append(model.Reading{
		Values: map[string]float64{"dc_voltage": 300, "直流功率": 1500},
		Labels: map[string]string{"eventTime": "2024-06-01 10:00:00"},
	})

	col, err := PickTargetColumn(f)
	require.NoError(t, err)
	assert.Equal(t, "直流功率", col)
}

func TestPickTargetColumnBroadTierNeedsSpread(t *testing.T) {
	f := model.NewFrame(model.SiteA, model.CategoryMPPT)
	f.AddColumn("pv_flag")
	f.AddColumn("current")
	for i := 0; i < 4; i++ {
		f.Append(model.Reading{Values: map[string]float64{
			"pv_flag": 1, // constant, must lose despite the pv keyword
			"current": float64(i * i),
		}})
	}

	col, err := PickTargetColumn(f)
	require.NoError(t, err)
	assert.Equal(t, "current", col)
}

func TestPickTargetColumnMaxVarianceFallback(t *testing.T) {
	f := model.NewFrame(model.SiteA, model.CategoryMPPT)
	f.AddColumn("a")
	f.AddColumn("b")
	for i := 0; i < 4; i++ {
		f.Append(model.Reading{Values: map[string]float64{
			"a": float64(i),
			"b": float64(i * 100),
		}})
	}

	col, err := PickTargetColumn(f)
	require.NoError(t, err)
	assert.Equal(t, "b", col)
}

func TestPickTargetColumnNoNumeric(t *testing.T) {
	f := model.NewFrame(model.SiteA, model.CategoryMPPT)
	f.AddColumn("status")
	f.Append(model.Reading{Labels: map[string]string{"status": "ok"}})

	_, err := PickTargetColumn(f)
	assert.ErrorIs(t, err, ErrNoTarget)
}
