package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

func frameWith(rows ...model.Reading) *model.Frame {
	f := model.NewFrame(model.SiteA, model.CategoryMPPT)
	f.AddColumn("eventTime")
	f.AddColumn("pv_power")
	f.AddColumn("mode")
	for _, r := range rows {
		f.Append(r)
	}
	return f
}

func row(ts time.Time, power float64) model.Reading {
	return model.Reading{
		Timestamp: ts,
		Values:    map[string]float64{"pv_power": power},
		Labels:    map[string]string{"eventTime": ts.Format("2006-01-02 15:04:05")},
	}
}

func TestResampleHourlyStats(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	f := frameWith(
		row(base.Add(5*time.Minute), 10),
		row(base.Add(20*time.Minute), 20),
		row(base.Add(40*time.Minute), 30),
	)

	out := Resample(f, Hourly)
	require.Equal(t, 1, out.Len())

	got := out.Rows[0]
	assert.Equal(t, base, got.Timestamp)
	assert.InDelta(t, 20, got.Values["pv_power_mean"], 1e-9)
	assert.InDelta(t, 30, got.Values["pv_power_max"], 1e-9)
	assert.InDelta(t, 10, got.Values["pv_power_min"], 1e-9)
	assert.InDelta(t, 3, got.Values["pv_power_count"], 1e-9)
	// Sample std of {10,20,30}.
	assert.InDelta(t, 10, got.Values["pv_power_std"], 1e-9)
}

func TestResampleOmitsEmptyBuckets(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	f := frameWith(
		row(base, 1),
		row(base.Add(3*time.Hour), 2), // two silent hours in between
	)

	out := Resample(f, Hourly)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, base, out.Rows[0].Timestamp)
	assert.Equal(t, base.Add(3*time.Hour), out.Rows[1].Timestamp)
}

func TestResampleStdNeedsTwoValues(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	f := frameWith(row(base, 5))

	out := Resample(f, Hourly)
	require.Equal(t, 1, out.Len())
	_, ok := out.Rows[0].Values["pv_power_std"]
	assert.False(t, ok)
	assert.InDelta(t, 1, out.Rows[0].Values["pv_power_count"], 1e-9)
}

func TestResampleCountSkipsNulls(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	f := frameWith(
		row(base, 7),
		model.Reading{
			Timestamp: base.Add(time.Minute),
			Values:    map[string]float64{},
			Labels:    map[string]string{"eventTime": "2024-06-01 10:01:00"},
		},
	)

	out := Resample(f, Hourly)
	require.Equal(t, 1, out.Len())
	assert.InDelta(t, 1, out.Rows[0].Values["pv_power_count"], 1e-9)
	assert.InDelta(t, 7, out.Rows[0].Values["pv_power_mean"], 1e-9)
}

func TestResampleNonNumericTakesFirst(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	r1 := row(base, 1)
	r1.Labels["mode"] = "tracking"
	r2 := row(base.Add(time.Minute), 2)
	r2.Labels["mode"] = "idle"
	f := frameWith(r1, r2)

	out := Resample(f, Hourly)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "tracking", out.Rows[0].Labels["mode_first"])
	assert.Contains(t, out.Columns, "mode_first")
}

func TestResampleNativeIsIdentity(t *testing.T) {
	f := frameWith(row(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), 1))
	assert.Same(t, f, Resample(f, Native))
}

func TestBucketStart(t *testing.T) {
	// A Saturday afternoon.
	ts := time.Date(2024, 6, 1, 13, 47, 21, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 6, 1, 13, 40, 0, 0, time.UTC), BucketStart(ts, TenMinute))
	assert.Equal(t, time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC), BucketStart(ts, Hourly))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), BucketStart(ts, Daily))
	// Week buckets start on Monday.
	assert.Equal(t, time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC), BucketStart(ts, Weekly))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), BucketStart(ts, Monthly))
}

func TestParseGranularity(t *testing.T) {
	for input, want := range map[string]Granularity{
		"":      Native,
		"10min": TenMinute,
		"10T":   TenMinute,
		"hour":  Hourly,
		"1H":    Hourly,
		"day":   Daily,
		"week":  Weekly,
		"1M":    Monthly,
	} {
		got, err := ParseGranularity(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseGranularity("fortnight")
	assert.ErrorIs(t, err, ErrBadGranularity)
}
