package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteCatalog(t *testing.T) {
	a, ok := SiteCatalog[SiteA]
	require.True(t, ok)
	assert.Equal(t, "十五舍", a.DataDir)
	assert.Equal(t, "超声波风速(m/s)", a.WeatherColumns["wind_speed"])

	b, ok := SiteCatalog[SiteB]
	require.True(t, ok)
	assert.Equal(t, "TBQ总辐射(W/m2)", b.WeatherColumns["radiation"])
	// Site A's mast has no radiometer.
	_, ok = a.WeatherColumns["radiation"]
	assert.False(t, ok)
}

func TestRawToCanonical(t *testing.T) {
	assert.Equal(t, "temperature", RawToCanonical[SiteA]["大气温度(℃)"])
	assert.Equal(t, "pm25", RawToCanonical[SiteB]["PM2.5(ug/m3)"])
}

func TestTimeColumn(t *testing.T) {
	assert.Equal(t, "eventTime", TimeColumn(CategoryMPPT))
	assert.Equal(t, "Date", TimeColumn(CategoryWeather))
}

func TestTimeRangeDays(t *testing.T) {
	tr := TimeRange{
		Start: time.Date(2024, 5, 30, 15, 4, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC),
	}
	days := tr.Days()
	require.Len(t, days, 4)
	assert.Equal(t, time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), days[0])
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), days[3])
}

func TestTimeRangeDaysInverted(t *testing.T) {
	tr := TimeRange{
		Start: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Nil(t, tr.Days())
}

func TestFrameColumns(t *testing.T) {
	f := NewFrame(SiteA, CategoryMPPT)
	f.AddColumn("eventTime")
	f.AddColumn("pv_power")
	f.AddColumn("pv_power") // duplicate registration is a no-op
	f.AddColumn("voltage")

	assert.Equal(t, []string{"eventTime", "pv_power", "voltage"}, f.Columns)
}

func TestFrameNumericColumns(t *testing.T) {
	f := NewFrame(SiteA, CategoryMPPT)
	f.AddColumn("eventTime")
	f.AddColumn("pv_power")
	f.AddColumn("status")
	f.Append(Reading{
		Values: map[string]float64{"pv_power": 120.5},
		Labels: map[string]string{"status": "ok", "eventTime": "2024-06-01 10:00:00"},
	})

	assert.Equal(t, []string{"pv_power"}, f.NumericColumns())
}

func TestFrameColumnValuesSkipsMissing(t *testing.T) {
	f := NewFrame(SiteB, CategoryWeather)
	f.AddColumn("Date")
	f.AddColumn("temperature")
	f.Append(Reading{Values: map[string]float64{"temperature": 21.0}})
	f.Append(Reading{Values: map[string]float64{}})
	f.Append(Reading{Values: map[string]float64{"temperature": 23.5}})

	assert.Equal(t, []float64{21.0, 23.5}, f.ColumnValues("temperature"))
}

func TestFrameRowsInRange(t *testing.T) {
	f := NewFrame(SiteA, CategoryMPPT)
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		f.Append(Reading{Timestamp: base.Add(time.Duration(i) * time.Hour)})
	}

	rows := f.RowsInRange(base.Add(1*time.Hour), base.Add(4*time.Hour))
	require.Len(t, rows, 3)
	assert.Equal(t, base.Add(1*time.Hour), rows[0].Timestamp)
	assert.Equal(t, base.Add(3*time.Hour), rows[2].Timestamp)

	assert.Nil(t, f.RowsInRange(base.Add(10*time.Hour), base.Add(12*time.Hour)))
}

func TestFrameTimeBounds(t *testing.T) {
	f := NewFrame(SiteA, CategoryMPPT)
	_, ok := f.TimeBounds()
	assert.False(t, ok)

	t0 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	t1 := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	f.Append(Reading{Timestamp: t0})
	f.Append(Reading{Timestamp: t1})

	tr, ok := f.TimeBounds()
	require.True(t, ok)
	assert.Equal(t, t0, tr.Start)
	assert.Equal(t, t1, tr.End)
}
