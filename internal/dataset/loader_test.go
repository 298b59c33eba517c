package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/config"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func writeDayCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadThreeDaysWithGap(t *testing.T) {
	root := t.TempDir()
	mpptDir := filepath.Join(root, "十五舍", "filtered")
	writeDayCSV(t, mpptDir, "2024-06-01.csv",
		"eventTime,pv_power\n2024-06-01 10:00:00,100\n2024-06-01 10:01:00,101\n")
	writeDayCSV(t, mpptDir, "2024-06-03.csv",
		"eventTime,pv_power\n2024-06-03 10:00:00,103\n")

	loader := NewLoader(root)
	frame, report, err := loader.Load(config.Request{
		Location: model.SiteA,
		Category: model.CategoryMPPT,
		Start:    day(1),
		End:      day(3),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesLoaded)
	require.Len(t, report.MissingDays, 1)
	assert.Equal(t, day(2), report.MissingDays[0])

	require.Equal(t, 3, frame.Len())
	assert.Equal(t, day(1), frame.Rows[0].FileDate)
	assert.Equal(t, day(3), frame.Rows[2].FileDate)
	assert.Equal(t, model.SiteA, frame.Rows[0].Source)
	// Rows arrive in file-date order.
	assert.InDelta(t, 100, frame.Rows[0].Values["pv_power"], 1e-9)
	assert.InDelta(t, 103, frame.Rows[2].Values["pv_power"], 1e-9)
}

func TestLoadMissingDirectory(t *testing.T) {
	loader := NewLoader(t.TempDir())
	frame, report, err := loader.Load(config.Request{
		Location: model.SiteB,
		Category: model.CategoryWeather,
		Start:    day(1),
		End:      day(2),
	})
	require.NoError(t, err)

	assert.True(t, report.DirectoryMissing)
	assert.Equal(t, 0, report.FilesLoaded)
	assert.Len(t, report.MissingDays, 2)
	assert.Equal(t, 0, frame.Len())
}

func TestLoadUnreadableFileBecomesWarning(t *testing.T) {
	root := t.TempDir()
	mpptDir := filepath.Join(root, "专教", "filtered")
	writeDayCSV(t, mpptDir, "2024-06-01.csv",
		"eventTime,pv_power\n2024-06-01 10:00:00,50\n")
	// Garbage bytes with an xlsx extension.
	require.NoError(t, os.WriteFile(filepath.Join(mpptDir, "2024-06-02.xlsx"), []byte("not a workbook"), 0o644))

	loader := NewLoader(root)
	frame, report, err := loader.Load(config.Request{
		Location: model.SiteB,
		Category: model.CategoryMPPT,
		Start:    day(1),
		End:      day(2),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesLoaded)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "2024-06-02.xlsx")
	require.Len(t, report.MissingDays, 1)
	assert.Equal(t, day(2), report.MissingDays[0])
	assert.Equal(t, 1, frame.Len())
}

func TestLoadRejectsBadRequests(t *testing.T) {
	loader := NewLoader(t.TempDir())

	_, _, err := loader.Load(config.Request{
		Location: "site_c", Category: model.CategoryMPPT, Start: day(1), End: day(1),
	})
	assert.ErrorIs(t, err, config.ErrUnknownLocation)

	_, _, err = loader.Load(config.Request{
		Location: model.SiteA, Category: model.CategoryMPPT, Start: day(2), End: day(1),
	})
	assert.ErrorIs(t, err, config.ErrBadDateRange)

	_, _, err = loader.Load(config.Request{
		Location: model.SiteA, Start: day(1), End: day(1),
	})
	assert.ErrorIs(t, err, config.ErrUnknownCategory)
}

func TestLoadSiteDirOverride(t *testing.T) {
	root := t.TempDir()
	writeDayCSV(t, filepath.Join(root, "dorm15", "filtered"), "2024-06-01.csv",
		"eventTime,pv_power\n2024-06-01 10:00:00,77\n")

	loader := NewLoader(root)
	loader.SetSiteDir(model.SiteA, "dorm15")

	frame, report, err := loader.Load(config.Request{
		Location: model.SiteA, Category: model.CategoryMPPT, Start: day(1), End: day(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesLoaded)
	assert.Equal(t, 1, frame.Len())
}

func TestLoadLocation(t *testing.T) {
	root := t.TempDir()
	siteDir := filepath.Join(root, "专教")
	writeDayCSV(t, filepath.Join(siteDir, "filtered"), "2024-06-01.csv",
		"eventTime,pv_power\n2024-06-01 10:00:00,10\n")
	writeDayCSV(t, filepath.Join(siteDir, "Climate_data", "filtered"), "2024-06-01.csv",
		"Date,大气温度(℃)\n2024-06-01 10:00:00,21\n")

	loader := NewLoader(root)
	bundle, report, err := loader.LoadLocation(config.Request{
		Location: model.SiteB, Start: day(1), End: day(2),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, bundle.MPPT.Len())
	assert.Equal(t, 1, bundle.Weather.Len())
	assert.Equal(t, 2, report.Days)
	// One of two days present in each category.
	assert.InDelta(t, 50.0, report.Completeness(), 1e-9)
}
