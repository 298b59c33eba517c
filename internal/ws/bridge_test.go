package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/forecast"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/quality"
)

func newTestBridge() (*Bridge, *session) {
	hub := NewHub()
	return NewBridge(hub), addSession(hub, 256)
}

func receiveEnvelope(t *testing.T, s *session) Envelope {
	t.Helper()
	msg := <-s.out
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestBridge_OnDataLoaded(t *testing.T) {
	bridge, client := newTestBridge()

	f := model.NewFrame(model.SiteA, model.CategoryMPPT)
	f.AddColumn("eventTime")
	f.Append(model.Reading{Timestamp: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)})
	f.Append(model.Reading{Timestamp: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)})

	bridge.OnDataLoaded(f, quality.CategoryReport{
		Category:    model.CategoryMPPT,
		FilesLoaded: 2,
		MissingDays: []time.Time{time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
	})

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeDataLoaded, env.Type)

	var p DataLoadedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "site_a", p.Location)
	assert.Equal(t, "mppt", p.Category)
	assert.Equal(t, 2, p.Rows)
	assert.Equal(t, 2, p.FilesLoaded)
	assert.Equal(t, []string{"2024-06-02"}, p.MissingDays)
	assert.Equal(t, "2024-06-01T08:00:00Z", p.TimeRange.Start)
	assert.Equal(t, "2024-06-01T18:00:00Z", p.TimeRange.End)
}

func TestBridge_OnQualityUpdate(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.OnQualityUpdate(&quality.Report{
		Location: model.SiteB,
		Days:     2,
		MPPT:     quality.CategoryReport{FilesLoaded: 2},
		Weather:  quality.CategoryReport{FilesLoaded: 1, DirectoryMissing: true},
	})

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeQualityUpdate, env.Type)

	var p QualityPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "site_b", p.Location)
	assert.InDelta(t, 75.0, p.Completeness, 0.001)
	assert.True(t, p.Weather.DirectoryMissing)
	assert.False(t, p.MPPT.DirectoryMissing)
}

func TestBridge_OnForecastComplete(t *testing.T) {
	bridge, client := newTestBridge()

	start := time.Date(2024, 6, 5, 13, 0, 0, 0, time.UTC)
	res := &forecast.Result{
		TargetColumn: "pv_power",
		Models: []forecast.ModelResult{
			{Name: "linear"},
			{Name: "gradient_boosting"},
		},
		Best:         1,
		HorizonTimes: []time.Time{start, start.Add(4 * time.Hour)},
	}

	bridge.OnForecastComplete("req-42", model.SiteA, res)

	env := receiveEnvelope(t, client)
	assert.Equal(t, TypeForecastComplete, env.Type)

	var p ForecastCompletePayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "req-42", p.RequestID)
	assert.Equal(t, "pv_power", p.TargetColumn)
	assert.Equal(t, "gradient_boosting", p.BestModel)
	assert.Equal(t, []string{"linear", "gradient_boosting"}, p.Models)
	assert.Equal(t, "2024-06-05T13:00:00Z", p.HorizonStart)
	assert.Equal(t, "2024-06-05T17:00:00Z", p.HorizonEnd)
}

func TestBridge_SnapshotKeepsLatest(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.OnQualityUpdate(&quality.Report{Location: model.SiteA, Days: 1})
	bridge.OnQualityUpdate(&quality.Report{Location: model.SiteB, Days: 1})
	receiveEnvelope(t, client)
	receiveEnvelope(t, client)

	msgs := bridge.Snapshot()
	require.Len(t, msgs, 1)

	var env Envelope
	require.NoError(t, json.Unmarshal(msgs[0], &env))
	assert.Equal(t, TypeQualityUpdate, env.Type)

	var p QualityPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "site_b", p.Location)
}

func TestBridge_SnapshotOrder(t *testing.T) {
	bridge, _ := newTestBridge()

	// Published out of order; the snapshot still replays loads first.
	bridge.OnQualityUpdate(&quality.Report{Location: model.SiteA, Days: 1})

	f := model.NewFrame(model.SiteA, model.CategoryWeather)
	bridge.OnDataLoaded(f, quality.CategoryReport{Category: model.CategoryWeather})

	msgs := bridge.Snapshot()
	require.Len(t, msgs, 2)

	var first, second Envelope
	require.NoError(t, json.Unmarshal(msgs[0], &first))
	require.NoError(t, json.Unmarshal(msgs[1], &second))
	assert.Equal(t, TypeDataLoaded, first.Type)
	assert.Equal(t, TypeQualityUpdate, second.Type)
}
