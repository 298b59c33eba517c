package ws

import (
	"encoding/json"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/forecast"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/quality"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypePong             = "pong"
	TypeDataLoaded       = "data:loaded"
	TypeQualityUpdate    = "quality:update"
	TypeForecastComplete = "forecast:complete"
)

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DataLoadedPayload announces that one location/category dataset finished
// loading into a request pipeline.
type DataLoadedPayload struct {
	Location    string        `json:"location"`
	Category    string        `json:"category"`
	Rows        int           `json:"rows"`
	FilesLoaded int           `json:"files_loaded"`
	MissingDays []string      `json:"missing_days,omitempty"`
	TimeRange   TimeRangeInfo `json:"time_range"`
}

type CategoryStatusPayload struct {
	FilesLoaded      int      `json:"files_loaded"`
	MissingDays      []string `json:"missing_days,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	DirectoryMissing bool     `json:"directory_missing,omitempty"`
}

type QualityPayload struct {
	Location     string                `json:"location"`
	Days         int                   `json:"days"`
	Completeness float64               `json:"completeness"`
	MPPT         CategoryStatusPayload `json:"mppt"`
	Weather      CategoryStatusPayload `json:"weather"`
}

// ForecastCompletePayload is a lightweight completion notice; clients fetch
// the full result over REST using the request ID.
type ForecastCompletePayload struct {
	RequestID    string   `json:"request_id"`
	Location     string   `json:"location"`
	TargetColumn string   `json:"target_column"`
	BestModel    string   `json:"best_model"`
	Models       []string `json:"models"`
	HorizonStart string   `json:"horizon_start"`
	HorizonEnd   string   `json:"horizon_end"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func DataLoadedFromFrame(f *model.Frame, rep quality.CategoryReport) DataLoadedPayload {
	p := DataLoadedPayload{
		Location:    string(f.Location),
		Category:    string(f.Category),
		Rows:        f.Len(),
		FilesLoaded: rep.FilesLoaded,
		MissingDays: formatDays(rep.MissingDays),
	}
	if tr, ok := f.TimeBounds(); ok {
		p.TimeRange = TimeRangeInfo{
			Start: tr.Start.Format(time.RFC3339),
			End:   tr.End.Format(time.RFC3339),
		}
	}
	return p
}

func QualityFromReport(rep *quality.Report) QualityPayload {
	return QualityPayload{
		Location:     string(rep.Location),
		Days:         rep.Days,
		Completeness: rep.Completeness(),
		MPPT:         categoryStatus(rep.MPPT),
		Weather:      categoryStatus(rep.Weather),
	}
}

func ForecastCompleteFromResult(requestID string, loc model.LocationID, res *forecast.Result) ForecastCompletePayload {
	p := ForecastCompletePayload{
		RequestID:    requestID,
		Location:     string(loc),
		TargetColumn: res.TargetColumn,
		BestModel:    res.BestModel().Name,
	}
	for _, m := range res.Models {
		p.Models = append(p.Models, m.Name)
	}
	if n := len(res.HorizonTimes); n > 0 {
		p.HorizonStart = res.HorizonTimes[0].Format(time.RFC3339)
		p.HorizonEnd = res.HorizonTimes[n-1].Format(time.RFC3339)
	}
	return p
}

func categoryStatus(rep quality.CategoryReport) CategoryStatusPayload {
	return CategoryStatusPayload{
		FilesLoaded:      rep.FilesLoaded,
		MissingDays:      formatDays(rep.MissingDays),
		Warnings:         rep.Warnings,
		DirectoryMissing: rep.DirectoryMissing,
	}
}

func formatDays(days []time.Time) []string {
	if len(days) == 0 {
		return nil
	}
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format("2006-01-02")
	}
	return out
}
