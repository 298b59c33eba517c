package ws

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/forecast"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/quality"
)

// snapshotOrder fixes the replay sequence for newly connected clients.
var snapshotOrder = []string{TypeDataLoaded, TypeQualityUpdate, TypeForecastComplete}

// Bridge turns pipeline milestones into hub broadcasts. It remembers the
// latest envelope of each type so a client connecting after a long-running
// request still sees its outcome.
type Bridge struct {
	hub *Hub

	mu   sync.Mutex
	last map[string][]byte
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub, last: make(map[string][]byte)}
}

func (b *Bridge) OnDataLoaded(f *model.Frame, rep quality.CategoryReport) {
	b.publish(TypeDataLoaded, DataLoadedFromFrame(f, rep))
}

func (b *Bridge) OnQualityUpdate(rep *quality.Report) {
	b.publish(TypeQualityUpdate, QualityFromReport(rep))
}

func (b *Bridge) OnForecastComplete(requestID string, loc model.LocationID, res *forecast.Result) {
	b.publish(TypeForecastComplete, ForecastCompleteFromResult(requestID, loc, res))
}

// Snapshot returns the most recent envelope of each type, in a stable order.
func (b *Bridge) Snapshot() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	var msgs [][]byte
	for _, msgType := range snapshotOrder {
		if msg, ok := b.last[msgType]; ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func (b *Bridge) publish(msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Error().Str("type", msgType).Err(err).Msg("marshal ws event")
		return
	}

	b.mu.Lock()
	b.last[msgType] = msg
	b.mu.Unlock()

	b.hub.Broadcast(msg)
}
