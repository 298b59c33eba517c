package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// maxControlBytes bounds client-to-server messages; the dashboard only ever
// sends keepalives.
const maxControlBytes = 512

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades dashboard connections and replays the bridge snapshot so
// late joiners start from the current state.
type Handler struct {
	hub    *Hub
	bridge *Bridge
}

func NewHandler(hub *Hub, bridge *Bridge) *Handler {
	return &Handler{hub: hub, bridge: bridge}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := h.hub.attach(conn)
	if sess == nil {
		return
	}

	for _, msg := range h.bridge.Snapshot() {
		h.hub.send(sess, msg)
	}

	h.readLoop(sess)
}

func (h *Handler) readLoop(s *session) {
	defer func() {
		h.hub.detach(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxControlBytes)
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
		h.control(s, msg)
	}
}

// control serves the tiny client-to-server surface. The dashboard pulls data
// over REST; the socket only carries pushes and keepalives.
func (h *Handler) control(s *session, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Debug().Err(err).Msg("invalid ws message")
		return
	}

	switch env.Type {
	case TypePing:
		pong, err := NewEnvelope(TypePong, nil)
		if err != nil {
			return
		}
		h.hub.send(s, pong)

	default:
		log.Debug().Str("type", env.Type).Msg("unknown ws message type")
	}
}
