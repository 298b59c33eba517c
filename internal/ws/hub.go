// Package ws pushes pipeline events to connected dashboard browsers so
// every open tab sees loads, quality changes, and finished forecasts.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// sendBuffer is the per-session outbound queue. A browser that cannot
	// drain it loses messages rather than stalling the broadcaster.
	sendBuffer = 256

	writeWait = 10 * time.Second
)

// session is one connected dashboard tab. The hub owns its lifecycle; the
// handler only reads from the peer.
type session struct {
	conn *websocket.Conn
	out  chan []byte
}

// queue enqueues without blocking. A full buffer drops the message.
func (s *session) queue(msg []byte) bool {
	select {
	case s.out <- msg:
		return true
	default:
		return false
	}
}

// writeLoop drains the outbound queue onto the wire, closing the connection
// when the hub closes the queue or the peer stops reading.
func (s *session) writeLoop() {
	defer s.conn.Close()
	for msg := range s.out {
		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Hub fans pipeline broadcasts out to every connected session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*session]struct{}
	closed   bool
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[*session]struct{})}
}

// attach wraps an upgraded connection in a session, registers it, and starts
// its writer. Returns nil once the hub has shut down.
func (h *Hub) attach(conn *websocket.Conn) *session {
	s := &session{conn: conn, out: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	h.sessions[s] = struct{}{}
	n := len(h.sessions)
	h.mu.Unlock()

	go s.writeLoop()
	log.Debug().Int("clients", n).Msg("ws client connected")
	return s
}

func (h *Hub) detach(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		close(s.out)
	}
}

// send queues a message for one session while it is still registered.
// Queue closure only ever happens under the write lock, so holding the read
// lock here keeps the enqueue safe.
func (h *Hub) send(s *session, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[s]; ok {
		s.queue(msg)
	}
}

// Broadcast queues a message for every session. Stalled sessions are
// skipped, not waited for.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stalled := 0
	for s := range h.sessions {
		if !s.queue(msg) {
			stalled++
		}
	}
	if stalled > 0 {
		log.Debug().Int("stalled", stalled).Msg("ws broadcast dropped for slow clients")
	}
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown drops every session and refuses new attachments. Writers finish
// their queues and close the connections, which unblocks the readers.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.sessions {
		delete(h.sessions, s)
		close(s.out)
	}
}
