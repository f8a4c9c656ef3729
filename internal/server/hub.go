package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/appengine-ltd/wagon-trail/internal/trail"
)

const clientBuffer = 64

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans journey events out to websocket subscribers. A subscriber that
// falls behind loses events rather than stalling the journey.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[*client]struct{}), logger: logger}
}

func (h *Hub) Emit(e trail.Event) {
	data, err := json.Marshal(frame{Type: "event", Event: &e})
	if err != nil {
		h.logger.Warn("failed to marshal event", "kind", e.Kind, "err", err)
		return
	}
	h.Broadcast(data)
}

func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping event for slow subscriber", "remote", c.conn.RemoteAddr().String())
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// serve registers conn, writes first as the opening frame and pumps
// events until the peer goes away.
func (h *Hub) serve(conn *websocket.Conn, first []byte) {
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	c.send <- first

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", "err", err)
				return
			}
		case <-done:
			return
		}
	}
}

type frame struct {
	Type     string          `json:"type"`
	Event    *trail.Event    `json:"event,omitempty"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
}
