// Package ws pushes refreshed snapshot summaries to WebSocket subscribers.
package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/observability"
)

// Hub tracks subscribers and broadcasts JSON payloads to all of them.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu   sync.Mutex
	subs map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		subs:   make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the connection and registers the subscriber. The read
// loop exists only to detect the peer going away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[ws] upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.subs[conn] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	observability.DefaultMetrics.WSClients.Set(float64(n))

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

// Broadcast sends v as JSON to every subscriber, dropping the ones that
// fail to accept the write.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.subs))
	for c := range h.subs {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(v); err != nil {
			h.drop(c)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.subs, conn)
	n := len(h.subs)
	h.mu.Unlock()
	observability.DefaultMetrics.WSClients.Set(float64(n))
	_ = conn.Close()
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
