// Package websocket pushes duty updates to connected browsers.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Message is one live update. Type names the change, Date is the duty day
// it concerns and Data carries the change itself.
type Message struct {
	Type string `json:"type"`
	Date string `json:"date,omitempty"`
	ID   string `json:"id,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Hub tracks connected clients and fans messages out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	dropped atomic.Int64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", "clients", n)
}

// Unregister removes c and closes its send channel. Calling it twice is
// harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", "clients", n)
}

// Broadcast queues msg for every client and returns how many accepted it.
// Clients with a full buffer miss the message.
func (h *Hub) Broadcast(msg Message) (int, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.clients {
		select {
		case c.send <- data:
			sent++
		default:
			h.dropped.Add(1)
		}
	}
	if missed := len(h.clients) - sent; missed > 0 {
		h.logger.Warn("slow clients missed update", "type", msg.Type, "missed", missed)
	}
	return sent, nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many deliveries were skipped for slow clients.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
