// Package hub fans facility updates out to connected push clients.
package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/shiva/campusq/internal/model"
)

// SendBuffer is the per-client queue depth. A client that falls this far
// behind starts losing messages instead of stalling the broadcaster.
const SendBuffer = 16

// MessageUpdate is the only message type pushed today.
const MessageUpdate = "UPDATE"

// Client is one connected listener.
type Client struct {
	ID   string
	Send chan []byte
}

// NewClient creates a client with a buffered send queue.
func NewClient(id string) *Client {
	return &Client{ID: id, Send: make(chan []byte, SendBuffer)}
}

// Message is the envelope written to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// UpdateData mirrors the GET /api/facilities response.
type UpdateData struct {
	Facilities []model.Facility `json:"facilities"`
	Timestamp  time.Time        `json:"timestamp"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

// Unregister removes the client and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues payload on every client without blocking.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			log.Printf("[ws] drop message for client %s", client.ID)
		}
	}
}

// BroadcastFacilities encodes an UPDATE message and broadcasts it.
func (h *Hub) BroadcastFacilities(facilities []model.Facility, at time.Time) error {
	payload, err := json.Marshal(Message{
		Type: MessageUpdate,
		Data: UpdateData{Facilities: facilities, Timestamp: at},
	})
	if err != nil {
		return err
	}
	h.Broadcast(payload)
	return nil
}
