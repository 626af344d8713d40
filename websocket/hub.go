package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"report-moderation/models"
)

// Hub manages WebSocket connections and broadcasting
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound snapshots for all clients
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mutex sync.RWMutex

	// Statistics
	lastSnapshotCount int
	connectedClients  int
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
			log.Printf("Dashboard client connected. Total clients: %d", h.connectedClients)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connectedClients = len(h.clients)
			}
			h.mutex.Unlock()
			log.Printf("Dashboard client disconnected. Total clients: %d", h.connectedClients)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
		}
	}
}

// BroadcastSnapshot pushes the full report dataset to every connected client.
// Each push fully replaces the client-side view; the hub never sends deltas.
func (h *Hub) BroadcastSnapshot(reports []models.Report) {
	data, err := encodeSnapshot(reports)
	if err != nil {
		log.Printf("Failed to marshal snapshot: %v", err)
		return
	}

	h.mutex.Lock()
	h.lastSnapshotCount = len(reports)
	h.mutex.Unlock()

	h.broadcast <- data
	log.Printf("Broadcasted snapshot of %d reports to %d clients", len(reports), h.connectedClients)
}

// GetStats returns connected client count and last snapshot size
func (h *Hub) GetStats() (int, int) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.connectedClients, h.lastSnapshotCount
}

func encodeSnapshot(reports []models.Report) ([]byte, error) {
	message := models.BroadcastMessage{
		Type: "reports",
		Data: models.ReportSnapshot{
			Reports: reports,
			Count:   len(reports),
		},
		Timestamp: time.Now().UTC(),
	}
	return json.Marshal(message)
}
