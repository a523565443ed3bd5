package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains the set of active clients and delivers routing events to the
// users they belong to. A user may be connected from several tabs at once.
type Hub struct {
	// Registered clients map: UserID -> connections
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.UserID != "" {
				conns := h.clients[client.UserID]
				if conns == nil {
					conns = make(map[*Client]bool)
					h.clients[client.UserID] = conns
				}
				conns[client] = true
				log.Printf("🔔 User connected: %s", client.UserID)
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok {
				if conns[client] {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
					log.Printf("🔕 User disconnected: %s", client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to every open connection of one user.
// Returns false when the user has no live connection.
func (h *Hub) SendToUser(userID string, message interface{}) bool {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return false
	}

	h.mu.RLock()
	conns := h.clients[userID]
	delivered := false
	for client := range conns {
		select {
		case client.send <- jsonMsg:
			delivered = true
		default:
			// Buffer full or client dead
		}
	}
	h.mu.RUnlock()
	return delivered
}

// ConnectedUsers returns the number of distinct users currently connected
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
