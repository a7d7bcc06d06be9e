package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Event types broadcast to connected staff displays.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts order events to
// them. One restaurant, one room: every authenticated staff client sees
// every event.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan Event

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, exists := h.clients[client]; exists {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast marshals payload and queues an event for every connected client.
// Safe to call from any handler goroutine.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal ws payload: %v", err)
		return
	}
	h.broadcast <- Event{Type: eventType, Payload: data}
}
