package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is the wire envelope for both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newEvent(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: eventType, Payload: raw})
}

// Hub tracks connected clients and their room memberships. A room is a
// named broadcast group; every user also owns a private room used for
// presence and targeted events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

func userRoom(userID string) string {
	return "user:" + userID
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	log.Printf("Client connected for user %s (total: %d)", c.userID, total)
}

// remove drops the client from every room and closes its send channel.
// Room memberships are discarded with the connection.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	log.Printf("Client disconnected for user %s (total: %d)", c.userID, total)
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

// Leave is idempotent: leaving a room never joined is a no-op.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// RoomSize reports how many clients a room currently holds.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) InRoom(c *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[room][c]
}

// Broadcast sends the event to every client in the room.
func (h *Hub) Broadcast(room, eventType string, payload interface{}) {
	h.broadcast(room, nil, eventType, payload)
}

// BroadcastExcept sends the event to every client in the room other than
// skip.
func (h *Hub) BroadcastExcept(room string, skip *Client, eventType string, payload interface{}) {
	h.broadcast(room, skip, eventType, payload)
}

// ToUser sends the event into the user's private room.
func (h *Hub) ToUser(userID, eventType string, payload interface{}) {
	h.broadcast(userRoom(userID), nil, eventType, payload)
}

func (h *Hub) broadcast(room string, skip *Client, eventType string, payload interface{}) {
	data, err := newEvent(eventType, payload)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == skip {
			continue
		}
		select {
		case c.send <- data:
		default:
			// slow consumer: drop rather than block the room
			log.Printf("Send buffer full for user %s, dropping %s event", c.userID, eventType)
		}
	}
}
