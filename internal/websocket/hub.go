// Package websocket owns the live-connection registry: one room per
// user, any number of connections per room. All access goes through
// Register/Unregister/Deliver/Broadcast; the map is never exposed.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
)

var ErrClientDisconnected = errors.New("client disconnected")

// PresenceStore mirrors a user's online state to a shared store so
// REST handlers can answer "who is online" without touching the hub.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID uint) error
	SetOffline(ctx context.Context, userID uint) error
}

type Hub struct {
	mu sync.RWMutex

	// rooms maps a user id to that user's live connections. The room
	// key is always the authenticated user id.
	rooms map[uint]map[*Client]struct{}

	presence PresenceStore
}

func NewHub(presence PresenceStore) *Hub {
	return &Hub{
		rooms:    make(map[uint]map[*Client]struct{}),
		presence: presence,
	}
}

// Register adds the connection to its owner's room. Idempotent for a
// client that is already registered.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.userID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[client.userID] = room
	}
	room[client] = struct{}{}
	first := len(room) == 1
	h.mu.Unlock()

	slog.Info("client registered",
		"connectionID", client.id, "userID", client.userID)

	if first && h.presence != nil {
		if err := h.presence.SetOnline(context.Background(), client.userID); err != nil {
			slog.Error("failed to set user online",
				"userID", client.userID, "error", err)
		}
	}
}

// Unregister removes the connection from whatever room holds it.
// Safe to call for unknown or already-removed clients, and safe to
// call concurrently with an in-flight Deliver.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.userID]
	if ok {
		if _, member := room[client]; !member {
			ok = false
		} else {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, client.userID)
			}
		}
	}
	last := ok && h.rooms[client.userID] == nil
	h.mu.Unlock()

	if !ok {
		return
	}

	client.close()

	slog.Info("client unregistered",
		"connectionID", client.id, "userID", client.userID)

	if last && h.presence != nil {
		if err := h.presence.SetOffline(context.Background(), client.userID); err != nil {
			slog.Error("failed to set user offline",
				"userID", client.userID, "error", err)
		}
	}
}

// Deliver pushes the event to every live connection of the target
// user. A target with no connections is a silent no-op: live
// delivery is at-most-once and durable state is what survives.
func (h *Hub) Deliver(userID uint, event *Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	clients := h.roomSnapshot(userID)
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.enqueue(data); err != nil {
			go h.Unregister(client)
		}
	}
}

// Broadcast pushes the event to every live connection of every user.
func (h *Hub) Broadcast(event *Event) {
	data, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms))
	for userID := range h.rooms {
		clients = append(clients, h.roomSnapshot(userID)...)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.enqueue(data); err != nil {
			go h.Unregister(client)
		}
	}
}

// ConnectionCount reports live connections for one user.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// OnlineUserIDs lists users with at least one live connection.
func (h *Hub) OnlineUserIDs() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]uint, 0, len(h.rooms))
	for userID := range h.rooms {
		ids = append(ids, userID)
	}
	return ids
}

// Close tears down every connection, e.g. on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	var clients []*Client
	for _, room := range h.rooms {
		for client := range room {
			clients = append(clients, client)
		}
	}
	h.rooms = make(map[uint]map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
		client.conn.Close()
	}
}

// encode marshals an event for the wire, dropping anything with an
// unknown type before it reaches a client.
func (h *Hub) encode(event *Event) ([]byte, bool) {
	if !event.Type.IsValid() {
		slog.Error("dropping event with unknown type", "type", event.Type)
		return nil, false
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event",
			"type", event.Type, "error", err)
		return nil, false
	}
	return data, true
}

// roomSnapshot copies a room's members; callers hold at least a read
// lock. The copy lets enqueue run without the lock so a slow client
// never stalls map access.
func (h *Hub) roomSnapshot(userID uint) []*Client {
	room := h.rooms[userID]
	if len(room) == 0 {
		return nil
	}
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	return clients
}

func mustMarshal(event *Event) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "type", event.Type, "error", err)
		return []byte("{}")
	}
	return data
}
