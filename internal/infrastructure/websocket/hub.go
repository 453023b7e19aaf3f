package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"storefront/internal/infrastructure/metrics"
	"storefront/pkg/logger"
)

// WSMessage is the frame written to subscribers.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Encode renders an event frame.
func Encode(event string, payload interface{}) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      event,
		Data:      payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Hub routes events to the clients subscribed to a room. Membership is kept
// in both directions so a disconnect drops every subscription the client held.
type Hub struct {
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	mutex   sync.RWMutex

	requireAdminRole bool
	metrics          *metrics.AppMetrics
}

type HubOption func(*Hub)

// WithAdminRoleRequired restricts the admin room to clients holding the admin role.
func WithAdminRoleRequired(required bool) HubOption {
	return func(h *Hub) {
		h.requireAdminRole = required
	}
}

func WithMetrics(m *metrics.AppMetrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		rooms:            make(map[string]map[*Client]struct{}),
		clients:          make(map[*Client]map[string]struct{}),
		requireAdminRole: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start closes every client when ctx is done.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		h.Close()
	}()
}

func (h *Hub) Register(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; !ok {
		h.clients[client] = make(map[string]struct{})
	}
	h.mutex.Unlock()

	h.metrics.ConnectionOpened(context.Background())
	logger.Debug("WebSocket: client registered: %s", client.UserID)
}

// Unregister drops every room membership of client and closes its queue.
// Calling it more than once is harmless.
func (h *Hub) Unregister(client *Client) {
	h.mutex.Lock()
	rooms, ok := h.clients[client]
	if ok {
		for room := range rooms {
			h.removeFromRoom(room, client)
		}
		delete(h.clients, client)
		close(client.Send)
	}
	h.mutex.Unlock()

	if ok {
		h.metrics.ConnectionClosed(context.Background())
		logger.Debug("WebSocket: client unregistered: %s", client.UserID)
	}
}

// Subscribe adds client to room. Subscribing twice is a no-op.
func (h *Hub) Subscribe(client *Client, room string) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	rooms, ok := h.clients[client]
	if !ok {
		return false
	}
	rooms[room] = struct{}{}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	return true
}

func (h *Hub) Unsubscribe(client *Client, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if rooms, ok := h.clients[client]; ok {
		delete(rooms, room)
	}
	h.removeFromRoom(room, client)
}

// removeFromRoom must be called with the write lock held.
func (h *Hub) removeFromRoom(room string, client *Client) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Publish sends event to every member of room. Publishing to an empty room
// is a no-op.
func (h *Hub) Publish(ctx context.Context, room, event string, payload interface{}) {
	message, err := Encode(event, payload)
	if err != nil {
		logger.Error("WebSocket: failed to encode %s for room %s: %v", event, room, err)
		return
	}
	h.metrics.RecordNotificationPublished(ctx, event)
	h.Broadcast(ctx, room, event, message)
}

// Broadcast delivers an already encoded frame. A member whose queue is full
// misses the frame; the connection itself is kept.
func (h *Hub) Broadcast(ctx context.Context, room, event string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.Send <- message:
		default:
			logger.LogNotificationDrop(room, event, "send queue full for "+client.UserID)
			h.metrics.RecordNotificationDropped(ctx, event)
		}
	}
}

// Members returns the number of clients in room.
func (h *Hub) Members(room string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[room])
}

// Rooms returns the rooms client is subscribed to.
func (h *Hub) Rooms(client *Client) []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	rooms := make([]string, 0, len(h.clients[client]))
	for room := range h.clients[client] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Close unregisters every client, which ends their write pumps.
func (h *Hub) Close() {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		h.Unregister(client)
	}
	logger.Info("WebSocket hub closed %d connections", len(clients))
}
