package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/loopyhq/loopy-backend/internal/clients/redis"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

// Client is one open event-stream connection. A user may hold several at
// once (multiple tabs); every one receives that user's plant updates.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Outbound chan redisclient.PlantUpdate
	done     chan struct{}
}

// Hub fans plant updates out to the connected clients of the target user.
// It is fed by the Redis bus forwarder, so updates published on any
// instance reach clients connected to this one.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[uuid.UUID]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "PlantSSEHub"),
		subscriptions: make(map[uuid.UUID]map[*Client]bool),
	}
}

func (h *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Outbound: make(chan redisclient.PlantUpdate, 10),
		done:     make(chan struct{}),
	}
}

func (h *Hub) AddClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.subscriptions[client.UserID]
	if !ok {
		clients = make(map[*Client]bool)
		h.subscriptions[client.UserID] = clients
	}
	clients[client] = true
	h.log.Debug("SSE client connected", "client_id", client.ID, "user_id", client.UserID)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.subscriptions[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subscriptions, client.UserID)
		}
	}
	h.log.Debug("SSE client disconnected", "client_id", client.ID)
}

// Dispatch delivers an update to every connected client of its user. Slow
// clients with a full buffer drop the message rather than block the hub.
func (h *Hub) Dispatch(u redisclient.PlantUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.subscriptions[u.UserID]
	if !ok {
		return
	}
	for c := range clients {
		select {
		case c.Outbound <- u:
		default:
			h.log.Warn("Dropping plant update; outbound buffer full", "client_id", c.ID)
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case u := <-client.Outbound:
			raw, err := json.Marshal(u)
			if err != nil {
				h.log.Warn("Failed to marshal plant update", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", u.Event)
			fmt.Fprintf(w, "data: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

func (h *Hub) CloseClient(client *Client) {
	close(client.done)
	h.RemoveClient(client)
	close(client.Outbound)
}
