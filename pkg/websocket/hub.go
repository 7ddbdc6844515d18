package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorider/gorider-api/pkg/events"
	"github.com/gorider/gorider-api/pkg/logger"
)

// Client types that may connect to the ride feed
const (
	TypeDashboard = "dashboard"
	TypeDriver    = "driver"
	TypeRider     = "rider"
)

var ErrFeedBacklogged = errors.New("ride feed backlogged, event dropped")

// Hub keeps live connections and fans ride events out to them
type Hub struct {
	clients    map[*Client]bool
	outbound   chan events.RideEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Message is the envelope written to clients
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		outbound:   make(chan events.RideEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Client registered",
				logger.String("client_id", client.ID),
				logger.String("user_type", client.UserType),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Client unregistered", logger.String("client_id", client.ID))
			}
			h.mu.Unlock()

		case ev := <-h.outbound:
			h.deliver(ev)
		}
	}
}

// Register registers a new client. After the hub stops the client's send
// channel is closed so its write pump hangs up.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues a ride event for delivery. It never blocks: when the
// queue is full the event is dropped and ErrFeedBacklogged returned.
func (h *Hub) Publish(_ context.Context, ev events.RideEvent) error {
	select {
	case h.outbound <- ev:
		return nil
	default:
		return ErrFeedBacklogged
	}
}

func (h *Hub) deliver(ev events.RideEvent) {
	data, err := json.Marshal(Message{Type: ev.Type, Data: ev})
	if err != nil {
		h.logger.Error("Failed to marshal ride event", logger.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for client := range h.clients {
		if !client.wants(ev) {
			continue
		}
		select {
		case client.Send <- data:
			count++
		default:
			h.logger.Warn("Client send buffer full",
				logger.String("client_id", client.ID),
				logger.String("ride_id", ev.RideID),
			)
		}
	}

	h.logger.Debug("Ride event delivered",
		logger.String("type", ev.Type),
		logger.String("ride_id", ev.RideID),
		logger.Int("count", count),
	)
}

// GetActiveConnections returns the number of active connections
func (h *Hub) GetActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
