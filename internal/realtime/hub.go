package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"persona-forge-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// PipelineEvent is the frame pushed to websocket subscribers while documents
// are ingested and persona sets move through the synthesis stages.
type PipelineEvent struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Hub fans pipeline events out to websocket clients. Clients subscribe per
// scope, a client with an empty scope key receives every event (firehose).
type Hub struct {
	// Registered clients map: scope key -> list of clients
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ScopeKey] = append(h.clients[client.ScopeKey], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"scope": client.ScopeKey})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ScopeKey]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ScopeKey] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ScopeKey]) == 0 {
					delete(h.clients, client.ScopeKey)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends an event to subscribers of the scope plus firehose clients,
// and relays it to other instances through Redis.
func (h *Hub) Publish(scopeKey string, event PipelineEvent) {
	data, _ := json.Marshal(event)

	h.deliverLocal(scopeKey, data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_scope": scopeKey,
			"message":      json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "pipeline_events", jsonPayload)
	}
}

// Broadcast sends an event to ALL connected clients on all instances.
func (h *Hub) Broadcast(event PipelineEvent) {
	data, _ := json.Marshal(event)

	h.deliverAll(data)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_scope": "*",
			"message":      json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "pipeline_events", jsonPayload)
	}
}

func (h *Hub) deliverLocal(scopeKey string, data []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0)
	targets = append(targets, h.clients[scopeKey]...)
	if scopeKey != "" {
		// Firehose clients see every scope.
		targets = append(targets, h.clients[""]...)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			// Slow consumer. Unregister closes the channel, do not close here.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"scope": client.ScopeKey})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) deliverAll(data []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0)
	for _, clients := range h.clients {
		targets = append(targets, clients...)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// subscribeToRedis listens for events relayed by other instances. Every
// instance subscribes to the same channel and applies the local scope routing.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "pipeline_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetScope string          `json:"target_scope"`
			Message     json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetScope == "*" {
			h.deliverAll(payload.Message)
			continue
		}

		h.deliverLocal(payload.TargetScope, payload.Message)
	}
}
