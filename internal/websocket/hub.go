package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"healthbridge-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub tracks the live connections of each chat. A chat can have several
// connections (same user on multiple devices); turn output fans out to
// all of them, and through redis to connections held by other instances.
type Hub struct {
	// ChatID -> connected clients
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, may be nil
	rdb *redis.Client

	// instanceID lets the subscriber skip messages this instance
	// published itself; local delivery already happened.
	instanceID string

	logger logger.ILogger
}

const redisChannel = "chat_events"

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ChatID] = append(h.clients[client.ChatID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"chat_id": client.ChatID,
				"user_id": client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ChatID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ChatID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ChatID]) == 0 {
					delete(h.clients, client.ChatID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToChat delivers data to every local connection of the chat and
// relays it to other instances through redis.
func (h *Hub) SendToChat(chatID uuid.UUID, data []byte) {
	h.deliverLocal(chatID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instanceID,
			"chat_id": chatID.String(),
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), redisChannel, payload)
	}
}

func (h *Hub) deliverLocal(chatID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[chatID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"chat_id": chatID,
			})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin  string          `json:"origin"`
			ChatID  string          `json:"chat_id"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Error("Hub", "Malformed redis payload", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		if payload.Origin == h.instanceID {
			continue
		}

		chatID, err := uuid.Parse(payload.ChatID)
		if err != nil {
			continue
		}

		h.deliverLocal(chatID, payload.Message)
	}
}
