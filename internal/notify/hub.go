package notify

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier delivers an event to a user. Delivery is fire-and-forget:
// failures are logged and never propagate into the state transition that
// produced the event.
type Notifier interface {
	Notify(userID, eventType string, data any)
}

// Event is the wire shape pushed to a user's stream.
type Event struct {
	Type   string    `json:"type"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Hub fans events out to in-process websocket subscribers and mirrors them
// over redis pub/sub so other instances can deliver to their own sockets.
type Hub struct {
	redis    *redis.Client
	instance string
	clients  map[string]map[*Client]struct{}
	mu       sync.RWMutex
}

// frame wraps a redis publish with the publishing instance's id, so the
// pattern subscription can drop the instance's own messages instead of
// delivering them a second time.
type frame struct {
	Source  string `json:"source"`
	Payload []byte `json:"payload"`
}

type Client struct {
	UserID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:    redisClient,
		instance: uuid.NewString(),
		clients:  map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Notify(userID, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, SentAt: time.Now()})
	if err != nil {
		log.Printf("notify marshal error: %v", err)
		return
	}
	h.Broadcast(userID, payload)
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.UserID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	close(client.Send)
}

func (h *Hub) Broadcast(userID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		wrapped, err := json.Marshal(frame{Source: h.instance, Payload: payload})
		if err != nil {
			log.Printf("notify frame marshal error: %v", err)
			return
		}
		if err := h.redis.Publish(context.Background(), redisChannel(userID), wrapped).Err(); err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "notify:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		payload := []byte(msg.Payload)
		var f frame
		if err := json.Unmarshal(payload, &f); err == nil && f.Source != "" {
			if f.Source == h.instance {
				continue
			}
			payload = f.Payload
		}

		userID := userIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[userID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
}

func redisChannel(userID string) string {
	return "notify:" + userID + ":events"
}

func userIDFromChannel(ch string) string {
	// notify:{user}:events
	const prefix = "notify:"
	const suffix = ":events"
	if !strings.HasPrefix(ch, prefix) || !strings.HasSuffix(ch, suffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(ch, prefix), suffix)
}
