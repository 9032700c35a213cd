package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"llm-taskbench/internal/pkg/logger"
)

// ProgressMessage is the envelope pushed to wizard dialogs.
type ProgressMessage struct {
	Kind    string      `json:"kind"` // "generation" | "save" | "extraction"
	Session string      `json:"session"`
	Data    interface{} `json:"data"`
}

// Hub fans progress events out to every connection watching a wizard.
// Connections are keyed by the wizard's session key
// ("<project_id>:<task_id>"); Redis pub/sub carries events across
// gateway instances.
type Hub struct {
	// session key -> connected watchers (multi-tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

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
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionKey] = append(h.clients[client.SessionKey], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Watcher registered", map[string]interface{}{"session": client.SessionKey})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionKey]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionKey] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionKey]) == 0 {
					delete(h.clients, client.SessionKey)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a progress message to every watcher of the session.
// With Redis available the message goes through pub/sub so watchers on
// every instance (this one included) receive it exactly once;
// otherwise it is delivered locally.
func (h *Hub) Send(message ProgressMessage) {
	data, _ := json.Marshal(message)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"session": message.Session,
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "wizard_progress", payload)
		return
	}

	h.deliverLocal(message.Session, data)
}

func (h *Hub) deliverLocal(session string, data []byte) {
	h.mu.RLock()
	clients := h.clients[session]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Watcher buffer full, dropping connection", map[string]interface{}{
				"session": session,
			})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and forwards
	// messages for sessions it has watchers for.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "wizard_progress")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Session string          `json:"session"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.deliverLocal(payload.Session, payload.Message)
	}
}
