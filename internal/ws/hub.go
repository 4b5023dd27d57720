package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

const redisPubSubChannel = "titanmarket:events"

// Event types
const (
	EventMessageCreated      = "message.created"
	EventConversationUpdated = "conversation.updated"
)

// Event is a real-time event pushed to a user over WebSocket
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub tracks WebSocket clients per user and fans events out to them.
// With Redis configured, events are also relayed to the other API instances.
type Hub struct {
	// Connected clients grouped by user ID
	clients map[uint64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	mu          sync.RWMutex
	redisClient *redis.Client
	instanceID  string
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

type targetedEvent struct {
	UserID uint64
	Data   []byte
}

type redisMessage struct {
	Origin string `json:"origin"`
	UserID uint64 `json:"user_id"`
	Event  *Event `json:"event"`
}

// NewHub creates a new Hub. redisClient may be nil for single-instance deployments.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uint64]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		instanceID:  uuid.NewString(),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		client.closeSend()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)

	var subWG sync.WaitGroup
	if h.redisClient != nil {
		subWG.Add(1)
		go func() {
			defer subWG.Done()
			h.subscribeRedis()
		}()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.UserID] {
				select {
				case client.send <- msg.Data:
				default:
					// slow consumer; drop the connection
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			h.mu.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
			subWG.Wait()
			return
		}
	}
}

// removeLocked drops client and closes its send channel. Caller holds h.mu.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	client.closeSend()
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

// SendToUser delivers event to every connection of userID on this instance
// and publishes it for the other instances.
func (h *Hub) SendToUser(userID uint64, event *Event) {
	h.deliverLocal(userID, event)

	if h.redisClient != nil {
		data, err := json.Marshal(&redisMessage{Origin: h.instanceID, UserID: userID, Event: event})
		if err != nil {
			return
		}
		if err := h.redisClient.Publish(h.ctx, redisPubSubChannel, data).Err(); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("ws: redis publish failed")
		}
	}
}

// SendToUsers delivers the same event to several users
func (h *Hub) SendToUsers(userIDs []uint64, event *Event) {
	for _, id := range userIDs {
		h.SendToUser(id, event)
	}
}

func (h *Hub) deliverLocal(userID uint64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		pkglogger.GetLogger().Error().Err(err).Str("type", event.Type).Msg("ws: failed to encode event")
		return
	}
	select {
	case h.broadcast <- &targetedEvent{UserID: userID, Data: data}:
	case <-h.ctx.Done():
	}
}

// ConnectedClients returns the number of open connections for userID
func (h *Hub) ConnectedClients(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// TotalClients counts open connections on this instance
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// subscribeRedis relays events published by other instances to local clients
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm redisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil || rm.Event == nil {
				continue
			}
			if rm.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(rm.UserID, rm.Event)
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop shuts the hub down, disconnecting every client, and waits for Run to return
func (h *Hub) Stop() {
	h.cancel()
	<-h.done
}
