package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// EventPong answers an application level {"type":"ping"} frame
const EventPong = "pong"

// Client is one WebSocket connection of a signed-in user.
// The hub owns send and closes it on removal; replies stays open for the
// lifetime of the client so ReadPump can answer without racing the hub.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	replies   chan []byte
	userID    uint64
	closeOnce sync.Once
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, userID uint64) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		replies: make(chan []byte, 1),
		userID:  userID,
	}
}

// UserID returns the authenticated user behind the connection
func (c *Client) UserID() uint64 { return c.userID }

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// ReadPump consumes inbound frames until the connection fails.
// Browsers without access to control frames may send {"type":"ping"}.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				pkglogger.GetLogger().Debug().Err(err).Uint64("user_id", c.userID).Msg("ws: connection closed")
			}
			return
		}
		c.handleInbound(data)
	}
}

func (c *Client) handleInbound(data []byte) {
	var in struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(data, &in) != nil || in.Type != "ping" {
		return
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck

	pong, _ := json.Marshal(&Event{Type: EventPong})
	select {
	case c.replies <- pong:
	default:
	}
}

// WritePump writes hub events and replies, and pings the peer periodically
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}

		case reply := <-c.replies:
			if err := c.write(websocket.TextMessage, reply); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return c.conn.WriteMessage(messageType, data)
}
