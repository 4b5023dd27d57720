package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(hub *Hub, userID uint64) *Client {
	return &Client{hub: hub, send: make(chan []byte, sendBuffer), userID: userID}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestHubDeliversToEveryConnectionOfUser(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	a1 := newTestClient(hub, 1)
	a2 := newTestClient(hub, 1)
	b := newTestClient(hub, 2)
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)
	waitFor(t, func() bool { return hub.ConnectedClients(1) == 2 })
	waitFor(t, func() bool { return hub.TotalClients() == 3 })

	hub.SendToUser(1, &Event{Type: EventMessageCreated, Payload: map[string]int{"id": 7}})

	for _, c := range []*Client{a1, a2} {
		select {
		case data := <-c.send:
			var ev Event
			require.NoError(t, json.Unmarshal(data, &ev))
			assert.Equal(t, EventMessageCreated, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	select {
	case <-b.send:
		t.Fatal("event delivered to wrong user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	c := newTestClient(hub, 3)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ConnectedClients(3) == 1 })

	hub.Unregister(c)
	waitFor(t, func() bool { return hub.ConnectedClients(3) == 0 })

	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	c := &Client{hub: hub, send: make(chan []byte), userID: 4} // unbuffered, never read
	hub.Register(c)
	waitFor(t, func() bool { return hub.ConnectedClients(4) == 1 })

	hub.SendToUser(4, &Event{Type: EventConversationUpdated})
	waitFor(t, func() bool { return hub.ConnectedClients(4) == 0 })
}

func TestHubStopClosesClientsAndIgnoresLateSends(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	c := newTestClient(hub, 5)
	hub.Register(c)
	waitFor(t, func() bool { return hub.ConnectedClients(5) == 1 })

	hub.Stop()
	_, ok := <-c.send
	assert.False(t, ok)

	// must not block after shutdown
	hub.SendToUser(5, &Event{Type: EventMessageCreated})
	hub.Unregister(c)
}

func TestClientPumpsOverRealConnection(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, 9)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	waitFor(t, func() bool { return hub.ConnectedClients(9) == 1 })

	hub.SendToUser(9, &Event{Type: EventMessageCreated, Payload: "hello"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	var pong Event
	require.NoError(t, json.Unmarshal(data, &pong))
	assert.Equal(t, EventPong, pong.Type)

	conn.Close()
	waitFor(t, func() bool { return hub.ConnectedClients(9) == 0 })
}
