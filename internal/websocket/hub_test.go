package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFeed(t *testing.T) (*Hub, string, chan struct{}) {
	t.Helper()

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	joined := make(chan struct{}, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, "admin-1")
		if !hub.Join(client) {
			conn.Close()
			return
		}
		joined <- struct{}{}
		go client.WritePump()
		client.ReadPump(nil)
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), joined
}

func TestHubBroadcastsToClients(t *testing.T) {
	hub, url, joined := startFeed(t)

	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()
		conns = append(conns, conn)

		select {
		case <-joined:
		case <-time.After(2 * time.Second):
			t.Fatal("client never joined the hub")
		}
	}

	hub.Publish([]byte(`{"action":"event","payload":{"type":"user.login"}}`))

	for _, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"event","payload":{"type":"user.login"}}`, string(msg))
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	client := &Client{hub: hub, Send: make(chan []byte, 1)}
	require.True(t, hub.Join(client))

	hub.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	_, open := <-client.Send
	assert.False(t, open)

	assert.False(t, hub.Join(&Client{hub: hub, Send: make(chan []byte)}))
	for i := 0; i < 10; i++ {
		hub.Publish([]byte("dropped"))
	}
	assert.Empty(t, hub.Broadcast)
	hub.Leave(client)
}
