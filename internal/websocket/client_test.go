package websocket

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
)

// serveClient upgrades one connection and hands the server-side client to ready
func serveClient(t *testing.T, hub *Hub, ready chan<- *Client) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, "joe", hub)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
		ready <- client
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestClient_ForwardWritesSnapshots(t *testing.T) {
	hub := NewHub()
	ready := make(chan *Client, 1)
	srv := serveClient(t, hub, ready)

	conn := dial(t, srv)
	defer conn.Close()
	client := <-ready

	updates := make(chan interface{}, 2)
	updates <- map[string]string{"total": "100"}
	updates <- map[string]string{"total": "250"}
	close(updates)
	go client.Forward(EntityTypeExpenseReport, updates)

	for _, want := range []string{"100", "250"} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var evt struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &evt))
		assert.Equal(t, "expense_report.snapshot", evt.Type)
		assert.Equal(t, want, evt.Payload["total"])
	}
}

func TestClient_ContextCancelledWhenPeerLeaves(t *testing.T) {
	hub := NewHub()
	ready := make(chan *Client, 1)
	srv := serveClient(t, hub, ready)

	conn := dial(t, srv)
	client := <-ready
	assert.Equal(t, 1, hub.ClientCount("joe"))

	conn.Close()

	select {
	case <-client.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client context was not cancelled after the peer disconnected")
	}
	assert.True(t, client.IsClosed())
	assert.Eventually(t, func() bool { return hub.ClientCount("joe") == 0 }, time.Second, 5*time.Millisecond)
}

func TestClient_SendAfterClose(t *testing.T) {
	hub := NewHub()
	ready := make(chan *Client, 1)
	srv := serveClient(t, hub, ready)

	conn := dial(t, srv)
	defer conn.Close()
	client := <-ready

	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Send([]byte("x")), ErrClientClosed)
	assert.NotPanics(t, func() { client.Close() })
}
