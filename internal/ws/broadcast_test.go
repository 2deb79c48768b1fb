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

	"github.com/code-arsenal/arsenal/internal/logging"
)

// dialTestWS creates a test HTTP server that upgrades to WebSocket and returns
// the server-side connection plus the client side. The caller must close the
// server.
func dialTestWS(t *testing.T) (*httptest.Server, *websocket.Conn, *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- c
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	select {
	case serverConn := <-connCh:
		return srv, serverConn, clientConn
	case <-time.After(2 * time.Second):
		srv.Close()
		t.Fatal("timed out waiting for server-side WebSocket connection")
		return nil, nil, nil
	}
}

func TestAddClient_MaxConnections(t *testing.T) {
	const maxConns = 2
	b := NewBroadcaster(maxConns, logging.Discard())
	defer b.Close()

	for i := 0; i < maxConns; i++ {
		srv, conn, peer := dialTestWS(t)
		defer srv.Close()
		defer peer.Close()
		_, err := b.AddClient(conn)
		require.NoError(t, err)
	}
	assert.Equal(t, maxConns, b.ClientCount())

	srv, conn, peer := dialTestWS(t)
	defer srv.Close()
	defer peer.Close()
	defer conn.Close()
	_, err := b.AddClient(conn)
	assert.ErrorIs(t, err, ErrTooManyClients)
	assert.Equal(t, maxConns, b.ClientCount())
}

func TestAddClient_SendsSnapshotFirst(t *testing.T) {
	b := NewBroadcaster(0, logging.Discard())
	defer b.Close()
	b.snapshot = func() SnapshotPayload { return SnapshotPayload{} }

	srv, conn, peer := dialTestWS(t)
	defer srv.Close()
	defer peer.Close()

	_, err := b.AddClient(conn)
	require.NoError(t, err)
	b.Publish(MsgError, ErrorPayload{Message: "boom"})

	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second WSMessage
	require.NoError(t, peer.ReadJSON(&first))
	require.NoError(t, peer.ReadJSON(&second))
	assert.Equal(t, MsgSnapshot, first.Type)
	assert.Equal(t, MsgError, second.Type)
}

func TestBroadcast_DropsSlowClient(t *testing.T) {
	b := NewBroadcaster(0, logging.Discard())
	srv, conn, peer := dialTestWS(t)
	defer srv.Close()
	defer peer.Close()
	defer conn.Close()

	// No write pump drains this channel, so the first send finds it full.
	slow := &client{conn: conn, send: make(chan []byte)}
	b.clients[slow] = true

	var counts []int
	b.OnClientCount(func(n int) { counts = append(counts, n) })

	b.Publish(MsgProfile, map[string]string{"username": "x"})

	assert.Equal(t, 0, b.ClientCount())
	assert.Equal(t, []int{0}, counts)
	_, open := <-slow.send
	assert.False(t, open, "slow client's channel should be closed")
}

func TestRemoveClient_Idempotent(t *testing.T) {
	b := NewBroadcaster(0, logging.Discard())
	srv, conn, peer := dialTestWS(t)
	defer srv.Close()
	defer peer.Close()

	c, err := b.AddClient(conn)
	require.NoError(t, err)
	b.RemoveClient(c)
	b.RemoveClient(c)
	assert.Equal(t, 0, b.ClientCount())
}

func TestPublish_MarshalsPayload(t *testing.T) {
	b := NewBroadcaster(0, logging.Discard())
	defer b.Close()
	srv, conn, peer := dialTestWS(t)
	defer srv.Close()
	defer peer.Close()

	_, err := b.AddClient(conn)
	require.NoError(t, err)
	b.Publish(MsgSession, SessionPayload{Event: "opened", Multiplier: 1.1, OpenCount: 1})

	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := peer.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    MessageType    `json:"type"`
		Payload SessionPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MsgSession, msg.Type)
	assert.Equal(t, "opened", msg.Payload.Event)
	assert.Equal(t, 1.1, msg.Payload.Multiplier)
}
