package observer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesViewers(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Mux())
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(map[string]int{"turn": 42})

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type string         `json:"type"`
			Data map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		require.Equal(t, "turn", msg.Type)
		require.Equal(t, 42, msg.Data["turn"])
	}
}

func TestViewerLeaveIsTracked(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Mux())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	// No viewers: broadcasting is a no-op.
	hub.Broadcast("nobody")
}

func TestStatusHandler(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(1)
	hub.Broadcast(2)

	srv := httptest.NewServer(hub.Mux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]uint64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Equal(t, uint64(2), status["broadcasts"])
	require.Equal(t, uint64(0), status["clients"])
	require.Equal(t, uint64(0), status["dropped"])
}

func TestLaggingViewerDropsFrames(t *testing.T) {
	hub := NewHub()
	id, out := hub.join()

	// Nobody drains out, so everything past the buffer is dropped without blocking.
	for i := 0; i < clientBuffer+6; i++ {
		hub.Broadcast(i)
	}
	require.Len(t, out, clientBuffer)
	require.Equal(t, uint64(6), hub.dropped.Load())

	hub.leave(id)
	hub.leave(id)
	_, open := <-out
	require.True(t, open, "buffered frames are still readable after leave")
	require.Equal(t, 0, hub.Clients())
}

func TestCloseEndsViewersNormally(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Mux())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	require.Equal(t, 0, hub.Clients())
}

func TestRejectsNonLoopback(t *testing.T) {
	hub := NewHub()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = "203.0.113.5:4000"
	hub.StatusHandler()(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIsLoopbackRemote(t *testing.T) {
	require.True(t, isLoopbackRemote("127.0.0.1:9000"))
	require.True(t, isLoopbackRemote("[::1]:9000"))
	require.False(t, isLoopbackRemote("10.0.0.1:9000"))
	require.True(t, isLoopbackRemote("127.0.0.1"))
	require.True(t, isLoopbackRemote("[::1]"))
	require.False(t, isLoopbackRemote("garbage"))
}
