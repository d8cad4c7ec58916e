// Package observer streams turn results to local websocket viewers.
package observer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 64
	writeWait    = 5 * time.Second
)

// Message is the frame pushed to every viewer.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans broadcasts out to connected viewers. Slow viewers drop frames
// rather than stalling the turn loop.
type Hub struct {
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.RWMutex
	clients map[uint64]chan []byte
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only, see WSHandler
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Broadcast sends v as a "turn" frame to every viewer.
func (h *Hub) Broadcast(v any) {
	b, err := json.Marshal(Message{Type: "turn", Data: v})
	if err != nil {
		slog.Warn("observer marshal failed", "error", err)
		return
	}
	h.sent.Add(1)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, out := range h.clients {
		select {
		case out <- b:
		default:
			h.dropped.Add(1)
			slog.Debug("observer lagging, frame dropped", "client", id)
		}
	}
}

// Clients reports how many viewers are connected.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) join() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	out := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[id] = out
	h.mu.Unlock()
	return id, out
}

// leave closes the viewer's frame channel, which tells its writer to send
// the close frame and stop. Safe to call after Close.
func (h *Hub) leave(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if out, ok := h.clients[id]; ok {
		close(out)
		delete(h.clients, id)
	}
}

// Close ends every viewer session with a normal closure. http.Server.Shutdown
// does not reach hijacked websocket connections, so main calls this first.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, out := range h.clients {
		close(out)
		delete(h.clients, id)
	}
}

// StatusHandler reports hub counters as JSON.
func (h *Hub) StatusHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]uint64{
			"clients":    uint64(h.Clients()),
			"broadcasts": h.sent.Load(),
			"dropped":    h.dropped.Load(),
		})
	}
}

func (h *Hub) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Debug("observer upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		id, out := h.join()
		slog.Info("observer connected", "client", id, "remote", r.RemoteAddr)

		done := make(chan struct{})
		go pump(conn, out, done)

		// Viewers never send anything meaningful; reading only notices a close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.leave(id)
		<-done
		conn.Close()
		slog.Info("observer disconnected", "client", id)
	}
}

// pump is the only writer on conn. It forwards frames until the hub closes
// out, then says goodbye. A failed write closes conn so the reader unblocks;
// frames broadcast after that are dropped by the hub like any lagging viewer.
func pump(conn *websocket.Conn, out <-chan []byte, done chan<- struct{}) {
	defer close(done)
	for b := range out {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			conn.Close()
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match over"),
		time.Now().Add(writeWait))
}

// Mux wires the observer routes.
func (h *Hub) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.WSHandler())
	mux.HandleFunc("/status", h.StatusHandler())
	return mux
}

// isLoopbackRemote accepts "host:port" or a bare host, bracketed or not.
func isLoopbackRemote(remoteAddr string) bool {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().IsLoopback()
	}
	addr, err := netip.ParseAddr(strings.Trim(remoteAddr, "[]"))
	return err == nil && addr.IsLoopback()
}
