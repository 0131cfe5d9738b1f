package notifier

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const (
	writeWait = 5 * time.Second

	// sendBuffer is the per-connection event backlog. A dashboard that falls
	// this far behind is dropped rather than blocking the write endpoints.
	sendBuffer = 16
)

// Hub pushes view-invalidation events to connected dashboards. After a
// successful write the controllers call Invalidate with the paths whose
// cached renderings are now stale; every connected dashboard receives the
// list and refetches.
//
// Each connection has a single writer goroutine draining a buffered send
// channel. Invalidate only enqueues, so concurrent request goroutines never
// touch the same websocket connection.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]chan InvalidationEvent
}

// InvalidationEvent is the wire shape pushed to dashboards.
type InvalidationEvent struct {
	Paths []string `json:"invalidate"`
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Dashboards are served from another origin in development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]chan InvalidationEvent),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the peer goes away. Incoming frames are drained and discarded; the feed is
// one-way.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Error("websocket upgrade failed")
		return
	}

	send := make(chan InvalidationEvent, sendBuffer)

	h.mu.Lock()
	h.conns[conn] = send
	h.mu.Unlock()

	logger.WithField("remote", conn.RemoteAddr().String()).
		Debug("dashboard connected to invalidation feed")

	go h.writeLoop(conn, send)

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// writeLoop is the sole writer for its connection.
func (h *Hub) writeLoop(conn *websocket.Conn, send <-chan InvalidationEvent) {
	for event := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			logger.WithError(err).Debug("dropping stale invalidation feed connection")
			h.drop(conn)
			return
		}
	}
}

// Invalidate enqueues the stale paths for every connected dashboard.
// Connections whose backlog is full are dropped instead of blocking the
// calling request goroutine.
func (h *Hub) Invalidate(paths ...string) {
	if len(paths) == 0 {
		return
	}

	event := InvalidationEvent{Paths: paths}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, send := range h.conns {
		select {
		case send <- event:
		default:
			logger.Debug("dropping slow invalidation feed connection")
			delete(h.conns, conn)
			close(send)
			_ = conn.Close()
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if send, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(send)
	}
	h.mu.Unlock()
	_ = conn.Close()
}
