package notifier

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// The dial returns on the upgrade response; registration happens just
	// after, so wait for the hub to actually know the peer.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.conns) == 1
	}, time.Second, 5*time.Millisecond)

	return conn
}

func TestInvalidateBroadcastsToConnectedDashboard(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	hub.Invalidate("/", "/ordenes")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event InvalidationEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, []string{"/", "/ordenes"}, event.Paths)
}

func TestInvalidateWithNoPathsIsANoOp(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	hub.Invalidate()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))

	var event InvalidationEvent
	assert.Error(t, conn.ReadJSON(&event), "no event should have been broadcast")
}

// Concurrent write endpoints invalidate simultaneously; every frame a
// dashboard receives must still decode cleanly. Run with -race this also
// verifies that only the per-connection writer goroutine touches the conn.
func TestInvalidateConcurrentCallersKeepFramesIntact(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	received := make(chan InvalidationEvent, 1024)
	go func() {
		defer close(received)
		for {
			var event InvalidationEvent
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			received <- event
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				hub.Invalidate("/", "/ordenes")
			}
		}()
	}
	wg.Wait()

	// The reader drains until the deadline (or until the hub dropped the
	// connection for falling behind). Whatever arrived must be intact.
	delivered := 0
	for event := range received {
		require.Equal(t, []string{"/", "/ordenes"}, event.Paths)
		delivered++
	}
	assert.Greater(t, delivered, 0, "at least one event must reach the dashboard")
}
