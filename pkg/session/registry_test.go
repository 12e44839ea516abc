package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aivox/dialoguecore/pkg/transportws"

	"github.com/gorilla/websocket"
)

// newTestServerConn starts a throwaway websocket server and returns the
// server-side *transportws.Conn (the half a Session owns), mirroring
// pkg/transportws's own newTestServer/dial test helpers.
func newTestServerConn(t *testing.T) *transportws.Conn {
	t.Helper()
	connCh := make(chan *transportws.Conn, 1)
	up := transportws.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- c
	}))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, _, err := websocket.DefaultDialer.DialContext(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return <-connCh
}

func newSessionWithConn(t *testing.T, deviceID string) *Session {
	t.Helper()
	conn := newTestServerConn(t)
	return &Session{
		ID:           "sess-" + deviceID,
		conn:         conn,
		log:          testLogger(),
		emitter:      &wsEmitter{sessionID: "sess-" + deviceID, conn: conn},
		deviceID:     deviceID,
		mode:         "auto",
		lastActivity: time.Now(),
		iotStates:    make(map[string]map[string]any),
	}
}

func TestRegistryAddEvictsEarlierSessionForSameDevice(t *testing.T) {
	r := NewRegistry(context.Background(), 0, testLogger())
	t.Cleanup(r.Close)

	first := newSessionWithConn(t, "device-1")
	second := newSessionWithConn(t, "device-1")

	r.Add(first)
	if got, ok := r.ByDevice("device-1"); !ok || got != first {
		t.Fatalf("ByDevice after first Add = %v, %v", got, ok)
	}

	r.Add(second)
	if got, ok := r.ByDevice("device-1"); !ok || got != second {
		t.Fatalf("ByDevice after second Add = %v, %v, want second session", got, ok)
	}

	// The evicted session's connection should now be closed.
	if _, _, err := first.conn.ReadFrame(); err == nil {
		t.Fatal("expected the evicted session's connection to be closed")
	}
}

func TestRegistryRemoveIsNoopForSupersededSession(t *testing.T) {
	r := NewRegistry(context.Background(), 0, testLogger())
	t.Cleanup(r.Close)

	first := newSessionWithConn(t, "device-1")
	second := newSessionWithConn(t, "device-1")
	r.Add(first)
	r.Add(second)

	// Removing the superseded session must not drop the newer one.
	r.Remove(first)
	if got, ok := r.ByDevice("device-1"); !ok || got != second {
		t.Fatalf("ByDevice after stale Remove = %v, %v, want second session still present", got, ok)
	}

	r.Remove(second)
	if _, ok := r.ByDevice("device-1"); ok {
		t.Fatal("expected no session after removing the current one")
	}
}

func TestRegistryTryStartBindingGuardsConcurrentAttempts(t *testing.T) {
	r := NewRegistry(context.Background(), 0, testLogger())
	t.Cleanup(r.Close)

	if !r.tryStartBinding("device-1") {
		t.Fatal("expected the first binding attempt to be allowed")
	}
	if r.tryStartBinding("device-1") {
		t.Fatal("expected a second concurrent binding attempt to be refused")
	}

	r.finishBinding("device-1")
	if !r.tryStartBinding("device-1") {
		t.Fatal("expected a binding attempt to be allowed again after finishBinding")
	}
}

func TestRegistryReapInactiveClosesStaleSessions(t *testing.T) {
	r := NewRegistry(context.Background(), time.Minute, testLogger())
	t.Cleanup(r.Close)

	stale := newSessionWithConn(t, "device-stale")
	stale.lastActivity = time.Now().Add(-2 * time.Minute)
	fresh := newSessionWithConn(t, "device-fresh")

	r.Add(stale)
	r.Add(fresh)
	r.reapInactive()

	if _, _, err := stale.conn.ReadFrame(); err == nil {
		t.Fatal("expected the stale session's connection to be closed by reapInactive")
	}
	if err := fresh.conn.WriteJSON(context.Background(), map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("expected the fresh session's connection to remain open: %v", err)
	}
}

func TestRegistryCloseClosesEverySession(t *testing.T) {
	r := NewRegistry(context.Background(), 0, testLogger())
	a := newSessionWithConn(t, "device-a")
	b := newSessionWithConn(t, "device-b")
	r.Add(a)
	r.Add(b)

	r.Close()

	if _, _, err := a.conn.ReadFrame(); err == nil {
		t.Fatal("expected session a's connection to be closed")
	}
	if _, _, err := b.conn.ReadFrame(); err == nil {
		t.Fatal("expected session b's connection to be closed")
	}
}
