package transportws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handler func(*Conn)) *httptest.Server {
	t.Helper()
	up := Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r)
		if err != nil {
			t.Errorf("Upgrade: %v", err)
			return
		}
		handler(conn)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.DialContext(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConnWriteJSONRoundTripsAsTextFrame(t *testing.T) {
	type payload struct {
		Type string `json:"type"`
	}

	ts := newTestServer(t, func(c *Conn) {
		if err := c.WriteJSON(context.Background(), payload{Type: "hello"}); err != nil {
			t.Errorf("WriteJSON: %v", err)
		}
	})

	client := dial(t, ts)
	mt, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Fatalf("message type = %d, want TextMessage", mt)
	}
	if string(data) != `{"type":"hello"}` {
		t.Fatalf("payload = %s, want hello envelope", data)
	}
}

func TestConnWriteBinarySendsOpaqueFrame(t *testing.T) {
	opusFrame := []byte{0x01, 0x02, 0x03, 0xff}

	ts := newTestServer(t, func(c *Conn) {
		if err := c.WriteBinary(context.Background(), opusFrame); err != nil {
			t.Errorf("WriteBinary: %v", err)
		}
	})

	client := dial(t, ts)
	mt, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want BinaryMessage", mt)
	}
	if string(data) != string(opusFrame) {
		t.Fatalf("payload = %v, want %v", data, opusFrame)
	}
}

func TestConnReadFrameClassifiesTextAndBinary(t *testing.T) {
	done := make(chan struct{})
	var gotKinds []FrameKind
	var gotPayloads [][]byte

	ts := newTestServer(t, func(c *Conn) {
		defer close(done)
		for i := 0; i < 2; i++ {
			kind, data, err := c.ReadFrame()
			if err != nil {
				t.Errorf("ReadFrame: %v", err)
				return
			}
			gotKinds = append(gotKinds, kind)
			gotPayloads = append(gotPayloads, data)
		}
	})

	client := dial(t, ts)
	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"goodbye"}`)); err != nil {
		t.Fatalf("WriteMessage text: %v", err)
	}
	if err := client.WriteMessage(websocket.BinaryMessage, []byte{0xaa, 0xbb}); err != nil {
		t.Fatalf("WriteMessage binary: %v", err)
	}

	<-done

	if len(gotKinds) != 2 || gotKinds[0] != TextFrame || gotKinds[1] != BinaryFrame {
		t.Fatalf("unexpected frame kinds: %v", gotKinds)
	}
	if string(gotPayloads[0]) != `{"type":"goodbye"}` {
		t.Fatalf("text payload = %s", gotPayloads[0])
	}
	if string(gotPayloads[1]) != string([]byte{0xaa, 0xbb}) {
		t.Fatalf("binary payload = %v", gotPayloads[1])
	}
}

func TestConnCloseEndsReadFrame(t *testing.T) {
	closed := make(chan struct{})

	ts := newTestServer(t, func(c *Conn) {
		c.Close()
		close(closed)
	})

	client := dial(t, ts)
	<-closed

	if _, _, err := client.ReadMessage(); err == nil {
		t.Fatal("expected ReadMessage to fail after the server closed the connection")
	}
}

func TestUpgraderRejectsCrossOriginRequestByDefault(t *testing.T) {
	ts := newTestServer(t, func(c *Conn) { c.Close() })

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.DialContext(context.Background(), wsURL, header)
	if err == nil {
		t.Fatal("expected the handshake to fail for a cross-origin request")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("status = %d, want %d", status, http.StatusForbidden)
	}
}
