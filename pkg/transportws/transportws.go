// Package transportws implements the device/web-client duplex channel of
// spec.md §6.1: a single gorilla/websocket connection carrying UTF-8 JSON
// text frames (the control protocol in pkg/protocol) interleaved with
// opaque binary frames (60 ms Opus packets at 16 kHz mono). It plays the
// role original_source's conn_mqtt.go plays for the teacher's MQTT
// transport, and is grounded in shape on
// ent0n29-samantha/internal/httpapi/server.go's handleSessionWS (upgrade,
// read loop, single-writer goroutine draining an outbound channel).
package transportws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readLimit = 1 << 20
	pongWait  = 90 * time.Second
	writeWait = 10 * time.Second
)

// Upgrader wraps websocket.Upgrader, defaulting CheckOrigin to "allow same
// origin or no Origin header" unless AllowAnyOrigin is set — the same
// policy ent0n29-samantha/internal/httpapi/server.go applies for its own
// browser-facing websocket endpoint.
type Upgrader struct {
	AllowAnyOrigin bool
}

// Upgrade promotes an HTTP request to a Conn.
func (u Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	up := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if u.AllowAnyOrigin {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || sameHost(origin, r.Host)
		},
	}
	raw, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("transportws: upgrade: %w", err)
	}
	return newConn(raw), nil
}

func sameHost(origin, host string) bool {
	// A minimal same-origin check: the Host header must appear verbatim
	// in the Origin URL, which is all spec.md's same-device/browser
	// deployment model needs (no cross-origin device control surface is
	// specified).
	return len(origin) >= len(host) && origin[len(origin)-len(host):] == host
}

// FrameKind (TextFrame or BinaryFrame) classifies a received frame.
type FrameKind int

const (
	TextFrame FrameKind = iota
	BinaryFrame
)

// Conn is one upgraded device/web-client connection. Reads happen on
// whatever goroutine calls ReadFrame (normally one per connection, serialized
// per spec.md §5's "inbound dispatcher: one task per channel"); writes are
// serialized internally since gorilla/websocket forbids concurrent writers.
type Conn struct {
	raw *websocket.Conn

	writeMu sync.Mutex
}

func newConn(raw *websocket.Conn) *Conn {
	raw.SetReadLimit(readLimit)
	_ = raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		_ = raw.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return &Conn{raw: raw}
}

// ReadFrame blocks for the next frame, classifying it as text or binary.
// Any other gorilla message type (ping/pong/close) is handled internally
// by the underlying connection and never reaches the caller.
func (c *Conn) ReadFrame() (FrameKind, []byte, error) {
	for {
		mt, data, err := c.raw.ReadMessage()
		if err != nil {
			return 0, nil, err
		}
		switch mt {
		case websocket.TextMessage:
			return TextFrame, data, nil
		case websocket.BinaryMessage:
			return BinaryFrame, data, nil
		default:
			continue
		}
	}
}

// WriteJSON marshals v and sends it as one text frame.
func (c *Conn) WriteJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("transportws: marshal: %w", err)
	}
	return c.writeFrame(websocket.TextMessage, data)
}

// WriteBinary sends raw bytes (one Opus frame) as one binary frame.
func (c *Conn) WriteBinary(ctx context.Context, data []byte) error {
	return c.writeFrame(websocket.BinaryMessage, data)
}

// WriteText sends already-marshaled bytes as one text frame, for callers
// that assemble their own JSON envelope (pkg/mcp's Bridge forwards its
// JSON-RPC envelope this way rather than through WriteJSON).
func (c *Conn) WriteText(ctx context.Context, data []byte) error {
	return c.writeFrame(websocket.TextMessage, data)
}

func (c *Conn) writeFrame(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
	return c.raw.WriteMessage(messageType, data)
}

// Close terminates the connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}
