package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aivox/dialoguecore/pkg/config"
	"github.com/aivox/dialoguecore/pkg/genx"
	"github.com/aivox/dialoguecore/pkg/protocol"
	"github.com/aivox/dialoguecore/pkg/stt"
	"github.com/aivox/dialoguecore/pkg/store"
	"github.com/aivox/dialoguecore/pkg/transportws"
	"github.com/aivox/dialoguecore/pkg/tts"

	"github.com/gorilla/websocket"
)

// unreachableGenerator fails the test if the chat engine ever actually
// drives the model, which none of these tests (control-frame routing,
// binding) should do.
type unreachableGenerator struct{ t *testing.T }

func (g unreachableGenerator) GenerateStream(context.Context, string, genx.ModelContext) (genx.Stream, error) {
	g.t.Fatal("unexpected call to GenerateStream")
	return nil, nil
}

func (g unreachableGenerator) Invoke(context.Context, string, genx.ModelContext, *genx.FuncTool) (genx.Usage, *genx.FuncCall, error) {
	g.t.Fatal("unexpected call to Invoke")
	return genx.Usage{}, nil, nil
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	cfg := &config.Config{
		AudioPath:              t.TempDir(),
		InactiveTimeoutSeconds: 0,
		CheckInactiveSession:   false,
		ServerDomain:           "https://dialoguecore.test",
		DefaultRoleID:          "role-1",
	}
	devices := store.NewKVDeviceStore(newMemoryKV())
	if err := devices.AddRole(context.Background(), store.Role{
		ID:           "role-1",
		SystemPrompt: "be helpful",
		Temperature:  0.7,
		TopP:         0.9,
	}); err != nil {
		t.Fatalf("AddRole: %v", err)
	}
	configs := store.NewStaticConfigStore(cfg)
	messages := store.NewKVMessageStore(newMemoryKV())
	convKV := newMemoryKV()

	sttFactory := stt.NewFactory(nil, testLogger())
	ttsFactory := tts.NewFactory(nil, t.TempDir(), testLogger())

	return NewRouter(context.Background(), cfg, configs, devices, messages, convKV,
		unreachableGenerator{t: t}, sttFactory, ttsFactory, testLogger())
}

// connectDevice drives one HandleConnection end to end against deviceID:
// dial, send the client hello, and read back the hello response.
func connectDevice(t *testing.T, rt *Router, deviceID string) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := transportws.Upgrader{}
		conn, err := up.Upgrade(w, r)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		rt.HandleConnection(context.Background(), deviceID, conn)
	}))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, _, err := websocket.DefaultDialer.DialContext(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	hello := protocol.Hello{Type: protocol.TypeHello}
	if err := client.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read hello response: %v", err)
	}
	var resp protocol.HelloResp
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal hello response: %v", err)
	}
	if resp.Type != protocol.TypeHello || resp.SessionID == "" {
		t.Fatalf("unexpected hello response: %+v", resp)
	}
	return client
}

func TestHandleConnectionBindsVirtualDeviceImmediately(t *testing.T) {
	rt := newTestRouter(t)
	t.Cleanup(rt.Close)

	client := connectDevice(t, rt, virtualDevicePrefix+"u1")

	client.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := client.WriteJSON(protocol.Abort{Type: protocol.TypeAbort, Reason: "test"}); err != nil {
		t.Fatalf("write abort: %v", err)
	}

	// The spawned mcp initialize request can land on the wire before or
	// after the abort's tts-stop reply, so skip over it rather than
	// asserting a fixed frame order.
	if !readUntilContains(t, client, `"state":"stop"`) {
		t.Fatal("expected a tts stop frame after abort")
	}
}

// readUntilContains reads frames until one contains needle or the deadline
// elapses, skipping over any others (e.g. a concurrently spawned mcp
// request) in between.
func readUntilContains(t *testing.T, client *websocket.Conn, needle string) bool {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		client.SetReadDeadline(deadline)
		_, data, err := client.ReadMessage()
		if err != nil {
			return false
		}
		if strings.Contains(string(data), needle) {
			return true
		}
	}
	return false
}

func TestHandleConnectionHoldsUnboundHardwareDeviceForVerification(t *testing.T) {
	rt := newTestRouter(t)
	t.Cleanup(rt.Close)

	client := connectDevice(t, rt, "hw-device-1")

	// The device has no role yet, so it should receive a spoken
	// verification-code sequence (tts start, sentence_start, then binary
	// opus frames, then tts stop) instead of being bound.
	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read tts start: %v", err)
	}
	if !strings.Contains(string(data), `"state":"start"`) {
		t.Fatalf("expected tts start frame, got %s", data)
	}

	dev, ok, err := rt.devices.DeviceByID(context.Background(), "hw-device-1")
	if err != nil || !ok {
		t.Fatalf("expected hw-device-1 to be registered: ok=%v err=%v", ok, err)
	}
	if dev.RoleID != "" {
		t.Fatalf("expected an unverified hardware device to remain unbound, got role %q", dev.RoleID)
	}
}

func TestHandleConnectionGoodbyeClosesBoundSession(t *testing.T) {
	rt := newTestRouter(t)
	t.Cleanup(rt.Close)

	deviceID := "hw-device-bound"
	if err := rt.devices.AddDevice(context.Background(), store.Device{ID: deviceID, RoleID: "role-1"}); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	client := connectDevice(t, rt, deviceID)

	client.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := client.WriteJSON(protocol.Goodbye{Type: protocol.TypeGoodbye}); err != nil {
		t.Fatalf("write goodbye: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := client.ReadMessage(); err != nil {
			break
		}
	}

	dev, ok, err := rt.devices.DeviceByID(context.Background(), deviceID)
	if err != nil || !ok {
		t.Fatalf("DeviceByID after goodbye: ok=%v err=%v", ok, err)
	}
	if dev.State != 0 {
		t.Fatalf("expected device state to be offline (0) after goodbye, got %d", dev.State)
	}
}
