package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type recordingSender struct {
	sent [][]byte
}

func (s *recordingSender) SendText(ctx context.Context, data []byte) error {
	s.sent = append(s.sent, data)
	return nil
}

func lastRequestID(t *testing.T, sender *recordingSender) int64 {
	t.Helper()
	if len(sender.sent) == 0 {
		t.Fatal("expected at least one sent frame")
	}
	var env envelope
	if err := json.Unmarshal(sender.sent[len(sender.sent)-1], &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	var req Request
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	return req.ID
}

func respond(t *testing.T, b *Bridge, id int64, result any, rpcErr *RPCError) {
	t.Helper()
	resp := Response{JSONRPC: "2.0", ID: id}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("marshal result: %v", err)
		}
		resp.Result = raw
	}
	resp.Error = rpcErr
	payload, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	frame, err := json.Marshal(envelope{Type: "mcp", SessionID: "sess-1", Payload: payload})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	b.HandleResponse(frame)
}

func TestInitializeRoundTrip(t *testing.T) {
	sender := &recordingSender{}
	b := New("sess-1", sender, "http://vision", 0, nil)

	done := make(chan struct{})
	var ok bool
	var err error
	go func() {
		ok, err = b.Initialize(context.Background())
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	respond(t, b, lastRequestID(t, sender), map[string]any{"protocolVersion": "2024-11-05"}, nil)

	<-done
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !ok {
		t.Fatal("expected Initialize to report success")
	}
}

func TestListToolsStopsWhenNextCursorEmpty(t *testing.T) {
	sender := &recordingSender{}
	b := New("sess-1", sender, "", 32, nil)

	done := make(chan struct{})
	var descriptors []ToolDescriptor
	var err error
	go func() {
		descriptors, err = b.ListTools(context.Background(), 0)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	respond(t, b, lastRequestID(t, sender), map[string]any{
		"tools": []map[string]any{
			{"name": "turn_on_light", "description": "turn on the light", "inputSchema": map[string]any{"type": "object"}},
		},
		"nextCursor": "",
	}, nil)

	<-done
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(descriptors) != 1 || descriptors[0].Name != "turn_on_light" {
		t.Fatalf("unexpected descriptors: %+v", descriptors)
	}
}

func TestListToolsRespectsMaxToolsCount(t *testing.T) {
	sender := &recordingSender{}
	b := New("sess-1", sender, "", 2, nil)

	done := make(chan struct{})
	var descriptors []ToolDescriptor
	var err error
	go func() {
		descriptors, err = b.ListTools(context.Background(), 1)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	respond(t, b, lastRequestID(t, sender), map[string]any{
		"tools": []map[string]any{
			{"name": "a", "description": "a"},
			{"name": "b", "description": "b"},
		},
		"nextCursor": "",
	}, nil)

	<-done
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(descriptors) != 0 {
		t.Fatalf("expected the page to be dropped once it would exceed the cap, got %+v", descriptors)
	}
}

func TestCallMcpToolReturnsContentOnSuccess(t *testing.T) {
	sender := &recordingSender{}
	b := New("sess-1", sender, "", 0, nil)

	done := make(chan struct{})
	var result string
	var err error
	go func() {
		result, err = b.CallMcpTool(context.Background(), "turn_on_light", map[string]any{"brightness": 80})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	respond(t, b, lastRequestID(t, sender), map[string]any{
		"isError": false,
		"content": []map[string]any{{"type": "text", "text": "灯已打开"}},
	}, nil)

	<-done
	if err != nil {
		t.Fatalf("CallMcpTool: %v", err)
	}
	if result != "灯已打开" {
		t.Fatalf("expected the text content, got %q", result)
	}
}

func TestCallMcpToolReturnsErrorOnCanceledContext(t *testing.T) {
	sender := &recordingSender{}
	b := New("sess-1", sender, "", 0, nil)
	// Never respond, and call CallMcpTool with an already canceled context:
	// the wait ends on ctx.Done and the error is returned to the caller.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.CallMcpTool(ctx, "unreachable", nil)
	if err == nil {
		t.Fatal("expected the canceled context to surface an error")
	}
}

func TestHandleResponseIgnoresUnknownID(t *testing.T) {
	sender := &recordingSender{}
	b := New("sess-1", sender, "", 0, nil)
	// Should not panic even though no request is pending for id 999.
	respond(t, b, 999, map[string]any{}, nil)
}
