package chatengine

import (
	"context"
	"testing"

	"github.com/aivox/dialoguecore/pkg/genx"
	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/aivox/dialoguecore/pkg/memory"
	"github.com/aivox/dialoguecore/pkg/store"
	"github.com/aivox/dialoguecore/pkg/tools"

	"google.golang.org/api/iterator"
)

func newTestConversation(t *testing.T) *memory.Conversation {
	t.Helper()
	s := kv.NewMemory(nil)
	t.Cleanup(func() { s.Close() })
	return memory.NewConversation(s, "device-1", "role-1", 20)
}

type fakeStream struct {
	chunks []*genx.MessageChunk
	pos    int
}

func (s *fakeStream) Next() (*genx.MessageChunk, error) {
	if s.pos >= len(s.chunks) {
		return nil, genx.ErrDone
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}
func (s *fakeStream) Close() error               { return nil }
func (s *fakeStream) CloseWithError(error) error { return nil }

func textChunk(s string) *genx.MessageChunk {
	return &genx.MessageChunk{Role: genx.RoleModel, Part: genx.Text(s)}
}

func toolCallChunk(call *genx.ToolCall) *genx.MessageChunk {
	return &genx.MessageChunk{Role: genx.RoleModel, ToolCall: call}
}

type fakeGenerator struct {
	streams []*fakeStream
	calls   int
}

func (g *fakeGenerator) GenerateStream(ctx context.Context, model string, mctx genx.ModelContext) (genx.Stream, error) {
	s := g.streams[g.calls]
	g.calls++
	return s, nil
}

func (g *fakeGenerator) Invoke(context.Context, string, genx.ModelContext, *genx.FuncTool) (genx.Usage, *genx.FuncCall, error) {
	panic("not used by chatengine")
}

func TestChatNonStreamingNoTools(t *testing.T) {
	conv := newTestConversation(t)
	gen := &fakeGenerator{streams: []*fakeStream{{chunks: []*genx.MessageChunk{textChunk("你好"), textChunk("，世界")}}}}
	e := New(Config{Model: "test-model"}, gen, conv, nil, nil, nil, nil)

	reply, err := e.Chat(context.Background(), "嗨", false)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "你好，世界" {
		t.Fatalf("expected concatenated reply, got %q", reply)
	}
	if gen.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", gen.calls)
	}

	history, err := conv.Recent(context.Background(), "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user+assistant turns retained, got %d", len(history))
	}
	if history[0].Role != memory.RoleUser || history[1].Role != memory.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", history)
	}
}

func TestChatReturnDirectToolSkipsSecondModelCallAndRollsBack(t *testing.T) {
	conv := newTestConversation(t)
	reg := tools.New()
	tool := &tools.Tool{
		Name:         "func_exitSession",
		ReturnDirect: true,
		Rollback:     true,
		Handler: func(ctx context.Context, args map[string]any, tc *tools.Context) (string, error) {
			return "再见", nil
		},
	}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tc := &tools.Context{SessionID: "device-1:role-1"}
	ft := tool.AsFuncTool(tc)
	call := &genx.ToolCall{ID: "call_1", FuncCall: ft.NewFuncCall(`{}`)}

	gen := &fakeGenerator{streams: []*fakeStream{{chunks: []*genx.MessageChunk{toolCallChunk(call)}}}}

	msgStore := store.NewKVMessageStore(kvBackingStore(t))
	e := New(Config{Model: "test-model"}, gen, conv, msgStore, reg, tc, nil)

	reply, err := e.Chat(context.Background(), "拜拜", true)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "再见" {
		t.Fatalf("expected the direct tool reply, got %q", reply)
	}
	if gen.calls != 1 {
		t.Fatalf("expected no follow-up model call for a return_direct tool, got %d calls", gen.calls)
	}

	history, err := conv.Recent(context.Background(), "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected the rollback to discard the user turn from the window, got %+v", history)
	}

	persisted, err := msgStore.Find(context.Background(), "device-1", "role-1", 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	var sawUserFunctionCall, sawAssistant bool
	for _, m := range persisted {
		if m.Role == memory.RoleUser && m.Type == memory.MessageFunctionCall {
			sawUserFunctionCall = true
		}
		if m.Role == memory.RoleAssistant && m.Content == "再见" {
			sawAssistant = true
		}
	}
	if !sawUserFunctionCall {
		t.Fatal("expected the persisted user turn to be marked FUNCTION_CALL")
	}
	if !sawAssistant {
		t.Fatal("expected the assistant reply to be persisted")
	}
}

func TestChatNonDirectToolCallsModelAgain(t *testing.T) {
	conv := newTestConversation(t)
	reg := tools.New()
	tool := &tools.Tool{
		Name: "mcp_turn_on_light",
		Handler: func(ctx context.Context, args map[string]any, tc *tools.Context) (string, error) {
			return "ok", nil
		},
	}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	toolCtx := &tools.Context{SessionID: "device-1:role-1"}
	ft := tool.AsFuncTool(toolCtx)
	call := &genx.ToolCall{ID: "call_1", FuncCall: ft.NewFuncCall(`{}`)}

	gen := &fakeGenerator{streams: []*fakeStream{
		{chunks: []*genx.MessageChunk{toolCallChunk(call)}},
		{chunks: []*genx.MessageChunk{textChunk("灯已经打开了")}},
	}}

	e := New(Config{Model: "test-model"}, gen, conv, nil, reg, toolCtx, nil)

	reply, err := e.Chat(context.Background(), "开灯", true)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "灯已经打开了" {
		t.Fatalf("expected the follow-up model reply, got %q", reply)
	}
	if gen.calls != 2 {
		t.Fatalf("expected exactly one follow-up model call, got %d", gen.calls)
	}
}

func TestChatStreamDegradesWhenFunctionCallRequested(t *testing.T) {
	conv := newTestConversation(t)
	reg := tools.New()
	tool := &tools.Tool{
		Name:         "func_exitSession",
		ReturnDirect: true,
		Handler: func(ctx context.Context, args map[string]any, tc *tools.Context) (string, error) {
			return "再见", nil
		},
	}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	toolCtx := &tools.Context{SessionID: "device-1:role-1"}
	ft := tool.AsFuncTool(toolCtx)
	call := &genx.ToolCall{ID: "call_1", FuncCall: ft.NewFuncCall(`{}`)}
	gen := &fakeGenerator{streams: []*fakeStream{{chunks: []*genx.MessageChunk{toolCallChunk(call)}}}}

	e := New(Config{Model: "test-model"}, gen, conv, nil, reg, toolCtx, nil)

	ts, err := e.ChatStream(context.Background(), "拜拜", true)
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	tok, err := ts.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok != "再见" {
		t.Fatalf("expected the degraded reply as a single token, got %q", tok)
	}
	if _, err := ts.Next(); err != iterator.Done {
		t.Fatalf("expected iterator.Done after the single token, got %v", err)
	}
}

func TestChatStreamStreamsTokensAndFinalizes(t *testing.T) {
	conv := newTestConversation(t)
	gen := &fakeGenerator{streams: []*fakeStream{{chunks: []*genx.MessageChunk{textChunk("你"), textChunk("好")}}}}
	e := New(Config{Model: "test-model"}, gen, conv, nil, nil, nil, nil)

	ts, err := e.ChatStream(context.Background(), "嗨", false)
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	var got []string
	for {
		tok, err := ts.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, tok)
	}
	if len(got) != 2 || got[0] != "你" || got[1] != "好" {
		t.Fatalf("expected two streamed tokens, got %+v", got)
	}

	history, err := conv.Recent(context.Background(), "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(history) != 2 || history[1].Content != "你好" {
		t.Fatalf("expected the finalized assistant reply in the window, got %+v", history)
	}
}

func kvBackingStore(t *testing.T) kv.Store {
	t.Helper()
	s := kv.NewMemory(nil)
	t.Cleanup(func() { s.Close() })
	return s
}
