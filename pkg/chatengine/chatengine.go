// Package chatengine orchestrates one conversational turn: it reads and
// writes pkg/memory's sliding window, drives a pkg/genx.Generator, and
// executes any tool calls the model returns through a pkg/tools.Registry.
package chatengine

import (
	"context"
	"errors"
	"time"

	"github.com/aivox/dialoguecore/pkg/genx"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/memory"
	"github.com/aivox/dialoguecore/pkg/store"
	"github.com/aivox/dialoguecore/pkg/tools"
)

// Config controls how a ChatEngine drives the model.
type Config struct {
	Model        string
	SystemPrompt string
	Params       *genx.ModelParams
}

// ChatEngine is bound to a single (device, role) conversation, mirroring
// the pkg/memory.Conversation it wraps. A session holds one ChatEngine for
// its lifetime.
type ChatEngine struct {
	cfg      Config
	gen      genx.Generator
	conv     *memory.Conversation
	messages store.MessageStore
	registry *tools.Registry
	toolCtx  *tools.Context
	log      logging.Logger
}

// New builds a ChatEngine. messages and registry may be nil: a nil
// MessageStore skips durable persistence (the sliding window still works),
// and a nil Registry means use_function_call is always treated as false.
func New(cfg Config, gen genx.Generator, conv *memory.Conversation, messages store.MessageStore, registry *tools.Registry, toolCtx *tools.Context, log logging.Logger) *ChatEngine {
	if toolCtx == nil {
		toolCtx = &tools.Context{SessionID: conv.DeviceID() + ":" + conv.RoleID()}
	}
	if log == nil {
		log = logging.Default("chatengine")
	}
	return &ChatEngine{cfg: cfg, gen: gen, conv: conv, messages: messages, registry: registry, toolCtx: toolCtx, log: log}
}

// TurnMeta carries per-turn metadata that DialogueController knows about
// but the model never sees: the recorded user audio file and the frozen
// wall-clock anchor spec.md §4.10/§4.12 share across every artifact of one
// turn (memory.Message's AssistantTimeMs/AudioPath fields).
type TurnMeta struct {
	AudioPath       string
	AssistantTimeMs int64
}

func firstMeta(meta []TurnMeta) TurnMeta {
	if len(meta) == 0 {
		return TurnMeta{}
	}
	return meta[0]
}

// Chat runs one non-streaming turn: add the user message, call the model,
// execute any tool calls, and finalize. Grounded on
// original_source/backend/app/dialogue/llm/chat_service.py's ChatService.chat.
func (e *ChatEngine) Chat(ctx context.Context, text string, useFunctionCall bool, meta ...TurnMeta) (string, error) {
	m := firstMeta(meta)
	userTs := time.Now().UnixNano()
	if err := e.addUserTurn(ctx, text, userTs, m); err != nil {
		return "", err
	}

	mcb, err := e.buildContext(ctx)
	if err != nil {
		return "", err
	}
	if useFunctionCall && e.registry != nil {
		for _, t := range e.registry.AsFuncTools(e.toolCtx) {
			mcb.AddTool(t)
		}
	}

	reply, calls, err := e.generate(ctx, mcb)
	if err != nil {
		return "", err
	}

	rollback := false
	if useFunctionCall && len(calls) > 0 {
		reply, rollback, err = e.handleToolCalls(ctx, mcb, calls)
		if err != nil {
			return "", err
		}
	}

	e.finalize(ctx, userTs, reply, rollback, m.AssistantTimeMs)
	return reply, nil
}

// ChatStream runs one turn with token-by-token output. Tool calling is
// incompatible with naive token streaming in the OpenAI-compatible
// protocol this module targets, so a relevant tool set degrades the whole
// turn to the non-streaming path, matching chat_service.py's
// ChatService.chat_stream ("为了简化工具调用逻辑，工具场景降级为非流式").
func (e *ChatEngine) ChatStream(ctx context.Context, text string, useFunctionCall bool, meta ...TurnMeta) (TokenStream, error) {
	m := firstMeta(meta)
	if useFunctionCall {
		reply, err := e.Chat(ctx, text, true, m)
		if err != nil {
			return nil, err
		}
		return newSliceTokenStream([]string{reply}), nil
	}

	userTs := time.Now().UnixNano()
	if err := e.addUserTurn(ctx, text, userTs, m); err != nil {
		return nil, err
	}

	mcb, err := e.buildContext(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := e.gen.GenerateStream(ctx, e.cfg.Model, mcb.Build())
	if err != nil {
		return nil, err
	}

	return &liveTokenStream{
		stream: stream,
		onDone: func(full string) {
			e.finalize(context.Background(), userTs, full, false, m.AssistantTimeMs)
		},
	}, nil
}

func (e *ChatEngine) addUserTurn(ctx context.Context, text string, ts int64, meta TurnMeta) error {
	msg := memory.Message{
		Role: memory.RoleUser, Content: text, Timestamp: ts, Type: memory.MessageNormal,
		AudioPath: meta.AudioPath, AssistantTimeMs: meta.AssistantTimeMs,
	}
	if err := e.conv.Append(ctx, msg); err != nil {
		return e.log.Errorf("append user message: %w", err)
	}
	if e.messages != nil {
		if err := e.messages.Add(ctx, e.conv.DeviceID(), e.conv.RoleID(), msg); err != nil {
			e.log.WarnPrintf("chatengine: persist user turn: %v", err)
		}
	}
	return nil
}

func (e *ChatEngine) buildContext(ctx context.Context) (*genx.ModelContextBuilder, error) {
	mcb := &genx.ModelContextBuilder{Params: e.cfg.Params}
	if e.cfg.SystemPrompt != "" {
		mcb.PromptText("system", e.cfg.SystemPrompt)
	}
	history, err := e.conv.Recent(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, m := range history {
		appendHistoryMessage(mcb, m)
	}
	return mcb, nil
}

func appendHistoryMessage(mcb *genx.ModelContextBuilder, m memory.Message) {
	switch m.Role {
	case memory.RoleUser:
		mcb.UserText(m.Name, m.Content)
	case memory.RoleAssistant:
		mcb.ModelText(m.Name, m.Content)
	case memory.RoleSystem:
		mcb.PromptText("system", m.Content)
	}
}

func (e *ChatEngine) generate(ctx context.Context, mcb *genx.ModelContextBuilder) (string, []*genx.ToolCall, error) {
	stream, err := e.gen.GenerateStream(ctx, e.cfg.Model, mcb.Build())
	if err != nil {
		return "", nil, err
	}
	return drainStream(stream)
}

// handleToolCalls executes every call, mirrors chat_service.py's
// _handle_tool_calls: if any executed tool has return_direct, its result
// is the reply and the model is not asked again; otherwise the tool_call
// and tool messages are appended and the model is invoked exactly once
// more, with any further tool_calls in that second response ignored.
func (e *ChatEngine) handleToolCalls(ctx context.Context, mcb *genx.ModelContextBuilder, calls []*genx.ToolCall) (string, bool, error) {
	var lastDirect string
	haveDirect := false
	rollback := false

	for _, call := range calls {
		if call.FuncCall == nil {
			continue
		}
		t, ok := e.registry.Get(call.FuncCall.Name)
		if !ok {
			e.log.WarnPrintf("chatengine: model called unknown tool %q", call.FuncCall.Name)
			continue
		}

		res, err := call.FuncCall.Invoke(ctx)
		if err != nil {
			e.log.WarnPrintf("chatengine: tool %s failed: %v", t.Name, err)
			res = "操作失败"
		}
		if err := mcb.AddToolCallResult(call.FuncCall.Name, call.FuncCall.Arguments, res); err != nil {
			return "", false, err
		}

		if t.Rollback {
			rollback = true
		}
		if t.ReturnDirect {
			haveDirect = true
			if s, ok := res.(string); ok {
				lastDirect = s
			}
		}
	}

	if haveDirect {
		return lastDirect, rollback, nil
	}

	reply, _, err := e.generate(ctx, mcb)
	if err != nil {
		return "", false, err
	}
	return reply, rollback, nil
}

// finalize applies spec.md §4.10's finalization rule: a rollback-flagged
// turn discards the user message from the window and marks the durable
// user turn FUNCTION_CALL; otherwise the assistant reply is appended to
// the window. The assistant reply is always persisted durably, with
// whichever type applies.
func (e *ChatEngine) finalize(ctx context.Context, userTs int64, reply string, rollback bool, assistantTimeMs int64) {
	msgType := memory.MessageNormal
	if rollback {
		msgType = memory.MessageFunctionCall
		if err := e.conv.Append(ctx, memory.Rollback()); err != nil {
			e.log.WarnPrintf("chatengine: rollback conversation window: %v", err)
		}
		if e.messages != nil {
			if err := e.messages.UpdateType(ctx, e.conv.DeviceID(), e.conv.RoleID(), userTs, memory.MessageFunctionCall); err != nil {
				e.log.WarnPrintf("chatengine: mark user turn FUNCTION_CALL: %v", err)
			}
		}
	} else if reply != "" {
		msg := memory.Message{Role: memory.RoleAssistant, Content: reply, Timestamp: time.Now().UnixNano(), AssistantTimeMs: assistantTimeMs}
		if err := e.conv.Append(ctx, msg); err != nil {
			e.log.WarnPrintf("chatengine: append assistant message: %v", err)
		}
	}

	if reply == "" || e.messages == nil {
		return
	}
	persisted := memory.Message{
		Role: memory.RoleAssistant, Content: reply, Timestamp: time.Now().UnixNano(),
		Type: msgType, AssistantTimeMs: assistantTimeMs,
	}
	if err := e.messages.Add(ctx, e.conv.DeviceID(), e.conv.RoleID(), persisted); err != nil {
		e.log.WarnPrintf("chatengine: persist assistant turn: %v", err)
	}
}

// drainStream collects a Stream's full content and any tool calls it
// carries, until the terminal genx.ErrDone (or a State wrapping it, as
// StreamBuilder-backed Streams return).
func drainStream(stream genx.Stream) (string, []*genx.ToolCall, error) {
	var text string
	var calls []*genx.ToolCall
	for {
		chunk, err := stream.Next()
		if err != nil {
			if errors.Is(err, genx.ErrDone) {
				return text, calls, nil
			}
			return "", nil, err
		}
		if chunk.ToolCall != nil {
			calls = append(calls, chunk.ToolCall)
			continue
		}
		if t, ok := chunk.Part.(genx.Text); ok {
			text += string(t)
		}
	}
}
