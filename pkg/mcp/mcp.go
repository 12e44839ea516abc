// Package mcp implements DeviceMcpBridge: JSON-RPC 2.0 requests to a
// device's own MCP server, carried over the same text channel used for
// every other client/server control message, grounded on
// original_source/backend/app/dialogue/device_mcp.py's DeviceMcpService.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/tools"

	"github.com/google/jsonschema-go/jsonschema"
)

// requestTimeout bounds how long a pending request waits for the device's
// reply before the caller falls back to a failure response, grounded on
// send_mcp_request's asyncio.wait_for(future, timeout=30).
const requestTimeout = 30 * time.Second

// Request is one JSON-RPC 2.0 call sent to the device.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      int64  `json:"id"`
	Params  any    `json:"params,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is one JSON-RPC 2.0 reply from the device.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// envelope is the outer "mcp" text-frame wrapper shared by requests sent
// to the device and responses the device sends back.
type envelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

// TextSender delivers one JSON text frame over the session's control
// channel, standing in for session.send_text_message.
type TextSender interface {
	SendText(ctx context.Context, data []byte) error
}

// ToolDescriptor is one tool advertised by the device's tools/list.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Bridge correlates one session's outstanding MCP requests to their
// replies and exposes the initialize / tools/list / tools/call flow.
type Bridge struct {
	sessionID string
	sender    TextSender
	visionURL string
	log       logging.Logger

	maxToolsCount int

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan *Response
	cursor  string
}

// New builds a Bridge for one session. maxToolsCount <= 0 falls back to
// 32, matching DeviceMcpService's default.
func New(sessionID string, sender TextSender, visionURL string, maxToolsCount int, log logging.Logger) *Bridge {
	if maxToolsCount <= 0 {
		maxToolsCount = 32
	}
	if log == nil {
		log = logging.Default("mcp")
	}
	return &Bridge{
		sessionID:     sessionID,
		sender:        sender,
		visionURL:     visionURL,
		log:           log,
		maxToolsCount: maxToolsCount,
		nextID:        10000,
		pending:       make(map[int64]chan *Response),
	}
}

func (b *Bridge) nextRequestID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	return id
}

// sendRequest marshals method/params into the mcp envelope, registers a
// pending future keyed by request id, and waits up to requestTimeout. A
// timeout yields (nil, nil): the device simply never answered, which every
// caller treats as "操作失败" rather than an error. A send failure or a
// canceled ctx returns an error.
func (b *Bridge) sendRequest(ctx context.Context, method string, params any) (*Response, error) {
	id := b.nextRequestID()
	req := Request{JSONRPC: "2.0", Method: method, ID: id, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal request: %w", err)
	}
	data, err := json.Marshal(envelope{Type: "mcp", SessionID: b.sessionID, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal envelope: %w", err)
	}

	ch := make(chan *Response, 1)
	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	if err := b.sender.SendText(ctx, data); err != nil {
		return nil, fmt.Errorf("mcp: send request: %w", err)
	}

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		return resp, nil
	case <-timer.C:
		b.log.WarnPrintf("mcp: request %d (%s) timed out", id, method)
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HandleResponse delivers one incoming "mcp" text frame to the pending
// request it answers, grounded on handle_mcp_response. Frames with no
// matching pending request (already timed out, or a stray duplicate) are
// dropped silently.
func (b *Bridge) HandleResponse(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		b.log.WarnPrintf("mcp: malformed frame: %v", err)
		return
	}
	var resp Response
	if err := json.Unmarshal(env.Payload, &resp); err != nil {
		b.log.WarnPrintf("mcp: malformed payload: %v", err)
		return
	}

	b.mu.Lock()
	ch, ok := b.pending[resp.ID]
	if ok {
		delete(b.pending, resp.ID)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- &resp:
	default:
	}
}

// Initialize performs the MCP handshake, grounded on _send_initialize.
func (b *Bridge) Initialize(ctx context.Context) (bool, error) {
	params := map[string]any{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]any{"name": "dialoguecore", "version": "1.0.0"},
		"capabilities": map[string]any{
			"vision": map[string]any{"url": b.visionURL, "token": b.sessionID},
		},
	}
	resp, err := b.sendRequest(ctx, "initialize", params)
	if err != nil {
		return false, err
	}
	return resp != nil, nil
}

type toolsListResult struct {
	Tools []struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	} `json:"tools"`
	NextCursor string `json:"nextCursor"`
}

// ListTools pages through tools/list, stopping when the device reports no
// more tools, when nextCursor is empty, or when accepting the next page
// would push currentCount beyond maxToolsCount — grounded on
// _send_tools_list's identical three stop conditions.
func (b *Bridge) ListTools(ctx context.Context, currentCount int) ([]ToolDescriptor, error) {
	var out []ToolDescriptor
	cursor := b.cursor
	for {
		resp, err := b.sendRequest(ctx, "tools/list", map[string]any{"cursor": cursor})
		if err != nil {
			return out, err
		}
		if resp == nil || resp.Result == nil {
			return out, nil
		}
		var result toolsListResult
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return out, fmt.Errorf("mcp: decode tools/list result: %w", err)
		}
		if len(result.Tools) == 0 {
			return out, nil
		}
		if currentCount+len(out)+len(result.Tools) > b.maxToolsCount {
			return out, nil
		}
		for _, t := range result.Tools {
			out = append(out, ToolDescriptor{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
		}
		if result.NextCursor == "" {
			b.cursor = ""
			return out, nil
		}
		cursor = result.NextCursor
		b.cursor = cursor
	}
}

type toolsCallResult struct {
	IsError bool            `json:"isError"`
	Content json.RawMessage `json:"content"`
}

// CallMcpTool implements pkg/tools.McpCaller, invoking one device tool by
// its original (unsanitized) name and returning its content as text,
// grounded on _register_mcp_tool's _call.
func (b *Bridge) CallMcpTool(ctx context.Context, name string, args map[string]any) (string, error) {
	resp, err := b.sendRequest(ctx, "tools/call", map[string]any{"name": name, "arguments": args})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "操作失败", nil
	}
	if resp.Error != nil {
		if resp.Error.Message != "" {
			return resp.Error.Message, nil
		}
		return "操作失败", nil
	}
	if resp.Result == nil {
		return "操作失败", nil
	}
	var result toolsCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return "操作失败", nil
	}
	if result.IsError {
		return "操作失败", nil
	}
	return contentToString(result.Content), nil
}

// RegisterTools lists the device's tools and registers them into
// registry, capped so the combined tool count never exceeds
// maxToolsCount.
func (b *Bridge) RegisterTools(ctx context.Context, registry *tools.Registry, currentCount int) (int, error) {
	descriptors, err := b.ListTools(ctx, currentCount)
	if err != nil {
		return 0, err
	}
	descs := make([]tools.McpToolDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		descs = append(descs, tools.McpToolDescriptor{
			Name:        d.Name,
			Description: d.Description,
			Schema:      schemaFromRaw(d.InputSchema),
		})
	}
	return tools.RegisterMcpTools(registry, descs, b, b.maxToolsCount-currentCount)
}

func schemaFromRaw(raw json.RawMessage) *jsonschema.Schema {
	if len(raw) == 0 {
		return &jsonschema.Schema{Type: "object"}
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return &jsonschema.Schema{Type: "object"}
	}
	return &schema
}

// contentToString normalizes an MCP tool result's content field, which
// may be a plain string or the standard MCP [{"type":"text","text":...}]
// content-block array, into the flat string the model sees.
func contentToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var sb strings.Builder
		for i, b := range blocks {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(b.Text)
		}
		return sb.String()
	}
	return string(raw)
}
