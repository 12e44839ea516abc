// Package tools implements spec.md's ToolRegistry: a per-session
// name-to-Tool map assembled from three sources (global session functions,
// IoT device descriptors, and device-hosted MCP tools), exposed to the
// chat model as pkg/genx.Tool values.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/aivox/dialoguecore/pkg/genx"
	"github.com/aivox/dialoguecore/pkg/trie"

	"github.com/google/jsonschema-go/jsonschema"
)

// Context carries per-invocation state a Handler may need, mirroring
// ToolContext from the original dialogue tool layer.
type Context struct {
	SessionID string
	Extra     map[string]any
}

// Handler executes one tool call and returns its textual result.
type Handler func(ctx context.Context, args map[string]any, tc *Context) (string, error)

// Tool is one callable the chat model may invoke.
type Tool struct {
	Name         string
	Description  string
	Schema       *jsonschema.Schema
	Handler      Handler
	ReturnDirect bool

	// Rollback marks that a successful call of this tool means the
	// current user turn should not be persisted as a normal exchange
	// (spec.md §4.10's finalization rule).
	Rollback bool
}

// AsFuncTool adapts t into a pkg/genx.Tool the model context can carry,
// binding Handler through genx.FuncTool.Invoke's JSON-argument contract.
func (t *Tool) AsFuncTool(tc *Context) *genx.FuncTool {
	ft := &genx.FuncTool{
		Name:        t.Name,
		Description: t.Description,
		Argument:    t.Schema,
	}
	ft.Invoke = func(ctx context.Context, call *genx.FuncCall, rawArgs string) (any, error) {
		args, err := decodeArgs(rawArgs)
		if err != nil {
			return nil, err
		}
		return t.Handler(ctx, args, tc)
	}
	return ft
}

func decodeArgs(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("tools: decode arguments %q: %w", raw, err)
	}
	return args, nil
}

// Registry is one session's name→Tool map. It is not safe for concurrent
// mutation from multiple goroutines without external synchronization,
// matching spec.md §4.9's "each session holds a name→Tool map".
type Registry struct {
	mux *trie.Trie[*Tool]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{mux: trie.New[*Tool]()}
}

// Register adds or replaces a tool under its own Name.
func (r *Registry) Register(t *Tool) error {
	return r.mux.Set(t.Name, func(ptr **Tool, existed bool) error {
		*ptr = t
		return nil
	})
}

// Unregister removes a tool by name, reporting whether it was present.
func (r *Registry) Unregister(name string) bool {
	_, ok := r.mux.Get(name)
	if !ok {
		return false
	}
	return r.mux.Set(name, func(ptr **Tool, existed bool) error {
		*ptr = nil
		return nil
	}) == nil
}

// Get looks up a tool by exact name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.mux.GetValue(name)
	if !ok || t == nil {
		return nil, false
	}
	return t, true
}

// All returns every currently registered tool, in no particular order.
func (r *Registry) All() []*Tool {
	var out []*Tool
	r.mux.Walk(func(path string, value *Tool, set bool) {
		if set && value != nil {
			out = append(out, value)
		}
	})
	return out
}

// AsFuncTools adapts every registered tool into pkg/genx.Tool values for
// one invocation's ModelContext, binding tc as each tool's ToolContext.
func (r *Registry) AsFuncTools(tc *Context) []genx.Tool {
	all := r.All()
	out := make([]genx.Tool, 0, len(all))
	for _, t := range all {
		out = append(out, t.AsFuncTool(tc))
	}
	return out
}

// identifierRun collapses any run of non-alphanumeric characters into one
// underscore, the sanitization convention this codebase's registries
// already apply to externally-sourced names before using them as a tool
// identifier (mirroring pkg/trie's segment-safe path handling).
var identifierRun = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SanitizeName lowercases s and collapses runs of non-alphanumeric
// characters into a single underscore, trimmed of leading/trailing
// underscores, for building a tool name from untrusted external text
// (an MCP tool name, an IoT device/property name).
func SanitizeName(s string) string {
	s = identifierRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}
