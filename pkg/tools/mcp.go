package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// McpCaller invokes one device-hosted MCP tool by name, returning its
// result content as a string (spec.md §4.11: "response's result.content is
// returned to the model, treated as string").
type McpCaller interface {
	CallMcpTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// McpToolDescriptor is one tool advertised by a device's "tools/list"
// response.
type McpToolDescriptor struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// RegisterMcpTools registers up to maxCount device MCP tools, each under
// the sanitized name "mcp_<sanitized>" (spec.md §4.9), dispatching
// invocations lazily through caller. Returns the number registered.
func RegisterMcpTools(r *Registry, descriptors []McpToolDescriptor, caller McpCaller, maxCount int) (int, error) {
	registered := 0
	for _, d := range descriptors {
		if maxCount > 0 && registered >= maxCount {
			break
		}
		d := d
		funcName := "mcp_" + SanitizeName(d.Name)
		schema := d.Schema
		if schema == nil {
			schema = &jsonschema.Schema{Type: "object"}
		}
		t := &Tool{
			Name:        funcName,
			Description: d.Description,
			Schema:      schema,
			Handler: func(ctx context.Context, args map[string]any, tc *Context) (string, error) {
				return caller.CallMcpTool(ctx, d.Name, args)
			},
		}
		if err := r.Register(t); err != nil {
			return registered, err
		}
		registered++
	}
	return registered, nil
}
