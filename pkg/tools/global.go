package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

const defaultGoodbye = "好的，再见！期待下次聊天哦！"
const defaultNewChatPrompt = "让我们聊聊新的话题吧～"

// SessionCloser is the slice of session behavior ExitSessionTool needs:
// marking the session to close once the current turn finishes speaking.
type SessionCloser interface {
	CloseAfterChat()
}

// ExitSessionTool registers "func_exitSession": spec.md's
// exit-intent-triggered tool, grounded on
// original_source/backend/app/dialogue/tool_functions.py's
// SessionExitFunction. ReturnDirect and Rollback are both set, since the
// user's "goodbye" utterance itself should not be recorded as a normal
// turn once the session is about to close.
func ExitSessionTool(session SessionCloser) *Tool {
	return &Tool{
		Name: "func_exitSession",
		Description: "当用户明确表示要离开/结束对话时调用此函数。触发词汇：" +
			"'拜拜'、'再见'、'退下'、'走了'、'结束对话'、'退出'、'goodbye'、'bye' 等。" +
			"检测到这些词汇时必须调用此函数。",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"sayGoodbye": {Type: "string", Description: "告别语"},
			},
			Required: []string{"sayGoodbye"},
		},
		ReturnDirect: true,
		Rollback:     true,
		Handler: func(ctx context.Context, args map[string]any, tc *Context) (string, error) {
			if session != nil {
				session.CloseAfterChat()
			}
			if s, ok := args["sayGoodbye"].(string); ok && s != "" {
				return s, nil
			}
			return defaultGoodbye, nil
		},
	}
}

// ConversationClearer is the slice of a session's conversation memory
// NewChatTool needs.
type ConversationClearer interface {
	Clear(ctx context.Context) error
}

// NewChatTool registers "func_new_chat": clears the conversation window
// and replies with a transition prompt, grounded on
// original_source/.../tool_functions.py's NewChatFunction.
func NewChatTool(conv ConversationClearer) *Tool {
	return &Tool{
		Name:        "func_new_chat",
		Description: "当用户要求开启新对话时调用，清空历史并返回提示。",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"sayNewChat": {Type: "string", Description: "开启新对话的引导语"},
			},
			Required: []string{"sayNewChat"},
		},
		ReturnDirect: true,
		Handler: func(ctx context.Context, args map[string]any, tc *Context) (string, error) {
			if conv != nil {
				if err := conv.Clear(ctx); err != nil {
					return "", fmt.Errorf("tools: clear conversation: %w", err)
				}
			}
			if s, ok := args["sayNewChat"].(string); ok && s != "" {
				return s, nil
			}
			return defaultNewChatPrompt, nil
		},
	}
}

// Role is the subset of a role record ChangeRoleTool needs to offer and
// bind a switch target.
type Role struct {
	RoleID   string
	RoleName string
}

// RoleSwitcher binds the session to a new role once the user names one of
// the Roles ChangeRoleTool was built with.
type RoleSwitcher interface {
	SwitchRole(ctx context.Context, roleID string) error
}

// ChangeRoleTool registers "func_changeRole", offered only when a device
// has more than one assignable role, grounded on
// original_source/.../tool_functions.py's ChangeRoleFunction. Returns nil
// (no tool to register) when fewer than two roles are available, mirroring
// the Python source's own guard.
func ChangeRoleTool(roles []Role, switcher RoleSwitcher) *Tool {
	if len(roles) <= 1 {
		return nil
	}
	byName := make(map[string]Role, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		byName[r.RoleName] = r
		names = append(names, r.RoleName)
	}
	roleList := joinComma(names)

	return &Tool{
		Name:        "func_changeRole",
		Description: fmt.Sprintf("当用户希望切换角色时调用。可选角色：%s", roleList),
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"roleName": {Type: "string", Description: fmt.Sprintf("要切换的角色名称，可选：%s", roleList)},
			},
			Required: []string{"roleName"},
		},
		ReturnDirect: true,
		Rollback:     true,
		Handler: func(ctx context.Context, args map[string]any, tc *Context) (string, error) {
			name, _ := args["roleName"].(string)
			target, ok := byName[name]
			if !ok {
				return "角色切换失败，没有对应角色。", nil
			}
			if switcher != nil {
				if err := switcher.SwitchRole(ctx, target.RoleID); err != nil {
					return "角色切换异常", nil
				}
			}
			return fmt.Sprintf("角色已切换至%s", name), nil
		},
	}
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
