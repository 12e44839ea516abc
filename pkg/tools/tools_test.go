package tools

import (
	"context"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

func TestRegistryRegisterGetUnregister(t *testing.T) {
	r := New()
	tool := &Tool{
		Name:   "demo",
		Schema: &jsonschema.Schema{Type: "object"},
		Handler: func(ctx context.Context, args map[string]any, tc *Context) (string, error) {
			return "ok", nil
		},
	}
	if err := r.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, ok := r.Get("demo")
	if !ok || got.Name != "demo" {
		t.Fatalf("expected to find demo, got %+v ok=%v", got, ok)
	}
	if !r.Unregister("demo") {
		t.Fatal("expected unregister to report found")
	}
	if _, ok := r.Get("demo"); ok {
		t.Fatal("expected demo to be gone after unregister")
	}
}

func TestSanitizeNameCollapsesNonAlnum(t *testing.T) {
	cases := map[string]string{
		"Get Weather!!": "get_weather",
		"--leading":     "leading",
		"trailing--":    "trailing",
		"a__b--c":       "a_b_c",
		"ALLCAPS":       "allcaps",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeCloser struct{ closed bool }

func (f *fakeCloser) CloseAfterChat() { f.closed = true }

func TestExitSessionToolClosesSessionAndReturnsGoodbye(t *testing.T) {
	session := &fakeCloser{}
	tool := ExitSessionTool(session)
	result, err := tool.Handler(context.Background(), map[string]any{"sayGoodbye": "拜拜"}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result != "拜拜" {
		t.Fatalf("expected the supplied goodbye, got %q", result)
	}
	if !session.closed {
		t.Fatal("expected CloseAfterChat to have been called")
	}
	if !tool.ReturnDirect || !tool.Rollback {
		t.Fatal("expected ReturnDirect and Rollback both set")
	}
}

func TestExitSessionToolDefaultsGoodbyeWhenOmitted(t *testing.T) {
	tool := ExitSessionTool(nil)
	result, err := tool.Handler(context.Background(), map[string]any{}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result != defaultGoodbye {
		t.Fatalf("expected default goodbye, got %q", result)
	}
}

type fakeClearer struct{ cleared bool }

func (f *fakeClearer) Clear(ctx context.Context) error {
	f.cleared = true
	return nil
}

func TestNewChatToolClearsConversation(t *testing.T) {
	conv := &fakeClearer{}
	tool := NewChatTool(conv)
	result, err := tool.Handler(context.Background(), map[string]any{"sayNewChat": "新话题"}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result != "新话题" {
		t.Fatalf("expected the supplied prompt, got %q", result)
	}
	if !conv.cleared {
		t.Fatal("expected the conversation to have been cleared")
	}
}

func TestChangeRoleToolNilWithFewerThanTwoRoles(t *testing.T) {
	if tool := ChangeRoleTool([]Role{{RoleID: "1", RoleName: "猫咪"}}, nil); tool != nil {
		t.Fatalf("expected nil for a single role, got %+v", tool)
	}
	if tool := ChangeRoleTool(nil, nil); tool != nil {
		t.Fatal("expected nil for no roles")
	}
}

type fakeSwitcher struct{ switchedTo string }

func (f *fakeSwitcher) SwitchRole(ctx context.Context, roleID string) error {
	f.switchedTo = roleID
	return nil
}

func TestChangeRoleToolSwitchesToNamedRole(t *testing.T) {
	roles := []Role{{RoleID: "r1", RoleName: "猫咪"}, {RoleID: "r2", RoleName: "机器人"}}
	switcher := &fakeSwitcher{}
	tool := ChangeRoleTool(roles, switcher)
	if tool == nil {
		t.Fatal("expected a tool with two roles available")
	}
	result, err := tool.Handler(context.Background(), map[string]any{"roleName": "机器人"}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if switcher.switchedTo != "r2" {
		t.Fatalf("expected switch to r2, got %q", switcher.switchedTo)
	}
	if result == "" {
		t.Fatal("expected a non-empty confirmation")
	}
}

func TestChangeRoleToolUnknownRoleNameFails(t *testing.T) {
	roles := []Role{{RoleID: "r1", RoleName: "猫咪"}, {RoleID: "r2", RoleName: "机器人"}}
	tool := ChangeRoleTool(roles, &fakeSwitcher{})
	result, err := tool.Handler(context.Background(), map[string]any{"roleName": "狗狗"}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result == "" {
		t.Fatal("expected a failure message")
	}
}

type fakeIotReader struct{ values map[string]any }

func (f *fakeIotReader) GetIotProperty(iotName, propName string) (any, bool) {
	v, ok := f.values[iotName+"."+propName]
	return v, ok
}

type fakeIotSender struct {
	called bool
	name   string
	method string
	params map[string]any
}

func (f *fakeIotSender) SendIotCommand(iotName, methodName string, params map[string]any) bool {
	f.called = true
	f.name = iotName
	f.method = methodName
	f.params = params
	return true
}

func TestRegisterIotDescriptorPropertyGetter(t *testing.T) {
	r := New()
	descriptor := IotDescriptor{
		Name: "Lamp",
		Properties: map[string]IotProperty{
			"brightness": {Description: "亮度", Type: "number"},
		},
	}
	reader := &fakeIotReader{values: map[string]any{"Lamp.brightness": 80}}

	if err := RegisterIotDescriptor(r, descriptor, reader, nil); err != nil {
		t.Fatalf("RegisterIotDescriptor: %v", err)
	}

	tool, ok := r.Get("iot_get_lamp_brightness")
	if !ok {
		t.Fatal("expected the property getter tool to be registered")
	}
	result, err := tool.Handler(context.Background(), map[string]any{"response_success": "当前亮度是{value}"}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result != "当前亮度是80" {
		t.Fatalf("expected value substitution, got %q", result)
	}
}

func TestRegisterIotDescriptorMethodInvoker(t *testing.T) {
	r := New()
	descriptor := IotDescriptor{
		Name: "Lamp",
		Methods: map[string]IotMethod{
			"setBrightness": {
				Description: "设置亮度",
				Parameters:  []IotParam{{Name: "value", Type: "number", Description: "亮度值"}},
			},
		},
	}
	sender := &fakeIotSender{}

	if err := RegisterIotDescriptor(r, descriptor, nil, sender); err != nil {
		t.Fatalf("RegisterIotDescriptor: %v", err)
	}

	tool, ok := r.Get("iot_Lamp_setBrightness")
	if !ok {
		t.Fatal("expected the method invoker tool to be registered")
	}
	result, err := tool.Handler(context.Background(), map[string]any{"value": float64(50), "response_success": "已调整"}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result != "已调整" {
		t.Fatalf("expected the success message, got %q", result)
	}
	if !sender.called || sender.name != "Lamp" || sender.method != "setBrightness" {
		t.Fatalf("expected SendIotCommand(Lamp, setBrightness, ...), got called=%v name=%q method=%q",
			sender.called, sender.name, sender.method)
	}
	if _, ok := sender.params["response_success"]; ok {
		t.Fatal("expected response_success to be stripped from the forwarded params")
	}
}

type fakeMcpCaller struct{ lastName string }

func (f *fakeMcpCaller) CallMcpTool(ctx context.Context, name string, args map[string]any) (string, error) {
	f.lastName = name
	return "done", nil
}

func TestRegisterMcpToolsSanitizesNamesAndCapsCount(t *testing.T) {
	r := New()
	caller := &fakeMcpCaller{}
	descriptors := []McpToolDescriptor{
		{Name: "Get Weather!!", Description: "weather"},
		{Name: "turn on light", Description: "light"},
		{Name: "third", Description: "third"},
	}

	n, err := RegisterMcpTools(r, descriptors, caller, 2)
	if err != nil {
		t.Fatalf("RegisterMcpTools: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected the cap to limit registration to 2, got %d", n)
	}

	tool, ok := r.Get("mcp_get_weather")
	if !ok {
		t.Fatal("expected mcp_get_weather to be registered")
	}
	result, err := tool.Handler(context.Background(), map[string]any{}, nil)
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result != "done" || caller.lastName != "Get Weather!!" {
		t.Fatalf("expected the original name forwarded to CallMcpTool, got %q", caller.lastName)
	}
	if _, ok := r.Get("mcp_third"); ok {
		t.Fatal("expected the third tool to be dropped by the cap")
	}
}
