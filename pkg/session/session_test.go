package session

import (
	"context"
	"testing"

	"github.com/aivox/dialoguecore/pkg/config"
	"github.com/aivox/dialoguecore/pkg/protocol"
	"github.com/aivox/dialoguecore/pkg/store"
)

func TestSessionTouchUpdatesLastActivity(t *testing.T) {
	s := newSessionWithConn(t, "device-1")
	before := s.lastActivityAt()
	s.touch()
	if !s.lastActivityAt().After(before) {
		t.Fatalf("touch did not advance lastActivity: before=%v after=%v", before, s.lastActivityAt())
	}
}

func TestSessionCloseAfterChat(t *testing.T) {
	s := newSessionWithConn(t, "device-1")
	if s.shouldCloseAfterChat() {
		t.Fatal("expected closeAfterChat to start false")
	}
	s.CloseAfterChat()
	if !s.shouldCloseAfterChat() {
		t.Fatal("expected closeAfterChat to be true after CloseAfterChat")
	}
}

func TestSessionIsBoundReflectsState(t *testing.T) {
	s := newSessionWithConn(t, "device-1")
	if s.isBound() {
		t.Fatal("expected a freshly constructed session to be unbound")
	}
	s.mu.Lock()
	s.bound = true
	s.mu.Unlock()
	if !s.isBound() {
		t.Fatal("expected isBound to reflect the bound flag")
	}
}

func TestSessionGetIotPropertyMissingNameAndProperty(t *testing.T) {
	s := newSessionWithConn(t, "device-1")

	if _, ok := s.GetIotProperty("light", "brightness"); ok {
		t.Fatal("expected no property before any iot state was reported")
	}

	if err := s.applyIotMessage(protocol.Iot{
		States: []protocol.IotState{{Name: "light", State: map[string]any{"brightness": float64(80)}}},
	}); err != nil {
		t.Fatalf("applyIotMessage: %v", err)
	}

	v, ok := s.GetIotProperty("light", "brightness")
	if !ok || v != float64(80) {
		t.Fatalf("GetIotProperty(light, brightness) = %v, %v, want 80, true", v, ok)
	}
	if _, ok := s.GetIotProperty("fan", "speed"); ok {
		t.Fatal("expected no property for an unreported device name")
	}
}

func TestSessionApplyIotMessageMergesRepeatedStateUpdates(t *testing.T) {
	s := newSessionWithConn(t, "device-1")

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("applyIotMessage: %v", err)
		}
	}
	must(s.applyIotMessage(protocol.Iot{States: []protocol.IotState{{Name: "light", State: map[string]any{"brightness": float64(10)}}}}))
	must(s.applyIotMessage(protocol.Iot{States: []protocol.IotState{{Name: "light", State: map[string]any{"on": true}}}}))

	brightness, ok := s.GetIotProperty("light", "brightness")
	if !ok || brightness != float64(10) {
		t.Fatalf("brightness = %v, %v, want 10, true (should survive the second update)", brightness, ok)
	}
	on, ok := s.GetIotProperty("light", "on")
	if !ok || on != true {
		t.Fatalf("on = %v, %v, want true, true", on, ok)
	}
}

func TestIotDescriptorFromWireTranslatesPropertiesAndMethods(t *testing.T) {
	wire := protocol.IotDescriptorWire{
		Name:        "light",
		Description: "a lamp",
		Properties: map[string]protocol.IotPropertyWire{
			"brightness": {Type: "integer", Description: "0-100"},
		},
		Methods: map[string]protocol.IotMethodWire{
			"set_brightness": {
				Description: "set brightness",
				Parameters:  []protocol.IotMethodParamWire{{Name: "value", Type: "integer"}},
			},
		},
	}

	d := iotDescriptorFromWire(wire)
	if d.Name != "light" || d.Description != "a lamp" {
		t.Fatalf("name/description not carried over: %+v", d)
	}
	prop, ok := d.Properties["brightness"]
	if !ok || prop.Type != "integer" || prop.Description != "0-100" {
		t.Fatalf("brightness property not translated: %+v", d.Properties)
	}
	method, ok := d.Methods["set_brightness"]
	if !ok || len(method.Parameters) != 1 || method.Parameters[0].Name != "value" {
		t.Fatalf("set_brightness method not translated: %+v", d.Methods)
	}
}

func TestBuildDialogueConfigCarriesIdentityAndAudioRoot(t *testing.T) {
	cfg := &config.Config{AudioPath: "/var/lib/dialoguecore/audio"}
	got := buildDialogueConfig(cfg, "device-1", "role-1")
	if got.DeviceID != "device-1" || got.RoleID != "role-1" || got.AudioRoot != cfg.AudioPath {
		t.Fatalf("buildDialogueConfig = %+v", got)
	}
}

func TestNewSegmenterForAppliesNonZeroRoleOverrides(t *testing.T) {
	role := store.Role{VadSpeechTh: 0.5, VadSilenceMs: 800}
	build := newSegmenterFor(role)
	seg := build()
	if seg == nil {
		t.Fatal("expected a non-nil segmenter")
	}
}

func TestChatEngineConfigCarriesSamplingParams(t *testing.T) {
	role := store.Role{SystemPrompt: "be helpful", Temperature: 0.7, TopP: 0.9}
	cfg := chatEngineConfig(role, "gpt-test")
	if cfg.Model != "gpt-test" || cfg.SystemPrompt != "be helpful" {
		t.Fatalf("chatEngineConfig model/prompt = %+v", cfg)
	}
	if cfg.Params.Temperature != 0.7 || cfg.Params.TopP != 0.9 {
		t.Fatalf("chatEngineConfig params = %+v", cfg.Params)
	}
}

func TestSessionSwitchRoleRejectsUnknownRole(t *testing.T) {
	devices := store.NewKVDeviceStore(newMemoryKV())
	if err := devices.AddDevice(context.Background(), store.Device{ID: "device-1", RoleID: "role-a"}); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}
	rt := &Router{devices: devices, log: testLogger()}
	s := newSessionWithConn(t, "device-1")
	s.router = rt
	s.deviceID = "device-1"

	if err := s.SwitchRole(context.Background(), "role-does-not-exist"); err == nil {
		t.Fatal("expected SwitchRole to fail for an unknown role")
	}
}
