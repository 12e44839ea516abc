package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageHello(t *testing.T) {
	raw := []byte(`{"type":"hello","features":{"mcp":true},"audio_params":{"channels":1,"format":"opus","sample_rate":16000,"frame_duration":60}}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	hello, ok := msg.(Hello)
	if !ok {
		t.Fatalf("message type = %T, want Hello", msg)
	}
	if hello.Features == nil || !hello.Features.MCP {
		t.Fatalf("expected features.mcp=true, got %+v", hello.Features)
	}
	if hello.AudioParams == nil || hello.AudioParams.SampleRate != 16000 {
		t.Fatalf("expected audio_params.sample_rate=16000, got %+v", hello.AudioParams)
	}
}

func TestParseClientMessageListenText(t *testing.T) {
	raw := []byte(`{"type":"listen","state":"text","text":"你好"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	listen, ok := msg.(Listen)
	if !ok {
		t.Fatalf("message type = %T, want Listen", msg)
	}
	if listen.State != ListenText || listen.Text != "你好" {
		t.Fatalf("unexpected listen: %+v", listen)
	}
}

func TestParseClientMessageRejectsInvalidListenState(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"listen","state":"dance"}`))
	if err == nil {
		t.Fatal("expected a validation error for an unknown listen.state")
	}
}

func TestParseClientMessageIotDescriptors(t *testing.T) {
	raw := []byte(`{"type":"iot","descriptors":[{"name":"livingroom","properties":{"power":{"type":"boolean","value":false}},"methods":{"turn_on":{"description":"turn on the light"}}}]}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	iot, ok := msg.(Iot)
	if !ok {
		t.Fatalf("message type = %T, want Iot", msg)
	}
	if len(iot.Descriptors) != 1 || iot.Descriptors[0].Name != "livingroom" {
		t.Fatalf("unexpected iot descriptors: %+v", iot.Descriptors)
	}
	if _, ok := iot.Descriptors[0].Methods["turn_on"]; !ok {
		t.Fatalf("expected a turn_on method, got %+v", iot.Descriptors[0].Methods)
	}
}

func TestParseClientMessageAbortAndGoodbye(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"abort","reason":"user"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	if abort, ok := msg.(Abort); !ok || abort.Reason != "user" {
		t.Fatalf("unexpected abort: %+v (ok=%v)", msg, ok)
	}

	msg, err = ParseClientMessage([]byte(`{"type":"goodbye"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	if _, ok := msg.(Goodbye); !ok {
		t.Fatalf("message type = %T, want Goodbye", msg)
	}
}

func TestParseClientMessageMcpCarriesPayloadVerbatim(t *testing.T) {
	raw := []byte(`{"type":"mcp","session_id":"s1","payload":{"jsonrpc":"2.0","id":10000,"result":{}}}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage: %v", err)
	}
	m, ok := msg.(Mcp)
	if !ok {
		t.Fatalf("message type = %T, want Mcp", msg)
	}
	if m.SessionID != "s1" || len(m.Payload) == 0 {
		t.Fatalf("unexpected mcp message: %+v", m)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestNewHelloRespCarriesDefaultAudioParams(t *testing.T) {
	resp := NewHelloResp("sess-1")
	if resp.Transport != "websocket" || resp.SessionID != "sess-1" {
		t.Fatalf("unexpected hello resp: %+v", resp)
	}
	if resp.AudioParams != DefaultAudioParams() {
		t.Fatalf("unexpected audio params: %+v", resp.AudioParams)
	}
}
