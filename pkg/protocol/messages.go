// Package protocol defines the device/server message wire format spec.md
// §6.1 fixes: JSON text frames with a "type" discriminator, alongside
// opaque binary Opus frames carried on the same channel. Parsing inbound
// frames is grounded on
// original_source/backend/app/dialogue/dialogue_service.py's handle_text
// dispatch and original_source/backend/app/dialogue/iot_service.py's
// descriptor/state shapes, structured the way
// ent0n29-samantha/internal/protocol/messages.go discriminates its own
// websocket envelope.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies a text frame's payload shape.
type MessageType string

const (
	TypeHello   MessageType = "hello"
	TypeListen  MessageType = "listen"
	TypeIot     MessageType = "iot"
	TypeAbort   MessageType = "abort"
	TypeGoodbye MessageType = "goodbye"
	TypeMcp     MessageType = "mcp"

	TypeTTS MessageType = "tts"
	TypeSTT MessageType = "stt"
	TypeLLM MessageType = "llm"
)

// ErrUnsupportedType is returned by ParseClientMessage for an unrecognized
// or missing "type" field; spec.md §7 treats this as a Protocol error the
// session logs and otherwise ignores.
var ErrUnsupportedType = errors.New("protocol: unsupported message type")

// HelloFeatures negotiates optional per-connection capabilities.
type HelloFeatures struct {
	MCP bool `json:"mcp,omitempty"`
	AEC bool `json:"aec,omitempty"`
}

// AudioParams describes the fixed Opus framing this module speaks,
// spec.md §2's {channels:1, format:opus, sample_rate:16000,
// frame_duration:60}.
type AudioParams struct {
	Channels      int    `json:"channels"`
	Format        string `json:"format"`
	SampleRate    int    `json:"sample_rate"`
	FrameDuration int    `json:"frame_duration"`
}

// DefaultAudioParams is the audio_params value every hello response
// carries, per spec.md §2/§4.13.
func DefaultAudioParams() AudioParams {
	return AudioParams{Channels: 1, Format: "opus", SampleRate: 16000, FrameDuration: 60}
}

// Hello is the inbound "hello" frame that begins a session.
type Hello struct {
	Type        MessageType    `json:"type"`
	Features    *HelloFeatures `json:"features,omitempty"`
	AudioParams *AudioParams   `json:"audio_params,omitempty"`
}

// HelloResp is the outbound reply to Hello.
type HelloResp struct {
	Type        MessageType `json:"type"`
	Transport   string      `json:"transport"`
	SessionID   string      `json:"session_id"`
	AudioParams AudioParams `json:"audio_params"`
}

// NewHelloResp builds the canonical hello reply for sessionID.
func NewHelloResp(sessionID string) HelloResp {
	return HelloResp{Type: TypeHello, Transport: "websocket", SessionID: sessionID, AudioParams: DefaultAudioParams()}
}

// Listen states, spec.md §6.1's listen.state enum.
const (
	ListenStart  = "start"
	ListenStop   = "stop"
	ListenText   = "text"
	ListenDetect = "detect"
)

// Listen controls STT/VAD state or delivers already-transcribed text.
type Listen struct {
	Type  MessageType `json:"type"`
	State string      `json:"state"`
	Mode  string      `json:"mode,omitempty"`
	Text  string      `json:"text,omitempty"`
}

// IotState is one device-reported property update for an already
// registered descriptor.
type IotState struct {
	Name  string         `json:"name"`
	State map[string]any `json:"state"`
}

// IotPropertyWire is one queryable property of an IotDescriptorWire, as
// the device reports it over the wire.
type IotPropertyWire struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
}

// IotMethodParamWire is one parameter of an IotMethodWire.
type IotMethodParamWire struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// IotMethodWire is one invocable action of an IotDescriptorWire.
type IotMethodWire struct {
	Description string               `json:"description,omitempty"`
	Parameters  []IotMethodParamWire `json:"parameters,omitempty"`
}

// IotDescriptorWire is one device-reported IoT capability set, the wire
// shape of pkg/tools.IotDescriptor.
type IotDescriptorWire struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Properties  map[string]IotPropertyWire `json:"properties,omitempty"`
	Methods     map[string]IotMethodWire   `json:"methods,omitempty"`
}

// Iot carries either a batch of device-reported descriptors (first
// contact) or state updates against descriptors already registered.
type Iot struct {
	Type        MessageType         `json:"type"`
	Update      bool                `json:"update,omitempty"`
	States      []IotState          `json:"states,omitempty"`
	Descriptors []IotDescriptorWire `json:"descriptors,omitempty"`
}

// IotCommand is one outbound device instruction.
type IotCommand struct {
	Name       string         `json:"name"`
	Method     string         `json:"method"`
	Parameters map[string]any `json:"parameters"`
}

// IotCommandMsg is the outbound "iot" command frame.
type IotCommandMsg struct {
	Type      MessageType  `json:"type"`
	SessionID string       `json:"session_id"`
	Commands  []IotCommand `json:"commands"`
}

// NewIotCommandMsg wraps one or more commands for delivery to sessionID.
func NewIotCommandMsg(sessionID string, commands ...IotCommand) IotCommandMsg {
	return IotCommandMsg{Type: TypeIot, SessionID: sessionID, Commands: commands}
}

// Abort cancels whatever the session's Synthesizer/Player are currently
// doing, spec.md §5's abort_dialogue.
type Abort struct {
	Type   MessageType `json:"type"`
	Reason string      `json:"reason,omitempty"`
}

// Goodbye carries no fields; receiving it closes the session.
type Goodbye struct {
	Type MessageType `json:"type"`
}

// Mcp carries a JSON-RPC 2.0 request or response in both directions over
// the same text channel, grounded on pkg/mcp's envelope.
type Mcp struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// TTS states, spec.md §6.1's tts.state enum.
const (
	TTSStart         = "start"
	TTSSentenceStart = "sentence_start"
	TTSStop          = "stop"
)

// TTSStateMsg announces a Synthesizer/Player lifecycle transition.
type TTSStateMsg struct {
	Type  MessageType `json:"type"`
	State string      `json:"state"`
	Text  string      `json:"text,omitempty"`
}

// NewTTSState builds a tts state frame with no sentence text (start/stop).
func NewTTSState(state string) TTSStateMsg { return TTSStateMsg{Type: TypeTTS, State: state} }

// NewTTSSentenceStart builds the sentence_start frame carrying the
// sentence's own text.
func NewTTSSentenceStart(text string) TTSStateMsg {
	return TTSStateMsg{Type: TypeTTS, State: TTSSentenceStart, Text: text}
}

// STTEvent announces a committed transcript.
type STTEvent struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// NewSTTEvent builds an stt frame.
func NewSTTEvent(text string) STTEvent { return STTEvent{Type: TypeSTT, Text: text} }

// LLMEvent carries one emotion-tagged assistant text, spec.md §6.1's "llm"
// row (used for UI-side text/emotion display alongside the spoken audio).
type LLMEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Emotion   string      `json:"emotion"`
	Text      string      `json:"text"`
}

// envelope reads just enough of a frame to route it to its concrete type.
type envelope struct {
	Type MessageType `json:"type"`
}

// ParseClientMessage decodes one inbound text frame into its concrete
// type (Hello, Listen, Iot, Abort, Goodbye, or Mcp), grounded on
// handle_text's type-keyed dispatch.
func ParseClientMessage(raw []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("protocol: invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeHello:
		var m Hello
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("protocol: invalid hello: %w", err)
		}
		return m, nil
	case TypeListen:
		var m Listen
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("protocol: invalid listen: %w", err)
		}
		switch m.State {
		case ListenStart, ListenStop, ListenText, ListenDetect:
		default:
			return nil, fmt.Errorf("protocol: invalid listen state %q", m.State)
		}
		return m, nil
	case TypeIot:
		var m Iot
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("protocol: invalid iot: %w", err)
		}
		return m, nil
	case TypeAbort:
		var m Abort
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("protocol: invalid abort: %w", err)
		}
		return m, nil
	case TypeGoodbye:
		return Goodbye{Type: TypeGoodbye}, nil
	case TypeMcp:
		var m Mcp
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("protocol: invalid mcp: %w", err)
		}
		return m, nil
	default:
		return nil, ErrUnsupportedType
	}
}
