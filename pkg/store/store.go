// Package store defines the persistence contracts spec.md marks opaque to
// the dialogue core (§6.2): configuration/model records, device/role rows,
// and the durable chat-message ledger. The core depends only on these
// interfaces; this package also provides kv.Store-backed implementations so
// the module is runnable standalone, grounded on the same pkg/kv
// abstraction pkg/memory uses for its sliding window.
package store

import (
	"context"

	"github.com/aivox/dialoguecore/pkg/config"
	"github.com/aivox/dialoguecore/pkg/memory"
)

// ConfigStore resolves provider/model configuration rows by configId or by
// model kind (e.g. looking up the default TTS provider).
type ConfigStore interface {
	ByID(ctx context.Context, id string) (config.ProviderConfig, bool, error)
	ByModelType(ctx context.Context, modelType string) (config.ProviderConfig, bool, error)
}

// Device is the persisted device row (spec.md §3 DeviceDescriptor).
type Device struct {
	ID     string `msgpack:"id"`
	UserID string `msgpack:"user_id"`
	RoleID string `msgpack:"role_id"`
	Type   string `msgpack:"type"`
	// State: 0 offline, 1 online, 2 standby.
	State int `msgpack:"state"`
}

// Role is the persisted role row (spec.md §3 Role).
type Role struct {
	ID            string  `msgpack:"id"`
	LLMConfigID   string  `msgpack:"llm_config_id"`
	SttConfigID   string  `msgpack:"stt_config_id"`
	TtsConfigID   string  `msgpack:"tts_config_id"`
	VoiceName     string  `msgpack:"voice_name"`
	TtsPitch      float64 `msgpack:"tts_pitch"`
	TtsSpeed      float64 `msgpack:"tts_speed"`
	Temperature   float64 `msgpack:"temperature"`
	TopP          float64 `msgpack:"top_p"`
	VadSpeechTh   float64 `msgpack:"vad_speech_th"`
	VadSilenceTh  float64 `msgpack:"vad_silence_th"`
	VadEnergyTh   float64 `msgpack:"vad_energy_th"`
	VadSilenceMs  int     `msgpack:"vad_silence_ms"`
	MemoryType    string  `msgpack:"memory_type"`
	SystemPrompt  string  `msgpack:"system_prompt"`
}

// DeviceStore persists device and role rows and issues device-binding
// activation codes.
type DeviceStore interface {
	DeviceByID(ctx context.Context, id string) (Device, bool, error)
	UpdateDevice(ctx context.Context, id string, patch func(*Device)) error
	AddDevice(ctx context.Context, d Device) error

	RoleByID(ctx context.Context, id string) (Role, bool, error)

	// GenerateCode issues a short activation code binding deviceID to
	// sessionID for the given activation type, returning the code.
	GenerateCode(ctx context.Context, deviceID, sessionID, activationType string) (string, error)
}

// MessageStore is the durable, cross-session chat-turn ledger. Unlike
// memory.Conversation (a bounded in-session window), MessageStore exposes
// full CRUD: audio paths and message types are backfilled after a turn is
// first persisted, and find/findAfter serve cold-start window hydration and
// history pagination.
type MessageStore interface {
	Add(ctx context.Context, deviceID, roleID string, msg memory.Message) error
	UpdateType(ctx context.Context, deviceID, roleID string, ts int64, t memory.MessageType) error
	UpdateAudioPath(ctx context.Context, deviceID, roleID string, ts int64, path string) error
	Find(ctx context.Context, deviceID, roleID string, limit int) ([]memory.Message, error)
	FindAfter(ctx context.Context, deviceID, roleID string, afterTs int64, limit int) ([]memory.Message, error)
}
