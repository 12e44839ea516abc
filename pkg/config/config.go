// Package config loads the dialogue-core daemon's YAML configuration file,
// grounded on the teacher's giztoy CLI config layout (goccy/go-yaml-backed
// per-service YAML documents) but collapsed into a single process-wide
// document, since the daemon has no multi-context CLI surface.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the root configuration surface (spec §6.4).
type Config struct {
	// AudioPath is the root directory for generated audio artifacts.
	AudioPath string `yaml:"audio_path"`

	// CheckInactiveSession enables idle-session reaping.
	CheckInactiveSession   bool `yaml:"check_inactive_session"`
	InactiveTimeoutSeconds int  `yaml:"inactive_timeout_seconds"`

	TTS TTSConfig `yaml:"tts"`
	VAD VADConfig `yaml:"vad"`
	MCP MCPConfig `yaml:"mcp"`

	WebsocketPath string `yaml:"websocket_path"`
	ServerHost    string `yaml:"server_host"`
	ServerPort    int    `yaml:"server_port"`
	ServerDomain  string `yaml:"server_domain"`

	VoskModelPath string `yaml:"vosk_model_path"`
	VADModelPath  string `yaml:"vad_model_path"`

	// DefaultRoleID is the role a virtual (user_chat_<uid>) device
	// auto-binds to on first connection, before it has ever called
	// func_changeRole.
	DefaultRoleID string `yaml:"default_role_id"`

	// Providers maps a configId (as referenced by Role.SttConfigID /
	// Role.TtsConfigID / Role.LLMConfigID) to its provider settings.
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// TTSConfig tunes the Synthesizer's retry/concurrency behavior.
type TTSConfig struct {
	TimeoutMs               int `yaml:"tts_timeout_ms"`
	MaxRetryCount           int `yaml:"tts_max_retry_count"`
	RetryDelayMs            int `yaml:"tts_retry_delay_ms"`
	MaxConcurrentPerSession int `yaml:"tts_max_concurrent_per_session"`
}

// VADConfig tunes VadSegmenter buffering that is process-wide rather than
// role-specific (role-specific thresholds live on the Role record itself).
type VADConfig struct {
	PrebufferMs             int  `yaml:"vad_prebuffer_ms"`
	TailKeepMs               int  `yaml:"vad_tail_keep_ms"`
	AudioEnhancementEnabled bool `yaml:"vad_audio_enhancement_enabled"`
}

// MCPConfig bounds device-hosted tool enumeration.
type MCPConfig struct {
	MaxToolsCount int `yaml:"mcp_max_tools_count"`
}

// ProviderConfig is the YAML-deserialized shape backing ConfigStore
// records, mirroring the option structs of the provider packages
// (dashscope, doubaospeech, minimax) closely enough that an adapter can be
// constructed directly from one.
type ProviderConfig struct {
	Provider   string `yaml:"provider"`
	APIURL     string `yaml:"api_url"`
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
	AppID      string `yaml:"app_id"`
	AK         string `yaml:"ak"`
	SK         string `yaml:"sk"`
	ConfigName string `yaml:"config_name"`
	ModelType  string `yaml:"model_type"`
}

// Default returns the configuration's documented defaults (spec §6.4).
func Default() *Config {
	return &Config{
		AudioPath:              "./data/audio",
		CheckInactiveSession:   true,
		InactiveTimeoutSeconds: 20,
		TTS: TTSConfig{
			TimeoutMs:               10_000,
			MaxRetryCount:           1,
			RetryDelayMs:            1000,
			MaxConcurrentPerSession: 2,
		},
		VAD: VADConfig{
			PrebufferMs: 500,
			TailKeepMs:  300,
		},
		MCP: MCPConfig{
			MaxToolsCount: 32,
		},
		WebsocketPath: "/xiaozhi/v1/",
		ServerHost:    "0.0.0.0",
		ServerPort:    8080,
	}
}

// Load reads and parses the YAML configuration file at path, applying
// Default() first so unset fields keep their documented defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ProviderByID looks up a provider configuration by configId, mirroring
// ConfigStore.byId.
func (c *Config) ProviderByID(id string) (ProviderConfig, bool) {
	p, ok := c.Providers[id]
	return p, ok
}

// ProviderByModelType returns the first provider configuration matching
// the given model type, mirroring ConfigStore.byModelType.
func (c *Config) ProviderByModelType(modelType string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ModelType == modelType {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
