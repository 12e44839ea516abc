package commands

import (
	"context"
	"fmt"

	"github.com/aivox/dialoguecore/pkg/config"
	"github.com/aivox/dialoguecore/pkg/dashscope"
	"github.com/aivox/dialoguecore/pkg/doubaospeech"
	"github.com/aivox/dialoguecore/pkg/genx"
	"github.com/aivox/dialoguecore/pkg/genx/generators"
	"github.com/aivox/dialoguecore/pkg/minimax"
	"github.com/aivox/dialoguecore/pkg/speech"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

// dashScopeCompatibleBaseURL is DashScope's OpenAI-compatible chat
// completions endpoint, the same one pkg/embed/dashscope.go's embedder
// points at for DashScope's other OpenAI-shaped API.
const dashScopeCompatibleBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// buildMux registers one genx.Generator, ASR transcriber, or TTS
// synthesizer per entry in cfg.Providers, keyed the way the rest of the
// module looks providers up: generators by ProviderConfig.ConfigName
// (session.completeBinding resolves role.LLMConfigID through
// ConfigStore.ByID and calls chatEngineConfig with model.ConfigName as
// the generator mux key), STT/TTS by ProviderConfig.Provider
// (session.Router.roleConfigProvider resolves role.SttConfigID/
// TtsConfigID the same way and hands the Provider string straight to
// the stt/tts Factory). Grounded on
// haivivi-giztoy/go/pkg/genx/modelloader/config.go's registerOpenAI/
// registerGemini client construction, generalized across every provider
// family this pack's other example repos bring in (Doubao, MiniMax,
// DashScope) instead of just OpenAI/Gemini.
func buildMux(ctx context.Context, cfg *config.Config) (*generators.Mux, *speech.ASR, *speech.TTS, error) {
	gens := generators.NewMux()
	asr := speech.NewASRMux()
	tts := speech.NewTTSMux()

	for id, pc := range cfg.Providers {
		switch pc.Provider {
		case "openai":
			if err := registerOpenAIGenerator(gens, pc); err != nil {
				return nil, nil, nil, fmt.Errorf("provider %s: %w", id, err)
			}
		case "dashscope":
			if err := registerDashScopeGenerator(gens, pc); err != nil {
				return nil, nil, nil, fmt.Errorf("provider %s: %w", id, err)
			}
		case "gemini":
			if err := registerGeminiGenerator(ctx, gens, pc); err != nil {
				return nil, nil, nil, fmt.Errorf("provider %s: %w", id, err)
			}
		case "doubao_asr":
			if err := registerDoubaoASR(asr, pc); err != nil {
				return nil, nil, nil, fmt.Errorf("provider %s: %w", id, err)
			}
		case "dashscope_asr":
			if err := registerDashScopeASR(asr, pc); err != nil {
				return nil, nil, nil, fmt.Errorf("provider %s: %w", id, err)
			}
		case "doubao_tts_v1", "doubao_tts_v2":
			if err := registerDoubaoTTS(tts, pc); err != nil {
				return nil, nil, nil, fmt.Errorf("provider %s: %w", id, err)
			}
		case "minimax_tts":
			if err := registerMinimaxTTS(tts, pc); err != nil {
				return nil, nil, nil, fmt.Errorf("provider %s: %w", id, err)
			}
		case "":
			// An unlabeled provider row exists only to carry
			// provider-agnostic settings (e.g. a bare configId used solely
			// for ByModelType fallback lookups); nothing to register.
		default:
			return nil, nil, nil, fmt.Errorf("provider %s: unknown provider kind %q", id, pc.Provider)
		}
	}
	return gens, asr, tts, nil
}

func registerOpenAIGenerator(gens *generators.Mux, pc config.ProviderConfig) error {
	if pc.APIKey == "" {
		return fmt.Errorf("api_key is required for an openai provider")
	}
	opts := []option.RequestOption{option.WithAPIKey(pc.APIKey)}
	if pc.APIURL != "" {
		opts = append(opts, option.WithBaseURL(pc.APIURL))
	}
	client := openai.NewClient(opts...)
	return gens.Handle(pc.ConfigName, &genx.OpenAIGenerator{Client: &client, Model: pc.ModelType})
}

func registerDashScopeGenerator(gens *generators.Mux, pc config.ProviderConfig) error {
	if pc.APIKey == "" {
		return fmt.Errorf("api_key is required for a dashscope provider")
	}
	baseURL := pc.APIURL
	if baseURL == "" {
		baseURL = dashScopeCompatibleBaseURL
	}
	client := openai.NewClient(option.WithAPIKey(pc.APIKey), option.WithBaseURL(baseURL))
	return gens.Handle(pc.ConfigName, &genx.OpenAIGenerator{Client: &client, Model: pc.ModelType})
}

func registerGeminiGenerator(ctx context.Context, gens *generators.Mux, pc config.ProviderConfig) error {
	if pc.APIKey == "" {
		return fmt.Errorf("api_key is required for a gemini provider")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: pc.APIKey})
	if err != nil {
		return err
	}
	return gens.Handle(pc.ConfigName, &genx.GeminiGenerator{Client: client, Model: pc.ModelType})
}

func newDoubaoClient(pc config.ProviderConfig) *doubaospeech.Client {
	appKey := pc.SK
	if appKey == "" {
		appKey = pc.AppID
	}
	opts := []doubaospeech.Option{doubaospeech.WithV2APIKey(pc.AK, appKey)}
	if pc.APIURL != "" {
		opts = append(opts, doubaospeech.WithBaseURL(pc.APIURL))
	}
	return doubaospeech.NewClient(pc.AppID, opts...)
}

func registerDoubaoASR(asr *speech.ASR, pc config.ProviderConfig) error {
	client := newDoubaoClient(pc)
	return asr.Handle(pc.Provider, speech.NewDoubaoSAUCASRHandler(client))
}

// registerDashScopeASR wires a Qwen-Omni-Realtime session up as an ASR
// provider: the session's output modality is restricted to "text" and
// EnableInputAudioTranscription is set, so the bidirectional realtime
// client (pkg/dashscope) is used purely to transcribe device audio rather
// than to hold a full speech-to-speech conversation.
func registerDashScopeASR(asr *speech.ASR, pc config.ProviderConfig) error {
	if pc.APIKey == "" {
		return fmt.Errorf("api_key is required for a dashscope_asr provider")
	}
	opts := []dashscope.Option{}
	if pc.APIURL != "" {
		opts = append(opts, dashscope.WithBaseURL(pc.APIURL))
	}
	client := dashscope.NewClient(pc.APIKey, opts...)
	handlerOpts := []speech.DashScopeRealtimeASROption{}
	if pc.ModelType != "" {
		handlerOpts = append(handlerOpts, speech.WithDashScopeRealtimeASRModel(pc.ModelType))
	}
	return asr.Handle(pc.Provider, speech.NewDashScopeRealtimeASRHandler(client, handlerOpts...))
}

func registerDoubaoTTS(tts *speech.TTS, pc config.ProviderConfig) error {
	client := newDoubaoClient(pc)
	if pc.Provider == "doubao_tts_v1" {
		return tts.Handle(pc.Provider, speech.NewDoubaoTTSV1Handler(client))
	}
	return tts.Handle(pc.Provider, speech.NewDoubaoTTSV2Handler(client))
}

func registerMinimaxTTS(tts *speech.TTS, pc config.ProviderConfig) error {
	if pc.APIKey == "" {
		return fmt.Errorf("api_key is required for a minimax_tts provider")
	}
	client := minimax.NewClient(pc.APIKey)
	return tts.Handle(pc.Provider, speech.NewMinimaxTTSHandler(client))
}
