package tts

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/speech"
)

// DefaultProvider names the mandatory fallback synthesizer spec.md §4.4
// requires: "on any failure, a wrapping factory returns the path produced
// by a mandatory default provider".
const DefaultProvider = "default"

// Factory builds and caches Adapters by (provider, configId, voice,
// pitch, speed), per spec.md §4.3's shared caching note, and wraps every
// Adapter so synthesis failures fall back to DefaultProvider rather than
// propagating past the configured retry budget.
type Factory struct {
	mux      *speech.TTS
	audioDir string
	log      logging.Logger

	mu    sync.Mutex
	cache map[factoryKey]*Adapter
}

type factoryKey struct {
	provider string
	configID string
	voice    string
	pitch    float64
	speed    float64
}

// NewFactory builds a Factory over mux (speech.TTSMux if nil), writing
// audio artifacts under audioDir.
func NewFactory(mux *speech.TTS, audioDir string, log logging.Logger) *Factory {
	if mux == nil {
		mux = speech.TTSMux
	}
	if log == nil {
		log = logging.Default("tts")
	}
	return &Factory{mux: mux, audioDir: audioDir, log: log, cache: make(map[factoryKey]*Adapter)}
}

// Get returns the cached Adapter for (provider, configId, params),
// creating one on first use.
func (f *Factory) Get(provider, configID string, params Params) *Adapter {
	key := factoryKey{provider: provider, configID: configID, voice: params.Voice, pitch: params.Pitch, speed: params.Speed}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.cache[key]; ok {
		return a
	}
	a := New(f.mux, provider, f.audioDir, f.log)
	f.cache[key] = a
	return a
}

// Default returns the mandatory fallback Adapter.
func (f *Factory) Default() *Adapter {
	return f.Get(DefaultProvider, "", DefaultParams())
}

// Synthesize calls the named provider's Adapter and, on any error, falls
// back to the mandatory default provider rather than returning the error
// to the caller, per spec.md §4.4.
func (f *Factory) Synthesize(ctx context.Context, provider, configID string, params Params, text string) (string, error) {
	a := f.Get(provider, configID, params)
	path, err := a.TextToSpeech(ctx, text)
	if err == nil {
		return path, nil
	}
	f.log.WarnPrintf("tts: provider %q failed (%v), falling back to default", provider, err)

	def := f.Default()
	path, derr := def.TextToSpeech(ctx, text)
	if derr != nil {
		return "", fmt.Errorf("tts: default provider also failed: %w", derr)
	}
	return path, nil
}

// RegisterSilentDefault installs a minimal always-available synthesizer
// under DefaultProvider that emits a short silence clip, so the mandatory
// fallback is never itself unavailable even before any real provider is
// configured. Real deployments should register a genuine default
// provider (e.g. a local/offline TTS engine) under the same name before
// serving traffic.
func RegisterSilentDefault(mux *speech.TTS, clipBytesPerCall int) error {
	if mux == nil {
		mux = speech.TTSMux
	}
	return mux.HandleFunc(DefaultProvider, func(ctx context.Context, name string, textStream io.Reader, format pcm.Format) (speech.Speech, error) {
		return newSilentSpeech(format, clipBytesPerCall), nil
	})
}
