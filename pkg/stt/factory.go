package stt

import (
	"context"
	"sync"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/speech"

	"google.golang.org/api/iterator"
)

// DefaultProvider names the offline fallback recognizer registered on
// every Factory, mirroring spec.md §4.3's "default provider is an offline
// recognizer (Vosk-like)".
const DefaultProvider = "offline"

// Factory builds and caches Adapters by (provider, configId), per
// spec.md §4.3. A Factory is safe for concurrent use.
type Factory struct {
	mux *speech.ASR
	log logging.Logger

	mu    sync.Mutex
	cache map[cacheKey]*Adapter
}

type cacheKey struct {
	provider string
	configID string
}

// NewFactory builds a Factory over mux (speech.ASRMux if nil), ensuring
// DefaultProvider is registered.
func NewFactory(mux *speech.ASR, log logging.Logger) *Factory {
	if mux == nil {
		mux = speech.ASRMux
	}
	if log == nil {
		log = logging.Default("stt")
	}
	registerOfflineFallback(mux)
	return &Factory{mux: mux, log: log, cache: make(map[cacheKey]*Adapter)}
}

// Get returns the cached Adapter for (provider, configId), creating one
// on first use.
func (f *Factory) Get(provider, configID string) *Adapter {
	key := cacheKey{provider: provider, configID: configID}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.cache[key]; ok {
		return a
	}
	a := New(f.mux, provider, f.log)
	f.cache[key] = a
	return a
}

// Default returns the offline-provider Adapter.
func (f *Factory) Default() *Adapter {
	return f.Get(DefaultProvider, "")
}

// registerOfflineFallback installs an always-available degenerate
// recognizer: it acknowledges the stream but yields no transcript,
// standing in for a bundled Vosk model this module does not ship. Real
// deployments register a genuine offline provider under the same name
// before any session starts; Handle is idempotent-safe to call again.
func registerOfflineFallback(mux *speech.ASR) {
	_ = mux.HandleFunc(DefaultProvider, func(ctx context.Context, model string, opus opusrt.FrameReader) (speech.SpeechStream, error) {
		return emptyStream{}, nil
	})
}

// emptyStream is a SpeechStream yielding no speeches.
type emptyStream struct{}

func (emptyStream) Next() (speech.Speech, error) { return nil, iterator.Done }
func (emptyStream) Close() error                 { return nil }
