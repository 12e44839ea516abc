package tts

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/speech"
)

func TestFactoryGetCachesByProviderConfigAndVoiceParams(t *testing.T) {
	mux := speech.NewTTSMux()
	registerFixedPCMProvider(t, mux, "p1", []byte{1, 2, 3, 4})
	f := NewFactory(mux, t.TempDir(), nil)

	a1 := f.Get("p1", "cfg-a", Params{Voice: "v1", Pitch: 1, Speed: 1})
	a2 := f.Get("p1", "cfg-a", Params{Voice: "v1", Pitch: 1, Speed: 1})
	if a1 != a2 {
		t.Fatal("expected same cached Adapter for identical key")
	}

	a3 := f.Get("p1", "cfg-a", Params{Voice: "v2", Pitch: 1, Speed: 1})
	if a1 == a3 {
		t.Fatal("expected distinct Adapter for different voice")
	}
}

func TestFactorySynthesizeFallsBackToDefaultOnFailure(t *testing.T) {
	mux := speech.NewTTSMux()
	if err := mux.HandleFunc("broken", func(ctx context.Context, name string, textStream io.Reader, format pcm.Format) (speech.Speech, error) {
		return nil, errors.New("provider unavailable")
	}); err != nil {
		t.Fatalf("HandleFunc broken: %v", err)
	}
	if err := RegisterSilentDefault(mux, 1600); err != nil {
		t.Fatalf("RegisterSilentDefault: %v", err)
	}

	f := NewFactory(mux, t.TempDir(), nil)
	path, err := f.Synthesize(context.Background(), "broken", "cfg", DefaultParams(), "hello")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if path == "" {
		t.Fatal("expected a non-empty fallback audio path")
	}
}

func TestFactoryDefaultReturnsSameAdapterEachCall(t *testing.T) {
	mux := speech.NewTTSMux()
	if err := RegisterSilentDefault(mux, 1600); err != nil {
		t.Fatalf("RegisterSilentDefault: %v", err)
	}
	f := NewFactory(mux, t.TempDir(), nil)
	if f.Default() != f.Default() {
		t.Fatal("expected Default() to return the cached adapter")
	}
}
