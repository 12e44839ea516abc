// Package tts implements spec.md's TtsAdapter: a provider-neutral
// text_to_speech(text) -> audio_path contract layered on pkg/speech's
// trie-routed TTS mux, which already carries real provider
// implementations (Doubao v1/v2, MiniMax) behind the same interface.
package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/speech"

	"github.com/google/uuid"
)

// Params are the provider-neutral voice parameters spec.md §4.4 defines,
// mapped by each provider to its native scale.
type Params struct {
	Voice string
	Pitch float64 // [0.5, 2.0], default 1.0
	Speed float64 // [0.5, 2.0], default 1.0
}

// DefaultParams returns the centered provider-neutral defaults.
func DefaultParams() Params { return Params{Pitch: 1.0, Speed: 1.0} }

// Adapter synthesizes text into an audio file using one named provider
// registered on a *speech.TTS mux.
type Adapter struct {
	mux      *speech.TTS
	provider string
	audioDir string
	format   pcm.Format
	log      logging.Logger
}

// New binds an Adapter to a provider name already registered on mux (or
// speech.TTSMux if mux is nil), writing output files under audioDir.
func New(mux *speech.TTS, provider, audioDir string, log logging.Logger) *Adapter {
	if mux == nil {
		mux = speech.TTSMux
	}
	if log == nil {
		log = logging.Default("tts")
	}
	return &Adapter{mux: mux, provider: provider, audioDir: audioDir, format: pcm.L16Mono16K, log: log}
}

// TextToSpeech synthesizes text and returns the absolute path of a newly
// written WAV file under the adapter's audio directory (spec.md §4.4: "a
// random name and the provider's native container" — this module
// standardizes the on-disk container to WAV across providers so every
// session's audio artifacts share one decodable format for auditing,
// per spec.md §6.3).
func (a *Adapter) TextToSpeech(ctx context.Context, text string) (string, error) {
	sp, err := a.mux.Synthesize(ctx, a.provider, strings.NewReader(text), a.format)
	if err != nil {
		return "", fmt.Errorf("tts: synthesize via %s: %w", a.provider, err)
	}
	defer sp.Close()

	path := filepath.Join(a.audioDir, uuid.New().String()+".wav")
	if err := os.MkdirAll(a.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("tts: mkdir %s: %w", a.audioDir, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("tts: create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeWAVFromSpeech(f, sp, a.format); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("tts: write audio: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// writeWAVFromSpeech decodes every segment of sp in order and writes the
// concatenated PCM as one WAV file, reserving the header and patching its
// size fields once the total length is known.
func writeWAVFromSpeech(w io.WriteSeeker, sp speech.Speech, format pcm.Format) error {
	if err := writeWAVHeaderPlaceholder(w, format); err != nil {
		return err
	}

	var total int64
	for seg, err := range speech.Iter(sp) {
		if err != nil {
			return err
		}
		n, err := copySegmentPCM(w, seg, format)
		seg.Close()
		if err != nil {
			return err
		}
		total += n
	}

	return patchWAVHeader(w, total)
}

func copySegmentPCM(w io.Writer, seg speech.SpeechSegment, format pcm.Format) (int64, error) {
	voice := seg.Decode(format)
	defer voice.Close()
	return io.Copy(w, voice)
}
