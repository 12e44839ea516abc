package stt

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/speech"

	"google.golang.org/api/iterator"
)

type fakeVoiceSegment struct{ io.Reader }

func (fakeVoiceSegment) Format() pcm.Format { return pcm.L16Mono16K }
func (fakeVoiceSegment) Close() error       { return nil }

type fakeSegment struct{ text string }

func (s fakeSegment) Decode(pcm.Format) speech.VoiceSegment {
	return fakeVoiceSegment{strings.NewReader("")}
}
func (s fakeSegment) Transcribe() io.ReadCloser { return io.NopCloser(strings.NewReader(s.text)) }
func (s fakeSegment) Close() error              { return nil }

type fakeSpeech struct {
	segs []speech.SpeechSegment
	pos  int
}

func (s *fakeSpeech) Next() (speech.SpeechSegment, error) {
	if s.pos >= len(s.segs) {
		return nil, iterator.Done
	}
	seg := s.segs[s.pos]
	s.pos++
	return seg, nil
}
func (s *fakeSpeech) Close() error { return nil }

type fakeSpeechStream struct {
	speeches []speech.Speech
	pos      int
}

func (s *fakeSpeechStream) Next() (speech.Speech, error) {
	if s.pos >= len(s.speeches) {
		return nil, iterator.Done
	}
	sp := s.speeches[s.pos]
	s.pos++
	return sp, nil
}
func (s *fakeSpeechStream) Close() error { return nil }

func TestAdapterRecognizeConcatenatesSentences(t *testing.T) {
	mux := speech.NewASRMux()
	_ = mux.HandleFunc("fakeprovider", func(ctx context.Context, model string, opus opusrt.FrameReader) (speech.SpeechStream, error) {
		sp := &fakeSpeech{segs: []speech.SpeechSegment{
			fakeSegment{text: "hello"},
			fakeSegment{text: "world"},
		}}
		return &fakeSpeechStream{speeches: []speech.Speech{sp}}, nil
	})

	a := New(mux, "fakeprovider", nil)
	text, err := a.Recognize(context.Background(), []opusrt.Frame{[]byte{0x01}})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", text)
	}
}

func TestFactoryCachesByProviderAndConfig(t *testing.T) {
	mux := speech.NewASRMux()
	f := NewFactory(mux, nil)

	a1 := f.Get("doubao", "cfg1")
	a2 := f.Get("doubao", "cfg1")
	a3 := f.Get("doubao", "cfg2")
	if a1 != a2 {
		t.Fatal("expected cached Adapter for same (provider, configId)")
	}
	if a1 == a3 {
		t.Fatal("expected distinct Adapter for different configId")
	}
}

func TestFactoryDefaultOfflineProviderReturnsEmptyText(t *testing.T) {
	mux := speech.NewASRMux()
	f := NewFactory(mux, nil)

	text, err := f.Default().Recognize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty transcript from offline fallback, got %q", text)
	}
}

func TestStreamRecognizeTimesOutQuickly(t *testing.T) {
	mux := speech.NewASRMux()
	_ = mux.HandleFunc("slow", func(ctx context.Context, model string, opus opusrt.FrameReader) (speech.SpeechStream, error) {
		for {
			_, _, err := opus.Frame()
			if err != nil {
				return nil, err
			}
		}
	})
	a := New(mux, "slow", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ch := make(chan opusrt.Frame)
	_, err := a.StreamRecognize(ctx, ch)
	if err == nil {
		t.Fatal("expected timeout/context error")
	}
}
