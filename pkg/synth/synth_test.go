package synth

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/player"
	"github.com/aivox/dialoguecore/pkg/speech"
	"github.com/aivox/dialoguecore/pkg/tts"

	"google.golang.org/api/iterator"
)

type fakeEmitter struct {
	mu             sync.Mutex
	sentenceStarts []string
	emotions       []string
	stopped        bool
}

func (e *fakeEmitter) SendSentenceStart(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sentenceStarts = append(e.sentenceStarts, text)
	return nil
}
func (e *fakeEmitter) SendEmotion(ctx context.Context, emotion string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emotions = append(e.emotions, emotion)
	return nil
}
func (e *fakeEmitter) SendStop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	return nil
}
func (e *fakeEmitter) SendOpusFrame(ctx context.Context, stamp opusrt.EpochMillis, frame opusrt.Frame) error {
	return nil
}

func (e *fakeEmitter) emotionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.emotions)
}

func registerFailNTimesProvider(t *testing.T, mux *speech.TTS, name string, failures int) *int32 {
	t.Helper()
	var calls int32
	err := mux.HandleFunc(name, func(ctx context.Context, n string, textStream io.Reader, format pcm.Format) (speech.Speech, error) {
		call := atomic.AddInt32(&calls, 1)
		if int(call) <= failures {
			return nil, io.ErrUnexpectedEOF
		}
		return &fixedSpeechStream{}, nil
	})
	if err != nil {
		t.Fatalf("HandleFunc: %v", err)
	}
	return &calls
}

type fixedSpeechStream struct{ done bool }

func (s *fixedSpeechStream) Next() (speech.SpeechSegment, error) {
	if s.done {
		return nil, iterator.Done
	}
	s.done = true
	return fixedSeg{}, nil
}
func (s *fixedSpeechStream) Close() error { return nil }

type fixedSeg struct{}

func (fixedSeg) Decode(best pcm.Format) speech.VoiceSegment { return fixedVoiceStream{} }
func (fixedSeg) Transcribe() io.ReadCloser                   { return io.NopCloser(nil) }
func (fixedSeg) Close() error                                { return nil }

type fixedVoiceStream struct{}

func (fixedVoiceStream) Read(p []byte) (int, error) { return 0, io.EOF }
func (fixedVoiceStream) Format() pcm.Format          { return pcm.L16Mono16K }
func (fixedVoiceStream) Close() error                { return nil }

type alwaysFailProducer struct{ done int32 }

func (p *alwaysFailProducer) StillProducing() bool { return atomic.LoadInt32(&p.done) == 0 }
func (p *alwaysFailProducer) finish()              { atomic.StoreInt32(&p.done, 1) }

func TestSynthesizerRetriesThenFallsBackToDefault(t *testing.T) {
	mux := speech.NewTTSMux()
	if err := tts.RegisterSilentDefault(mux, 1600); err != nil {
		t.Fatalf("RegisterSilentDefault: %v", err)
	}
	calls := registerFailNTimesProvider(t, mux, "flaky", 10)

	f := tts.NewFactory(mux, t.TempDir(), nil)
	emitter := &fakeEmitter{}
	producer := &alwaysFailProducer{}
	pl := player.New(emitter, producer, pcm.L16Mono16K, t.TempDir(), nil)

	s := New(Config{MaxRetryCount: 2, RetryDelayMs: 1}, f, "flaky", "cfg1", tts.DefaultParams(), pl, emitter, 12345, nil)

	done := make(chan struct{})
	pl.OnDrained = func() { close(done) }

	s.AppendSentence("你好，世界")
	s.SetLast()
	producer.finish()
	s.StartSynthesis(context.Background(), NewSliceTokenStream(nil))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for drain")
	}

	if atomic.LoadInt32(calls) != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries) against the flaky provider, got %d", *calls)
	}
	if emitter.emotionCount() < 2 {
		t.Fatalf("expected a retry emotion cue per failed attempt, got %d", emitter.emotionCount())
	}
	if len(emitter.sentenceStarts) != 1 {
		t.Fatalf("expected the sentence to still play via the default fallback, got %+v", emitter.sentenceStarts)
	}
}

func TestSynthesizerStartSynthesisFeedsTokensAndSetsLast(t *testing.T) {
	mux := speech.NewTTSMux()
	if err := tts.RegisterSilentDefault(mux, 1600); err != nil {
		t.Fatalf("RegisterSilentDefault: %v", err)
	}
	f := tts.NewFactory(mux, t.TempDir(), nil)
	emitter := &fakeEmitter{}
	producer := &alwaysFailProducer{}
	pl := player.New(emitter, producer, pcm.L16Mono16K, t.TempDir(), nil)

	s := New(Config{MaxRetryCount: 1, RetryDelayMs: 1}, f, tts.DefaultProvider, "", tts.DefaultParams(), pl, emitter, 1, nil)

	done := make(chan struct{})
	pl.OnDrained = func() { close(done) }

	tokens := NewSliceTokenStream([]string{"你好", "，世界。"})
	s.StartSynthesis(context.Background(), tokens)

	deadline := time.After(3 * time.Second)
	for {
		if !s.StillProducing() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for synthesis worker to finish")
		case <-time.After(10 * time.Millisecond):
		}
	}

	producer.finish()
	pl.Play()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for drain")
	}

	if len(emitter.sentenceStarts) == 0 {
		t.Fatal("expected at least one sentence to reach the player")
	}
}

func TestSynthesizerAppendsApologyOnStreamError(t *testing.T) {
	mux := speech.NewTTSMux()
	if err := tts.RegisterSilentDefault(mux, 1600); err != nil {
		t.Fatalf("RegisterSilentDefault: %v", err)
	}
	f := tts.NewFactory(mux, t.TempDir(), nil)
	emitter := &fakeEmitter{}
	producer := &alwaysFailProducer{}
	pl := player.New(emitter, producer, pcm.L16Mono16K, t.TempDir(), nil)

	s := New(Config{MaxRetryCount: 1, RetryDelayMs: 1}, f, tts.DefaultProvider, "", tts.DefaultParams(), pl, emitter, 1, nil)

	done := make(chan struct{})
	pl.OnDrained = func() { close(done) }

	s.StartSynthesis(context.Background(), &erroringTokenStream{})

	deadline := time.After(3 * time.Second)
	for s.StillProducing() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for synthesis worker to finish")
		case <-time.After(10 * time.Millisecond):
		}
	}

	producer.finish()
	pl.Play()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for drain")
	}

	if len(emitter.sentenceStarts) != 1 {
		t.Fatalf("expected exactly the apology sentence, got %+v", emitter.sentenceStarts)
	}
}

type erroringTokenStream struct{ sent bool }

func (e *erroringTokenStream) Next() (string, error) {
	if !e.sent {
		e.sent = true
		return "oops", io.ErrClosedPipe
	}
	return "", io.ErrClosedPipe
}
