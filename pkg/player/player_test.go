package player

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/audio/pcm"
)

type fakeProducer struct {
	mu        sync.Mutex
	producing bool
}

func (p *fakeProducer) StillProducing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.producing
}

func (p *fakeProducer) setProducing(v bool) {
	p.mu.Lock()
	p.producing = v
	p.mu.Unlock()
}

type fakeEmitter struct {
	mu             sync.Mutex
	sentenceStarts []string
	emotions       []string
	frames         int
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
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frames++
	return nil
}

func writeSilentWAV(t *testing.T, dir string, durationMs int) string {
	t.Helper()
	format := pcm.L16Mono16K
	n := format.BytesInDuration(time.Duration(durationMs) * time.Millisecond)
	path := filepath.Join(dir, "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := writeWAVHeaderPlaceholder(f, format); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := f.Write(make([]byte, n)); err != nil {
		t.Fatalf("write pcm: %v", err)
	}
	if err := patchWAVHeader(f, n); err != nil {
		t.Fatalf("patch header: %v", err)
	}
	return path
}

func TestPlayerTextOnlySentenceSendsNoFrames(t *testing.T) {
	emitter := &fakeEmitter{}
	producer := &fakeProducer{producing: true}
	p := New(emitter, producer, pcm.L16Mono16K, t.TempDir(), nil)
	p.NewTurn(1000)

	p.Append(&Sentence{Seq: 1, Text: "hello", Emotion: "happy"})
	producer.setProducing(false)
	done := armDrained(p)
	p.Play()

	waitDrained(t, done)

	if len(emitter.sentenceStarts) != 1 || emitter.sentenceStarts[0] != "hello" {
		t.Fatalf("expected one sentence_start, got %+v", emitter.sentenceStarts)
	}
	if emitter.frames != 0 {
		t.Fatalf("expected no frames for a text-only sentence, got %d", emitter.frames)
	}
	if !emitter.stopped {
		t.Fatal("expected stop to be sent on a non-aborted drain")
	}
}

func TestPlayerStreamsFramesAndSendsStop(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeSilentWAV(t, dir, 180)

	emitter := &fakeEmitter{}
	producer := &fakeProducer{producing: true}
	p := New(emitter, producer, pcm.L16Mono16K, dir, nil)
	p.NewTurn(2000)

	p.Append(&Sentence{Seq: 1, Text: "hi", AudioPath: audioPath, ShouldMerge: true})
	producer.setProducing(false)
	done := armDrained(p)
	p.Play()

	waitDrained(t, done)

	if emitter.frames == 0 {
		t.Fatal("expected at least one opus frame to be sent")
	}
	if !emitter.stopped {
		t.Fatal("expected stop to be sent")
	}
}

func TestPlayerCancelSkipsStopSignal(t *testing.T) {
	emitter := &fakeEmitter{}
	producer := &fakeProducer{producing: true}
	p := New(emitter, producer, pcm.L16Mono16K, t.TempDir(), nil)
	p.NewTurn(3000)

	done := make(chan struct{})
	p.OnDrained = func() { close(done) }

	p.Append(&Sentence{Seq: 1, Text: "will not play", Emotion: ""})
	p.Cancel()
	p.Play()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for drain after cancel")
	}
	if emitter.stopped {
		t.Fatal("expected no stop signal after cancel")
	}
}

func armDrained(p *Player) <-chan struct{} {
	done := make(chan struct{})
	p.OnDrained = func() { close(done) }
	return done
}

func waitDrained(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for player to drain")
	}
}
