// Package stt implements spec.md's SttAdapter: a provider-neutral
// recognize/stream_recognize contract layered directly on pkg/speech's
// trie-routed ASR mux, which already carries real streaming providers
// (Doubao SAUC) behind the same interface.
package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/speech"
)

// StreamTimeout bounds stream_recognize per spec.md §4.3 ("a per-provider
// timeout ≤ 90s").
const StreamTimeout = 90 * time.Second

// Adapter recognizes Opus audio into text using one named provider
// registered on an *speech.ASR mux.
type Adapter struct {
	mux      *speech.ASR
	provider string
	log      logging.Logger
}

// New binds an Adapter to a provider name already registered on mux (or
// speech.ASRMux if mux is nil).
func New(mux *speech.ASR, provider string, log logging.Logger) *Adapter {
	if mux == nil {
		mux = speech.ASRMux
	}
	if log == nil {
		log = logging.Default("stt")
	}
	return &Adapter{mux: mux, provider: provider, log: log}
}

// Recognize implements the batch contract: a complete Opus frame sequence
// in, final text out.
func (a *Adapter) Recognize(ctx context.Context, frames []opusrt.Frame) (string, error) {
	sp, err := a.mux.Transcribe(ctx, a.provider, &sliceFrameReader{frames: frames})
	if err != nil {
		return "", fmt.Errorf("stt: recognize via %s: %w", a.provider, err)
	}
	return collectText(sp)
}

// StreamRecognize implements the streaming contract: chunks arrive over a
// channel, closed (sentinel) once the caller has no more audio. The
// returned text is the concatenation of all committed sentences, per
// spec.md §4.3; stream_recognize times out at StreamTimeout.
func (a *Adapter) StreamRecognize(ctx context.Context, chunks <-chan opusrt.Frame) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, StreamTimeout)
	defer cancel()

	reader := &chanFrameReader{ctx: ctx, ch: chunks}
	stream, err := a.mux.TranscribeStream(ctx, a.provider, reader)
	if err != nil {
		return "", fmt.Errorf("stt: stream_recognize via %s: %w", a.provider, err)
	}
	return collectText(speech.CollectSpeech(stream))
}

// collectText drains every segment's transcript and concatenates them,
// matching spec.md §4.3's "returned text is concatenation of all
// committed sentences".
func collectText(sp speech.Speech) (string, error) {
	defer sp.Close()
	var sb strings.Builder
	for seg, err := range speech.Iter(sp) {
		if err != nil {
			return sb.String(), err
		}
		text, err := readTranscript(seg)
		if err != nil {
			return sb.String(), err
		}
		if sb.Len() > 0 && text != "" {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func readTranscript(seg speech.SpeechSegment) (string, error) {
	defer seg.Close()
	r := seg.Transcribe()
	defer r.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// sliceFrameReader adapts a pre-collected []opusrt.Frame to FrameReader,
// for the batch Recognize path.
type sliceFrameReader struct {
	frames []opusrt.Frame
	pos    int
}

func (r *sliceFrameReader) Frame() (opusrt.Frame, time.Duration, error) {
	if r.pos >= len(r.frames) {
		return nil, 0, io.EOF
	}
	f := r.frames[r.pos]
	r.pos++
	return f, 0, nil
}

// chanFrameReader adapts a channel of frames to FrameReader for the
// streaming path; a closed channel signals end of stream.
type chanFrameReader struct {
	ctx context.Context
	ch  <-chan opusrt.Frame
}

func (r *chanFrameReader) Frame() (opusrt.Frame, time.Duration, error) {
	select {
	case f, ok := <-r.ch:
		if !ok {
			return nil, 0, io.EOF
		}
		return f, 0, nil
	case <-r.ctx.Done():
		return nil, 0, r.ctx.Err()
	}
}
