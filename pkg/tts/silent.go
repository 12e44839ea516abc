package tts

import (
	"bytes"
	"io"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/speech"

	"google.golang.org/api/iterator"
)

// silentVoiceSegment is a VoiceSegment emitting clipBytes of zeroed PCM.
type silentVoiceSegment struct {
	r      *bytes.Reader
	format pcm.Format
}

func newSilentVoiceSegment(format pcm.Format, clipBytes int) *silentVoiceSegment {
	return &silentVoiceSegment{r: bytes.NewReader(make([]byte, clipBytes)), format: format}
}

func (s *silentVoiceSegment) Read(p []byte) (int, error) { return s.r.Read(p) }
func (s *silentVoiceSegment) Format() pcm.Format         { return s.format }
func (s *silentVoiceSegment) Close() error               { return nil }

// silentSegment is a SpeechSegment carrying no transcript.
type silentSegment struct {
	format    pcm.Format
	clipBytes int
}

func (s silentSegment) Decode(best pcm.Format) speech.VoiceSegment {
	return newSilentVoiceSegment(best, s.clipBytes)
}
func (s silentSegment) Transcribe() io.ReadCloser { return io.NopCloser(bytes.NewReader(nil)) }
func (s silentSegment) Close() error              { return nil }

// silentSpeech yields exactly one silentSegment.
type silentSpeech struct {
	seg  silentSegment
	done bool
}

func newSilentSpeech(format pcm.Format, clipBytes int) *silentSpeech {
	return &silentSpeech{seg: silentSegment{format: format, clipBytes: clipBytes}}
}

func (s *silentSpeech) Next() (speech.SpeechSegment, error) {
	if s.done {
		return nil, iterator.Done
	}
	s.done = true
	return s.seg, nil
}
func (s *silentSpeech) Close() error { return nil }
