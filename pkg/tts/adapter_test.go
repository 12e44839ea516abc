package tts

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/speech"

	"google.golang.org/api/iterator"
)

func registerFixedPCMProvider(t *testing.T, mux *speech.TTS, name string, pcmBytes []byte) {
	t.Helper()
	err := mux.HandleFunc(name, func(ctx context.Context, n string, textStream io.Reader, format pcm.Format) (speech.Speech, error) {
		return &fixedSpeech{segs: []speech.SpeechSegment{fixedSegment{data: pcmBytes}}}, nil
	})
	if err != nil {
		t.Fatalf("HandleFunc: %v", err)
	}
}

type fixedSegment struct{ data []byte }

func (s fixedSegment) Decode(best pcm.Format) speech.VoiceSegment {
	return fixedVoice{r: newByteReader(s.data), format: best}
}
func (s fixedSegment) Transcribe() io.ReadCloser { return io.NopCloser(newByteReader(nil)) }
func (s fixedSegment) Close() error              { return nil }

type fixedVoice struct {
	r      io.Reader
	format pcm.Format
}

func (v fixedVoice) Read(p []byte) (int, error) { return v.r.Read(p) }
func (v fixedVoice) Format() pcm.Format         { return v.format }
func (v fixedVoice) Close() error               { return nil }

func newByteReader(b []byte) io.Reader {
	if b == nil {
		b = []byte{}
	}
	return &sliceReader{data: b}
}

type sliceReader struct {
	data []byte
	pos  int
}

func (r *sliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type fixedSpeech struct {
	segs []speech.SpeechSegment
	pos  int
}

func (s *fixedSpeech) Next() (speech.SpeechSegment, error) {
	if s.pos >= len(s.segs) {
		return nil, iterator.Done
	}
	seg := s.segs[s.pos]
	s.pos++
	return seg, nil
}
func (s *fixedSpeech) Close() error { return nil }

func TestAdapterWritesValidWAVFile(t *testing.T) {
	mux := speech.NewTTSMux()
	pcmData := make([]byte, 3200) // 100ms at 16kHz mono 16-bit
	for i := range pcmData {
		pcmData[i] = byte(i % 7)
	}
	registerFixedPCMProvider(t, mux, "fakeprovider", pcmData)

	dir := t.TempDir()
	a := New(mux, "fakeprovider", dir, nil)

	path, err := a.TextToSpeech(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("TextToSpeech: %v", err)
	}
	if filepath.Dir(path) == "" {
		t.Fatal("expected absolute path")
	}
	if filepath.Ext(path) != ".wav" {
		t.Fatalf("expected .wav extension, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != wavHeaderSize+len(pcmData) {
		t.Fatalf("expected %d bytes, got %d", wavHeaderSize+len(pcmData), len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("not a valid WAV file: %x", data[:12])
	}
	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(pcmData) {
		t.Fatalf("expected data chunk size %d, got %d", len(pcmData), dataSize)
	}
}
