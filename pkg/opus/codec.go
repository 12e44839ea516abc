// Package opus implements spec.md's OpusCodec: frame-aligned Opus⇄PCM
// conversion with per-session stream state, built directly on the cgo
// libopus bindings in pkg/audio/codec/opus.
package opus

import (
	"fmt"
	"sync"

	libopus "github.com/aivox/dialoguecore/pkg/audio/codec/opus"
)

// Default session audio parameters (spec.md §4.1): 16kHz mono, 60ms
// frames, matching the device firmware's fixed encoding.
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	DefaultFrameMs    = 60
)

// Codec is a per-session Opus encoder/decoder pair. It is not safe for
// concurrent use by multiple goroutines on the same direction (encode vs
// decode may run concurrently with each other, each serialized internally).
type Codec struct {
	sampleRate int
	channels   int
	frameMs    int

	encMu sync.Mutex
	enc   *libopus.Encoder

	decMu sync.Mutex
	dec   *libopus.Decoder
}

// New creates a Codec for one session's audio stream. sampleRate/channels
// default to DefaultSampleRate/DefaultChannels when zero; frameMs defaults
// to DefaultFrameMs.
func New(sampleRate, channels, frameMs int) (*Codec, error) {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	if channels == 0 {
		channels = DefaultChannels
	}
	if frameMs == 0 {
		frameMs = DefaultFrameMs
	}

	enc, err := libopus.NewVoIPEncoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("opus: new encoder: %w", err)
	}
	dec, err := libopus.NewDecoder(sampleRate, channels)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("opus: new decoder: %w", err)
	}

	return &Codec{
		sampleRate: sampleRate,
		channels:   channels,
		frameMs:    frameMs,
		enc:        enc,
		dec:        dec,
	}, nil
}

// Close releases the underlying libopus encoder and decoder.
func (c *Codec) Close() {
	c.encMu.Lock()
	if c.enc != nil {
		c.enc.Close()
		c.enc = nil
	}
	c.encMu.Unlock()

	c.decMu.Lock()
	if c.dec != nil {
		c.dec.Close()
		c.dec = nil
	}
	c.decMu.Unlock()
}

// SampleRate returns the codec's PCM sample rate.
func (c *Codec) SampleRate() int { return c.sampleRate }

// Channels returns the codec's PCM channel count.
func (c *Codec) Channels() int { return c.channels }

// FrameSamples returns the number of PCM samples per channel in one frame
// at the codec's configured frame duration.
func (c *Codec) FrameSamples() int {
	return c.sampleRate * c.frameMs / 1000
}

// EncodePCM encodes one frame's worth of int16 PCM samples (exactly
// FrameSamples()*Channels() samples) into an Opus frame.
func (c *Codec) EncodePCM(pcm []int16) (libopus.Frame, error) {
	want := c.FrameSamples() * c.channels
	if len(pcm) != want {
		return nil, fmt.Errorf("opus: encode expects %d samples, got %d", want, len(pcm))
	}
	c.encMu.Lock()
	defer c.encMu.Unlock()
	if c.enc == nil {
		return nil, fmt.Errorf("opus: codec is closed")
	}
	return c.enc.Encode(pcm, c.FrameSamples())
}

// DecodeFrame decodes one Opus frame into int16 PCM samples (little-endian
// bytes reinterpreted as int16). A nil/empty frame triggers packet-loss
// concealment for one frame duration.
func (c *Codec) DecodeFrame(f libopus.Frame) ([]byte, error) {
	c.decMu.Lock()
	defer c.decMu.Unlock()
	if c.dec == nil {
		return nil, fmt.Errorf("opus: codec is closed")
	}
	if len(f) == 0 {
		return c.dec.DecodePLC(c.FrameSamples())
	}
	return c.dec.Decode(f)
}
