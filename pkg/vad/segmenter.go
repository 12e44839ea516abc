// Package vad implements spec.md's VadSegmenter: a per-session speech
// activity detector with pre-roll buffering, silence-timeout/tail-trim
// gating, and a small-chunk accumulator for the otherwise-silent path.
package vad

// EventKind identifies what a ProcessFrame call produced.
type EventKind int

const (
	// EventNone is emitted on Idle frames that were only buffered.
	EventNone EventKind = iota
	EventSpeechStart
	EventSpeechContinue
	EventSpeechEnd
)

// Event is the outcome of feeding one frame to the Segmenter.
type Event struct {
	Kind EventKind

	// PCM/Opus carry the newly captured bytes belonging to this event:
	// on SpeechStart, the drained pre-roll plus the current frame; on
	// SpeechContinue, the current frame; on SpeechEnd, nothing further
	// (the tail was already trimmed from the running capture).
	PCM  []int16
	Opus []byte

	// CapturedPCM/CapturedOpus are populated only on SpeechEnd, holding
	// the full trimmed utterance captured since SpeechStart.
	CapturedPCM  []int16
	CapturedOpus [][]byte
}

// Frame is one decoded PCM chunk paired with its originating Opus frame
// (nil if the chunk did not originate from a single Opus frame, e.g. a
// coalesced accumulator flush).
type Frame struct {
	PCM  []int16
	Opus []byte
}

// Config holds the per-role thresholds (spec.md §3 Role) plus the
// process-wide buffering parameters (spec.md §6.4).
type Config struct {
	SpeechTh         float64
	SilenceTh        float64
	EnergyTh         float64
	SilenceTimeoutMs int

	PreBufferMs int
	TailKeepMs  int

	SampleRate int // PCM samples per second, default 16000.
}

// DefaultConfig returns spec.md §4.2's documented role-threshold defaults
// plus 500ms pre-roll / 300ms tail-keep (§3).
func DefaultConfig() Config {
	return Config{
		SpeechTh:         0.4,
		SilenceTh:        0.3,
		EnergyTh:         0.001,
		SilenceTimeoutMs: 800,
		PreBufferMs:      500,
		TailKeepMs:       300,
		SampleRate:       16000,
	}
}

// state is the Segmenter's Idle/Speaking state machine position.
type state int

const (
	stateIdle state = iota
	stateSpeaking
)

const onsetSofteningFrames = 10

// Segmenter is a per-session VAD state machine (spec.md §4.2).
type Segmenter struct {
	cfg    Config
	prober SpeechProber

	st               state
	silenceDurMs     int
	framesSeen       int
	smallChunkBuf    []int16
	smallChunkOpus   [][]byte
	smallChunkSinceMs int

	preRoll    []Frame
	preRollCap int // bytes, per spec (pre_buffer_ms*32 ≈ bytes at 16kHz mono 16-bit)

	capturedPCM  []int16
	capturedOpus [][]byte
}

// NewSegmenter builds a Segmenter with the given config and speech
// probability backend. prober == nil uses NewHeuristicProber().
func NewSegmenter(cfg Config, prober SpeechProber) *Segmenter {
	if prober == nil {
		prober = NewHeuristicProber()
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	return &Segmenter{
		cfg:        cfg,
		prober:     prober,
		preRollCap: cfg.PreBufferMs * 32,
	}
}

// frameDurationMs estimates the duration of one PCM chunk for silence
// timeout accounting, assuming 16-bit samples at cfg.SampleRate.
func (s *Segmenter) frameDurationMs(samples int) int {
	if s.cfg.SampleRate == 0 {
		return 0
	}
	return samples * 1000 / s.cfg.SampleRate
}

// ProcessFrame runs one decoded PCM chunk (with its source Opus frame)
// through the state machine, returning the resulting event.
func (s *Segmenter) ProcessFrame(f Frame) (Event, error) {
	s.framesSeen++
	durMs := s.frameDurationMs(len(f.PCM))

	prob, err := s.prober.Probability(padOrTruncate(f.PCM))
	if err != nil {
		return Event{}, err
	}
	energy := meanAbs(f.PCM)

	speechTh, energyTh := s.cfg.SpeechTh, s.cfg.EnergyTh
	if s.framesSeen <= onsetSofteningFrames {
		speechTh *= 0.6
		energyTh *= 0.3
	}

	s.appendPreRoll(f)

	isSilence := float64(prob) < s.cfg.SilenceTh ||
		(float64(prob) < speechTh && energy <= energyTh) ||
		energy < energyTh
	isSpeech := float64(prob) > speechTh && energy > energyTh

	switch s.st {
	case stateIdle:
		if isSpeech {
			return s.onSpeechStart(f), nil
		}
		s.bufferSmallChunk(f, durMs)
		return Event{Kind: EventNone}, nil

	case stateSpeaking:
		if isSpeech {
			s.silenceDurMs = 0
			s.appendCapture(f)
			return Event{Kind: EventSpeechContinue, PCM: f.PCM, Opus: f.Opus}, nil
		}
		if isSilence {
			s.silenceDurMs += durMs
			if s.silenceDurMs <= s.cfg.SilenceTimeoutMs {
				s.appendCapture(f)
				return Event{Kind: EventSpeechContinue, PCM: f.PCM, Opus: f.Opus}, nil
			}
			return s.onSpeechEnd(durMs, len(f.PCM)), nil
		}
		// Ambiguous frame (neither clearly speech nor silence): keep
		// capturing, don't advance the silence clock.
		s.appendCapture(f)
		return Event{Kind: EventSpeechContinue, PCM: f.PCM, Opus: f.Opus}, nil
	}
	return Event{Kind: EventNone}, nil
}

func (s *Segmenter) onSpeechStart(f Frame) Event {
	s.st = stateSpeaking
	s.silenceDurMs = 0

	drained := s.drainPreRoll()
	s.capturedPCM = append(s.capturedPCM, flattenPCM(drained)...)
	for _, fr := range drained {
		if fr.Opus != nil {
			s.capturedOpus = append(s.capturedOpus, fr.Opus)
		}
	}
	s.appendCapture(f)

	var pcm []int16
	for _, fr := range drained {
		pcm = append(pcm, fr.PCM...)
	}
	pcm = append(pcm, f.PCM...)

	return Event{Kind: EventSpeechStart, PCM: pcm, Opus: f.Opus}
}

func (s *Segmenter) onSpeechEnd(lastFrameDurMs, lastFrameSamples int) Event {
	dropMs := s.silenceDurMs - s.cfg.TailKeepMs
	if dropMs > 0 && lastFrameDurMs > 0 {
		dropFrames := dropMs / lastFrameDurMs
		s.popTail(dropFrames, lastFrameSamples)
	}

	evt := Event{
		Kind:         EventSpeechEnd,
		CapturedPCM:  s.capturedPCM,
		CapturedOpus: s.capturedOpus,
	}

	s.st = stateIdle
	s.silenceDurMs = 0
	s.capturedPCM = nil
	s.capturedOpus = nil
	s.preRoll = nil
	s.prober.Reset()

	return evt
}

// appendCapture appends f to the running captured PCM/Opus lists, the
// teacher-independent implementation of spec.md §4.2 step 4 ("append chunk
// to Opus-captured and PCM-captured lists only when Speaking").
func (s *Segmenter) appendCapture(f Frame) {
	s.capturedPCM = append(s.capturedPCM, f.PCM...)
	if f.Opus != nil {
		s.capturedOpus = append(s.capturedOpus, f.Opus)
	}
}

// popTail removes the last n frames from both captured lists, trimming
// the retained trailing silence down to TailKeepMs. frameSamples is the
// PCM length of one frame.
func (s *Segmenter) popTail(n, frameSamples int) {
	if n <= 0 {
		return
	}
	dropSamples := frameSamples * n
	if dropSamples > len(s.capturedPCM) {
		dropSamples = len(s.capturedPCM)
	}
	s.capturedPCM = s.capturedPCM[:len(s.capturedPCM)-dropSamples]
	if n > len(s.capturedOpus) {
		n = len(s.capturedOpus)
	}
	s.capturedOpus = s.capturedOpus[:len(s.capturedOpus)-n]
}

// appendPreRoll adds f to the pre-roll ring, evicting the oldest frames
// once the ring exceeds preRollCap bytes (2 bytes/sample).
func (s *Segmenter) appendPreRoll(f Frame) {
	s.preRoll = append(s.preRoll, f)
	total := 0
	for _, fr := range s.preRoll {
		total += len(fr.PCM) * 2
	}
	for total > s.preRollCap && len(s.preRoll) > 0 {
		total -= len(s.preRoll[0].PCM) * 2
		s.preRoll = s.preRoll[1:]
	}
}

// drainPreRoll empties and returns the pre-roll ring.
func (s *Segmenter) drainPreRoll() []Frame {
	out := s.preRoll
	s.preRoll = nil
	return out
}

// bufferSmallChunk accumulates Idle-path frames, flushing at ≥960 bytes
// or ≥300ms since the last append (spec.md §4.2 step "Idle and !is_speech").
// The flushed chunk is not itself an Event and is not handed to anyone:
// a flush simply discards the accumulated bytes.
func (s *Segmenter) bufferSmallChunk(f Frame, durMs int) {
	s.smallChunkBuf = append(s.smallChunkBuf, f.PCM...)
	if f.Opus != nil {
		s.smallChunkOpus = append(s.smallChunkOpus, f.Opus)
	}
	s.smallChunkSinceMs += durMs
	if len(s.smallChunkBuf)*2 >= 960 || s.smallChunkSinceMs >= 300 {
		s.smallChunkBuf = nil
		s.smallChunkOpus = nil
		s.smallChunkSinceMs = 0
	}
}

// IsSpeaking reports whether the Segmenter is currently in the Speaking
// state.
func (s *Segmenter) IsSpeaking() bool { return s.st == stateSpeaking }

func meanAbs(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		f := float64(v) / 32768.0
		if f < 0 {
			f = -f
		}
		sum += f
	}
	return sum / float64(len(samples))
}

func flattenPCM(frames []Frame) []int16 {
	var out []int16
	for _, f := range frames {
		out = append(out, f.PCM...)
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
