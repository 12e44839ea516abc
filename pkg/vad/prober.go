package vad

// modelBufferSamples is the speech-probability model's fixed input window
// (spec.md §4.2: "padded/sliced to the model's 512-sample buffer"),
// matching Silero VAD's 512-sample frame at 16kHz.
const modelBufferSamples = 512

// SpeechProber computes a speech probability for one 512-sample PCM
// window, carrying hidden state across calls the way a recurrent model
// (Silero) would. Implementations must be deterministic given
// (samples, prev state).
type SpeechProber interface {
	// Probability returns the speech probability for samples, which is
	// always exactly modelBufferSamples long.
	Probability(samples []int16) (float32, error)

	// Reset clears any hidden state, as done on Speaking → Idle transition.
	Reset()
}

// heuristicProber is a dependency-free stand-in for a Silero-style neural
// VAD: it derives a probability from normalized frame energy smoothed by
// an exponential moving average, so short noise bursts don't flip the
// state on their own. It is deterministic given (samples, prev EMA).
//
// The production deployment may swap in a model-backed SpeechProber; none
// ships with this module since no Silero ONNX asset is bundled here.
type heuristicProber struct {
	ema float64
}

// NewHeuristicProber returns the default SpeechProber.
func NewHeuristicProber() SpeechProber {
	return &heuristicProber{}
}

func (p *heuristicProber) Probability(samples []int16) (float32, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	var sumSq float64
	for _, s := range samples {
		f := float64(s) / 32768.0
		sumSq += f * f
	}
	rms := sumSq / float64(len(samples))

	const alpha = 0.3
	p.ema = alpha*rms + (1-alpha)*p.ema

	// Map the smoothed mean-square energy linearly onto [0,1] (scaled by
	// 40, clamped at 1) so quiet speech still clears the default
	// speech_th=0.4 threshold.
	prob := p.ema * 40
	if prob > 1 {
		prob = 1
	}
	return float32(prob), nil
}

func (p *heuristicProber) Reset() {
	p.ema = 0
}

// padOrTruncate returns samples resized to modelBufferSamples, zero-padded
// or truncated as needed, without mutating samples.
func padOrTruncate(samples []int16) []int16 {
	if len(samples) == modelBufferSamples {
		return samples
	}
	out := make([]int16, modelBufferSamples)
	n := copy(out, samples)
	_ = n
	return out
}
