package player

import "time"

// Sentence is one unit of the Player's ordered playback queue. Synthesizer
// fills it in and calls Append; Player only reads it.
type Sentence struct {
	// Seq is the process-wide monotonic sequence number assigned by
	// pkg/sentencer; the queue is always drained in ascending Seq order.
	Seq int64

	// Text is the sentence as delivered to the client's sentence_start
	// event.
	Text string

	// AudioPath is the synthesized WAV file, or empty if synthesis never
	// produced audio for this sentence (the text is still announced).
	AudioPath string

	// ShouldMerge marks this sentence's audio for inclusion in the
	// end-of-turn merged assistant recording.
	ShouldMerge bool

	// RetryCount is how many times the Synthesizer retried this
	// sentence's TTS call before giving up or succeeding.
	RetryCount int

	BeginSynthesis time.Time
	EndSynthesis   time.Time

	// ParentAssistantTimeMs anchors this sentence to its owning turn, for
	// naming the merged audio file.
	ParentAssistantTimeMs int64

	// Emotion is the mood to announce alongside this sentence (e.g.
	// "happy" when extracted from an emoji, or the retry UX cue).
	Emotion string
}

// Producer is implemented by whatever is still appending Sentences to a
// Player's queue (the Synthesizer). Player consults it to decide whether
// an empty queue means "done" or "wait for more".
type Producer interface {
	// StillProducing reports whether more sentences may yet be enqueued.
	StillProducing() bool
}
