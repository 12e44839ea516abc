package player

import (
	"context"
	"time"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
)

// Emitter is the outbound half of a session's wire protocol that Player
// needs: announcing sentences, emotions, stream boundaries, and sending
// paced Opus frames. A session's protocol layer implements this over its
// websocket connection, mirroring pkg/chatgear's DownlinkTx split between
// binary audio frames and JSON signaling.
type Emitter interface {
	// SendSentenceStart announces the start of one sentence's playback,
	// the `{type: tts, state: sentence_start, text: ...}` wire event.
	SendSentenceStart(ctx context.Context, text string) error

	// SendEmotion announces a mood, the `{type: llm, emotion: ...}` wire
	// event.
	SendEmotion(ctx context.Context, emotion string) error

	// SendStop announces the end of a synthesis turn, the
	// `{type: tts, state: stop}` wire event.
	SendStop(ctx context.Context) error

	// SendOpusFrame sends one stamped Opus frame over the binary
	// channel.
	SendOpusFrame(ctx context.Context, stamp opusrt.EpochMillis, frame opusrt.Frame) error
}
