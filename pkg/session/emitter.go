package session

import (
	"context"

	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/protocol"
	"github.com/aivox/dialoguecore/pkg/transportws"
)

// wsEmitter adapts one Session's *transportws.Conn to every outbound
// interface the dialogue pipeline needs: dialogue.Emitter, player.Emitter,
// synth.Emitter, and mcp.TextSender. Splitting the wire protocol's many
// send_*_message calls in dialogue_service.py/device_mcp.py into one
// struct per session mirrors how pkg/chatgear's ServerPort plays both
// DownlinkTx roles (audio + command) over a single underlying connection.
type wsEmitter struct {
	sessionID string
	conn      *transportws.Conn
}

// SendSTT implements dialogue.Emitter.
func (e *wsEmitter) SendSTT(ctx context.Context, text string) error {
	return e.conn.WriteJSON(ctx, protocol.NewSTTEvent(text))
}

// SendTTSState implements dialogue.Emitter.
func (e *wsEmitter) SendTTSState(ctx context.Context, state string) error {
	return e.conn.WriteJSON(ctx, protocol.NewTTSState(state))
}

// SendSentenceStart implements player.Emitter.
func (e *wsEmitter) SendSentenceStart(ctx context.Context, text string) error {
	return e.conn.WriteJSON(ctx, protocol.NewTTSSentenceStart(text))
}

// SendEmotion implements player.Emitter/synth.Emitter. The wire "llm" row
// also carries the sentence text per spec.md §6.1, but neither Player nor
// Synthesizer hands this emitter the sentence alongside the emotion (that
// text already went out as a separate tts/sentence_start frame), so Text
// is left empty here.
func (e *wsEmitter) SendEmotion(ctx context.Context, emotion string) error {
	return e.conn.WriteJSON(ctx, protocol.LLMEvent{Type: protocol.TypeLLM, SessionID: e.sessionID, Emotion: emotion})
}

// SendStop implements player.Emitter.
func (e *wsEmitter) SendStop(ctx context.Context) error {
	return e.conn.WriteJSON(ctx, protocol.NewTTSState(protocol.TTSStop))
}

// SendOpusFrame implements player.Emitter, writing one paced Opus frame to
// the binary half of the channel. The websocket transport delivers frames
// in send order with no reordering, so the stamp (used by MQTT/UDP
// transports to let the device's own jitter buffer resequence) is not
// carried over the wire here.
func (e *wsEmitter) SendOpusFrame(ctx context.Context, stamp opusrt.EpochMillis, frame opusrt.Frame) error {
	return e.conn.WriteBinary(ctx, []byte(frame))
}

// SendText implements mcp.TextSender: the Bridge hands us an
// already-marshaled JSON-RPC envelope to forward verbatim.
func (e *wsEmitter) SendText(ctx context.Context, data []byte) error {
	return e.conn.WriteText(ctx, data)
}

// sendIotCommand implements tools.IotCommandSender's wire half, issuing an
// outbound "iot" command frame, grounded on iot_service.py's
// _send_iot_command.
func (e *wsEmitter) sendIotCommand(ctx context.Context, cmd protocol.IotCommand) error {
	return e.conn.WriteJSON(ctx, protocol.NewIotCommandMsg(e.sessionID, cmd))
}
