// Package dialogue implements spec.md's DialogueController: the per-session
// state machine that routes binary audio frames through VadSegmenter and
// SttAdapter, turns a final transcript into a ChatEngine turn and a
// Synthesizer playback, and dispatches the session's text control frames
// (listen/abort/goodbye/iot/mcp), grounded on
// original_source/backend/app/dialogue/dialogue_service.py's DialogueService.
package dialogue

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	libopus "github.com/aivox/dialoguecore/pkg/audio/codec/opus"
	"github.com/aivox/dialoguecore/pkg/audio/opusrt"
	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/chatengine"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/metrics"
	"github.com/aivox/dialoguecore/pkg/opus"
	"github.com/aivox/dialoguecore/pkg/player"
	"github.com/aivox/dialoguecore/pkg/synth"
	"github.com/aivox/dialoguecore/pkg/tools"
	"github.com/aivox/dialoguecore/pkg/tts"
	"github.com/aivox/dialoguecore/pkg/vad"

	"google.golang.org/api/iterator"
)

// goodbyeMessages is the exit-intent farewell pool, ported verbatim from
// dialogue_service.py's GOODBYE_MESSAGES.
var goodbyeMessages = []string{
	"好的，拜拜~有需要随时叫我哦~",
	"好呀，那我先走啦，拜拜~",
	"收到！我先退下啦，有需要再叫我~",
	"明白！那我先不打扰你啦，拜拜~",
	"好的呢，有事随时呼叫我，拜拜~",
	"好呀，我先去休息一下，需要我时再叫我哦~",
	"收到！那我就先告退啦，拜拜~",
	"好的，我先离开啦，有问题随时找我~",
	"明白！我先下线休息了，需要时再唤醒我~",
	"好呀好呀，那我先走啦，回见~",
}

func randomGoodbye() string {
	return goodbyeMessages[rand.Intn(len(goodbyeMessages))]
}

// Emitter is the session's outbound text-event half that Controller needs
// directly (distinct from player.Emitter's sentence-level events):
// announcing a committed transcript and the turn-level TTS state changes,
// the `{type: stt, text: ...}` / `{type: tts, state: start|stop}` wire
// events dialogue_service.py sends via send_stt_message/send_tts_message.
type Emitter interface {
	SendSTT(ctx context.Context, text string) error
	SendTTSState(ctx context.Context, state string) error
}

// Closer ends the owning session, mirroring session_manager's
// close_session call in handle_text's "goodbye" branch.
type Closer interface {
	Close(ctx context.Context) error
}

// McpResponder forwards one "mcp" text frame to the session's
// DeviceMcpBridge, matching *pkg/mcp.Bridge's HandleResponse.
type McpResponder interface {
	HandleResponse(data []byte)
}

// Config holds the per-session identity and audio parameters a Controller
// needs but does not own the lifecycle of.
type Config struct {
	DeviceID  string
	RoleID    string
	AudioRoot string
	PCMFormat pcm.Format
}

// Controller is spec.md §4.12's DialogueController: one per session, bound
// to that session's codec/VAD/STT/chat/player/tools.
type Controller struct {
	cfg Config
	log logging.Logger

	codec        *opus.Codec
	newSegmenter func() *vad.Segmenter
	stt          sttRecognizer
	chat         *chatengine.ChatEngine
	player       *player.Player

	synthCfg     synth.Config
	ttsFactory   *tts.Factory
	ttsProvider  string
	ttsConfigID  string
	ttsParams    tts.Params
	synthEmitter synth.Emitter

	registry *tools.Registry
	emitter  Emitter

	// Closer, SessionCloser and McpResponder are optional hooks bound
	// after New, mirroring player.Player's OnMerged/OnDrained and
	// synth.Synthesizer's StillCurrent late-bound fields: a Controller is
	// usable (e.g. in tests) without a session wired behind every one of
	// them.
	Closer        Closer
	SessionCloser tools.SessionCloser
	McpResponder  McpResponder

	mu          sync.Mutex
	seg         *vad.Segmenter
	synthesizer *synth.Synthesizer
	streaming   bool
	audioCh     chan opusrt.Frame
	sttCancel   context.CancelFunc
	capturedPCM []int16
	speechBegan time.Time
}

// sttRecognizer is the narrow slice of *pkg/stt.Adapter Controller drives,
// named so tests can substitute a fake recognizer.
type sttRecognizer interface {
	StreamRecognize(ctx context.Context, chunks <-chan opusrt.Frame) (string, error)
}

// New builds a Controller. newSegmenter builds a fresh *vad.Segmenter each
// time it is called, used both for the initial state and to satisfy
// ListenStart's "re-initialize VAD" contract.
//
// New also owns constructing this session's single long-lived
// *player.Player (playerEmitter is its wire-level Emitter; merged
// assistant recordings land under {audio_root}/{device}/{role}, the same
// directory the user's recorded WAV is saved to), with the Controller
// itself as the Player's Producer: a Synthesizer is rebuilt fresh each
// turn, so the Player needs a stable indirection onto "whichever
// Synthesizer is current" rather than a Producer fixed at construction
// time (see Controller.StillProducing).
func New(
	cfg Config,
	codec *opus.Codec,
	newSegmenter func() *vad.Segmenter,
	stt sttRecognizer,
	chat *chatengine.ChatEngine,
	playerEmitter player.Emitter,
	synthCfg synth.Config,
	ttsFactory *tts.Factory,
	ttsProvider, ttsConfigID string,
	ttsParams tts.Params,
	registry *tools.Registry,
	emitter Emitter,
	synthEmitter synth.Emitter,
	log logging.Logger,
) *Controller {
	if log == nil {
		log = logging.Default("dialogue")
	}
	c := &Controller{
		cfg:          cfg,
		log:          log,
		codec:        codec,
		newSegmenter: newSegmenter,
		stt:          stt,
		chat:         chat,
		synthCfg:     synthCfg,
		ttsFactory:   ttsFactory,
		ttsProvider:  ttsProvider,
		ttsConfigID:  ttsConfigID,
		ttsParams:    ttsParams,
		synthEmitter: synthEmitter,
		registry:     registry,
		emitter:      emitter,
		seg:          newSegmenter(),
	}
	mergeDir := filepath.Join(cfg.AudioRoot, cfg.DeviceID, cfg.RoleID)
	c.player = player.New(playerEmitter, c, cfg.PCMFormat, mergeDir, log)
	return c
}

// StillProducing implements player.Producer by delegating to whichever
// Synthesizer is currently this session's active one.
func (c *Controller) StillProducing() bool {
	c.mu.Lock()
	syn := c.synthesizer
	c.mu.Unlock()
	return syn != nil && syn.StillProducing()
}

// ProcessAudioData decodes one incoming binary Opus frame, feeds it to the
// VAD segmenter, and routes the resulting event, grounded on
// process_audio_data.
func (c *Controller) ProcessAudioData(ctx context.Context, opusFrame []byte) error {
	raw, err := c.codec.DecodeFrame(libopus.Frame(opusFrame))
	if err != nil {
		return fmt.Errorf("dialogue: decode opus frame: %w", err)
	}
	samples := bytesToInt16(raw)

	c.mu.Lock()
	seg := c.seg
	c.mu.Unlock()

	ev, err := seg.ProcessFrame(vad.Frame{PCM: samples, Opus: opusFrame})
	if err != nil {
		return fmt.Errorf("dialogue: vad process frame: %w", err)
	}

	switch ev.Kind {
	case vad.EventSpeechStart:
		c.onSpeechStart(ev)
	case vad.EventSpeechContinue:
		c.onSpeechContinue(ev)
	case vad.EventSpeechEnd:
		c.onSpeechEnd(ev)
	}
	return nil
}

func bytesToInt16(raw []byte) []int16 {
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
	}
	return out
}

// onSpeechStart mirrors process_audio_data's SPEECH_START branch: any
// synthesizer already speaking for this session is aborted (the user is
// interrupting it), then STT streaming begins.
func (c *Controller) onSpeechStart(ev vad.Event) {
	c.mu.Lock()
	syn := c.synthesizer
	c.speechBegan = time.Now()
	c.mu.Unlock()
	if syn != nil {
		c.AbortDialogue(context.Background(), "user interrupted with new speech")
	}
	c.startSTT(ev)
}

func (c *Controller) onSpeechContinue(ev vad.Event) {
	c.mu.Lock()
	ch := c.audioCh
	streaming := c.streaming
	c.mu.Unlock()
	if !streaming || ch == nil {
		return
	}
	select {
	case ch <- opusrt.Frame(ev.Opus):
	default:
		c.log.WarnPrintf("dialogue: stt audio channel full, dropping frame")
	}
}

func (c *Controller) onSpeechEnd(ev vad.Event) {
	c.mu.Lock()
	ch := c.audioCh
	c.audioCh = nil
	c.streaming = false
	c.capturedPCM = ev.CapturedPCM
	segmentDuration := time.Since(c.speechBegan)
	c.mu.Unlock()
	metrics.Default().RecordSpeechSegment(context.Background(), segmentDuration)
	if ch != nil {
		close(ch)
	}
}

// startSTT spawns the streaming recognizer seeded with the SpeechStart
// event's frame, mirroring _start_stt's background thread: a channel
// stands in for Python's blocking generator, closed at SpeechEnd to signal
// end of audio.
func (c *Controller) startSTT(ev vad.Event) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan opusrt.Frame, 64)

	c.mu.Lock()
	c.audioCh = ch
	c.streaming = true
	c.sttCancel = cancel
	c.mu.Unlock()

	if len(ev.Opus) > 0 {
		select {
		case ch <- opusrt.Frame(ev.Opus):
		default:
		}
	}

	go func() {
		text, err := c.stt.StreamRecognize(ctx, ch)

		c.mu.Lock()
		c.streaming = false
		c.audioCh = nil
		c.sttCancel = nil
		pcmSamples := c.capturedPCM
		c.capturedPCM = nil
		c.mu.Unlock()

		if err != nil {
			c.log.WarnPrintf("dialogue: stream recognition failed: %v", err)
			return
		}
		c.handleTurn(context.Background(), text, pcmSamples, true)
	}()
}

// handleTurn runs the shared post-transcript tail every entry point
// (voice, "listen: text", "listen: detect") funnels into: announce the
// transcript, save the user's recording if any, check for an exit intent,
// and otherwise drive one ChatEngine turn into a fresh Synthesizer.
// useFunctionCall disables both tool calling and exit-intent detection for
// the wake-word path, mirroring handle_wake_word's chat_stream(..., False)
// (a wake word is not itself an utterance the user could ask to leave on).
func (c *Controller) handleTurn(ctx context.Context, text string, pcmSamples []int16, useFunctionCall bool) {
	if text == "" {
		return
	}

	if c.emitter != nil {
		if err := c.emitter.SendSTT(ctx, text); err != nil {
			c.log.WarnPrintf("dialogue: send stt event: %v", err)
		}
		if err := c.emitter.SendTTSState(ctx, "start"); err != nil {
			c.log.WarnPrintf("dialogue: send tts start event: %v", err)
		}
	}

	assistantTimeMs := time.Now().UnixMilli()

	var audioPath string
	if len(pcmSamples) > 0 {
		path, err := saveUserWAV(c.cfg.AudioRoot, c.cfg.DeviceID, c.cfg.RoleID, assistantTimeMs, pcmSamples, c.cfg.PCMFormat)
		if err != nil {
			c.log.WarnPrintf("dialogue: save user audio: %v", err)
		} else {
			audioPath = path
		}
	}

	if useFunctionCall && IsExitIntent(text) {
		c.sendGoodbyeMessage(ctx, assistantTimeMs)
		return
	}

	meta := chatengine.TurnMeta{AudioPath: audioPath, AssistantTimeMs: assistantTimeMs}
	tokens, err := c.chat.ChatStream(ctx, text, useFunctionCall, meta)
	if err != nil {
		c.log.ErrorPrintf("dialogue: chat stream: %v", err)
		return
	}

	syn := c.startSynthesis(assistantTimeMs)
	syn.StartSynthesis(ctx, tokens)
}

// startSynthesis resets the shared Player for a new turn and builds that
// turn's Synthesizer, wiring StillCurrent so a later-replaced Synthesizer's
// in-flight work stops delivering once it is no longer the session's
// current one (spec.md §4.6).
func (c *Controller) startSynthesis(assistantTimeMs int64) *synth.Synthesizer {
	c.player.NewTurn(assistantTimeMs)
	syn := synth.New(c.synthCfg, c.ttsFactory, c.ttsProvider, c.ttsConfigID, c.ttsParams, c.player, c.synthEmitter, assistantTimeMs, c.log)

	c.mu.Lock()
	c.synthesizer = syn
	c.mu.Unlock()
	syn.StillCurrent = func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.synthesizer == syn
	}
	return syn
}

// sendGoodbyeMessage implements _send_exit_message: mark the session to
// close once this reply finishes speaking, then speak one random farewell
// directly (no LLM turn involved).
func (c *Controller) sendGoodbyeMessage(ctx context.Context, assistantTimeMs int64) {
	if c.SessionCloser != nil {
		c.SessionCloser.CloseAfterChat()
	}
	if c.emitter != nil {
		if err := c.emitter.SendTTSState(ctx, "start"); err != nil {
			c.log.WarnPrintf("dialogue: send tts start event: %v", err)
		}
	}

	syn := c.startSynthesis(assistantTimeMs)
	syn.AppendSentence(randomGoodbye())
	syn.StartSynthesis(ctx, emptyTokenStream{})
	syn.SetLast()
}

// emptyTokenStream is an already-exhausted synth.TokenStream, used to start
// a Synthesizer's worker loop for turns whose only content is a directly
// appended sentence (the goodbye message).
type emptyTokenStream struct{}

func (emptyTokenStream) Next() (string, error) { return "", iterator.Done }

// AbortDialogue cancels whatever is in flight for this session: an
// outstanding STT stream, the current Synthesizer, and playback, then
// announces the stop, mirroring abort_dialogue.
func (c *Controller) AbortDialogue(ctx context.Context, reason string) {
	c.mu.Lock()
	syn := c.synthesizer
	c.synthesizer = nil
	cancel := c.sttCancel
	c.sttCancel = nil
	c.audioCh = nil
	c.streaming = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if syn != nil {
		syn.Cancel()
	}
	c.player.Cancel()
	if c.emitter != nil {
		if err := c.emitter.SendTTSState(ctx, "stop"); err != nil {
			c.log.WarnPrintf("dialogue: send tts stop event: %v", err)
		}
	}
	if reason != "" {
		c.log.InfoPrintf("dialogue: aborted (%s)", reason)
	}
}

// ListenStart re-initializes the VAD segmenter, grounded on handle_text's
// "listen": "start" branch.
func (c *Controller) ListenStart(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seg = c.newSegmenter()
}

// ListenStop flushes any STT stream in flight by closing its audio
// channel, letting the recognizer return whatever transcript it has
// committed so far, grounded on handle_text's "listen": "stop" branch.
func (c *Controller) ListenStop(context.Context) {
	c.mu.Lock()
	ch := c.audioCh
	c.audioCh = nil
	c.streaming = false
	c.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// ListenText treats payload as an already-transcribed utterance, grounded
// on handle_text's general text path (handle_text itself).
func (c *Controller) ListenText(ctx context.Context, text string) {
	c.handleTurn(ctx, text, nil, true)
}

// ListenDetect treats payload as a wake-word hit: no STT, tool calling
// disabled for the reply, grounded on handle_wake_word.
func (c *Controller) ListenDetect(ctx context.Context, text string) {
	c.handleTurn(ctx, text, nil, false)
}

// Goodbye implements handle_text's "goodbye" branch: reset VAD, abort
// whatever is in flight, and close the session.
func (c *Controller) Goodbye(ctx context.Context) error {
	c.ListenStart(ctx)
	c.AbortDialogue(ctx, "goodbye")
	if c.Closer != nil {
		return c.Closer.Close(ctx)
	}
	return nil
}

// UpdateIot (re)registers the tool functions for one batch of IoT
// descriptors, grounded on handle_text's "iot" branch /
// iot_service.py's _register_function_tools. Registry.Register replaces
// any existing tool of the same name, so calling this again with refreshed
// descriptors needs no separate unregister step.
func (c *Controller) UpdateIot(descriptors []tools.IotDescriptor, reader tools.IotStateReader, sender tools.IotCommandSender) error {
	if c.registry == nil {
		return fmt.Errorf("dialogue: no tool registry configured")
	}
	for _, d := range descriptors {
		if err := tools.RegisterIotDescriptor(c.registry, d, reader, sender); err != nil {
			return fmt.Errorf("dialogue: register iot descriptor %s: %w", d.Name, err)
		}
	}
	return nil
}

// HandleMcpResponse forwards one "mcp" text frame to the session's
// DeviceMcpBridge, grounded on handle_text's "mcp" branch.
func (c *Controller) HandleMcpResponse(data []byte) {
	if c.McpResponder != nil {
		c.McpResponder.HandleResponse(data)
	}
}
