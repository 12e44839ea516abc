package session

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aivox/dialoguecore/pkg/chatengine"
	"github.com/aivox/dialoguecore/pkg/config"
	"github.com/aivox/dialoguecore/pkg/dialogue"
	"github.com/aivox/dialoguecore/pkg/genx"
	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/mcp"
	"github.com/aivox/dialoguecore/pkg/memory"
	"github.com/aivox/dialoguecore/pkg/opus"
	"github.com/aivox/dialoguecore/pkg/protocol"
	"github.com/aivox/dialoguecore/pkg/store"
	"github.com/aivox/dialoguecore/pkg/stt"
	"github.com/aivox/dialoguecore/pkg/synth"
	"github.com/aivox/dialoguecore/pkg/tools"
	"github.com/aivox/dialoguecore/pkg/transportws"
	"github.com/aivox/dialoguecore/pkg/tts"

	"github.com/google/uuid"
)

const conversationWindowPairs = 20

// virtualDevicePrefix marks a browser/app chat identity rather than a
// piece of hardware (spec.md §3's DeviceDescriptor.id format), grounded
// on main.py's device_id resolution: virtual devices auto-bind, hardware
// devices without a role go through the verification-code path.
const virtualDevicePrefix = "user_chat_"

// Router is spec.md §4.13's ProtocolRouter: the process-wide object that
// turns one upgraded websocket connection into a running, bound Session,
// and owns every shared (not per-session) dependency those sessions are
// built from.
type Router struct {
	cfg *config.Config

	configs  store.ConfigStore
	devices  store.DeviceStore
	messages store.MessageStore
	convKV   kv.Store

	gen        genx.Generator
	sttFactory *stt.Factory
	ttsFactory *tts.Factory

	registry *Registry
	log      logging.Logger
}

// NewRouter wires the shared adapters a Router hands every Session it
// builds. gen is the model multiplexer (typically generators.DefaultMux
// or a fresh *generators.Mux with providers registered by cmd/dialoguecored).
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	configs store.ConfigStore,
	devices store.DeviceStore,
	messages store.MessageStore,
	convKV kv.Store,
	gen genx.Generator,
	sttFactory *stt.Factory,
	ttsFactory *tts.Factory,
	log logging.Logger,
) *Router {
	if log == nil {
		log = logging.Default("session")
	}
	timeout := time.Duration(cfg.InactiveTimeoutSeconds) * time.Second
	if !cfg.CheckInactiveSession {
		timeout = 0
	}
	return &Router{
		cfg:        cfg,
		configs:    configs,
		devices:    devices,
		messages:   messages,
		convKV:     convKV,
		gen:        gen,
		sttFactory: sttFactory,
		ttsFactory: ttsFactory,
		registry:   NewRegistry(ctx, timeout, log),
		log:        log,
	}
}

// Close shuts down the session registry's inactivity watcher and closes
// every live session, for graceful server shutdown.
func (rt *Router) Close() { rt.registry.Close() }

// HandleConnection runs spec.md §4.13's Connected -> Hello? -> Bound
// state machine for one upgraded connection end to end: it blocks until
// the connection closes. deviceID is resolved by the HTTP layer from the
// upgrade request's own headers/query parameters before this is called
// (original_source/backend/app/main.py reads Device-Id / device-id /
// mac_address / uuid at accept time; it is never carried inside the
// "hello" frame itself).
func (rt *Router) HandleConnection(ctx context.Context, deviceID string, conn *transportws.Conn) {
	defer conn.Close()

	if _, _, err := conn.ReadFrame(); err != nil {
		rt.log.WarnPrintf("router: device %s: read hello: %v", deviceID, err)
		return
	}
	// The hello frame's own fields (features/audio_params) are informational
	// only; this module speaks one fixed Opus framing (spec.md §2), so
	// nothing from Hello changes how the session is built.

	sessionID := uuid.NewString()
	if err := conn.WriteJSON(ctx, protocol.NewHelloResp(sessionID)); err != nil {
		rt.log.WarnPrintf("router: session %s: send hello reply: %v", sessionID, err)
		return
	}

	device, found, err := rt.devices.DeviceByID(ctx, deviceID)
	if err != nil {
		rt.log.ErrorPrintf("router: session %s: load device %s: %v", sessionID, deviceID, err)
		return
	}
	if !found {
		device = store.Device{ID: deviceID, Type: "hardware"}
		if strings.HasPrefix(deviceID, virtualDevicePrefix) {
			device.Type = "virtual"
		}
		if err := rt.devices.AddDevice(ctx, device); err != nil {
			rt.log.ErrorPrintf("router: session %s: register device %s: %v", sessionID, deviceID, err)
			return
		}
	}

	s := &Session{
		ID:        sessionID,
		router:    rt,
		conn:      conn,
		log:       rt.log,
		emitter:   &wsEmitter{sessionID: sessionID, conn: conn},
		deviceID:  deviceID,
		mode:      "auto",
		iotStates: make(map[string]map[string]any),
	}
	s.touch()

	if !rt.bindOrVerify(ctx, s, device) {
		return
	}

	rt.registry.Add(s)
	defer rt.registry.Remove(s)

	rt.dispatchLoop(ctx, s)

	rt.persistCloseState(ctx, s)
}

// bindOrVerify implements spec.md §4.13's Bound branch: a device already
// carrying a role is bound immediately; a virtual device with no role yet
// is auto-bound to cfg.DefaultRoleID; a hardware device with no role
// is sent a one-shot verification-code utterance, after which
// bindOrVerify returns false and HandleConnection closes the connection
// without processing further frames, until a later connection finds the
// device bound (mirroring "for hardware devices... DO NOT
// process further messages until bound" — this module's binding
// completion is DeviceStore.UpdateDevice setting RoleID out of band, e.g.
// from a companion activation API not itself part of this wire protocol).
func (rt *Router) bindOrVerify(ctx context.Context, s *Session, device store.Device) bool {
	s.mu.Lock()
	s.device = device
	s.mu.Unlock()

	if device.RoleID != "" {
		return rt.completeBinding(ctx, s, device)
	}

	if strings.HasPrefix(device.ID, virtualDevicePrefix) {
		roleID := rt.cfg.DefaultRoleID
		if err := rt.devices.UpdateDevice(ctx, device.ID, func(d *store.Device) { d.RoleID = roleID }); err != nil {
			rt.log.ErrorPrintf("router: session %s: auto-bind %s: %v", s.ID, device.ID, err)
			return false
		}
		device.RoleID = roleID
		return rt.completeBinding(ctx, s, device)
	}

	if !rt.registry.tryStartBinding(device.ID) {
		rt.log.InfoPrintf("router: session %s: device %s already has a binding attempt in flight", s.ID, device.ID)
		return false
	}
	defer rt.registry.finishBinding(device.ID)

	code, err := rt.devices.GenerateCode(ctx, device.ID, s.ID, "initial")
	if err != nil {
		rt.log.ErrorPrintf("router: session %s: generate activation code: %v", s.ID, err)
		return false
	}
	if err := rt.speakVerificationCode(ctx, s, code); err != nil {
		rt.log.WarnPrintf("router: session %s: speak activation code: %v", s.ID, err)
	}
	return false
}

// speakVerificationCode synthesizes and plays one utterance reading the
// activation code aloud, using the default TTS adapter since no role (and
// so no per-role TTS provider/voice) is bound yet. Unlike pkg/player's
// turn playback, frames here are sent back to back with no real-time
// pacing: this is a single short one-shot utterance outside the ordinary
// Synthesizer/Player turn machinery, so there is no running turn clock to
// pace against.
func (rt *Router) speakVerificationCode(ctx context.Context, s *Session, code string) error {
	spoken := strings.Join(strings.Split(code, ""), " ")
	text := fmt.Sprintf("请在小程序中输入配对码：%s", spoken)

	path, err := rt.ttsFactory.Default().TextToSpeech(ctx, text)
	if err != nil {
		return fmt.Errorf("session: synthesize activation code: %w", err)
	}

	if err := s.emitter.SendTTSState(ctx, protocol.TTSStart); err != nil {
		rt.log.WarnPrintf("router: session %s: send tts start: %v", s.ID, err)
	}
	if err := s.emitter.SendSentenceStart(ctx, text); err != nil {
		rt.log.WarnPrintf("router: session %s: send sentence start: %v", s.ID, err)
	}
	if err := streamWAVAsOpus(ctx, s.conn, path); err != nil {
		return err
	}
	return s.emitter.SendStop(ctx)
}

// completeBinding builds every per-session component for a device that is
// now known to have a role: codec, VAD segmenter factory, conversation
// window, chat engine, tool registry, MCP bridge, and the
// DialogueController wiring them together, grounded on
// dialogue_service.py's per-session construction at connection time.
func (rt *Router) completeBinding(ctx context.Context, s *Session, device store.Device) bool {
	role, found, err := rt.devices.RoleByID(ctx, device.RoleID)
	if err != nil {
		rt.log.ErrorPrintf("router: session %s: load role %s: %v", s.ID, device.RoleID, err)
		return false
	}
	if !found {
		rt.log.ErrorPrintf("router: session %s: unknown role %s", s.ID, device.RoleID)
		return false
	}

	codec, err := opus.New(opus.DefaultSampleRate, opus.DefaultChannels, opus.DefaultFrameMs)
	if err != nil {
		rt.log.ErrorPrintf("router: session %s: build opus codec: %v", s.ID, err)
		return false
	}

	conv := memory.NewConversation(rt.convKV, device.ID, role.ID, conversationWindowPairs)
	registry := tools.New()
	registry.Register(tools.ExitSessionTool(s))
	registry.Register(tools.NewChatTool(s))

	model, _, _ := rt.configs.ByID(ctx, role.LLMConfigID)
	chat := chatengine.New(chatEngineConfig(role, model.ConfigName), rt.gen, conv, rt.messages, registry,
		&tools.Context{SessionID: s.ID}, rt.log)

	bridge := mcp.New(s.ID, s.emitter, rt.cfg.ServerDomain, rt.cfg.MCP.MaxToolsCount, rt.log)

	sttAdapter := rt.sttFactory.Get(rt.roleConfigProvider(ctx, role.SttConfigID), role.SttConfigID)

	ttsParams := tts.Params{Voice: role.VoiceName, Pitch: role.TtsPitch, Speed: role.TtsSpeed}
	if ttsParams.Pitch == 0 {
		ttsParams.Pitch = tts.DefaultParams().Pitch
	}
	if ttsParams.Speed == 0 {
		ttsParams.Speed = tts.DefaultParams().Speed
	}

	controller := dialogue.New(
		buildDialogueConfig(rt.cfg, device.ID, role.ID),
		codec,
		newSegmenterFor(role),
		sttAdapter,
		chat,
		s.emitter,
		synth.Config{MaxRetryCount: rt.cfg.TTS.MaxRetryCount, RetryDelayMs: rt.cfg.TTS.RetryDelayMs},
		rt.ttsFactory,
		rt.roleConfigProvider(ctx, role.TtsConfigID), role.TtsConfigID,
		ttsParams,
		registry,
		s.emitter,
		s.emitter,
		rt.log,
	)
	controller.Closer = sessionCloserFunc(func(ctx context.Context) error {
		return s.closeWithReason(ctx, "goodbye")
	})
	controller.SessionCloser = s
	controller.McpResponder = bridge

	s.mu.Lock()
	s.device = device
	s.role = role
	s.bound = true
	s.conv = conv
	s.registry = registry
	s.controller = controller
	s.mcpBridge = bridge
	s.mu.Unlock()

	// spec.md §4.13 spawns the MCP handshake rather than waiting on it: the
	// device's reply only reaches us through dispatchLoop, which does not
	// start running until this function returns, so Initialize must not
	// block completeBinding.
	go func() {
		if _, err := bridge.Initialize(ctx); err != nil {
			rt.log.WarnPrintf("router: session %s: mcp initialize: %v", s.ID, err)
		}
	}()

	if err := rt.devices.UpdateDevice(ctx, device.ID, func(d *store.Device) { d.State = 1 }); err != nil {
		rt.log.WarnPrintf("router: session %s: mark device online: %v", s.ID, err)
	}
	return true
}

// sessionCloserFunc adapts a plain func into dialogue.Closer.
type sessionCloserFunc func(ctx context.Context) error

func (f sessionCloserFunc) Close(ctx context.Context) error { return f(ctx) }

// roleConfigProvider resolves the provider name string a stt/tts factory
// keys its cache by, from a role's configId, falling back to the configId
// itself when the store has no ProviderConfig row for it (e.g. tests
// supplying StaticConfigStore fixtures directly).
func (rt *Router) roleConfigProvider(ctx context.Context, configID string) string {
	if configID == "" {
		return ""
	}
	cfg, ok, err := rt.configs.ByID(ctx, configID)
	if err != nil || !ok {
		return configID
	}
	return cfg.Provider
}

// rebuildForRole re-runs completeBinding's construction for a session
// whose device row was just updated to a new RoleID, implementing
// func_changeRole's "swap the running pipeline for the new role" half.
func (rt *Router) rebuildForRole(ctx context.Context, s *Session) error {
	s.mu.Lock()
	device := s.device
	s.mu.Unlock()
	if !rt.completeBinding(ctx, s, device) {
		return fmt.Errorf("session: rebuild for role %s failed", device.RoleID)
	}
	return nil
}

// dispatchLoop is spec.md §5's "one serialized inbound dispatcher per
// channel": it reads frames until the connection closes, routing each to
// the bound Controller.
func (rt *Router) dispatchLoop(ctx context.Context, s *Session) {
	for {
		kind, data, err := s.conn.ReadFrame()
		if err != nil {
			return
		}
		s.touch()

		if !s.isBound() {
			continue
		}

		switch kind {
		case transportws.BinaryFrame:
			if err := s.controller.ProcessAudioData(ctx, data); err != nil {
				rt.log.WarnPrintf("router: session %s: process audio: %v", s.ID, err)
			}
		case transportws.TextFrame:
			if rt.dispatchText(ctx, s, data) {
				return
			}
		}
	}
}

// dispatchText routes one decoded text frame, per handle_text's
// type-keyed dispatch. Returns true when the session should close (the
// "goodbye" branch).
func (rt *Router) dispatchText(ctx context.Context, s *Session, data []byte) bool {
	msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		rt.log.WarnPrintf("router: session %s: parse frame: %v", s.ID, err)
		return false
	}

	switch m := msg.(type) {
	case protocol.Listen:
		switch m.State {
		case protocol.ListenStart:
			s.controller.ListenStart(ctx)
		case protocol.ListenStop:
			s.controller.ListenStop(ctx)
		case protocol.ListenText:
			s.controller.ListenText(ctx, m.Text)
		case protocol.ListenDetect:
			s.controller.ListenDetect(ctx, m.Text)
		}
	case protocol.Abort:
		s.controller.AbortDialogue(ctx, m.Reason)
	case protocol.Goodbye:
		s.controller.Goodbye(ctx)
		return true
	case protocol.Iot:
		if err := s.applyIotMessage(m); err != nil {
			rt.log.WarnPrintf("router: session %s: apply iot message: %v", s.ID, err)
		}
	case protocol.Mcp:
		s.controller.HandleMcpResponse(data)
	}
	return false
}

// persistCloseState implements spec.md §4.13's "any -> on channel close"
// branch: the device transitions online -> offline, or online -> standby
// if the channel was already null (this module never holds a session open
// with a null channel, so every close observed here is the "real"
// disconnect and maps to offline; a standby transition instead belongs to
// a higher-level presence feature outside this wire protocol).
func (rt *Router) persistCloseState(ctx context.Context, s *Session) {
	s.mu.Lock()
	deviceID := s.deviceID
	s.mu.Unlock()

	if err := rt.devices.UpdateDevice(ctx, deviceID, func(d *store.Device) { d.State = 0 }); err != nil {
		rt.log.WarnPrintf("router: session %s: mark device offline: %v", s.ID, err)
	}
}

// closeWithReason aborts whatever the session's dialogue is doing and
// closes its connection, used by both Registry eviction/reaping and the
// Controller's own Closer hook.
func (s *Session) closeWithReason(ctx context.Context, reason string) error {
	if s.controller != nil {
		s.controller.AbortDialogue(ctx, reason)
	}
	return s.conn.Close()
}

const wavHeaderSize = 44

// streamWAVAsOpus reads a WAV file written by pkg/tts (16-bit PCM mono
// 16kHz, skipping the fixed 44-byte header pkg/tts always writes),
// re-encodes it frame by frame through a throwaway codec, and writes each
// frame out as a binary websocket message, grounded on
// pkg/player/player.go's streamFrames (minus its turn-clock pacing, not
// applicable outside a Player-owned turn).
func streamWAVAsOpus(ctx context.Context, conn *transportws.Conn, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("session: open synthesized audio %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Seek(wavHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("session: seek past wav header: %w", err)
	}

	codec, err := opus.New(opus.DefaultSampleRate, opus.DefaultChannels, opus.DefaultFrameMs)
	if err != nil {
		return fmt.Errorf("session: build opus codec: %w", err)
	}
	defer codec.Close()

	frameSamples := codec.FrameSamples()
	buf := make([]byte, frameSamples*2)
	samples := make([]int16, frameSamples)

	for {
		n, rerr := io.ReadFull(f, buf)
		if n == 0 {
			break
		}
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
		}

		opusFrame, encErr := codec.EncodePCM(samples)
		if encErr != nil {
			return fmt.Errorf("session: encode pcm: %w", encErr)
		}
		if err := conn.WriteBinary(ctx, []byte(opusFrame)); err != nil {
			return fmt.Errorf("session: stream audio frame: %w", err)
		}
		if rerr != nil {
			break
		}
	}
	return nil
}
