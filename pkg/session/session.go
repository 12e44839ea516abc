// Package session implements spec.md's ProtocolRouter and the Session
// entity it manages: the per-connection state machine that turns an
// upgraded websocket channel into a bound, running DialogueController,
// and the registry of all such sessions, grounded on
// pkg/chatgear/conn.go + listener.go + port_server.go's port-management
// discipline, adapted from MQTT topics to a JSON+binary websocket frame
// stream.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aivox/dialoguecore/pkg/audio/pcm"
	"github.com/aivox/dialoguecore/pkg/chatengine"
	"github.com/aivox/dialoguecore/pkg/config"
	"github.com/aivox/dialoguecore/pkg/dialogue"
	"github.com/aivox/dialoguecore/pkg/genx"
	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/mcp"
	"github.com/aivox/dialoguecore/pkg/memory"
	"github.com/aivox/dialoguecore/pkg/protocol"
	"github.com/aivox/dialoguecore/pkg/store"
	"github.com/aivox/dialoguecore/pkg/tools"
	"github.com/aivox/dialoguecore/pkg/transportws"
	"github.com/aivox/dialoguecore/pkg/vad"
)

// Session is spec.md §3's Session entity: one bound (or binding) device
// connection and everything the dialogue pipeline needs to run it.
type Session struct {
	ID       string
	router   *Router
	conn     *transportws.Conn
	log      logging.Logger
	emitter  *wsEmitter
	deviceID string

	mu             sync.Mutex
	device         store.Device
	role           store.Role
	bound          bool
	closeAfterChat bool
	inWakeupResp   bool
	mode           string
	lastActivity   time.Time

	conv       *memory.Conversation
	registry   *tools.Registry
	controller *dialogue.Controller
	mcpBridge  *mcp.Bridge

	iotStates map[string]map[string]any
}

// touch refreshes the inactivity watcher's clock, mirroring
// session_manager.update_last_activity.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Session) lastActivityAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) isBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// CloseAfterChat implements tools.SessionCloser, set by func_exitSession
// and by DialogueController's own exit-intent/goodbye paths.
func (s *Session) CloseAfterChat() {
	s.mu.Lock()
	s.closeAfterChat = true
	s.mu.Unlock()
}

func (s *Session) shouldCloseAfterChat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeAfterChat
}

// Clear implements tools.ConversationClearer for func_new_chat.
func (s *Session) Clear(ctx context.Context) error {
	return s.conv.Clear(ctx)
}

// SwitchRole implements tools.RoleSwitcher for func_changeRole: it
// persists the device's new role assignment and rebuilds every
// role-scoped component (conversation window, chat engine, dialogue
// controller) in place, the same construction path bindSession uses for
// a freshly bound device.
func (s *Session) SwitchRole(ctx context.Context, roleID string) error {
	role, ok, err := s.router.devices.RoleByID(ctx, roleID)
	if err != nil {
		return fmt.Errorf("session: switch role %s: %w", roleID, err)
	}
	if !ok {
		return fmt.Errorf("session: unknown role %s", roleID)
	}
	if err := s.router.devices.UpdateDevice(ctx, s.deviceID, func(d *store.Device) { d.RoleID = roleID }); err != nil {
		return fmt.Errorf("session: persist role switch: %w", err)
	}
	s.mu.Lock()
	s.device.RoleID = roleID
	s.role = role
	s.mu.Unlock()
	return s.router.rebuildForRole(ctx, s)
}

// GetIotProperty implements tools.IotStateReader, answering from the
// most recent "iot" state report this session received.
func (s *Session) GetIotProperty(iotName, propName string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	props, ok := s.iotStates[iotName]
	if !ok {
		return nil, false
	}
	v, ok := props[propName]
	return v, ok
}

// SendIotCommand implements tools.IotCommandSender, dispatching one
// method invocation to the device over the control channel.
func (s *Session) SendIotCommand(iotName, methodName string, params map[string]any) bool {
	cmd := protocol.IotCommand{Name: iotName, Method: methodName, Parameters: params}
	if err := s.emitter.sendIotCommand(context.Background(), cmd); err != nil {
		s.log.WarnPrintf("session %s: send iot command: %v", s.ID, err)
		return false
	}
	return true
}

// applyIotMessage implements handle_text's "iot" branch: device-reported
// state updates are merged into iotStates, and any descriptors carried
// with update (first-contact registration) are translated into
// tools.IotDescriptor and (re)registered.
func (s *Session) applyIotMessage(msg protocol.Iot) error {
	s.mu.Lock()
	for _, st := range msg.States {
		if s.iotStates[st.Name] == nil {
			s.iotStates[st.Name] = make(map[string]any)
		}
		for k, v := range st.State {
			s.iotStates[st.Name][k] = v
		}
	}
	s.mu.Unlock()

	if len(msg.Descriptors) == 0 {
		return nil
	}
	descriptors := make([]tools.IotDescriptor, 0, len(msg.Descriptors))
	for _, wire := range msg.Descriptors {
		descriptors = append(descriptors, iotDescriptorFromWire(wire))
	}
	return s.controller.UpdateIot(descriptors, s, s)
}

func iotDescriptorFromWire(wire protocol.IotDescriptorWire) tools.IotDescriptor {
	d := tools.IotDescriptor{
		Name:        wire.Name,
		Description: wire.Description,
		Properties:  make(map[string]tools.IotProperty, len(wire.Properties)),
		Methods:     make(map[string]tools.IotMethod, len(wire.Methods)),
	}
	for name, p := range wire.Properties {
		d.Properties[name] = tools.IotProperty{Type: p.Type, Description: p.Description}
	}
	for name, m := range wire.Methods {
		params := make([]tools.IotParam, 0, len(m.Parameters))
		for _, p := range m.Parameters {
			params = append(params, tools.IotParam{Name: p.Name, Type: p.Type, Description: p.Description})
		}
		d.Methods[name] = tools.IotMethod{Description: m.Description, Parameters: params}
	}
	return d
}

// buildDialogueConfig gathers what dialogue.New needs for one
// (device, role) pairing from the process config and persisted role
// record, grounded on spec.md §4.12's per-session wiring.
func buildDialogueConfig(cfg *config.Config, deviceID, roleID string) dialogue.Config {
	return dialogue.Config{
		DeviceID:  deviceID,
		RoleID:    roleID,
		AudioRoot: cfg.AudioPath,
		PCMFormat: pcm.L16Mono16K,
	}
}

func newSegmenterFor(role store.Role) func() *vad.Segmenter {
	vcfg := vad.DefaultConfig()
	if role.VadSpeechTh > 0 {
		vcfg.SpeechTh = role.VadSpeechTh
	}
	if role.VadSilenceTh > 0 {
		vcfg.SilenceTh = role.VadSilenceTh
	}
	if role.VadEnergyTh > 0 {
		vcfg.EnergyTh = role.VadEnergyTh
	}
	if role.VadSilenceMs > 0 {
		vcfg.SilenceTimeoutMs = role.VadSilenceMs
	}
	return func() *vad.Segmenter { return vad.NewSegmenter(vcfg, nil) }
}

// chatEngineConfig builds a chatengine.Config from a role row, using its
// system prompt and sampling parameters, grounded on
// dialogue_service.py's per-role ChatService construction.
func chatEngineConfig(role store.Role, model string) chatengine.Config {
	return chatengine.Config{
		Model:        model,
		SystemPrompt: role.SystemPrompt,
		Params: &genx.ModelParams{
			Temperature: float32(role.Temperature),
			TopP:        float32(role.TopP),
		},
	}
}
