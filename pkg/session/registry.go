package session

import (
	"context"
	"sync"
	"time"

	"github.com/aivox/dialoguecore/pkg/logging"
	"github.com/aivox/dialoguecore/pkg/metrics"
)

// Registry tracks every live Session, keyed both by its own id and by the
// device id it is currently bound to, and reaps sessions the device has
// gone quiet on. Grounded on pkg/chatgear/listener.go's
// ports/managedPort/timeoutChecker trio, adapted from MQTT gearID keying
// to websocket session-id keying and from a fixed per-listener timeout to
// spec.md §4.13's configurable inactive_timeout_seconds.
type Registry struct {
	log     logging.Logger
	timeout time.Duration

	mu          sync.Mutex
	sessions    map[string]*Session
	deviceIndex map[string]string // device id -> session id
	binding     map[string]bool   // device id -> captcha/auto-bind in progress

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry builds a Registry and starts its inactivity watcher if
// timeout > 0 (spec.md §4.13: check_inactive_session disables it
// entirely by passing timeout == 0).
func NewRegistry(ctx context.Context, timeout time.Duration, log logging.Logger) *Registry {
	if log == nil {
		log = logging.Default("session")
	}
	childCtx, cancel := context.WithCancel(ctx)
	r := &Registry{
		log:         log,
		timeout:     timeout,
		sessions:    make(map[string]*Session),
		deviceIndex: make(map[string]string),
		binding:     make(map[string]bool),
		ctx:         childCtx,
		cancel:      cancel,
	}
	if timeout > 0 {
		go r.watchInactive()
	}
	return r
}

// Add registers a newly connected Session, evicting any earlier session
// already bound to the same device (spec.md §3's "1 device_id -> at most
// 1 live session; a later binding evicts the earlier one").
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	var evict *Session
	if prevID, ok := r.deviceIndex[s.deviceID]; ok {
		evict = r.sessions[prevID]
	}
	r.sessions[s.ID] = s
	r.deviceIndex[s.deviceID] = s.ID
	r.mu.Unlock()

	metrics.Default().RecordSessionBound(context.Background())

	if evict != nil {
		r.log.InfoPrintf("session %s: evicting earlier session %s for device %s", s.ID, evict.ID, s.deviceID)
		evict.closeWithReason(context.Background(), "superseded by a new connection")
	}
}

// Remove drops a session from both indices, mirroring releasePort's
// device_index-alongside-sessions-map discipline; it is a no-op if the
// device index now points at a different (newer) session.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.ID)
	if r.deviceIndex[s.deviceID] == s.ID {
		delete(r.deviceIndex, s.deviceID)
	}
	metrics.Default().RecordSessionClosed(context.Background())
}

// ByDevice returns the live session currently bound to deviceID, if any.
func (r *Registry) ByDevice(deviceID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.deviceIndex[deviceID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// tryStartBinding marks deviceID as having a binding attempt (captcha
// issuance, auto-bind) in flight, refusing a second concurrent attempt;
// the caller must call finishBinding in every path, success or failure,
// mirroring spec.md §5's "captcha guard released in all paths".
func (r *Registry) tryStartBinding(deviceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.binding[deviceID] {
		return false
	}
	r.binding[deviceID] = true
	return true
}

func (r *Registry) finishBinding(deviceID string) {
	r.mu.Lock()
	delete(r.binding, deviceID)
	r.mu.Unlock()
}

// Close stops the inactivity watcher and closes every tracked session.
func (r *Registry) Close() {
	r.cancel()

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = nil
	r.deviceIndex = nil
	r.mu.Unlock()

	for _, s := range sessions {
		s.closeWithReason(context.Background(), "server shutting down")
	}
}

func (r *Registry) watchInactive() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.reapInactive()
		}
	}
}

// reapInactive implements spec.md §4.13's inactivity watcher: every 10s,
// scan sessions for one whose last_activity has exceeded the configured
// timeout, send a timeout notice through its DialogueController, and
// close it.
func (r *Registry) reapInactive() {
	r.mu.Lock()
	now := time.Now()
	var stale []*Session
	for _, s := range r.sessions {
		if now.Sub(s.lastActivityAt()) > r.timeout {
			stale = append(stale, s)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		r.log.InfoPrintf("session %s: inactivity timeout, closing", s.ID)
		s.closeWithReason(context.Background(), "inactivity timeout")
	}
}
