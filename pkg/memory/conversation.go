package memory

import (
	"context"
	"sort"

	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/vmihailenco/msgpack/v5"
)

// Conversation is the sliding-window chat history for one (device, role)
// pair. It retains at most MaxPairs user+assistant turns; older turns are
// dropped once the window overflows. Appending the [Rollback] sentinel
// removes the most recently stored message instead of being recorded
// itself, used when a tool call's side effect stands in for the model's
// reply and the turn must not read back as a normal exchange.
type Conversation struct {
	store    kv.Store
	deviceID string
	roleID   string
	maxPairs int
}

// NewConversation binds a conversation window to a (device, role) pair.
// maxPairs <= 0 falls back to 20.
func NewConversation(store kv.Store, deviceID, roleID string, maxPairs int) *Conversation {
	if maxPairs <= 0 {
		maxPairs = 20
	}
	return &Conversation{store: store, deviceID: deviceID, roleID: roleID, maxPairs: maxPairs}
}

// DeviceID returns the bound device id.
func (c *Conversation) DeviceID() string { return c.deviceID }

// RoleID returns the bound role id.
func (c *Conversation) RoleID() string { return c.roleID }

// Append stores a message, or, for the Rollback sentinel, deletes the most
// recently stored message in its place. If msg.Timestamp is zero, it is
// set to the current monotonic nanosecond clock.
func (c *Conversation) Append(ctx context.Context, msg Message) error {
	if isRollback(msg) {
		return c.dropLast(ctx)
	}

	if msg.Timestamp == 0 {
		msg.Timestamp = nowNano()
	}

	data, err := msgpack.Marshal(msg)
	if err != nil {
		return err
	}

	key := msgKey(c.deviceID, c.roleID, msg.Timestamp)
	if err := c.store.Set(ctx, key, data); err != nil {
		return err
	}

	return c.trimOverflow(ctx)
}

// dropLast removes the most recently stored message. It is a no-op if the
// conversation is empty.
func (c *Conversation) dropLast(ctx context.Context) error {
	entries, err := c.list(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	last := entries[len(entries)-1]
	return c.store.Delete(ctx, msgKey(c.deviceID, c.roleID, last.Timestamp))
}

// trimOverflow drops the oldest user+assistant pair once the window holds
// more than 2*maxPairs+1 messages, repeating until back within bound.
func (c *Conversation) trimOverflow(ctx context.Context) error {
	limit := 2*c.maxPairs + 1
	entries, err := c.list(ctx)
	if err != nil {
		return err
	}
	for len(entries) > limit {
		drop := 2
		if drop > len(entries) {
			drop = len(entries)
		}
		var keys []kv.Key
		for _, m := range entries[:drop] {
			keys = append(keys, msgKey(c.deviceID, c.roleID, m.Timestamp))
		}
		if err := c.store.BatchDelete(ctx, keys); err != nil {
			return err
		}
		entries = entries[drop:]
	}
	return nil
}

// Recent returns the messages currently retained in the window, in
// ascending (Timestamp, sender) order — a user message sorts before an
// assistant message carrying the same timestamp. If systemPrompt is
// non-empty, it is prepended as a RoleSystem message.
func (c *Conversation) Recent(ctx context.Context, systemPrompt string) ([]Message, error) {
	entries, err := c.list(ctx)
	if err != nil {
		return nil, err
	}
	if systemPrompt == "" {
		return entries, nil
	}
	out := make([]Message, 0, len(entries)+1)
	out = append(out, Message{Role: RoleSystem, Content: systemPrompt})
	out = append(out, entries...)
	return out, nil
}

// Clear removes every message in the conversation window.
func (c *Conversation) Clear(ctx context.Context) error {
	prefix := convPrefix(c.deviceID, c.roleID)
	var keys []kv.Key
	for entry, err := range c.store.List(ctx, prefix) {
		if err != nil {
			return err
		}
		keys = append(keys, entry.Key)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.BatchDelete(ctx, keys)
}

// senderOrder breaks timestamp ties: user before assistant, everything
// else last.
func senderOrder(r Role) int {
	switch r {
	case RoleUser:
		return 0
	case RoleAssistant:
		return 1
	default:
		return 2
	}
}

func (c *Conversation) list(ctx context.Context) ([]Message, error) {
	prefix := convPrefix(c.deviceID, c.roleID)
	var out []Message
	for entry, err := range c.store.List(ctx, prefix) {
		if err != nil {
			return nil, err
		}
		var msg Message
		if err := msgpack.Unmarshal(entry.Value, &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return senderOrder(out[i].Role) < senderOrder(out[j].Role)
	})
	return out, nil
}
