package store

import (
	"context"
	"sort"

	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/aivox/dialoguecore/pkg/memory"
	"github.com/vmihailenco/msgpack/v5"
)

// KVMessageStore implements MessageStore over a kv.Store, sharing its key
// layout with pkg/memory.Conversation (memory.Prefix/memory.Key) so that a
// turn added through one is immediately visible through the other — the
// durable ledger and the in-session window are two views onto the same
// rows, as spec.md §4.8 implies ("on session bind, load the last N NORMAL
// messages" from storage).
type KVMessageStore struct {
	store kv.Store
}

// NewKVMessageStore wraps store as a MessageStore.
func NewKVMessageStore(store kv.Store) *KVMessageStore {
	return &KVMessageStore{store: store}
}

func (s *KVMessageStore) Add(ctx context.Context, deviceID, roleID string, msg memory.Message) error {
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, memory.Key(deviceID, roleID, msg.Timestamp), data)
}

func (s *KVMessageStore) get(ctx context.Context, deviceID, roleID string, ts int64) (memory.Message, error) {
	data, err := s.store.Get(ctx, memory.Key(deviceID, roleID, ts))
	if err != nil {
		return memory.Message{}, err
	}
	var msg memory.Message
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return memory.Message{}, err
	}
	return msg, nil
}

func (s *KVMessageStore) UpdateType(ctx context.Context, deviceID, roleID string, ts int64, t memory.MessageType) error {
	msg, err := s.get(ctx, deviceID, roleID, ts)
	if err != nil {
		return err
	}
	msg.Type = t
	return s.Add(ctx, deviceID, roleID, msg)
}

func (s *KVMessageStore) UpdateAudioPath(ctx context.Context, deviceID, roleID string, ts int64, path string) error {
	msg, err := s.get(ctx, deviceID, roleID, ts)
	if err != nil {
		return err
	}
	msg.AudioPath = path
	return s.Add(ctx, deviceID, roleID, msg)
}

func (s *KVMessageStore) all(ctx context.Context, deviceID, roleID string) ([]memory.Message, error) {
	var out []memory.Message
	for entry, err := range s.store.List(ctx, memory.Prefix(deviceID, roleID)) {
		if err != nil {
			return nil, err
		}
		var msg memory.Message
		if err := msgpack.Unmarshal(entry.Value, &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *KVMessageStore) Find(ctx context.Context, deviceID, roleID string, limit int) ([]memory.Message, error) {
	all, err := s.all(ctx, deviceID, roleID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (s *KVMessageStore) FindAfter(ctx context.Context, deviceID, roleID string, afterTs int64, limit int) ([]memory.Message, error) {
	all, err := s.all(ctx, deviceID, roleID)
	if err != nil {
		return nil, err
	}
	out := make([]memory.Message, 0, len(all))
	for _, m := range all {
		if m.Timestamp > afterTs {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
