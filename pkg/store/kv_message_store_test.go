package store_test

import (
	"context"
	"testing"

	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/aivox/dialoguecore/pkg/memory"
	"github.com/aivox/dialoguecore/pkg/store"
)

func TestKVMessageStoreAddFindUpdate(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemory(nil)
	t.Cleanup(func() { kvs.Close() })
	ms := store.NewKVMessageStore(kvs)

	u := memory.Message{Role: memory.RoleUser, Content: "hi", Timestamp: 1}
	a := memory.Message{Role: memory.RoleAssistant, Content: "hello", Timestamp: 2}
	if err := ms.Add(ctx, "dev1", "role1", u); err != nil {
		t.Fatalf("Add user: %v", err)
	}
	if err := ms.Add(ctx, "dev1", "role1", a); err != nil {
		t.Fatalf("Add assistant: %v", err)
	}

	got, err := ms.Find(ctx, "dev1", "role1", 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 || got[0].Content != "hi" || got[1].Content != "hello" {
		t.Fatalf("unexpected Find result: %+v", got)
	}

	if err := ms.UpdateAudioPath(ctx, "dev1", "role1", 2, "/audio/a.wav"); err != nil {
		t.Fatalf("UpdateAudioPath: %v", err)
	}
	if err := ms.UpdateType(ctx, "dev1", "role1", 2, memory.MessageFunctionCall); err != nil {
		t.Fatalf("UpdateType: %v", err)
	}
	got, _ = ms.Find(ctx, "dev1", "role1", 10)
	if got[1].AudioPath != "/audio/a.wav" || got[1].Type != memory.MessageFunctionCall {
		t.Fatalf("update did not persist: %+v", got[1])
	}

	after, err := ms.FindAfter(ctx, "dev1", "role1", 1, 10)
	if err != nil {
		t.Fatalf("FindAfter: %v", err)
	}
	if len(after) != 1 || after[0].Timestamp != 2 {
		t.Fatalf("unexpected FindAfter result: %+v", after)
	}
}

func TestKVMessageStoreFindLimit(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemory(nil)
	t.Cleanup(func() { kvs.Close() })
	ms := store.NewKVMessageStore(kvs)

	for i := int64(1); i <= 5; i++ {
		if err := ms.Add(ctx, "dev1", "role1", memory.Message{Role: memory.RoleUser, Timestamp: i}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	got, err := ms.Find(ctx, "dev1", "role1", 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 || got[0].Timestamp != 4 || got[1].Timestamp != 5 {
		t.Fatalf("expected last two by timestamp, got %+v", got)
	}
}
