package store_test

import (
	"context"
	"testing"

	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/aivox/dialoguecore/pkg/store"
)

func TestKVDeviceStoreAddAndUpdate(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemory(nil)
	t.Cleanup(func() { kvs.Close() })
	ds := store.NewKVDeviceStore(kvs)

	d := store.Device{ID: "aa:bb:cc:dd:ee:ff", UserID: "u1", RoleID: "r1", Type: "esp32", State: 0}
	if err := ds.AddDevice(ctx, d); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	got, ok, err := ds.DeviceByID(ctx, d.ID)
	if err != nil || !ok {
		t.Fatalf("DeviceByID: %v, ok=%v", err, ok)
	}
	if got.State != 0 || got.UserID != "u1" {
		t.Fatalf("unexpected device: %+v", got)
	}

	if err := ds.UpdateDevice(ctx, d.ID, func(dv *store.Device) { dv.State = 1 }); err != nil {
		t.Fatalf("UpdateDevice: %v", err)
	}
	got, _, _ = ds.DeviceByID(ctx, d.ID)
	if got.State != 1 {
		t.Fatalf("expected state 1 after update, got %d", got.State)
	}
}

func TestKVDeviceStoreRoleByID(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemory(nil)
	t.Cleanup(func() { kvs.Close() })
	ds := store.NewKVDeviceStore(kvs)

	r := store.Role{ID: "r1", VoiceName: "zh-CN-XiaoxiaoNeural", TtsPitch: 1.0, TtsSpeed: 1.0}
	if err := ds.AddRole(ctx, r); err != nil {
		t.Fatalf("AddRole: %v", err)
	}
	got, ok, err := ds.RoleByID(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("RoleByID: %v, ok=%v", err, ok)
	}
	if got.VoiceName != r.VoiceName {
		t.Fatalf("unexpected role: %+v", got)
	}
}

func TestKVDeviceStoreGenerateCode(t *testing.T) {
	ctx := context.Background()
	kvs := kv.NewMemory(nil)
	t.Cleanup(func() { kvs.Close() })
	ds := store.NewKVDeviceStore(kvs)

	code, err := ds.GenerateCode(ctx, "dev1", "sess1", "qr")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
}
