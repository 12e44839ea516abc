package store

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/vmihailenco/msgpack/v5"
)

// KVDeviceStore implements DeviceStore over a kv.Store.
//
// Key layout:
//
//	device:{id}        → msgpack Device
//	role:{id}          → msgpack Role
//	activation:{code}  → "deviceID:sessionID:type"
type KVDeviceStore struct {
	store kv.Store
}

// NewKVDeviceStore wraps store as a DeviceStore.
func NewKVDeviceStore(store kv.Store) *KVDeviceStore {
	return &KVDeviceStore{store: store}
}

func deviceKey(id string) kv.Key { return kv.Key{"device", id} }
func roleKey(id string) kv.Key   { return kv.Key{"role", id} }

func (s *KVDeviceStore) DeviceByID(ctx context.Context, id string) (Device, bool, error) {
	data, err := s.store.Get(ctx, deviceKey(id))
	if err == kv.ErrNotFound {
		return Device{}, false, nil
	}
	if err != nil {
		return Device{}, false, err
	}
	var d Device
	if err := msgpack.Unmarshal(data, &d); err != nil {
		return Device{}, false, err
	}
	return d, true, nil
}

func (s *KVDeviceStore) UpdateDevice(ctx context.Context, id string, patch func(*Device)) error {
	d, ok, err := s.DeviceByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		d = Device{ID: id}
	}
	patch(&d)
	return s.AddDevice(ctx, d)
}

func (s *KVDeviceStore) AddDevice(ctx context.Context, d Device) error {
	data, err := msgpack.Marshal(d)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, deviceKey(d.ID), data)
}

func (s *KVDeviceStore) RoleByID(ctx context.Context, id string) (Role, bool, error) {
	data, err := s.store.Get(ctx, roleKey(id))
	if err == kv.ErrNotFound {
		return Role{}, false, nil
	}
	if err != nil {
		return Role{}, false, err
	}
	var r Role
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return Role{}, false, err
	}
	return r, true, nil
}

// AddRole persists or overwrites a role row. Not part of the DeviceStore
// interface (roles are provisioned out of band) but used by tests and
// bootstrap seeding.
func (s *KVDeviceStore) AddRole(ctx context.Context, r Role) error {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, roleKey(r.ID), data)
}

func (s *KVDeviceStore) GenerateCode(ctx context.Context, deviceID, sessionID, activationType string) (string, error) {
	code, err := randomDigits(6)
	if err != nil {
		return "", err
	}
	val := fmt.Sprintf("%s:%s:%s", deviceID, sessionID, activationType)
	if err := s.store.Set(ctx, kv.Key{"activation", code}, []byte(val)); err != nil {
		return "", err
	}
	return code, nil
}

func randomDigits(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, c := range b {
		out[i] = '0' + c%10
	}
	return string(out), nil
}
