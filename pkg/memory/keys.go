package memory

import (
	"strconv"

	"github.com/aivox/dialoguecore/pkg/kv"
)

// KV key layout for the memory package.
//
//	{deviceID}:{roleID}:msg:{ts_ns}   → msgpack Message
//
// Keys sort lexically by ts_ns; nanosecond Unix timestamps share a fixed
// digit width for the foreseeable lifetime of this package, so lexical
// order and numeric order agree.

// convPrefix returns the KV prefix scoping a (device, role) conversation.
func convPrefix(deviceID, roleID string) kv.Key {
	return kv.Key{deviceID, roleID, "msg"}
}

// msgKey builds the KV key for a single stored message.
func msgKey(deviceID, roleID string, ts int64) kv.Key {
	return kv.Key{deviceID, roleID, "msg", strconv.FormatInt(ts, 10)}
}

// Prefix exposes convPrefix for packages (e.g. pkg/store) that need to
// operate on the same durable key namespace outside of a bound
// Conversation, such as a cross-cutting message-history store.
func Prefix(deviceID, roleID string) kv.Key {
	return convPrefix(deviceID, roleID)
}

// Key exposes msgKey for the same reason as Prefix.
func Key(deviceID, roleID string, ts int64) kv.Key {
	return msgKey(deviceID, roleID, ts)
}
