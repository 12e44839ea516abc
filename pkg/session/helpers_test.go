package session

import (
	"github.com/aivox/dialoguecore/pkg/kv"
	"github.com/aivox/dialoguecore/pkg/logging"
)

// testLogger is a shared, silent-enough logger for tests: the real
// slog-backed Default writes to stderr, which is acceptable noise for a
// test binary and matches how the rest of this module's packages log
// during tests (no separate discard logger exists in pkg/logging).
func testLogger() logging.Logger {
	return logging.Default("session-test")
}

func newMemoryKV() kv.Store {
	return kv.NewMemory(nil)
}
