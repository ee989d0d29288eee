// Package blog is bareclad's thin structured-logging facade.
//
// It exists for the same reason erigon-lib/log/v3 exists in front of the
// teacher codebase: call sites want leveled, key/value logging without
// depending on a particular backend's API shape. Here the backend is
// go.uber.org/zap's SugaredLogger, accessed only through this package.
package blog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log *zap.SugaredLogger
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		// Logging must never prevent the engine from starting.
		l = zap.NewNop()
	}
	log = l.Sugar()
}

// SetLevel adjusts the global minimum level. Intended for cmd/bareclad and
// tests that want to quiet or enable debug output.
func SetLevel(level string) {
	var zl zap.AtomicLevel
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zl
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return
	}
	mu.Lock()
	log = l.Sugar()
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs new-identity events and other high-volume detail.
func Debug(msg string, kv ...any) { current().Debugw(msg, kv...) }

// Info logs lifecycle events: rehydration progress, script start/stop,
// cancellation and timeout.
func Info(msg string, kv ...any) { current().Infow(msg, kv...) }

// Warn logs non-fatal anomalies, in particular ledger mismatches (§7: these
// are logged with offending identities and the engine keeps serving).
func Warn(msg string, kv ...any) { current().Warnw(msg, kv...) }

// Error logs failures that abort the current operation.
func Error(msg string, kv ...any) { current().Errorw(msg, kv...) }

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = current().Sync()
}
