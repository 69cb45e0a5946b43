package structs

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the structs package's logger. It is a no-op logger unless SetLogger
// has been called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger sets the logger used by Descriptors that were not given one with WithLogger.
// A nil l restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
