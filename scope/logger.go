package scope

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	logger    atomic.Pointer[zap.Logger]
	nopLogger = zap.NewNop()
)

// Logger returns the scope package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nopLogger
}

// SetLogger configures the scope package's logger. It may be called at any
// time; a nil logger restores the no-op default.
// Scopes created with Options.Logger use their own logger instead.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
