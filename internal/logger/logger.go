// Package logger wraps zap construction so the rest of the application
// only deals with a configured *zap.Logger.
package logger

import (
	"go.uber.org/zap"
)

// Logger holds the underlying zap logger once Init has run.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger backed by a no-op zap logger until Init is called.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds the production zap logger at the given level ("debug",
// "info", "warn", "error"). The previous logger is replaced.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = logger
	return nil
}
