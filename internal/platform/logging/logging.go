// Package logging configures the zap loggers used across the service.
package logging

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var (
	globalMu sync.RWMutex
	global   = zap.NewNop().Sugar()
)

// NewConfig returns a console config at the given level without stacktraces.
func NewConfig(level string) (zap.Config, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("logging: parse level %q: %w", level, err)
	}

	return zap.Config{
		Level:    lvl,
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}

// New builds a named sugared logger at level.
func New(name, level string) (*zap.SugaredLogger, error) {
	cfg, err := NewConfig(level)
	if err != nil {
		return nil, err
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return l.Named(name).Sugar(), nil
}

// ReplaceGlobal swaps the process-wide fallback logger.
func ReplaceGlobal(l *zap.SugaredLogger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

func Global() *zap.SugaredLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx, or the global logger.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return Global()
}
