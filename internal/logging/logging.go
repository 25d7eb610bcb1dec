// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logging provides the structured logger used by the
// cmd/leanrc and cmd/agentrun drivers.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the structured logging interface used throughout leanr.
// It is deliberately small: callers attach fields with With and emit
// at one of four levels.
type Logger interface {
	With(fields ...zap.Field) Logger
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Sync() error
}

type zapLogger struct {
	l *zap.Logger
}

// New returns a production zap-backed logger.
func New() Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l}
}

// NewDevelopment returns a human-readable console logger for local runs.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l}
}

func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) Sync() error                           { return z.l.Sync() }

type noop struct{}

// Noop returns a logger that discards everything, for tests.
func Noop() Logger { return noop{} }

func (noop) With(fields ...zap.Field) Logger          { return noop{} }
func (noop) Debug(msg string, fields ...zap.Field)    {}
func (noop) Info(msg string, fields ...zap.Field)     {}
func (noop) Warn(msg string, fields ...zap.Field)     {}
func (noop) Error(msg string, fields ...zap.Field)    {}
func (noop) Sync() error                              { return nil }
