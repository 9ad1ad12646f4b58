// Copyright 2026 The Gateway Core Authors
// This file is part of gateway-core.
//
// gateway-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gateway-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gateway-core. If not, see <http://www.gnu.org/licenses/>.

// Package gatewaylog is the key/value structured logger every component
// receives at construction. It wraps zap rather than calling it directly so
// call sites read like Erigon's own log package: Info(msg, "key", val, ...).
package gatewaylog

import (
	"sync"

	"go.uber.org/zap"
)

// Logger is a narrow, key/value logging facade bound to a set of static
// fields (component name, endpoint, commitment level, ...) at construction.
type Logger struct {
	z *zap.SugaredLogger
}

var (
	rootOnce sync.Once
	root     *zap.Logger
)

func rootLogger() *zap.Logger {
	rootOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		root = l
	})
	return root
}

// New returns a Logger with no static fields bound. Prefer New(...).With(...)
// at component-construction sites over calling a package-level singleton
// from hot paths.
func New() *Logger {
	return &Logger{z: rootLogger().Sugar()}
}

// NewNop returns a Logger that discards everything, for tests that don't
// want log noise but still exercise logging call sites.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// With returns a child Logger with kv pairs merged into every subsequent
// call's fields.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{z: l.z.With(kv...)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.z.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.z.Errorw(msg, kv...) }

// Sync flushes buffered log entries, intended for use in cmd/ shutdown paths.
func (l *Logger) Sync() error { return l.z.Sync() }
