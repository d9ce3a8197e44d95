// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

var (
	silent = slog.New(discardHandler{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(silent) }

// SetLogger routes log output of this package, glctx, texcache, shader and
// renderer to l. The producer and the context thread may log while it is
// called. A nil l silences logging again, which is the default.
//
// Texture and command traffic is logged at Debug, context and shader
// lifecycle at Info, skipped batches and failed reloads at Warn.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the logger installed with SetLogger.
func Logger() *slog.Logger { return active.Load() }
