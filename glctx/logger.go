// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"log/slog"

	"github.com/crbrz/webrender"
)

// slogger returns the logger installed with webrender.SetLogger.
func slogger() *slog.Logger { return webrender.Logger() }
