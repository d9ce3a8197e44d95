// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build windows

package glctx

import "golang.org/x/sys/windows"

// threadID returns the id of the calling OS thread.
func threadID() int64 { return int64(windows.GetCurrentThreadId()) }
