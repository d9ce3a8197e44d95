// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !linux && !windows

package glctx

import (
	"bytes"
	"runtime"
	"strconv"
)

// threadID returns the calling goroutine's id. x/sys exposes no thread id
// here; the dispatcher goroutine is locked to its thread, so its goroutine
// id identifies the thread for as long as the dispatcher runs.
func threadID() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
