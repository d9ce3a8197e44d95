// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glctx wraps the GPU contexts of several incompatible backends
// behind one interface.
//
// A [HandleWrapper] is a cheap, copyable reference to an existing context;
// it is only used to create a new context that shares GPU objects with it.
// A [ContextWrapper] owns one live context. It must not be copied and it
// has thread affinity: at most one OS thread has it current at a time, and
// once destroyed it must not be used again.
//
// Backends register themselves from their own packages:
//
//	import (
//	    _ "github.com/crbrz/webrender/glctx/native"
//	    _ "github.com/crbrz/webrender/glctx/software"
//	)
//
//	ctx, err := glctx.NewRootContext("", glctx.Size{W: 800, H: 600}, glctx.DefaultAttributes(), nil)
//
// # Threads
//
// Binding is per OS thread. A goroutine that calls MakeCurrent must stay on
// its thread (runtime.LockOSThread) until it calls Unbind, or hand the work
// to a [ThreadDispatcher], whose goroutine is locked to one thread.
//
// # Contract violations
//
// Wrong-thread use, use after Destroy, cross-backend sharing and a failing
// MakeCurrent or Unbind are programming errors and panic. Creation and
// resize failures are returned as errors and leave no partial state.
package glctx
