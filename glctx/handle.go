// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"fmt"
)

// HandleWrapper references an existing context of some backend. It is a
// plain value: copy it freely. Its only use is creating contexts that
// share GPU objects with the referenced one.
type HandleWrapper struct {
	backend Backend
	native  NativeHandle
}

// Kind returns the backend variant of the handle, or 0 for the zero value.
func (h HandleWrapper) Kind() Kind {
	if h.backend == nil {
		return 0
	}
	return h.backend.Kind()
}

// IsZero reports whether h references no context.
func (h HandleWrapper) IsZero() bool { return h.backend == nil }

// CurrentNativeHandle returns a handle to the native context current on the
// calling thread. It reports false when no context is current or the
// current one belongs to another backend.
func CurrentNativeHandle() (HandleWrapper, bool) { return currentHandle(Native) }

// CurrentSoftwareHandle returns a handle to the software context current on
// the calling thread. It reports false when no context is current or the
// current one belongs to another backend.
func CurrentSoftwareHandle() (HandleWrapper, bool) { return currentHandle(Software) }

// CurrentHandle returns a handle to whichever context is current on the
// calling thread.
func CurrentHandle() (HandleWrapper, bool) { return currentHandle(0) }

func currentHandle(kind Kind) (HandleWrapper, bool) {
	tid := threadID()
	bindMu.Lock()
	defer bindMu.Unlock()
	c := bindings[tid]
	if c == nil {
		return HandleWrapper{}, false
	}
	if kind != 0 && c.backend.Kind() != kind {
		return HandleWrapper{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return HandleWrapper{backend: c.backend, native: c.native.Handle()}, true
}

// NewContext creates a context sharing GPU objects with the handle's
// context, with an offscreen drawable of the given size. The new context is
// current on the thread that created it: the dispatcher thread when
// dispatcher is non-nil, otherwise the calling thread.
//
// The new context always has the handle's backend; NewContext panics if
// the backend returns a context of another kind, or if h is the zero value.
func (h HandleWrapper) NewContext(size Size, attrs Attributes, dispatcher Dispatcher) (*ContextWrapper, error) {
	if h.backend == nil {
		panic("glctx: NewContext on zero HandleWrapper")
	}
	if h.native.Kind() != h.backend.Kind() {
		panic(fmt.Sprintf("glctx: %s handle with %s backend", h.native.Kind(), h.backend.Kind()))
	}
	return newContext(h.backend, h.native, size, attrs, dispatcher)
}

// NewRootContext creates the first context of a new share group on the
// named backend. An empty name selects the best registered backend.
func NewRootContext(backend string, size Size, attrs Attributes, dispatcher Dispatcher) (*ContextWrapper, error) {
	b, err := backendFor(backend)
	if err != nil {
		return nil, err
	}
	return newContext(b, nil, size, attrs, dispatcher)
}

func newContext(b Backend, share NativeHandle, size Size, attrs Attributes, dispatcher Dispatcher) (*ContextWrapper, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}

	c := &ContextWrapper{backend: b, dispatcher: dispatcher}
	create := func() error {
		nc, err := b.NewContext(share, size, attrs)
		if err != nil {
			return fmt.Errorf("glctx: %s context: %w", b.Name(), err)
		}
		if k := nc.Handle().Kind(); k != b.Kind() {
			_ = nc.Destroy()
			panic(fmt.Sprintf("glctx: %s backend created a %s context", b.Kind(), k))
		}
		c.native = nc
		c.MakeCurrent()
		return nil
	}

	var err error
	if dispatcher == nil {
		err = create()
	} else {
		err = dispatchCall(dispatcher, create)
	}
	if err != nil {
		return nil, err
	}
	slogger().Info("glctx: context created",
		"backend", b.Name(),
		"size", size.String(),
		"shared", share != nil)
	return c, nil
}
