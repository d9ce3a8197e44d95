// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
)

type state uint8

const (
	stateNotCurrent state = iota
	stateCurrent
	stateDestroyed
)

func (s state) String() string {
	switch s {
	case stateNotCurrent:
		return "NotCurrent"
	case stateCurrent:
		return "Current"
	case stateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// bindings maps an OS thread to the context current on it.
// Lock order: bindMu before any ContextWrapper.mu.
var (
	bindMu   sync.Mutex
	bindings = make(map[int64]*ContextWrapper)
)

// ContextWrapper owns one live context of some backend.
//
// Every method is backend-symmetric. Methods that touch GPU state run on
// the dispatcher thread when the context was created with a Dispatcher,
// otherwise on the calling thread, binding the context there if it is not
// current anywhere.
type ContextWrapper struct {
	mu         sync.Mutex
	backend    Backend
	native     NativeContext
	dispatcher Dispatcher

	state state
	tid   int64
}

// Kind returns the backend variant of the context.
func (c *ContextWrapper) Kind() Kind { return c.backend.Kind() }

// Backend returns the registry name of the context's backend.
func (c *ContextWrapper) Backend() string { return c.backend.Name() }

// Handle returns a handle for creating contexts that share GPU objects
// with this one.
func (c *ContextWrapper) Handle() HandleWrapper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkLive("Handle")
	return HandleWrapper{backend: c.backend, native: c.native.Handle()}
}

// MakeCurrent binds the context to the calling thread. Any other context
// bound there becomes not current. It panics if the context is destroyed,
// is current on another thread, or the backend fails to bind it.
func (c *ContextWrapper) MakeCurrent() {
	tid := threadID()
	bindMu.Lock()
	defer bindMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindLocked(tid)
}

// bindLocked requires bindMu and c.mu.
func (c *ContextWrapper) bindLocked(tid int64) {
	switch c.state {
	case stateDestroyed:
		panic("glctx: MakeCurrent on destroyed context")
	case stateCurrent:
		if c.tid == tid {
			return
		}
		panic(fmt.Sprintf("glctx: context is current on thread %d, MakeCurrent from thread %d", c.tid, tid))
	}

	if prev := bindings[tid]; prev != nil && prev != c {
		prev.mu.Lock()
		prev.state = stateNotCurrent
		prev.mu.Unlock()
	}
	if err := c.native.MakeCurrent(); err != nil {
		delete(bindings, tid)
		panic(fmt.Sprintf("glctx: MakeCurrent failed: %v", err))
	}
	c.state = stateCurrent
	c.tid = tid
	bindings[tid] = c
}

// Unbind detaches the context from the calling thread. It is a no-op when
// the context is not current. It panics if the context is destroyed, is
// current on another thread, or the backend fails to unbind it.
func (c *ContextWrapper) Unbind() {
	tid := threadID()
	bindMu.Lock()
	defer bindMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateDestroyed:
		panic("glctx: Unbind on destroyed context")
	case stateNotCurrent:
		return
	}
	if c.tid != tid {
		panic(fmt.Sprintf("glctx: context is current on thread %d, Unbind from thread %d", c.tid, tid))
	}
	if err := c.native.Unbind(); err != nil {
		panic(fmt.Sprintf("glctx: Unbind failed: %v", err))
	}
	c.state = stateNotCurrent
	delete(bindings, tid)
}

// IsCurrent reports whether the context is bound to the calling thread.
func (c *ContextWrapper) IsCurrent() bool {
	tid := threadID()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateCurrent && c.tid == tid
}

// ensureCurrent binds the context to the calling thread unless it is
// already current there.
func (c *ContextWrapper) ensureCurrent() {
	tid := threadID()
	bindMu.Lock()
	defer bindMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindLocked(tid)
}

// run executes fn with the context current, on the dispatcher thread if
// there is one. fn is called with c.mu held.
func (c *ContextWrapper) run(fn func() error) error {
	call := func() error {
		c.ensureCurrent()
		c.mu.Lock()
		defer c.mu.Unlock()
		c.checkLive("call")
		return fn()
	}
	if c.dispatcher == nil {
		return call()
	}
	return dispatchCall(c.dispatcher, call)
}

// ApplyCommand executes cmd against the context's command target. With a
// dispatcher the command is queued behind earlier ones and ApplyCommand
// returns once it is queued; an execution error is logged. Without one it
// runs immediately and its error is returned.
func (c *ContextWrapper) ApplyCommand(cmd Command) error {
	if c.dispatcher == nil {
		return c.exec(cmd)
	}
	return c.dispatcher.Dispatch(func() {
		if err := c.exec(cmd); err != nil {
			slogger().Warn("glctx: dispatched command failed", "cmd", cmd.String(), "err", err)
		}
	})
}

// Exec executes cmd and waits for it, on the dispatcher thread if the
// context has one.
func (c *ContextWrapper) Exec(cmd Command) error {
	if c.dispatcher == nil {
		return c.exec(cmd)
	}
	return dispatchCall(c.dispatcher, func() error { return c.exec(cmd) })
}

func (c *ContextWrapper) exec(cmd Command) error {
	c.ensureCurrent()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkLive("ApplyCommand")
	slogger().Debug("glctx: apply command", "cmd", cmd.String())
	if err := cmd.Apply(c.native.Target()); err != nil {
		return fmt.Errorf("glctx: %s: %w", cmd, err)
	}
	return nil
}

// Info returns the drawable size, the id of its color attachment and the
// device limits. It does not need the context to be current.
func (c *ContextWrapper) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkLive("Info")
	return c.native.Info()
}

// DeviceProvider returns the GPU device behind the context. It reports
// false for backends without one.
func (c *ContextWrapper) DeviceProvider() (gpucontext.DeviceProvider, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkLive("DeviceProvider")
	p, ok := c.native.(gpucontext.DeviceProvider)
	return p, ok
}

// Resize reallocates the drawable. On error the previous drawable is left
// intact.
func (c *ContextWrapper) Resize(size Size) error {
	if !size.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	return c.run(func() error {
		if err := c.native.Resize(size); err != nil {
			return fmt.Errorf("glctx: resize to %s: %w", size, err)
		}
		slogger().Debug("glctx: drawable resized", "size", size.String())
		return nil
	})
}

// CreateTexture allocates a texture in the context's share group.
func (c *ContextWrapper) CreateTexture(desc TextureDesc) (Texture, error) {
	var tex Texture
	err := c.run(func() error {
		var err error
		tex, err = c.native.CreateTexture(desc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tex, nil
}

// Destroy releases the context. Destroy is idempotent; any other use after
// it panics.
func (c *ContextWrapper) Destroy() error {
	c.mu.Lock()
	done := c.state == stateDestroyed
	c.mu.Unlock()
	if done {
		return nil
	}
	destroy := func() error {
		tid := threadID()
		bindMu.Lock()
		defer bindMu.Unlock()
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == stateDestroyed {
			return nil
		}
		if c.state == stateCurrent && c.tid != tid {
			panic(fmt.Sprintf("glctx: context is current on thread %d, Destroy from thread %d", c.tid, tid))
		}
		if c.state == stateCurrent {
			delete(bindings, c.tid)
		}
		c.state = stateDestroyed
		err := c.native.Destroy()
		slogger().Info("glctx: context destroyed", "backend", c.backend.Name())
		return err
	}
	if c.dispatcher == nil {
		return destroy()
	}
	return dispatchCall(c.dispatcher, destroy)
}

// checkLive requires c.mu.
func (c *ContextWrapper) checkLive(op string) {
	if c.state == stateDestroyed {
		panic("glctx: " + op + " on destroyed context")
	}
}
