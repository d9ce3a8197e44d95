// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"testing"
)

func TestContextLifecycle(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b := newFakeBackend(Software, BackendSoftware)
	useBackends(t, b)

	c, err := NewRootContext(BackendSoftware, Size{W: 64, H: 32}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	if !c.IsCurrent() {
		t.Fatal("new context is not current on the creating thread")
	}
	if got := c.Kind(); got != Software {
		t.Errorf("Kind() = %v, want %v", got, Software)
	}
	if _, ok := CurrentSoftwareHandle(); !ok {
		t.Error("CurrentSoftwareHandle() reported no context")
	}
	if _, ok := CurrentNativeHandle(); ok {
		t.Error("CurrentNativeHandle() succeeded for a software context")
	}

	c.Unbind()
	if c.IsCurrent() {
		t.Error("context still current after Unbind")
	}
	if _, ok := CurrentHandle(); ok {
		t.Error("CurrentHandle() succeeded with nothing bound")
	}
	c.Unbind() // no-op

	c.MakeCurrent()
	c.MakeCurrent() // already current here
	if h, ok := CurrentHandle(); !ok || h.Kind() != Software {
		t.Errorf("CurrentHandle() = %v, %v, want Software, true", h.Kind(), ok)
	}

	if err := c.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if err := c.Destroy(); err != nil {
		t.Errorf("second Destroy() error = %v", err)
	}
	if _, ok := CurrentHandle(); ok {
		t.Error("destroyed context still bound")
	}

	mustPanicWith(t, "MakeCurrent after Destroy", "destroyed", c.MakeCurrent)
	mustPanicWith(t, "Unbind after Destroy", "destroyed", c.Unbind)
	mustPanic(t, "Info after Destroy", func() { c.Info() })
	mustPanic(t, "Handle after Destroy", func() { c.Handle() })
	mustPanic(t, "ApplyCommand after Destroy", func() { _ = c.ApplyCommand(Finish{}) })
}

func TestNewContextStealsBinding(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	useBackends(t, newFakeBackend(Native, BackendNative))

	c1, err := NewRootContext("", Size{W: 8, H: 8}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	defer c1.Destroy()
	c2, err := c1.Handle().NewContext(Size{W: 8, H: 8}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	defer c2.Destroy()

	if c1.IsCurrent() {
		t.Error("first context still current after second was created")
	}
	if !c2.IsCurrent() {
		t.Error("second context not current")
	}
	c1.MakeCurrent()
	if c2.IsCurrent() {
		t.Error("second context still current after MakeCurrent of first")
	}
}

func TestNewContextSharesGroup(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b := newFakeBackend(Native, BackendNative)
	useBackends(t, b)

	root, err := NewRootContext(BackendNative, Size{W: 4, H: 4}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	defer root.Destroy()
	if b.lastShared != nil {
		t.Errorf("root context was created with share handle %v", b.lastShared)
	}

	h, ok := CurrentNativeHandle()
	if !ok {
		t.Fatal("CurrentNativeHandle() reported no context")
	}
	child, err := h.NewContext(Size{W: 2, H: 2}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	defer child.Destroy()

	if child.Kind() != root.Kind() {
		t.Errorf("child Kind() = %v, want %v", child.Kind(), root.Kind())
	}
	fh, _ := b.lastShared.(*fakeHandle)
	if fh == nil || fh.group.members != 2 {
		t.Errorf("share group members = %v, want 2", fh)
	}
}

func TestNewContextKindMismatchPanics(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	soft := newFakeBackend(Software, BackendSoftware)
	foreign := HandleWrapper{backend: soft, native: &fakeHandle{kind: Native, group: &fakeGroup{}}}
	mustPanic(t, "NewContext with foreign handle", func() {
		_, _ = foreign.NewContext(Size{W: 1, H: 1}, DefaultAttributes(), nil)
	})

	mustPanic(t, "NewContext on zero handle", func() {
		_, _ = HandleWrapper{}.NewContext(Size{W: 1, H: 1}, DefaultAttributes(), nil)
	})

	liar := newFakeBackend(Software, "liar")
	liar.created = Native
	useBackends(t, liar)
	mustPanicWith(t, "backend returning another kind", "created a Native context", func() {
		_, _ = NewRootContext("liar", Size{W: 1, H: 1}, DefaultAttributes(), nil)
	})
}

func TestNewContextErrors(t *testing.T) {
	b := newFakeBackend(Software, BackendSoftware)
	useBackends(t, b)

	if _, err := NewRootContext(BackendSoftware, Size{W: 0, H: 10}, DefaultAttributes(), nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewRootContext(0x10) error = %v, want %v", err, ErrInvalidSize)
	}
	if _, err := NewRootContext("missing", Size{W: 1, H: 1}, DefaultAttributes(), nil); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("NewRootContext(missing) error = %v, want %v", err, ErrBackendNotAvailable)
	}

	b.createErr = ErrUnsupportedAttributes
	_, err := NewRootContext(BackendSoftware, Size{W: 1, H: 1}, Attributes{Stencil: true}, nil)
	if !errors.Is(err, ErrUnsupportedAttributes) {
		t.Errorf("NewRootContext() error = %v, want %v", err, ErrUnsupportedAttributes)
	}
	if _, ok := CurrentHandle(); ok {
		t.Error("failed creation left a context bound")
	}
}

func TestMakeCurrentFailurePanics(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b := newFakeBackend(Software, BackendSoftware)
	useBackends(t, b)
	c, err := NewRootContext(BackendSoftware, Size{W: 1, H: 1}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	defer c.Destroy()
	c.Unbind()

	b.bindErr = errors.New("lost device")
	mustPanicWith(t, "MakeCurrent with failing backend", "lost device", c.MakeCurrent)
	b.bindErr = nil
	c.MakeCurrent()
}

func TestCurrentOnOtherThreadPanics(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	useBackends(t, newFakeBackend(Software, BackendSoftware))
	c, err := NewRootContext(BackendSoftware, Size{W: 1, H: 1}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	defer c.Destroy()

	done := make(chan any)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() { done <- recover() }()
		c.MakeCurrent()
	}()
	if r := <-done; r == nil {
		t.Error("MakeCurrent from another thread did not panic")
	}

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() { done <- recover() }()
		c.Unbind()
	}()
	if r := <-done; r == nil {
		t.Error("Unbind from another thread did not panic")
	}

	if !c.IsCurrent() {
		t.Error("context lost its binding after rejected calls")
	}
}

func TestResize(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b := newFakeBackend(Software, BackendSoftware)
	b.maxSize = 256
	useBackends(t, b)
	c, err := NewRootContext(BackendSoftware, Size{W: 100, H: 50}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	defer c.Destroy()

	if err := c.Resize(Size{W: 200, H: 100}); err != nil {
		t.Fatalf("Resize(200x100) error = %v", err)
	}
	if got, want := c.Info().Size, (Size{W: 200, H: 100}); got != want {
		t.Errorf("Info().Size = %v, want %v", got, want)
	}

	tests := []struct {
		size Size
		want error
	}{
		{Size{W: 0, H: 10}, ErrInvalidSize},
		{Size{W: -1, H: -1}, ErrInvalidSize},
		{Size{W: 512, H: 10}, ErrSizeExceedsLimits},
	}
	for _, tt := range tests {
		if err := c.Resize(tt.size); !errors.Is(err, tt.want) {
			t.Errorf("Resize(%v) error = %v, want %v", tt.size, err, tt.want)
		}
		if got, want := c.Info().Size, (Size{W: 200, H: 100}); got != want {
			t.Errorf("after Resize(%v) Info().Size = %v, want %v", tt.size, got, want)
		}
	}
}

func TestApplyCommandDirect(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	useBackends(t, newFakeBackend(Software, BackendSoftware))
	c, err := NewRootContext(BackendSoftware, Size{W: 8, H: 8}, DefaultAttributes(), nil)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	defer c.Destroy()

	reply := make(chan BufferResult, 1)
	if err := c.ApplyCommand(CreateBuffer{Usage: BufferVertex, Size: 64, Reply: reply}); err != nil {
		t.Fatalf("ApplyCommand(CreateBuffer) error = %v", err)
	}
	res := <-reply
	if res.Err != nil || res.ID != 1 {
		t.Errorf("CreateBuffer reply = %+v, want id 1", res)
	}
	if err := c.ApplyCommand(BufferData{Buffer: res.ID, Data: []byte{1, 2}}); err != nil {
		t.Errorf("ApplyCommand(BufferData) error = %v", err)
	}
	err = c.ApplyCommand(BufferData{Buffer: 99})
	if !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("ApplyCommand(BufferData{99}) error = %v, want %v", err, ErrUnknownBuffer)
	}

	c.Unbind()
	if err := c.ApplyCommand(Clear{Mask: ClearColorBuffer}); err != nil {
		t.Fatalf("ApplyCommand(Clear) error = %v", err)
	}
	if !c.IsCurrent() {
		t.Error("ApplyCommand on an unbound context did not bind it")
	}
}

func TestContextWithDispatcher(t *testing.T) {
	useBackends(t, newFakeBackend(Software, BackendSoftware))
	d := NewThreadDispatcher()
	defer d.Close()

	c, err := NewRootContext(BackendSoftware, Size{W: 8, H: 8}, DefaultAttributes(), d)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}

	const sources, perSource = 4, 200
	var wg sync.WaitGroup
	for s := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perSource {
				if err := c.ApplyCommand(FillRect{Rect: image.Rect(s, i, s+1, i+1)}); err != nil {
					t.Errorf("ApplyCommand() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if err := c.Exec(Finish{}); err != nil {
		t.Fatalf("Exec(Finish) error = %v", err)
	}

	target := c.native.(*fakeContext).target
	next := make([]int, sources)
	for _, call := range target.calls() {
		var s, i int
		if _, err := fmt.Sscanf(call, "fill %d %d", &s, &i); err != nil {
			t.Fatalf("unexpected call %q", call)
		}
		if i != next[s] {
			t.Fatalf("source %d: command %d ran before %d", s, i, next[s])
		}
		next[s]++
	}
	for s, n := range next {
		if n != perSource {
			t.Errorf("source %d ran %d commands, want %d", s, n, perSource)
		}
	}

	if err := c.Resize(Size{W: 16, H: 16}); err != nil {
		t.Errorf("Resize() error = %v", err)
	}
	if err := c.Destroy(); err != nil {
		t.Errorf("Destroy() error = %v", err)
	}
}
