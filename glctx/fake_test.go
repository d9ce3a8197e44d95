// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/crbrz/webrender"
)

// fakeBackend is an in-memory backend for exercising the wrapper logic.
type fakeBackend struct {
	kind Kind
	name string

	// created is the kind reported by contexts it creates; 0 means kind.
	created    Kind
	createErr  error
	bindErr    error
	maxSize    int32
	lastShared NativeHandle
}

func newFakeBackend(kind Kind, name string) *fakeBackend {
	return &fakeBackend{kind: kind, name: name, maxSize: 4096}
}

func (b *fakeBackend) Kind() Kind   { return b.kind }
func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) NewContext(share NativeHandle, size Size, attrs Attributes) (NativeContext, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.lastShared = share
	kind := b.kind
	if b.created != 0 {
		kind = b.created
	}
	group := &fakeGroup{}
	if h, ok := share.(*fakeHandle); ok {
		group = h.group
	}
	group.members++
	c := &fakeContext{backend: b, size: size, target: &fakeTarget{}}
	c.handle = &fakeHandle{kind: kind, group: group}
	return c, nil
}

type fakeGroup struct {
	members int
}

type fakeHandle struct {
	kind  Kind
	group *fakeGroup
}

func (h *fakeHandle) Kind() Kind { return h.kind }

type fakeContext struct {
	backend   *fakeBackend
	handle    *fakeHandle
	size      Size
	target    *fakeTarget
	binds     int
	destroyed bool
}

func (c *fakeContext) Handle() NativeHandle { return c.handle }

func (c *fakeContext) MakeCurrent() error {
	if c.backend.bindErr != nil {
		return c.backend.bindErr
	}
	c.binds++
	return nil
}

func (c *fakeContext) Unbind() error { return nil }

func (c *fakeContext) Info() Info {
	return Info{
		Size:      c.size,
		TextureID: 7,
		Limits:    Limits{MaxTextureSize: c.backend.maxSize, MaxTextureLayers: 1},
	}
}

func (c *fakeContext) Resize(size Size) error {
	if size.W > c.backend.maxSize || size.H > c.backend.maxSize {
		return ErrSizeExceedsLimits
	}
	c.size = size
	return nil
}

func (c *fakeContext) CreateTexture(desc TextureDesc) (Texture, error) {
	return nil, errors.New("fake: no textures")
}

func (c *fakeContext) Target() CommandTarget { return c.target }

func (c *fakeContext) Destroy() error {
	c.destroyed = true
	c.handle.group.members--
	return nil
}

// fakeTarget records the calls it receives.
type fakeTarget struct {
	mu   sync.Mutex
	log  []string
	next BufferID
}

func (t *fakeTarget) record(format string, args ...any) {
	t.mu.Lock()
	t.log = append(t.log, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

func (t *fakeTarget) calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.log...)
}

func (t *fakeTarget) SetClearColor(c webrender.ColorF)      { t.record("clearcolor %v", c) }
func (t *fakeTarget) Clear(mask ClearMask)                  { t.record("clear %d", mask) }
func (t *fakeTarget) SetViewport(r image.Rectangle)         { t.record("viewport %v", r) }
func (t *fakeTarget) SetBlendMode(m webrender.MixBlendMode) { t.record("blend %d", m) }

func (t *fakeTarget) CreateBuffer(usage BufferUsage, size int) (BufferID, error) {
	t.next++
	t.record("createbuffer %s %d", usage, size)
	return t.next, nil
}

func (t *fakeTarget) BufferData(id BufferID, offset int, data []byte) error {
	if id > t.next {
		return ErrUnknownBuffer
	}
	t.record("bufferdata %d", id)
	return nil
}

func (t *fakeTarget) DeleteBuffer(id BufferID) error {
	t.record("deletebuffer %d", id)
	return nil
}

func (t *fakeTarget) FillRect(r image.Rectangle, c webrender.PackedColor) error {
	t.record("fill %d %d", r.Min.X, r.Min.Y)
	return nil
}

func (t *fakeTarget) DrawQuads(textures [webrender.ColorSamplerCount]Texture, quads []webrender.PackedVertexForQuad) error {
	t.record("draw %d", len(quads))
	return nil
}

func (t *fakeTarget) ReadPixels(r image.Rectangle) ([]byte, error) {
	return make([]byte, 4*r.Dx()*r.Dy()), nil
}

func (t *fakeTarget) Finish() error { return nil }

// useBackends registers backends for the duration of a test.
func useBackends(t *testing.T, bs ...Backend) {
	t.Helper()
	for _, b := range bs {
		Register(b)
		name := b.Name()
		t.Cleanup(func() { Unregister(name) })
	}
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func mustPanicWith(t *testing.T, name, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("%s did not panic", name)
			return
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, substr) {
			t.Errorf("%s panic = %q, want it to contain %q", name, msg, substr)
		}
	}()
	fn()
}
