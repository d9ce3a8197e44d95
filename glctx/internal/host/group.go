// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package host implements contexts whose drawable and textures live in host
// memory. The software backend uses it as is; the native backend attaches a
// Device that mirrors every resource onto the GPU.
package host

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	"github.com/crbrz/webrender/internal/pixbuf"
	"github.com/gogpu/gpucontext"
)

// poolBucketSize bounds the recycled storage kept per texture shape.
const poolBucketSize = 4

// Device mirrors host resources onto a GPU device. Resources are keyed by
// the ids the group assigns. Implementations must be safe for concurrent
// use.
type Device interface {
	CreateTexture(id uint32, desc glctx.TextureDesc) error
	// WriteTexture uploads a tightly packed rectangle of layer 0 in the
	// device layout of the texture's format.
	WriteTexture(id uint32, x, y, w, h uint32, data []byte) error
	DestroyTexture(id uint32)

	CreateBuffer(id uint32, usage glctx.BufferUsage, size int) error
	WriteBuffer(id uint32, offset int, data []byte) error
	DestroyBuffer(id uint32)

	// Submit flushes recorded work and waits for it.
	Submit() error

	// Release frees the device. It is called once, when the last context
	// of the group is destroyed.
	Release() error
}

// Group is a share group: the textures and buffers visible to all of its
// contexts.
type Group struct {
	kind    glctx.Kind
	limits  glctx.Limits
	adapter gpucontext.AdapterInfo
	dev     Device
	pool    *pixbuf.Pool

	mu       sync.Mutex
	textures map[uint32]*Texture
	buffers  map[glctx.BufferID]*buffer
	nextID   uint32
	members  int
}

type buffer struct {
	usage glctx.BufferUsage
	data  []byte
}

// NewGroup returns an empty share group. dev may be nil.
func NewGroup(kind glctx.Kind, limits glctx.Limits, adapter gpucontext.AdapterInfo, dev Device) *Group {
	return &Group{
		kind:     kind,
		limits:   limits,
		adapter:  adapter,
		dev:      dev,
		pool:     pixbuf.NewPool(poolBucketSize),
		textures: make(map[uint32]*Texture),
		buffers:  make(map[glctx.BufferID]*buffer),
	}
}

// Kind returns the backend variant of the group.
func (g *Group) Kind() glctx.Kind { return g.kind }

// Limits returns the device limits.
func (g *Group) Limits() glctx.Limits { return g.limits }

// Device returns the attached device, or nil.
func (g *Group) Device() Device { return g.dev }

// Members returns the number of live contexts.
func (g *Group) Members() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members
}

// LiveTextures returns the number of unreleased textures, drawables
// included.
func (g *Group) LiveTextures() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.textures)
}

// LiveBuffers returns the number of undeleted buffers.
func (g *Group) LiveBuffers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.buffers)
}

// Lookup returns the live texture with the given id.
func (g *Group) Lookup(id uint32) (*Texture, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.textures[id]
	return t, ok
}

// Join resolves a share handle to its group. A nil handle yields nil; a
// handle of another backend yields glctx.ErrForeignHandle.
func Join(share glctx.NativeHandle, kind glctx.Kind) (*Group, error) {
	if share == nil {
		return nil, nil
	}
	h, ok := share.(*Handle)
	if !ok || h.group.kind != kind {
		return nil, fmt.Errorf("%w: %s handle for %s backend", glctx.ErrForeignHandle, share.Kind(), kind)
	}
	return h.group, nil
}

// NewTexture allocates a texture in the group.
func (g *Group) NewTexture(desc glctx.TextureDesc) (*Texture, error) {
	if err := desc.Validate(g.limits); err != nil {
		return nil, err
	}
	buf, err := g.pool.Get(int(desc.Width), int(desc.Height), int(desc.Mode.Layers()), desc.Format)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.mu.Unlock()

	if g.dev != nil {
		if err := g.dev.CreateTexture(id, desc); err != nil {
			g.pool.Put(buf)
			return nil, fmt.Errorf("host: create texture %d: %w", id, err)
		}
	}
	t := &Texture{group: g, id: id, desc: desc, buf: buf}

	g.mu.Lock()
	g.textures[id] = t
	g.mu.Unlock()

	slogger().Debug("host: texture created",
		"id", id,
		"size", fmt.Sprintf("%dx%d", desc.Width, desc.Height),
		"format", desc.Format.String())
	return t, nil
}

func (g *Group) forget(id uint32) {
	g.mu.Lock()
	delete(g.textures, id)
	g.mu.Unlock()
}

func (g *Group) createBuffer(usage glctx.BufferUsage, size int) (glctx.BufferID, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: buffer of %d bytes", glctx.ErrInvalidSize, size)
	}
	if g.limits.MaxBufferSize != 0 && uint64(size) > g.limits.MaxBufferSize {
		return 0, fmt.Errorf("%w: buffer of %d bytes, max %d", glctx.ErrSizeExceedsLimits, size, g.limits.MaxBufferSize)
	}

	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.mu.Unlock()

	if g.dev != nil {
		if err := g.dev.CreateBuffer(id, usage, size); err != nil {
			return 0, fmt.Errorf("host: create buffer %d: %w", id, err)
		}
	}
	g.mu.Lock()
	g.buffers[glctx.BufferID(id)] = &buffer{usage: usage, data: make([]byte, size)}
	g.mu.Unlock()
	return glctx.BufferID(id), nil
}

func (g *Group) bufferData(id glctx.BufferID, offset int, data []byte) error {
	g.mu.Lock()
	b, ok := g.buffers[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %d", glctx.ErrUnknownBuffer, id)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		g.mu.Unlock()
		return fmt.Errorf("%w: write %d bytes at %d into buffer of %d", glctx.ErrOutOfBounds, len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	g.mu.Unlock()

	if g.dev != nil {
		return g.dev.WriteBuffer(uint32(id), offset, data)
	}
	return nil
}

func (g *Group) deleteBuffer(id glctx.BufferID) error {
	g.mu.Lock()
	_, ok := g.buffers[id]
	delete(g.buffers, id)
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", glctx.ErrUnknownBuffer, id)
	}
	if g.dev != nil {
		g.dev.DestroyBuffer(uint32(id))
	}
	return nil
}

func (g *Group) join() {
	g.mu.Lock()
	g.members++
	g.mu.Unlock()
}

// leave drops one member. The last member frees every shared object and
// the device.
func (g *Group) leave() error {
	g.mu.Lock()
	g.members--
	if g.members > 0 {
		g.mu.Unlock()
		return nil
	}
	textures := make([]*Texture, 0, len(g.textures))
	for _, t := range g.textures {
		textures = append(textures, t)
	}
	buffers := g.buffers
	g.buffers = make(map[glctx.BufferID]*buffer)
	g.mu.Unlock()

	for _, t := range textures {
		t.Release()
	}
	if g.dev == nil {
		return nil
	}
	for id := range buffers {
		g.dev.DestroyBuffer(uint32(id))
	}
	slogger().Debug("host: share group released", "textures", len(textures), "buffers", len(buffers))
	return g.dev.Release()
}

// Handle is the share handle of a host context.
type Handle struct {
	group *Group
}

// Kind returns the backend variant of the handle's group.
func (h *Handle) Kind() glctx.Kind { return h.group.kind }

// Group returns the share group the handle references.
func (h *Handle) Group() *Group { return h.group }

func slogger() *slog.Logger { return webrender.Logger() }
