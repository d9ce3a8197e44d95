// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texcache replays texture update lists on the GPU-owning thread
// and resolves SourceTexture values to live textures at draw time.
//
// Cache textures are created, updated and grown only through Apply, in
// list order. They are freed only by explicit eviction; the caller must
// tell the producer about evicted ids so it stops referencing them.
// Textures owned elsewhere (external images and WebGL surfaces) are
// registered by their owners and never freed by the cache.
package texcache

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
)

// ErrOutOfMemory is returned when a Create or Grow would exceed the
// texture memory budget.
var ErrOutOfMemory = errors.New("texcache: texture memory budget exceeded")

// Option configures a Cache.
type Option func(*Cache)

// WithBudget limits the device memory held by cache textures. 0 means no
// limit.
func WithBudget(bytes uint64) Option {
	return func(c *Cache) {
		c.budget = bytes
	}
}

// Stats are cumulative texture cache statistics.
type Stats struct {
	// Textures, External and WebGL count the live entries of each kind.
	Textures int
	External int
	WebGL    int

	// UsedBytes is the device memory held by cache textures.
	UsedBytes uint64
	// BudgetBytes is the configured budget, 0 for none.
	BudgetBytes uint64

	Creates   uint64
	Updates   uint64
	Grows     uint64
	Evictions uint64

	// UploadedBytes counts pixel bytes uploaded by Create and Update.
	UploadedBytes uint64
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("textures=%d external=%d webgl=%d used=%d/%dB creates=%d updates=%d grows=%d evictions=%d",
		s.Textures, s.External, s.WebGL, s.UsedBytes, s.BudgetBytes,
		s.Creates, s.Updates, s.Grows, s.Evictions)
}

type entry struct {
	tex   glctx.Texture
	bytes uint64
	node  *lruNode[webrender.CacheTextureID]
}

// Cache owns the textures named by CacheTextureID.
//
// All methods are safe for concurrent use. GPU work runs on the context's
// thread.
type Cache struct {
	ctx    *glctx.ContextWrapper
	budget uint64

	mu       sync.Mutex
	textures map[webrender.CacheTextureID]*entry
	lru      lruList[webrender.CacheTextureID]
	external map[webrender.ExternalImageID]glctx.Texture
	webgl    map[uint32]glctx.Texture
	used     uint64
	stats    Stats
}

// New returns an empty cache creating its textures in ctx's share group.
func New(ctx *glctx.ContextWrapper, opts ...Option) *Cache {
	c := &Cache{
		ctx:      ctx,
		textures: make(map[webrender.CacheTextureID]*entry),
		external: make(map[webrender.ExternalImageID]glctx.Texture),
		webgl:    make(map[uint32]glctx.Texture),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply replays list in order. An Update or Grow naming an id that is not
// live, or a Create naming a live one, is a contract violation and
// panics. Resource errors stop the replay and are returned as a
// *webrender.UpdateError; updates before the failing one stay applied and
// the failing one has no effect. A Grow whose storage was reallocated
// succeeds even if the old contents could not be copied over.
func (c *Cache) Apply(list *webrender.TextureUpdateList) error {
	for i, u := range list.All() {
		var err error
		switch op := u.Op.(type) {
		case webrender.CreateOp:
			err = c.create(u.ID, op)
		case webrender.UpdateOp:
			err = c.update(u.ID, op)
		case webrender.GrowOp:
			err = c.grow(u.ID, op)
		default:
			panic(fmt.Sprintf("texcache: unknown operation %T", u.Op))
		}
		if err != nil {
			return &webrender.UpdateError{Index: i, ID: u.ID, Op: u.Op, Err: err}
		}
	}
	return nil
}

func (c *Cache) create(id webrender.CacheTextureID, op webrender.CreateOp) error {
	desc := glctx.TextureDesc{
		Width:  op.Width,
		Height: op.Height,
		Format: op.Format,
		Filter: op.Filter,
		Mode:   op.Mode,
	}
	size := desc.StorageBytes()

	c.mu.Lock()
	if _, ok := c.textures[id]; ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("texcache: create of live texture %s", id))
	}
	if err := c.reserveLocked(size); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	tex, err := c.ctx.CreateTexture(desc)
	if err == nil && op.Pixels != nil {
		err = c.ctx.Exec(glctx.TexSubImage{Texture: tex, W: op.Width, H: op.Height, Pixels: op.Pixels})
		if err != nil {
			tex.Release()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.used -= size
		return err
	}
	c.textures[id] = &entry{tex: tex, bytes: size, node: c.lru.PushFront(id)}
	c.stats.Creates++
	c.stats.UploadedBytes += uint64(len(op.Pixels))
	slogger().Debug("texcache: texture created", "id", id.String(), "op", op.String(), "texture", tex.ID())
	return nil
}

func (c *Cache) update(id webrender.CacheTextureID, op webrender.UpdateOp) error {
	e := c.mustGet(id, "update")
	err := c.ctx.Exec(glctx.TexSubImage{
		Texture: e.tex,
		X:       op.X,
		Y:       op.Y,
		W:       op.Width,
		H:       op.Height,
		Pixels:  op.Pixels,
		Stride:  int(op.Stride),
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.touchLocked(e)
	c.stats.Updates++
	c.stats.UploadedBytes += uint64(len(op.Pixels))
	c.mu.Unlock()
	return nil
}

func (c *Cache) grow(id webrender.CacheTextureID, op webrender.GrowOp) error {
	e := c.mustGet(id, "grow")
	desc := glctx.TextureDesc{
		Width:  op.Width,
		Height: op.Height,
		Format: op.Format,
		Filter: op.Filter,
		Mode:   op.Mode,
	}
	size := desc.StorageBytes()

	c.mu.Lock()
	c.used -= e.bytes
	if err := c.reserveLocked(size); err != nil {
		c.used += e.bytes
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := c.ctx.Exec(growTexture{tex: e.tex, desc: desc})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.used = c.used - size + e.bytes
		return err
	}
	e.bytes = size
	c.touchLocked(e)
	c.stats.Grows++
	slogger().Debug("texcache: texture grown", "id", id.String(), "op", op.String())
	return nil
}

func (c *Cache) mustGet(id webrender.CacheTextureID, op string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.textures[id]
	if !ok {
		panic(fmt.Sprintf("texcache: %s of texture %s that was never created", op, id))
	}
	return e
}

// reserveLocked requires c.mu.
func (c *Cache) reserveLocked(size uint64) error {
	if c.budget != 0 && c.used+size > c.budget {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrOutOfMemory, size, c.used, c.budget)
	}
	c.used += size
	return nil
}

// touchLocked requires c.mu.
func (c *Cache) touchLocked(e *entry) {
	c.lru.MoveToFront(e.node)
}

// Resolve returns the live texture src names. An invalid source, an
// evicted cache texture or an unregistered external or WebGL texture
// reports false.
func (c *Cache) Resolve(src webrender.SourceTexture) (glctx.Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch src.Kind() {
	case webrender.SourceTextureCache:
		id, _ := src.CacheID()
		e, ok := c.textures[id]
		if !ok {
			return nil, false
		}
		c.touchLocked(e)
		return e.tex, true
	case webrender.SourceWebGL:
		id, _ := src.WebGLID()
		t, ok := c.webgl[id]
		return t, ok
	case webrender.SourceExternal:
		id, _ := src.ExternalID()
		t, ok := c.external[id]
		return t, ok
	default:
		return nil, false
	}
}

// Contains reports whether id is a live cache texture. Unlike Resolve it
// does not count as a use.
func (c *Cache) Contains(id webrender.CacheTextureID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.textures[id]
	return ok
}

// RegisterExternal makes tex resolvable as the external image id. The
// caller keeps ownership of tex.
func (c *Cache) RegisterExternal(id webrender.ExternalImageID, tex glctx.Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.external[id] = tex
}

// UnregisterExternal removes an external image.
func (c *Cache) UnregisterExternal(id webrender.ExternalImageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.external, id)
}

// RegisterWebGL makes tex resolvable as the WebGL texture id. The caller
// keeps ownership of tex.
func (c *Cache) RegisterWebGL(id uint32, tex glctx.Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.webgl[id] = tex
}

// UnregisterWebGL removes a WebGL texture.
func (c *Cache) UnregisterWebGL(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.webgl, id)
}

// Evict frees a cache texture. It reports whether id was live. Later
// Resolve calls for id report false, and the id may be created again.
func (c *Cache) Evict(id webrender.CacheTextureID) bool {
	c.mu.Lock()
	e, ok := c.textures[id]
	if ok {
		c.removeLocked(id, e)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.release(e.tex)
	slogger().Debug("texcache: texture evicted", "id", id.String())
	return true
}

// Trim evicts least recently used cache textures until at most target
// bytes are in use, and returns the evicted ids oldest first.
func (c *Cache) Trim(target uint64) []webrender.CacheTextureID {
	var evicted []webrender.CacheTextureID
	var textures []glctx.Texture
	c.mu.Lock()
	for c.used > target {
		id, ok := c.lru.Oldest()
		if !ok {
			break
		}
		e := c.textures[id]
		c.removeLocked(id, e)
		evicted = append(evicted, id)
		textures = append(textures, e.tex)
	}
	c.mu.Unlock()

	for _, t := range textures {
		c.release(t)
	}
	if len(evicted) > 0 {
		slogger().Info("texcache: trimmed", "evicted", len(evicted), "target", target)
	}
	return evicted
}

// removeLocked requires c.mu.
func (c *Cache) removeLocked(id webrender.CacheTextureID, e *entry) {
	delete(c.textures, id)
	c.lru.Remove(e.node)
	c.used -= e.bytes
	c.stats.Evictions++
}

func (c *Cache) release(t glctx.Texture) {
	if err := c.ctx.Exec(releaseTexture{tex: t}); err != nil {
		slogger().Warn("texcache: release failed", "texture", t.ID(), "err", err)
	}
}

// Stats returns a snapshot of the statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Textures = len(c.textures)
	s.External = len(c.external)
	s.WebGL = len(c.webgl)
	s.UsedBytes = c.used
	s.BudgetBytes = c.budget
	return s
}

// Close frees every cache texture. Registered external and WebGL textures
// are forgotten but not freed.
func (c *Cache) Close() {
	c.mu.Lock()
	textures := make([]glctx.Texture, 0, len(c.textures))
	for id, e := range c.textures {
		textures = append(textures, e.tex)
		c.lru.Remove(e.node)
		delete(c.textures, id)
	}
	clear(c.external)
	clear(c.webgl)
	c.used = 0
	c.mu.Unlock()

	for _, t := range textures {
		c.release(t)
	}
}

func slogger() *slog.Logger { return webrender.Logger() }
