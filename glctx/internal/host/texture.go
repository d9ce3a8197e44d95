// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"fmt"
	"image"
	"sync"

	"github.com/crbrz/webrender/glctx"
	"github.com/crbrz/webrender/internal/pixbuf"
	"github.com/crbrz/webrender/internal/raster"
)

// Texture is a texture of a share group, stored in host memory.
type Texture struct {
	group *Group
	id    uint32

	mu       sync.Mutex
	desc     glctx.TextureDesc
	buf      *pixbuf.Buf
	released bool
}

var _ glctx.Texture = (*Texture)(nil)

// ID returns the id the group assigned.
func (t *Texture) ID() uint32 { return t.id }

// Desc returns the current storage description.
func (t *Texture) Desc() glctx.TextureDesc {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.desc
}

// Upload copies a w x h rectangle of pixels to (x, y) of layer 0.
func (t *Texture) Upload(x, y, w, h uint32, pixels []byte, stride int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return fmt.Errorf("%w: %d", glctx.ErrTextureReleased, t.id)
	}
	if err := t.buf.Upload(int(x), int(y), int(w), int(h), pixels, stride); err != nil {
		return err
	}
	if dev := t.group.dev; dev != nil && w > 0 && h > 0 {
		return dev.WriteTexture(t.id, x, y, w, h, t.buf.Region(int(x), int(y), int(w), int(h)))
	}
	return nil
}

// Reallocate replaces the storage, keeping the id.
func (t *Texture) Reallocate(desc glctx.TextureDesc) error {
	if err := desc.Validate(t.group.limits); err != nil {
		return err
	}
	buf, err := t.group.pool.Get(int(desc.Width), int(desc.Height), int(desc.Mode.Layers()), desc.Format)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		t.group.pool.Put(buf)
		return fmt.Errorf("%w: %d", glctx.ErrTextureReleased, t.id)
	}
	if dev := t.group.dev; dev != nil {
		dev.DestroyTexture(t.id)
		if err := dev.CreateTexture(t.id, desc); err != nil {
			// The old storage is still valid on the host; restore it on the
			// device as well.
			_ = dev.CreateTexture(t.id, t.desc)
			t.group.pool.Put(buf)
			return fmt.Errorf("host: reallocate texture %d: %w", t.id, err)
		}
	}
	t.group.pool.Put(t.buf)
	t.buf = buf
	t.desc = desc
	return nil
}

// ReadPixels returns layer 0 tightly packed in the texture's format.
func (t *Texture) ReadPixels() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return nil, fmt.Errorf("%w: %d", glctx.ErrTextureReleased, t.id)
	}
	return t.buf.Read(), nil
}

// Image returns a premultiplied RGBA snapshot of layer 0.
func (t *Texture) Image() (image.Image, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return nil, fmt.Errorf("%w: %d", glctx.ErrTextureReleased, t.id)
	}
	return t.buf.Image(), nil
}

// Release frees the storage. Release is idempotent.
func (t *Texture) Release() {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return
	}
	t.released = true
	buf := t.buf
	t.buf = nil
	t.mu.Unlock()

	t.group.pool.Put(buf)
	if dev := t.group.dev; dev != nil {
		dev.DestroyTexture(t.id)
	}
	t.group.forget(t.id)
	slogger().Debug("host: texture released", "id", t.id)
}

// Released reports whether Release was called.
func (t *Texture) Released() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

// bind locks t for sampling and returns its sampler view. The caller must
// call t.mu.Unlock when done.
func (t *Texture) bind() (raster.Texture, error) {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", glctx.ErrTextureReleased, t.id)
	}
	return raster.FromBuf(t.buf, t.desc.Filter), nil
}
