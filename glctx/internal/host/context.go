// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	"github.com/crbrz/webrender/internal/raster"
)

// Context is a context drawing into a host-memory drawable. The drawable
// is an RGBA8 texture of the group, so its id is a texture id.
type Context struct {
	group    *Group
	handle   *Handle
	attrs    glctx.Attributes
	drawable *Texture
	target   *raster.Target
	size     glctx.Size
}

var (
	_ glctx.NativeContext = (*Context)(nil)
	_ glctx.CommandTarget = (*Context)(nil)
)

// NewContext creates a context in g with a drawable of the given size.
func NewContext(g *Group, size glctx.Size, attrs glctx.Attributes) (*Context, error) {
	if !g.limits.Fits(size.W, size.H, 1) {
		return nil, fmt.Errorf("%w: drawable %s, max %d", glctx.ErrSizeExceedsLimits, size, g.limits.MaxTextureSize)
	}
	drawable, err := g.NewTexture(drawableDesc(size))
	if err != nil {
		return nil, err
	}
	view, _ := drawable.buf.View()
	g.join()
	return &Context{
		group:    g,
		handle:   &Handle{group: g},
		attrs:    attrs,
		drawable: drawable,
		target:   raster.New(view),
		size:     size,
	}, nil
}

func drawableDesc(size glctx.Size) glctx.TextureDesc {
	return glctx.TextureDesc{
		Width:  uint32(size.W),
		Height: uint32(size.H),
		Format: webrender.ImageFormatRGBA8,
		Filter: webrender.FilterNearest,
		Mode:   webrender.SingleRenderTarget(),
	}
}

// Group returns the context's share group.
func (c *Context) Group() *Group { return c.group }

// Drawable returns the drawable's color texture.
func (c *Context) Drawable() *Texture { return c.drawable }

func (c *Context) Handle() glctx.NativeHandle { return c.handle }

// MakeCurrent is a no-op: host contexts have no thread-bound native state.
func (c *Context) MakeCurrent() error { return nil }

// Unbind is a no-op.
func (c *Context) Unbind() error { return nil }

func (c *Context) Info() glctx.Info {
	return glctx.Info{
		Size:      c.size,
		TextureID: c.drawable.id,
		Limits:    c.group.limits,
		Adapter:   c.group.adapter,
	}
}

func (c *Context) Resize(size glctx.Size) error {
	if !c.group.limits.Fits(size.W, size.H, 1) {
		return fmt.Errorf("%w: drawable %s, max %d", glctx.ErrSizeExceedsLimits, size, c.group.limits.MaxTextureSize)
	}
	var old *image.RGBA
	if c.attrs.PreserveDrawingBuffer {
		old = c.drawable.buf.Image()
	}
	if err := c.drawable.Reallocate(drawableDesc(size)); err != nil {
		return err
	}
	view, _ := c.drawable.buf.View()
	if old != nil {
		draw.Copy(view, image.Point{}, old, old.Bounds(), draw.Src, nil)
	}
	c.target.SetImage(view)
	c.size = size
	return nil
}

func (c *Context) CreateTexture(desc glctx.TextureDesc) (glctx.Texture, error) {
	return c.group.NewTexture(desc)
}

func (c *Context) Target() glctx.CommandTarget { return c }

// Destroy releases the drawable and leaves the group.
func (c *Context) Destroy() error {
	c.drawable.Release()
	return c.group.leave()
}

func (c *Context) SetClearColor(col webrender.ColorF) {
	if !c.attrs.Alpha {
		col.A = 1
	}
	c.target.SetClearColor(col)
}

// Clear resets the color buffer. Host drawables have no depth or stencil
// storage, so other bits are ignored.
func (c *Context) Clear(mask glctx.ClearMask) {
	if mask&glctx.ClearColorBuffer != 0 {
		c.target.Clear()
	}
}

func (c *Context) SetViewport(r image.Rectangle) { c.target.SetViewport(r) }

func (c *Context) SetBlendMode(mode webrender.MixBlendMode) { c.target.SetBlendMode(mode) }

func (c *Context) CreateBuffer(usage glctx.BufferUsage, size int) (glctx.BufferID, error) {
	return c.group.createBuffer(usage, size)
}

func (c *Context) BufferData(id glctx.BufferID, offset int, data []byte) error {
	return c.group.bufferData(id, offset, data)
}

func (c *Context) DeleteBuffer(id glctx.BufferID) error { return c.group.deleteBuffer(id) }

func (c *Context) FillRect(r image.Rectangle, col webrender.PackedColor) error {
	c.target.FillRect(r, col)
	return nil
}

// DrawQuads draws quads sampling textures[0]. Every bound texture must be
// a live texture of this context's group.
func (c *Context) DrawQuads(textures [webrender.ColorSamplerCount]glctx.Texture, quads []webrender.PackedVertexForQuad) error {
	var bound [webrender.ColorSamplerCount]*Texture
	for i, t := range textures {
		if t == nil {
			continue
		}
		ht, ok := t.(*Texture)
		if !ok || ht.group != c.group {
			return fmt.Errorf("%w: texture %d bound to sampler %d", glctx.ErrForeignHandle, t.ID(), i)
		}
		if ht.Released() {
			return fmt.Errorf("%w: %d", glctx.ErrTextureReleased, ht.id)
		}
		bound[i] = ht
	}

	if bound[0] == nil || bound[0] == c.drawable {
		var tex raster.Texture
		if bound[0] != nil {
			tex = raster.FromBuf(c.drawable.buf, c.drawable.desc.Filter)
		}
		c.target.DrawQuads(tex, quads)
		return nil
	}
	tex, err := bound[0].bind()
	if err != nil {
		return err
	}
	defer bound[0].mu.Unlock()
	c.target.DrawQuads(tex, quads)
	return nil
}

func (c *Context) ReadPixels(r image.Rectangle) ([]byte, error) { return c.target.ReadPixels(r) }

// Finish mirrors the drawable onto the device and waits for submitted
// work. Without a device it returns immediately.
func (c *Context) Finish() error {
	dev := c.group.dev
	if dev == nil {
		return nil
	}
	w, h := int(c.size.W), int(c.size.H)
	if err := dev.WriteTexture(c.drawable.id, 0, 0, uint32(w), uint32(h), c.drawable.buf.Region(0, 0, w, h)); err != nil {
		return fmt.Errorf("host: write drawable: %w", err)
	}
	return dev.Submit()
}
