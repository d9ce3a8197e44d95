// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"fmt"
	"image"

	"github.com/crbrz/webrender"
)

// BufferID names a buffer created by a CreateBuffer command.
type BufferID uint32

// BufferUsage says what a buffer is bound as.
type BufferUsage uint8

const (
	// BufferVertex is a vertex buffer.
	BufferVertex BufferUsage = iota + 1
	// BufferIndex is an index buffer.
	BufferIndex
	// BufferUniform is a uniform buffer.
	BufferUniform
)

// String returns the usage name.
func (u BufferUsage) String() string {
	switch u {
	case BufferVertex:
		return "Vertex"
	case BufferIndex:
		return "Index"
	case BufferUniform:
		return "Uniform"
	default:
		return "Unknown"
	}
}

// ClearMask selects the buffers a Clear command resets.
type ClearMask uint8

const (
	ClearColorBuffer ClearMask = 1 << iota
	ClearDepthBuffer
	ClearStencilBuffer
)

// CommandTarget is the native call set of one backend. Each context has
// one; commands are applied to it on the context's thread.
type CommandTarget interface {
	SetClearColor(c webrender.ColorF)
	Clear(mask ClearMask)
	SetViewport(r image.Rectangle)
	SetBlendMode(mode webrender.MixBlendMode)

	CreateBuffer(usage BufferUsage, size int) (BufferID, error)
	BufferData(id BufferID, offset int, data []byte) error
	DeleteBuffer(id BufferID) error

	// FillRect blends a solid color over r of the drawable.
	FillRect(r image.Rectangle, c webrender.PackedColor) error

	// DrawQuads draws quads, sampling textures[0] when it is non-nil.
	DrawQuads(textures [webrender.ColorSamplerCount]Texture, quads []webrender.PackedVertexForQuad) error

	// ReadPixels returns r of the drawable as tightly packed
	// premultiplied RGBA rows.
	ReadPixels(r image.Rectangle) ([]byte, error)

	// Finish blocks until all submitted work has completed.
	Finish() error
}

// Command is one GPU command originating outside the renderer, for example
// from an embedded script surface. Apply runs it against a target.
type Command interface {
	fmt.Stringer
	Apply(t CommandTarget) error
}

// ClearColor sets the color used by Clear.
type ClearColor struct {
	Color webrender.ColorF
}

func (c ClearColor) Apply(t CommandTarget) error {
	t.SetClearColor(c.Color)
	return nil
}

func (c ClearColor) String() string { return fmt.Sprintf("ClearColor(%v)", c.Color) }

// Clear resets the buffers in Mask.
type Clear struct {
	Mask ClearMask
}

func (c Clear) Apply(t CommandTarget) error {
	t.Clear(c.Mask)
	return nil
}

func (c Clear) String() string { return fmt.Sprintf("Clear(%#x)", uint8(c.Mask)) }

// Viewport restricts drawing to Rect.
type Viewport struct {
	Rect image.Rectangle
}

func (c Viewport) Apply(t CommandTarget) error {
	t.SetViewport(c.Rect)
	return nil
}

func (c Viewport) String() string { return fmt.Sprintf("Viewport(%v)", c.Rect) }

// BlendMode selects how later draws combine with the drawable.
type BlendMode struct {
	Mode webrender.MixBlendMode
}

func (c BlendMode) Apply(t CommandTarget) error {
	t.SetBlendMode(c.Mode)
	return nil
}

func (c BlendMode) String() string { return fmt.Sprintf("BlendMode(%d)", c.Mode) }

// BufferResult is the reply to CreateBuffer.
type BufferResult struct {
	ID  BufferID
	Err error
}

// CreateBuffer allocates a buffer of Size bytes. The result is sent on
// Reply, which must have room for one value.
type CreateBuffer struct {
	Usage BufferUsage
	Size  int
	Reply chan<- BufferResult
}

func (c CreateBuffer) Apply(t CommandTarget) error {
	id, err := t.CreateBuffer(c.Usage, c.Size)
	if c.Reply != nil {
		c.Reply <- BufferResult{ID: id, Err: err}
	}
	return err
}

func (c CreateBuffer) String() string { return fmt.Sprintf("CreateBuffer(%s, %d)", c.Usage, c.Size) }

// BufferData writes Data into a buffer at Offset.
type BufferData struct {
	Buffer BufferID
	Offset int
	Data   []byte
}

func (c BufferData) Apply(t CommandTarget) error {
	return t.BufferData(c.Buffer, c.Offset, c.Data)
}

func (c BufferData) String() string {
	return fmt.Sprintf("BufferData(%d, %d, %d bytes)", c.Buffer, c.Offset, len(c.Data))
}

// DeleteBuffer frees a buffer.
type DeleteBuffer struct {
	Buffer BufferID
}

func (c DeleteBuffer) Apply(t CommandTarget) error { return t.DeleteBuffer(c.Buffer) }

func (c DeleteBuffer) String() string { return fmt.Sprintf("DeleteBuffer(%d)", c.Buffer) }

// TexSubImage uploads a rectangle of pixels into a texture.
type TexSubImage struct {
	Texture    Texture
	X, Y, W, H uint32
	Pixels     []byte
	Stride     int
}

func (c TexSubImage) Apply(CommandTarget) error {
	return c.Texture.Upload(c.X, c.Y, c.W, c.H, c.Pixels, c.Stride)
}

func (c TexSubImage) String() string {
	return fmt.Sprintf("TexSubImage(%d, %d,%d %dx%d)", c.Texture.ID(), c.X, c.Y, c.W, c.H)
}

// FillRect blends Color over Rect.
type FillRect struct {
	Rect  image.Rectangle
	Color webrender.PackedColor
}

func (c FillRect) Apply(t CommandTarget) error { return t.FillRect(c.Rect, c.Color) }

func (c FillRect) String() string { return fmt.Sprintf("FillRect(%v, %v)", c.Rect, c.Color) }

// DrawQuads draws a batch of quads with the given textures bound to the
// color samplers.
type DrawQuads struct {
	Textures [webrender.ColorSamplerCount]Texture
	Quads    []webrender.PackedVertexForQuad
}

func (c DrawQuads) Apply(t CommandTarget) error { return t.DrawQuads(c.Textures, c.Quads) }

func (c DrawQuads) String() string { return fmt.Sprintf("DrawQuads(%d)", len(c.Quads)) }

// PixelsResult is the reply to ReadPixels.
type PixelsResult struct {
	Pixels []byte
	Err    error
}

// ReadPixels reads Rect of the drawable. The result is sent on Reply, which
// must have room for one value.
type ReadPixels struct {
	Rect  image.Rectangle
	Reply chan<- PixelsResult
}

func (c ReadPixels) Apply(t CommandTarget) error {
	px, err := t.ReadPixels(c.Rect)
	if c.Reply != nil {
		c.Reply <- PixelsResult{Pixels: px, Err: err}
	}
	return err
}

func (c ReadPixels) String() string { return fmt.Sprintf("ReadPixels(%v)", c.Rect) }

// Finish waits for submitted work to complete.
type Finish struct{}

func (Finish) Apply(t CommandTarget) error { return t.Finish() }

func (Finish) String() string { return "Finish" }
