// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pixbuf holds host-side texture storage for the context backends.
//
// A Buf stores every layer of a texture contiguously in the device layout of
// its format: A8 as one byte, RGB8 widened to RGBA8 with opaque alpha,
// RGBA8 as four premultiplied bytes and RGBAF32 as four little-endian
// float32 values.
package pixbuf

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
)

// Buf is the storage of one texture.
//
// Buf is not safe for concurrent mutation; contexts serialize access.
type Buf struct {
	data   []byte
	width  int
	height int
	layers int
	format webrender.ImageFormat
}

// New allocates zeroed storage.
func New(width, height, layers int, format webrender.ImageFormat) (*Buf, error) {
	if !format.IsValid() {
		return nil, webrender.ErrInvalidFormat
	}
	if width <= 0 || height <= 0 || layers <= 0 {
		return nil, fmt.Errorf("%w: %dx%d layers=%d", glctx.ErrInvalidSize, width, height, layers)
	}
	return &Buf{
		data:   make([]byte, width*height*layers*format.StorageBytesPerPixel()),
		width:  width,
		height: height,
		layers: layers,
		format: format,
	}, nil
}

// Width returns the width in pixels.
func (b *Buf) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Buf) Height() int { return b.height }

// Layers returns the layer count.
func (b *Buf) Layers() int { return b.layers }

// Format returns the texture format.
func (b *Buf) Format() webrender.ImageFormat { return b.format }

// ByteSize returns the storage size in bytes.
func (b *Buf) ByteSize() int { return len(b.data) }

// Data returns the raw storage of all layers.
func (b *Buf) Data() []byte { return b.data }

// Clear zeroes all layers.
func (b *Buf) Clear() { clear(b.data) }

func (b *Buf) rowBytes() int { return b.width * b.format.StorageBytesPerPixel() }

// Upload copies a w x h rectangle of source pixels, in the texture's
// format, to (x, y) of layer 0. stride 0 means tightly packed rows.
func (b *Buf) Upload(x, y, w, h int, pixels []byte, stride int) error {
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > b.width || y+h > b.height {
		return fmt.Errorf("%w: %d,%d %dx%d in %dx%d", glctx.ErrOutOfBounds, x, y, w, h, b.width, b.height)
	}
	if w == 0 || h == 0 {
		return nil
	}
	bpp := b.format.BytesPerPixel()
	if stride == 0 {
		stride = w * bpp
	}
	if stride < w*bpp {
		return fmt.Errorf("%w: stride %d for %d pixels", webrender.ErrShortPixels, stride, w)
	}
	if need := stride*(h-1) + w*bpp; len(pixels) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", webrender.ErrShortPixels, len(pixels), need)
	}

	sbpp := b.format.StorageBytesPerPixel()
	row := b.rowBytes()
	for j := range h {
		src := pixels[j*stride : j*stride+w*bpp]
		dst := b.data[(y+j)*row+x*sbpp : (y+j)*row+(x+w)*sbpp]
		if b.format != webrender.ImageFormatRGB8 {
			copy(dst, src)
			continue
		}
		for i := range w {
			dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = src[i*3], src[i*3+1], src[i*3+2], 255
		}
	}
	return nil
}

// Read returns layer 0 tightly packed in the texture's format.
func (b *Buf) Read() []byte {
	n := b.width * b.height
	if b.format != webrender.ImageFormatRGB8 {
		out := make([]byte, n*b.format.BytesPerPixel())
		copy(out, b.data)
		return out
	}
	out := make([]byte, 0, n*3)
	for i := range n {
		out = append(out, b.data[i*4], b.data[i*4+1], b.data[i*4+2])
	}
	return out
}

// RGBA returns the premultiplied 8-bit color of pixel (x, y) of layer 0.
// A8 texels read as (a, a, a, a).
func (b *Buf) RGBA(x, y int) (r, g, bl, a byte) {
	off := (y*b.width + x) * b.format.StorageBytesPerPixel()
	d := b.data[off:]
	switch b.format {
	case webrender.ImageFormatA8:
		return d[0], d[0], d[0], d[0]
	case webrender.ImageFormatRGBAF32:
		return f32Byte(d[0:]), f32Byte(d[4:]), f32Byte(d[8:]), f32Byte(d[12:])
	default:
		return d[0], d[1], d[2], d[3]
	}
}

func f32Byte(b []byte) byte {
	v := math.Float32frombits(binary.LittleEndian.Uint32(b))
	return byte(math.Round(float64(min(max(v, 0), 1)) * 255))
}

// Image returns a snapshot of layer 0 as premultiplied RGBA.
func (b *Buf) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	if b.format == webrender.ImageFormatRGBA8 || b.format == webrender.ImageFormatRGB8 {
		copy(img.Pix, b.data[:b.width*b.height*4])
		return img
	}
	for y := range b.height {
		for x := range b.width {
			o := img.PixOffset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = b.RGBA(x, y)
		}
	}
	return img
}

// Region returns a copy of a w x h rectangle of layer 0 in the storage
// layout, tightly packed.
func (b *Buf) Region(x, y, w, h int) []byte {
	sbpp := b.format.StorageBytesPerPixel()
	row := b.rowBytes()
	out := make([]byte, 0, w*h*sbpp)
	for j := range h {
		off := (y+j)*row + x*sbpp
		out = append(out, b.data[off:off+w*sbpp]...)
	}
	return out
}

// View returns layer 0 as an image sharing b's storage, so drawing into
// the image writes the texture. It reports false for formats not stored as
// 8-bit RGBA.
func (b *Buf) View() (*image.RGBA, bool) {
	if b.format != webrender.ImageFormatRGBA8 && b.format != webrender.ImageFormatRGB8 {
		return nil, false
	}
	return &image.RGBA{
		Pix:    b.data[:b.width*b.height*4],
		Stride: b.width * 4,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}, true
}
