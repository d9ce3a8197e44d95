// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster draws batches of packed quads into an RGBA drawable on
// the CPU. It backs the software context and the host mirror of the
// native context.
package raster

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	"github.com/crbrz/webrender/internal/blend"
	"github.com/crbrz/webrender/internal/pixbuf"
)

// Texture is a texture a quad can sample.
type Texture interface {
	// Sample returns the premultiplied color at normalized coordinates.
	Sample(u, v float32) (r, g, b, a byte)

	// Snapshot returns layer 0 as premultiplied RGBA and its filter.
	Snapshot() (*image.RGBA, webrender.TextureFilter)
}

// FromBuf returns a Texture sampling b with filter.
func FromBuf(b *pixbuf.Buf, filter webrender.TextureFilter) Texture {
	return bufTexture{buf: b, filter: filter}
}

type bufTexture struct {
	buf    *pixbuf.Buf
	filter webrender.TextureFilter
}

func (t bufTexture) Sample(u, v float32) (r, g, b, a byte) { return t.buf.Sample(u, v, t.filter) }

func (t bufTexture) Snapshot() (*image.RGBA, webrender.TextureFilter) {
	return t.buf.Image(), t.filter
}

// Target is a drawable plus the fixed-function state applied to it.
type Target struct {
	img      *image.RGBA
	viewport image.Rectangle
	clear    [4]byte
	mode     webrender.MixBlendMode
	blend    blend.Func
}

// New returns a target drawing into img. The viewport covers all of img.
func New(img *image.RGBA) *Target {
	return &Target{img: img, viewport: img.Bounds(), blend: blend.SourceOver}
}

// Image returns the drawable.
func (t *Target) Image() *image.RGBA { return t.img }

// SetImage replaces the drawable and resets the viewport to cover it.
func (t *Target) SetImage(img *image.RGBA) {
	t.img = img
	t.viewport = img.Bounds()
}

// SetViewport restricts drawing to r.
func (t *Target) SetViewport(r image.Rectangle) {
	t.viewport = r.Intersect(t.img.Bounds())
}

// Viewport returns the drawing rectangle.
func (t *Target) Viewport() image.Rectangle { return t.viewport }

// SetClearColor sets the color Clear fills with.
func (t *Target) SetClearColor(c webrender.ColorF) {
	p := webrender.PackColor(c.Premultiplied())
	t.clear = [4]byte{p.R, p.G, p.B, p.A}
}

// SetBlendMode selects how later draws combine with the drawable.
func (t *Target) SetBlendMode(mode webrender.MixBlendMode) {
	t.mode = mode
	t.blend = blend.For(mode)
}

// Clear fills the viewport with the clear color, without blending.
func (t *Target) Clear() {
	for y := t.viewport.Min.Y; y < t.viewport.Max.Y; y++ {
		row := t.img.Pix[t.img.PixOffset(t.viewport.Min.X, y):t.img.PixOffset(t.viewport.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = t.clear[0], t.clear[1], t.clear[2], t.clear[3]
		}
	}
}

// FillRect blends the straight-alpha color c over r.
func (t *Target) FillRect(r image.Rectangle, c webrender.PackedColor) {
	r = r.Intersect(t.viewport)
	if r.Empty() || c.A == 0 && t.mode == webrender.BlendNormal {
		return
	}
	pr, pg, pb, pa := premultiply(c.R, c.G, c.B, c.A)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		blend.Span(t.img.Pix[t.img.PixOffset(r.Min.X, y):t.img.PixOffset(r.Max.X, y)], pr, pg, pb, pa, t.blend)
	}
}

// DrawQuads draws each quad, sampling tex when it is non-nil.
func (t *Target) DrawQuads(tex Texture, quads []webrender.PackedVertexForQuad) {
	for i := range quads {
		t.drawQuad(&quads[i], tex)
	}
}

// Bounds returns the pixels whose centers the quad covers. Pixel (i, j)
// has its center at (i+0.5, j+0.5) and is covered when
// X <= i+0.5 < X+Width and Y <= j+0.5 < Y+Height: centers on the left or
// top edge are inside, centers on the right or bottom edge are outside.
func Bounds(q *webrender.PackedVertexForQuad) image.Rectangle {
	return image.Rect(
		int(math.Ceil(float64(q.X)-0.5)),
		int(math.Ceil(float64(q.Y)-0.5)),
		int(math.Ceil(float64(q.X+q.Width)-0.5)),
		int(math.Ceil(float64(q.Y+q.Height)-0.5)),
	)
}

func (t *Target) drawQuad(q *webrender.PackedVertexForQuad, tex Texture) {
	if q.Width <= 0 || q.Height <= 0 {
		return
	}
	full := Bounds(q)
	r := full.Intersect(t.viewport)
	if r.Empty() {
		return
	}
	if tex != nil && t.mode == webrender.BlendNormal && isPlainBlit(q) {
		t.blit(q, full, tex)
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		fy := (float32(y) + 0.5 - q.Y) / q.Height
		for x := r.Min.X; x < r.Max.X; x++ {
			fx := (float32(x) + 0.5 - q.X) / q.Width
			cr, cg, cb, ca := cornerColor(q, fx, fy)
			sr, sg, sb, sa := premultiply(cr, cg, cb, ca)
			if tex != nil {
				u, v := cornerUV(q, fx, fy)
				tr, tg, tb, ta := tex.Sample(u, v)
				sr, sg, sb, sa = mul(tr, sr), mul(tg, sg), mul(tb, sb), mul(ta, sa)
			}
			o := t.img.PixOffset(x, y)
			p := t.img.Pix[o : o+4 : o+4]
			p[0], p[1], p[2], p[3] = t.blend(sr, sg, sb, sa, p[0], p[1], p[2], p[3])
		}
	}
}

// isPlainBlit reports whether q draws an axis-aligned texture rectangle
// with opaque white vertex colors.
func isPlainBlit(q *webrender.PackedVertexForQuad) bool {
	white := webrender.PackedColor{R: 255, G: 255, B: 255, A: 255}
	return q.ColorTL == white && q.ColorTR == white && q.ColorBR == white && q.ColorBL == white &&
		q.UTL == q.UBL && q.UTR == q.UBR && q.VTL == q.VTR && q.VBL == q.VBR &&
		q.UTL < q.UTR && q.VTL < q.VBL
}

// blit scales the quad's texture rectangle into dst with x/image/draw.
func (t *Target) blit(q *webrender.PackedVertexForQuad, dst image.Rectangle, tex Texture) {
	src, filter := tex.Snapshot()
	w, h := float32(src.Bounds().Dx()), float32(src.Bounds().Dy())
	sr := image.Rect(
		int(math.Round(float64(q.UTL*w))), int(math.Round(float64(q.VTL*h))),
		int(math.Round(float64(q.UTR*w))), int(math.Round(float64(q.VBL*h))),
	).Intersect(src.Bounds())
	if sr.Empty() {
		return
	}
	var scaler draw.Scaler = draw.NearestNeighbor
	if filter == webrender.FilterLinear {
		scaler = draw.ApproxBiLinear
	}
	dstImg := t.img.SubImage(t.viewport).(*image.RGBA)
	scaler.Scale(dstImg, dst, src, sr, draw.Over, nil)
}

func cornerColor(q *webrender.PackedVertexForQuad, fx, fy float32) (r, g, b, a byte) {
	lerp := func(tl, tr, br, bl byte) byte {
		top := float32(tl) + (float32(tr)-float32(tl))*fx
		bottom := float32(bl) + (float32(br)-float32(bl))*fx
		return byte(top + (bottom-top)*fy + 0.5)
	}
	return lerp(q.ColorTL.R, q.ColorTR.R, q.ColorBR.R, q.ColorBL.R),
		lerp(q.ColorTL.G, q.ColorTR.G, q.ColorBR.G, q.ColorBL.G),
		lerp(q.ColorTL.B, q.ColorTR.B, q.ColorBR.B, q.ColorBL.B),
		lerp(q.ColorTL.A, q.ColorTR.A, q.ColorBR.A, q.ColorBL.A)
}

func cornerUV(q *webrender.PackedVertexForQuad, fx, fy float32) (u, v float32) {
	lerp := func(tl, tr, br, bl float32) float32 {
		top := tl + (tr-tl)*fx
		bottom := bl + (br-bl)*fx
		return top + (bottom-top)*fy
	}
	return lerp(q.UTL, q.UTR, q.UBR, q.UBL), lerp(q.VTL, q.VTR, q.VBR, q.VBL)
}

func premultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	if a == 255 {
		return r, g, b, a
	}
	return mul(r, a), mul(g, a), mul(b, a), a
}

// mul returns round(a * b / 255).
func mul(a, b byte) byte {
	t := uint32(a)*uint32(b) + 128
	return byte((t + t>>8) >> 8)
}

// ReadPixels returns r of the drawable as tightly packed premultiplied
// RGBA rows.
func (t *Target) ReadPixels(r image.Rectangle) ([]byte, error) {
	if !r.In(t.img.Bounds()) {
		return nil, fmt.Errorf("%w: read %v of drawable %v", glctx.ErrOutOfBounds, r, t.img.Bounds())
	}
	out := make([]byte, 0, 4*r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		out = append(out, t.img.Pix[t.img.PixOffset(r.Min.X, y):t.img.PixOffset(r.Max.X, y)]...)
	}
	return out, nil
}
