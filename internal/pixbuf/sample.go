// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pixbuf

import (
	"math"

	"github.com/crbrz/webrender"
)

// Sample reads layer 0 at normalized coordinates (u, v), where (0, 0) is
// the top-left corner and (1, 1) the bottom-right. Coordinates outside the
// texture clamp to the edge.
func (b *Buf) Sample(u, v float32, filter webrender.TextureFilter) (r, g, bl, a byte) {
	if filter == webrender.FilterLinear {
		return b.sampleBilinear(float64(u), float64(v))
	}
	return b.sampleNearest(float64(u), float64(v))
}

func (b *Buf) sampleNearest(u, v float64) (r, g, bl, a byte) {
	x := clamp(int(math.Floor(u*float64(b.width))), b.width-1)
	y := clamp(int(math.Floor(v*float64(b.height))), b.height-1)
	return b.RGBA(x, y)
}

func (b *Buf) sampleBilinear(u, v float64) (r, g, bl, a byte) {
	fx := u*float64(b.width) - 0.5
	fy := v*float64(b.height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := clamp(x0+1, b.width-1)
	y1 := clamp(y0+1, b.height-1)
	x0 = clamp(x0, b.width-1)
	y0 = clamp(y0, b.height-1)

	r00, g00, b00, a00 := b.RGBA(x0, y0)
	r10, g10, b10, a10 := b.RGBA(x1, y0)
	r01, g01, b01, a01 := b.RGBA(x0, y1)
	r11, g11, b11, a11 := b.RGBA(x1, y1)

	return lerp2D(r00, r10, r01, r11, tx, ty),
		lerp2D(g00, g10, g01, g11, tx, ty),
		lerp2D(b00, b10, b01, b11, tx, ty),
		lerp2D(a00, a10, a01, a11, tx, ty)
}

func clamp(v, hi int) int {
	return min(max(v, 0), hi)
}

func lerp2D(v00, v10, v01, v11 byte, tx, ty float64) byte {
	top := float64(v00)*(1-tx) + float64(v10)*tx
	bottom := float64(v01)*(1-tx) + float64(v11)*tx
	return byte(math.Round(top*(1-ty) + bottom*ty))
}
