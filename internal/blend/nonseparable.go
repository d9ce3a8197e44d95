// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package blend

import "math"

type rgb struct{ r, g, b float32 }

// nonSeparable lifts a blend function on whole unpremultiplied colors into
// a Func.
func nonSeparable(b func(s, d rgb) rgb) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		s := rgb{float32(sr) / float32(sa), float32(sg) / float32(sa), float32(sb) / float32(sa)}
		d := rgb{float32(dr) / float32(da), float32(dg) / float32(da), float32(db) / float32(da)}
		c := b(s, d)
		return composite(sr, sg, sb, sa, dr, dg, db, da, toByte(c.r), toByte(c.g), toByte(c.b))
	}
}

func toByte(v float32) byte {
	return byte(math.Round(float64(min(max(v, 0), 1)) * 255))
}

// lum is the BT.601 luma used by the W3C non-separable modes.
func lum(c rgb) float32 { return 0.30*c.r + 0.59*c.g + 0.11*c.b }

func sat(c rgb) float32 { return max(c.r, c.g, c.b) - min(c.r, c.g, c.b) }

// clipColor pulls out-of-range components toward the luma.
func clipColor(c rgb) rgb {
	l := lum(c)
	n := min(c.r, c.g, c.b)
	x := max(c.r, c.g, c.b)
	if n < 0 {
		c = rgb{l + (c.r-l)*l/(l-n), l + (c.g-l)*l/(l-n), l + (c.b-l)*l/(l-n)}
	}
	if x > 1 {
		c = rgb{l + (c.r-l)*(1-l)/(x-l), l + (c.g-l)*(1-l)/(x-l), l + (c.b-l)*(1-l)/(x-l)}
	}
	return c
}

func setLum(c rgb, l float32) rgb {
	d := l - lum(c)
	return clipColor(rgb{c.r + d, c.g + d, c.b + d})
}

func setSat(c rgb, s float32) rgb {
	ch := [3]*float32{&c.r, &c.g, &c.b}
	// order ch by value: ch[0] min, ch[2] max
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}
	if *ch[1] > *ch[2] {
		ch[1], ch[2] = ch[2], ch[1]
	}
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}
	lo, mid, hi := *ch[0], *ch[1], *ch[2]
	if hi > lo {
		*ch[1] = (mid - lo) * s / (hi - lo)
		*ch[2] = s
	} else {
		*ch[1], *ch[2] = 0, 0
	}
	*ch[0] = 0
	return c
}

func hue(s, d rgb) rgb        { return setLum(setSat(s, sat(d)), lum(d)) }
func saturation(s, d rgb) rgb { return setLum(setSat(d, sat(s)), lum(d)) }
func color(s, d rgb) rgb      { return setLum(s, lum(d)) }
func luminosity(s, d rgb) rgb { return setLum(d, lum(s)) }
