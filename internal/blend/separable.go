// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package blend

import "math"

// separable lifts a per-channel blend function B(s, d), on unpremultiplied
// channels, into a Func.
func separable(b func(s, d byte) byte) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		br := b(unpremultiply(sr, sa), unpremultiply(dr, da))
		bg := b(unpremultiply(sg, sa), unpremultiply(dg, da))
		bb := b(unpremultiply(sb, sa), unpremultiply(db, da))
		return composite(sr, sg, sb, sa, dr, dg, db, da, br, bg, bb)
	}
}

// composite applies (1 - Sa) * D + (1 - Da) * S + Sa * Da * B.
func composite(sr, sg, sb, sa, dr, dg, db, da, br, bg, bb byte) (byte, byte, byte, byte) {
	invSa, invDa := 255-sa, 255-da
	saDa := mulDiv255(sa, da)
	ch := func(s, d, b byte) byte {
		return addClamp(addClamp(mulDiv255(d, invSa), mulDiv255(s, invDa)), mulDiv255(saDa, b))
	}
	return ch(sr, dr, br), ch(sg, dg, bg), ch(sb, db, bb), addClamp(sa, mulDiv255(da, invSa))
}

// multiply: B = Cs * Cb.
func multiply(s, d byte) byte { return mulDiv255(s, d) }

// screen: B = 1 - (1 - Cs) * (1 - Cb).
func screen(s, d byte) byte { return 255 - mulDiv255(255-s, 255-d) }

// hardLight: Multiply(Cb, 2Cs) below half, Screen(Cb, 2Cs - 1) above.
func hardLight(s, d byte) byte {
	if s <= 127 {
		return byte(div255(2 * uint32(s) * uint32(d)))
	}
	return 255 - byte(div255(2*uint32(255-s)*uint32(255-d)))
}

// overlay is hardLight with the layers swapped.
func overlay(s, d byte) byte { return hardLight(d, s) }

// colorDodge: B = min(1, Cb / (1 - Cs)).
func colorDodge(s, d byte) byte {
	if d == 0 {
		return 0
	}
	if s == 255 {
		return 255
	}
	v := uint32(d) * 255 / uint32(255-s)
	return byte(min(v, 255))
}

// colorBurn: B = 1 - min(1, (1 - Cb) / Cs).
func colorBurn(s, d byte) byte {
	if d == 255 {
		return 255
	}
	if s == 0 {
		return 0
	}
	v := uint32(255-d) * 255 / uint32(s)
	return 255 - byte(min(v, 255))
}

// softLight follows the W3C piecewise definition.
func softLight(s, d byte) byte {
	sf := float64(s) / 255
	df := float64(d) / 255
	var r float64
	if sf <= 0.5 {
		r = df - (1-2*sf)*df*(1-df)
	} else {
		var dx float64
		if df <= 0.25 {
			dx = ((16*df-12)*df + 4) * df
		} else {
			dx = math.Sqrt(df)
		}
		r = df + (2*sf-1)*(dx-df)
	}
	return byte(math.Round(min(max(r, 0), 1) * 255))
}

// difference: B = |Cs - Cb|.
func difference(s, d byte) byte {
	if s > d {
		return s - d
	}
	return d - s
}

// exclusion: B = Cs + Cb - 2 * Cs * Cb.
func exclusion(s, d byte) byte {
	return byte(uint32(s) + uint32(d) - 2*uint32(mulDiv255(s, d)))
}
