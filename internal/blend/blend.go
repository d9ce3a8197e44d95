// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package blend composites premultiplied 8-bit RGBA pixels with the mix
// blend modes of a stacking context.
//
// All values are premultiplied alpha in the range 0-255. Every mode uses
// the W3C compositing formula
//
//	Result = (1 - Sa) * D + (1 - Da) * S + Sa * Da * B(Cs, Cb)
//
// where B is the mode's blend function on unpremultiplied colors. For
// BlendNormal this reduces to source-over.
//
// References:
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import "github.com/crbrz/webrender"

// Func blends source (sr, sg, sb, sa) over destination (dr, dg, db, da).
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// For returns the blend function of mode. Unknown modes get source-over.
func For(mode webrender.MixBlendMode) Func {
	switch mode {
	case webrender.BlendMultiply:
		return separable(multiply)
	case webrender.BlendScreen:
		return separable(screen)
	case webrender.BlendOverlay:
		return separable(overlay)
	case webrender.BlendDarken:
		return separable(minByte)
	case webrender.BlendLighten:
		return separable(maxByte)
	case webrender.BlendColorDodge:
		return separable(colorDodge)
	case webrender.BlendColorBurn:
		return separable(colorBurn)
	case webrender.BlendHardLight:
		return separable(hardLight)
	case webrender.BlendSoftLight:
		return separable(softLight)
	case webrender.BlendDifference:
		return separable(difference)
	case webrender.BlendExclusion:
		return separable(exclusion)
	case webrender.BlendHue:
		return nonSeparable(hue)
	case webrender.BlendSaturation:
		return nonSeparable(saturation)
	case webrender.BlendColor:
		return nonSeparable(color)
	case webrender.BlendLuminosity:
		return nonSeparable(luminosity)
	default:
		return SourceOver
	}
}

// SourceOver composites S + D * (1 - Sa).
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	inv := 255 - sa
	return addClamp(sr, mulDiv255(dr, inv)),
		addClamp(sg, mulDiv255(dg, inv)),
		addClamp(sb, mulDiv255(db, inv)),
		addClamp(sa, mulDiv255(da, inv))
}

// Span blends one constant source color into each pixel of dst, which
// holds tightly packed RGBA.
func Span(dst []byte, sr, sg, sb, sa byte, f Func) {
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = f(sr, sg, sb, sa, dst[i], dst[i+1], dst[i+2], dst[i+3])
	}
}
