// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import "fmt"

// Au is a length in app units. One CSS pixel is AuPerPx app units.
type Au int32

// AuPerPx is the number of app units in one pixel.
const AuPerPx = 60

// AuFromPx converts pixels to app units, rounding to nearest.
func AuFromPx(px float32) Au {
	if px < 0 {
		return Au(px*AuPerPx - 0.5)
	}
	return Au(px*AuPerPx + 0.5)
}

// Px returns a in pixels.
func (a Au) Px() float32 { return float32(a) / AuPerPx }

// FilterKind tags a LowLevelFilterOp.
type FilterKind uint8

const (
	FilterBlur FilterKind = iota
	FilterBrightness
	FilterContrast
	FilterGrayscale
	FilterHueRotate
	FilterInvert
	FilterOpacity
	FilterSaturate
	FilterSepia
)

var filterNames = [...]string{
	FilterBlur:       "Blur",
	FilterBrightness: "Brightness",
	FilterContrast:   "Contrast",
	FilterGrayscale:  "Grayscale",
	FilterHueRotate:  "HueRotate",
	FilterInvert:     "Invert",
	FilterOpacity:    "Opacity",
	FilterSaturate:   "Saturate",
	FilterSepia:      "Sepia",
}

// String returns the filter name.
func (k FilterKind) String() string {
	if int(k) < len(filterNames) {
		return filterNames[k]
	}
	return "Unknown"
}

// LowLevelFilterOp is one filter step with its amount. It is comparable
// and usable as a map key.
type LowLevelFilterOp struct {
	Kind FilterKind

	// Amount is the filter amount in app units. Blur uses it as the radius.
	Amount Au

	// Axis is the blur direction; ignored by other kinds.
	Axis AxisDirection

	// Angle is the HueRotate angle in AngleFloatToFixed units.
	Angle int32
}

// Blur returns a one-axis blur.
func Blur(radius Au, axis AxisDirection) LowLevelFilterOp {
	return LowLevelFilterOp{Kind: FilterBlur, Amount: radius, Axis: axis}
}

// HueRotate returns a hue rotation by a fraction of a full turn in
// AngleFloatToFixed units.
func HueRotate(angle int32) LowLevelFilterOp {
	return LowLevelFilterOp{Kind: FilterHueRotate, Angle: angle}
}

// AmountFilter returns a filter of kind k with the given amount.
// It panics for Blur and HueRotate, which take other parameters.
func AmountFilter(k FilterKind, amount Au) LowLevelFilterOp {
	if k == FilterBlur || k == FilterHueRotate {
		panic(fmt.Sprintf("webrender: %s is not an amount filter", k))
	}
	return LowLevelFilterOp{Kind: k, Amount: amount}
}

// String returns a debug representation.
func (op LowLevelFilterOp) String() string {
	switch op.Kind {
	case FilterBlur:
		return fmt.Sprintf("Blur(%d, %s)", op.Amount, op.Axis)
	case FilterHueRotate:
		return fmt.Sprintf("HueRotate(%d)", op.Angle)
	default:
		return fmt.Sprintf("%s(%d)", op.Kind, op.Amount)
	}
}

// MixBlendMode is a separable or non-separable blend mode.
type MixBlendMode uint8

const (
	BlendNormal MixBlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
)

// CompositionOp is applied when compositing a stacking context: either a
// mix-blend mode or a filter step.
type CompositionOp struct {
	blend    MixBlendMode
	filter   LowLevelFilterOp
	isFilter bool
}

// MixBlend returns a blend composition.
func MixBlend(mode MixBlendMode) CompositionOp {
	return CompositionOp{blend: mode}
}

// FilterComposition returns a filter composition.
func FilterComposition(op LowLevelFilterOp) CompositionOp {
	return CompositionOp{filter: op, isFilter: true}
}

// MixBlendMode returns the blend mode of a MixBlend composition.
func (c CompositionOp) MixBlendMode() (MixBlendMode, bool) {
	return c.blend, !c.isFilter
}

// Filter returns the filter of a filter composition.
func (c CompositionOp) Filter() (LowLevelFilterOp, bool) {
	return c.filter, c.isFilter
}

// TargetRequired reports whether the composition needs an intermediate
// render target: every blend except Normal and every filter except an
// opacity, which is folded into vertex alpha.
func (c CompositionOp) TargetRequired() bool {
	if c.isFilter {
		return c.filter.Kind != FilterOpacity
	}
	return c.blend != BlendNormal
}
