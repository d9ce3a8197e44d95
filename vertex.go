// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// ColorF is a color with normalized float channels.
type ColorF struct {
	R, G, B, A float32
}

// Premultiplied returns c with the color channels multiplied by alpha.
func (c ColorF) Premultiplied() ColorF {
	return ColorF{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// GPU returns c as a device clear color.
func (c ColorF) GPU() gputypes.Color {
	return gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}

// PackedColor is a color quantized to 8-bit channels, as read by shaders.
type PackedColor struct {
	R, G, B, A uint8
}

// PackedColorSize is the encoded size of a PackedColor.
const PackedColorSize = 4

// PackColor quantizes c with round-half-up: floor(0.5 + v*255) per
// channel evaluated in float32, saturated to [0, 255]. Shaders assume this
// exact rounding.
func PackColor(c ColorF) PackedColor {
	return PackedColor{
		R: quantize(c.R),
		G: quantize(c.G),
		B: quantize(c.B),
		A: quantize(c.A),
	}
}

// Unpack returns the normalized color p encodes.
func (p PackedColor) Unpack() ColorF {
	return ColorF{
		R: float32(p.R) / ColorFloatToFixed,
		G: float32(p.G) / ColorFloatToFixed,
		B: float32(p.B) / ColorFloatToFixed,
		A: float32(p.A) / ColorFloatToFixed,
	}
}

// Append appends the four channel bytes in RGBA order.
func (p PackedColor) Append(b []byte) []byte {
	return append(b, p.R, p.G, p.B, p.A)
}

// quantize rounds in float32 at every step. The explicit conversions keep
// the multiply and add from being fused.
func quantize(v float32) uint8 {
	scaled := float32(v * ColorFloatToFixed)
	f := math.Floor(float64(float32(0.5 + scaled)))
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}

func appendF32(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}

// PackedVertexForQuad is the per-vertex record of a textured, gradient
// colored quad. Its encoded form is PackedVertexForQuadSize bytes,
// little-endian, with no padding.
type PackedVertexForQuad struct {
	X, Y, Width, Height float32

	ColorTL, ColorTR, ColorBR, ColorBL PackedColor

	UTL, VTL float32
	UTR, VTR float32
	UBR, VBR float32
	UBL, VBL float32

	MuTL, MvTL uint16
	MuTR, MvTR uint16
	MuBR, MvBR uint16
	MuBL, MvBL uint16

	MatrixIndex      uint8
	ClipInRectIndex  uint8
	ClipOutRectIndex uint8
	TileParamsIndex  uint8
}

// PackedVertexForQuadSize is the encoded size of a PackedVertexForQuad.
const PackedVertexForQuadSize = 84

// Append appends the encoded vertex to b.
func (v *PackedVertexForQuad) Append(b []byte) []byte {
	b = appendF32(b, v.X)
	b = appendF32(b, v.Y)
	b = appendF32(b, v.Width)
	b = appendF32(b, v.Height)
	b = v.ColorTL.Append(b)
	b = v.ColorTR.Append(b)
	b = v.ColorBR.Append(b)
	b = v.ColorBL.Append(b)
	for _, f := range [...]float32{v.UTL, v.VTL, v.UTR, v.VTR, v.UBR, v.VBR, v.UBL, v.VBL} {
		b = appendF32(b, f)
	}
	for _, u := range [...]uint16{v.MuTL, v.MvTL, v.MuTR, v.MvTR, v.MuBR, v.MvBR, v.MuBL, v.MvBL} {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return append(b, v.MatrixIndex, v.ClipInRectIndex, v.ClipOutRectIndex, v.TileParamsIndex)
}

// DecodePackedVertexForQuad decodes one vertex from the front of b.
// It reports false if b is too short.
func DecodePackedVertexForQuad(b []byte) (PackedVertexForQuad, bool) {
	var v PackedVertexForQuad
	if len(b) < PackedVertexForQuadSize {
		return v, false
	}
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	c := func(off int) PackedColor { return PackedColor{b[off], b[off+1], b[off+2], b[off+3]} }
	u := func(off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }

	v.X, v.Y, v.Width, v.Height = f(0), f(4), f(8), f(12)
	v.ColorTL, v.ColorTR, v.ColorBR, v.ColorBL = c(16), c(20), c(24), c(28)
	v.UTL, v.VTL, v.UTR, v.VTR = f(32), f(36), f(40), f(44)
	v.UBR, v.VBR, v.UBL, v.VBL = f(48), f(52), f(56), f(60)
	v.MuTL, v.MvTL, v.MuTR, v.MvTR = u(64), u(66), u(68), u(70)
	v.MuBR, v.MvBR, v.MuBL, v.MvBL = u(72), u(74), u(76), u(78)
	v.MatrixIndex, v.ClipInRectIndex, v.ClipOutRectIndex, v.TileParamsIndex = b[80], b[81], b[82], b[83]
	return v, true
}

// EncodeQuads encodes vs back to back.
func EncodeQuads(vs []PackedVertexForQuad) []byte {
	b := make([]byte, 0, len(vs)*PackedVertexForQuadSize)
	for i := range vs {
		b = vs[i].Append(b)
	}
	return b
}

// QuadVertexLayout returns the vertex buffer layout of PackedVertexForQuad.
func QuadVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: PackedVertexForQuadSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: AttrPositionRect.Location()},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: AttrColorRectTL.Location()},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 20, ShaderLocation: AttrColorRectTR.Location()},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 24, ShaderLocation: AttrColorRectBR.Location()},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 28, ShaderLocation: AttrColorRectBL.Location()},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: AttrColorTexCoordRectTop.Location()},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: AttrColorTexCoordRectBottom.Location()},
			{Format: gputypes.VertexFormatUint16x4, Offset: 64, ShaderLocation: AttrMaskTexCoordRectTop.Location()},
			{Format: gputypes.VertexFormatUint16x4, Offset: 72, ShaderLocation: AttrMaskTexCoordRectBottom.Location()},
			{Format: gputypes.VertexFormatUint8x4, Offset: 80, ShaderLocation: AttrMisc.Location()},
		},
	}
}

// PackedVertex is a bare 2D position.
type PackedVertex struct {
	Pos [2]float32
}

// PackedVertexSize is the encoded size of a PackedVertex.
const PackedVertexSize = 8

// Append appends the encoded vertex to b.
func (v PackedVertex) Append(b []byte) []byte {
	b = appendF32(b, v.Pos[0])
	return appendF32(b, v.Pos[1])
}

// PackedVertexLayout returns the vertex buffer layout of PackedVertex.
func PackedVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: PackedVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: AttrPosition.Location()},
		},
	}
}

// DebugFontVertex is a vertex of the debug text overlay.
type DebugFontVertex struct {
	X, Y  float32
	Color PackedColor
	U, V  float32
}

// DebugFontVertexSize is the encoded size of a DebugFontVertex.
const DebugFontVertexSize = 20

// NewDebugFontVertex returns a debug text vertex.
func NewDebugFontVertex(x, y, u, v float32, color PackedColor) DebugFontVertex {
	return DebugFontVertex{X: x, Y: y, Color: color, U: u, V: v}
}

// Append appends the encoded vertex to b.
func (v DebugFontVertex) Append(b []byte) []byte {
	b = appendF32(b, v.X)
	b = appendF32(b, v.Y)
	b = v.Color.Append(b)
	b = appendF32(b, v.U)
	return appendF32(b, v.V)
}

// DebugFontVertexLayout returns the vertex buffer layout of DebugFontVertex.
func DebugFontVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: DebugFontVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: AttrPosition.Location()},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 8, ShaderLocation: AttrColorRectTL.Location()},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: AttrColorTexCoordRectTop.Location()},
		},
	}
}

// DebugColorVertex is a vertex of the debug rectangle overlay.
type DebugColorVertex struct {
	X, Y  float32
	Color PackedColor
}

// DebugColorVertexSize is the encoded size of a DebugColorVertex.
const DebugColorVertexSize = 12

// NewDebugColorVertex returns a debug rectangle vertex.
func NewDebugColorVertex(x, y float32, color PackedColor) DebugColorVertex {
	return DebugColorVertex{X: x, Y: y, Color: color}
}

// Append appends the encoded vertex to b.
func (v DebugColorVertex) Append(b []byte) []byte {
	b = appendF32(b, v.X)
	b = appendF32(b, v.Y)
	return v.Color.Append(b)
}

// DebugColorVertexLayout returns the vertex buffer layout of DebugColorVertex.
func DebugColorVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: DebugColorVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: AttrPosition.Location()},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 8, ShaderLocation: AttrColorRectTL.Location()},
		},
	}
}

// Point2D is a point in layout space.
type Point2D struct {
	X, Y float32
}

// RectUV holds the texture coordinates of the four corners of a quad.
type RectUV struct {
	TopLeft     Point2D
	TopRight    Point2D
	BottomLeft  Point2D
	BottomRight Point2D
}

// NewRectUV returns the coordinates of the axis-aligned rectangle spanning
// from min to max.
func NewRectUV(minPt, maxPt Point2D) RectUV {
	return RectUV{
		TopLeft:     minPt,
		TopRight:    Point2D{X: maxPt.X, Y: minPt.Y},
		BottomLeft:  Point2D{X: minPt.X, Y: maxPt.Y},
		BottomRight: maxPt,
	}
}
