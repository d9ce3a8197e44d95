// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestPackColorRounding(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{0.0, 0},
		{1.0, 255},
		{0.5, 128},
		{0.2, 51},
		{1.0 / 255, 1},
		{0.49 / 255, 0},
		{-0.5, 0},
		{2.0, 255},
		{float32(math.NaN()), 0},
		// 0.5 + c*255 is exactly 1 in float32 and just below it in float64.
		{math.Float32frombits(0x3b008080), 1},
	}
	for _, tt := range tests {
		got := PackColor(ColorF{R: tt.in, G: tt.in, B: tt.in, A: tt.in})
		if got.R != tt.want || got.G != tt.want || got.B != tt.want || got.A != tt.want {
			t.Errorf("PackColor(%v) = %+v, want all %d", tt.in, got, tt.want)
		}
	}
}

func TestPackColorMatchesFormula(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		c := float32(i) / 1000
		want := uint8(math.Floor(float64(float32(0.5 + float32(c*255)))))
		if got := PackColor(ColorF{R: c}).R; got != want {
			t.Fatalf("PackColor(%v).R = %d, want %d", c, got, want)
		}
	}
}

func TestPackColorIdempotent(t *testing.T) {
	for v := 0; v < 256; v++ {
		p := PackedColor{R: uint8(v), G: uint8(v), B: uint8(v), A: uint8(v)}
		if got := PackColor(p.Unpack()); got != p {
			t.Fatalf("PackColor(Unpack(%v)) = %v", p, got)
		}
	}
}

func TestPackedVertexForQuadEncoding(t *testing.T) {
	v := PackedVertexForQuad{
		X: 1, Y: 2, Width: 3, Height: 4,
		ColorTL: PackedColor{1, 2, 3, 4},
		ColorBL: PackedColor{13, 14, 15, 16},
		UTL:     0.25, VBL: 0.75,
		MuTL: 0x0102, MvBL: 0xBEEF,
		MatrixIndex: 7, TileParamsIndex: 9,
	}
	b := v.Append(nil)
	if len(b) != PackedVertexForQuadSize {
		t.Fatalf("len(Append()) = %d, want %d", len(b), PackedVertexForQuadSize)
	}

	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[4:])); got != 2 {
		t.Errorf("y at offset 4 = %v, want 2", got)
	}
	if b[16] != 1 || b[19] != 4 {
		t.Errorf("ColorTL bytes = %v, want [1 2 3 4]", b[16:20])
	}
	if b[28] != 13 {
		t.Errorf("ColorBL.R at 28 = %d, want 13", b[28])
	}
	if got := binary.LittleEndian.Uint16(b[64:]); got != 0x0102 {
		t.Errorf("MuTL at 64 = %#x, want 0x102", got)
	}
	if b[80] != 7 || b[83] != 9 {
		t.Errorf("index bytes = %v, want [7 _ _ 9]", b[80:84])
	}

	got, ok := DecodePackedVertexForQuad(b)
	if !ok || got != v {
		t.Errorf("DecodePackedVertexForQuad() = %+v, %v, want %+v", got, ok, v)
	}
	if _, ok := DecodePackedVertexForQuad(b[:PackedVertexForQuadSize-1]); ok {
		t.Error("DecodePackedVertexForQuad(short) ok = true")
	}
}

func TestEncodeQuads(t *testing.T) {
	vs := make([]PackedVertexForQuad, 3)
	vs[2].X = 5
	b := EncodeQuads(vs)
	if len(b) != 3*PackedVertexForQuadSize {
		t.Fatalf("len = %d, want %d", len(b), 3*PackedVertexForQuadSize)
	}
	v, _ := DecodePackedVertexForQuad(b[2*PackedVertexForQuadSize:])
	if v.X != 5 {
		t.Errorf("third vertex X = %v, want 5", v.X)
	}
}

func TestSmallVertexSizes(t *testing.T) {
	c := PackedColor{1, 2, 3, 4}
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"PackedVertex", len(PackedVertex{Pos: [2]float32{1, 2}}.Append(nil)), PackedVertexSize},
		{"DebugFontVertex", len(NewDebugFontVertex(1, 2, 3, 4, c).Append(nil)), DebugFontVertexSize},
		{"DebugColorVertex", len(NewDebugColorVertex(1, 2, c).Append(nil)), DebugColorVertexSize},
		{"PackedColor", len(c.Append(nil)), PackedColorSize},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s encoded size = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func formatSize(f gputypes.VertexFormat) uint64 {
	switch f {
	case gputypes.VertexFormatFloat32x4:
		return 16
	case gputypes.VertexFormatFloat32x2, gputypes.VertexFormatUint16x4:
		return 8
	case gputypes.VertexFormatUnorm8x4, gputypes.VertexFormatUint8x4:
		return 4
	}
	return 0
}

func TestVertexLayoutsCoverStride(t *testing.T) {
	layouts := map[string]gputypes.VertexBufferLayout{
		"quad":        QuadVertexLayout(),
		"packed":      PackedVertexLayout(),
		"debug font":  DebugFontVertexLayout(),
		"debug color": DebugColorVertexLayout(),
	}
	for name, l := range layouts {
		var end uint64
		seen := map[uint32]bool{}
		for _, a := range l.Attributes {
			if a.Offset != end {
				t.Errorf("%s: attribute at %d, want %d (gap or overlap)", name, a.Offset, end)
			}
			end = a.Offset + formatSize(a.Format)
			if seen[a.ShaderLocation] {
				t.Errorf("%s: location %d used twice", name, a.ShaderLocation)
			}
			seen[a.ShaderLocation] = true
		}
		if end != l.ArrayStride {
			t.Errorf("%s: attributes end at %d, stride %d", name, end, l.ArrayStride)
		}
	}
}

func TestNewRectUV(t *testing.T) {
	uv := NewRectUV(Point2D{0, 0.5}, Point2D{1, 1})
	if uv.TopRight != (Point2D{1, 0.5}) || uv.BottomLeft != (Point2D{0, 1}) {
		t.Errorf("NewRectUV() = %+v", uv)
	}
}
