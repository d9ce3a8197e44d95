// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Kind is the closed set of context backends.
type Kind uint8

const (
	// Native is the hardware-accelerated backend.
	Native Kind = iota + 1
	// Software is the CPU rasterized offscreen backend.
	Software
)

// String returns the backend kind name.
func (k Kind) String() string {
	switch k {
	case Native:
		return "Native"
	case Software:
		return "Software"
	default:
		return "Unknown"
	}
}

// Size is a drawable size in device pixels.
type Size struct {
	W, H int32
}

// String returns WxH.
func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.W > 0 && s.H > 0 }

// Rect returns the drawable bounds anchored at the origin.
func (s Size) Rect() image.Rectangle { return image.Rect(0, 0, int(s.W), int(s.H)) }

// Attributes are the capabilities requested when creating a context.
type Attributes struct {
	Alpha                 bool
	Depth                 bool
	Stencil               bool
	Antialias             bool
	PremultipliedAlpha    bool
	PreserveDrawingBuffer bool
}

// DefaultAttributes returns the attributes of a plain offscreen canvas.
func DefaultAttributes() Attributes {
	return Attributes{
		Alpha:              true,
		Depth:              true,
		Antialias:          true,
		PremultipliedAlpha: true,
	}
}

// Limits are the device capabilities negotiated at creation.
type Limits struct {
	// MaxTextureSize is the largest width or height of a 2D texture.
	MaxTextureSize int32
	// MaxTextureLayers is the largest layer count of a texture array.
	MaxTextureLayers int32
	// MaxVertexAttributes is the number of vertex inputs a shader may read.
	MaxVertexAttributes int32
	// MaxBufferSize is the largest buffer allocation in bytes.
	MaxBufferSize uint64
	// Extensions lists the optional features the device exposes.
	Extensions []string
}

// LimitsFrom converts device limits and features.
func LimitsFrom(l gputypes.Limits, f gputypes.Features) Limits {
	var ext []string
	for bit := gputypes.Feature(1); bit != 0; bit <<= 1 {
		if f.Contains(bit) {
			ext = append(ext, bit.String())
		}
	}
	return Limits{
		MaxTextureSize:      clampI32(l.MaxTextureDimension2D),
		MaxTextureLayers:    clampI32(l.MaxTextureArrayLayers),
		MaxVertexAttributes: clampI32(l.MaxVertexAttributes),
		MaxBufferSize:       l.MaxBufferSize,
		Extensions:          ext,
	}
}

// HasExtension reports whether name is among the extensions.
func (l Limits) HasExtension(name string) bool {
	return slices.Contains(l.Extensions, name)
}

// Fits reports whether a w x h texture with the given layer count is
// within the limits.
func (l Limits) Fits(w, h, layers int32) bool {
	return w > 0 && h > 0 && w <= l.MaxTextureSize && h <= l.MaxTextureSize &&
		layers > 0 && layers <= l.MaxTextureLayers
}

func clampI32(v uint32) int32 {
	if v > 1<<31-1 {
		return 1<<31 - 1
	}
	return int32(v)
}

// Info describes a live context.
type Info struct {
	// Size is the real drawable size.
	Size Size
	// TextureID is the native id of the drawable's color attachment.
	TextureID uint32
	// Limits are the device capabilities.
	Limits Limits
	// Adapter describes the device the context runs on.
	Adapter gpucontext.AdapterInfo
}
