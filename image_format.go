// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ImageFormat is the pixel layout of texture data in the update log.
type ImageFormat uint8

const (
	// ImageFormatInvalid is the zero value and is rejected everywhere.
	ImageFormatInvalid ImageFormat = iota

	// ImageFormatA8 is a single 8-bit alpha channel.
	ImageFormatA8

	// ImageFormatRGB8 is 8-bit red, green and blue without alpha.
	ImageFormatRGB8

	// ImageFormatRGBA8 is 8-bit red, green, blue and alpha.
	ImageFormatRGBA8

	// ImageFormatRGBAF32 is 32-bit float red, green, blue and alpha.
	ImageFormatRGBAF32
)

// String returns the format name.
func (f ImageFormat) String() string {
	switch f {
	case ImageFormatInvalid:
		return "Invalid"
	case ImageFormatA8:
		return "A8"
	case ImageFormatRGB8:
		return "RGB8"
	case ImageFormatRGBA8:
		return "RGBA8"
	case ImageFormatRGBAF32:
		return "RGBAF32"
	default:
		return fmt.Sprintf("ImageFormat(%d)", uint8(f))
	}
}

// BytesPerPixel returns the size of one pixel, or 0 for invalid formats.
func (f ImageFormat) BytesPerPixel() int {
	switch f {
	case ImageFormatA8:
		return 1
	case ImageFormatRGB8:
		return 3
	case ImageFormatRGBA8:
		return 4
	case ImageFormatRGBAF32:
		return 16
	default:
		return 0
	}
}

// IsValid reports whether f names a supported format.
func (f ImageFormat) IsValid() bool {
	return f.BytesPerPixel() != 0
}

// GPUFormat returns the device texture format used to store f.
// RGB8 has no three-channel device format and is stored as RGBA8.
func (f ImageFormat) GPUFormat() gputypes.TextureFormat {
	switch f {
	case ImageFormatA8:
		return gputypes.TextureFormatR8Unorm
	case ImageFormatRGB8, ImageFormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm
	case ImageFormatRGBAF32:
		return gputypes.TextureFormatRGBA32Float
	default:
		return gputypes.TextureFormatUndefined
	}
}

// StorageBytesPerPixel returns the size of one pixel as stored on the
// device, which differs from BytesPerPixel for RGB8.
func (f ImageFormat) StorageBytesPerPixel() int {
	if f == ImageFormatRGB8 {
		return 4
	}
	return f.BytesPerPixel()
}

// TextureFilter selects sampling for a cache texture.
type TextureFilter uint8

const (
	// FilterNearest samples the nearest texel.
	FilterNearest TextureFilter = iota
	// FilterLinear interpolates between texels.
	FilterLinear
)

// String returns the filter name.
func (f TextureFilter) String() string {
	switch f {
	case FilterNearest:
		return "Nearest"
	case FilterLinear:
		return "Linear"
	default:
		return "Unknown"
	}
}

// GPUFilter returns the device filter mode for f.
func (f TextureFilter) GPUFilter() gputypes.FilterMode {
	if f == FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// RenderTargetKind tags a RenderTargetMode.
type RenderTargetKind uint8

const (
	// RenderTargetNone is a plain sampled texture.
	RenderTargetNone RenderTargetKind = iota
	// RenderTargetSingle is a single-layer render target.
	RenderTargetSingle
	// RenderTargetLayered is a render target with several layers.
	RenderTargetLayered
)

// RenderTargetMode says whether a texture is a plain resource, a
// single-layer render target or a multi-layer render target.
// The zero value is RenderTargetNone.
type RenderTargetMode struct {
	kind   RenderTargetKind
	layers int32
}

// NoRenderTarget returns the plain-resource mode.
func NoRenderTarget() RenderTargetMode { return RenderTargetMode{} }

// SingleRenderTarget returns the single-layer render-target mode.
func SingleRenderTarget() RenderTargetMode {
	return RenderTargetMode{kind: RenderTargetSingle, layers: 1}
}

// LayerRenderTarget returns the multi-layer render-target mode with the
// given layer count. It panics if layers is not positive.
func LayerRenderTarget(layers int32) RenderTargetMode {
	if layers <= 0 {
		panic(fmt.Sprintf("webrender: layer render target needs a positive layer count, got %d", layers))
	}
	return RenderTargetMode{kind: RenderTargetLayered, layers: layers}
}

// Kind returns the mode tag.
func (m RenderTargetMode) Kind() RenderTargetKind { return m.kind }

// Layers returns the number of texture layers: 1 unless the mode is layered.
func (m RenderTargetMode) Layers() int32 {
	if m.kind == RenderTargetLayered {
		return m.layers
	}
	return 1
}

// IsRenderTarget reports whether the texture can be rendered into.
func (m RenderTargetMode) IsRenderTarget() bool { return m.kind != RenderTargetNone }

// String returns a debug representation.
func (m RenderTargetMode) String() string {
	switch m.kind {
	case RenderTargetNone:
		return "None"
	case RenderTargetSingle:
		return "SimpleRenderTarget"
	case RenderTargetLayered:
		return fmt.Sprintf("LayerRenderTarget(%d)", m.layers)
	default:
		return "Unknown"
	}
}

// GPUUsage returns the device usage flags for a texture in this mode.
func (m RenderTargetMode) GPUUsage() gputypes.TextureUsage {
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if m.IsRenderTarget() {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	return usage
}
