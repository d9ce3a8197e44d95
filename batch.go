// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import "fmt"

const (
	// ColorFloatToFixed scales a normalized color channel to 8 bits.
	ColorFloatToFixed = 255.0

	// AngleFloatToFixed scales a normalized angle to the fixed-point units
	// used by HueRotate.
	AngleFloatToFixed = 65535.0

	// OrthoNearPlane is the near plane of the orthographic projection.
	OrthoNearPlane = -1000000.0

	// OrthoFarPlane is the far plane of the orthographic projection.
	OrthoFarPlane = 1000000.0
)

// TextureSampler names a fixed shader texture binding point.
// The numbering is shared with shader code.
type TextureSampler uint32

const (
	SamplerColor0 TextureSampler = iota
	SamplerColor1
	SamplerColor2
	SamplerMask
	SamplerCache
	SamplerData16
	SamplerData32
	SamplerData64
	SamplerData128
	SamplerLayers
	SamplerRenderTasks
	SamplerGeometry
	SamplerResourceRects

	samplerCount
)

// ColorSamplerCount is the number of color sampler slots wired into shaders.
const ColorSamplerCount = 3

// DefaultTexture is the slot used when a texture must be bound temporarily.
const DefaultTexture = SamplerColor0

var samplerNames = [samplerCount]string{
	SamplerColor0:        "Color0",
	SamplerColor1:        "Color1",
	SamplerColor2:        "Color2",
	SamplerMask:          "Mask",
	SamplerCache:         "Cache",
	SamplerData16:        "Data16",
	SamplerData32:        "Data32",
	SamplerData64:        "Data64",
	SamplerData128:       "Data128",
	SamplerLayers:        "Layers",
	SamplerRenderTasks:   "RenderTasks",
	SamplerGeometry:      "Geometry",
	SamplerResourceRects: "ResourceRects",
}

// String returns the sampler name.
func (s TextureSampler) String() string {
	if s < samplerCount {
		return samplerNames[s]
	}
	return fmt.Sprintf("TextureSampler(%d)", uint32(s))
}

// Unit returns the texture unit the sampler is bound to.
func (s TextureSampler) Unit() uint32 { return uint32(s) }

// ColorSampler returns the color sampler slot for n in {0, 1, 2}.
// Any other n is a caller bug and panics.
func ColorSampler(n int) TextureSampler {
	switch n {
	case 0:
		return SamplerColor0
	case 1:
		return SamplerColor1
	case 2:
		return SamplerColor2
	default:
		panic(fmt.Sprintf("webrender: there are only %d color samplers, got index %d", ColorSamplerCount, n))
	}
}

// Samplers returns every sampler in binding order.
func Samplers() []TextureSampler {
	out := make([]TextureSampler, samplerCount)
	for i := range out {
		out[i] = TextureSampler(i)
	}
	return out
}

// BatchTextures are the source textures bound to the color sampler slots
// of one draw call. Unused slots hold the Invalid source.
type BatchTextures struct {
	Colors [ColorSamplerCount]SourceTexture
}

// NoTexture returns BatchTextures with every slot Invalid.
func NoTexture() BatchTextures {
	return BatchTextures{}
}

// ColorTextures returns BatchTextures with srcs in the leading slots.
// It panics if more than three sources are given.
func ColorTextures(srcs ...SourceTexture) BatchTextures {
	var bt BatchTextures
	for i, s := range srcs {
		bt.Colors[ColorSampler(i)] = s
	}
	return bt
}

// Primary returns the texture bound to Color0.
func (bt BatchTextures) Primary() SourceTexture { return bt.Colors[0] }

// Used returns the number of leading non-Invalid slots.
func (bt BatchTextures) Used() int {
	n := 0
	for _, s := range bt.Colors {
		if !s.IsValid() {
			break
		}
		n++
	}
	return n
}

// VertexAttribute names a fixed vertex-buffer field. The value is the
// shader location of the field.
type VertexAttribute uint32

const (
	AttrPosition VertexAttribute = iota
	AttrPositionRect
	AttrColorRectTL
	AttrColorRectTR
	AttrColorRectBR
	AttrColorRectBL
	AttrColorTexCoordRectTop
	AttrMaskTexCoordRectTop
	AttrColorTexCoordRectBottom
	AttrMaskTexCoordRectBottom
	AttrBorderRadii
	AttrBorderPosition
	AttrBlurRadius
	AttrDestTextureSize
	AttrSourceTextureSize
	AttrMisc

	attrCount
)

var attrNames = [attrCount]string{
	AttrPosition:                "Position",
	AttrPositionRect:            "PositionRect",
	AttrColorRectTL:             "ColorRectTL",
	AttrColorRectTR:             "ColorRectTR",
	AttrColorRectBR:             "ColorRectBR",
	AttrColorRectBL:             "ColorRectBL",
	AttrColorTexCoordRectTop:    "ColorTexCoordRectTop",
	AttrMaskTexCoordRectTop:     "MaskTexCoordRectTop",
	AttrColorTexCoordRectBottom: "ColorTexCoordRectBottom",
	AttrMaskTexCoordRectBottom:  "MaskTexCoordRectBottom",
	AttrBorderRadii:             "BorderRadii",
	AttrBorderPosition:          "BorderPosition",
	AttrBlurRadius:              "BlurRadius",
	AttrDestTextureSize:         "DestTextureSize",
	AttrSourceTextureSize:       "SourceTextureSize",
	AttrMisc:                    "Misc",
}

// String returns the attribute name.
func (a VertexAttribute) String() string {
	if a < attrCount {
		return attrNames[a]
	}
	return fmt.Sprintf("VertexAttribute(%d)", uint32(a))
}

// Location returns the shader location of the attribute.
func (a VertexAttribute) Location() uint32 { return uint32(a) }
