// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import "fmt"

// CacheTextureID names a texture allocation owned by the texture cache.
// The cache allocates ids; the consumer maps each one to a live texture.
// An id is not reused while an update referencing it is outstanding.
type CacheTextureID uint32

// String returns a debug representation of the id.
func (id CacheTextureID) String() string {
	return fmt.Sprintf("CacheTexture(%d)", uint32(id))
}

// ExternalImageID names an image whose pixels are owned by the embedder.
type ExternalImageID uint64

// SourceTextureKind tags the variant held by a SourceTexture.
type SourceTextureKind uint8

const (
	// SourceInvalid marks an unused slot. It never takes part in a draw.
	SourceInvalid SourceTextureKind = iota

	// SourceTextureCache refers to a texture-cache allocation.
	SourceTextureCache

	// SourceWebGL refers to the color attachment of a shared context
	// (a surface generated at runtime by an embedded command stream).
	SourceWebGL

	// SourceExternal refers to an externally provided surface.
	SourceExternal
)

// String returns the kind name.
func (k SourceTextureKind) String() string {
	switch k {
	case SourceInvalid:
		return "Invalid"
	case SourceTextureCache:
		return "TextureCache"
	case SourceWebGL:
		return "WebGL"
	case SourceExternal:
		return "External"
	default:
		return "Unknown"
	}
}

// SourceTexture is the logical texture a draw call wants. It is resolved to
// a concrete GPU texture only on the consumer.
//
// SourceTexture is a comparable value and may be used as a map key. The
// zero value is the Invalid variant.
type SourceTexture struct {
	kind SourceTextureKind
	id   uint64
}

// InvalidTexture returns the Invalid variant.
func InvalidTexture() SourceTexture { return SourceTexture{} }

// TextureCacheSource returns a SourceTexture naming a cache allocation.
func TextureCacheSource(id CacheTextureID) SourceTexture {
	return SourceTexture{kind: SourceTextureCache, id: uint64(id)}
}

// WebGLSource returns a SourceTexture naming the color attachment of a
// shared context by its native texture id.
func WebGLSource(textureID uint32) SourceTexture {
	return SourceTexture{kind: SourceWebGL, id: uint64(textureID)}
}

// ExternalSource returns a SourceTexture naming an external image.
func ExternalSource(id ExternalImageID) SourceTexture {
	return SourceTexture{kind: SourceExternal, id: uint64(id)}
}

// Kind returns the variant tag.
func (s SourceTexture) Kind() SourceTextureKind { return s.kind }

// IsValid reports whether s is anything other than Invalid.
func (s SourceTexture) IsValid() bool { return s.kind != SourceInvalid }

// CacheID returns the cache id for the TextureCache variant.
func (s SourceTexture) CacheID() (CacheTextureID, bool) {
	if s.kind != SourceTextureCache {
		return 0, false
	}
	return CacheTextureID(s.id), true
}

// WebGLID returns the native texture id for the WebGL variant.
func (s SourceTexture) WebGLID() (uint32, bool) {
	if s.kind != SourceWebGL {
		return 0, false
	}
	return uint32(s.id), true
}

// ExternalID returns the image id for the External variant.
func (s SourceTexture) ExternalID() (ExternalImageID, bool) {
	if s.kind != SourceExternal {
		return 0, false
	}
	return ExternalImageID(s.id), true
}

// String returns a debug representation.
func (s SourceTexture) String() string {
	if s.kind == SourceInvalid {
		return "Invalid"
	}
	return fmt.Sprintf("%s(%d)", s.kind, s.id)
}

// PipelineID identifies a pipeline (a document or an iframe's content) by
// its namespace and index.
type PipelineID struct {
	Namespace uint32
	Index     uint32
}

// String returns a debug representation.
func (p PipelineID) String() string {
	return fmt.Sprintf("Pipeline(%d,%d)", p.Namespace, p.Index)
}

// Epoch is a per-pipeline version counter. A pipeline's epoch only grows.
type Epoch uint32

// ScrollLayerID identifies a scrollable layer within a pipeline.
type ScrollLayerID struct {
	Pipeline PipelineID
	Index    uint32
}

// StackingContextIndex indexes a stacking context within a frame.
type StackingContextIndex uint32

// AxisDirection is the axis a directional filter runs along.
type AxisDirection uint32

const (
	// AxisHorizontal runs along x.
	AxisHorizontal AxisDirection = iota
	// AxisVertical runs along y.
	AxisVertical
)

// String returns the axis name.
func (d AxisDirection) String() string {
	switch d {
	case AxisHorizontal:
		return "Horizontal"
	case AxisVertical:
		return "Vertical"
	default:
		return "Unknown"
	}
}
