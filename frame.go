// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// DrawBatch is one draw call: the textures bound to the color samplers,
// the blend mode and the quads drawn with them. Each PackedVertexForQuad
// record describes one quad.
//
// A batch whose color slots are all Invalid samples nothing and draws the
// quads' vertex colors. Otherwise the primary slot must be valid: a batch
// that binds a later slot while leaving Color0 Invalid is malformed and
// the renderer skips it.
type DrawBatch struct {
	Textures BatchTextures
	Blend    MixBlendMode
	Quads    []PackedVertexForQuad
}

// IsTextured reports whether the batch samples a source texture.
func (b *DrawBatch) IsTextured() bool { return b.Textures.Primary().IsValid() }

// Frame is a fully built frame ready for the consumer to draw.
type Frame struct {
	// Width and Height are the device size the frame was built for.
	Width  int32
	Height int32

	// Background is the clear color.
	Background ColorF

	// Batches are drawn in order.
	Batches []DrawBatch
}

// RendererFrame is the immutable snapshot the producer hands to the
// consumer once per completed frame. It records the epoch last rendered
// for each pipeline, the scroll layers bouncing back from an overscroll,
// and the built frame (absent when nothing changed).
//
// A RendererFrame is read-only after construction and safe for concurrent
// readers.
type RendererFrame struct {
	epochs   map[PipelineID]Epoch
	bouncing mapset.Set[ScrollLayerID]
	frame    *Frame
}

// NewRendererFrame builds a snapshot. The epoch map and the layer slice are
// copied; frame is retained and must not be modified afterwards.
func NewRendererFrame(epochs map[PipelineID]Epoch, bouncing []ScrollLayerID, frame *Frame) *RendererFrame {
	return &RendererFrame{
		epochs:   maps.Clone(epochs),
		bouncing: mapset.NewSet(bouncing...),
		frame:    frame,
	}
}

// Epoch returns the epoch recorded for pipeline.
func (f *RendererFrame) Epoch(pipeline PipelineID) (Epoch, bool) {
	e, ok := f.epochs[pipeline]
	return e, ok
}

// Epochs returns a copy of the pipeline epoch map.
func (f *RendererFrame) Epochs() map[PipelineID]Epoch {
	return maps.Clone(f.epochs)
}

// IsBouncing reports whether layer is in an overscroll bounce animation.
func (f *RendererFrame) IsBouncing(layer ScrollLayerID) bool {
	return f.bouncing.Contains(layer)
}

// BouncingLayers returns the bouncing layers in an unspecified order.
func (f *RendererFrame) BouncingLayers() []ScrollLayerID {
	return f.bouncing.ToSlice()
}

// IsAnimating reports whether any layer is still bouncing, which means the
// producer will send another frame without new input.
func (f *RendererFrame) IsAnimating() bool {
	return f.bouncing.Cardinality() > 0
}

// Frame returns the built frame, or nil when nothing changed.
func (f *RendererFrame) Frame() *Frame { return f.frame }

// Pipelines returns the pipelines with a recorded epoch, sorted.
func (f *RendererFrame) Pipelines() []PipelineID {
	ids := slices.Collect(maps.Keys(f.epochs))
	slices.SortFunc(ids, func(a, b PipelineID) int {
		if c := cmp.Compare(a.Namespace, b.Namespace); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ids
}

// CheckEpochsAfter verifies that no pipeline's epoch is older than in prev,
// the frame delivered before f on the same channel. Pipelines missing from
// either frame are not compared.
func (f *RendererFrame) CheckEpochsAfter(prev *RendererFrame) error {
	if prev == nil {
		return nil
	}
	for _, p := range prev.Pipelines() {
		old := prev.epochs[p]
		if cur, ok := f.epochs[p]; ok && cur < old {
			return fmt.Errorf("%w: %s at %d after %d", ErrEpochRegression, p, cur, old)
		}
	}
	return nil
}
