// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"math"
	"time"

	"github.com/crbrz/webrender"
)

const (
	checkerTexture webrender.CacheTextureID = 1
	badgeTexture   webrender.CacheTextureID = 2
)

var (
	demoPipeline = webrender.PipelineID{Namespace: 1}
	demoLayer    = webrender.ScrollLayerID{Pipeline: demoPipeline}
)

// sink is where the producer sends its messages.
type sink interface {
	Send(ctx context.Context, msg webrender.ResultMsg) error
}

// scene is the producer side of the demo: it owns the texture ids and
// builds one frame per step.
type scene struct {
	width, height int32
	frames        int
}

// run sends the texture setup, then frames 1..s.frames. A texture update
// halfway through replaces part of the checkerboard and grows the badge.
func (s *scene) run(ctx context.Context, tx sink) error {
	setup := webrender.NewTextureUpdateList(2)
	setup.Create(checkerTexture, webrender.CreateOp{
		Width: 64, Height: 64,
		Format: webrender.ImageFormatRGBA8,
		Filter: webrender.FilterNearest,
		Pixels: checkerboard(64, 64, 8),
	})
	setup.Create(badgeTexture, webrender.CreateOp{
		Width: 16, Height: 16,
		Format: webrender.ImageFormatRGBA8,
		Filter: webrender.FilterLinear,
		Pixels: solid(16, 16, [4]byte{255, 200, 0, 255}),
	})
	if err := tx.Send(ctx, webrender.UpdateTextureCache(setup)); err != nil {
		return err
	}

	for i := 1; i <= s.frames; i++ {
		start := time.Now()
		var counters webrender.BackendProfileCounters
		if i == s.frames/2+1 {
			list := s.midUpdate()
			counters.RecordUpdates(list)
			if err := tx.Send(ctx, webrender.UpdateTextureCache(list)); err != nil {
				return err
			}
		}
		if i == 1 {
			counters.RecordUpdates(setup)
		}

		f := s.frame(i)
		var bouncing []webrender.ScrollLayerID
		if i < s.frames {
			bouncing = append(bouncing, demoLayer)
		}
		rf := webrender.NewRendererFrame(
			map[webrender.PipelineID]webrender.Epoch{demoPipeline: webrender.Epoch(i)},
			bouncing, f)
		counters.TotalTime = time.Since(start)
		if err := tx.Send(ctx, webrender.NewFrame(rf, counters)); err != nil {
			return err
		}
	}
	return nil
}

// midUpdate paints a red block into the checkerboard from a wider source
// buffer and grows the badge texture.
func (s *scene) midUpdate() *webrender.TextureUpdateList {
	const stride = 32 * 4
	src := make([]byte, stride*16)
	for y := range 16 {
		for x := range 16 {
			copy(src[y*stride+x*4:], []byte{220, 30, 30, 255})
		}
	}
	list := webrender.NewTextureUpdateList(2)
	list.Update(checkerTexture, webrender.UpdateOp{X: 24, Y: 24, Width: 16, Height: 16, Pixels: src, Stride: stride})
	list.Grow(badgeTexture, webrender.GrowOp{
		Width: 32, Height: 16,
		Format: webrender.ImageFormatRGBA8,
		Filter: webrender.FilterLinear,
	})
	return list
}

// frame builds step i: a gradient backdrop, the checkerboard sliding
// across, the badge, and a multiplied tint band.
func (s *scene) frame(i int) *webrender.Frame {
	w, h := float32(s.width), float32(s.height)
	t := float32(i) / float32(max(s.frames, 1))

	top := webrender.PackColor(webrender.ColorF{R: 0.1, G: 0.2, B: 0.4, A: 1})
	bottom := webrender.PackColor(webrender.ColorF{R: 0.5, G: 0.5, B: 0.6, A: 1})
	backdrop := webrender.PackedVertexForQuad{
		Width: w, Height: h,
		ColorTL: top, ColorTR: top, ColorBR: bottom, ColorBL: bottom,
	}

	side := min(w, h) / 2
	x := (w - side) * t
	y := (h-side)/2 + float32(math.Sin(float64(t)*math.Pi))*side/4
	white := webrender.PackColor(webrender.ColorF{R: 1, G: 1, B: 1, A: 1})
	checker := texturedQuad(x, y, side, side, white)
	badge := texturedQuad(w-side/2-8, 8, side/2, side/4, white)

	tint := webrender.PackColor(webrender.ColorF{R: 1, G: 0.6, B: 0.8, A: 1})
	band := webrender.PackedVertexForQuad{
		Y: h * 0.75, Width: w, Height: h / 8,
		ColorTL: tint, ColorTR: tint, ColorBR: tint, ColorBL: tint,
	}

	return &webrender.Frame{
		Width:      s.width,
		Height:     s.height,
		Background: webrender.ColorF{A: 1},
		Batches: []webrender.DrawBatch{
			{Textures: webrender.NoTexture(), Quads: []webrender.PackedVertexForQuad{backdrop}},
			{
				Textures: webrender.ColorTextures(webrender.TextureCacheSource(checkerTexture)),
				Quads:    []webrender.PackedVertexForQuad{checker},
			},
			{
				Textures: webrender.ColorTextures(webrender.TextureCacheSource(badgeTexture)),
				Quads:    []webrender.PackedVertexForQuad{badge},
			},
			{Blend: webrender.BlendMultiply, Quads: []webrender.PackedVertexForQuad{band}},
		},
	}
}

func texturedQuad(x, y, w, h float32, c webrender.PackedColor) webrender.PackedVertexForQuad {
	return webrender.PackedVertexForQuad{
		X: x, Y: y, Width: w, Height: h,
		ColorTL: c, ColorTR: c, ColorBR: c, ColorBL: c,
		UTR: 1, UBR: 1, VBR: 1, VBL: 1,
	}
}

func checkerboard(w, h, cell int) []byte {
	pix := make([]byte, w*h*4)
	for y := range h {
		for x := range w {
			v := byte(40)
			if (x/cell+y/cell)%2 == 0 {
				v = 230
			}
			copy(pix[(y*w+x)*4:], []byte{v, v, v, 255})
		}
	}
	return pix
}

func solid(w, h int, c [4]byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:], c[:])
	}
	return pix
}
