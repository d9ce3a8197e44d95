// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package webrender holds the value types shared between the frame
// producer and the GPU-owning consumer of a tile-based renderer.
//
// # Overview
//
// The producer builds frames and describes every texture-cache mutation it
// needs as a [TextureUpdateList]. It never touches a GPU context. Lists and
// finished [RendererFrame] snapshots travel to the consumer as [ResultMsg]
// values over the channel in package results. The consumer owns the GPU
// context (package glctx), replays the update log against real textures
// (package texcache) and draws batches (package renderer).
//
// # Identifiers
//
// [CacheTextureID] names an allocation owned by the texture cache.
// [SourceTexture] is the logical texture a draw wants; it is resolved to a
// live texture only on the consumer.
//
//	src := webrender.TextureCacheSource(7)
//	if id, ok := src.CacheID(); ok {
//	    // ...
//	}
//
// # Binary contracts
//
// [TextureSampler], [VertexAttribute], [PackedColor] and the packed vertex
// records are fixed layouts shared with shader code. Their numbering and
// byte layout must not change without a matching shader change.
//
// # Logging
//
// Nothing is logged by default. Use [SetLogger] to route diagnostics to a
// [log/slog.Logger]; all sub-packages share it.
package webrender
