// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"github.com/crbrz/webrender/shader"
	"github.com/crbrz/webrender/texcache"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	r := renderer.New(ctx, rx,
//		renderer.WithTextureBudget(cfg.TextureMemoryBytes()),
//		renderer.WithShaders(shader.NewCache(cfg.Shaders.Dir)),
//	)
type Option func(*options)

type options struct {
	cache    *texcache.Cache
	budget   uint64
	shaders  *shader.Cache
	validate bool
}

// WithTextureCache uses an existing texture cache. The renderer does not
// close it.
func WithTextureCache(c *texcache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithTextureBudget limits the texture cache the renderer creates. It is
// ignored together with WithTextureCache.
func WithTextureBudget(bytes uint64) Option {
	return func(o *options) {
		o.budget = bytes
	}
}

// WithShaders reloads RefreshShader paths into c. Without it shader
// refreshes are logged and dropped.
func WithShaders(c *shader.Cache) Option {
	return func(o *options) {
		o.shaders = c
	}
}

// WithValidation checks every update list against the ids created so far
// before replaying it. A list that uses an unknown id is rejected whole
// with an error instead of panicking part way through the replay.
func WithValidation() Option {
	return func(o *options) {
		o.validate = true
	}
}
