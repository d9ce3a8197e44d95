// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texcache

import (
	"fmt"

	"github.com/crbrz/webrender/glctx"
)

// growTexture reallocates a texture on the context thread, keeping the
// part of the old contents that fits when the format is unchanged.
type growTexture struct {
	tex  glctx.Texture
	desc glctx.TextureDesc
}

func (g growTexture) Apply(glctx.CommandTarget) error {
	old := g.tex.Desc()
	var pixels []byte
	if old.Format == g.desc.Format {
		var err error
		if pixels, err = g.tex.ReadPixels(); err != nil {
			return err
		}
	}
	if err := g.tex.Reallocate(g.desc); err != nil {
		return err
	}
	if pixels == nil {
		return nil
	}
	// The texture already has its new storage; losing the old contents
	// does not undo the grow.
	w, h := min(old.Width, g.desc.Width), min(old.Height, g.desc.Height)
	if err := g.tex.Upload(0, 0, w, h, pixels, int(old.Width)*old.Format.BytesPerPixel()); err != nil {
		slogger().Warn("texcache: grown texture lost its contents", "texture", g.tex.ID(), "err", err)
	}
	return nil
}

func (g growTexture) String() string {
	return fmt.Sprintf("GrowTexture(%d, %dx%d)", g.tex.ID(), g.desc.Width, g.desc.Height)
}

// releaseTexture frees a texture on the context thread.
type releaseTexture struct {
	tex glctx.Texture
}

func (r releaseTexture) Apply(glctx.CommandTarget) error {
	r.tex.Release()
	return nil
}

func (r releaseTexture) String() string { return fmt.Sprintf("ReleaseTexture(%d)", r.tex.ID()) }
