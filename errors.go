// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import "errors"

var (
	// ErrUnknownTexture is returned when an Update or Grow references a
	// cache texture that was never created.
	ErrUnknownTexture = errors.New("webrender: update references texture that was never created")

	// ErrDuplicateTexture is returned when Create is issued for an id that
	// is already live.
	ErrDuplicateTexture = errors.New("webrender: texture already created")

	// ErrShortPixels is returned when a pixel payload does not cover the
	// rectangle it is uploaded to.
	ErrShortPixels = errors.New("webrender: pixel data shorter than update rectangle")

	// ErrEpochRegression is returned when a frame reports an older epoch
	// for a pipeline than a frame delivered before it.
	ErrEpochRegression = errors.New("webrender: pipeline epoch went backwards")

	// ErrInvalidFormat is returned for ImageFormatInvalid or an unknown format.
	ErrInvalidFormat = errors.New("webrender: invalid image format")

	// ErrInvalidFont is returned when raw font bytes cannot be parsed.
	ErrInvalidFont = errors.New("webrender: invalid font data")

	// ErrInvalidConfig is returned for configuration values out of range.
	ErrInvalidConfig = errors.New("webrender: invalid configuration")
)
