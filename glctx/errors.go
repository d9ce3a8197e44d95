// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import "errors"

var (
	// ErrBackendNotAvailable is returned when no backend with the requested
	// name is registered.
	ErrBackendNotAvailable = errors.New("glctx: backend not available")

	// ErrInvalidSize is returned for a non-positive drawable size.
	ErrInvalidSize = errors.New("glctx: invalid drawable size")

	// ErrSizeExceedsLimits is returned when a drawable or texture is larger
	// than the device allows.
	ErrSizeExceedsLimits = errors.New("glctx: size exceeds device limits")

	// ErrUnsupportedAttributes is returned when the backend cannot honor a
	// requested capability.
	ErrUnsupportedAttributes = errors.New("glctx: unsupported context attributes")

	// ErrForeignHandle is returned by a backend given a share handle that
	// belongs to another backend.
	ErrForeignHandle = errors.New("glctx: share handle belongs to another backend")

	// ErrUnknownBuffer is returned by commands naming a deleted or never
	// created buffer.
	ErrUnknownBuffer = errors.New("glctx: unknown buffer")

	// ErrOutOfBounds is returned when a rectangle falls outside its texture
	// or drawable.
	ErrOutOfBounds = errors.New("glctx: rectangle out of bounds")

	// ErrTextureReleased is returned when a released texture is used.
	ErrTextureReleased = errors.New("glctx: texture released")

	// ErrDispatcherClosed is returned when work is handed to a closed
	// dispatcher.
	ErrDispatcherClosed = errors.New("glctx: dispatcher closed")
)
