// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
)

// FontKey identifies a font template registered with the producer.
type FontKey struct {
	Namespace uint32
	Index     uint32
}

// NativeFontHandle names a font installed on the platform.
type NativeFontHandle struct {
	// Name is the platform font name or file path.
	Name string
	// Index selects a face within a collection.
	Index int
}

// FontTemplate is the source of a font: raw font bytes shared read-only
// between threads, or a handle to a platform font.
type FontTemplate struct {
	raw    []byte
	native NativeFontHandle
	font   *sfnt.Font
}

// RawFontTemplate parses data as an OpenType or TrueType font and returns a
// template sharing it. The caller must not modify data afterwards.
func RawFontTemplate(data []byte) (FontTemplate, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return FontTemplate{}, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	return FontTemplate{raw: data, font: f}, nil
}

// NativeFontTemplate returns a template naming a platform font.
func NativeFontTemplate(h NativeFontHandle) FontTemplate {
	return FontTemplate{native: h}
}

// IsRaw reports whether the template holds font bytes.
func (t FontTemplate) IsRaw() bool { return t.raw != nil }

// Raw returns the shared font bytes of a raw template.
func (t FontTemplate) Raw() ([]byte, bool) { return t.raw, t.raw != nil }

// Native returns the handle of a native template.
func (t FontTemplate) Native() (NativeFontHandle, bool) { return t.native, t.raw == nil }

// NumGlyphs returns the glyph count of a raw template, or 0 for a native one.
func (t FontTemplate) NumGlyphs() int {
	if t.font == nil {
		return 0
	}
	return t.font.NumGlyphs()
}

// Family returns the family name recorded in a raw font.
func (t FontTemplate) Family() (string, error) {
	if t.font == nil {
		return t.native.Name, nil
	}
	var buf sfnt.Buffer
	return t.font.Name(&buf, sfnt.NameIDFamily)
}
