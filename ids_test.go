// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import "testing"

func TestSourceTextureVariants(t *testing.T) {
	tests := []struct {
		name  string
		src   SourceTexture
		kind  SourceTextureKind
		valid bool
		str   string
	}{
		{"invalid", InvalidTexture(), SourceInvalid, false, "Invalid"},
		{"zero", SourceTexture{}, SourceInvalid, false, "Invalid"},
		{"cache", TextureCacheSource(3), SourceTextureCache, true, "TextureCache(3)"},
		{"webgl", WebGLSource(9), SourceWebGL, true, "WebGL(9)"},
		{"external", ExternalSource(1 << 40), SourceExternal, true, "External(1099511627776)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.Kind(); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
			if got := tt.src.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
			if got := tt.src.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestSourceTextureAccessors(t *testing.T) {
	src := TextureCacheSource(42)
	if id, ok := src.CacheID(); !ok || id != 42 {
		t.Errorf("CacheID() = %v, %v, want 42, true", id, ok)
	}
	if _, ok := src.WebGLID(); ok {
		t.Error("WebGLID() ok on cache source")
	}
	if _, ok := src.ExternalID(); ok {
		t.Error("ExternalID() ok on cache source")
	}

	if id, ok := WebGLSource(7).WebGLID(); !ok || id != 7 {
		t.Errorf("WebGLID() = %v, %v, want 7, true", id, ok)
	}
	if id, ok := ExternalSource(11).ExternalID(); !ok || id != 11 {
		t.Errorf("ExternalID() = %v, %v, want 11, true", id, ok)
	}
	if _, ok := InvalidTexture().CacheID(); ok {
		t.Error("CacheID() ok on invalid source")
	}
}

func TestSourceTextureIsMapKey(t *testing.T) {
	m := map[SourceTexture]int{
		TextureCacheSource(1): 1,
		WebGLSource(1):        2,
		ExternalSource(1):     3,
	}
	if len(m) != 3 {
		t.Fatalf("len = %d, want 3 (same payload, different variants)", len(m))
	}
	if m[TextureCacheSource(1)] != 1 {
		t.Errorf("lookup of equal value failed")
	}
}
