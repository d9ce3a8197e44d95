// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native provides the hardware context backend on the Pure Go
// WebGPU stack (gogpu/wgpu).
//
// Importing the package registers the backend with glctx:
//
//	import _ "github.com/crbrz/webrender/glctx/native"
//
// Each share group owns one logical device. Textures and buffers are kept
// in host memory and mirrored onto the device through its queue; the
// drawable is mirrored on Finish. When no GPU adapter can be enumerated
// the instance falls back to the wgpu mock adapter, so the backend works
// headless.
//
// Build with the nogpu tag to leave the backend out.
package native
