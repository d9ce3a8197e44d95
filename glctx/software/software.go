// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides the CPU rasterized offscreen context backend.
//
// Importing the package registers the backend with glctx:
//
//	import _ "github.com/crbrz/webrender/glctx/software"
//
// The drawable is an RGBA8 texture in host memory; commands are executed
// by the CPU rasterizer. The backend advertises the downlevel WebGPU
// limits so that content sized for it also fits any hardware device.
package software

import (
	"fmt"

	"github.com/crbrz/webrender/glctx"
	"github.com/crbrz/webrender/glctx/internal/host"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// init registers the software backend on package import.
func init() {
	glctx.Register(New())
}

// Backend is the software context backend.
type Backend struct {
	limits glctx.Limits
}

// New returns a software backend with the downlevel limits.
func New() *Backend {
	return NewWithLimits(glctx.LimitsFrom(gputypes.DownlevelLimits(), softwareFeatures))
}

// NewWithLimits returns a software backend advertising limits.
func NewWithLimits(limits glctx.Limits) *Backend {
	return &Backend{limits: limits}
}

// softwareFeatures are the optional features the rasterizer honors.
const softwareFeatures = gputypes.Features(gputypes.FeatureFloat32Filterable)

// Kind returns glctx.Software.
func (b *Backend) Kind() glctx.Kind { return glctx.Software }

// Name returns glctx.BackendSoftware.
func (b *Backend) Name() string { return glctx.BackendSoftware }

// Limits returns the limits every context of the backend reports.
func (b *Backend) Limits() glctx.Limits { return b.limits }

// NewContext creates a software context. There is no stencil storage, so
// a stencil request yields glctx.ErrUnsupportedAttributes.
func (b *Backend) NewContext(share glctx.NativeHandle, size glctx.Size, attrs glctx.Attributes) (glctx.NativeContext, error) {
	if attrs.Stencil {
		return nil, fmt.Errorf("%w: software contexts have no stencil buffer", glctx.ErrUnsupportedAttributes)
	}
	group, err := host.Join(share, glctx.Software)
	if err != nil {
		return nil, err
	}
	if group == nil {
		group = host.NewGroup(glctx.Software, b.limits, gpucontext.AdapterInfo{
			Name: "software",
			Type: gpucontext.AdapterTypeSoftware,
		}, nil)
	}
	return host.NewContext(group, size, attrs)
}
