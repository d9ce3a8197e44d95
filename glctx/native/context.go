// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu && !(js && wasm)

package native

import (
	"github.com/crbrz/webrender/glctx/internal/host"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Context is a native context. Besides the glctx contract it exposes its
// device through gpucontext.DeviceProvider so a host can create its own
// resources on the same device.
type Context struct {
	*host.Context
	dev *device
}

var _ gpucontext.DeviceProvider = (*Context)(nil)

// Device returns the core.DeviceID of the share group's device.
func (c *Context) Device() gpucontext.Device { return c.dev.id }

// Queue returns the core.QueueID of the device.
func (c *Context) Queue() gpucontext.Queue { return c.dev.queue }

// Adapter returns the core.AdapterID the device was opened on.
func (c *Context) Adapter() gpucontext.Adapter { return c.dev.adapter }

// SurfaceFormat returns the format of the drawable.
func (c *Context) SurfaceFormat() gputypes.TextureFormat {
	return c.Drawable().Desc().Format.GPUFormat()
}

// AdapterInfo returns the adapter name and type.
func (c *Context) AdapterInfo() gpucontext.AdapterInfo { return c.dev.adapterInfo() }
