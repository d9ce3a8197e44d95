// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu && !(js && wasm)

package native

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	"github.com/crbrz/webrender/glctx/internal/host"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

// init registers the native backend on package import. The WebGPU
// instance is created with the first context.
func init() {
	glctx.Register(New())
}

// Backend is the native context backend.
type Backend struct {
	mock bool

	mu       sync.Mutex
	instance *core.Instance
}

// New returns a backend enumerating the primary GPU backends of the host.
func New() *Backend {
	return &Backend{}
}

// NewMock returns a backend bound to the wgpu mock adapter. It needs no
// GPU and is meant for tests.
func NewMock() *Backend {
	return &Backend{mock: true}
}

// Kind returns glctx.Native.
func (b *Backend) Kind() glctx.Kind { return glctx.Native }

// Name returns glctx.BackendNative.
func (b *Backend) Name() string { return glctx.BackendNative }

// NewContext creates a native context. A root context opens a new device;
// a shared one joins the device of the handle's group.
func (b *Backend) NewContext(share glctx.NativeHandle, size glctx.Size, attrs glctx.Attributes) (glctx.NativeContext, error) {
	group, err := host.Join(share, glctx.Native)
	if err != nil {
		return nil, err
	}
	root := group == nil
	if root {
		dev, err := b.openDevice()
		if err != nil {
			return nil, err
		}
		group = host.NewGroup(glctx.Native, dev.limits, dev.adapterInfo(), dev)
	}
	hc, err := host.NewContext(group, size, attrs)
	if err != nil {
		if root {
			_ = group.Device().Release()
		}
		return nil, err
	}
	return &Context{Context: hc, dev: group.Device().(*device)}, nil
}

func (b *Backend) getInstance() *core.Instance {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.instance == nil {
		desc := gputypes.InstanceDescriptor{Backends: gputypes.BackendsPrimary}
		if b.mock {
			b.instance = core.NewInstanceWithMock(&desc)
		} else {
			b.instance = core.NewInstance(&desc)
		}
		slogger().Info("native: instance created", "mock", b.instance.IsMock())
	}
	return b.instance
}

func (b *Backend) openDevice() (*device, error) {
	inst := b.getInstance()
	adapter, err := inst.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("native: request adapter: %w", err)
	}
	return openDevice(adapter)
}

// Close destroys the WebGPU instance. Contexts of the backend must be
// destroyed first. A later NewContext creates a new instance.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
}

func slogger() *slog.Logger { return webrender.Logger() }
