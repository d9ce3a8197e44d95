// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu && !(js && wasm)

package native

import (
	"errors"
	"fmt"
	"sync"

	"github.com/crbrz/webrender/glctx"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

var errDeviceReleased = errors.New("native: device released")

// device is the logical device of one share group. It implements
// host.Device.
type device struct {
	adapter core.AdapterID
	id      core.DeviceID
	queue   core.QueueID
	info    gputypes.AdapterInfo
	limits  glctx.Limits

	mu       sync.Mutex
	textures map[uint32]deviceTexture
	buffers  map[uint32]core.BufferID
	writes   int
	released bool
}

type deviceTexture struct {
	id   core.TextureID
	desc glctx.TextureDesc
}

// openDevice creates a device with every feature and the full limits of
// the adapter.
func openDevice(adapter core.AdapterID) (*device, error) {
	info, err := core.GetAdapterInfo(adapter)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}
	features, err := core.GetAdapterFeatures(adapter)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}
	limits, err := core.GetAdapterLimits(adapter)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}

	var required []gputypes.Feature
	for bit := gputypes.Feature(1); bit != 0; bit <<= 1 {
		if features.Contains(bit) {
			required = append(required, bit)
		}
	}
	id, err := core.RequestDevice(adapter, &gputypes.DeviceDescriptor{
		Label:            "webrender",
		RequiredFeatures: required,
		RequiredLimits:   limits,
	})
	if err != nil {
		return nil, fmt.Errorf("native: request device: %w", err)
	}
	queue, err := core.GetDeviceQueue(id)
	if err != nil {
		_ = core.DeviceDrop(id)
		return nil, fmt.Errorf("native: %w", err)
	}
	devLimits, err := core.GetDeviceLimits(id)
	if err != nil {
		_ = core.DeviceDrop(id)
		return nil, fmt.Errorf("native: %w", err)
	}
	devFeatures, err := core.GetDeviceFeatures(id)
	if err != nil {
		_ = core.DeviceDrop(id)
		return nil, fmt.Errorf("native: %w", err)
	}

	slogger().Info("native: device opened",
		"adapter", info.Name,
		"type", info.DeviceType.String(),
		"maxTexture", devLimits.MaxTextureDimension2D)
	return &device{
		adapter:  adapter,
		id:       id,
		queue:    queue,
		info:     info,
		limits:   glctx.LimitsFrom(devLimits, devFeatures),
		textures: make(map[uint32]deviceTexture),
		buffers:  make(map[uint32]core.BufferID),
	}, nil
}

func (d *device) adapterInfo() gpucontext.AdapterInfo {
	t := gpucontext.AdapterTypeUnknown
	switch d.info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		t = gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterInfo{Name: d.info.Name, Type: t}
}

func (d *device) CreateTexture(id uint32, desc glctx.TextureDesc) error {
	tid, err := core.DeviceCreateTexture(d.id, &gputypes.TextureDescriptor{
		Label: fmt.Sprintf("webrender texture %d", id),
		Size: gputypes.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: uint32(desc.Mode.Layers()),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format.GPUFormat(),
		Usage:         desc.Mode.GPUUsage(),
	})
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		_, _ = core.GetGlobal().Hub().UnregisterTexture(tid)
		return errDeviceReleased
	}
	d.textures[id] = deviceTexture{id: tid, desc: desc}
	return nil
}

func (d *device) WriteTexture(id uint32, x, y, w, h uint32, data []byte) error {
	d.mu.Lock()
	t, ok := d.textures[id]
	d.writes++
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("native: write to unknown texture %d", id)
	}
	return core.QueueWriteTexture(d.queue,
		&gputypes.ImageCopyTexture{
			Texture: uintptr(t.id.Raw()),
			Origin:  gputypes.Origin3D{X: x, Y: y},
			Aspect:  gputypes.TextureAspectAll,
		},
		data,
		&gputypes.TextureDataLayout{
			BytesPerRow:  w * uint32(t.desc.Format.StorageBytesPerPixel()),
			RowsPerImage: h,
		},
		&gputypes.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

func (d *device) DestroyTexture(id uint32) {
	d.mu.Lock()
	t, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()
	if ok {
		_, _ = core.GetGlobal().Hub().UnregisterTexture(t.id)
	}
}

func bufferUsage(u glctx.BufferUsage) gputypes.BufferUsage {
	usage := gputypes.BufferUsageCopyDst
	switch u {
	case glctx.BufferVertex:
		usage |= gputypes.BufferUsageVertex
	case glctx.BufferIndex:
		usage |= gputypes.BufferUsageIndex
	case glctx.BufferUniform:
		usage |= gputypes.BufferUsageUniform
	}
	return usage
}

func (d *device) CreateBuffer(id uint32, usage glctx.BufferUsage, size int) error {
	bid, err := core.DeviceCreateBuffer(d.id, &gputypes.BufferDescriptor{
		Label: fmt.Sprintf("webrender %s buffer %d", usage, id),
		Size:  uint64(size),
		Usage: bufferUsage(usage),
	})
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		_, _ = core.GetGlobal().Hub().UnregisterBuffer(bid)
		return errDeviceReleased
	}
	d.buffers[id] = bid
	return nil
}

func (d *device) WriteBuffer(id uint32, offset int, data []byte) error {
	d.mu.Lock()
	bid, ok := d.buffers[id]
	d.writes++
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("native: write to unknown buffer %d", id)
	}
	return core.QueueWriteBuffer(d.queue, bid, uint64(offset), data)
}

func (d *device) DestroyBuffer(id uint32) {
	d.mu.Lock()
	bid, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if ok {
		_, _ = core.GetGlobal().Hub().UnregisterBuffer(bid)
	}
}

// Submit records an empty command buffer behind the queued writes,
// submits it and waits for the queue to drain.
func (d *device) Submit() error {
	enc, err := core.DeviceCreateCommandEncoder(d.id, "webrender frame")
	if err != nil {
		return fmt.Errorf("native: %w", err)
	}
	cb, err := core.CommandEncoderFinish(enc)
	if err != nil {
		return fmt.Errorf("native: %w", err)
	}
	defer func() { _, _ = core.GetGlobal().Hub().UnregisterCommandBuffer(cb) }()
	if err := core.QueueSubmit(d.queue, []core.CommandBufferID{cb}); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	if err := core.QueueOnSubmittedWorkDone(d.queue); err != nil {
		return fmt.Errorf("native: %w", err)
	}
	d.mu.Lock()
	n := d.writes
	d.writes = 0
	d.mu.Unlock()
	slogger().Debug("native: submitted", "writes", n)
	return nil
}

// Release drops every remaining resource and the device.
func (d *device) Release() error {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return nil
	}
	d.released = true
	textures, buffers := d.textures, d.buffers
	d.textures, d.buffers = nil, nil
	d.mu.Unlock()

	hub := core.GetGlobal().Hub()
	for _, t := range textures {
		_, _ = hub.UnregisterTexture(t.id)
	}
	for _, b := range buffers {
		_, _ = hub.UnregisterBuffer(b)
	}
	if err := core.DeviceDrop(d.id); err != nil {
		return fmt.Errorf("native: %w", err)
	}
	slogger().Info("native: device released", "adapter", d.info.Name)
	return nil
}

// liveTextures returns the number of textures on the device.
func (d *device) liveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}
