// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu && !(js && wasm)

package native

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

type softwareHandle struct{}

func (softwareHandle) Kind() glctx.Kind { return glctx.Software }

// useMock registers a mock-adapter backend in place of the default one.
func useMock(t *testing.T) *Backend {
	t.Helper()
	b := NewMock()
	glctx.Register(b)
	t.Cleanup(func() {
		b.Close()
		glctx.Register(New())
	})
	return b
}

func newContext(t *testing.T, d glctx.Dispatcher) *glctx.ContextWrapper {
	t.Helper()
	c, err := glctx.NewRootContext(glctx.BackendNative, glctx.Size{W: 16, H: 16}, glctx.DefaultAttributes(), d)
	if err != nil {
		t.Fatalf("NewRootContext() error = %v", err)
	}
	return c
}

func TestMockContext(t *testing.T) {
	useMock(t)
	d := glctx.NewThreadDispatcher()
	defer d.Close()

	c := newContext(t, d)
	defer c.Destroy()

	if c.Kind() != glctx.Native {
		t.Errorf("Kind() = %v, want Native", c.Kind())
	}
	info := c.Info()
	if want := int32(gputypes.DefaultLimits().MaxTextureDimension2D); info.Limits.MaxTextureSize != want {
		t.Errorf("Info().Limits.MaxTextureSize = %d, want %d", info.Limits.MaxTextureSize, want)
	}
	if info.Adapter.Type != gpucontext.AdapterTypeDiscrete {
		t.Errorf("Info().Adapter.Type = %v, want discrete", info.Adapter.Type)
	}

	p, ok := c.DeviceProvider()
	if !ok {
		t.Fatal("DeviceProvider() = false, want true")
	}
	if _, ok := p.Device().(core.DeviceID); !ok {
		t.Errorf("Device() = %T, want core.DeviceID", p.Device())
	}
	if _, ok := p.Queue().(core.QueueID); !ok {
		t.Errorf("Queue() = %T, want core.QueueID", p.Queue())
	}
	if got := p.SurfaceFormat(); got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat() = %v, want RGBA8Unorm", got)
	}
	if got := p.AdapterInfo().Name; got != info.Adapter.Name {
		t.Errorf("AdapterInfo().Name = %q, want %q", got, info.Adapter.Name)
	}
}

func TestMockDraw(t *testing.T) {
	useMock(t)
	d := glctx.NewThreadDispatcher()
	defer d.Close()

	c := newContext(t, d)
	defer c.Destroy()

	cmds := []glctx.Command{
		glctx.ClearColor{Color: webrender.ColorF{B: 1, A: 1}},
		glctx.Clear{Mask: glctx.ClearColorBuffer},
		glctx.FillRect{Rect: image.Rect(0, 0, 8, 8), Color: webrender.PackedColor{R: 255, A: 255}},
		glctx.Finish{},
	}
	for _, cmd := range cmds {
		if err := c.Exec(cmd); err != nil {
			t.Fatalf("Exec(%s) error = %v", cmd, err)
		}
	}
	reply := make(chan glctx.PixelsResult, 1)
	if err := c.Exec(glctx.ReadPixels{Rect: image.Rect(7, 7, 9, 8), Reply: reply}); err != nil {
		t.Fatal(err)
	}
	res := <-reply
	if want := []byte{255, 0, 0, 255, 0, 0, 255, 255}; !bytes.Equal(res.Pixels, want) {
		t.Errorf("ReadPixels() = %v, want %v", res.Pixels, want)
	}

	reply2 := make(chan glctx.BufferResult, 1)
	if err := c.Exec(glctx.CreateBuffer{Usage: glctx.BufferVertex, Size: 64, Reply: reply2}); err != nil {
		t.Fatal(err)
	}
	buf := <-reply2
	if err := c.Exec(glctx.BufferData{Buffer: buf.ID, Data: make([]byte, 64)}); err != nil {
		t.Errorf("Exec(BufferData) error = %v", err)
	}
	if err := c.Exec(glctx.DeleteBuffer{Buffer: buf.ID}); err != nil {
		t.Errorf("Exec(DeleteBuffer) error = %v", err)
	}
}

func TestMockSharedDevice(t *testing.T) {
	useMock(t)
	d := glctx.NewThreadDispatcher()
	defer d.Close()

	root := newContext(t, d)
	child, err := root.Handle().NewContext(glctx.Size{W: 8, H: 8}, glctx.DefaultAttributes(), d)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	rp, _ := root.DeviceProvider()
	cp, _ := child.DeviceProvider()
	if rp.Device() != cp.Device() {
		t.Error("shared contexts run on different devices")
	}
	dev := rp.(*Context).dev

	tex, err := child.CreateTexture(glctx.TextureDesc{
		Width: 32, Height: 32, Format: webrender.ImageFormatA8, Mode: webrender.LayerRenderTarget(2),
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if err := tex.Upload(0, 0, 2, 1, []byte{1, 2}, 0); err != nil {
		t.Errorf("Upload() error = %v", err)
	}
	// Two drawables and the texture.
	if got := dev.liveTextures(); got != 3 {
		t.Errorf("device textures = %d, want 3", got)
	}

	if err := root.Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := child.Destroy(); err != nil {
		t.Fatal(err)
	}
	if !dev.released {
		t.Error("device not released with the last context")
	}
	if _, err := core.GetDeviceQueue(dev.id); err == nil {
		t.Error("device still registered after release")
	}
}

func TestMockErrors(t *testing.T) {
	b := useMock(t)
	if _, err := b.NewContext(softwareHandle{}, glctx.Size{W: 4, H: 4}, glctx.DefaultAttributes()); !errors.Is(err, glctx.ErrForeignHandle) {
		t.Errorf("NewContext(software handle) error = %v, want ErrForeignHandle", err)
	}
	_, err := b.NewContext(nil, glctx.Size{W: 1 << 20, H: 4}, glctx.DefaultAttributes())
	if !errors.Is(err, glctx.ErrSizeExceedsLimits) {
		t.Errorf("NewContext(too large) error = %v, want ErrSizeExceedsLimits", err)
	}

	d := glctx.NewThreadDispatcher()
	defer d.Close()
	c := newContext(t, d)
	defer c.Destroy()
	if err := c.Resize(glctx.Size{W: 1 << 20, H: 1}); !errors.Is(err, glctx.ErrSizeExceedsLimits) {
		t.Errorf("Resize(too large) error = %v, want ErrSizeExceedsLimits", err)
	}
	if err := c.Resize(glctx.Size{W: 32, H: 8}); err != nil {
		t.Errorf("Resize(32x8) error = %v", err)
	}
}
