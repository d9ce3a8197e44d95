// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

type recordingDevice struct {
	mu       sync.Mutex
	calls    []string
	released int
}

func (d *recordingDevice) record(format string, args ...any) {
	d.mu.Lock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	d.mu.Unlock()
}

func (d *recordingDevice) CreateTexture(id uint32, desc glctx.TextureDesc) error {
	d.record("create texture %d %dx%d", id, desc.Width, desc.Height)
	return nil
}

func (d *recordingDevice) WriteTexture(id uint32, x, y, w, h uint32, data []byte) error {
	d.record("write texture %d %dx%d %d", id, w, h, len(data))
	return nil
}

func (d *recordingDevice) DestroyTexture(id uint32) { d.record("destroy texture %d", id) }

func (d *recordingDevice) CreateBuffer(id uint32, usage glctx.BufferUsage, size int) error {
	d.record("create buffer %d %d", id, size)
	return nil
}

func (d *recordingDevice) WriteBuffer(id uint32, offset int, data []byte) error {
	d.record("write buffer %d %d", id, len(data))
	return nil
}

func (d *recordingDevice) DestroyBuffer(id uint32) { d.record("destroy buffer %d", id) }

func (d *recordingDevice) Submit() error {
	d.record("submit")
	return nil
}

func (d *recordingDevice) Release() error {
	d.mu.Lock()
	d.released++
	d.mu.Unlock()
	return nil
}

func (d *recordingDevice) has(call string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.calls {
		if c == call {
			return true
		}
	}
	return false
}

func testGroup(dev Device) *Group {
	limits := glctx.LimitsFrom(gputypes.DownlevelLimits(), 0)
	return NewGroup(glctx.Software, limits, gpucontext.AdapterInfo{Name: "test"}, dev)
}

func newTestContext(t *testing.T, g *Group, w, h int32) *Context {
	t.Helper()
	c, err := NewContext(g, glctx.Size{W: w, H: h}, glctx.DefaultAttributes())
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	return c
}

func rgbaDesc(w, h uint32) glctx.TextureDesc {
	return glctx.TextureDesc{Width: w, Height: h, Format: webrender.ImageFormatRGBA8}
}

func TestNewContext(t *testing.T) {
	g := testGroup(nil)
	c := newTestContext(t, g, 32, 16)

	info := c.Info()
	if info.Size != (glctx.Size{W: 32, H: 16}) {
		t.Errorf("Info().Size = %v, want 32x16", info.Size)
	}
	if info.TextureID == 0 || info.TextureID != c.Drawable().ID() {
		t.Errorf("Info().TextureID = %d, want drawable id %d", info.TextureID, c.Drawable().ID())
	}
	if info.Adapter.Name != "test" {
		t.Errorf("Info().Adapter.Name = %q, want %q", info.Adapter.Name, "test")
	}
	if got := g.Members(); got != 1 {
		t.Errorf("Members() = %d, want 1", got)
	}
	if got := g.LiveTextures(); got != 1 {
		t.Errorf("LiveTextures() = %d, want 1", got)
	}

	if err := c.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if got := g.LiveTextures(); got != 0 {
		t.Errorf("LiveTextures() after Destroy = %d, want 0", got)
	}
}

func TestNewContextTooLarge(t *testing.T) {
	g := testGroup(nil)
	_, err := NewContext(g, glctx.Size{W: 1 << 20, H: 1}, glctx.DefaultAttributes())
	if !errors.Is(err, glctx.ErrSizeExceedsLimits) {
		t.Errorf("NewContext() error = %v, want ErrSizeExceedsLimits", err)
	}
	if got := g.Members(); got != 0 {
		t.Errorf("Members() = %d, want 0", got)
	}
}

func TestJoin(t *testing.T) {
	g := testGroup(nil)
	c := newTestContext(t, g, 4, 4)
	defer c.Destroy()

	if got, err := Join(nil, glctx.Software); got != nil || err != nil {
		t.Errorf("Join(nil) = %v, %v, want nil, nil", got, err)
	}
	got, err := Join(c.Handle(), glctx.Software)
	if err != nil || got != g {
		t.Errorf("Join(handle) = %v, %v, want the context's group", got, err)
	}
	if _, err := Join(c.Handle(), glctx.Native); !errors.Is(err, glctx.ErrForeignHandle) {
		t.Errorf("Join(handle, Native) error = %v, want ErrForeignHandle", err)
	}
}

func TestTextureRoundTrip(t *testing.T) {
	g := testGroup(nil)
	c := newTestContext(t, g, 4, 4)
	defer c.Destroy()

	tex, err := c.CreateTexture(rgbaDesc(64, 64))
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	pixels := bytes.Repeat([]byte{0xFF}, 64*64*4)
	if err := tex.Upload(0, 0, 64, 64, pixels, 0); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	got, err := tex.ReadPixels()
	if err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Error("ReadPixels() does not match the uploaded pixels")
	}

	id := tex.ID()
	if err := tex.Reallocate(rgbaDesc(128, 32)); err != nil {
		t.Fatalf("Reallocate() error = %v", err)
	}
	if tex.ID() != id {
		t.Errorf("ID() after Reallocate = %d, want %d", tex.ID(), id)
	}
	if d := tex.Desc(); d.Width != 128 || d.Height != 32 {
		t.Errorf("Desc() = %dx%d, want 128x32", d.Width, d.Height)
	}
	if err := tex.Reallocate(rgbaDesc(1<<20, 1)); !errors.Is(err, glctx.ErrSizeExceedsLimits) {
		t.Errorf("Reallocate(too large) error = %v, want ErrSizeExceedsLimits", err)
	}
	if d := tex.Desc(); d.Width != 128 {
		t.Errorf("Desc().Width after failed Reallocate = %d, want 128", d.Width)
	}

	tex.Release()
	tex.Release()
	if _, err := tex.ReadPixels(); !errors.Is(err, glctx.ErrTextureReleased) {
		t.Errorf("ReadPixels() after Release error = %v, want ErrTextureReleased", err)
	}
	if err := tex.Upload(0, 0, 1, 1, []byte{1, 2, 3, 4}, 0); !errors.Is(err, glctx.ErrTextureReleased) {
		t.Errorf("Upload() after Release error = %v, want ErrTextureReleased", err)
	}
}

func TestClearAndRead(t *testing.T) {
	c := newTestContext(t, testGroup(nil), 4, 4)
	defer c.Destroy()

	c.SetClearColor(webrender.ColorF{G: 1, A: 1})
	c.Clear(glctx.ClearColorBuffer | glctx.ClearDepthBuffer)
	px, err := c.ReadPixels(image.Rect(0, 0, 2, 1))
	if err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	if want := []byte{0, 255, 0, 255, 0, 255, 0, 255}; !bytes.Equal(px, want) {
		t.Errorf("ReadPixels() = %v, want %v", px, want)
	}
	if _, err := c.ReadPixels(image.Rect(0, 0, 5, 5)); !errors.Is(err, glctx.ErrOutOfBounds) {
		t.Errorf("ReadPixels(outside) error = %v, want ErrOutOfBounds", err)
	}
}

func TestDrawQuadsTextures(t *testing.T) {
	g := testGroup(nil)
	c := newTestContext(t, g, 4, 4)
	defer c.Destroy()

	tex, err := c.CreateTexture(rgbaDesc(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := tex.Upload(0, 0, 1, 1, []byte{10, 20, 30, 255}, 0); err != nil {
		t.Fatal(err)
	}
	white := webrender.PackedColor{R: 255, G: 255, B: 255, A: 255}
	quad := webrender.PackedVertexForQuad{
		X: 0, Y: 0, Width: 4, Height: 4,
		ColorTL: white, ColorTR: white, ColorBR: white, ColorBL: white,
		UTR: 1, UBR: 1, VBR: 1, VBL: 1,
	}
	if err := c.DrawQuads([webrender.ColorSamplerCount]glctx.Texture{tex}, []webrender.PackedVertexForQuad{quad}); err != nil {
		t.Fatalf("DrawQuads() error = %v", err)
	}
	px, _ := c.ReadPixels(image.Rect(2, 2, 3, 3))
	if want := []byte{10, 20, 30, 255}; !bytes.Equal(px, want) {
		t.Errorf("pixel(2, 2) = %v, want %v", px, want)
	}

	other := newTestContext(t, testGroup(nil), 4, 4)
	defer other.Destroy()
	foreign, err := other.CreateTexture(rgbaDesc(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	err = c.DrawQuads([webrender.ColorSamplerCount]glctx.Texture{foreign}, []webrender.PackedVertexForQuad{quad})
	if !errors.Is(err, glctx.ErrForeignHandle) {
		t.Errorf("DrawQuads(foreign texture) error = %v, want ErrForeignHandle", err)
	}

	tex.Release()
	err = c.DrawQuads([webrender.ColorSamplerCount]glctx.Texture{tex}, []webrender.PackedVertexForQuad{quad})
	if !errors.Is(err, glctx.ErrTextureReleased) {
		t.Errorf("DrawQuads(released texture) error = %v, want ErrTextureReleased", err)
	}
}

func TestBuffers(t *testing.T) {
	g := testGroup(nil)
	c := newTestContext(t, g, 4, 4)
	defer c.Destroy()

	id, err := c.CreateBuffer(glctx.BufferVertex, 16)
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if err := c.BufferData(id, 8, make([]byte, 8)); err != nil {
		t.Errorf("BufferData() error = %v", err)
	}
	if err := c.BufferData(id, 12, make([]byte, 8)); !errors.Is(err, glctx.ErrOutOfBounds) {
		t.Errorf("BufferData(past end) error = %v, want ErrOutOfBounds", err)
	}
	if _, err := c.CreateBuffer(glctx.BufferVertex, -1); !errors.Is(err, glctx.ErrInvalidSize) {
		t.Errorf("CreateBuffer(-1) error = %v, want ErrInvalidSize", err)
	}
	if err := c.DeleteBuffer(id); err != nil {
		t.Errorf("DeleteBuffer() error = %v", err)
	}
	if err := c.DeleteBuffer(id); !errors.Is(err, glctx.ErrUnknownBuffer) {
		t.Errorf("DeleteBuffer(twice) error = %v, want ErrUnknownBuffer", err)
	}
	if err := c.BufferData(id, 0, nil); !errors.Is(err, glctx.ErrUnknownBuffer) {
		t.Errorf("BufferData(deleted) error = %v, want ErrUnknownBuffer", err)
	}
	if got := g.LiveBuffers(); got != 0 {
		t.Errorf("LiveBuffers() = %d, want 0", got)
	}
}

func TestResizePreserve(t *testing.T) {
	g := testGroup(nil)
	attrs := glctx.DefaultAttributes()
	attrs.PreserveDrawingBuffer = true
	c, err := NewContext(g, glctx.Size{W: 2, H: 2}, attrs)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Destroy()

	id := c.Info().TextureID
	if err := c.FillRect(image.Rect(0, 0, 1, 1), webrender.PackedColor{R: 255, A: 255}); err != nil {
		t.Fatal(err)
	}
	if err := c.Resize(glctx.Size{W: 8, H: 8}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	info := c.Info()
	if info.Size != (glctx.Size{W: 8, H: 8}) || info.TextureID != id {
		t.Errorf("Info() = %v id %d, want 8x8 id %d", info.Size, info.TextureID, id)
	}
	px, err := c.ReadPixels(image.Rect(0, 0, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{255, 0, 0, 255}; !bytes.Equal(px, want) {
		t.Errorf("pixel(0, 0) after Resize = %v, want %v", px, want)
	}
	if err := c.FillRect(image.Rect(6, 6, 8, 8), webrender.PackedColor{B: 255, A: 255}); err != nil {
		t.Fatal(err)
	}
	if px, _ := c.ReadPixels(image.Rect(7, 7, 8, 8)); !bytes.Equal(px, []byte{0, 0, 255, 255}) {
		t.Errorf("pixel(7, 7) = %v, want [0 0 255 255]", px)
	}

	if err := c.Resize(glctx.Size{W: 1 << 20, H: 1}); !errors.Is(err, glctx.ErrSizeExceedsLimits) {
		t.Errorf("Resize(too large) error = %v, want ErrSizeExceedsLimits", err)
	}
	if got := c.Info().Size; got != (glctx.Size{W: 8, H: 8}) {
		t.Errorf("Info().Size after failed Resize = %v, want 8x8", got)
	}
}

func TestDeviceMirror(t *testing.T) {
	dev := &recordingDevice{}
	g := testGroup(dev)
	c := newTestContext(t, g, 4, 2)
	shared := newTestContext(t, g, 2, 2)

	drawable := c.Info().TextureID
	if !dev.has(fmt.Sprintf("create texture %d 4x2", drawable)) {
		t.Errorf("device did not see the drawable: %v", dev.calls)
	}

	tex, err := c.CreateTexture(rgbaDesc(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if err := tex.Upload(1, 0, 1, 2, []byte{1, 2, 3, 4, 5, 6, 7, 8}, 0); err != nil {
		t.Fatal(err)
	}
	if !dev.has(fmt.Sprintf("write texture %d 1x2 8", tex.ID())) {
		t.Errorf("device did not see the upload: %v", dev.calls)
	}

	if err := c.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if !dev.has(fmt.Sprintf("write texture %d 4x2 32", drawable)) || !dev.has("submit") {
		t.Errorf("Finish() did not mirror the drawable: %v", dev.calls)
	}

	if err := c.Destroy(); err != nil {
		t.Fatal(err)
	}
	if dev.released != 0 {
		t.Errorf("device released with a member left")
	}
	if tex.(*Texture).Released() {
		t.Error("shared texture released with a member left")
	}
	if err := shared.Destroy(); err != nil {
		t.Fatal(err)
	}
	if dev.released != 1 {
		t.Errorf("device released %d times, want 1", dev.released)
	}
	if !tex.(*Texture).Released() {
		t.Error("shared texture not released with the last member")
	}
	if !dev.has(fmt.Sprintf("destroy texture %d", tex.ID())) {
		t.Errorf("device did not see the texture destroyed: %v", dev.calls)
	}
}
