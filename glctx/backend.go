// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"fmt"
	"image"
	"slices"

	"github.com/crbrz/webrender"
	"github.com/gogpu/gpucontext"
)

// Backend names of the built-in backends.
const (
	BackendNative   = "native"
	BackendSoftware = "software"
)

// Backend creates contexts of one kind. Implementations register
// themselves with Register from an init function.
type Backend interface {
	// Kind returns the backend variant.
	Kind() Kind

	// Name returns the registry name.
	Name() string

	// NewContext creates a context with an offscreen color-texture drawable
	// of the given size. A non-nil share handle places the new context in
	// the share group of the handle's context; a handle from another
	// backend yields ErrForeignHandle. A failed creation leaves nothing
	// allocated.
	NewContext(share NativeHandle, size Size, attrs Attributes) (NativeContext, error)
}

// NativeHandle is a backend-specific reference to a live context, used only
// to create contexts sharing its GPU objects.
type NativeHandle interface {
	Kind() Kind
}

// NativeContext is the backend side of a context. The ContextWrapper
// enforces thread affinity and lifecycle before calling into it, so
// implementations may assume calls are serialized and come from the thread
// the context is current on.
type NativeContext interface {
	// Handle returns the share handle of this context.
	Handle() NativeHandle

	// MakeCurrent and Unbind attach and detach the context from the
	// calling thread.
	MakeCurrent() error
	Unbind() error

	// Info reports the drawable size, its color attachment id and limits.
	Info() Info

	// Resize reallocates the drawable. On error the previous drawable is
	// left intact.
	Resize(size Size) error

	// CreateTexture allocates a texture in the share group.
	CreateTexture(desc TextureDesc) (Texture, error)

	// Target returns the command target commands are applied to.
	Target() CommandTarget

	// Destroy releases the drawable and, for the last context of a share
	// group, the shared objects.
	Destroy() error
}

// TextureDesc describes texture storage.
type TextureDesc struct {
	Width  uint32
	Height uint32
	Format webrender.ImageFormat
	Filter webrender.TextureFilter
	Mode   webrender.RenderTargetMode
}

// Validate checks the description against limits.
func (d TextureDesc) Validate(l Limits) error {
	if !d.Format.IsValid() {
		return webrender.ErrInvalidFormat
	}
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, d.Width, d.Height)
	}
	if int64(d.Width) > int64(l.MaxTextureSize) || int64(d.Height) > int64(l.MaxTextureSize) ||
		d.Mode.Layers() > l.MaxTextureLayers {
		return fmt.Errorf("%w: %dx%d layers=%d, max %d layers=%d", ErrSizeExceedsLimits,
			d.Width, d.Height, d.Mode.Layers(), l.MaxTextureSize, l.MaxTextureLayers)
	}
	return nil
}

// StorageBytes returns the device memory the texture occupies.
func (d TextureDesc) StorageBytes() uint64 {
	return uint64(d.Width) * uint64(d.Height) * uint64(d.Format.StorageBytesPerPixel()) * uint64(d.Mode.Layers())
}

// Texture is a texture owned by a share group.
type Texture interface {
	// ID returns the native texture id.
	ID() uint32

	// Desc returns the current storage description.
	Desc() TextureDesc

	// Upload copies a w x h rectangle of pixels, in the texture's format,
	// to (x, y) of layer 0. stride is the byte distance between source rows;
	// 0 means tightly packed.
	Upload(x, y, w, h uint32, pixels []byte, stride int) error

	// Reallocate replaces the storage. The id is unchanged and contents are
	// not preserved. On error the old storage is kept.
	Reallocate(desc TextureDesc) error

	// ReadPixels returns layer 0, tightly packed, in the texture's format.
	ReadPixels() ([]byte, error)

	// Image returns layer 0 as an image for sampling. The image is a
	// snapshot; later uploads do not show through.
	Image() (image.Image, error)

	// Release frees the storage. Release is idempotent.
	Release()
}

// registry holds registered backends. Native is preferred over software.
var registry = gpucontext.NewRegistry[Backend](
	gpucontext.WithPriority(BackendNative, BackendSoftware),
)

// Register registers a backend under its name, replacing any previous one.
// This is typically called from init() functions in backend packages.
func Register(b Backend) {
	registry.Register(b.Name(), func() Backend { return b })
}

// Unregister removes a backend. This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	if !registry.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return registry.Get(name), nil
}

// Available returns the names of the registered backends, sorted.
func Available() []string {
	names := registry.Available()
	slices.Sort(names)
	return names
}

// Best returns the highest-priority registered backend.
func Best() (Backend, error) {
	b := registry.Best()
	if b == nil {
		return nil, ErrBackendNotAvailable
	}
	return b, nil
}

// backendFor resolves name, where "" selects the best backend.
func backendFor(name string) (Backend, error) {
	if name == "" {
		return Best()
	}
	return Lookup(name)
}
