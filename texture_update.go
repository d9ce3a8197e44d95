// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"fmt"
	"iter"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// TextureUpdateOp is one texture-cache mutation. It is one of
// [CreateOp], [UpdateOp] or [GrowOp]; the set is closed.
type TextureUpdateOp interface {
	fmt.Stringer
	isTextureUpdateOp()
}

// CreateOp allocates device storage for a new cache texture.
// Pixels is optional initial content covering the whole texture; nil
// leaves the contents undefined.
type CreateOp struct {
	Width  uint32
	Height uint32
	Format ImageFormat
	Filter TextureFilter
	Mode   RenderTargetMode
	Pixels []byte
}

// UpdateOp blits a sub-rectangle into an existing cache texture.
// Stride is the byte distance between rows of Pixels; 0 means rows are
// tightly packed.
type UpdateOp struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
	Pixels []byte
	Stride uint32
}

// GrowOp reallocates storage for an existing cache texture. The id stays
// the same; prior contents are not guaranteed to survive.
type GrowOp struct {
	Width  uint32
	Height uint32
	Format ImageFormat
	Filter TextureFilter
	Mode   RenderTargetMode
}

func (CreateOp) isTextureUpdateOp() {}
func (UpdateOp) isTextureUpdateOp() {}
func (GrowOp) isTextureUpdateOp()   {}

func (op CreateOp) String() string {
	return fmt.Sprintf("Create(%dx%d %s %s %s pixels=%d)",
		op.Width, op.Height, op.Format, op.Filter, op.Mode, len(op.Pixels))
}

func (op UpdateOp) String() string {
	return fmt.Sprintf("Update(%d,%d %dx%d pixels=%d stride=%d)",
		op.X, op.Y, op.Width, op.Height, len(op.Pixels), op.Stride)
}

func (op GrowOp) String() string {
	return fmt.Sprintf("Grow(%dx%d %s %s %s)", op.Width, op.Height, op.Format, op.Filter, op.Mode)
}

// RowStride returns the byte distance between rows for a texture whose
// pixels are bpp bytes wide.
func (op UpdateOp) RowStride(bpp int) int {
	if op.Stride != 0 {
		return int(op.Stride)
	}
	return int(op.Width) * bpp
}

// RequiredBytes returns the minimum length of Pixels for bpp-byte pixels.
func (op UpdateOp) RequiredBytes(bpp int) int {
	if op.Width == 0 || op.Height == 0 {
		return 0
	}
	return op.RowStride(bpp)*(int(op.Height)-1) + int(op.Width)*bpp
}

// TextureUpdate pairs a cache texture id with the operation to apply to it.
type TextureUpdate struct {
	ID CacheTextureID
	Op TextureUpdateOp
}

// TextureUpdateList is an append-only, ordered log of texture updates.
// Entries are never reordered, merged or dropped: the consumer replays the
// whole list, in order, exactly once.
//
// The zero value is an empty list ready to use. Once a list has been sent
// to the consumer the producer must not push to it again. Pixel slices are
// shared, not copied, and must not be modified after Push.
type TextureUpdateList struct {
	updates []TextureUpdate
}

// NewTextureUpdateList returns an empty list with room for n updates.
func NewTextureUpdateList(n int) *TextureUpdateList {
	return &TextureUpdateList{updates: make([]TextureUpdate, 0, n)}
}

// Push appends an update.
func (l *TextureUpdateList) Push(u TextureUpdate) {
	if u.Op == nil {
		panic(fmt.Sprintf("webrender: push of nil operation for %s", u.ID))
	}
	l.updates = append(l.updates, u)
}

// Create appends a CreateOp for id.
func (l *TextureUpdateList) Create(id CacheTextureID, op CreateOp) {
	l.Push(TextureUpdate{ID: id, Op: op})
}

// Update appends an UpdateOp for id.
func (l *TextureUpdateList) Update(id CacheTextureID, op UpdateOp) {
	l.Push(TextureUpdate{ID: id, Op: op})
}

// Grow appends a GrowOp for id.
func (l *TextureUpdateList) Grow(id CacheTextureID, op GrowOp) {
	l.Push(TextureUpdate{ID: id, Op: op})
}

// Len returns the number of updates.
func (l *TextureUpdateList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.updates)
}

// Updates returns a copy of the updates in push order.
func (l *TextureUpdateList) Updates() []TextureUpdate {
	if l == nil {
		return nil
	}
	return slices.Clone(l.updates)
}

// All iterates the updates in push order.
func (l *TextureUpdateList) All() iter.Seq2[int, TextureUpdate] {
	return func(yield func(int, TextureUpdate) bool) {
		if l == nil {
			return
		}
		for i, u := range l.updates {
			if !yield(i, u) {
				return
			}
		}
	}
}

// UpdateError describes the update that broke the update-log contract.
type UpdateError struct {
	Index int
	ID    CacheTextureID
	Op    TextureUpdateOp
	Err   error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update %d %s %s: %v", e.Index, e.ID, e.Op, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// UpdateValidator checks a sequence of update lists against the
// create-before-use rule before they reach the GPU layer.
// It is not safe for concurrent use.
type UpdateValidator struct {
	live   mapset.Set[CacheTextureID]
	format map[CacheTextureID]ImageFormat
}

// NewUpdateValidator returns a validator with no live textures.
func NewUpdateValidator() *UpdateValidator {
	return &UpdateValidator{
		live:   mapset.NewThreadUnsafeSet[CacheTextureID](),
		format: make(map[CacheTextureID]ImageFormat),
	}
}

// Check validates list against the textures created by lists checked
// earlier. Update and Grow must name an id already created; Create must
// not name a live id. Pixel payloads must cover the rectangle they
// describe. On success the textures created by list become live; on
// failure nothing is recorded and the returned error is an *UpdateError.
func (v *UpdateValidator) Check(list *TextureUpdateList) error {
	live := v.live.Clone()
	format := make(map[CacheTextureID]ImageFormat, len(v.format))
	for id, f := range v.format {
		format[id] = f
	}

	for i, u := range list.All() {
		if err := checkOp(live, format, u); err != nil {
			return &UpdateError{Index: i, ID: u.ID, Op: u.Op, Err: err}
		}
	}

	v.live = live
	v.format = format
	return nil
}

// MustCheck is like Check but panics on a contract violation.
func (v *UpdateValidator) MustCheck(list *TextureUpdateList) {
	if err := v.Check(list); err != nil {
		panic("webrender: " + err.Error())
	}
}

// Forget drops id from the live set, as when the cache evicts it.
func (v *UpdateValidator) Forget(id CacheTextureID) {
	v.live.Remove(id)
	delete(v.format, id)
}

// IsLive reports whether id has been created and not forgotten.
func (v *UpdateValidator) IsLive(id CacheTextureID) bool {
	return v.live.Contains(id)
}

func checkOp(live mapset.Set[CacheTextureID], format map[CacheTextureID]ImageFormat, u TextureUpdate) error {
	switch op := u.Op.(type) {
	case CreateOp:
		if live.Contains(u.ID) {
			return ErrDuplicateTexture
		}
		if !op.Format.IsValid() {
			return ErrInvalidFormat
		}
		if op.Pixels != nil {
			need := int(op.Width) * int(op.Height) * op.Format.BytesPerPixel()
			if len(op.Pixels) < need {
				return fmt.Errorf("%w: have %d bytes, need %d", ErrShortPixels, len(op.Pixels), need)
			}
		}
		live.Add(u.ID)
		format[u.ID] = op.Format
	case UpdateOp:
		if !live.Contains(u.ID) {
			return ErrUnknownTexture
		}
		need := op.RequiredBytes(format[u.ID].BytesPerPixel())
		if len(op.Pixels) < need {
			return fmt.Errorf("%w: have %d bytes, need %d", ErrShortPixels, len(op.Pixels), need)
		}
	case GrowOp:
		if !live.Contains(u.ID) {
			return ErrUnknownTexture
		}
		if !op.Format.IsValid() {
			return ErrInvalidFormat
		}
		format[u.ID] = op.Format
	default:
		return fmt.Errorf("unknown operation %T", u.Op)
	}
	return nil
}
