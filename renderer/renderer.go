// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package renderer is the consumer side of the frame result channel.
//
// A Renderer owns a GL context. It drains ResultMsg values in order,
// replays texture update lists into its texture cache, reloads shaders and
// draws each new frame's batches. Because updates arrive on the channel
// before the frame that uses them, a frame never samples a texture its
// updates have not yet produced.
//
// Basic usage:
//
//	tx, rx := results.New()
//	r := renderer.New(ctx, rx)
//	defer r.Close()
//	go producer(tx)
//	err := r.Run(context.Background())
package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	"github.com/crbrz/webrender/results"
	"github.com/crbrz/webrender/shader"
	"github.com/crbrz/webrender/texcache"
)

// Stats describe the most recent frame and running totals.
type Stats struct {
	// Frames counts NewFrame messages accepted.
	Frames uint64
	// Drawn counts frames that carried a built frame and were drawn.
	Drawn uint64
	// UpdateLists counts texture update lists replayed.
	UpdateLists uint64
	// ShaderReloads and ShaderErrors count RefreshShader outcomes.
	ShaderReloads uint64
	ShaderErrors  uint64

	// Batches and Quads were drawn in the last frame.
	Batches int
	Quads   int
	// Skipped batches in the last frame named a texture that did not
	// resolve or left a gap before a bound sampler slot. Unresolved counts
	// the textures that did not resolve.
	Skipped    int
	Unresolved int
	// FrameTime is the consumer time spent on the last frame.
	FrameTime time.Duration

	// Counters are the producer's counters for the last frame.
	Counters webrender.BackendProfileCounters
}

// Renderer replays producer messages on a GL context.
type Renderer struct {
	ctx       *glctx.ContextWrapper
	rx        *results.Receiver
	cache     *texcache.Cache
	ownsCache bool
	shaders   *shader.Cache
	validator *webrender.UpdateValidator

	mu      sync.Mutex
	last    *webrender.RendererFrame
	epochs  map[webrender.PipelineID]webrender.Epoch
	changed chan struct{}
	stats   Stats
}

// New returns a renderer drawing into ctx and reading from rx. rx may be
// nil when messages are fed through Process.
func New(ctx *glctx.ContextWrapper, rx *results.Receiver, opts ...Option) *Renderer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	r := &Renderer{
		ctx:     ctx,
		rx:      rx,
		cache:   o.cache,
		shaders: o.shaders,
		epochs:  make(map[webrender.PipelineID]webrender.Epoch),
		changed: make(chan struct{}),
	}
	if r.cache == nil {
		var copts []texcache.Option
		if o.budget != 0 {
			copts = append(copts, texcache.WithBudget(o.budget))
		}
		r.cache = texcache.New(ctx, copts...)
		r.ownsCache = true
	}
	if o.validate {
		r.validator = webrender.NewUpdateValidator()
	}
	return r
}

// Textures returns the renderer's texture cache.
func (r *Renderer) Textures() *texcache.Cache { return r.cache }

// Run processes messages until the channel is closed and drained, ctx is
// done, or a message fails. A closed channel is a clean shutdown and
// returns nil.
func (r *Renderer) Run(ctx context.Context) error {
	if r.rx == nil {
		return errors.New("renderer: no receiver")
	}
	for {
		msg, err := r.rx.Recv(ctx)
		if errors.Is(err, results.ErrClosed) {
			slogger().Info("renderer: channel closed", "frames", r.LastStats().Frames)
			return nil
		}
		if err != nil {
			return err
		}
		if err := r.Process(msg); err != nil {
			return err
		}
	}
}

// Process handles one message. Messages must be processed in the order
// they were sent.
func (r *Renderer) Process(msg webrender.ResultMsg) error {
	switch msg.Kind() {
	case webrender.ResultUpdateTextureCache:
		list, _ := msg.Updates()
		return r.applyUpdates(list)
	case webrender.ResultRefreshShader:
		path, _ := msg.ShaderPath()
		r.refreshShader(path)
		return nil
	case webrender.ResultNewFrame:
		frame, counters, _ := msg.Frame()
		return r.newFrame(frame, counters)
	default:
		return fmt.Errorf("renderer: invalid message kind %d", msg.Kind())
	}
}

func (r *Renderer) applyUpdates(list *webrender.TextureUpdateList) error {
	if r.validator != nil {
		if err := r.validator.Check(list); err != nil {
			return fmt.Errorf("renderer: rejected update list: %w", err)
		}
	}
	err := r.cache.Apply(list)
	if err != nil && r.validator != nil {
		// Creates after the failing update never happened.
		for _, u := range list.All() {
			if _, ok := u.Op.(webrender.CreateOp); ok && !r.cache.Contains(u.ID) {
				r.validator.Forget(u.ID)
			}
		}
	}
	r.mu.Lock()
	r.stats.UpdateLists++
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	slogger().Debug("renderer: updates applied", "ops", list.Len())
	return nil
}

func (r *Renderer) refreshShader(path string) {
	if r.shaders == nil {
		slogger().Debug("renderer: shader refresh ignored", "path", path)
		return
	}
	_, err := r.shaders.Reload(path)
	r.mu.Lock()
	if err != nil {
		r.stats.ShaderErrors++
	} else {
		r.stats.ShaderReloads++
	}
	r.mu.Unlock()
	if err != nil {
		slogger().Warn("renderer: shader reload failed, keeping previous module", "path", path, "err", err)
	}
}

func (r *Renderer) newFrame(rf *webrender.RendererFrame, counters webrender.BackendProfileCounters) error {
	r.mu.Lock()
	prev := r.last
	r.mu.Unlock()
	if err := rf.CheckEpochsAfter(prev); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	start := time.Now()
	var fs frameStats
	if f := rf.Frame(); f != nil {
		var err error
		if fs, err = r.draw(f); err != nil {
			return fmt.Errorf("renderer: draw: %w", err)
		}
	}
	elapsed := time.Since(start)

	r.mu.Lock()
	r.last = rf
	for _, p := range rf.Pipelines() {
		e, _ := rf.Epoch(p)
		r.epochs[p] = e
	}
	r.stats.Frames++
	if rf.Frame() != nil {
		r.stats.Drawn++
	}
	r.stats.Batches = fs.batches
	r.stats.Quads = fs.quads
	r.stats.Skipped = fs.skipped
	r.stats.Unresolved = fs.unresolved
	r.stats.FrameTime = elapsed
	r.stats.Counters = counters
	close(r.changed)
	r.changed = make(chan struct{})
	r.mu.Unlock()

	slogger().Debug("renderer: frame",
		"batches", fs.batches,
		"skipped", fs.skipped,
		"animating", rf.IsAnimating(),
		"time", elapsed)
	return nil
}

type frameStats struct {
	batches, quads      int
	skipped, unresolved int
}

func (r *Renderer) draw(f *webrender.Frame) (frameStats, error) {
	var fs frameStats
	size := glctx.Size{W: f.Width, H: f.Height}
	if size.Valid() && r.ctx.Info().Size != size {
		if err := r.ctx.Resize(size); err != nil {
			return fs, err
		}
	}
	bounds := r.ctx.Info().Size.Rect()

	cmds := []glctx.Command{
		glctx.Viewport{Rect: bounds},
		glctx.ClearColor{Color: f.Background},
		glctx.Clear{Mask: glctx.ClearColorBuffer},
	}
	for _, cmd := range cmds {
		if err := r.ctx.Exec(cmd); err != nil {
			return fs, err
		}
	}

	blend := webrender.BlendNormal
	for i := range f.Batches {
		b := &f.Batches[i]
		if gapped(b.Textures) {
			fs.skipped++
			slogger().Warn("renderer: batch skipped, sampler slots not contiguous from Color0", "batch", i)
			continue
		}
		textures, missing := r.resolve(b.Textures)
		if missing > 0 {
			fs.skipped++
			fs.unresolved += missing
			slogger().Warn("renderer: batch skipped, texture not resolved",
				"batch", i, "textures", missing)
			continue
		}
		if b.Blend != blend {
			if err := r.ctx.Exec(glctx.BlendMode{Mode: b.Blend}); err != nil {
				return fs, err
			}
			blend = b.Blend
		}
		if err := r.ctx.Exec(glctx.DrawQuads{Textures: textures, Quads: b.Quads}); err != nil {
			return fs, err
		}
		fs.batches++
		fs.quads += len(b.Quads)
	}
	if blend != webrender.BlendNormal {
		if err := r.ctx.Exec(glctx.BlendMode{Mode: webrender.BlendNormal}); err != nil {
			return fs, err
		}
	}
	return fs, r.ctx.Exec(glctx.Finish{})
}

// gapped reports whether a valid source follows an Invalid slot. A batch
// either samples nothing or binds its primary texture to Color0.
func gapped(bt webrender.BatchTextures) bool {
	for _, s := range bt.Colors[bt.Used():] {
		if s.IsValid() {
			return true
		}
	}
	return false
}

// resolve maps the batch's sources to textures and counts the valid
// sources that did not resolve.
func (r *Renderer) resolve(bt webrender.BatchTextures) ([webrender.ColorSamplerCount]glctx.Texture, int) {
	var out [webrender.ColorSamplerCount]glctx.Texture
	missing := 0
	for i, src := range bt.Colors {
		if !src.IsValid() {
			continue
		}
		tex, ok := r.cache.Resolve(src)
		if !ok {
			slogger().Warn("renderer: unresolved texture", "sampler", webrender.ColorSampler(i).String(), "source", src.String())
			missing++
			continue
		}
		out[i] = tex
	}
	return out, missing
}

// Evict frees a cache texture and forgets it for validation. The producer
// must be told so it stops referencing id.
func (r *Renderer) Evict(id webrender.CacheTextureID) bool {
	ok := r.cache.Evict(id)
	if ok && r.validator != nil {
		r.validator.Forget(id)
	}
	return ok
}

// CurrentEpoch returns the epoch of pipeline in the last accepted frame.
func (r *Renderer) CurrentEpoch(pipeline webrender.PipelineID) (webrender.Epoch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.epochs[pipeline]
	return e, ok
}

// WaitForEpoch blocks until a frame with at least epoch for pipeline has
// been accepted, or ctx is done.
func (r *Renderer) WaitForEpoch(ctx context.Context, pipeline webrender.PipelineID, epoch webrender.Epoch) error {
	for {
		r.mu.Lock()
		e, ok := r.epochs[pipeline]
		changed := r.changed
		r.mu.Unlock()
		if ok && e >= epoch {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// LastFrame returns the last accepted frame, or nil.
func (r *Renderer) LastFrame() *webrender.RendererFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// LastStats returns the statistics as of the last processed message.
func (r *Renderer) LastStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Snapshot reads the drawable back as an image.
func (r *Renderer) Snapshot() (*image.RGBA, error) {
	bounds := r.ctx.Info().Size.Rect()
	reply := make(chan glctx.PixelsResult, 1)
	if err := r.ctx.Exec(glctx.ReadPixels{Rect: bounds, Reply: reply}); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	res := <-reply
	if res.Err != nil {
		return nil, fmt.Errorf("renderer: %w", res.Err)
	}
	return &image.RGBA{Pix: res.Pixels, Stride: bounds.Dx() * 4, Rect: bounds}, nil
}

// Close frees the texture cache if the renderer created it. The context
// stays with its owner.
func (r *Renderer) Close() {
	if r.ownsCache {
		r.cache.Close()
	}
}

func slogger() *slog.Logger { return webrender.Logger() }
