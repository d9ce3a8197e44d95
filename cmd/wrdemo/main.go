// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command wrdemo runs a producer and a renderer over a result channel and
// writes the final drawable to a PNG file.
//
// Usage:
//
//	wrdemo -config webrender.toml -frames 30 -output frame.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/crbrz/webrender"
	"github.com/crbrz/webrender/glctx"
	_ "github.com/crbrz/webrender/glctx/native"
	_ "github.com/crbrz/webrender/glctx/software"
	"github.com/crbrz/webrender/renderer"
	"github.com/crbrz/webrender/results"
	"github.com/crbrz/webrender/shader"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "webrender.toml", "configuration file")
		backend    = flag.String("backend", "", "context backend (overrides the config)")
		frames     = flag.Int("frames", 30, "frames to render")
		output     = flag.String("output", "wrdemo.png", "output file")
		scale      = flag.Float64("scale", 1, "output scale factor")
	)
	flag.Parse()

	cfg, err := webrender.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if cfg.LoggingEnabled() {
		level, _ := cfg.Level()
		webrender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, stats, err := run(ctx, cfg, *frames)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := savePNG(*output, img, *scale); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Rendered %d frames (%d drawn, %d batches skipped) to %s\n",
		stats.Frames, stats.Drawn, stats.Skipped, *output)
}

// run renders frames with a producer and the renderer running
// concurrently, and returns the final drawable.
func run(ctx context.Context, cfg webrender.Config, frames int) (*image.RGBA, renderer.Stats, error) {
	d := glctx.NewThreadDispatcher()
	defer d.Close()

	size := glctx.Size{W: cfg.Width, H: cfg.Height}
	gl, err := glctx.NewRootContext(cfg.Backend, size, glctx.DefaultAttributes(), d)
	if err != nil {
		return nil, renderer.Stats{}, err
	}
	defer gl.Destroy()
	log.Printf("Using %s backend on %s\n", gl.Backend(), gl.Info().Adapter.Name)

	tx, rx := results.New(results.WithCapacity(cfg.ChannelCapacity))
	shaders := shader.NewCache(cfg.Shaders.Dir)
	if err := shaders.LoadAll(); err != nil {
		webrender.Logger().Warn("wrdemo: some shaders failed to compile", "err", err)
	}
	r := renderer.New(gl, rx,
		renderer.WithTextureBudget(cfg.TextureMemoryBytes()),
		renderer.WithShaders(shaders),
		renderer.WithValidation(),
	)
	defer r.Close()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Shaders.Watch {
		w, err := shader.NewWatcher(cfg.Shaders.Dir, tx)
		if err != nil {
			return nil, renderer.Stats{}, err
		}
		wctx, cancel := context.WithCancel(gctx)
		defer cancel()
		go func() {
			err := w.Run(wctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, results.ErrClosed) {
				webrender.Logger().Warn("wrdemo: shader watcher stopped", "err", err)
			}
		}()
	}

	g.Go(func() error {
		defer tx.Close()
		s := &scene{width: cfg.Width, height: cfg.Height, frames: frames}
		return s.run(gctx, tx)
	})
	g.Go(func() error {
		return r.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return nil, r.LastStats(), err
	}

	img, err := r.Snapshot()
	return img, r.LastStats(), err
}

func savePNG(path string, img *image.RGBA, scale float64) error {
	var out image.Image = img
	if scale != 1 {
		if scale <= 0 {
			return fmt.Errorf("invalid scale %g", scale)
		}
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, max(1, int(float64(b.Dx())*scale)), max(1, int(float64(b.Dy())*scale))))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		out = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
