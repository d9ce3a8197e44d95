// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/crbrz/webrender"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// one file to settle before reporting it.
const DefaultDebounce = 50 * time.Millisecond

// Sink receives RefreshShader messages. *results.Sender implements it.
type Sink interface {
	Send(ctx context.Context, msg webrender.ResultMsg) error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the settle delay. 0 reports every event at once.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// Watcher sends a RefreshShader message for every shader source written or
// created in a directory. Paths in the messages are relative to that
// directory.
type Watcher struct {
	dir      string
	sink     Sink
	debounce time.Duration
	fs       *fsnotify.Watcher
}

// NewWatcher starts watching dir. Events are delivered once Run is called.
func NewWatcher(dir string, sink Sink, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("shader: watch %s: %w", dir, err)
	}
	w := &Watcher{dir: filepath.Clean(dir), sink: sink, debounce: DefaultDebounce, fs: fw}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run forwards changes until ctx is done or the sink fails. It closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	pending := make(map[string]time.Time)
	var timer *time.Timer
	var tick <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	change := fsnotify.Write | fsnotify.Create
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Op&change == 0 || filepath.Ext(ev.Name) != Ext {
				continue
			}
			name := w.shaderPath(ev.Name)
			slogger().Debug("shader: change", "path", name, "op", ev.Op.String())
			if w.debounce <= 0 {
				if err := w.send(ctx, name); err != nil {
					return err
				}
				continue
			}
			pending[name] = time.Now().Add(w.debounce)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				tick = timer.C
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slogger().Warn("shader: watch error", "dir", w.dir, "err", err)

		case now := <-tick:
			var next time.Time
			for p, due := range pending {
				if !due.After(now) {
					delete(pending, p)
					if err := w.send(ctx, p); err != nil {
						return err
					}
				} else if next.IsZero() || due.Before(next) {
					next = due
				}
			}
			if next.IsZero() {
				timer, tick = nil, nil
			} else {
				timer.Reset(next.Sub(now))
			}
		}
	}
}

// shaderPath names p relative to the watched directory, the form
// Cache.Reload resolves against the same directory.
func (w *Watcher) shaderPath(p string) string {
	rel, err := filepath.Rel(w.dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) send(ctx context.Context, path string) error {
	if err := w.sink.Send(ctx, webrender.RefreshShader(path)); err != nil {
		return fmt.Errorf("shader: send refresh for %s: %w", path, err)
	}
	return nil
}

// Close stops watching. Run returns once its pending events drain.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
