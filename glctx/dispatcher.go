// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Dispatcher marshals work onto the thread that owns a context. Work
// handed to one Dispatcher from one goroutine runs in submission order.
type Dispatcher interface {
	// Dispatch queues fn. It returns ErrDispatcherClosed once the
	// dispatcher no longer accepts work.
	Dispatch(fn func()) error
}

// threadBound is implemented by dispatchers that can tell whether the
// caller already runs on their thread.
type threadBound interface {
	OnThread() bool
}

// ThreadDispatcher runs queued functions on one goroutine locked to its OS
// thread. The queue is unbounded; Dispatch never blocks.
type ThreadDispatcher struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
	tid  atomic.Int64
}

// NewThreadDispatcher starts the dispatcher goroutine and waits until it
// has locked its thread.
func NewThreadDispatcher() *ThreadDispatcher {
	d := &ThreadDispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	started := make(chan struct{})
	go d.loop(started)
	<-started
	return d
}

func (d *ThreadDispatcher) loop(started chan<- struct{}) {
	defer close(d.done)
	runtime.LockOSThread()
	// The thread stays locked; contexts bound to it are never reused by
	// other goroutines.
	d.tid.Store(threadID())
	close(started)

	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-d.wake
	}
}

// Dispatch queues fn to run on the dispatcher thread.
func (d *ThreadDispatcher) Dispatch(fn func()) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
	d.signal()
	return nil
}

// Call runs fn on the dispatcher thread and waits for its result. Called
// from the dispatcher thread itself it runs fn directly.
func (d *ThreadDispatcher) Call(fn func() error) error {
	if d.OnThread() {
		return fn()
	}
	reply := make(chan error, 1)
	if err := d.Dispatch(func() { reply <- fn() }); err != nil {
		return err
	}
	return <-reply
}

// OnThread reports whether the caller runs on the dispatcher thread.
func (d *ThreadDispatcher) OnThread() bool {
	tid := threadID()
	return tid != 0 && tid == d.tid.Load()
}

// Close stops accepting work, runs what is already queued and waits for
// the goroutine to exit. Close is idempotent. It must not be called from
// the dispatcher thread.
func (d *ThreadDispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.signal()
	<-d.done
}

func (d *ThreadDispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// dispatchCall runs fn through d and waits for the result.
func dispatchCall(d Dispatcher, fn func() error) error {
	if tb, ok := d.(threadBound); ok && tb.OnThread() {
		return fn()
	}
	reply := make(chan error, 1)
	if err := d.Dispatch(func() { reply <- fn() }); err != nil {
		return err
	}
	return <-reply
}
