// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package results is the ordered channel that carries [webrender.ResultMsg]
// values from the frame producer to the GPU-owning consumer.
//
// The channel is FIFO and single-producer, single-consumer. It is unbounded
// by default; [WithCapacity] makes Send block while the queue is full.
//
//	tx, rx := results.New()
//	go func() {
//	    tx.Send(ctx, webrender.UpdateTextureCache(list))
//	    tx.Send(ctx, webrender.NewFrame(frame, counters))
//	    tx.Close()
//	}()
//	for {
//	    msg, err := rx.Recv(ctx)
//	    if errors.Is(err, results.ErrClosed) {
//	        break
//	    }
//	    // apply msg
//	}
package results

import (
	"context"
	"errors"
	"sync"

	"github.com/crbrz/webrender"
)

// ErrClosed is returned by Send after Close, and by Recv once the channel
// is closed and drained.
var ErrClosed = errors.New("results: channel closed")

// Option configures a channel created by New.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity bounds the channel to n queued messages. Send blocks while
// n messages are waiting. n <= 0 means unbounded.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.capacity = n
	}
}

// queue is the state shared by a Sender and its Receiver. readable and
// writable each hold at most one wake-up token; a token left behind by an
// earlier signal only causes one extra check of the queue.
type queue struct {
	mu       sync.Mutex
	items    []webrender.ResultMsg
	head     int
	capacity int
	closed   bool

	readable chan struct{}
	writable chan struct{}
}

// Sender is the producer end of a channel.
type Sender struct {
	q *queue
}

// Receiver is the consumer end of a channel.
type Receiver struct {
	q *queue
}

// New creates a channel and returns its two ends.
func New(opts ...Option) (*Sender, *Receiver) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	q := &queue{
		capacity: o.capacity,
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
	return &Sender{q: q}, &Receiver{q: q}
}

func wake(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func (q *queue) lenLocked() int { return len(q.items) - q.head }

// Send appends msg to the channel. On a bounded channel it blocks until
// there is room or ctx is done.
func (s *Sender) Send(ctx context.Context, msg webrender.ResultMsg) error {
	q := s.q
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
		if q.capacity == 0 || q.lenLocked() < q.capacity {
			q.items = append(q.items, msg)
			q.mu.Unlock()
			wake(q.readable)
			return nil
		}
		q.mu.Unlock()

		select {
		case <-q.writable:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close marks the end of the stream. Messages already sent are still
// delivered. Close is idempotent.
func (s *Sender) Close() {
	q := s.q
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	wake(q.readable)
	wake(q.writable)
}

// Recv returns the oldest message, blocking until one is available, the
// channel is closed and drained (ErrClosed), or ctx is done.
func (r *Receiver) Recv(ctx context.Context) (webrender.ResultMsg, error) {
	for {
		msg, ok, closed := r.q.pop()
		if ok {
			return msg, nil
		}
		if closed {
			return webrender.ResultMsg{}, ErrClosed
		}
		select {
		case <-r.q.readable:
		case <-ctx.Done():
			return webrender.ResultMsg{}, ctx.Err()
		}
	}
}

// TryRecv returns the oldest message without blocking. ok is false when
// the channel is empty.
func (r *Receiver) TryRecv() (msg webrender.ResultMsg, ok bool) {
	msg, ok, _ = r.q.pop()
	return msg, ok
}

// Len returns the number of queued messages.
func (r *Receiver) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return r.q.lenLocked()
}

// Closed reports whether the sender has closed the channel. Queued
// messages may remain.
func (r *Receiver) Closed() bool {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return r.q.closed
}

func (q *queue) pop() (msg webrender.ResultMsg, ok, closed bool) {
	q.mu.Lock()
	if q.lenLocked() == 0 {
		closed = q.closed
		q.mu.Unlock()
		return msg, false, closed
	}
	msg = q.items[q.head]
	q.items[q.head] = webrender.ResultMsg{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	q.mu.Unlock()
	wake(q.writable)
	return msg, true, false
}
