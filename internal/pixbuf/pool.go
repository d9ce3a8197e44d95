// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pixbuf

import (
	"sync"

	"github.com/crbrz/webrender"
)

// Pool recycles Bufs of identical shape. Textures that grow and shrink
// between a few sizes reuse storage instead of reallocating.
//
// All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Buf
	maxSize int
}

type poolKey struct {
	width, height, layers int
	format                webrender.ImageFormat
}

// NewPool returns a pool keeping at most maxPerBucket buffers of each
// shape. 0 means no limit.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Buf),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of the given shape, reusing a pooled one
// when available.
func (p *Pool) Get(width, height, layers int, format webrender.ImageFormat) (*Buf, error) {
	key := poolKey{width: width, height: height, layers: layers, format: format}
	p.mu.Lock()
	if bucket := p.buckets[key]; len(bucket) > 0 {
		b := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		b.Clear()
		return b, nil
	}
	p.mu.Unlock()
	return New(width, height, layers, format)
}

// Put returns b to the pool. The caller must not use b afterwards.
func (p *Pool) Put(b *Buf) {
	if b == nil {
		return
	}
	key := poolKey{width: b.width, height: b.height, layers: b.layers, format: b.format}
	p.mu.Lock()
	defer p.mu.Unlock()
	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, b)
}

// Len returns the number of pooled buffers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}
