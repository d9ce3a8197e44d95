// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import (
	"fmt"
	"time"
)

// ResourceCounter counts resources of one kind and their payload bytes.
type ResourceCounter struct {
	Count int
	Bytes int
}

// Add records one resource of the given size.
func (c *ResourceCounter) Add(bytes int) {
	c.Count++
	c.Bytes += bytes
}

// BackendProfileCounters are the producer-side timings and resource counts
// attached to a frame.
type BackendProfileCounters struct {
	TotalTime      time.Duration
	FontTemplates  ResourceCounter
	ImageTemplates ResourceCounter
	TextureUpdates ResourceCounter
}

// RecordUpdates counts the operations in list and the pixel bytes they carry.
func (c *BackendProfileCounters) RecordUpdates(list *TextureUpdateList) {
	for _, u := range list.All() {
		switch op := u.Op.(type) {
		case CreateOp:
			c.TextureUpdates.Add(len(op.Pixels))
		case UpdateOp:
			c.TextureUpdates.Add(len(op.Pixels))
		default:
			c.TextureUpdates.Add(0)
		}
	}
}

// String returns a one-line summary.
func (c BackendProfileCounters) String() string {
	return fmt.Sprintf("total=%s fonts=%d/%dB images=%d/%dB updates=%d/%dB",
		c.TotalTime,
		c.FontTemplates.Count, c.FontTemplates.Bytes,
		c.ImageTemplates.Count, c.ImageTemplates.Bytes,
		c.TextureUpdates.Count, c.TextureUpdates.Bytes)
}
