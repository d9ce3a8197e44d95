// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texcache

import (
	"slices"
	"testing"
)

func TestLRUList(t *testing.T) {
	var l lruList[int]
	if _, ok := l.Oldest(); ok {
		t.Error("Oldest() on empty list reported a key")
	}

	n1 := l.PushFront(1)
	n2 := l.PushFront(2)
	n3 := l.PushFront(3)
	if got := l.Keys(); !slices.Equal(got, []int{3, 2, 1}) {
		t.Errorf("Keys() = %v, want [3 2 1]", got)
	}

	l.MoveToFront(n1)
	if got := l.Keys(); !slices.Equal(got, []int{1, 3, 2}) {
		t.Errorf("Keys() after MoveToFront(1) = %v, want [1 3 2]", got)
	}
	if k, _ := l.Oldest(); k != 2 {
		t.Errorf("Oldest() = %d, want 2", k)
	}

	l.Remove(n2)
	l.MoveToFront(n3)
	if got := l.Keys(); !slices.Equal(got, []int{3, 1}) {
		t.Errorf("Keys() = %v, want [3 1]", got)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}

	l.Remove(n1)
	l.Remove(n3)
	if l.Len() != 0 || l.head != nil || l.tail != nil {
		t.Errorf("list not empty after removing all nodes: len=%d", l.Len())
	}
}
