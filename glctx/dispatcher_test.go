// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glctx

import (
	"errors"
	"sync"
	"testing"
)

func TestThreadDispatcherOrder(t *testing.T) {
	d := NewThreadDispatcher()
	defer d.Close()

	const n = 1000
	var got []int
	for i := range n {
		if err := d.Dispatch(func() { got = append(got, i) }); err != nil {
			t.Fatalf("Dispatch(%d) error = %v", i, err)
		}
	}
	if err := d.Call(func() error { return nil }); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(got) != n {
		t.Fatalf("ran %d functions, want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("function %d ran at position %d", v, i)
		}
	}
}

func TestThreadDispatcherSingleThread(t *testing.T) {
	d := NewThreadDispatcher()
	defer d.Close()

	if d.OnThread() {
		t.Error("OnThread() = true on the test goroutine")
	}

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = d.Call(func() error {
					mu.Lock()
					seen[threadID()] = true
					mu.Unlock()
					if !d.OnThread() {
						t.Error("OnThread() = false inside the dispatcher")
					}
					return nil
				})
			}
		}()
	}
	wg.Wait()
	if len(seen) != 1 {
		t.Errorf("work ran on %d threads, want 1", len(seen))
	}
}

func TestThreadDispatcherCallNested(t *testing.T) {
	d := NewThreadDispatcher()
	defer d.Close()

	want := errors.New("inner")
	err := d.Call(func() error {
		return d.Call(func() error { return want })
	})
	if !errors.Is(err, want) {
		t.Errorf("Call() error = %v, want %v", err, want)
	}
	err = d.Call(func() error {
		return dispatchCall(d, func() error { return want })
	})
	if !errors.Is(err, want) {
		t.Errorf("dispatchCall() nested error = %v, want %v", err, want)
	}
}

func TestThreadIDOnDispatcher(t *testing.T) {
	d := NewThreadDispatcher()
	defer d.Close()

	var first, second int64
	_ = d.Call(func() error { first = threadID(); return nil })
	_ = d.Call(func() error { second = threadID(); return nil })
	if first == 0 || first != second {
		t.Errorf("threadID() on the dispatcher = %d then %d, want one non-zero id", first, second)
	}
	if got := threadID(); got == first {
		t.Errorf("threadID() on the test goroutine = %d, same as the dispatcher", got)
	}
}

func TestThreadDispatcherClose(t *testing.T) {
	d := NewThreadDispatcher()

	ran := 0
	for range 10 {
		_ = d.Dispatch(func() { ran++ })
	}
	d.Close()
	if ran != 10 {
		t.Errorf("Close() ran %d queued functions, want 10", ran)
	}
	d.Close()

	if err := d.Dispatch(func() {}); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("Dispatch() after Close error = %v, want %v", err, ErrDispatcherClosed)
	}
	if err := d.Call(func() error { return nil }); !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("Call() after Close error = %v, want %v", err, ErrDispatcherClosed)
	}
}
