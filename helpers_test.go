// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

import "testing"

// mustPanic fails the test if fn returns without panicking.
func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}
