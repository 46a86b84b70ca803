// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"
)

// newTestStore opens a migrated in-memory sqlite store private to the test
// and restores the package default afterwards.
func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	return newTestStoreNamed(t, t.Name())
}

func newTestStoreNamed(t *testing.T, name string) *BunStore {
	t.Helper()
	prev := store
	dsn := "file:" + name + "?mode=memory&cache=shared"
	s, err := New("sqlite", dsn)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	bs, ok := s.(*BunStore)
	if !ok {
		t.Fatalf("store is not *BunStore")
	}
	t.Cleanup(func() {
		_ = bs.Close()
		store = prev
	})
	return bs
}

func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
