// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds test doubles shared by the service, HTTP and CLI
// tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/toeirei/stratus/internal/db"
)

// NewStore opens an in-memory SQLite store private to t and installs it as
// db.Default() until the test ends. prefix keeps names unique across
// packages sharing the sqlite cache.
func NewStore(t testing.TB, prefix string) db.Store {
	t.Helper()
	prev := db.Default()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := db.New("sqlite", "file:"+prefix+"_"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
		db.SetDefault(prev)
	})
	return s
}
