// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestMapDBError_DuplicateStrings(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"mysql duplicate entry", errors.New("Error 1062: Duplicate entry 'x' for key 'PRIMARY'")},
		{"postgres unique violation", errors.New("ERROR: duplicate key value violates unique constraint \"hosts_name_key\" (SQLSTATE 23505)")},
		{"sqlite unique constraint", errors.New("UNIQUE constraint failed: hosts.name")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if mapped := MapDBError(c.err); !errors.Is(mapped, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got: %v", mapped)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	if !errors.Is(MapDBError(sql.ErrNoRows), ErrNotFound) {
		t.Fatalf("expected ErrNotFound for sql.ErrNoRows")
	}
	wrapped := fmt.Errorf("scan: %w", sql.ErrNoRows)
	if !errors.Is(MapDBError(wrapped), ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrapped sql.ErrNoRows")
	}
}

func TestMapDBError_Passthrough(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
	e := errors.New("connection refused")
	if got := MapDBError(e); got != e {
		t.Fatalf("expected original error, got %v", got)
	}
}
