// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !IsBcryptHash(h) {
		t.Fatalf("expected bcrypt hash, got %q", h)
	}
	if err := CheckPassword(h, "admin123"); err != nil {
		t.Fatalf("CheckPassword with right password: %v", err)
	}
	if err := CheckPassword(h, "nope"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPassword_KeepsExistingHash(t *testing.T) {
	h, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	again, err := HashPassword(h)
	if err != nil {
		t.Fatalf("HashPassword(hash): %v", err)
	}
	if again != h {
		t.Fatalf("existing hash should be returned unchanged")
	}
}
