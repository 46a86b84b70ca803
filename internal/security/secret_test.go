// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecretRedactionAndJSON(t *testing.T) {
	s := FromString("supersecret")
	if fmt.Sprintf("%v", s) != "[SECRET]" {
		t.Fatalf("unexpected fmt output: %q", fmt.Sprintf("%v", s))
	}
	if fmt.Sprintf("%s", s) != "[SECRET]" {
		t.Fatalf("unexpected %%s output: %q", fmt.Sprintf("%s", s))
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if string(b) != "\"[SECRET]\"" {
		t.Fatalf("unexpected json marshal: %s", string(b))
	}
	if s.Reveal() != "supersecret" {
		t.Fatalf("Reveal returned %q", s.Reveal())
	}
}

func TestSecretZero(t *testing.T) {
	s := FromString("abc123")
	(&s).Zero()
	for i, c := range s.Bytes() {
		if c != 0 {
			t.Fatalf("expected zeroed byte at index %d, got %d", i, c)
		}
	}
}

func TestSecretMasked(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"short":               "****",
		"sk-abcdefghijklwxyz": "sk-...wxyz",
		"plainlongtokenvalue": "...alue",
	}
	for in, want := range cases {
		if got := FromString(in).Masked(); got != want {
			t.Errorf("Masked(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSecretScan(t *testing.T) {
	var s Secret
	if err := s.Scan([]byte("k1")); err != nil || s.Reveal() != "k1" {
		t.Fatalf("scan bytes: %v %q", err, s.Reveal())
	}
	if err := s.Scan("k2"); err != nil || s.Reveal() != "k2" {
		t.Fatalf("scan string: %v %q", err, s.Reveal())
	}
	if err := s.Scan(nil); err != nil || !s.IsEmpty() {
		t.Fatalf("scan nil: %v", err)
	}
	if err := s.Scan(42); err == nil {
		t.Fatalf("expected error for int scan")
	}
}
