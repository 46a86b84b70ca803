// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds helpers for sensitive material: a redacting Secret
// type for API keys and bcrypt password hashing for dashboard users.
package security

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret wraps sensitive bytes (API keys, passphrases) so accidental
// formatting, JSON marshaling or logging does not reveal them.
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter so `%v`, `%#v` and friends are redacted.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, redacted)
}

// Reveal returns the plain value. Use it only at the point of use.
func (s Secret) Reveal() string { return string(s) }

// IsEmpty reports whether the secret holds no data.
func (s Secret) IsEmpty() bool { return len(s) == 0 }

// Masked returns a display form keeping only the last four characters,
// e.g. "sk-...wxyz". Short values are fully masked.
func (s Secret) Masked() string {
	if len(s) == 0 {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	prefix := ""
	if len(s) > 3 && string(s[:3]) == "sk-" {
		prefix = "sk-"
	}
	return prefix + "..." + string(s[len(s)-4:])
}

// Bytes returns a copy of the underlying bytes.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Zero overwrites the underlying byte slice with zeros.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText redacts secrets for text encoding.
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Value implements driver.Valuer so the raw value can be persisted.
func (s Secret) Value() (driver.Value, error) { return string(s), nil }

// Scan implements sql.Scanner.
func (s *Secret) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case []byte:
		*s = FromBytes(v)
	case string:
		*s = FromString(v)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
	return nil
}

// FromString creates a Secret from a string.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes creates a Secret from bytes (it makes a copy).
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}
