// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

import (
	"bytes"
	"errors"
	"sync"
)

// MaxOutputBytes is the default cap on each captured output stream.
const MaxOutputBytes = 1 << 20

// ErrOutputLimit is returned when a command writes more than the cap to
// stdout or stderr. The command is killed.
var ErrOutputLimit = errors.New("output limit exceeded")

// CappedBuffer keeps the first Max bytes written to it and discards the
// rest. OnOverflow runs once, on the first write past the cap.
type CappedBuffer struct {
	Max        int
	OnOverflow func()

	mu       sync.Mutex
	buf      bytes.Buffer
	overflow bool
}

// Write always reports len(p) so the copying goroutine keeps draining the pipe.
func (b *CappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	room := b.Max - b.buf.Len()
	if room >= len(p) {
		b.buf.Write(p)
		b.mu.Unlock()
		return len(p), nil
	}
	if room > 0 {
		b.buf.Write(p[:room])
	}
	first := !b.overflow
	b.overflow = true
	b.mu.Unlock()

	if first && b.OnOverflow != nil {
		b.OnOverflow()
	}
	return len(p), nil
}

func (b *CappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Overflowed reports whether anything was discarded.
func (b *CappedBuffer) Overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}
