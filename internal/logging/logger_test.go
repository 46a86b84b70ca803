// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

// TestLoggingHelpers_WriteToBuffer swaps L with a buffer-backed logger and
// checks every helper writes its formatted message.
func TestLoggingHelpers_WriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	L.SetLevel(clog.DebugLevel)
	defer func() { L = prev }()

	Debugf("hello %s", "dbg")
	Infof("info %d", 1)
	Warnf("warn")
	Errorf("err %v", "E")

	out := buf.String()
	for _, want := range []string{"hello dbg", "info 1", "warn", "err E"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q; got: %s", want, out)
		}
	}
}

func TestConfigure_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	defer func() { L = prev }()

	Configure("warn", "text")
	Infof("quiet")
	Warnf("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn message missing: %s", out)
	}
}

func TestConfigure_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	defer func() { L = prev }()

	Configure("bogus", "json")
	With("component", "agent").Info("ready")

	out := buf.String()
	if !strings.Contains(out, `"component":"agent"`) {
		t.Fatalf("expected json key/value, got: %s", out)
	}
	if !strings.Contains(out, `"msg":"ready"`) {
		t.Fatalf("expected json msg, got: %s", out)
	}
}
