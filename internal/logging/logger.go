// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging holds the package-level structured logger shared by the
// agent, the HTTP server, the monitor and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should use the helper functions
// below unless they need a sub-logger via With.
var L = clog.NewWithOptions(os.Stderr, clog.Options{ReportTimestamp: true})

// Configure applies a level ("debug", "info", "warn", "error") and a format
// ("text", "json", "logfmt") to L. Unknown values fall back to info/text.
func Configure(level, format string) {
	lvl, err := clog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = clog.InfoLevel
	}
	L.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		L.SetFormatter(clog.JSONFormatter)
	case "logfmt":
		L.SetFormatter(clog.LogfmtFormatter)
	default:
		L.SetFormatter(clog.TextFormatter)
	}
}

// SetDebug toggles debug output on L.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.InfoLevel)
}

// SetOutput redirects L.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}

// With returns a sub-logger carrying the given key/value pairs.
func With(keyvals ...interface{}) *clog.Logger {
	return L.With(keyvals...)
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}
