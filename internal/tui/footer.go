// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AlignFooter returns a single-line string where right is right-aligned
// within width columns and left is at the start. If width is too small a
// single space separates the tokens.
func AlignFooter(left, right string, width int) string {
	spaces := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// Gauge renders pct (0..100) as a bar of width cells followed by the value.
func Gauge(pct float64, width int) string {
	if width < 1 {
		width = 1
	}
	clamped := pct
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 100 {
		clamped = 100
	}
	filled := int(clamped/100*float64(width) + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return usageStyle(pct).Render(bar) + fmt.Sprintf(" %5.1f%%", pct)
}
