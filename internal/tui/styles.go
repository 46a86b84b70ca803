// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import "github.com/charmbracelet/lipgloss"

// colorPalette defines the core colors used in the TUI.
const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // Teal
	colorSpecial   = lipgloss.Color("208") // Orange
	colorError     = lipgloss.Color("196") // Bright red
	colorSuccess   = lipgloss.Color("40")  // Green
	colorWhite     = lipgloss.Color("231")
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	helpStyle    = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	specialStyle = lipgloss.NewStyle().Foreground(colorSpecial)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true).
			Padding(0, 1)

	// Tabs in the header
	tabStyle       = lipgloss.NewStyle().Foreground(colorSubtle).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorHighlight).
			Padding(0, 1)

	// Metric panel
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Bold(true).Width(8)

	statusMessageStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(colorWhite).
				Background(colorHighlight)
)

// usageStyle colours a percentage: red from 85, orange from 70.
func usageStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 85:
		return errorStyle
	case pct >= 70:
		return specialStyle
	default:
		return successStyle
	}
}
