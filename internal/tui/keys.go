// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/toeirei/stratus/internal/i18n"
)

type keyMap struct {
	ForceQuit key.Binding
	Quit      key.Binding
	Back      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Copy      key.Binding
	Filter    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", i18n.T("top.key.quit")),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", i18n.T("top.key.back")),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", i18n.T("top.key.next_tab")),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", i18n.T("top.key.prev_tab")),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", i18n.T("top.key.refresh")),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", i18n.T("top.key.copy")),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", i18n.T("top.key.filter")),
			key.WithDisabled(),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Refresh, k.Copy, k.Filter, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Copy, k.Filter},
		{k.Back, k.Quit},
	}
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = h.Styles.ShortKey.Foreground(colorHighlight)
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle
	return h
}
