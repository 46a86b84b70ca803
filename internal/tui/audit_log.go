// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/model"
)

const auditTimeLayout = "2006-01-02 15:04:05"

type auditLogModel struct {
	table       table.Model
	allEntries  []model.AuditLogEntry
	filter      string
	filterCol   int // 0=all, 1=timestamp, 2=user, 3=action, 4=details
	isFiltering bool
	err         error
}

func newAuditLogModel() auditLogModel {
	columns := []table.Column{
		{Title: i18n.T("top.audit.timestamp"), Width: 20},
		{Title: i18n.T("top.audit.user"), Width: 12},
		{Title: i18n.T("top.audit.action"), Width: 26},
		{Title: i18n.T("top.audit.details"), Width: 60},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(15))
	t.SetStyles(tableStyles())
	return auditLogModel{table: t}
}

func (m *auditLogModel) setEntries(entries []model.AuditLogEntry, err error) {
	m.err = err
	if err == nil {
		m.allEntries = entries
	}
	m.rebuildTableRows()
}

func (m *auditLogModel) matches(e model.AuditLogEntry) bool {
	if m.filter == "" {
		return true
	}
	f := strings.ToLower(m.filter)
	ts := strings.ToLower(e.Timestamp.Format(auditTimeLayout))
	user := strings.ToLower(e.Username)
	action := strings.ToLower(e.Action)
	details := strings.ToLower(e.Details)
	switch m.filterCol {
	case 1:
		return strings.Contains(ts, f)
	case 2:
		return strings.Contains(user, f)
	case 3:
		return strings.Contains(action, f)
	case 4:
		return strings.Contains(details, f)
	}
	return strings.Contains(ts, f) || strings.Contains(user, f) || strings.Contains(action, f) || strings.Contains(details, f)
}

func (m *auditLogModel) rebuildTableRows() {
	var rows []table.Row
	for _, e := range m.allEntries {
		if !m.matches(e) {
			continue
		}
		rows = append(rows, table.Row{e.Timestamp.Local().Format(auditTimeLayout), e.Username, styleAction(e.Action), e.Details})
	}
	m.table.SetRows(rows)
	if m.isFiltering {
		m.table.GotoTop()
	}
}

// styleAction colours creations green and destructive or remote actions
// orange.
func styleAction(action string) string {
	switch {
	case strings.HasPrefix(action, "CREATE_"),
		strings.HasPrefix(action, "ADD_"),
		strings.HasPrefix(action, "TRUST_"),
		action == "SEED":
		return successStyle.Render(action)
	case strings.HasPrefix(action, "DELETE_"),
		strings.HasPrefix(action, "RESTART_"),
		strings.HasPrefix(action, "EXECUTE_"),
		strings.HasPrefix(action, "RESTORE"):
		return specialStyle.Render(action)
	case strings.HasPrefix(action, "UPDATE_"),
		strings.HasPrefix(action, "SET_"):
		return helpStyle.Render(action)
	}
	return action
}

func (m auditLogModel) Update(msg tea.Msg) (auditLogModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && m.isFiltering {
		switch key.Type {
		case tea.KeyEsc:
			m.isFiltering = false
			m.filter = ""
		case tea.KeyEnter:
			m.isFiltering = false
		case tea.KeyBackspace:
			if len(m.filter) > 0 {
				m.filter = m.filter[:len(m.filter)-1]
			}
		case tea.KeyRunes, tea.KeySpace:
			m.filter += string(key.Runes)
		case tea.KeyTab:
			m.filterCol = (m.filterCol + 1) % 5
		case tea.KeyShiftTab:
			m.filterCol = (m.filterCol + 4) % 5
		}
		m.rebuildTableRows()
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// selectedDetails returns the details column of the highlighted row.
func (m auditLogModel) selectedDetails() string {
	row := m.table.SelectedRow()
	if len(row) < 4 {
		return ""
	}
	return row[3]
}

func (m auditLogModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("%s: %v", i18n.T("top.audit.error"), m.err))
	}
	var b strings.Builder
	if len(m.table.Rows()) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("top.audit.empty")))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n" + m.filterStatus())
	return b.String()
}

func (m auditLogModel) filterStatus() string {
	cols := []string{
		i18n.T("top.audit.all"),
		i18n.T("top.audit.timestamp"),
		i18n.T("top.audit.user"),
		i18n.T("top.audit.action"),
		i18n.T("top.audit.details"),
	}
	switch {
	case m.isFiltering:
		return helpStyle.Render(fmt.Sprintf("Filter [%s]: %s█ (tab to change column)", cols[m.filterCol], m.filter))
	case m.filter != "":
		return helpStyle.Render(fmt.Sprintf("Filter [%s]: %s (press 'esc' to clear)", cols[m.filterCol], m.filter))
	}
	return helpStyle.Render(i18n.T("top.audit.filter_hint"))
}
