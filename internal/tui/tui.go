// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui implements `stratus top`, a live terminal view of one host's
// resources, processes, services and the audit trail.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/model"
)

// Source supplies live host data. *agent.Agent satisfies it.
type Source interface {
	ResourceMetrics(ctx context.Context) agent.ResourceMetrics
	RunningProcesses(ctx context.Context, limit int) []agent.ProcessInfo
	SystemServices(ctx context.Context) []agent.ServiceInfo
}

// AuditSource lists audit entries, newest first.
type AuditSource interface {
	ListAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error)
}

// Options tune the view. Audit may be nil, which hides the audit tab.
type Options struct {
	Host         string
	Interval     time.Duration
	ProcessLimit int
	AuditLimit   int
	Audit        AuditSource
}

const (
	defaultInterval   = 2 * time.Second
	defaultAuditLimit = 200
	gaugeWidth        = 30
)

type viewState int

const (
	processesView viewState = iota
	servicesView
	auditView
)

type snapshot struct {
	metrics   agent.ResourceMetrics
	processes []agent.ProcessInfo
	services  []agent.ServiceInfo
	at        time.Time
}

type snapshotMsg snapshot

type tickMsg time.Time

type auditMsg struct {
	entries []model.AuditLogEntry
	err     error
}

type statusMsg string

type mainModel struct {
	ctx       context.Context
	src       Source
	opts      Options
	state     viewState
	snap      snapshot
	processes table.Model
	services  table.Model
	audit     auditLogModel
	keys      keyMap
	help      help.Model
	width     int
	height    int
	status    string
	copy      func(string) error
}

func newModel(ctx context.Context, src Source, opts Options) mainModel {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.ProcessLimit <= 0 {
		opts.ProcessLimit = agent.DefaultProcessLimit
	}
	if opts.AuditLimit <= 0 {
		opts.AuditLimit = defaultAuditLimit
	}
	if opts.Host == "" {
		opts.Host = "local"
	}

	procs := table.New(table.WithColumns([]table.Column{
		{Title: i18n.T("top.col.pid"), Width: 8},
		{Title: i18n.T("top.col.name"), Width: 28},
		{Title: i18n.T("top.col.cpu"), Width: 8},
		{Title: i18n.T("top.col.memory"), Width: 8},
		{Title: i18n.T("top.col.status"), Width: 8},
	}), table.WithFocused(true), table.WithHeight(10))
	procs.SetStyles(tableStyles())

	svcs := table.New(table.WithColumns([]table.Column{
		{Title: i18n.T("top.col.name"), Width: 36},
		{Title: i18n.T("top.col.status"), Width: 10},
		{Title: i18n.T("top.col.enabled"), Width: 8},
	}), table.WithFocused(true), table.WithHeight(10))
	svcs.SetStyles(tableStyles())

	return mainModel{
		ctx:       ctx,
		src:       src,
		opts:      opts,
		processes: procs,
		services:  svcs,
		audit:     newAuditLogModel(),
		keys:      newKeyMap(),
		help:      newHelp(),
		copy:      clipboard.WriteAll,
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	return s
}

// Run starts the full-screen view and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, src Source, opts Options) error {
	p := tea.NewProgram(newModel(ctx, src, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.Errorf("TUI run error: %v", err)
		return err
	}
	return nil
}

func (m mainModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd(), m.auditCmd())
}

func (m mainModel) fetchCmd() tea.Cmd {
	ctx, src, limit := m.ctx, m.src, m.opts.ProcessLimit
	return func() tea.Msg {
		return snapshotMsg{
			metrics:   src.ResourceMetrics(ctx),
			processes: src.RunningProcesses(ctx, limit),
			services:  src.SystemServices(ctx),
			at:        time.Now(),
		}
	}
}

func (m mainModel) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m mainModel) auditCmd() tea.Cmd {
	if m.opts.Audit == nil {
		return nil
	}
	ctx, src, limit := m.ctx, m.opts.Audit, m.opts.AuditLimit
	return func() tea.Msg {
		entries, err := src.ListAuditLog(ctx, limit)
		return auditMsg{entries: entries, err: err}
	}
}

func (m mainModel) tabs() []viewState {
	if m.opts.Audit == nil {
		return []viewState{processesView, servicesView}
	}
	return []viewState{processesView, servicesView, auditView}
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width - 4
		h := msg.Height - 14
		if h < 3 {
			h = 3
		}
		for _, t := range []*table.Model{&m.processes, &m.services, &m.audit.table} {
			t.SetHeight(h)
			t.SetWidth(msg.Width - 4)
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case snapshotMsg:
		m.snap = snapshot(msg)
		m.processes.SetRows(processRows(m.snap.processes))
		m.services.SetRows(serviceRows(m.snap.services))
		return m, nil

	case auditMsg:
		m.audit.setEntries(msg.entries, msg.err)
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.state == auditView && m.audit.isFiltering {
			var cmd tea.Cmd
			m.audit, cmd = m.audit.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			if m.state == auditView && m.audit.filter != "" {
				m.audit.filter = ""
				m.audit.rebuildTableRows()
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextTab):
			m.setState(m.nextTab(1))
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.setState(m.nextTab(-1))
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = i18n.T("top.refreshing")
			return m, tea.Batch(m.fetchCmd(), m.auditCmd())
		case key.Matches(msg, m.keys.Copy):
			return m, m.copySelected()
		case key.Matches(msg, m.keys.Filter):
			m.audit.isFiltering = true
			m.audit.filter = ""
			m.audit.rebuildTableRows()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case processesView:
		m.processes, cmd = m.processes.Update(msg)
	case servicesView:
		m.services, cmd = m.services.Update(msg)
	case auditView:
		m.audit, cmd = m.audit.Update(msg)
	}
	return m, cmd
}

// setState switches tabs; filtering is only offered on the audit tab.
func (m *mainModel) setState(v viewState) {
	m.state = v
	m.keys.Filter.SetEnabled(v == auditView)
}

func (m mainModel) nextTab(step int) viewState {
	tabs := m.tabs()
	idx := 0
	for i, t := range tabs {
		if t == m.state {
			idx = i
		}
	}
	idx = (idx + step + len(tabs)) % len(tabs)
	return tabs[idx]
}

// selection returns the text copied by "c" for the active tab.
func (m mainModel) selection() string {
	switch m.state {
	case processesView:
		if row := m.processes.SelectedRow(); len(row) > 0 {
			return row[0]
		}
	case servicesView:
		if row := m.services.SelectedRow(); len(row) > 0 {
			return row[0]
		}
	case auditView:
		return m.audit.selectedDetails()
	}
	return ""
}

func (m mainModel) copySelected() tea.Cmd {
	text := m.selection()
	if text == "" {
		return nil
	}
	write := m.copy
	return func() tea.Msg {
		if err := write(text); err != nil {
			logging.Debugf("tui: clipboard write failed: %v", err)
			return statusMsg(i18n.T("top.copy_failed"))
		}
		return statusMsg(i18n.T("top.copied", text))
	}
}

func processRows(ps []agent.ProcessInfo) []table.Row {
	rows := make([]table.Row, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, table.Row{
			strconv.Itoa(p.PID),
			p.Name,
			strconv.FormatFloat(p.CPU, 'f', 1, 64),
			strconv.FormatFloat(p.Memory, 'f', 1, 64),
			p.Status,
		})
	}
	return rows
}

func serviceRows(ss []agent.ServiceInfo) []table.Row {
	rows := make([]table.Row, 0, len(ss))
	for _, s := range ss {
		enabled := "no"
		if s.Enabled {
			enabled = "yes"
		}
		rows = append(rows, table.Row{s.Name, s.Status, enabled})
	}
	return rows
}

func (m mainModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView() + "\n")
	b.WriteString(m.metricsView() + "\n")
	switch m.state {
	case processesView:
		b.WriteString(m.processes.View())
	case servicesView:
		b.WriteString(m.services.View())
	case auditView:
		b.WriteString(m.audit.View())
	}
	b.WriteString("\n" + m.footerView())
	return docStyle.Render(b.String())
}

func (m mainModel) headerView() string {
	names := map[viewState]string{
		processesView: i18n.T("top.tab.processes"),
		servicesView:  i18n.T("top.tab.services"),
		auditView:     i18n.T("top.tab.audit"),
	}
	parts := []string{titleStyle.Render("Stratus · " + m.opts.Host)}
	for _, t := range m.tabs() {
		if t == m.state {
			parts = append(parts, activeTabStyle.Render(names[t]))
		} else {
			parts = append(parts, tabStyle.Render(names[t]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m mainModel) metricsView() string {
	if m.snap.at.IsZero() {
		return helpStyle.Render(i18n.T("top.loading"))
	}
	mt := m.snap.metrics
	lines := []string{
		labelStyle.Render("CPU") + Gauge(mt.CPU.Usage, gaugeWidth) + helpStyle.Render(fmt.Sprintf("  %d cores · %s", mt.CPU.Cores, mt.CPU.Model)),
		labelStyle.Render("Memory") + Gauge(mt.Memory.Usage, gaugeWidth) + helpStyle.Render(fmt.Sprintf("  %s / %s", humanize.IBytes(mt.Memory.Used), humanize.IBytes(mt.Memory.Total))),
		labelStyle.Render("Disk") + Gauge(mt.Disk.Usage, gaugeWidth) + helpStyle.Render(fmt.Sprintf("  %s / %s", humanize.IBytes(mt.Disk.Used), humanize.IBytes(mt.Disk.Total))),
		labelStyle.Render("Network") + fmt.Sprintf("rx %s  tx %s", humanize.IBytes(mt.Network.BytesReceived), humanize.IBytes(mt.Network.BytesSent)),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m mainModel) footerView() string {
	keys := m.help.ShortHelpView(m.keys.ShortHelp())
	right := ""
	if m.status != "" {
		right = statusMessageStyle.Render(m.status)
	} else if !m.snap.at.IsZero() {
		right = helpStyle.Render(m.snap.at.Format("15:04:05"))
	}
	return AlignFooter(keys, right, m.width-4)
}
