// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/model"
)

type fakeSource struct{ limit int }

func (f *fakeSource) ResourceMetrics(context.Context) agent.ResourceMetrics {
	return agent.ResourceMetrics{
		CPU:    agent.CPUMetrics{Usage: 91.5, Cores: 8, Model: "Test CPU"},
		Memory: agent.UsageMetrics{Total: 16 << 30, Used: 8 << 30, Usage: 50},
		Disk:   agent.UsageMetrics{Total: 100 << 30, Used: 75 << 30, Usage: 75},
	}
}

func (f *fakeSource) RunningProcesses(_ context.Context, limit int) []agent.ProcessInfo {
	f.limit = limit
	return []agent.ProcessInfo{
		{PID: 42, Name: "postgres", CPU: 12.5, Memory: 3.1, Status: "S"},
		{PID: 7, Name: "nginx", CPU: 1, Memory: 0.4, Status: "S"},
	}
}

func (f *fakeSource) SystemServices(context.Context) []agent.ServiceInfo {
	return []agent.ServiceInfo{{Name: "nginx.service", Status: "active", Enabled: true}}
}

type fakeAudit struct {
	entries []model.AuditLogEntry
	err     error
}

func (f fakeAudit) ListAuditLog(context.Context, int) ([]model.AuditLogEntry, error) {
	return f.entries, f.err
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m mainModel, msg tea.Msg) (mainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(mainModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return mm, cmd
}

func TestSnapshotPopulatesTables(t *testing.T) {
	src := &fakeSource{}
	m := newModel(context.Background(), src, Options{Host: "web-1", ProcessLimit: 5})
	m, _ = update(t, m, m.fetchCmd()())
	if src.limit != 5 {
		t.Fatalf("expected process limit 5, got %d", src.limit)
	}
	if len(m.processes.Rows()) != 2 || m.processes.Rows()[0][1] != "postgres" {
		t.Fatalf("unexpected process rows %v", m.processes.Rows())
	}
	if len(m.services.Rows()) != 1 || m.services.Rows()[0][2] != "yes" {
		t.Fatalf("unexpected service rows %v", m.services.Rows())
	}
	view := m.View()
	for _, want := range []string{"web-1", "postgres", "Test CPU"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestTabsCycle(t *testing.T) {
	m := newModel(context.Background(), &fakeSource{}, Options{})
	m, _ = update(t, m, keyMsg("tab"))
	if m.state != servicesView {
		t.Fatalf("expected services view, got %v", m.state)
	}
	m, _ = update(t, m, keyMsg("tab"))
	if m.state != processesView {
		t.Fatalf("without an audit source the tabs must wrap to processes, got %v", m.state)
	}

	m = newModel(context.Background(), &fakeSource{}, Options{Audit: fakeAudit{}})
	for i := 0; i < 2; i++ {
		m, _ = update(t, m, keyMsg("tab"))
	}
	if m.state != auditView {
		t.Fatalf("expected audit view, got %v", m.state)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newModel(context.Background(), &fakeSource{}, Options{})
	_, cmd := update(t, m, keyMsg("q"))
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestCopySelectedProcess(t *testing.T) {
	m := newModel(context.Background(), &fakeSource{}, Options{})
	var copied string
	m.copy = func(s string) error { copied = s; return nil }
	m, _ = update(t, m, m.fetchCmd()())

	_, cmd := update(t, m, keyMsg("c"))
	if cmd == nil {
		t.Fatalf("expected a copy command")
	}
	msg := cmd()
	if copied != "42" {
		t.Fatalf("expected pid 42 copied, got %q", copied)
	}
	m, _ = update(t, m, msg)
	if !strings.Contains(m.status, "42") {
		t.Fatalf("status should mention the copied text, got %q", m.status)
	}

	m.copy = func(string) error { return errors.New("no clipboard") }
	_, cmd = update(t, m, keyMsg("c"))
	if s, ok := cmd().(statusMsg); !ok || strings.Contains(string(s), "42") {
		t.Fatalf("expected a failure status, got %v", s)
	}
}

func TestAuditFilter(t *testing.T) {
	now := time.Now()
	audit := fakeAudit{entries: []model.AuditLogEntry{
		{ID: 2, Timestamp: now, Username: "ops", Action: "DELETE_VM", Details: "id: 3"},
		{ID: 1, Timestamp: now.Add(-time.Minute), Username: "ops", Action: "CREATE_VM", Details: "name: web"},
	}}
	m := newModel(context.Background(), &fakeSource{}, Options{Audit: audit})
	m, _ = update(t, m, m.auditCmd()())
	if len(m.audit.table.Rows()) != 2 {
		t.Fatalf("expected two audit rows, got %d", len(m.audit.table.Rows()))
	}

	m.setState(auditView)
	m, _ = update(t, m, keyMsg("/"))
	for _, r := range "web" {
		m, _ = update(t, m, keyMsg(string(r)))
	}
	if rows := m.audit.table.Rows(); len(rows) != 1 || rows[0][3] != "name: web" {
		t.Fatalf("filter should keep only the CREATE_VM row, got %v", rows)
	}
	m, _ = update(t, m, keyMsg("enter"))
	if m.audit.isFiltering {
		t.Fatalf("enter should end filter input")
	}
	m, _ = update(t, m, keyMsg("esc"))
	if m.audit.filter != "" || len(m.audit.table.Rows()) != 2 {
		t.Fatalf("esc should clear the filter")
	}

	m, _ = update(t, m, auditMsg{err: errors.New("db down")})
	if !strings.Contains(m.audit.View(), "db down") {
		t.Fatalf("audit view should show the error")
	}
}

func TestGauge(t *testing.T) {
	g := Gauge(50, 10)
	if strings.Count(g, "█") != 5 || strings.Count(g, "░") != 5 || !strings.Contains(g, "50.0%") {
		t.Fatalf("unexpected gauge %q", g)
	}
	if g := Gauge(150, 4); strings.Count(g, "█") != 4 {
		t.Fatalf("gauge must clamp above 100: %q", g)
	}
	if g := Gauge(-3, 4); strings.Count(g, "░") != 4 {
		t.Fatalf("gauge must clamp below 0: %q", g)
	}
}

func TestAlignFooter(t *testing.T) {
	got := AlignFooter("left", "right", 20)
	if lipgloss.Width(got) != 20 || !strings.HasPrefix(got, "left") || !strings.HasSuffix(got, "right") {
		t.Fatalf("unexpected footer %q", got)
	}
	if got := AlignFooter("left", "right", 3); got != "left right" {
		t.Fatalf("narrow footer should fall back to one space, got %q", got)
	}
}

func TestFilterKeyOnlyOnAuditTab(t *testing.T) {
	m := newModel(context.Background(), &fakeSource{}, Options{Audit: fakeAudit{}})
	if strings.Contains(m.footerView(), "filter") {
		t.Fatalf("filter help should be hidden on the processes tab")
	}
	m, _ = update(t, m, keyMsg("/"))
	if m.audit.isFiltering {
		t.Fatalf("/ must not start filtering outside the audit tab")
	}

	m, _ = update(t, m, keyMsg("tab"))
	m, _ = update(t, m, keyMsg("tab"))
	if m.state != auditView {
		t.Fatalf("expected audit tab, got %v", m.state)
	}
	if !strings.Contains(m.footerView(), "filter") {
		t.Fatalf("filter help should be shown on the audit tab: %q", m.footerView())
	}
}
