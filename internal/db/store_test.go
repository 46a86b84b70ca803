// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/toeirei/stratus/internal/model"
)

func TestVirtualMachineCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	vm, err := s.CreateVirtualMachine(ctx, model.VirtualMachine{
		Name: "vm-prod-01", Status: model.VMStatusRunning, Template: "Ubuntu 22.04 LTS",
		CPUCores: 4, Memory: 8, Storage: 120, Network: "Production Network",
	})
	if err != nil {
		t.Fatalf("CreateVirtualMachine: %v", err)
	}
	if vm.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if vm.Uptime != "0d 0h" {
		t.Fatalf("expected default uptime, got %q", vm.Uptime)
	}

	got, err := s.GetVirtualMachine(ctx, vm.ID)
	if err != nil {
		t.Fatalf("GetVirtualMachine: %v", err)
	}
	if got.Name != "vm-prod-01" || got.CPUCores != 4 {
		t.Fatalf("unexpected vm: %+v", got)
	}

	updated, err := s.UpdateVirtualMachine(ctx, vm.ID, model.VirtualMachinePatch{Status: strPtr(model.VMStatusMaintenance), CPUUsage: floatPtr(45)})
	if err != nil {
		t.Fatalf("UpdateVirtualMachine: %v", err)
	}
	if updated.Status != model.VMStatusMaintenance || updated.CPUUsage != 45 || updated.Memory != 8 {
		t.Fatalf("patch not applied correctly: %+v", updated)
	}

	if _, err := s.UpdateVirtualMachine(ctx, 999, model.VirtualMachinePatch{Status: strPtr("stopped")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing vm, got %v", err)
	}

	list, err := s.ListVirtualMachines(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListVirtualMachines: %v (len %d)", err, len(list))
	}

	if err := s.DeleteVirtualMachine(ctx, vm.ID); err != nil {
		t.Fatalf("DeleteVirtualMachine: %v", err)
	}
	if err := s.DeleteVirtualMachine(ctx, vm.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := s.GetVirtualMachine(ctx, vm.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUsersUniqueUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, model.User{Username: "admin", Password: "hash", Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != "user" {
		t.Fatalf("expected default role, got %q", u.Role)
	}
	if _, err := s.CreateUser(ctx, model.User{Username: "admin", Password: "x", Email: "x"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, err := s.GetUserByUsername(ctx, "admin")
	if err != nil || got.ID != u.ID || got.Password != "hash" {
		t.Fatalf("GetUserByUsername: %+v %v", got, err)
	}
	if _, err := s.GetUser(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAlertsUnreadAndMarkRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a1, err := s.CreateAlert(ctx, model.Alert{Type: "warning", Title: "High CPU Usage", Message: "m", Severity: "medium", ResourceID: intPtr(1), ResourceType: strPtr("vm")})
	if err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	if _, err := s.CreateAlert(ctx, model.Alert{Type: "error", Title: "Storage Almost Full", Message: "m", Severity: "high"}); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	if err := s.MarkAlertRead(ctx, a1.ID); err != nil {
		t.Fatalf("MarkAlertRead: %v", err)
	}
	if err := s.MarkAlertRead(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, _ := s.ListAlerts(ctx)
	unread, _ := s.ListUnreadAlerts(ctx)
	if len(all) != 2 || len(unread) != 1 {
		t.Fatalf("expected 2 alerts / 1 unread, got %d / %d", len(all), len(unread))
	}
	if unread[0].Title != "Storage Almost Full" {
		t.Fatalf("wrong unread alert: %+v", unread[0])
	}
	if all[0].ResourceID == nil || *all[0].ResourceID != 1 || all[0].ResourceType == nil || *all[0].ResourceType != "vm" {
		t.Fatalf("resource fields not round-tripped: %+v", all[0])
	}
}

func TestRecommendationsStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, err := s.CreateRecommendation(ctx, model.Recommendation{Type: "optimization", Title: "Right-size", Description: "d", Confidence: 0.8, Priority: "high"})
	if err != nil {
		t.Fatalf("CreateRecommendation: %v", err)
	}
	if r.Status != model.RecommendationPending {
		t.Fatalf("expected pending status, got %q", r.Status)
	}
	pending, _ := s.ListPendingRecommendations(ctx)
	if len(pending) != 1 {
		t.Fatalf("expected one pending recommendation, got %d", len(pending))
	}
	if err := s.UpdateRecommendationStatus(ctx, r.ID, model.RecommendationApplied); err != nil {
		t.Fatalf("UpdateRecommendationStatus: %v", err)
	}
	pending, _ = s.ListPendingRecommendations(ctx)
	all, _ := s.ListRecommendations(ctx)
	if len(pending) != 0 || len(all) != 1 || all[0].Status != model.RecommendationApplied {
		t.Fatalf("status not updated: pending=%d all=%+v", len(pending), all)
	}
	if err := s.UpdateRecommendationStatus(ctx, 999, model.RecommendationDismissed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSystemMetricsOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestSystemMetrics(ctx)
	if err != nil || latest != nil {
		t.Fatalf("expected nil, nil on empty table; got %+v, %v", latest, err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := s.CreateSystemMetrics(ctx, model.SystemMetrics{Timestamp: base.Add(time.Duration(i) * time.Hour), TotalServers: i, StorageTotal: 3.2}); err != nil {
			t.Fatalf("CreateSystemMetrics: %v", err)
		}
	}

	latest, err = s.LatestSystemMetrics(ctx)
	if err != nil || latest == nil || latest.TotalServers != 4 {
		t.Fatalf("expected newest sample, got %+v, %v", latest, err)
	}

	hist, err := s.ListSystemMetrics(ctx, 3)
	if err != nil {
		t.Fatalf("ListSystemMetrics: %v", err)
	}
	if len(hist) != 3 || hist[0].TotalServers != 4 || hist[2].TotalServers != 2 {
		t.Fatalf("unexpected history order: %+v", hist)
	}
	all, _ := s.ListSystemMetrics(ctx, 0)
	if len(all) != 5 {
		t.Fatalf("expected default limit to cover all rows, got %d", len(all))
	}
}

func TestSettingsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetSetting(ctx, "openai_api_key"); err != nil || ok {
		t.Fatalf("expected missing setting, got ok=%v err=%v", ok, err)
	}
	if err := s.SetSetting(ctx, "openai_api_key", "sk-one"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(ctx, "openai_api_key", "sk-two"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	v, ok, err := s.GetSetting(ctx, "openai_api_key")
	if err != nil || !ok || v != "sk-two" {
		t.Fatalf("expected sk-two, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestHostsKnownKeysAndAudit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.CreateHost(ctx, model.Host{Name: "web1", Address: "10.0.0.5:22", Username: "deploy"})
	if err != nil {
		t.Fatalf("CreateHost: %v", err)
	}
	if _, err := s.CreateHost(ctx, model.Host{Name: "web1", Address: "x", Username: "y"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, err := s.GetHostByName(ctx, "web1")
	if err != nil || got.ID != h.ID {
		t.Fatalf("GetHostByName: %+v %v", got, err)
	}

	if k, err := s.GetKnownHostKey(ctx, "10.0.0.5:22"); err != nil || k != "" {
		t.Fatalf("expected no pinned key, got %q %v", k, err)
	}
	if err := s.AddKnownHostKey(ctx, "10.0.0.5:22", "ssh-ed25519 AAAA1"); err != nil {
		t.Fatalf("AddKnownHostKey: %v", err)
	}
	if err := s.AddKnownHostKey(ctx, "10.0.0.5:22", "ssh-ed25519 AAAA2"); err != nil {
		t.Fatalf("AddKnownHostKey replace: %v", err)
	}
	if k, _ := s.GetKnownHostKey(ctx, "10.0.0.5:22"); k != "ssh-ed25519 AAAA2" {
		t.Fatalf("expected replaced key, got %q", k)
	}

	if err := s.DeleteHost(ctx, h.ID); err != nil {
		t.Fatalf("DeleteHost: %v", err)
	}
	if err := s.DeleteHost(ctx, h.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	entries, err := s.ListAuditLog(ctx, 0)
	if err != nil {
		t.Fatalf("ListAuditLog: %v", err)
	}
	actions := map[string]int{}
	for _, e := range entries {
		actions[e.Action]++
	}
	if actions["ADD_HOST"] != 1 || actions["TRUST_HOST"] != 2 || actions["DELETE_HOST"] != 1 {
		t.Fatalf("unexpected audit actions: %v", actions)
	}
}
