// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/toeirei/stratus/internal/model"
)

func seedVMs(t *testing.T, env *testEnv, statuses ...string) {
	t.Helper()
	for i, st := range statuses {
		_, err := env.store.CreateVirtualMachine(context.Background(), model.VirtualMachine{
			Name: fmt.Sprintf("vm-%s-%d", st, i), Status: st, Template: "Ubuntu 22.04",
			CPUCores: 2, Memory: 4, Storage: 50, Network: "vlan-100",
		})
		if err != nil {
			t.Fatalf("CreateVirtualMachine: %v", err)
		}
	}
}

func TestDashboardStatsWithoutMetrics(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	seedVMs(t, env, "running", "stopped")
	if _, err := env.store.CreateAlert(ctx, model.Alert{Type: "warning", Title: "t", Message: "m", Severity: "low"}); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	got, err := env.svc.BuildDashboardStats(ctx)
	if err != nil {
		t.Fatalf("BuildDashboardStats: %v", err)
	}
	want := DashboardStats{
		TotalServers:   2,
		StorageUsed:    "2.4TB",
		StoragePercent: 75,
		NetworkTraffic: "1.2GB/s",
		HealthScore:    "94%",
		ServerGrowth:   "12%",
		NetworkGrowth:  "8%",
		AlertsCount:    1,
	}
	if got != want {
		t.Fatalf("unexpected stats:\n got %+v\nwant %+v", got, want)
	}
}

func TestDashboardStatsFromLatestMetrics(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	seedVMs(t, env, "running")
	_, err := env.store.CreateSystemMetrics(ctx, model.SystemMetrics{
		Timestamp: time.Now().UTC().Add(-time.Hour), TotalServers: 3, StorageUsed: 9, StorageTotal: 10,
	})
	if err != nil {
		t.Fatalf("CreateSystemMetrics: %v", err)
	}
	_, err = env.store.CreateSystemMetrics(ctx, model.SystemMetrics{
		Timestamp: time.Now().UTC(), TotalServers: 12, StorageUsed: 1.5, StorageTotal: 3, HealthScore: 88.5,
	})
	if err != nil {
		t.Fatalf("CreateSystemMetrics: %v", err)
	}

	got, err := env.svc.BuildDashboardStats(ctx)
	if err != nil {
		t.Fatalf("BuildDashboardStats: %v", err)
	}
	if got.TotalServers != 12 || got.StorageUsed != "1.5TB" || got.StoragePercent != 50 {
		t.Fatalf("unexpected storage figures: %+v", got)
	}
	if got.NetworkTraffic != "1.2GB/s" {
		t.Fatalf("zero traffic should fall back to placeholder, got %q", got.NetworkTraffic)
	}
	if got.HealthScore != "88.5%" || got.AlertsCount != 0 {
		t.Fatalf("unexpected health or alerts: %+v", got)
	}
}

func TestResourceUsageChart(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	base := time.Now().UTC().Add(-24 * time.Hour)
	for i := 0; i < 9; i++ {
		_, err := env.store.CreateSystemMetrics(ctx, model.SystemMetrics{
			Timestamp:      base.Add(time.Duration(i) * time.Hour),
			CPUUsageAvg:    float64(10 * (i + 1)),
			MemoryUsageAvg: 40,
			StorageUsed:    1,
			StorageTotal:   4,
		})
		if err != nil {
			t.Fatalf("CreateSystemMetrics: %v", err)
		}
	}

	points, err := env.svc.ResourceUsageChart(ctx)
	if err != nil {
		t.Fatalf("ResourceUsageChart: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	first, last := points[0], points[6]
	if first.Name != "Day 1" || first.CPU != 30 || first.Storage != 25 || first.Memory != 40 {
		t.Fatalf("unexpected first point: %+v", first)
	}
	if last.Name != "Day 7" || last.CPU != 90 {
		t.Fatalf("unexpected last point: %+v", last)
	}
}

func TestHealthChart(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	empty, err := env.svc.HealthChart(ctx)
	if err != nil {
		t.Fatalf("HealthChart: %v", err)
	}
	for _, s := range empty {
		if s.Value != 0 {
			t.Fatalf("expected zeros without VMs, got %+v", empty)
		}
	}

	seedVMs(t, env, "running", "running", "maintenance", "stopped")
	got, err := env.svc.HealthChart(ctx)
	if err != nil {
		t.Fatalf("HealthChart: %v", err)
	}
	want := []HealthSlice{{Name: "Healthy", Value: 50}, {Name: "Warning", Value: 25}, {Name: "Critical", Value: 25}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slice %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestHealthChartRounding(t *testing.T) {
	env := newTestEnv(t, "")
	seedVMs(t, env, "running", "error", "maintenance")
	got, err := env.svc.HealthChart(context.Background())
	if err != nil {
		t.Fatalf("HealthChart: %v", err)
	}
	if got[0].Value != 33 || got[1].Value != 33 || got[2].Value != 33 {
		t.Fatalf("expected 33/33/33, got %+v", got)
	}
}
