// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"math"
	"strconv"

	"github.com/toeirei/stratus/internal/model"
)

// Placeholders shown until the monitor has recorded real figures.
const (
	defaultStorageUsed    = 2.4
	defaultStorageTotal   = 3.2
	defaultNetworkTraffic = 1.2
	defaultHealthScore    = 94

	serverGrowth  = "12%"
	networkGrowth = "8%"

	chartDays = 7
)

// DashboardStats is the summary shown on the dashboard cards.
type DashboardStats struct {
	TotalServers   int    `json:"totalServers"`
	StorageUsed    string `json:"storageUsed"`
	StoragePercent int    `json:"storagePercent"`
	NetworkTraffic string `json:"networkTraffic"`
	HealthScore    string `json:"healthScore"`
	ServerGrowth   string `json:"serverGrowth"`
	NetworkGrowth  string `json:"networkGrowth"`
	AlertsCount    int    `json:"alertsCount"`
}

// ResourceUsagePoint is one day of the resource usage chart.
type ResourceUsagePoint struct {
	Name    string  `json:"name"`
	CPU     float64 `json:"cpu"`
	Memory  float64 `json:"memory"`
	Storage int     `json:"storage"`
}

// HealthSlice is one segment of the VM health chart.
type HealthSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// BuildDashboardStats aggregates VMs, the latest metrics sample and unread
// alerts. Zero or missing metric figures fall back to placeholders.
func (s *Service) BuildDashboardStats(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats

	vms, err := s.store.ListVirtualMachines(ctx)
	if err != nil {
		return out, err
	}
	latest, err := s.store.LatestSystemMetrics(ctx)
	if err != nil {
		return out, err
	}
	unread, err := s.store.ListUnreadAlerts(ctx)
	if err != nil {
		return out, err
	}

	var m model.SystemMetrics
	if latest != nil {
		m = *latest
	}

	out.TotalServers = m.TotalServers
	if out.TotalServers == 0 {
		out.TotalServers = len(vms)
	}
	used := orDefault(m.StorageUsed, defaultStorageUsed)
	total := orDefault(m.StorageTotal, defaultStorageTotal)
	out.StorageUsed = formatNumber(used) + "TB"
	out.StoragePercent = round(used / total * 100)
	out.NetworkTraffic = formatNumber(orDefault(m.NetworkTraffic, defaultNetworkTraffic)) + "GB/s"
	out.HealthScore = formatNumber(orDefault(m.HealthScore, defaultHealthScore)) + "%"
	out.ServerGrowth = serverGrowth
	out.NetworkGrowth = networkGrowth
	out.AlertsCount = len(unread)
	return out, nil
}

// ResourceUsageChart returns the last seven samples, oldest first, labelled
// "Day 1" onwards.
func (s *Service) ResourceUsageChart(ctx context.Context) ([]ResourceUsagePoint, error) {
	metrics, err := s.store.ListSystemMetrics(ctx, chartDays)
	if err != nil {
		return nil, err
	}
	out := make([]ResourceUsagePoint, 0, len(metrics))
	for i := len(metrics) - 1; i >= 0; i-- {
		m := metrics[i]
		out = append(out, ResourceUsagePoint{
			Name:    "Day " + strconv.Itoa(len(out)+1),
			CPU:     m.CPUUsageAvg,
			Memory:  m.MemoryUsageAvg,
			Storage: m.StoragePercent(),
		})
	}
	return out, nil
}

// HealthChart buckets VMs by status: running is healthy, maintenance is a
// warning, error and stopped are critical. Other states are not counted.
func (s *Service) HealthChart(ctx context.Context) ([]HealthSlice, error) {
	vms, err := s.store.ListVirtualMachines(ctx)
	if err != nil {
		return nil, err
	}
	var healthy, warning, critical int
	for _, vm := range vms {
		switch vm.Status {
		case model.VMStatusRunning:
			healthy++
		case model.VMStatusMaintenance:
			warning++
		case model.VMStatusError, model.VMStatusStopped:
			critical++
		}
	}
	total := healthy + warning + critical
	pct := func(n int) int {
		if total == 0 {
			return 0
		}
		return round(float64(n) / float64(total) * 100)
	}
	return []HealthSlice{
		{Name: "Healthy", Value: pct(healthy)},
		{Name: "Warning", Value: pct(warning)},
		{Name: "Critical", Value: pct(critical)},
	}, nil
}
