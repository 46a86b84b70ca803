// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/model"
)

// MonitorConfig controls sampling. A zero threshold disables that check.
type MonitorConfig struct {
	Interval        time.Duration
	CPUThreshold    float64
	MemoryThreshold float64
	DiskThreshold   float64
}

// Monitor samples an agent periodically, records system_metrics rows and
// raises one alert per resource each time usage crosses its threshold.
type Monitor struct {
	svc *Service
	ag  *agent.Agent
	cfg MonitorConfig
	now func() time.Time

	hostname string
	breached map[string]bool
	lastNet  uint64
	lastAt   time.Time
}

type watchedResource struct {
	key          string
	label        string
	title        string
	alertType    string
	severity     string
	resourceType string
	usage        float64
	threshold    float64
}

// NewMonitor returns a monitor sampling the local agent.
func (s *Service) NewMonitor(cfg MonitorConfig) *Monitor {
	return &Monitor{svc: s, ag: s.local, cfg: cfg, now: time.Now, breached: map[string]bool{}}
}

// Run samples once immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	interval := m.cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	logging.Infof("monitor: sampling every %s", interval)
	if _, err := m.Sample(ctx); err != nil {
		logging.Warnf("monitor: sample failed: %v", err)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Debugf("monitor: stopped")
			return
		case <-ticker.C:
			if _, err := m.Sample(ctx); err != nil {
				logging.Warnf("monitor: sample failed: %v", err)
			}
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Sample collects one snapshot, stores it and updates alert state.
func (m *Monitor) Sample(ctx context.Context) (model.SystemMetrics, error) {
	if m.hostname == "" {
		m.hostname = m.ag.SystemInfo(ctx).Hostname
	}
	rm := m.ag.ResourceMetrics(ctx)
	at := m.now()

	vms, err := m.svc.store.ListVirtualMachines(ctx)
	if err != nil {
		return model.SystemMetrics{}, err
	}

	resources := []watchedResource{
		{key: "cpu", label: "CPU", title: "High CPU Usage", alertType: AlertWarning, severity: SeverityHigh, resourceType: "server", usage: rm.CPU.Usage, threshold: m.cfg.CPUThreshold},
		{key: "memory", label: "Memory", title: "High Memory Usage", alertType: AlertWarning, severity: SeverityMedium, resourceType: "server", usage: rm.Memory.Usage, threshold: m.cfg.MemoryThreshold},
		{key: "disk", label: "Disk", title: "Storage Almost Full", alertType: AlertError, severity: SeverityHigh, resourceType: "storage", usage: rm.Disk.Usage, threshold: m.cfg.DiskThreshold},
	}
	breaches := 0
	for _, r := range resources {
		over := r.threshold > 0 && r.usage > r.threshold
		if over {
			breaches++
		}
		if err := m.updateAlert(ctx, r, over); err != nil {
			return model.SystemMetrics{}, err
		}
	}

	sample := model.SystemMetrics{
		Timestamp:      at.UTC(),
		TotalServers:   len(vms),
		StorageUsed:    round2(float64(rm.Disk.Used) / 1e12),
		StorageTotal:   round2(float64(rm.Disk.Total) / 1e12),
		NetworkTraffic: m.trafficRate(rm.Network, at),
		HealthScore:    HealthScore(rm.CPU.Usage, rm.Memory.Usage, rm.Disk.Usage, breaches),
		CPUUsageAvg:    round2(rm.CPU.Usage),
		MemoryUsageAvg: round2(rm.Memory.Usage),
	}
	stored, err := m.svc.store.CreateSystemMetrics(ctx, sample)
	if err != nil {
		return model.SystemMetrics{}, fmt.Errorf("record metrics: %w", err)
	}
	logging.Debugf("monitor: cpu=%.1f%% mem=%.1f%% disk=%.1f%% health=%.1f", rm.CPU.Usage, rm.Memory.Usage, rm.Disk.Usage, stored.HealthScore)
	return stored, nil
}

// updateAlert raises an alert on the transition into breach and re-arms
// once usage is back under the threshold.
func (m *Monitor) updateAlert(ctx context.Context, r watchedResource, over bool) error {
	was := m.breached[r.key]
	m.breached[r.key] = over
	if !over {
		if was {
			logging.Infof("monitor: %s usage back to %.1f%%", r.key, r.usage)
		}
		return nil
	}
	if was {
		return nil
	}
	resourceType := r.resourceType
	_, err := m.svc.store.CreateAlert(ctx, model.Alert{
		Type:         r.alertType,
		Title:        r.title,
		Message:      fmt.Sprintf("%s usage on %s is %.1f%%, above the %.0f%% threshold", r.label, m.hostname, r.usage, r.threshold),
		Severity:     r.severity,
		ResourceType: &resourceType,
	})
	if err != nil {
		return fmt.Errorf("raise %s alert: %w", r.key, err)
	}
	logging.Warnf("monitor: %s usage %.1f%% exceeds %.0f%%", r.key, r.usage, r.threshold)
	return nil
}

// trafficRate returns GB/s transferred since the previous sample, 0 on the
// first sample or after a counter reset.
func (m *Monitor) trafficRate(n agent.NetworkMetrics, at time.Time) float64 {
	total := n.BytesReceived + n.BytesSent
	prev, prevAt := m.lastNet, m.lastAt
	m.lastNet, m.lastAt = total, at
	if prevAt.IsZero() || total < prev {
		return 0
	}
	secs := at.Sub(prevAt).Seconds()
	if secs <= 0 {
		return 0
	}
	return round2(float64(total-prev) / secs / 1e9)
}

// HealthScore derives a 0-100 score: 100 minus half the mean usage of CPU,
// memory and disk, minus 10 per breached threshold.
func HealthScore(cpu, memory, disk float64, breaches int) float64 {
	score := 100 - (cpu+memory+disk)/3/2 - float64(10*breaches)
	return round2(math.Max(0, math.Min(100, score)))
}
