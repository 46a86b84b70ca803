// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package seed loads the demo data set shipped with the binary.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/model"
	"github.com/toeirei/stratus/internal/security"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultData []byte

type userData struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
}

type vmData struct {
	Name        string  `yaml:"name"`
	Status      string  `yaml:"status"`
	Template    string  `yaml:"template"`
	CPUCores    int     `yaml:"cpu_cores"`
	Memory      int     `yaml:"memory"`
	Storage     int     `yaml:"storage"`
	Network     string  `yaml:"network"`
	CPUUsage    float64 `yaml:"cpu_usage"`
	MemoryUsage float64 `yaml:"memory_usage"`
	Uptime      string  `yaml:"uptime"`
}

type alertData struct {
	Type         string  `yaml:"type"`
	Title        string  `yaml:"title"`
	Message      string  `yaml:"message"`
	Severity     string  `yaml:"severity"`
	ResourceID   *int    `yaml:"resource_id"`
	ResourceType *string `yaml:"resource_type"`
}

type metricsData struct {
	TotalServers   int     `yaml:"total_servers"`
	StorageUsed    float64 `yaml:"storage_used"`
	StorageTotal   float64 `yaml:"storage_total"`
	NetworkTraffic float64 `yaml:"network_traffic"`
	HealthScore    float64 `yaml:"health_score"`
	CPUUsageAvg    float64 `yaml:"cpu_usage_avg"`
	MemoryUsageAvg float64 `yaml:"memory_usage_avg"`
}

// Data is a parsed seed file.
type Data struct {
	Admin           userData     `yaml:"admin"`
	VirtualMachines []vmData     `yaml:"virtual_machines"`
	Alerts          []alertData  `yaml:"alerts"`
	Metrics         *metricsData `yaml:"metrics"`
}

// Result counts what Apply inserted.
type Result struct {
	AlreadySeeded   bool
	Users           int
	VirtualMachines int
	Alerts          int
	Metrics         int
}

// Parse decodes a seed file.
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	if d.Admin.Username == "" {
		return nil, errors.New("parse seed data: admin.username is required")
	}
	return &d, nil
}

// Default returns the embedded demo data.
func Default() (*Data, error) { return Parse(defaultData) }

// Apply inserts d into store. When the admin user exists already the store
// counts as seeded and nothing is written.
func Apply(ctx context.Context, store db.Store, d *Data) (Result, error) {
	var res Result
	if _, err := store.GetUserByUsername(ctx, d.Admin.Username); err == nil {
		logging.Infof("seed: user %q exists, skipping", d.Admin.Username)
		res.AlreadySeeded = true
		return res, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return res, fmt.Errorf("lookup %s: %w", d.Admin.Username, err)
	}

	hash, err := security.HashPassword(d.Admin.Password)
	if err != nil {
		return res, err
	}
	admin, err := store.CreateUser(ctx, model.User{
		Username: d.Admin.Username,
		Password: hash,
		Email:    d.Admin.Email,
		Role:     d.Admin.Role,
	})
	if err != nil {
		return res, fmt.Errorf("create admin user: %w", err)
	}
	res.Users++

	for _, v := range d.VirtualMachines {
		owner := admin.ID
		if _, err := store.CreateVirtualMachine(ctx, model.VirtualMachine{
			Name:        v.Name,
			Status:      v.Status,
			Template:    v.Template,
			CPUCores:    v.CPUCores,
			Memory:      v.Memory,
			Storage:     v.Storage,
			Network:     v.Network,
			CPUUsage:    v.CPUUsage,
			MemoryUsage: v.MemoryUsage,
			Uptime:      v.Uptime,
			UserID:      &owner,
		}); err != nil {
			return res, fmt.Errorf("create vm %s: %w", v.Name, err)
		}
		res.VirtualMachines++
	}

	for _, a := range d.Alerts {
		if _, err := store.CreateAlert(ctx, model.Alert{
			Type:         a.Type,
			Title:        a.Title,
			Message:      a.Message,
			Severity:     a.Severity,
			ResourceID:   a.ResourceID,
			ResourceType: a.ResourceType,
		}); err != nil {
			return res, fmt.Errorf("create alert %q: %w", a.Title, err)
		}
		res.Alerts++
	}

	if m := d.Metrics; m != nil {
		if _, err := store.CreateSystemMetrics(ctx, model.SystemMetrics{
			Timestamp:      time.Now().UTC(),
			TotalServers:   m.TotalServers,
			StorageUsed:    m.StorageUsed,
			StorageTotal:   m.StorageTotal,
			NetworkTraffic: m.NetworkTraffic,
			HealthScore:    m.HealthScore,
			CPUUsageAvg:    m.CPUUsageAvg,
			MemoryUsageAvg: m.MemoryUsageAvg,
		}); err != nil {
			return res, fmt.Errorf("create metrics: %w", err)
		}
		res.Metrics++
	}

	if err := store.LogAction(ctx, "SEED", fmt.Sprintf("users: %d, vms: %d, alerts: %d", res.Users, res.VirtualMachines, res.Alerts)); err != nil {
		logging.Warnf("seed: audit log failed: %v", err)
	}
	return res, nil
}
