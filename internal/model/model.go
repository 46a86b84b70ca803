// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"time"
)

// VM lifecycle states as stored in virtual_machines.status.
const (
	VMStatusRunning     = "running"
	VMStatusStopped     = "stopped"
	VMStatusMaintenance = "maintenance"
	VMStatusError       = "error"
)

// Recommendation states.
const (
	RecommendationPending   = "pending"
	RecommendationApplied   = "applied"
	RecommendationDismissed = "dismissed"
)

// User is a dashboard operator. Password holds a bcrypt hash and is never
// serialized.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// VirtualMachine is a VM record tracked by the dashboard. Memory and Storage
// are in GB.
type VirtualMachine struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Template    string    `json:"template"`
	CPUCores    int       `json:"cpuCores"`
	Memory      int       `json:"memory"`
	Storage     int       `json:"storage"`
	Network     string    `json:"network"`
	CPUUsage    float64   `json:"cpuUsage"`
	MemoryUsage float64   `json:"memoryUsage"`
	Uptime      string    `json:"uptime"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      *int      `json:"userId"`
}

// String returns "name (status)".
func (vm VirtualMachine) String() string {
	return fmt.Sprintf("%s (%s)", vm.Name, vm.Status)
}

// VirtualMachinePatch carries a partial update. Nil fields are left alone.
type VirtualMachinePatch struct {
	Name        *string  `json:"name,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Template    *string  `json:"template,omitempty"`
	CPUCores    *int     `json:"cpuCores,omitempty"`
	Memory      *int     `json:"memory,omitempty"`
	Storage     *int     `json:"storage,omitempty"`
	Network     *string  `json:"network,omitempty"`
	CPUUsage    *float64 `json:"cpuUsage,omitempty"`
	MemoryUsage *float64 `json:"memoryUsage,omitempty"`
	Uptime      *string  `json:"uptime,omitempty"`
	UserID      *int     `json:"userId,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p VirtualMachinePatch) IsEmpty() bool {
	return p == VirtualMachinePatch{}
}

// Apply copies every set field of p onto vm.
func (p VirtualMachinePatch) Apply(vm *VirtualMachine) {
	if p.Name != nil {
		vm.Name = *p.Name
	}
	if p.Status != nil {
		vm.Status = *p.Status
	}
	if p.Template != nil {
		vm.Template = *p.Template
	}
	if p.CPUCores != nil {
		vm.CPUCores = *p.CPUCores
	}
	if p.Memory != nil {
		vm.Memory = *p.Memory
	}
	if p.Storage != nil {
		vm.Storage = *p.Storage
	}
	if p.Network != nil {
		vm.Network = *p.Network
	}
	if p.CPUUsage != nil {
		vm.CPUUsage = *p.CPUUsage
	}
	if p.MemoryUsage != nil {
		vm.MemoryUsage = *p.MemoryUsage
	}
	if p.Uptime != nil {
		vm.Uptime = *p.Uptime
	}
	if p.UserID != nil {
		vm.UserID = p.UserID
	}
}

// Alert is a notification raised against a VM, server or storage pool.
type Alert struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Severity     string    `json:"severity"`
	IsRead       bool      `json:"isRead"`
	ResourceID   *int      `json:"resourceId"`
	ResourceType *string   `json:"resourceType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Recommendation is an AI generated suggestion awaiting operator action.
type Recommendation struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Confidence   float64   `json:"confidence"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	ResourceID   *int      `json:"resourceId"`
	ResourceType *string   `json:"resourceType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SystemMetrics is one aggregate sample of the whole environment.
// Storage figures are in TB and network traffic in GB/s.
type SystemMetrics struct {
	ID             int       `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	TotalServers   int       `json:"totalServers"`
	StorageUsed    float64   `json:"storageUsed"`
	StorageTotal   float64   `json:"storageTotal"`
	NetworkTraffic float64   `json:"networkTraffic"`
	HealthScore    float64   `json:"healthScore"`
	CPUUsageAvg    float64   `json:"cpuUsageAvg"`
	MemoryUsageAvg float64   `json:"memoryUsageAvg"`
}

// StoragePercent returns used/total as a rounded percentage, 0 when total is 0.
func (m SystemMetrics) StoragePercent() int {
	if m.StorageTotal <= 0 {
		return 0
	}
	return int(roundHalfUp(m.StorageUsed / m.StorageTotal * 100))
}

// Setting is a key/value pair persisted in the settings table.
type Setting struct {
	ID        int       `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Host is a remote machine the agent can probe over SSH.
type Host struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// String returns the user@address representation.
func (h Host) String() string {
	return fmt.Sprintf("%s@%s", h.Username, h.Address)
}

// KnownHost is a pinned SSH host key.
type KnownHost struct {
	Hostname string `json:"hostname"`
	Key      string `json:"key"`
}

// AuditLogEntry records an operator action.
type AuditLogEntry struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

func roundHalfUp(v float64) float64 {
	if v < 0 {
		return -roundHalfUp(-v)
	}
	return float64(int64(v + 0.5))
}
