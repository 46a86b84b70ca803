// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/toeirei/stratus/internal/model"
	"github.com/uptrace/bun"
)

// UserModel maps the users table.
type UserModel struct {
	bun.BaseModel `bun:"table:users"`
	ID            int       `bun:"id,pk,autoincrement"`
	Username      string    `bun:"username"`
	Password      string    `bun:"password"`
	Email         string    `bun:"email"`
	Role          string    `bun:"role"`
	CreatedAt     time.Time `bun:"created_at"`
}

// VirtualMachineModel maps the virtual_machines table.
type VirtualMachineModel struct {
	bun.BaseModel `bun:"table:virtual_machines"`
	ID            int       `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name"`
	Status        string    `bun:"status"`
	Template      string    `bun:"template"`
	CPUCores      int       `bun:"cpu_cores"`
	Memory        int       `bun:"memory"`
	Storage       int       `bun:"storage"`
	Network       string    `bun:"network"`
	CPUUsage      float64   `bun:"cpu_usage"`
	MemoryUsage   float64   `bun:"memory_usage"`
	Uptime        string    `bun:"uptime"`
	CreatedAt     time.Time `bun:"created_at"`
	UserID        *int      `bun:"user_id"`
}

// AlertModel maps the alerts table.
type AlertModel struct {
	bun.BaseModel `bun:"table:alerts"`
	ID            int       `bun:"id,pk,autoincrement"`
	Type          string    `bun:"type"`
	Title         string    `bun:"title"`
	Message       string    `bun:"message"`
	Severity      string    `bun:"severity"`
	IsRead        bool      `bun:"is_read"`
	ResourceID    *int      `bun:"resource_id"`
	ResourceType  *string   `bun:"resource_type"`
	CreatedAt     time.Time `bun:"created_at"`
}

// RecommendationModel maps the ai_recommendations table.
type RecommendationModel struct {
	bun.BaseModel `bun:"table:ai_recommendations"`
	ID            int       `bun:"id,pk,autoincrement"`
	Type          string    `bun:"type"`
	Title         string    `bun:"title"`
	Description   string    `bun:"description"`
	Confidence    float64   `bun:"confidence"`
	Priority      string    `bun:"priority"`
	Status        string    `bun:"status"`
	ResourceID    *int      `bun:"resource_id"`
	ResourceType  *string   `bun:"resource_type"`
	CreatedAt     time.Time `bun:"created_at"`
}

// SystemMetricsModel maps the system_metrics table.
type SystemMetricsModel struct {
	bun.BaseModel  `bun:"table:system_metrics"`
	ID             int       `bun:"id,pk,autoincrement"`
	Timestamp      time.Time `bun:"timestamp"`
	TotalServers   int       `bun:"total_servers"`
	StorageUsed    float64   `bun:"storage_used"`
	StorageTotal   float64   `bun:"storage_total"`
	NetworkTraffic float64   `bun:"network_traffic"`
	HealthScore    float64   `bun:"health_score"`
	CPUUsageAvg    float64   `bun:"cpu_usage_avg"`
	MemoryUsageAvg float64   `bun:"memory_usage_avg"`
}

// SettingModel maps the settings table.
type SettingModel struct {
	bun.BaseModel `bun:"table:settings"`
	ID            int       `bun:"id,pk,autoincrement"`
	Key           string    `bun:"key"`
	Value         string    `bun:"value"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// HostModel maps the hosts table.
type HostModel struct {
	bun.BaseModel `bun:"table:hosts"`
	ID            int       `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name"`
	Address       string    `bun:"address"`
	Username      string    `bun:"username"`
	CreatedAt     time.Time `bun:"created_at"`
}

// KnownHostModel maps known_hosts.
type KnownHostModel struct {
	bun.BaseModel `bun:"table:known_hosts"`
	Hostname      string `bun:"hostname,pk"`
	Key           string `bun:"key"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int       `bun:"id,pk,autoincrement"`
	Timestamp     time.Time `bun:"timestamp"`
	Username      string    `bun:"username"`
	Action        string    `bun:"action"`
	Details       string    `bun:"details"`
}

func userModelToModel(u UserModel) model.User {
	return model.User{ID: u.ID, Username: u.Username, Password: u.Password, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func userToModel(u model.User) UserModel {
	return UserModel{ID: u.ID, Username: u.Username, Password: u.Password, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func vmModelToModel(v VirtualMachineModel) model.VirtualMachine {
	return model.VirtualMachine{
		ID: v.ID, Name: v.Name, Status: v.Status, Template: v.Template,
		CPUCores: v.CPUCores, Memory: v.Memory, Storage: v.Storage, Network: v.Network,
		CPUUsage: v.CPUUsage, MemoryUsage: v.MemoryUsage, Uptime: v.Uptime,
		CreatedAt: v.CreatedAt, UserID: v.UserID,
	}
}

func vmToModel(v model.VirtualMachine) VirtualMachineModel {
	return VirtualMachineModel{
		ID: v.ID, Name: v.Name, Status: v.Status, Template: v.Template,
		CPUCores: v.CPUCores, Memory: v.Memory, Storage: v.Storage, Network: v.Network,
		CPUUsage: v.CPUUsage, MemoryUsage: v.MemoryUsage, Uptime: v.Uptime,
		CreatedAt: v.CreatedAt, UserID: v.UserID,
	}
}

func alertModelToModel(a AlertModel) model.Alert {
	return model.Alert{
		ID: a.ID, Type: a.Type, Title: a.Title, Message: a.Message, Severity: a.Severity,
		IsRead: a.IsRead, ResourceID: a.ResourceID, ResourceType: a.ResourceType, CreatedAt: a.CreatedAt,
	}
}

func alertToModel(a model.Alert) AlertModel {
	return AlertModel{
		ID: a.ID, Type: a.Type, Title: a.Title, Message: a.Message, Severity: a.Severity,
		IsRead: a.IsRead, ResourceID: a.ResourceID, ResourceType: a.ResourceType, CreatedAt: a.CreatedAt,
	}
}

func recommendationModelToModel(r RecommendationModel) model.Recommendation {
	return model.Recommendation{
		ID: r.ID, Type: r.Type, Title: r.Title, Description: r.Description, Confidence: r.Confidence,
		Priority: r.Priority, Status: r.Status, ResourceID: r.ResourceID, ResourceType: r.ResourceType, CreatedAt: r.CreatedAt,
	}
}

func recommendationToModel(r model.Recommendation) RecommendationModel {
	return RecommendationModel{
		ID: r.ID, Type: r.Type, Title: r.Title, Description: r.Description, Confidence: r.Confidence,
		Priority: r.Priority, Status: r.Status, ResourceID: r.ResourceID, ResourceType: r.ResourceType, CreatedAt: r.CreatedAt,
	}
}

func metricsModelToModel(m SystemMetricsModel) model.SystemMetrics {
	return model.SystemMetrics{
		ID: m.ID, Timestamp: m.Timestamp, TotalServers: m.TotalServers,
		StorageUsed: m.StorageUsed, StorageTotal: m.StorageTotal, NetworkTraffic: m.NetworkTraffic,
		HealthScore: m.HealthScore, CPUUsageAvg: m.CPUUsageAvg, MemoryUsageAvg: m.MemoryUsageAvg,
	}
}

func metricsToModel(m model.SystemMetrics) SystemMetricsModel {
	return SystemMetricsModel{
		ID: m.ID, Timestamp: m.Timestamp, TotalServers: m.TotalServers,
		StorageUsed: m.StorageUsed, StorageTotal: m.StorageTotal, NetworkTraffic: m.NetworkTraffic,
		HealthScore: m.HealthScore, CPUUsageAvg: m.CPUUsageAvg, MemoryUsageAvg: m.MemoryUsageAvg,
	}
}

func hostModelToModel(h HostModel) model.Host {
	return model.Host{ID: h.ID, Name: h.Name, Address: h.Address, Username: h.Username, CreatedAt: h.CreatedAt}
}

func auditModelToModel(a AuditLogModel) model.AuditLogEntry {
	return model.AuditLogEntry{ID: a.ID, Timestamp: a.Timestamp, Username: a.Username, Action: a.Action, Details: a.Details}
}
