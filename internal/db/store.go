// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/stratus/internal/model"
)

// Store is the persistence contract used by the service layer, the HTTP API
// and the CLI. Getters addressing a single row return ErrNotFound when it
// does not exist; inserts violating a unique key return ErrDuplicate.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id int) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Virtual machines
	ListVirtualMachines(ctx context.Context) ([]model.VirtualMachine, error)
	GetVirtualMachine(ctx context.Context, id int) (*model.VirtualMachine, error)
	CreateVirtualMachine(ctx context.Context, vm model.VirtualMachine) (model.VirtualMachine, error)
	UpdateVirtualMachine(ctx context.Context, id int, patch model.VirtualMachinePatch) (*model.VirtualMachine, error)
	DeleteVirtualMachine(ctx context.Context, id int) error

	// Alerts, oldest first.
	ListAlerts(ctx context.Context) ([]model.Alert, error)
	ListUnreadAlerts(ctx context.Context) ([]model.Alert, error)
	CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error)
	MarkAlertRead(ctx context.Context, id int) error

	// AI recommendations, oldest first.
	ListRecommendations(ctx context.Context) ([]model.Recommendation, error)
	ListPendingRecommendations(ctx context.Context) ([]model.Recommendation, error)
	CreateRecommendation(ctx context.Context, r model.Recommendation) (model.Recommendation, error)
	UpdateRecommendationStatus(ctx context.Context, id int, status string) error

	// System metrics. LatestSystemMetrics returns nil, nil on an empty
	// table; ListSystemMetrics returns the newest limit rows, newest first.
	LatestSystemMetrics(ctx context.Context) (*model.SystemMetrics, error)
	ListSystemMetrics(ctx context.Context, limit int) ([]model.SystemMetrics, error)
	CreateSystemMetrics(ctx context.Context, m model.SystemMetrics) (model.SystemMetrics, error)

	// Settings. GetSetting reports ok=false for a missing key.
	GetSetting(ctx context.Context, key string) (value string, ok bool, err error)
	SetSetting(ctx context.Context, key, value string) error

	// Remote hosts and their pinned SSH host keys.
	ListHosts(ctx context.Context) ([]model.Host, error)
	GetHostByName(ctx context.Context, name string) (*model.Host, error)
	CreateHost(ctx context.Context, h model.Host) (model.Host, error)
	DeleteHost(ctx context.Context, id int) error
	GetKnownHostKey(ctx context.Context, hostname string) (string, error)
	AddKnownHostKey(ctx context.Context, hostname, key string) error

	// Audit trail, newest first.
	LogAction(ctx context.Context, action, details string) error
	ListAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error)

	// Backup and restore. Import wipes all tables first; Integrate only adds
	// rows whose primary key is not present yet.
	ExportDataForBackup(ctx context.Context) (*model.BackupData, error)
	ImportDataFromBackup(ctx context.Context, backup *model.BackupData) error
	IntegrateDataFromBackup(ctx context.Context, backup *model.BackupData) error

	DBType() string
	Close() error
}
