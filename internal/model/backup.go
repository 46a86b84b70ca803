// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// BackupSchemaVersion is written into every backup.
const BackupSchemaVersion = 1

// BackupData is the full dump of the database used by backup and restore.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int `json:"schema_version"`

	Users           []BackupUser     `json:"users"`
	VirtualMachines []VirtualMachine `json:"virtual_machines"`
	Alerts          []Alert          `json:"alerts"`
	Recommendations []Recommendation `json:"ai_recommendations"`
	SystemMetrics   []SystemMetrics  `json:"system_metrics"`
	Settings        []Setting        `json:"settings"`
	Hosts           []Host           `json:"hosts"`
	KnownHosts      []KnownHost      `json:"known_hosts"`
	AuditLogEntries []AuditLogEntry  `json:"audit_log_entries"`
}

// BackupUser carries the password hash that User hides from JSON.
type BackupUser struct {
	User
	PasswordHash string `json:"password_hash"`
}

// ToUser returns the user with its password hash restored.
func (b BackupUser) ToUser() User {
	u := b.User
	u.Password = b.PasswordHash
	return u
}
