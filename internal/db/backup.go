// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/stratus/internal/model"
	"github.com/uptrace/bun"
)

// backupTables lists tables with an id column in foreign-key order:
// parents first. Wipes run in reverse.
var backupTables = []string{"users", "virtual_machines", "alerts", "ai_recommendations", "system_metrics", "settings", "hosts", "audit_log"}

// ExportDataForBackup reads every table inside one transaction.
func (s *BunStore) ExportDataForBackup(ctx context.Context) (*model.BackupData, error) {
	backup := &model.BackupData{SchemaVersion: model.BackupSchemaVersion}
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		var users []UserModel
		if err := tx.NewSelect().Model(&users).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, u := range users {
			backup.Users = append(backup.Users, model.BackupUser{User: userModelToModel(u), PasswordHash: u.Password})
		}

		var vms []VirtualMachineModel
		if err := tx.NewSelect().Model(&vms).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, v := range vms {
			backup.VirtualMachines = append(backup.VirtualMachines, vmModelToModel(v))
		}

		var alerts []AlertModel
		if err := tx.NewSelect().Model(&alerts).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, a := range alerts {
			backup.Alerts = append(backup.Alerts, alertModelToModel(a))
		}

		var recs []RecommendationModel
		if err := tx.NewSelect().Model(&recs).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, r := range recs {
			backup.Recommendations = append(backup.Recommendations, recommendationModelToModel(r))
		}

		var metrics []SystemMetricsModel
		if err := tx.NewSelect().Model(&metrics).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, m := range metrics {
			backup.SystemMetrics = append(backup.SystemMetrics, metricsModelToModel(m))
		}

		var settings []SettingModel
		if err := tx.NewSelect().Model(&settings).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, st := range settings {
			backup.Settings = append(backup.Settings, model.Setting{ID: st.ID, Key: st.Key, Value: st.Value, UpdatedAt: st.UpdatedAt})
		}

		var hosts []HostModel
		if err := tx.NewSelect().Model(&hosts).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, h := range hosts {
			backup.Hosts = append(backup.Hosts, hostModelToModel(h))
		}

		var khs []KnownHostModel
		if err := tx.NewSelect().Model(&khs).OrderExpr("hostname ASC").Scan(ctx); err != nil {
			return err
		}
		for _, k := range khs {
			backup.KnownHosts = append(backup.KnownHosts, model.KnownHost{Hostname: k.Hostname, Key: k.Key})
		}

		var als []AuditLogModel
		if err := tx.NewSelect().Model(&als).OrderExpr("id ASC").Scan(ctx); err != nil {
			return err
		}
		for _, a := range als {
			backup.AuditLogEntries = append(backup.AuditLogEntries, auditModelToModel(a))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return backup, nil
}

// ImportDataFromBackup wipes every table and inserts the backup rows with
// their original ids.
func (s *BunStore) ImportDataFromBackup(ctx context.Context, backup *model.BackupData) error {
	if backup == nil {
		return fmt.Errorf("nil backup")
	}
	return WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if _, err := ExecRaw(ctx, tx, "DELETE FROM known_hosts"); err != nil {
			return err
		}
		for i := len(backupTables) - 1; i >= 0; i-- {
			if _, err := ExecRaw(ctx, tx, fmt.Sprintf("DELETE FROM %s", backupTables[i])); err != nil {
				return err
			}
		}
		if err := insertBackupRows(ctx, tx, backup, false); err != nil {
			return err
		}
		return s.resetSequences(ctx, tx)
	})
}

// IntegrateDataFromBackup inserts only rows whose primary key is missing.
func (s *BunStore) IntegrateDataFromBackup(ctx context.Context, backup *model.BackupData) error {
	if backup == nil {
		return fmt.Errorf("nil backup")
	}
	return WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := insertBackupRows(ctx, tx, backup, true); err != nil {
			return err
		}
		return s.resetSequences(ctx, tx)
	})
}

// insertBackupRows inserts every row of backup. With skipExisting, rows
// whose key already exists are left untouched.
func insertBackupRows(ctx context.Context, tx bun.Tx, backup *model.BackupData, skipExisting bool) error {
	insert := func(m interface{}, where string, key interface{}) error {
		if skipExisting {
			exists, err := tx.NewSelect().Model(m).Where(where, key).Exists(ctx)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
		}
		_, err := tx.NewInsert().Model(m).Exec(ctx)
		return MapDBError(err)
	}

	for _, u := range backup.Users {
		m := userToModel(u.ToUser())
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore user %d: %w", u.ID, err)
		}
	}
	for _, v := range backup.VirtualMachines {
		m := vmToModel(v)
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore virtual machine %d: %w", v.ID, err)
		}
	}
	for _, a := range backup.Alerts {
		m := alertToModel(a)
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore alert %d: %w", a.ID, err)
		}
	}
	for _, r := range backup.Recommendations {
		m := recommendationToModel(r)
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore recommendation %d: %w", r.ID, err)
		}
	}
	for _, sm := range backup.SystemMetrics {
		m := metricsToModel(sm)
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore metrics %d: %w", sm.ID, err)
		}
	}
	for _, st := range backup.Settings {
		m := SettingModel{ID: st.ID, Key: st.Key, Value: st.Value, UpdatedAt: st.UpdatedAt}
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore setting %s: %w", st.Key, err)
		}
	}
	for _, h := range backup.Hosts {
		m := HostModel{ID: h.ID, Name: h.Name, Address: h.Address, Username: h.Username, CreatedAt: h.CreatedAt}
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore host %s: %w", h.Name, err)
		}
	}
	for _, k := range backup.KnownHosts {
		m := KnownHostModel{Hostname: k.Hostname, Key: k.Key}
		if err := insert(&m, "hostname = ?", m.Hostname); err != nil {
			return fmt.Errorf("restore known host %s: %w", k.Hostname, err)
		}
	}
	for _, a := range backup.AuditLogEntries {
		m := AuditLogModel{ID: a.ID, Timestamp: a.Timestamp, Username: a.Username, Action: a.Action, Details: a.Details}
		if err := insert(&m, "id = ?", m.ID); err != nil {
			return fmt.Errorf("restore audit entry %d: %w", a.ID, err)
		}
	}
	return nil
}

// resetSequences moves Postgres serial sequences past the restored ids.
// SQLite and MySQL track auto-increment values themselves.
func (s *BunStore) resetSequences(ctx context.Context, tx bun.Tx) error {
	if s.dbType != "postgres" {
		return nil
	}
	for _, t := range backupTables {
		q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", t, t)
		if _, err := ExecRaw(ctx, tx, q); err != nil {
			return fmt.Errorf("reset sequence for %s: %w", t, err)
		}
	}
	return nil
}
