// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"

	"github.com/toeirei/stratus/internal/model"
)

func populate(t *testing.T, s *BunStore) {
	t.Helper()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, model.User{Username: "admin", Password: "$2a$hash", Email: "admin@example.com", Role: "admin"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateVirtualMachine(ctx, model.VirtualMachine{Name: "vm-prod-01", Status: "running", Template: "Ubuntu 22.04 LTS", CPUCores: 4, Memory: 8, Storage: 120, Network: "Production Network", UserID: &u.ID}); err != nil {
		t.Fatalf("CreateVirtualMachine: %v", err)
	}
	if _, err := s.CreateAlert(ctx, model.Alert{Type: "info", Title: "Security Update Available", Message: "m", Severity: "medium"}); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	if _, err := s.CreateSystemMetrics(ctx, model.SystemMetrics{TotalServers: 24, StorageUsed: 2.4, StorageTotal: 3.2}); err != nil {
		t.Fatalf("CreateSystemMetrics: %v", err)
	}
	if err := s.SetSetting(ctx, "openai_api_key", "sk-test"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.AddKnownHostKey(ctx, "10.0.0.5:22", "ssh-ed25519 AAAA"); err != nil {
		t.Fatalf("AddKnownHostKey: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	populate(t, src)
	ctx := context.Background()

	data, err := src.ExportDataForBackup(ctx)
	if err != nil {
		t.Fatalf("ExportDataForBackup: %v", err)
	}
	if data.SchemaVersion != model.BackupSchemaVersion {
		t.Fatalf("unexpected schema version %d", data.SchemaVersion)
	}
	if len(data.Users) != 1 || data.Users[0].PasswordHash != "$2a$hash" {
		t.Fatalf("user password hash not exported: %+v", data.Users)
	}

	dst := newTestStoreNamed(t, t.Name()+"_dst")
	// Pre-existing rows are wiped by a full import.
	if _, err := dst.CreateAlert(ctx, model.Alert{Type: "warning", Title: "stale", Message: "m", Severity: "low"}); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	if err := dst.ImportDataFromBackup(ctx, data); err != nil {
		t.Fatalf("ImportDataFromBackup: %v", err)
	}

	alerts, _ := dst.ListAlerts(ctx)
	if len(alerts) != 1 || alerts[0].Title != "Security Update Available" {
		t.Fatalf("unexpected alerts after import: %+v", alerts)
	}
	vms, _ := dst.ListVirtualMachines(ctx)
	if len(vms) != 1 || vms[0].ID != data.VirtualMachines[0].ID || vms[0].UserID == nil {
		t.Fatalf("vm not restored with id and owner: %+v", vms)
	}
	u, err := dst.GetUserByUsername(ctx, "admin")
	if err != nil || u.Password != "$2a$hash" {
		t.Fatalf("user not restored: %+v %v", u, err)
	}
	if v, ok, _ := dst.GetSetting(ctx, "openai_api_key"); !ok || v != "sk-test" {
		t.Fatalf("setting not restored: %q", v)
	}
	if k, _ := dst.GetKnownHostKey(ctx, "10.0.0.5:22"); k != "ssh-ed25519 AAAA" {
		t.Fatalf("known host not restored: %q", k)
	}
}

func TestIntegrateKeepsExistingRows(t *testing.T) {
	s := newTestStore(t)
	populate(t, s)
	ctx := context.Background()

	data, err := s.ExportDataForBackup(ctx)
	if err != nil {
		t.Fatalf("ExportDataForBackup: %v", err)
	}
	data.Alerts = append(data.Alerts, model.Alert{ID: 500, Type: "error", Title: "Restored", Message: "m", Severity: "high"})
	data.Alerts[0].Title = "changed in backup"

	if err := s.IntegrateDataFromBackup(ctx, data); err != nil {
		t.Fatalf("IntegrateDataFromBackup: %v", err)
	}
	alerts, _ := s.ListAlerts(ctx)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts after integrate, got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.Title == "changed in backup" {
			t.Fatalf("existing row was overwritten")
		}
	}
}

func TestImportNilBackup(t *testing.T) {
	s := newTestStore(t)
	if err := s.ImportDataFromBackup(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil backup")
	}
}
