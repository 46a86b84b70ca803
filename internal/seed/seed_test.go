// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package seed

import (
	"context"
	"testing"

	"github.com/toeirei/stratus/internal/security"
	"github.com/toeirei/stratus/internal/testutil"
)

func TestDefaultData(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if d.Admin.Username != "admin" || len(d.VirtualMachines) != 3 || len(d.Alerts) != 3 || d.Metrics == nil {
		t.Fatalf("unexpected seed data %+v", d)
	}
	if d.Alerts[0].ResourceID == nil || *d.Alerts[0].ResourceID != 1 || d.Alerts[1].ResourceID != nil {
		t.Fatalf("resource ids not parsed as expected")
	}
}

func TestParseRequiresAdmin(t *testing.T) {
	if _, err := Parse([]byte("virtual_machines: []\n")); err == nil {
		t.Fatalf("expected an error without admin")
	}
	if _, err := Parse([]byte("admin: [")); err == nil {
		t.Fatalf("expected a yaml error")
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t, "seed")

	d, _ := Default()
	res, err := Apply(ctx, store, d)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.AlreadySeeded || res.Users != 1 || res.VirtualMachines != 3 || res.Alerts != 3 || res.Metrics != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	admin, err := store.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if admin.Password == "admin123" || security.CheckPassword(admin.Password, "admin123") != nil {
		t.Fatalf("admin password must be stored as a bcrypt hash")
	}
	vms, _ := store.ListVirtualMachines(ctx)
	if len(vms) != 3 || vms[0].UserID == nil || *vms[0].UserID != admin.ID {
		t.Fatalf("vms not owned by admin: %+v", vms)
	}
	latest, _ := store.LatestSystemMetrics(ctx)
	if latest == nil || latest.HealthScore != 94 {
		t.Fatalf("unexpected metrics %+v", latest)
	}

	again, err := Apply(ctx, store, d)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if !again.AlreadySeeded {
		t.Fatalf("second run should be a no-op")
	}
	if vms, _ := store.ListVirtualMachines(ctx); len(vms) != 3 {
		t.Fatalf("second run inserted rows: %d vms", len(vms))
	}
}
