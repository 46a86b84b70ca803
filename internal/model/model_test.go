// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestVirtualMachinePatchApply(t *testing.T) {
	vm := VirtualMachine{Name: "vm-prod-01", Status: VMStatusRunning, CPUCores: 4, Uptime: "0d 0h"}
	status := VMStatusMaintenance
	cores := 8
	p := VirtualMachinePatch{Status: &status, CPUCores: &cores}
	p.Apply(&vm)

	if vm.Status != VMStatusMaintenance {
		t.Errorf("status not applied: %q", vm.Status)
	}
	if vm.CPUCores != 8 {
		t.Errorf("cores not applied: %d", vm.CPUCores)
	}
	if vm.Name != "vm-prod-01" || vm.Uptime != "0d 0h" {
		t.Errorf("unset fields changed: %+v", vm)
	}
}

func TestVirtualMachinePatchIsEmpty(t *testing.T) {
	if !(VirtualMachinePatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
	name := "x"
	if (VirtualMachinePatch{Name: &name}).IsEmpty() {
		t.Fatalf("patch with name should not be empty")
	}
}

func TestStoragePercent(t *testing.T) {
	cases := []struct {
		used, total float64
		want        int
	}{
		{2.4, 3.2, 75},
		{1, 3, 33},
		{2, 3, 67},
		{1, 0, 0},
	}
	for _, c := range cases {
		m := SystemMetrics{StorageUsed: c.used, StorageTotal: c.total}
		if got := m.StoragePercent(); got != c.want {
			t.Errorf("StoragePercent(%v/%v) = %d, want %d", c.used, c.total, got, c.want)
		}
	}
}

func TestHostString(t *testing.T) {
	h := Host{Username: "ops", Address: "10.0.0.5"}
	if got := h.String(); got != "ops@10.0.0.5" {
		t.Errorf("unexpected Host.String(): %q", got)
	}
}
