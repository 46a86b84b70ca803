// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/toeirei/stratus/internal/model"
)

// VMInput is the payload for creating a VM. Pointers distinguish a missing
// field from its zero value.
type VMInput struct {
	Name        *string  `json:"name"`
	Status      *string  `json:"status"`
	Template    *string  `json:"template"`
	CPUCores    *int     `json:"cpuCores"`
	Memory      *int     `json:"memory"`
	Storage     *int     `json:"storage"`
	Network     *string  `json:"network"`
	CPUUsage    *float64 `json:"cpuUsage"`
	MemoryUsage *float64 `json:"memoryUsage"`
	Uptime      *string  `json:"uptime"`
	UserID      *int     `json:"userId"`
}

// IsValidVMStatus reports whether status is a known VM state.
func IsValidVMStatus(status string) bool {
	switch status {
	case model.VMStatusRunning, model.VMStatusStopped, model.VMStatusMaintenance, model.VMStatusError:
		return true
	}
	return false
}

type fieldChecker struct {
	errs []FieldError
}

func (c *fieldChecker) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Path: []string{field}, Message: msg})
}

func (c *fieldChecker) requireString(field string, v *string) {
	if v == nil {
		c.add(field, "Required")
		return
	}
	c.nonBlank(field, v)
}

func (c *fieldChecker) nonBlank(field string, v *string) {
	if v != nil && strings.TrimSpace(*v) == "" {
		c.add(field, "String must contain at least 1 character(s)")
	}
}

func (c *fieldChecker) requirePositive(field string, v *int) {
	if v == nil {
		c.add(field, "Required")
		return
	}
	c.positive(field, v)
}

func (c *fieldChecker) positive(field string, v *int) {
	if v != nil && *v <= 0 {
		c.add(field, "Number must be greater than 0")
	}
}

func (c *fieldChecker) status(v *string) {
	if v != nil && *v != "" && !IsValidVMStatus(*v) {
		c.add("status", fmt.Sprintf("Invalid enum value. Expected 'running' | 'stopped' | 'maintenance' | 'error', received '%s'", *v))
	}
}

func (c *fieldChecker) usage(field string, v *float64) {
	if v != nil && (*v < 0 || *v > 100) {
		c.add(field, "Number must be between 0 and 100")
	}
}

func (c *fieldChecker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Message: "Invalid VM data", Errors: c.errs}
}

// Validate checks the required fields of a create request.
func (in VMInput) Validate() error {
	var c fieldChecker
	c.requireString("name", in.Name)
	c.requireString("status", in.Status)
	c.status(in.Status)
	c.requireString("template", in.Template)
	c.requirePositive("cpuCores", in.CPUCores)
	c.requirePositive("memory", in.Memory)
	c.requirePositive("storage", in.Storage)
	c.requireString("network", in.Network)
	c.usage("cpuUsage", in.CPUUsage)
	c.usage("memoryUsage", in.MemoryUsage)
	return c.err()
}

// ToModel converts a validated input. Usage defaults to 0 and uptime to
// "0d 0h".
func (in VMInput) ToModel() model.VirtualMachine {
	vm := model.VirtualMachine{Uptime: "0d 0h"}
	model.VirtualMachinePatch{
		Name: in.Name, Status: in.Status, Template: in.Template,
		CPUCores: in.CPUCores, Memory: in.Memory, Storage: in.Storage, Network: in.Network,
		CPUUsage: in.CPUUsage, MemoryUsage: in.MemoryUsage, Uptime: in.Uptime, UserID: in.UserID,
	}.Apply(&vm)
	return vm
}

// ValidatePatch checks the fields a patch sets.
func ValidatePatch(p model.VirtualMachinePatch) error {
	var c fieldChecker
	c.nonBlank("name", p.Name)
	c.status(p.Status)
	c.nonBlank("template", p.Template)
	c.positive("cpuCores", p.CPUCores)
	c.positive("memory", p.Memory)
	c.positive("storage", p.Storage)
	c.usage("cpuUsage", p.CPUUsage)
	c.usage("memoryUsage", p.MemoryUsage)
	return c.err()
}

// ListVMs returns every virtual machine.
func (s *Service) ListVMs(ctx context.Context) ([]model.VirtualMachine, error) {
	return s.store.ListVirtualMachines(ctx)
}

// GetVM returns db.ErrNotFound for an unknown id.
func (s *Service) GetVM(ctx context.Context, id int) (*model.VirtualMachine, error) {
	return s.store.GetVirtualMachine(ctx, id)
}

// CreateVM validates in and stores the VM.
func (s *Service) CreateVM(ctx context.Context, in VMInput) (model.VirtualMachine, error) {
	if err := in.Validate(); err != nil {
		return model.VirtualMachine{}, err
	}
	vm, err := s.store.CreateVirtualMachine(ctx, in.ToModel())
	if err != nil {
		return model.VirtualMachine{}, fmt.Errorf("create virtual machine: %w", err)
	}
	s.audit(ctx, "CREATE_VM", fmt.Sprintf("id: %d, name: %s", vm.ID, vm.Name))
	return vm, nil
}

// UpdateVM applies patch. An empty patch returns the VM unchanged.
func (s *Service) UpdateVM(ctx context.Context, id int, patch model.VirtualMachinePatch) (*model.VirtualMachine, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.store.GetVirtualMachine(ctx, id)
	}
	return s.store.UpdateVirtualMachine(ctx, id, patch)
}

// DeleteVM returns db.ErrNotFound for an unknown id.
func (s *Service) DeleteVM(ctx context.Context, id int) error {
	if err := s.store.DeleteVirtualMachine(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "DELETE_VM", fmt.Sprintf("id: %d", id))
	return nil
}
