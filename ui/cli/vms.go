// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/model"
)

// describeError expands validation errors into one line per field.
func describeError(err error) error {
	var verr *core.ValidationError
	if !errors.As(err, &verr) || len(verr.Errors) == 0 {
		return err
	}
	parts := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		parts = append(parts, strings.Join(fe.Path, ".")+": "+fe.Message)
	}
	return fmt.Errorf("%s: %s", verr.Message, strings.Join(parts, "; "))
}

func addVMFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "VM name")
	fs.String("status", "", "running, stopped, maintenance or error")
	fs.String("template", "", "OS template")
	fs.Int("cpu-cores", 0, "number of vCPUs")
	fs.Int("memory", 0, "memory in GB")
	fs.Int("storage", 0, "storage in GB")
	fs.String("network", "", "network name")
	fs.Float64("cpu-usage", 0, "CPU usage percentage")
	fs.Float64("memory-usage", 0, "memory usage percentage")
	fs.String("uptime", "", `uptime label such as "3d 4h"`)
}

// vmPatchFromFlags sets only the fields whose flags were given.
func vmPatchFromFlags(fs *pflag.FlagSet) model.VirtualMachinePatch {
	var p model.VirtualMachinePatch
	str := func(name string) *string {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetString(name)
		return &v
	}
	num := func(name string) *int {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetInt(name)
		return &v
	}
	flt := func(name string) *float64 {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetFloat64(name)
		return &v
	}
	p.Name = str("name")
	p.Status = str("status")
	p.Template = str("template")
	p.CPUCores = num("cpu-cores")
	p.Memory = num("memory")
	p.Storage = num("storage")
	p.Network = str("network")
	p.CPUUsage = flt("cpu-usage")
	p.MemoryUsage = flt("memory-usage")
	p.Uptime = str("uptime")
	return p
}

func printVMs(w io.Writer, vms []model.VirtualMachine) error {
	tw := table(w, "ID", "NAME", "STATUS", "TEMPLATE", "CPU", "MEM", "DISK", "NETWORK", "CPU%", "MEM%", "UPTIME")
	for _, vm := range vms {
		row(tw, vm.ID, vm.Name, statusColor(vm.Status), vm.Template, vm.CPUCores, fmt.Sprintf("%dGB", vm.Memory),
			fmt.Sprintf("%dGB", vm.Storage), vm.Network, pct(vm.CPUUsage), pct(vm.MemoryUsage), vm.Uptime)
	}
	return tw.Flush()
}

func newVMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vm",
		Aliases: []string{"vms"},
		Short:   "Manage virtual machines",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List virtual machines",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			vms, err := svc.ListVMs(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, vms, func(w io.Writer) error {
				if len(vms) == 0 {
					fmt.Fprintln(w, i18n.T("vm.none"))
					return nil
				}
				return printVMs(w, vms)
			})
		},
	}

	show := &cobra.Command{
		Use:     "show <id>",
		Short:   "Show one virtual machine",
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			vm, err := svc.GetVM(cmd.Context(), id)
			if errors.Is(err, db.ErrNotFound) {
				return errors.New(i18n.T("vm.not_found", id))
			}
			if err != nil {
				return err
			}
			return render(cmd, vm, func(w io.Writer) error { return printVMs(w, []model.VirtualMachine{*vm}) })
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a virtual machine",
		Example: `  stratus vm create --name web-01 --status running --template "Ubuntu 22.04 LTS" \
    --cpu-cores 2 --memory 4 --storage 80 --network "Production Network"`,
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := vmPatchFromFlags(cmd.Flags())
			in := core.VMInput{
				Name: p.Name, Status: p.Status, Template: p.Template,
				CPUCores: p.CPUCores, Memory: p.Memory, Storage: p.Storage, Network: p.Network,
				CPUUsage: p.CPUUsage, MemoryUsage: p.MemoryUsage, Uptime: p.Uptime,
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			vm, err := svc.CreateVM(cmd.Context(), in)
			if err != nil {
				return describeError(err)
			}
			return render(cmd, vm, func(w io.Writer) error {
				fmt.Fprintln(w, okColor.Sprint(i18n.T("vm.created", vm.Name, vm.ID)))
				return nil
			})
		},
	}
	addVMFlags(create.Flags())

	update := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change fields of a virtual machine",
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			vm, err := svc.UpdateVM(cmd.Context(), id, vmPatchFromFlags(cmd.Flags()))
			if errors.Is(err, db.ErrNotFound) {
				return errors.New(i18n.T("vm.not_found", id))
			}
			if err != nil {
				return describeError(err)
			}
			return render(cmd, vm, func(w io.Writer) error { return printVMs(w, []model.VirtualMachine{*vm}) })
		},
	}
	addVMFlags(update.Flags())

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a virtual machine",
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.DeleteVM(cmd.Context(), id); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("vm.not_found", id))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("vm.deleted", id))
			return nil
		},
	}

	cmd.AddCommand(list, show, create, update, del)
	return cmd
}
