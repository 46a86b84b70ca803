// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/i18n"
)

func newHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage remote hosts reachable over SSH",
	}

	add := &cobra.Command{
		Use:     "add <name> <address>",
		Short:   "Register a host (address is host or host:port)",
		Args:    cobra.ExactArgs(2),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			svc, err := newService()
			if err != nil {
				return err
			}
			h, err := svc.AddHost(cmd.Context(), args[0], args[1], user)
			if errors.Is(err, db.ErrDuplicate) {
				return errors.New(i18n.T("host.exists", args[0]))
			}
			if err != nil {
				return describeError(err)
			}
			return render(cmd, h, func(w io.Writer) error {
				fmt.Fprintln(w, okColor.Sprint(i18n.T("host.added", h.Name, h.String())))
				fmt.Fprintln(w, dimColor.Sprint(i18n.T("host.trust_hint", h.Name)))
				return nil
			})
		},
	}
	add.Flags().String("user", "root", "SSH user")

	list := &cobra.Command{
		Use:     "list",
		Short:   "List registered hosts",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			hosts, err := svc.ListHosts(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, hosts, func(w io.Writer) error {
				if len(hosts) == 0 {
					fmt.Fprintln(w, i18n.T("host.none"))
					return nil
				}
				tw := table(w, "NAME", "ADDRESS", "USER", "ADDED")
				for _, h := range hosts {
					row(tw, h.Name, h.Address, h.Username, h.CreatedAt.Format("2006-01-02"))
				}
				return tw.Flush()
			})
		},
	}

	del := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a host",
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.DeleteHost(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("host.not_found", args[0]))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("host.deleted", args[0]))
			return nil
		},
	}

	trust := &cobra.Command{
		Use:     "trust <name>",
		Short:   "Fetch and pin the host's SSH key",
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			fp, err := svc.TrustHost(cmd.Context(), args[0])
			if errors.Is(err, db.ErrNotFound) {
				return errors.New(i18n.T("host.not_found", args[0]))
			}
			if err != nil {
				return err
			}
			return render(cmd, map[string]string{"host": args[0], "fingerprint": fp}, func(w io.Writer) error {
				fmt.Fprintln(w, okColor.Sprint(i18n.T("host.trusted", args[0], fp)))
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, del, trust)
	return cmd
}
