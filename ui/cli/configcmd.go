// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/stratus/internal/config"
	"github.com/toeirei/stratus/internal/i18n"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and write the configuration file",
	}

	var system, force bool
	var output string
	write := &cobra.Command{
		Use:     "write",
		Short:   "Write the effective configuration as stratus.yaml",
		Args:    cobra.NoArgs,
		PreRunE: loadAppConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				var err error
				if path, err = config.GetConfigPath(system); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(i18n.T("config.exists", path))
			}
			if err := config.WriteConfigFileTo(&appConfig, path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return nil
		},
	}
	write.Flags().BoolVar(&system, "system", false, "Write the system-wide file instead of the user file")
	write.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	write.Flags().StringVarP(&output, "output", "o", "", "Write to this path")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, system := range []bool{false, true} {
				p, err := config.GetConfigPath(system)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.AddCommand(write, pathCmd)
	return cmd
}
