// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/stratus/internal/backup"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/seed"
)

// newUploader is swapped in tests.
var newUploader = func(ctx context.Context) (interface {
	Upload(ctx context.Context, file string) (string, error)
}, error) {
	return backup.NewS3Uploader(ctx, appConfig.Backup)
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Write a compressed backup of all data",
		Long: `Exports every table into a zstd-compressed JSON file. Without a file name
the backup is written to stratus-backup-<date>.json.zst in the current
directory. With --upload the file is also copied to the configured S3 bucket.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := backup.DefaultFilename(time.Now())
			if len(args) == 1 {
				name = backup.EnsureSuffix(args[0])
			}
			data, err := backup.Create(cmd.Context(), db.Default())
			if err != nil {
				return err
			}
			if err := backup.WriteFile(name, data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor.Sprint(i18n.T("backup.written", name)))

			if upload, _ := cmd.Flags().GetBool("upload"); upload {
				up, err := newUploader(cmd.Context())
				if err != nil {
					return err
				}
				loc, err := up.Upload(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.uploaded", loc))
			}
			return nil
		},
	}
	cmd.Flags().Bool("upload", false, "upload the backup to backup.s3_bucket")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore data from a backup file",
		Long: `Merges the backup into the database, skipping rows that already exist.
With --full every table is wiped first and replaced by the backup contents.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			full, _ := cmd.Flags().GetBool("full")
			data, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := backup.Restore(cmd.Context(), db.Default(), data, full); err != nil {
				return err
			}
			mode := i18n.T("restore.mode_integrate")
			if full {
				mode = i18n.T("restore.mode_full")
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor.Sprint(i18n.T("restore.done", args[0], mode)))
			return nil
		},
	}
	cmd.Flags().Bool("full", false, "wipe all tables before restoring")
	return cmd
}

func newDBMaintainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db-maintain",
		Short:   "Run engine-specific database maintenance (VACUUM, ANALYZE, OPTIMIZE)",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := db.RunDBMaintenance(ctx, appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
				return fmt.Errorf("db maintenance: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor.Sprint(i18n.T("db.maintenance_done")))
			return nil
		},
	}
	cmd.Flags().Duration("timeout", 10*time.Minute, "abort maintenance after this long")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "seed",
		Short:   "Insert the admin user and sample data into an empty database",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := seed.Default()
			if err != nil {
				return err
			}
			res, err := seed.Apply(cmd.Context(), db.Default(), data)
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) error {
				if res.AlreadySeeded {
					fmt.Fprintln(w, warnColor.Sprint(i18n.T("seed.already")))
					return nil
				}
				fmt.Fprintln(w, okColor.Sprint(i18n.T("seed.done", res.Users, res.VirtualMachines, res.Alerts, res.Metrics)))
				return nil
			})
		},
	}
}
