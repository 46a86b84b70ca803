// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/model"
	"golang.org/x/term"
)

func printMetrics(w io.Writer, ms []model.SystemMetrics) error {
	tw := table(w, "TIMESTAMP", "SERVERS", "STORAGE", "NETWORK", "HEALTH", "CPU", "MEMORY")
	for _, m := range ms {
		row(tw, m.Timestamp.Local().Format("2006-01-02 15:04:05"), m.TotalServers,
			fmt.Sprintf("%.2f/%.2f TB", m.StorageUsed, m.StorageTotal),
			fmt.Sprintf("%.2f GB/s", m.NetworkTraffic), pct(m.HealthScore), pct(m.CPUUsageAvg), pct(m.MemoryUsageAvg))
	}
	return tw.Flush()
}

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show stored system metrics and dashboard figures",
	}

	current := &cobra.Command{
		Use:     "current",
		Short:   "Show the latest metrics sample and dashboard stats",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			stats, err := svc.BuildDashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, stats, func(w io.Writer) error {
				tw := table(w)
				row(tw, i18n.T("metrics.total_servers"), stats.TotalServers, dimColor.Sprint(stats.ServerGrowth))
				row(tw, i18n.T("metrics.storage"), fmt.Sprintf("%s (%d%%)", stats.StorageUsed, stats.StoragePercent), "")
				row(tw, i18n.T("metrics.network"), stats.NetworkTraffic, dimColor.Sprint(stats.NetworkGrowth))
				row(tw, i18n.T("metrics.health"), stats.HealthScore, "")
				row(tw, i18n.T("metrics.unread_alerts"), stats.AlertsCount, "")
				return tw.Flush()
			})
		},
	}

	history := &cobra.Command{
		Use:     "history",
		Short:   "List stored metrics samples, newest first",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			svc, err := newService()
			if err != nil {
				return err
			}
			ms, err := svc.MetricsHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return render(cmd, ms, func(w io.Writer) error {
				if len(ms) == 0 {
					fmt.Fprintln(w, i18n.T("metrics.none"))
					return nil
				}
				return printMetrics(w, ms)
			})
		},
	}
	history.Flags().Int("limit", 50, "number of samples")

	predict := &cobra.Command{
		Use:     "predict",
		Short:   "Forecast resource needs from recent metrics",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd)
			if err != nil {
				return err
			}
			pred, err := svc.Predict(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pred)
		},
	}

	cmd.AddCommand(current, history, predict)
	return cmd
}

// readSecret reads a key from the terminal without echo, or a line from
// stdin when it is not a terminal.
var readSecret = func(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change application settings",
	}

	show := &cobra.Command{
		Use:     "show",
		Short:   "Show settings; secrets are masked",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			s, err := svc.GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, s, func(w io.Writer) error {
				key := s.OpenAIAPIKey
				if key == "" {
					key = dimColor.Sprint(i18n.T("settings.not_set"))
				}
				fmt.Fprintf(w, "%s %s\n", i18n.T("settings.openai_key"), key)
				return nil
			})
		},
	}

	setKey := &cobra.Command{
		Use:     "set-openai-key [key]",
		Short:   "Store the OpenAI API key; prompts when no key is given",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				var err error
				if key, err = readSecret(i18n.T("settings.key_prompt")); err != nil {
					return err
				}
			}
			if strings.TrimSpace(key) == "" {
				return errors.New(i18n.T("settings.key_empty"))
			}
			svc, err := newService()
			if err != nil {
				return err
			}
			if err := svc.SetOpenAIKey(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor.Sprint(i18n.T("settings.key_saved")))
			return nil
		},
	}

	test := &cobra.Command{
		Use:     "test-openai",
		Short:   "Check that the configured OpenAI key works",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			res, err := svc.TestOpenAI(cmd.Context())
			if errors.Is(err, core.ErrNotConfigured) {
				return errors.New(i18n.T("settings.key_missing"))
			}
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("settings.test_failed"), err)
			}
			return render(cmd, res, func(w io.Writer) error {
				fmt.Fprintln(w, okColor.Sprintf("%s (%s)", res.Message, res.Model))
				return nil
			})
		},
	}

	cmd.AddCommand(show, setKey, test)
	return cmd
}
