// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/toeirei/stratus/internal/ai"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/model"
)

func newAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alert",
		Aliases: []string{"alerts"},
		Short:   "Show and acknowledge alerts",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List alerts, oldest first",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			unread, _ := cmd.Flags().GetBool("unread")
			svc, err := newService()
			if err != nil {
				return err
			}
			var alerts []model.Alert
			if unread {
				alerts, err = svc.ListUnreadAlerts(cmd.Context())
			} else {
				alerts, err = svc.ListAlerts(cmd.Context())
			}
			if err != nil {
				return err
			}
			return render(cmd, alerts, func(w io.Writer) error {
				if len(alerts) == 0 {
					fmt.Fprintln(w, i18n.T("alert.none"))
					return nil
				}
				tw := table(w, "ID", "TYPE", "SEVERITY", "TITLE", "READ", "CREATED")
				for _, a := range alerts {
					read := ""
					if a.IsRead {
						read = "✓"
					}
					row(tw, a.ID, a.Type, severityColor(a.Severity), a.Title, read, a.CreatedAt.Local().Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().Bool("unread", false, "only unread alerts")

	read := &cobra.Command{
		Use:     "read <id>",
		Short:   "Mark an alert as read",
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
			if err := svc.MarkAlertRead(cmd.Context(), id); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("alert.not_found", id))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("alert.marked_read", id))
			return nil
		},
	}

	cmd.AddCommand(list, read)
	return cmd
}

func printAnalysis(w io.Writer, res ai.AnalysisResult) error {
	fmt.Fprintf(w, "%s %s\n", i18n.T("recommendation.health_score"), okColor.Sprintf("%.0f", res.HealthScore))
	if len(res.Recommendations) > 0 {
		fmt.Fprintln(w)
		tw := table(w, "PRIORITY", "TYPE", "CONFIDENCE", "TITLE")
		for _, r := range res.Recommendations {
			row(tw, severityColor(r.Priority), r.Type, fmt.Sprintf("%.0f%%", r.Confidence*100), r.Title)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(res.Predictions) > 0 {
		fmt.Fprintln(w)
		for _, p := range res.Predictions {
			fmt.Fprintf(w, "%s (%s): %s\n", p.Metric, p.Timeframe, p.Prediction)
		}
	}
	return nil
}

func newRecommendationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recommendation",
		Aliases: []string{"rec", "recommendations"},
		Short:   "Work with AI recommendations",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List pending recommendations",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			recs, err := svc.ListPendingRecommendations(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, recs, func(w io.Writer) error {
				if len(recs) == 0 {
					fmt.Fprintln(w, i18n.T("recommendation.none"))
					return nil
				}
				tw := table(w, "ID", "PRIORITY", "TYPE", "CONFIDENCE", "TITLE")
				for _, r := range recs {
					row(tw, r.ID, severityColor(r.Priority), r.Type, fmt.Sprintf("%.0f%%", r.Confidence*100), r.Title)
				}
				return tw.Flush()
			})
		},
	}

	analyze := &cobra.Command{
		Use:     "analyze",
		Short:   "Run an AI infrastructure analysis and store its recommendations",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) error { return printAnalysis(w, res) })
		},
	}

	optimize := &cobra.Command{
		Use:     "optimize <vm-id>",
		Short:   "Ask for optimization suggestions for one VM",
		Args:    cobra.ExactArgs(1),
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := loadService(cmd)
			if err != nil {
				return err
			}
			suggestion, err := svc.OptimizeVM(cmd.Context(), id)
			if errors.Is(err, db.ErrNotFound) {
				return errors.New(i18n.T("vm.not_found", id))
			}
			if err != nil {
				return err
			}
			return render(cmd, map[string]string{"suggestion": suggestion}, func(w io.Writer) error {
				fmt.Fprintln(w, suggestion)
				return nil
			})
		},
	}

	setStatus := &cobra.Command{
		Use:     "set-status <id> <pending|applied|dismissed>",
		Short:   "Change the status of a recommendation",
		Args:    cobra.ExactArgs(2),
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
			if err := svc.SetRecommendationStatus(cmd.Context(), id, args[1]); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("recommendation.not_found", id))
				}
				if errors.Is(err, core.ErrInvalid) {
					return errors.New(i18n.T("recommendation.invalid_status", args[1]))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("recommendation.status_set", id, args[1]))
			return nil
		},
	}

	cmd.AddCommand(list, analyze, optimize, setStatus)
	return cmd
}
