// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// printJSON writes v indented.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render prints v as JSON when --json is set and calls text otherwise.
func render(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), v)
	}
	return text(cmd.OutOrStdout())
}

// table returns a tabwriter; callers Flush it.
func table(w io.Writer, header ...any) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		row(tw, header...)
	}
	return tw
}

func row(w io.Writer, cols ...any) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

// statusColor colours VM and service states.
func statusColor(status string) string {
	switch status {
	case "running", "active":
		return okColor.Sprint(status)
	case "maintenance", "inactive", "pending":
		return warnColor.Sprint(status)
	case "error", "failed", "stopped":
		return errColor.Sprint(status)
	}
	return status
}

func severityColor(sev string) string {
	switch sev {
	case "critical", "high":
		return errColor.Sprint(sev)
	case "medium":
		return warnColor.Sprint(sev)
	}
	return dimColor.Sprint(sev)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func pct(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" }
