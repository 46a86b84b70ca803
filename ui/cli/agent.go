// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/i18n"
	"github.com/toeirei/stratus/internal/tui"
)

// withAgent resolves --host and runs fn against that host's agent.
func withAgent(cmd *cobra.Command, fn func(svc *core.Service, ag *agent.Agent, host string) error) error {
	host, _ := cmd.Flags().GetString("host")
	svc, err := newService()
	if err != nil {
		return err
	}
	ag, release, err := svc.AgentFor(cmd.Context(), host)
	if errors.Is(err, db.ErrNotFound) {
		return errors.New(i18n.T("host.not_found", host))
	}
	if err != nil {
		return err
	}
	defer release()
	return fn(svc, ag, host)
}

func agentSubcommand(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, args []string, svc *core.Service, ag *agent.Agent, host string) error) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, a []string) error {
			return withAgent(cmd, func(svc *core.Service, ag *agent.Agent, host string) error {
				return run(cmd, a, svc, ag, host)
			})
		},
	}
}

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Query the infrastructure agent on the local or a registered host",
	}
	cmd.PersistentFlags().String("host", "", `registered host name; empty or "local" means this machine`)

	info := agentSubcommand("info", "Show hostname, platform and load", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, _ *core.Service, ag *agent.Agent, _ string) error {
			si := ag.SystemInfo(cmd.Context())
			return render(cmd, si, func(w io.Writer) error {
				tw := table(w)
				row(tw, "Hostname", si.Hostname)
				row(tw, "Platform", si.Platform+" "+si.PlatformVersion)
				row(tw, "Arch", si.Arch)
				if si.KernelVersion != "" {
					row(tw, "Kernel", si.KernelVersion)
				}
				if si.HostUptime > 0 {
					row(tw, "Uptime", (time.Duration(si.HostUptime) * time.Second).String())
				}
				row(tw, "Load", formatLoad(si.LoadAverage))
				return tw.Flush()
			})
		})

	metrics := agentSubcommand("metrics", "Show live CPU, memory, disk and network figures", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, _ *core.Service, ag *agent.Agent, _ string) error {
			m := ag.ResourceMetrics(cmd.Context())
			return render(cmd, m, func(w io.Writer) error {
				tw := table(w)
				row(tw, "CPU", pct(m.CPU.Usage), fmt.Sprintf("%d cores, %s", m.CPU.Cores, m.CPU.Model))
				row(tw, "Memory", pct(m.Memory.Usage), humanize.IBytes(m.Memory.Used)+" / "+humanize.IBytes(m.Memory.Total))
				row(tw, "Disk", pct(m.Disk.Usage), humanize.IBytes(m.Disk.Used)+" / "+humanize.IBytes(m.Disk.Total))
				row(tw, "Network", "rx "+humanize.IBytes(m.Network.BytesReceived), "tx "+humanize.IBytes(m.Network.BytesSent))
				return tw.Flush()
			})
		})

	processes := agentSubcommand("processes", "List the busiest processes", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, _ *core.Service, ag *agent.Agent, _ string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			ps := ag.RunningProcesses(cmd.Context(), limit)
			return render(cmd, ps, func(w io.Writer) error {
				tw := table(w, "PID", "NAME", "CPU%", "MEM%", "STAT")
				for _, p := range ps {
					row(tw, p.PID, p.Name, p.CPU, p.Memory, p.Status)
				}
				return tw.Flush()
			})
		})
	processes.Flags().Int("limit", agent.DefaultProcessLimit, "number of processes")

	services := agentSubcommand("services", "List active and failed systemd services", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, _ *core.Service, ag *agent.Agent, _ string) error {
			ss := ag.SystemServices(cmd.Context())
			return render(cmd, ss, func(w io.Writer) error {
				tw := table(w, "SERVICE", "STATUS", "ENABLED")
				for _, s := range ss {
					row(tw, s.Name, statusColor(s.Status), s.Enabled)
				}
				return tw.Flush()
			})
		})

	docker := agentSubcommand("docker", "List running containers", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string, _ *core.Service, ag *agent.Agent, _ string) error {
			cs := ag.DockerContainers(cmd.Context())
			return render(cmd, cs, func(w io.Writer) error {
				if len(cs) == 0 {
					fmt.Fprintln(w, i18n.T("agent.no_containers"))
					return nil
				}
				tw := table(w, "ID", "NAME", "IMAGE", "STATUS", "PORTS")
				for _, c := range cs {
					row(tw, c.ID, c.Name, c.Image, c.Status, c.Ports)
				}
				return tw.Flush()
			})
		})

	exec := agentSubcommand("exec <command...>", "Run a shell command on the host", cobra.MinimumNArgs(1),
		func(cmd *cobra.Command, args []string, svc *core.Service, ag *agent.Agent, host string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			out, err := svc.ExecuteCommand(cmd.Context(), ag, host, strings.Join(args, " "), timeout)
			if err != nil {
				return describeError(err)
			}
			return render(cmd, out, func(w io.Writer) error {
				if out.Stdout != "" {
					fmt.Fprintln(w, out.Stdout)
				}
				if out.Stderr != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), errColor.Sprint(out.Stderr))
				}
				fmt.Fprintln(cmd.ErrOrStderr(), dimColor.Sprintf("exit %d in %dms (%s)", out.ExitCode, out.DurationMs, out.ExecutionID))
				return nil
			})
		})
	exec.Flags().Duration("timeout", 0, "command timeout (default agent.command_timeout)")

	restart := agentSubcommand("restart <service>", "Restart a systemd service", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, svc *core.Service, ag *agent.Agent, host string) error {
			res, err := svc.RestartService(cmd.Context(), ag, host, args[0])
			if err != nil {
				return describeError(err)
			}
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor.Sprint(res.Message))
			return nil
		})

	port := agentSubcommand("port <port>", "Check whether a TCP/UDP port is free", cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string, _ *core.Service, ag *agent.Agent, _ string) error {
			p, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid port %q", args[0])
			}
			available, err := ag.CheckPortAvailability(cmd.Context(), p)
			if err != nil {
				return err
			}
			return render(cmd, map[string]any{"port": p, "available": available}, func(w io.Writer) error {
				if available {
					fmt.Fprintln(w, okColor.Sprint(i18n.T("agent.port_free", p)))
				} else {
					fmt.Fprintln(w, warnColor.Sprint(i18n.T("agent.port_in_use", p)))
				}
				return nil
			})
		})

	cmd.AddCommand(info, metrics, processes, services, docker, exec, restart, port)
	return cmd
}

func formatLoad(load []float64) string {
	parts := make([]string, len(load))
	for i, l := range load {
		parts[i] = strconv.FormatFloat(l, 'f', 2, 64)
	}
	return strings.Join(parts, " ")
}

// runTop is swapped in tests.
var runTop = tui.Run

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "top",
		Short:   "Live terminal view of a host",
		Args:    cobra.NoArgs,
		PreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd, func(svc *core.Service, ag *agent.Agent, host string) error {
				interval, _ := cmd.Flags().GetDuration("interval")
				return runTop(cmd.Context(), ag, tui.Options{
					Host:         host,
					Interval:     interval,
					ProcessLimit: appConfig.Agent.ProcessLimit,
					Audit:        svc.Store(),
				})
			})
		},
	}
	cmd.Flags().String("host", "", "registered host name")
	cmd.Flags().Duration("interval", 2*time.Second, "refresh interval")
	return cmd
}
