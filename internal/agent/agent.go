// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package agent collects live telemetry from a host by running standard OS
// utilities and parsing their text output. It also runs operator supplied
// commands and restarts services. Every operation is independent; failures
// are logged and answered with zero-valued defaults.
package agent // import "github.com/toeirei/stratus/internal/agent"

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/stratus/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCommandTimeout bounds ExecuteCommand when no timeout is given.
	DefaultCommandTimeout = 30 * time.Second
	// DefaultProcessLimit is the number of processes RunningProcesses returns
	// for a non-positive limit.
	DefaultProcessLimit = 10
	// MaxServices caps SystemServices.
	MaxServices = 20

	probeTimeout = 10 * time.Second
	unknownCPU   = "Unknown CPU"
)

// Docker sources.
const (
	DockerSourceCLI = "cli"
	DockerSourceAPI = "api"
)

var (
	// ErrInvalidServiceName rejects names that could smuggle extra arguments.
	ErrInvalidServiceName = errors.New("invalid service name")
	// ErrInvalidPort rejects ports outside 1..65535.
	ErrInvalidPort = errors.New("port must be between 1 and 65535")

	serviceNameRe = regexp.MustCompile(`^[A-Za-z0-9@._:-]+$`)
)

// Options tunes an Agent. Zero values select the defaults.
type Options struct {
	DiskPath       string
	DockerSource   string
	CommandTimeout time.Duration
}

// Agent probes one host through a Runner.
type Agent struct {
	runner Runner
	opts   Options
	local  bool
	docker ContainerLister
	host   HostInfoProvider
	start  time.Time
}

// New returns an agent that executes through r. Hosts reached through a
// remote runner get no gopsutil or Docker API enrichment.
func New(r Runner, opts Options) *Agent {
	if opts.DiskPath == "" {
		opts.DiskPath = "/"
	}
	if opts.DockerSource == "" {
		opts.DockerSource = DockerSourceCLI
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	_, local := r.(LocalRunner)
	a := &Agent{runner: r, opts: opts, local: local, start: time.Now()}
	if local {
		a.host = gopsutilHost{}
		if opts.DockerSource == DockerSourceAPI {
			a.docker = &engineLister{}
		}
	}
	return a
}

// NewLocal returns an agent for the machine it runs on.
func NewLocal(opts Options) *Agent {
	return New(LocalRunner{}, opts)
}

// SetHostInfoProvider replaces the host detail source. Nil disables it.
func (a *Agent) SetHostInfoProvider(p HostInfoProvider) { a.host = p }

// SetContainerLister replaces the Docker API client used when the docker
// source is "api".
func (a *Agent) SetContainerLister(l ContainerLister) { a.docker = l }

func (a *Agent) run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := a.runner.Run(ctx, probeTimeout, name, args...)
	if err != nil {
		return "", err
	}
	return out.Stdout, nil
}

// SystemInfo returns the hostname, platform and load averages.
func (a *Agent) SystemInfo(ctx context.Context) SystemInfo {
	info := SystemInfo{
		Hostname:    "unknown",
		Platform:    runtime.GOOS,
		Arch:        runtime.GOARCH,
		Uptime:      time.Since(a.start).Seconds(),
		LoadAverage: []float64{0, 0, 0},
	}

	hostname, err := a.run(ctx, "hostname")
	if err != nil {
		logging.Warnf("agent: hostname failed: %v", err)
		return info
	}
	uptime, err := a.run(ctx, "uptime")
	if err != nil {
		logging.Warnf("agent: uptime failed: %v", err)
		return info
	}
	info.Hostname = strings.TrimSpace(hostname)
	info.LoadAverage = ParseLoadAverage(uptime)

	if !a.local {
		if out, err := a.run(ctx, "uname", "-s", "-m"); err == nil {
			if f := strings.Fields(out); len(f) == 2 {
				info.Platform = strings.ToLower(f[0])
				info.Arch = f[1]
			}
		}
	}

	if a.host != nil {
		if d, err := a.host.HostDetails(ctx); err == nil {
			info.KernelVersion = d.KernelVersion
			info.PlatformVersion = d.PlatformVersion
			info.HostUptime = d.Uptime
		} else {
			logging.Debugf("agent: host details unavailable: %v", err)
		}
	}
	return info
}

// ResourceMetrics collects CPU, memory, disk and network figures
// concurrently. It never fails as a whole; each part falls back to zeros.
func (a *Agent) ResourceMetrics(ctx context.Context) ResourceMetrics {
	var m ResourceMetrics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { m.CPU = a.cpuMetrics(gctx); return nil })
	g.Go(func() error { m.Memory = a.memoryMetrics(gctx); return nil })
	g.Go(func() error { m.Disk = a.diskMetrics(gctx); return nil })
	g.Go(func() error { m.Network = a.networkMetrics(gctx); return nil })
	_ = g.Wait()
	return m
}

func (a *Agent) cpuMetrics(ctx context.Context) CPUMetrics {
	fallback := CPUMetrics{Usage: 0, Cores: 1, Model: unknownCPU}

	top, err := a.run(ctx, "top", "-bn1")
	if err != nil {
		logging.Warnf("agent: top failed: %v", err)
		return fallback
	}
	usage, _ := ParseTopCPU(top)

	model := unknownCPU
	if out, err := a.run(ctx, "lscpu"); err == nil {
		if v := ParseLscpuModel(out); v != "" {
			model = v
		}
	} else {
		logging.Debugf("agent: lscpu failed: %v", err)
	}

	cores := 0
	if out, err := a.run(ctx, "nproc"); err == nil {
		cores, _ = strconv.Atoi(strings.TrimSpace(out))
	}
	if cores <= 0 && a.host != nil {
		if n, err := a.host.LogicalCores(ctx); err == nil {
			cores = n
		}
	}
	if cores <= 0 {
		cores = 1
	}
	return CPUMetrics{Usage: usage, Cores: cores, Model: model}
}

func (a *Agent) memoryMetrics(ctx context.Context) UsageMetrics {
	out, err := a.run(ctx, "free", "-b")
	if err != nil {
		logging.Warnf("agent: free failed: %v", err)
		return UsageMetrics{}
	}
	m, _ := ParseFree(out)
	return m
}

func (a *Agent) diskMetrics(ctx context.Context) UsageMetrics {
	out, err := a.run(ctx, "df", "-B1", a.opts.DiskPath)
	if err != nil {
		logging.Warnf("agent: df %s failed: %v", a.opts.DiskPath, err)
		return UsageMetrics{}
	}
	m, _ := ParseDf(out)
	return m
}

func (a *Agent) networkMetrics(ctx context.Context) NetworkMetrics {
	data, err := a.runner.ReadFile(ctx, "/proc/net/dev")
	if err != nil {
		logging.Warnf("agent: read /proc/net/dev failed: %v", err)
		return NetworkMetrics{}
	}
	return ParseNetDev(string(data))
}

// RunningProcesses returns the top limit processes by CPU usage.
func (a *Agent) RunningProcesses(ctx context.Context, limit int) []ProcessInfo {
	if limit <= 0 {
		limit = DefaultProcessLimit
	}
	out, err := a.run(ctx, "ps", "aux", "--sort=-%cpu")
	if err != nil {
		logging.Warnf("agent: ps failed: %v", err)
		return []ProcessInfo{}
	}
	return ParsePS(out, limit)
}

// SystemServices lists active and failed systemd services.
func (a *Agent) SystemServices(ctx context.Context) []ServiceInfo {
	out, err := a.run(ctx, "systemctl", "list-units", "--type=service", "--state=active,failed", "--no-pager", "--no-legend")
	if err != nil {
		logging.Warnf("agent: systemctl list-units failed: %v", err)
		return []ServiceInfo{}
	}
	return ParseSystemctl(out, MaxServices)
}

// ExecuteCommand runs command through the shell. A non-positive timeout
// selects the configured command timeout.
func (a *Agent) ExecuteCommand(ctx context.Context, command string, timeout time.Duration) CommandResult {
	if timeout <= 0 {
		timeout = a.opts.CommandTimeout
	}
	out, err := a.runner.Shell(ctx, timeout, command)
	res := CommandResult{ExitCode: out.ExitCode, DurationMs: out.Duration.Milliseconds()}
	if err != nil {
		msg := err.Error()
		if s := strings.TrimSpace(out.Stderr); s != "" {
			msg = msg + "\n" + s
		}
		if msg == "" {
			msg = "Command execution failed"
		}
		res.Stderr = msg
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
		return res
	}
	res.Stdout = strings.TrimSpace(out.Stdout)
	res.Stderr = strings.TrimSpace(out.Stderr)
	res.Success = true
	return res
}

// ValidateServiceName reports whether name is safe to hand to systemctl.
func ValidateServiceName(name string) error {
	if !serviceNameRe.MatchString(name) || strings.HasPrefix(name, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidServiceName, name)
	}
	return nil
}

// RestartService restarts a systemd unit with sudo. Any stderr output counts
// as failure.
func (a *Agent) RestartService(ctx context.Context, name string) RestartResult {
	if err := ValidateServiceName(name); err != nil {
		return RestartResult{Success: false, Message: err.Error()}
	}
	out, err := a.runner.Run(ctx, a.opts.CommandTimeout, "sudo", "systemctl", "restart", name)
	if s := strings.TrimSpace(out.Stderr); s != "" {
		return RestartResult{Success: false, Message: s}
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Failed to restart service"
		}
		return RestartResult{Success: false, Message: msg}
	}
	return RestartResult{Success: true, Message: fmt.Sprintf("Service %s restarted successfully", name)}
}

// CheckPortAvailability reports whether nothing listens on port. A failing
// netstat counts as available.
func (a *Agent) CheckPortAvailability(ctx context.Context, port int) (bool, error) {
	if port < 1 || port > 65535 {
		return false, ErrInvalidPort
	}
	out, err := a.run(ctx, "netstat", "-tuln")
	if err != nil {
		logging.Debugf("agent: netstat failed, assuming port %d is free: %v", port, err)
		return true, nil
	}
	return !PortInUse(out, port), nil
}

// DockerContainers lists running containers from the docker CLI or, with
// the "api" source, from the Docker Engine API.
func (a *Agent) DockerContainers(ctx context.Context) []Container {
	if a.opts.DockerSource == DockerSourceAPI && a.docker != nil {
		cs, err := a.docker.Containers(ctx)
		if err != nil {
			logging.Debugf("agent: docker api unavailable: %v", err)
			return []Container{}
		}
		return cs
	}
	out, err := a.run(ctx, "docker", "ps", "--format", dockerFormat)
	if err != nil {
		logging.Debugf("agent: docker ps failed: %v", err)
		return []Container{}
	}
	return ParseDockerPS(out)
}
