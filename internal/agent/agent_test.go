// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner answers commands from canned output keyed by the joined argv.
type fakeRunner struct {
	mu       sync.Mutex
	outputs  map[string]Output
	errs     map[string]error
	files    map[string]string
	calls    []string
	timeouts []time.Duration
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]Output{}, errs: map[string]error{}, files: map[string]string{}}
}

func (f *fakeRunner) answer(key string, timeout time.Duration) (Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	f.timeouts = append(f.timeouts, timeout)
	if err, ok := f.errs[key]; ok {
		return f.outputs[key], err
	}
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return Output{}, errors.New("command not found: " + key)
}

func (f *fakeRunner) Run(_ context.Context, timeout time.Duration, name string, args ...string) (Output, error) {
	return f.answer(strings.Join(append([]string{name}, args...), " "), timeout)
}

func (f *fakeRunner) Shell(_ context.Context, timeout time.Duration, command string) (Output, error) {
	return f.answer("sh -c "+command, timeout)
}

func (f *fakeRunner) ReadFile(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return []byte(data), nil
}

type fakeHost struct{ cores int }

func (h fakeHost) HostDetails(context.Context) (HostDetails, error) {
	return HostDetails{KernelVersion: "6.8.0", PlatformVersion: "24.04", Uptime: 3600}, nil
}

func (h fakeHost) LogicalCores(context.Context) (int, error) { return h.cores, nil }

func TestSystemInfo(t *testing.T) {
	r := newFakeRunner()
	r.outputs["hostname"] = Output{Stdout: "node-01\n"}
	r.outputs["uptime"] = Output{Stdout: " 10:00:00 up 1 day,  load average: 1.00, 0.50, 0.25\n"}
	r.outputs["uname -s -m"] = Output{Stdout: "Linux x86_64\n"}
	a := New(r, Options{})
	a.SetHostInfoProvider(fakeHost{})

	info := a.SystemInfo(context.Background())
	if info.Hostname != "node-01" || info.LoadAverage[0] != 1 || info.LoadAverage[2] != 0.25 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Platform != "linux" || info.Arch != "x86_64" {
		t.Fatalf("remote platform not taken from uname: %+v", info)
	}
	if info.KernelVersion != "6.8.0" || info.HostUptime != 3600 {
		t.Fatalf("host details missing: %+v", info)
	}
}

func TestSystemInfoFallback(t *testing.T) {
	a := New(newFakeRunner(), Options{})
	info := a.SystemInfo(context.Background())
	if info.Hostname != "unknown" || len(info.LoadAverage) != 3 || info.LoadAverage[0] != 0 {
		t.Fatalf("expected fallback info, got %+v", info)
	}
}

func TestResourceMetrics(t *testing.T) {
	r := newFakeRunner()
	r.outputs["top -bn1"] = Output{Stdout: "%Cpu(s): 12.5 us,  1.0 sy\n"}
	r.outputs["lscpu"] = Output{Stdout: "Model name: Intel Xeon\n"}
	r.outputs["nproc"] = Output{Stdout: "8\n"}
	r.outputs["free -b"] = Output{Stdout: "total used free\nMem: 1000 250 750\n"}
	r.outputs["df -B1 /data"] = Output{Stdout: "Filesystem 1B-blocks Used Available\n/dev/sdb 2000 1000 1000 50% /data\n"}
	r.files["/proc/net/dev"] = "h1\nh2\n eth0: 10 1 0 0 0 0 0 0 20 2 0 0 0 0 0 0\n"
	a := New(r, Options{DiskPath: "/data"})

	m := a.ResourceMetrics(context.Background())
	if m.CPU.Usage != 12.5 || m.CPU.Cores != 8 || m.CPU.Model != "Intel Xeon" {
		t.Fatalf("unexpected cpu: %+v", m.CPU)
	}
	if m.Memory.Usage != 25 || m.Disk.Usage != 50 {
		t.Fatalf("unexpected usage: mem=%v disk=%v", m.Memory.Usage, m.Disk.Usage)
	}
	if m.Network.BytesReceived != 10 || m.Network.PacketsSent != 2 {
		t.Fatalf("unexpected network: %+v", m.Network)
	}
}

func TestResourceMetricsDefaults(t *testing.T) {
	m := New(newFakeRunner(), Options{}).ResourceMetrics(context.Background())
	if m.CPU.Usage != 0 || m.CPU.Cores != 1 || m.CPU.Model != "Unknown CPU" {
		t.Fatalf("unexpected cpu fallback: %+v", m.CPU)
	}
	if m.Memory != (UsageMetrics{}) || m.Disk != (UsageMetrics{}) || m.Network != (NetworkMetrics{}) {
		t.Fatalf("expected zero values, got %+v", m)
	}
}

func TestCPUCoresFallBackToHostProvider(t *testing.T) {
	r := newFakeRunner()
	r.outputs["top -bn1"] = Output{Stdout: "%Cpu(s): 1.0 us\n"}
	a := New(r, Options{})
	a.SetHostInfoProvider(fakeHost{cores: 16})
	if got := a.ResourceMetrics(context.Background()).CPU.Cores; got != 16 {
		t.Fatalf("expected 16 cores from provider, got %d", got)
	}
}

func TestRunningProcessesDefaultLimit(t *testing.T) {
	r := newFakeRunner()
	var b strings.Builder
	b.WriteString("USER PID %CPU %MEM VSZ RSS TTY STAT START TIME COMMAND\n")
	for i := 0; i < 15; i++ {
		b.WriteString("root 1 0.0 0.0 0 0 ? S 00:00 0:00 proc\n")
	}
	r.outputs["ps aux --sort=-%cpu"] = Output{Stdout: b.String()}
	a := New(r, Options{})
	if got := a.RunningProcesses(context.Background(), 0); len(got) != DefaultProcessLimit {
		t.Fatalf("expected %d processes, got %d", DefaultProcessLimit, len(got))
	}
	if got := New(newFakeRunner(), Options{}).RunningProcesses(context.Background(), 5); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list on failure, got %v", got)
	}
}

func TestExecuteCommand(t *testing.T) {
	r := newFakeRunner()
	r.outputs["sh -c echo hi"] = Output{Stdout: "hi\n", Stderr: " warn \n", Duration: 15 * time.Millisecond}
	r.outputs["sh -c false"] = Output{ExitCode: 1, Stderr: "boom\n"}
	r.errs["sh -c false"] = errors.New("sh: exit status 1")
	a := New(r, Options{CommandTimeout: 5 * time.Second})

	ok := a.ExecuteCommand(context.Background(), "echo hi", 0)
	if !ok.Success || ok.Stdout != "hi" || ok.Stderr != "warn" || ok.DurationMs != 15 {
		t.Fatalf("unexpected success result: %+v", ok)
	}
	if r.timeouts[0] != 5*time.Second {
		t.Fatalf("expected configured timeout, got %s", r.timeouts[0])
	}

	bad := a.ExecuteCommand(context.Background(), "false", time.Second)
	if bad.Success || bad.Stdout != "" || bad.ExitCode != 1 || !strings.Contains(bad.Stderr, "exit status 1") || !strings.Contains(bad.Stderr, "boom") {
		t.Fatalf("unexpected failure result: %+v", bad)
	}
}

func TestRestartService(t *testing.T) {
	r := newFakeRunner()
	r.outputs["sudo systemctl restart nginx"] = Output{}
	r.outputs["sudo systemctl restart broken"] = Output{Stderr: "Job for broken.service failed.\n"}
	a := New(r, Options{})

	if res := a.RestartService(context.Background(), "nginx"); !res.Success || res.Message != "Service nginx restarted successfully" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res := a.RestartService(context.Background(), "broken"); res.Success || res.Message != "Job for broken.service failed." {
		t.Fatalf("stderr should mean failure: %+v", res)
	}
	for _, name := range []string{"nginx; rm -rf /", "--now", "", "a b"} {
		if res := a.RestartService(context.Background(), name); res.Success {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	for _, c := range r.calls {
		if strings.Contains(c, "rm -rf") {
			t.Fatalf("unsafe name reached the runner: %q", c)
		}
	}
}

func TestCheckPortAvailability(t *testing.T) {
	r := newFakeRunner()
	r.outputs["netstat -tuln"] = Output{Stdout: "Proto Recv-Q Send-Q Local Address Foreign Address State\ntcp 0 0 0.0.0.0:5000 0.0.0.0:* LISTEN\n"}
	a := New(r, Options{})

	if free, err := a.CheckPortAvailability(context.Background(), 5000); err != nil || free {
		t.Fatalf("port 5000 should be taken: free=%v err=%v", free, err)
	}
	if free, err := a.CheckPortAvailability(context.Background(), 500); err != nil || !free {
		t.Fatalf("port 500 should be free: free=%v err=%v", free, err)
	}
	if _, err := a.CheckPortAvailability(context.Background(), 70000); !errors.Is(err, ErrInvalidPort) {
		t.Fatalf("expected ErrInvalidPort, got %v", err)
	}
	if free, _ := New(newFakeRunner(), Options{}).CheckPortAvailability(context.Background(), 22); !free {
		t.Fatalf("failing netstat should report available")
	}
}

type fakeLister struct {
	cs  []Container
	err error
}

func (f fakeLister) Containers(context.Context) ([]Container, error) { return f.cs, f.err }

func TestDockerContainersSources(t *testing.T) {
	r := newFakeRunner()
	r.outputs["docker ps --format "+dockerFormat] = Output{Stdout: "CONTAINER ID\tIMAGE\nabc\tnginx\tcmd\tnow\tUp\t\tweb\n"}
	cli := New(r, Options{})
	if cs := cli.DockerContainers(context.Background()); len(cs) != 1 || cs[0].Name != "web" {
		t.Fatalf("unexpected cli containers: %+v", cs)
	}

	api := New(newFakeRunner(), Options{DockerSource: DockerSourceAPI})
	api.SetContainerLister(fakeLister{cs: []Container{{ID: "def", Name: "db"}}})
	if cs := api.DockerContainers(context.Background()); len(cs) != 1 || cs[0].Name != "db" {
		t.Fatalf("unexpected api containers: %+v", cs)
	}

	api.SetContainerLister(fakeLister{err: errors.New("daemon down")})
	if cs := api.DockerContainers(context.Background()); cs == nil || len(cs) != 0 {
		t.Fatalf("expected empty list when the daemon is down, got %v", cs)
	}
}
