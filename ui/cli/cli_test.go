// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/model"
	"github.com/toeirei/stratus/internal/testutil"
	"github.com/toeirei/stratus/internal/tui"
)

// setupCLI points config lookups at an empty home and installs an in-memory
// store so setupDefaultServices does not open ./stratus.db.
func setupCLI(t *testing.T) db.Store {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Chdir(home)

	prevNoColor := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = prevNoColor })
	return testutil.NewStore(t, "cli")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("stratus %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

var webVM = []string{
	"vm", "create", "--name", "web-01", "--status", "running", "--template", "Ubuntu 22.04 LTS",
	"--cpu-cores", "2", "--memory", "4", "--storage", "80", "--network", "Production Network",
}

func TestResolveBuildVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	v, c, d := resolveBuildVersion(info)
	if v != "v1.4.0" || c != "abc123" || d != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected version triple: %q %q %q", v, c, d)
	}

	devel := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	if v, _, _ := resolveBuildVersion(devel); v != "dev" {
		t.Fatalf("expected dev for a devel build, got %q", v)
	}
}

func TestVMLifecycle(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "vm", "list")
	if !strings.Contains(out, "No virtual machines.") {
		t.Fatalf("expected empty list message, got %q", out)
	}

	out = mustRun(t, webVM...)
	if !strings.Contains(out, "Created virtual machine web-01 (id 1)") {
		t.Fatalf("unexpected create output %q", out)
	}

	out = mustRun(t, "vm", "update", "1", "--status", "maintenance")
	if !strings.Contains(out, "maintenance") {
		t.Fatalf("expected updated status in %q", out)
	}

	out = mustRun(t, "--json", "vm", "show", "1")
	var vm model.VirtualMachine
	if err := json.Unmarshal([]byte(out), &vm); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if vm.Name != "web-01" || vm.Status != "maintenance" || vm.Uptime != "0d 0h" {
		t.Fatalf("unexpected vm %+v", vm)
	}

	out = mustRun(t, "vm", "delete", "1")
	if !strings.Contains(out, "Deleted virtual machine 1") {
		t.Fatalf("unexpected delete output %q", out)
	}
	if _, err := runCLI(t, "vm", "show", "1"); err == nil || err.Error() != "Virtual machine 1 not found" {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestVMCreateValidation(t *testing.T) {
	setupCLI(t)
	_, err := runCLI(t, "vm", "create", "--name", "x", "--status", "sleeping")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"Invalid VM data", "template: Required", "cpuCores: Required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestDescribeErrorPassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	if describeError(plain) != plain {
		t.Fatalf("plain errors must be returned unchanged")
	}
	verr := &core.ValidationError{Message: "Invalid", Errors: []core.FieldError{{Path: []string{"a", "b"}, Message: "bad"}}}
	if got := describeError(verr).Error(); got != "Invalid: a.b: bad" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestAlertReadNotFound(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "alert", "read", "42"); err == nil || err.Error() != "Alert 42 not found" {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := runCLI(t, "alert", "read", "abc"); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestSettingsKeyIsMasked(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "settings", "show")
	if !strings.Contains(out, "(not set)") {
		t.Fatalf("expected unset key, got %q", out)
	}

	mustRun(t, "settings", "set-openai-key", "sk-test-1234567890abcd")
	out = mustRun(t, "settings", "show")
	if !strings.Contains(out, "sk-...abcd") || strings.Contains(out, "1234567890") {
		t.Fatalf("expected masked key, got %q", out)
	}

	if _, err := runCLI(t, "settings", "set-openai-key", "   "); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "seed")
	if !strings.Contains(out, "Seeded 1 user(s), 3 virtual machine(s)") {
		t.Fatalf("unexpected seed output %q", out)
	}
	out = mustRun(t, "seed")
	if !strings.Contains(out, "already seeded") {
		t.Fatalf("expected second seed to be skipped, got %q", out)
	}
}

func TestBackupAndFullRestore(t *testing.T) {
	setupCLI(t)
	mustRun(t, webVM...)

	file := filepath.Join(t.TempDir(), "snap.json")
	out := mustRun(t, "backup", file)
	if !strings.Contains(out, file+".zst") {
		t.Fatalf("expected suffixed file name in %q", out)
	}

	mustRun(t, "vm", "delete", "1")
	out = mustRun(t, "restore", "--full", file+".zst")
	if !strings.Contains(out, "full replace") {
		t.Fatalf("unexpected restore output %q", out)
	}
	out = mustRun(t, "vm", "list")
	if !strings.Contains(out, "web-01") {
		t.Fatalf("expected restored vm in %q", out)
	}
}

func TestBackupUploadUsesUploader(t *testing.T) {
	setupCLI(t)
	var uploaded string
	prev := newUploader
	newUploader = func(context.Context) (interface {
		Upload(ctx context.Context, file string) (string, error)
	}, error) {
		return uploadFunc(func(_ context.Context, file string) (string, error) {
			uploaded = file
			return "s3://bucket/" + filepath.Base(file), nil
		}), nil
	}
	t.Cleanup(func() { newUploader = prev })

	file := filepath.Join(t.TempDir(), "up.json.zst")
	out := mustRun(t, "backup", "--upload", file)
	if uploaded != file {
		t.Fatalf("expected %q to be uploaded, got %q", file, uploaded)
	}
	if !strings.Contains(out, "Uploaded to s3://bucket/up.json.zst") {
		t.Fatalf("unexpected output %q", out)
	}
}

type uploadFunc func(ctx context.Context, file string) (string, error)

func (f uploadFunc) Upload(ctx context.Context, file string) (string, error) { return f(ctx, file) }

func TestHostCommands(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "host", "add", "db1", "10.0.0.5:2222", "--user", "ops")
	if !strings.Contains(out, "Added host db1 (ops@10.0.0.5:2222)") {
		t.Fatalf("unexpected add output %q", out)
	}
	if _, err := runCLI(t, "host", "add", "local", "127.0.0.1"); err == nil {
		t.Fatalf("expected reserved name to be rejected")
	}

	out = mustRun(t, "host", "list")
	if !strings.Contains(out, "db1") || !strings.Contains(out, "ops") {
		t.Fatalf("unexpected list output %q", out)
	}

	mustRun(t, "host", "delete", "db1")
	if _, err := runCLI(t, "host", "delete", "db1"); err == nil || err.Error() != "Host db1 not found" {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := runCLI(t, "agent", "info", "--host", "db1"); err == nil || err.Error() != "Host db1 not found" {
		t.Fatalf("expected agent lookup to fail, got %v", err)
	}
}

func TestTopPassesOptions(t *testing.T) {
	store := setupCLI(t)
	var got tui.Options
	prev := runTop
	runTop = func(_ context.Context, src tui.Source, opts tui.Options) error {
		if src == nil {
			t.Fatalf("expected an agent source")
		}
		got = opts
		return nil
	}
	t.Cleanup(func() { runTop = prev })

	mustRun(t, "top", "--interval", "5s")
	if got.Interval.String() != "5s" || got.Host != "" {
		t.Fatalf("unexpected options %+v", got)
	}
	if got.Audit != store {
		t.Fatalf("expected the default store as audit source")
	}
}

func TestServeUsesListenFlag(t *testing.T) {
	setupCLI(t)
	var addr string
	prev := serveHTTP
	serveHTTP = func(_ context.Context, a string, h http.Handler) error {
		addr = a
		if h == nil {
			t.Fatalf("expected a handler")
		}
		return nil
	}
	t.Cleanup(func() { serveHTTP = prev })

	mustRun(t, "serve", "--listen", "127.0.0.1:5055")
	if addr != "127.0.0.1:5055" {
		t.Fatalf("expected listen flag to win, got %q", addr)
	}
}

func TestVersionCommand(t *testing.T) {
	out := mustRun(t, "version")
	if !strings.HasPrefix(out, "stratus ") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestConfigWrite(t *testing.T) {
	dir := t.TempDir()
	setupCLI(t)
	target := filepath.Join(dir, "stratus.yaml")

	mustRun(t, "config", "write", "-o", target, "--database.dsn", "/var/lib/stratus.db")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	if !strings.Contains(string(data), "/var/lib/stratus.db") {
		t.Fatalf("expected dsn in written config:\n%s", data)
	}

	if _, err := runCLI(t, "config", "write", "-o", target); err == nil {
		t.Fatalf("expected refusal to overwrite without --force")
	}
	mustRun(t, "config", "write", "-o", target, "--force")
}
