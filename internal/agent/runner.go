// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Output is what a Runner captured from one command.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes commands on the probed host. A non-zero exit status is
// reported as an error alongside the captured Output.
type Runner interface {
	// Run executes name with args directly, without a shell.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error)
	// Shell executes command through "sh -c".
	Shell(ctx context.Context, timeout time.Duration, command string) (Output, error)
	// ReadFile returns the contents of path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timed out")

// LocalRunner runs commands on the machine hosting the agent.
type LocalRunner struct {
	// MaxOutput caps each output stream in bytes. Zero means MaxOutputBytes.
	MaxOutput int
}

// Run implements Runner.
func (l LocalRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Output, error) {
	return runLocal(ctx, timeout, l.maxOutput(), name, args...)
}

// Shell implements Runner.
func (l LocalRunner) Shell(ctx context.Context, timeout time.Duration, command string) (Output, error) {
	return runLocal(ctx, timeout, l.maxOutput(), "sh", "-c", command)
}

func (l LocalRunner) maxOutput() int {
	if l.MaxOutput > 0 {
		return l.MaxOutput
	}
	return MaxOutputBytes
}

// ReadFile implements Runner.
func (LocalRunner) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

func runLocal(ctx context.Context, timeout time.Duration, maxOutput int, name string, args ...string) (Output, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ctx, kill := context.WithCancel(ctx)
	defer kill()

	stdout := &CappedBuffer{Max: maxOutput, OnOverflow: kill}
	stderr := &CappedBuffer{Max: maxOutput, OnOverflow: kill}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Children that inherit the pipes must not hold Run open past the deadline.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	if stdout.Overflowed() || stderr.Overflowed() {
		return out, fmt.Errorf("%s: %w (%d bytes)", name, ErrOutputLimit, maxOutput)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return out, fmt.Errorf("%s: %w after %s", name, ErrTimeout, timeout)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
