// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/toeirei/stratus/internal/agent"
)

// ScriptRunner is an agent.Runner that answers from canned output. Run is
// keyed by the joined argv ("df -B1 /"), Shell by "sh -c <command>".
// Unknown commands fail with exit code 127.
type ScriptRunner struct {
	mu      sync.Mutex
	outputs map[string]agent.Output
	files   map[string]string
	calls   []string
	closed  bool
}

func NewScriptRunner() *ScriptRunner {
	return &ScriptRunner{outputs: map[string]agent.Output{}, files: map[string]string{}}
}

// Set answers key with stdout and exit code 0.
func (r *ScriptRunner) Set(key, stdout string) {
	r.SetOutput(key, agent.Output{Stdout: stdout})
}

func (r *ScriptRunner) SetOutput(key string, out agent.Output) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[key] = out
}

// SetFile makes ReadFile(path) return data.
func (r *ScriptRunner) SetFile(path, data string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[path] = data
}

func (r *ScriptRunner) answer(key string) (agent.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, key)
	if out, ok := r.outputs[key]; ok {
		return out, nil
	}
	return agent.Output{ExitCode: 127}, errors.New("command not found: " + key)
}

func (r *ScriptRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) (agent.Output, error) {
	return r.answer(strings.Join(append([]string{name}, args...), " "))
}

func (r *ScriptRunner) Shell(_ context.Context, _ time.Duration, command string) (agent.Output, error) {
	return r.answer("sh -c " + command)
}

func (r *ScriptRunner) ReadFile(_ context.Context, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return []byte(data), nil
}

// Close records that the runner was released.
func (r *ScriptRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *ScriptRunner) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Called reports whether key was run.
func (r *ScriptRunner) Called(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c == key {
			return true
		}
	}
	return false
}
