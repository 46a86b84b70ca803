// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/toeirei/stratus/internal/agent"
)

const maxAuditCommand = 200

// CommandOutcome is a command result tagged with the id of its audit entry.
type CommandOutcome struct {
	agent.CommandResult
	ExecutionID string `json:"executionId"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func hostLabel(host string) string {
	if host == "" {
		return LocalHost
	}
	return host
}

// ExecuteCommand runs command on ag and records it in the audit log.
func (s *Service) ExecuteCommand(ctx context.Context, ag *agent.Agent, host, command string, timeout time.Duration) (CommandOutcome, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return CommandOutcome{}, &ValidationError{
			Message: "Command is required",
			Errors:  []FieldError{{Path: []string{"command"}, Message: "Required"}},
		}
	}
	id := uuid.NewString()
	res := ag.ExecuteCommand(ctx, command, timeout)
	s.audit(ctx, "EXECUTE_COMMAND", fmt.Sprintf("id: %s, host: %s, command: %s, exit: %d, duration: %dms",
		id, hostLabel(host), truncate(command, maxAuditCommand), res.ExitCode, res.DurationMs))
	return CommandOutcome{CommandResult: res, ExecutionID: id}, nil
}

// RestartService restarts a systemd unit on ag and records the attempt. An
// unsafe unit name is rejected before anything runs.
func (s *Service) RestartService(ctx context.Context, ag *agent.Agent, host, name string) (agent.RestartResult, error) {
	if err := agent.ValidateServiceName(name); err != nil {
		return agent.RestartResult{}, &ValidationError{
			Message: "Invalid service name",
			Errors:  []FieldError{{Path: []string{"serviceName"}, Message: err.Error()}},
		}
	}
	res := ag.RestartService(ctx, name)
	s.audit(ctx, "RESTART_SERVICE", fmt.Sprintf("host: %s, service: %s, success: %t", hostLabel(host), name, res.Success))
	return res, nil
}
