// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core holds the operations shared by the HTTP API and the CLI:
// dashboard aggregation, chart data, VM, alert, recommendation and settings
// handling, audited agent actions and the background metrics monitor. It is
// UI-agnostic; callers translate its sentinel errors into status codes or
// exit messages.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/ai"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/remote"
	"github.com/toeirei/stratus/internal/security"
)

// ErrInvalid marks input rejected by validation. ValidationError wraps it.
var ErrInvalid = errors.New("invalid input")

// ErrNotConfigured is returned when an operation needs an OpenAI key and
// none is stored or configured.
var ErrNotConfigured = ai.ErrNoAPIKey

// FieldError describes one rejected input field.
type FieldError struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// ValidationError carries every field error found in one input.
type ValidationError struct {
	Message string
	Errors  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s %s", e.Message, e.Errors[0].Path[0], e.Errors[0].Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Options configures a Service. Zero values select sensible defaults.
type Options struct {
	Advisor      *ai.Advisor
	Agent        *agent.Agent
	AgentOptions agent.Options
	SSH          remote.Config
	// APIKey is the key from config or environment. A key stored in the
	// settings table takes precedence.
	APIKey security.Secret
}

// Service implements the dashboard operations over a Store.
type Service struct {
	store     db.Store
	advisor   *ai.Advisor
	local     *agent.Agent
	agentOpts agent.Options
	ssh       remote.Config
	configKey security.Secret
	dial      dialFunc
}

// NewService returns a Service backed by store.
func NewService(store db.Store, opts Options) *Service {
	s := &Service{
		store:     store,
		advisor:   opts.Advisor,
		local:     opts.Agent,
		agentOpts: opts.AgentOptions,
		ssh:       opts.SSH,
		configKey: opts.APIKey,
		dial:      dialRemote,
	}
	if s.advisor == nil {
		s.advisor = ai.NewAdvisor(ai.Config{APIKey: opts.APIKey})
	}
	if s.local == nil {
		s.local = agent.NewLocal(opts.AgentOptions)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() db.Store { return s.store }

// Advisor returns the AI advisor.
func (s *Service) Advisor() *ai.Advisor { return s.advisor }

// LocalAgent returns the agent probing this machine.
func (s *Service) LocalAgent() *agent.Agent { return s.local }

// audit records an action. Failures are logged, never returned: the action
// itself already happened.
func (s *Service) audit(ctx context.Context, action, details string) {
	if err := s.store.LogAction(ctx, action, details); err != nil {
		logging.Warnf("core: audit %s failed: %v", action, err)
	}
}
