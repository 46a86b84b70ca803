// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/ai"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/security"
	"github.com/toeirei/stratus/internal/testutil"
)

func newTestStore(t *testing.T) db.Store {
	return testutil.NewStore(t, "core")
}

type scriptRunner = testutil.ScriptRunner

var newScriptRunner = testutil.NewScriptRunner

type fakeChat struct {
	mu      sync.Mutex
	content string
	err     error
	reqs    []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}}}, nil
}

func (f *fakeChat) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reqs) == 0 {
		return ""
	}
	msgs := f.reqs[len(f.reqs)-1].Messages
	return msgs[len(msgs)-1].Content
}

type testEnv struct {
	svc    *Service
	store  db.Store
	runner *scriptRunner
	chat   *fakeChat
}

// newTestEnv wires a Service to an in-memory store, a scripted local agent
// and a fake chat client. configKey is the key "from config".
func newTestEnv(t *testing.T, configKey string) *testEnv {
	t.Helper()
	store := newTestStore(t)
	runner := newScriptRunner()
	chat := &fakeChat{}
	advisor := ai.NewAdvisorWithFactory(ai.Config{APIKey: security.FromString(configKey)}, func(security.Secret, string) ai.ChatClient {
		return chat
	})
	svc := NewService(store, Options{
		Advisor: advisor,
		Agent:   agent.New(runner, agent.Options{}),
		APIKey:  security.FromString(configKey),
	})
	return &testEnv{svc: svc, store: store, runner: runner, chat: chat}
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func auditActions(t *testing.T, s db.Store) []string {
	t.Helper()
	entries, err := s.ListAuditLog(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListAuditLog: %v", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func hasAction(actions []string, want string) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}
