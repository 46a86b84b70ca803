// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/ai"
	"github.com/toeirei/stratus/internal/config"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/security"
	"github.com/toeirei/stratus/internal/testutil"
)

type stubChat struct {
	content string
	err     error
}

func (c *stubChat) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: c.content}}}}, nil
}

type testAPI struct {
	handler http.Handler
	store   db.Store
	runner  *testutil.ScriptRunner
	chat    *stubChat
	svc     *core.Service
}

func newTestAPI(t *testing.T, serverCfg config.ServerConfig) *testAPI {
	t.Helper()
	store := testutil.NewStore(t, "http")

	runner := testutil.NewScriptRunner()
	chat := &stubChat{}
	advisor := ai.NewAdvisorWithFactory(ai.Config{}, func(security.Secret, string) ai.ChatClient { return chat })
	svc := core.NewService(store, core.Options{Advisor: advisor, Agent: agent.New(runner, agent.Options{})})

	h, err := NewRouter(Deps{Service: svc, Server: serverCfg, Agent: config.AgentConfig{StreamInterval: 20 * time.Millisecond}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return &testAPI{handler: h, store: store, runner: runner, chat: chat, svc: svc}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectMessage(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	expectStatus(t, rec, status)
	body := decode[errorBody](t, rec)
	if body.Message != msg {
		t.Fatalf("expected message %q, got %q", msg, body.Message)
	}
}
