// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ai asks an OpenAI compatible chat completion API for
// infrastructure recommendations, VM optimisation hints and capacity
// predictions. Every call degrades to a fixed fallback answer on failure.
package ai // import "github.com/toeirei/stratus/internal/ai"

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/toeirei/stratus/internal/security"
	"golang.org/x/time/rate"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// ErrNoAPIKey is returned when no API key has been configured.
var ErrNoAPIKey = errors.New("OpenAI API key not configured")

// ChatClient is the part of *openai.Client the advisor uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ClientFactory builds a ChatClient for an API key and optional base URL.
type ClientFactory func(key security.Secret, baseURL string) ChatClient

// NewOpenAIClient is the default ClientFactory.
func NewOpenAIClient(key security.Secret, baseURL string) ChatClient {
	cfg := openai.DefaultConfig(key.Reveal())
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Config configures an Advisor.
type Config struct {
	APIKey            security.Secret
	Model             string
	BaseURL           string
	RequestsPerMinute int
}

// Advisor wraps the chat completion API. It is safe for concurrent use.
type Advisor struct {
	mu        sync.RWMutex
	key       security.Secret
	client    ChatClient
	model     string
	baseURL   string
	newClient ClientFactory
	limiter   *rate.Limiter
}

// NewAdvisor returns an Advisor using the OpenAI client.
func NewAdvisor(cfg Config) *Advisor {
	return NewAdvisorWithFactory(cfg, NewOpenAIClient)
}

// NewAdvisorWithFactory returns an Advisor whose clients come from f.
func NewAdvisorWithFactory(cfg Config, f ClientFactory) *Advisor {
	a := &Advisor{model: cfg.Model, baseURL: cfg.BaseURL, newClient: f}
	if a.model == "" {
		a.model = DefaultModel
	}
	if cfg.RequestsPerMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}
	a.SetAPIKey(cfg.APIKey)
	return a
}

// SetAPIKey swaps the key used for subsequent calls. An empty key disables
// the advisor until a new key is set.
func (a *Advisor) SetAPIKey(key security.Secret) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.key = key
	a.client = nil
	if !key.IsEmpty() {
		a.client = a.newClient(key, a.baseURL)
	}
}

// HasAPIKey reports whether a key is configured.
func (a *Advisor) HasAPIKey() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.key.IsEmpty()
}

// Model returns the chat model name.
func (a *Advisor) Model() string { return a.model }

func (a *Advisor) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	a.mu.RLock()
	client := a.client
	a.mu.RUnlock()
	if client == nil {
		return "", ErrNoAPIKey
	}
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}
	req.Model = a.model
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// TestConnection sends a minimal prompt with key. It does not change the
// advisor's configured key.
func (a *Advisor) TestConnection(ctx context.Context, key security.Secret) error {
	if key.IsEmpty() {
		return ErrNoAPIKey
	}
	client := a.newClient(key, a.baseURL)
	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "Hello"}},
		MaxTokens: 5,
	})
	return err
}
