// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"strings"

	"github.com/toeirei/stratus/internal/security"
)

// SettingOpenAIKey is the settings row holding the OpenAI key.
const SettingOpenAIKey = "openai_api_key"

// Settings is the settings view. The key is masked.
type Settings struct {
	OpenAIAPIKey string `json:"openaiApiKey"`
}

// ConnectionResult is returned by a successful TestOpenAI.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Model   string `json:"model"`
	Message string `json:"message"`
}

// ResolveAPIKey returns the stored key, or the configured one when no key
// is stored.
func (s *Service) ResolveAPIKey(ctx context.Context) (security.Secret, error) {
	v, ok, err := s.store.GetSetting(ctx, SettingOpenAIKey)
	if err != nil {
		return nil, err
	}
	if ok && v != "" {
		return security.FromString(v), nil
	}
	return s.configKey, nil
}

// LoadAPIKey hands the resolved key to the advisor.
func (s *Service) LoadAPIKey(ctx context.Context) error {
	key, err := s.ResolveAPIKey(ctx)
	if err != nil {
		return err
	}
	s.advisor.SetAPIKey(key)
	return nil
}

// GetSettings returns the stored settings with the API key masked.
func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	v, _, err := s.store.GetSetting(ctx, SettingOpenAIKey)
	if err != nil {
		return Settings{}, err
	}
	return Settings{OpenAIAPIKey: security.FromString(v).Masked()}, nil
}

// SetOpenAIKey stores key and switches the advisor to it. An empty key is
// ignored.
func (s *Service) SetOpenAIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := s.store.SetSetting(ctx, SettingOpenAIKey, key); err != nil {
		return err
	}
	secret := security.FromString(key)
	s.advisor.SetAPIKey(secret)
	s.audit(ctx, "SET_SETTING", "key: "+SettingOpenAIKey+", value: "+secret.Masked())
	return nil
}

// TestOpenAI sends a minimal prompt with the resolved key. It returns
// ErrNotConfigured when no key is available and the API error otherwise.
func (s *Service) TestOpenAI(ctx context.Context) (ConnectionResult, error) {
	key, err := s.ResolveAPIKey(ctx)
	if err != nil {
		return ConnectionResult{}, err
	}
	if key.IsEmpty() {
		return ConnectionResult{}, ErrNotConfigured
	}
	if err := s.advisor.TestConnection(ctx, key); err != nil {
		return ConnectionResult{}, err
	}
	return ConnectionResult{Success: true, Model: s.advisor.Model(), Message: "Connection successful"}, nil
}
