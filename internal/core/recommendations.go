// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/stratus/internal/ai"
	"github.com/toeirei/stratus/internal/model"
)

const predictHistory = 30

// ListPendingRecommendations returns recommendations awaiting action.
func (s *Service) ListPendingRecommendations(ctx context.Context) ([]model.Recommendation, error) {
	return s.store.ListPendingRecommendations(ctx)
}

// Analyze sends the current inventory to the advisor and stores every
// returned recommendation as pending.
func (s *Service) Analyze(ctx context.Context) (ai.AnalysisResult, error) {
	vms, err := s.store.ListVirtualMachines(ctx)
	if err != nil {
		return ai.AnalysisResult{}, err
	}
	latest, err := s.store.LatestSystemMetrics(ctx)
	if err != nil {
		return ai.AnalysisResult{}, err
	}
	alerts, err := s.store.ListUnreadAlerts(ctx)
	if err != nil {
		return ai.AnalysisResult{}, err
	}

	analysis := s.advisor.AnalyzeInfrastructure(ctx, vms, latest, alerts)
	for _, rec := range analysis.Recommendations {
		_, err := s.store.CreateRecommendation(ctx, model.Recommendation{
			Type:         rec.Type,
			Title:        rec.Title,
			Description:  rec.Description,
			Confidence:   rec.Confidence,
			Priority:     rec.Priority,
			Status:       model.RecommendationPending,
			ResourceID:   rec.ResourceID,
			ResourceType: rec.ResourceType,
		})
		if err != nil {
			return ai.AnalysisResult{}, fmt.Errorf("store recommendation %q: %w", rec.Title, err)
		}
	}
	return analysis, nil
}

// OptimizeVM asks the advisor for suggestions for one VM. It returns
// db.ErrNotFound for an unknown id.
func (s *Service) OptimizeVM(ctx context.Context, id int) (string, error) {
	vm, err := s.store.GetVirtualMachine(ctx, id)
	if err != nil {
		return "", err
	}
	return s.advisor.OptimizationSuggestions(ctx, *vm), nil
}

// IsValidRecommendationStatus reports whether status is pending, applied
// or dismissed.
func IsValidRecommendationStatus(status string) bool {
	switch status {
	case model.RecommendationPending, model.RecommendationApplied, model.RecommendationDismissed:
		return true
	}
	return false
}

// SetRecommendationStatus moves a recommendation to status.
func (s *Service) SetRecommendationStatus(ctx context.Context, id int, status string) error {
	if !IsValidRecommendationStatus(status) {
		return &ValidationError{
			Message: "Invalid recommendation status",
			Errors: []FieldError{{
				Path:    []string{"status"},
				Message: fmt.Sprintf("Invalid enum value. Expected 'pending' | 'applied' | 'dismissed', received '%s'", status),
			}},
		}
	}
	if err := s.store.UpdateRecommendationStatus(ctx, id, status); err != nil {
		return err
	}
	s.audit(ctx, "SET_RECOMMENDATION_STATUS", fmt.Sprintf("id: %d, status: %s", id, status))
	return nil
}

// CurrentMetrics returns the newest sample, or nil when none exists.
func (s *Service) CurrentMetrics(ctx context.Context) (*model.SystemMetrics, error) {
	return s.store.LatestSystemMetrics(ctx)
}

// MetricsHistory returns up to limit samples, newest first. A limit below
// one selects 50.
func (s *Service) MetricsHistory(ctx context.Context, limit int) ([]model.SystemMetrics, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListSystemMetrics(ctx, limit)
}

// Predict forecasts resource needs from the last 30 samples.
func (s *Service) Predict(ctx context.Context) (map[string]any, error) {
	history, err := s.store.ListSystemMetrics(ctx, predictHistory)
	if err != nil {
		return nil, err
	}
	chronological := make([]model.SystemMetrics, len(history))
	for i, m := range history {
		chronological[len(history)-1-i] = m
	}
	return s.advisor.PredictResourceNeeds(ctx, chronological), nil
}
