// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package ai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/model"
)

const (
	analystPrompt   = "You are an expert cloud infrastructure analyst. Provide detailed, actionable insights for optimizing private cloud environments."
	optimizerPrompt = "You are a cloud optimization expert. Provide concise, actionable optimization suggestions."
	plannerPrompt   = "You are a capacity planning expert for cloud infrastructure."

	defaultHealthScore = 85

	// NoOptimizations is returned when the model answers with nothing.
	NoOptimizations = "No specific optimizations identified."
	// OptimizationsUnavailable is returned when the call fails.
	OptimizationsUnavailable = "Unable to generate optimization suggestions at this time."

	predictionWindow = 10
)

// SuggestedRecommendation is a recommendation as proposed by the model.
type SuggestedRecommendation struct {
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
	Priority     string  `json:"priority"`
	ResourceID   *int    `json:"resourceId,omitempty"`
	ResourceType *string `json:"resourceType,omitempty"`
}

// Prediction is a forecast for one metric.
type Prediction struct {
	Metric     string  `json:"metric"`
	Timeframe  string  `json:"timeframe"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// AnalysisResult is the outcome of AnalyzeInfrastructure.
type AnalysisResult struct {
	Recommendations []SuggestedRecommendation `json:"recommendations"`
	HealthScore     float64                   `json:"healthScore"`
	Predictions     []Prediction              `json:"predictions"`
}

// FallbackAnalysis is returned whenever analysis fails.
func FallbackAnalysis() AnalysisResult {
	return AnalysisResult{
		Recommendations: []SuggestedRecommendation{{
			Type:        "optimization",
			Title:       "Resource Analysis Available",
			Description: "AI analysis is temporarily unavailable. Manual infrastructure review recommended.",
			Confidence:  0.5,
			Priority:    "medium",
		}},
		HealthScore: defaultHealthScore,
		Predictions: []Prediction{{
			Metric:     "capacity",
			Timeframe:  "30 days",
			Prediction: "Monitor resource usage trends for capacity planning",
			Confidence: 0.7,
		}},
	}
}

// FallbackPrediction is returned whenever prediction fails.
func FallbackPrediction() map[string]any {
	return map[string]any{
		"predictions": []any{},
		"error":       "Unable to generate resource predictions",
	}
}

func mustIndent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(b)
}

// clampHealth keeps a score within 0..100; a missing or zero score becomes
// the default.
func clampHealth(v *float64) float64 {
	if v == nil || *v == 0 {
		return defaultHealthScore
	}
	switch {
	case *v < 0:
		return 0
	case *v > 100:
		return 100
	}
	return *v
}

// AnalyzeInfrastructure asks for recommendations, a health score and
// predictions covering vms, the latest metrics sample and unread alerts.
func (a *Advisor) AnalyzeInfrastructure(ctx context.Context, vms []model.VirtualMachine, metrics *model.SystemMetrics, alerts []model.Alert) AnalysisResult {
	prompt := fmt.Sprintf(`Analyze the following cloud infrastructure data and provide recommendations:

Virtual Machines:
%s

System Metrics:
%s

Current Alerts:
%s

Please provide a JSON response with:
1. recommendations: Array of actionable recommendations with type, title, description, confidence (0-1), priority (low/medium/high), and optionally resourceId/resourceType
2. healthScore: Overall infrastructure health score (0-100)
3. predictions: Array of predictions with metric, timeframe, prediction description, and confidence

Focus on:
- Resource optimization opportunities
- Security concerns
- Capacity planning
- Performance improvements
- Cost optimization`, mustIndent(vms), mustIndent(metrics), mustIndent(alerts))

	content, err := a.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analystPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.7,
	})
	if err != nil {
		logging.Errorf("ai: analysis failed: %v", err)
		return FallbackAnalysis()
	}
	if content == "" {
		content = "{}"
	}

	var raw struct {
		Recommendations []SuggestedRecommendation `json:"recommendations"`
		HealthScore     *float64                  `json:"healthScore"`
		Predictions     []Prediction              `json:"predictions"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		logging.Errorf("ai: analysis returned invalid JSON: %v", err)
		return FallbackAnalysis()
	}
	res := AnalysisResult{
		Recommendations: raw.Recommendations,
		HealthScore:     clampHealth(raw.HealthScore),
		Predictions:     raw.Predictions,
	}
	if res.Recommendations == nil {
		res.Recommendations = []SuggestedRecommendation{}
	}
	if res.Predictions == nil {
		res.Predictions = []Prediction{}
	}
	return res
}

// OptimizationSuggestions returns short optimisation advice for one VM.
func (a *Advisor) OptimizationSuggestions(ctx context.Context, vm model.VirtualMachine) string {
	prompt := fmt.Sprintf(`Based on this VM configuration and usage data, provide specific optimization suggestions:
%s

Focus on CPU, memory, and storage optimization opportunities.`, mustIndent(vm))

	content, err := a.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: optimizerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 200,
	})
	if err != nil {
		logging.Errorf("ai: optimization suggestion failed: %v", err)
		return OptimizationsUnavailable
	}
	if content == "" {
		return NoOptimizations
	}
	return content
}

// PredictResourceNeeds forecasts capacity from history, given oldest first.
// Only the newest rows are sent. The model's JSON object is returned as is.
func (a *Advisor) PredictResourceNeeds(ctx context.Context, history []model.SystemMetrics) map[string]any {
	if len(history) > predictionWindow {
		history = history[len(history)-predictionWindow:]
	}
	prompt := fmt.Sprintf(`Based on this historical resource usage data, predict future resource needs:
%s

Provide predictions for the next 30, 60, and 90 days including:
- Storage capacity needs
- CPU requirements
- Memory requirements
- Network bandwidth

Respond in JSON format with structured predictions.`, mustIndent(history))

	content, err := a.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: plannerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		logging.Errorf("ai: resource prediction failed: %v", err)
		return FallbackPrediction()
	}
	if content == "" {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		logging.Errorf("ai: resource prediction returned invalid JSON: %v", err)
		return FallbackPrediction()
	}
	return out
}
