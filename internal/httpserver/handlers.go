// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/logging"
	"github.com/toeirei/stratus/internal/model"
)

const (
	msgVMNotFound             = "Virtual machine not found"
	msgAlertNotFound          = "Alert not found"
	msgRecommendationNotFound = "Recommendation not found"
	defaultHistoryLimit       = 50
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.BuildDashboardStats(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListVMs(w http.ResponseWriter, r *http.Request) {
	vms, err := s.svc.ListVMs(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load virtual machines")
		return
	}
	writeJSON(w, http.StatusOK, vms)
}

func (s *Server) handleGetVM(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, msgVMNotFound)
		return
	}
	vm, err := s.svc.GetVM(r.Context(), id)
	if err != nil {
		fail(w, err, msgVMNotFound, "Failed to load virtual machine")
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

func (s *Server) handleCreateVM(w http.ResponseWriter, r *http.Request) {
	var in core.VMInput
	if !decodeJSON(w, r, &in) {
		return
	}
	vm, err := s.svc.CreateVM(r.Context(), in)
	if err != nil {
		fail(w, err, "", "Failed to create virtual machine")
		return
	}
	writeJSON(w, http.StatusCreated, vm)
}

func (s *Server) handleUpdateVM(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, msgVMNotFound)
		return
	}
	var patch model.VirtualMachinePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	vm, err := s.svc.UpdateVM(r.Context(), id, patch)
	if err != nil {
		fail(w, err, msgVMNotFound, "Failed to update virtual machine")
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

func (s *Server) handleDeleteVM(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, msgVMNotFound)
		return
	}
	if err := s.svc.DeleteVM(r.Context(), id); err != nil {
		fail(w, err, msgVMNotFound, "Failed to delete virtual machine")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.ListAlerts(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleUnreadAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.ListUnreadAlerts(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load unread alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, msgAlertNotFound)
		return
	}
	if err := s.svc.MarkAlertRead(r.Context(), id); err != nil {
		fail(w, err, msgAlertNotFound, "Failed to mark alert as read")
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.ListPendingRecommendations(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load AI recommendations")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.svc.Analyze(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to perform AI analysis")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "vmId")
	if !ok {
		writeError(w, http.StatusNotFound, msgVMNotFound)
		return
	}
	suggestion, err := s.svc.OptimizeVM(r.Context(), id)
	if err != nil {
		fail(w, err, msgVMNotFound, "Failed to generate optimization suggestions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, msgRecommendationNotFound)
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.svc.SetRecommendationStatus(r.Context(), id, req.Status); err != nil {
		fail(w, err, msgRecommendationNotFound, "Failed to update recommendation")
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}

func (s *Server) handleCurrentMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.CurrentMetrics(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load current metrics")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMetricsHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.MetricsHistory(r.Context(), queryInt(r, "limit", defaultHistoryLimit))
	if err != nil {
		fail(w, err, "", "Failed to load metrics history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	pred, err := s.svc.Predict(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to generate resource predictions")
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.GetSettings(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	OpenAIAPIKey string `json:"openaiApiKey"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.svc.SetOpenAIKey(r.Context(), req.OpenAIAPIKey); err != nil {
		fail(w, err, "", "Failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, successBody)
}

// handleTestOpenAI answers every failure with 400 and the API's message.
func (s *Server) handleTestOpenAI(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.TestOpenAI(r.Context())
	if err != nil {
		msg := err.Error()
		if !errors.Is(err, core.ErrNotConfigured) {
			logging.Warnf("http: OpenAI connection test failed: %v", err)
		}
		if msg == "" {
			msg = "Failed to connect to OpenAI API"
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResourceUsageChart(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.ResourceUsageChart(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load resource usage data")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleHealthChart(w http.ResponseWriter, r *http.Request) {
	slices, err := s.svc.HealthChart(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load health data")
		return
	}
	writeJSON(w, http.StatusOK, slices)
}

func (s *Server) handleListHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := s.svc.ListHosts(r.Context())
	if err != nil {
		fail(w, err, "", "Failed to load hosts")
		return
	}
	writeJSON(w, http.StatusOK, hosts)
}
