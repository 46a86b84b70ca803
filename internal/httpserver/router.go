// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package httpserver exposes the dashboard REST API and the live telemetry
// websocket.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/toeirei/stratus/internal/config"
	"github.com/toeirei/stratus/internal/core"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultStreamInterval = 5 * time.Second
	maxBodyBytes          = 1 << 20
)

// Deps carries what the router needs.
type Deps struct {
	Service *core.Service
	Server  config.ServerConfig
	Agent   config.AgentConfig
}

// Server holds handler state.
type Server struct {
	svc      *core.Service
	cfg      config.ServerConfig
	agentCfg config.AgentConfig
	upgrader websocket.Upgrader

	pongWait   time.Duration
	pingPeriod time.Duration
}

// NewRouter builds the chi router with all API routes.
func NewRouter(deps Deps) (http.Handler, error) {
	s := &Server{
		svc:        deps.Service,
		cfg:        deps.Server,
		agentCfg:   deps.Agent,
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	limited := newRateLimit(s.cfg.CommandRatePerMinute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if len(s.cfg.AllowedSubnets) > 0 {
		allow, err := newCIDRAllowlist(s.cfg.AllowedSubnets)
		if err != nil {
			return nil, err
		}
		r.Use(allow.middleware)
	}

	r.Get("/healthz", s.handleHealth)

	// The stream outlives any request timeout.
	r.Get("/api/agent/stream", s.handleAgentStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Get("/api/dashboard/stats", s.handleDashboardStats)

		r.Get("/api/vms", s.handleListVMs)
		r.Post("/api/vms", s.handleCreateVM)
		r.Get("/api/vms/{id}", s.handleGetVM)
		r.Patch("/api/vms/{id}", s.handleUpdateVM)
		r.Delete("/api/vms/{id}", s.handleDeleteVM)

		r.Get("/api/alerts", s.handleListAlerts)
		r.Get("/api/alerts/unread", s.handleUnreadAlerts)
		r.Patch("/api/alerts/{id}/read", s.handleMarkAlertRead)

		r.Get("/api/ai/recommendations", s.handleListRecommendations)
		r.Patch("/api/ai/recommendations/{id}", s.handleUpdateRecommendation)
		r.With(limited).Post("/api/ai/analyze", s.handleAnalyze)
		r.With(limited).Post("/api/ai/optimize/{vmId}", s.handleOptimize)

		r.Get("/api/metrics/current", s.handleCurrentMetrics)
		r.Get("/api/metrics/history", s.handleMetricsHistory)
		r.With(limited).Post("/api/metrics/predict", s.handlePredict)

		r.Get("/api/settings", s.handleGetSettings)
		r.Post("/api/settings", s.handleUpdateSettings)
		r.With(limited).Post("/api/settings/test-openai", s.handleTestOpenAI)

		r.Get("/api/charts/resource-usage", s.handleResourceUsageChart)
		r.Get("/api/charts/health", s.handleHealthChart)

		r.Get("/api/hosts", s.handleListHosts)

		r.Get("/api/agent/system-info", s.handleSystemInfo)
		r.Get("/api/agent/metrics", s.handleResourceMetrics)
		r.Get("/api/agent/processes", s.handleProcesses)
		r.Get("/api/agent/services", s.handleServices)
		r.Get("/api/agent/docker", s.handleDocker)
		r.With(limited).Post("/api/agent/command", s.handleCommand)
		r.With(limited).Post("/api/agent/service/{serviceName}/restart", s.handleRestartService)
		r.Get("/api/agent/port/{port}/check", s.handlePortCheck)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
