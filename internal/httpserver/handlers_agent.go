// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/logging"
)

// agentFor resolves the ?host= query parameter. On failure it writes the
// response and returns ok=false.
func (s *Server) agentFor(w http.ResponseWriter, r *http.Request) (*agent.Agent, func(), bool) {
	host := r.URL.Query().Get("host")
	ag, release, err := s.svc.AgentFor(r.Context(), host)
	switch {
	case err == nil:
		return ag, release, true
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Host not found")
	case errors.Is(err, core.ErrHostUnreachable):
		logging.Warnf("http: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to connect to host")
	default:
		logging.Errorf("http: resolve host %q: %v", host, err)
		writeError(w, http.StatusInternalServerError, "Failed to connect to host")
	}
	return nil, nil, false
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	writeJSON(w, http.StatusOK, ag.SystemInfo(r.Context()))
}

func (s *Server) handleResourceMetrics(w http.ResponseWriter, r *http.Request) {
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	writeJSON(w, http.StatusOK, ag.ResourceMetrics(r.Context()))
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	def := s.agentCfg.ProcessLimit
	if def <= 0 {
		def = agent.DefaultProcessLimit
	}
	writeJSON(w, http.StatusOK, ag.RunningProcesses(r.Context(), queryInt(r, "limit", def)))
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	writeJSON(w, http.StatusOK, ag.SystemServices(r.Context()))
}

func (s *Server) handleDocker(w http.ResponseWriter, r *http.Request) {
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	writeJSON(w, http.StatusOK, ag.DockerContainers(r.Context()))
}

// commandRequest carries the timeout in milliseconds.
type commandRequest struct {
	Command string `json:"command"`
	Timeout int64  `json:"timeout"`
}

// commandTimeout converts a timeout in milliseconds, capped at the request
// timeout. Non-positive values select the agent default.
func (s *Server) commandTimeout(ms int64) time.Duration {
	if ms <= 0 {
		return 0
	}
	limit := s.cfg.RequestTimeout
	if limit <= 0 {
		limit = defaultRequestTimeout
	}
	if ms >= limit.Milliseconds() {
		return limit
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "Command is required")
		return
	}
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	out, err := s.svc.ExecuteCommand(r.Context(), ag, r.URL.Query().Get("host"), req.Command, s.commandTimeout(req.Timeout))
	if err != nil {
		fail(w, err, "", "Failed to execute command")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRestartService(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "serviceName")
	if err := agent.ValidateServiceName(name); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid service name")
		return
	}
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	res, err := s.svc.RestartService(r.Context(), ag, r.URL.Query().Get("host"), name)
	if err != nil {
		fail(w, err, "", "Failed to restart service")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type portResponse struct {
	Port      int  `json:"port"`
	Available bool `json:"available"`
}

func (s *Server) handlePortCheck(w http.ResponseWriter, r *http.Request) {
	port, ok := intParam(r, "port")
	if !ok || port < 1 || port > 65535 {
		writeError(w, http.StatusBadRequest, "Invalid port")
		return
	}
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()
	available, err := ag.CheckPortAvailability(r.Context(), port)
	if err != nil {
		fail(w, err, "", "Failed to check port availability")
		return
	}
	writeJSON(w, http.StatusOK, portResponse{Port: port, Available: available})
}
