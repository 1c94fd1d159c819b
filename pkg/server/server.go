// Copyright 2025 Deanmachines AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes agents, networks, and tools over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deanmachines/agentnet/pkg/agent"
	"github.com/deanmachines/agentnet/pkg/network"
	"github.com/deanmachines/agentnet/pkg/registry"
	"github.com/deanmachines/agentnet/pkg/tool"
)

// Options configures the HTTP server.
type Options struct {
	Host string
	Port int

	Agents   *registry.Registry[*agent.Agent]
	Networks *registry.Registry[*network.Network]
	Tools    *tool.Registry
}

// Server serves the REST API.
type Server struct {
	opts   Options
	server *http.Server
}

// New builds the server and its routes.
func New(opts Options) *Server {
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/agents", s.handleListAgents)
		r.Get("/agents/{agent}", s.handleGetAgent)
		r.Get("/networks", s.handleListNetworks)
		r.Post("/networks/{network}/route", s.handleRouteNetwork)
		r.Get("/tools", s.handleListTools)
		r.Post("/tools/{tool}", s.handleCallTool)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type agentSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Model       string    `json:"model"`
	ToolIDs     []tool.ID `json:"toolIds"`
}

func summarizeAgent(a *agent.Agent) agentSummary {
	tools := a.Tools()
	ids := make([]tool.ID, len(tools))
	for i, t := range tools {
		ids[i] = t.ID()
	}
	return agentSummary{
		ID:          a.ID(),
		Name:        a.Name(),
		Description: a.Description(),
		Model:       a.Model(),
		ToolIDs:     ids,
	}
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	names := s.opts.Agents.Names()
	out := make([]agentSummary, 0, len(names))
	for _, name := range names {
		if a, ok := s.opts.Agents.Get(name); ok {
			out = append(out, summarizeAgent(a))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agent")
	a, ok := s.opts.Agents.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "agent '%s' not found", id)
		return
	}
	writeJSON(w, http.StatusOK, summarizeAgent(a))
}

type networkSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Instructions string   `json:"instructions"`
	AgentIDs     []string `json:"agentIds"`
}

func (s *Server) handleListNetworks(w http.ResponseWriter, _ *http.Request) {
	names := s.opts.Networks.Names()
	out := make([]networkSummary, 0, len(names))
	for _, name := range names {
		n, ok := s.opts.Networks.Get(name)
		if !ok {
			continue
		}
		agents := n.Agents()
		ids := make([]string, len(agents))
		for i, a := range agents {
			ids[i] = a.ID()
		}
		out = append(out, networkSummary{
			ID:           n.ID(),
			Name:         n.Name(),
			Instructions: n.Instructions(),
			AgentIDs:     ids,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type routeRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleRouteNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "network")
	n, ok := s.opts.Networks.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "network '%s' not found", id)
		return
	}

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	a, err := n.Route(r.Context(), req.Input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"agentId": a.ID()})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Tools.Definitions())
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	id := tool.ID(chi.URLParam(r, "tool"))

	t, ok := s.opts.Tools.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "tool '%s' not found", id)
		return
	}

	args := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	result, err := t.Call(r.Context(), args)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "tool '%s' failed: %v", id, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
