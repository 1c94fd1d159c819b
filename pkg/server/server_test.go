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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deanmachines/agentnet/pkg/agent"
	"github.com/deanmachines/agentnet/pkg/network"
	"github.com/deanmachines/agentnet/pkg/registry"
	"github.com/deanmachines/agentnet/pkg/tool"
	"github.com/deanmachines/agentnet/pkg/tool/calctool"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	tools := tool.NewRegistry()
	calc, err := calctool.New()
	require.NoError(t, err)
	require.NoError(t, tools.Register(calc))

	a, err := agent.New(agent.Config{
		ID:           "mathematician",
		Name:         "Mathematician",
		Description:  "Does arithmetic.",
		Instructions: "Calculate.",
		ToolIDs:      []tool.ID{tool.IDCalculator},
	}, tools, nil)
	require.NoError(t, err)
	agents := registry.New[*agent.Agent]()
	require.NoError(t, agents.Register(a.ID(), a))

	n, err := network.New(network.Config{
		ID:       "math-net",
		AgentIDs: []string{"mathematician"},
	}, agents, nil)
	require.NoError(t, err)
	networks := registry.New[*network.Network]()
	require.NoError(t, networks.Register(n.ID(), n))

	return New(Options{
		Host:     "127.0.0.1",
		Port:     0,
		Agents:   agents,
		Networks: networks,
		Tools:    tools,
	})
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServer_ListAgents(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var agents []agentSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agents))
	require.Len(t, agents, 1)
	assert.Equal(t, "mathematician", agents[0].ID)
	assert.Equal(t, []tool.ID{tool.IDCalculator}, agents[0].ToolIDs)
}

func TestServer_GetAgent(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/v1/agents/mathematician", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/v1/agents/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestServer_ListNetworks(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/v1/networks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var networks []networkSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &networks))
	require.Len(t, networks, 1)
	assert.Equal(t, "math-net", networks[0].ID)
	assert.Equal(t, []string{"mathematician"}, networks[0].AgentIDs)
}

func TestServer_RouteNetwork(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/networks/math-net/route", `{"input":"add numbers"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mathematician")

	rec = doRequest(t, srv, http.MethodPost, "/v1/networks/math-net/route", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/v1/networks/ghost/route", `{"input":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ListTools(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var defs []tool.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, "calculator", defs[0].Name)
}

func TestServer_CallTool(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/tools/calculator", `{"expression":"6*7"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 42.0, result["result"])
}

func TestServer_CallTool_Errors(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/tools/unknown-tool", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/v1/tools/calculator", `{"expression":"1/0"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")

	rec = doRequest(t, srv, http.MethodPost, "/v1/tools/calculator", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
