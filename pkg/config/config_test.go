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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deanmachines/agentnet/pkg/embedder"
	"github.com/deanmachines/agentnet/pkg/tool"
	"github.com/deanmachines/agentnet/pkg/vector"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret-key")

	path := writeConfig(t, `
logger:
  level: debug
  format: json

server:
  port: 9090

embedder:
  type: google
  google:
    api_key: ${TEST_GEMINI_KEY}

vector_store:
  type: chromem

memory:
  path: ":memory:"

agents:
  - id: researcher
    name: Researcher
    instructions: Find things.
    tool_ids: [graph-rag-query, calculator]
  - id: librarian
    instructions: Organize things.
    tool_ids: [create-graph-rag]

networks:
  - id: main
    agent_ids: [researcher, librarian]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, embedder.ProviderGoogle, cfg.Embedder.Type)
	require.NotNil(t, cfg.Embedder.Google)
	assert.Equal(t, "secret-key", cfg.Embedder.Google.APIKey)

	assert.Equal(t, vector.ProviderChromem, cfg.VectorStore.Type)
	assert.Equal(t, ":memory:", cfg.Memory.Path)

	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, "researcher", cfg.Agents[0].ID)
	assert.Equal(t, []tool.ID{tool.IDGraphRAGQuery, tool.IDCalculator}, cfg.Agents[0].ToolIDs)
	// Name defaults to the id.
	assert.Equal(t, "librarian", cfg.Agents[1].Name)

	require.Len(t, cfg.Networks, 1)
	assert.Equal(t, []string{"researcher", "librarian"}, cfg.Networks[0].AgentIDs)
}

func TestLoad_EnvDefaultSyntax(t *testing.T) {
	path := writeConfig(t, `
embedder:
  type: google
  google:
    api_key: ${UNSET_KEY_FOR_TEST:-fallback-key}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", cfg.Embedder.Google.APIKey)
}

func TestLoad_DefaultsWhenSectionsOmitted(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, vector.ProviderChromem, cfg.VectorStore.Type)
	assert.NotEmpty(t, cfg.Agents)
	assert.NotEmpty(t, cfg.Networks)
	assert.Equal(t, "env-key", cfg.Embedder.Google.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logger.Level = "loud" },
			wantErr: "invalid level",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 99999 },
			wantErr: "invalid port",
		},
		{
			name: "unknown tool id",
			mutate: func(c *Config) {
				c.Agents[0].ToolIDs = append(c.Agents[0].ToolIDs, tool.ID("nope"))
			},
			wantErr: "unknown tool id",
		},
		{
			name: "duplicate agent id",
			mutate: func(c *Config) {
				c.Agents = append(c.Agents, c.Agents[0])
			},
			wantErr: "duplicate agent id",
		},
		{
			name: "network references unknown agent",
			mutate: func(c *Config) {
				c.Networks[0].AgentIDs = append(c.Networks[0].AgentIDs, "ghost")
			},
			wantErr: "unknown agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "env-key")
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("EXPAND_TEST_VAR", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"${EXPAND_TEST_VAR}", "value"},
		{"$EXPAND_TEST_VAR", "value"},
		{"${EXPAND_TEST_VAR:-other}", "value"},
		{"${EXPAND_UNSET_VAR:-other}", "other"},
		{"no vars here", "no vars here"},
		{"prefix-${EXPAND_TEST_VAR}-suffix", "prefix-value-suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnvVars(tt.in))
		})
	}
}
