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

// Package agent assembles declarative agent configurations with their
// resolved tools and shared memory. An agent is configuration plus
// capabilities; it never holds module-level state.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deanmachines/agentnet/pkg/memory"
	"github.com/deanmachines/agentnet/pkg/tool"
)

// Config declares an agent: identity, model, behavior, and the tool IDs it
// is allowed to call. Tool IDs are resolved against the registry at
// construction time, so a typo fails fast instead of at call time.
type Config struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Description  string    `yaml:"description"`
	Model        string    `yaml:"model"`
	Instructions string    `yaml:"instructions"`
	ToolIDs      []tool.ID `yaml:"tool_ids"`
}

// SetDefaults applies default configuration values.
func (c *Config) SetDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.Name == "" {
		c.Name = c.ID
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("agent id is required")
	}
	if c.Instructions == "" {
		return fmt.Errorf("agent '%s': instructions are required", c.ID)
	}
	for _, id := range c.ToolIDs {
		if !id.Valid() {
			return fmt.Errorf("agent '%s': unknown tool id '%s'", c.ID, id)
		}
	}
	return nil
}

// Agent is a configured agent with its resolved tools.
type Agent struct {
	config Config
	tools  []tool.CallableTool
	mem    memory.Store
}

// New resolves cfg's tool IDs against the registry and binds shared memory.
// Every declared tool must be registered.
func New(cfg Config, tools *tool.Registry, mem memory.Store) (*Agent, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent configuration: %w", err)
	}
	if tools == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	resolved, err := tools.Resolve(cfg.ToolIDs)
	if err != nil {
		return nil, fmt.Errorf("agent '%s': %w", cfg.ID, err)
	}

	slog.Debug("Agent created", "agent", cfg.ID, "tools", len(resolved))

	return &Agent{config: cfg, tools: resolved, mem: mem}, nil
}

// ID returns the agent's identifier.
func (a *Agent) ID() string { return a.config.ID }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.config.Name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.config.Description }

// Model returns the model identifier the agent is configured with.
func (a *Agent) Model() string { return a.config.Model }

// Instructions returns the agent's system instructions.
func (a *Agent) Instructions() string { return a.config.Instructions }

// Tools returns the agent's resolved tools in declaration order.
func (a *Agent) Tools() []tool.CallableTool {
	out := make([]tool.CallableTool, len(a.tools))
	copy(out, a.tools)
	return out
}

// Tool returns the agent's tool with the given ID, or an error when the
// agent does not declare it.
func (a *Agent) Tool(id tool.ID) (tool.CallableTool, error) {
	for _, t := range a.tools {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("agent '%s' does not declare tool '%s'", a.config.ID, id)
}

// CallTool invokes one of the agent's tools by ID, recording the exchange in
// shared memory when a session is given.
func (a *Agent) CallTool(ctx context.Context, sessionID string, id tool.ID, args map[string]any) (map[string]any, error) {
	t, err := a.Tool(id)
	if err != nil {
		return nil, err
	}

	result, err := t.Call(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("tool '%s' failed: %w", id, err)
	}

	if a.mem != nil && sessionID != "" {
		if _, memErr := a.mem.AppendMessage(ctx, sessionID, "tool", string(id)); memErr != nil {
			slog.Warn("Failed to record tool call in memory",
				"agent", a.config.ID, "tool", id, "error", memErr)
		}
	}

	return result, nil
}
