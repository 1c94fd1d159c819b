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

// Package network groups agents behind a router that picks which agent
// handles a given input. The router is an interface so deployments can plug
// in an LLM-backed implementation; the built-in router picks by keyword
// match against agent descriptions with a deterministic fallback.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deanmachines/agentnet/pkg/agent"
	"github.com/deanmachines/agentnet/pkg/registry"
)

// Router decides which agent in a network should handle an input.
type Router interface {
	// Route returns the ID of the agent that should handle input. The
	// returned ID must be one of the candidate agents' IDs.
	Route(ctx context.Context, input string, candidates []*agent.Agent) (string, error)
}

// Config declares a network: its identity, routing instructions, and the
// IDs of member agents.
type Config struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Instructions string   `yaml:"instructions"`
	AgentIDs     []string `yaml:"agent_ids"`
}

// SetDefaults applies default configuration values.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = c.ID
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("network id is required")
	}
	if len(c.AgentIDs) == 0 {
		return fmt.Errorf("network '%s': at least one agent is required", c.ID)
	}
	return nil
}

// Network is a configured agent network.
type Network struct {
	config Config
	agents []*agent.Agent
	router Router
}

// New builds a network from cfg, resolving member agent IDs against the
// given agents. Every declared agent must be present. A nil router falls
// back to the keyword router.
func New(cfg Config, agents *registry.Registry[*agent.Agent], router Router) (*Network, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network configuration: %w", err)
	}
	if agents == nil {
		return nil, fmt.Errorf("network '%s': agent registry is required", cfg.ID)
	}

	members := make([]*agent.Agent, 0, len(cfg.AgentIDs))
	for _, id := range cfg.AgentIDs {
		a, ok := agents.Get(id)
		if !ok {
			return nil, fmt.Errorf("network '%s': unknown agent '%s'", cfg.ID, id)
		}
		members = append(members, a)
	}

	if router == nil {
		router = NewKeywordRouter()
	}

	return &Network{config: cfg, agents: members, router: router}, nil
}

// ID returns the network's identifier.
func (n *Network) ID() string { return n.config.ID }

// Name returns the network's display name.
func (n *Network) Name() string { return n.config.Name }

// Instructions returns the network's routing instructions.
func (n *Network) Instructions() string { return n.config.Instructions }

// Agents returns the member agents in declaration order.
func (n *Network) Agents() []*agent.Agent {
	out := make([]*agent.Agent, len(n.agents))
	copy(out, n.agents)
	return out
}

// Route picks the member agent for input via the network's router. A router
// answer that names a non-member is an error.
func (n *Network) Route(ctx context.Context, input string) (*agent.Agent, error) {
	id, err := n.router.Route(ctx, input, n.agents)
	if err != nil {
		return nil, fmt.Errorf("network '%s': routing failed: %w", n.config.ID, err)
	}

	for _, a := range n.agents {
		if a.ID() == id {
			slog.Debug("Routed input", "network", n.config.ID, "agent", id)
			return a, nil
		}
	}
	return nil, fmt.Errorf("network '%s': router chose non-member agent '%s'", n.config.ID, id)
}

// KeywordRouter scores agents by how many words of their name and
// description appear in the input. Ties and zero scores fall back to the
// first member, keeping routing deterministic.
type KeywordRouter struct{}

var _ Router = (*KeywordRouter)(nil)

// NewKeywordRouter builds the built-in router.
func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{}
}

// Route implements Router.
func (r *KeywordRouter) Route(_ context.Context, input string, candidates []*agent.Agent) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidate agents")
	}

	inputWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(input)) {
		inputWords[strings.Trim(w, ".,!?;:")] = true
	}

	best := candidates[0]
	bestScore := -1
	for _, a := range candidates {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(a.Name() + " " + a.Description())) {
			if inputWords[strings.Trim(w, ".,!?;:")] {
				score++
			}
		}
		if score > bestScore {
			best = a
			bestScore = score
		}
	}

	return best.ID(), nil
}

// DefaultConfigs returns the built-in network roster, used when the
// configuration file declares no networks of its own.
func DefaultConfigs() []Config {
	return []Config{
		{
			ID:   "dean-insights",
			Name: "DeanInsights Network",
			Instructions: `Route research questions to the research agent, analysis requests to
the analyst agent, content drafting to the writer agent, and document
ingestion to the data manager agent.`,
			AgentIDs: []string{"research-agent", "analyst-agent", "writer-agent", "data-manager-agent"},
		},
		{
			ID:   "data-flow",
			Name: "DataFlow Network",
			Instructions: `Route data organization and graph building to the data manager agent
and interpretation of stored data to the analyst agent.`,
			AgentIDs: []string{"data-manager-agent", "analyst-agent"},
		},
		{
			ID:   "content-creation",
			Name: "ContentCreation Network",
			Instructions: `Route information gathering to the research agent and drafting to the
writer agent.`,
			AgentIDs: []string{"research-agent", "writer-agent"},
		},
	}
}
