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

// Package runtime wires configuration into live components: embedder,
// vector store, graph engines, tools, memory, agents, and networks. All
// dependencies are constructed here and passed down explicitly.
package runtime

import (
	"fmt"
	"log/slog"

	"github.com/deanmachines/agentnet/pkg/agent"
	"github.com/deanmachines/agentnet/pkg/config"
	"github.com/deanmachines/agentnet/pkg/embedder"
	"github.com/deanmachines/agentnet/pkg/graph"
	"github.com/deanmachines/agentnet/pkg/memory"
	"github.com/deanmachines/agentnet/pkg/network"
	"github.com/deanmachines/agentnet/pkg/registry"
	"github.com/deanmachines/agentnet/pkg/tool"
	"github.com/deanmachines/agentnet/pkg/tool/calctool"
	"github.com/deanmachines/agentnet/pkg/tool/graphtool"
	"github.com/deanmachines/agentnet/pkg/tool/querytool"
	"github.com/deanmachines/agentnet/pkg/vector"
)

// Option customizes runtime construction.
type Option func(*options)

type options struct {
	router network.Router
}

// WithRouter overrides the router used by all networks.
func WithRouter(r network.Router) Option {
	return func(o *options) { o.router = r }
}

// Runtime holds all constructed components.
type Runtime struct {
	Embedder    embedder.Embedder
	VectorStore vector.Provider
	Builder     *graph.Builder
	Store       *graph.Store
	Engine      *graph.Engine
	Tools       *tool.Registry
	Memory      memory.Store
	Agents      *registry.Registry[*agent.Agent]
	Networks    *registry.Registry[*network.Network]
}

// New constructs the full component graph from cfg. Call Close when done.
func New(cfg *config.Config, opts ...Option) (*Runtime, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	emb, err := embedder.New(&cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	provider, err := vector.NewProvider(&cfg.VectorStore)
	if err != nil {
		emb.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	builder := graph.NewBuilder(emb)
	store := graph.NewStore(provider, emb)
	engine := graph.NewEngine(store)

	mem, err := memory.NewSQLiteStore(&cfg.Memory)
	if err != nil {
		emb.Close()
		provider.Close()
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}

	rt := &Runtime{
		Embedder:    emb,
		VectorStore: provider,
		Builder:     builder,
		Store:       store,
		Engine:      engine,
		Memory:      mem,
	}

	if rt.Tools, err = buildTools(builder, store, engine); err != nil {
		rt.Close()
		return nil, err
	}

	rt.Agents = registry.New[*agent.Agent]()
	for _, agentCfg := range cfg.Agents {
		a, err := agent.New(agentCfg, rt.Tools, mem)
		if err != nil {
			rt.Close()
			return nil, err
		}
		if err := rt.Agents.Register(a.ID(), a); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to register agent: %w", err)
		}
	}

	rt.Networks = registry.New[*network.Network]()
	for _, netCfg := range cfg.Networks {
		n, err := network.New(netCfg, rt.Agents, o.router)
		if err != nil {
			rt.Close()
			return nil, err
		}
		if err := rt.Networks.Register(n.ID(), n); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to register network: %w", err)
		}
	}

	slog.Info("Runtime ready",
		"embedder", cfg.Embedder.Type,
		"vector_store", cfg.VectorStore.Type,
		"tools", rt.Tools.Count(),
		"agents", rt.Agents.Count(),
		"networks", rt.Networks.Count())

	return rt, nil
}

func buildTools(builder *graph.Builder, store *graph.Store, engine *graph.Engine) (*tool.Registry, error) {
	registry := tool.NewRegistry()

	createTool, err := graphtool.NewCreateTool(builder, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph build tool: %w", err)
	}
	queryTool, err := graphtool.NewQueryTool(engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph query tool: %w", err)
	}
	vecTool, err := querytool.New(store)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector query tool: %w", err)
	}
	calc, err := calctool.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create calculator tool: %w", err)
	}

	for _, t := range []tool.CallableTool{createTool, queryTool, vecTool, calc} {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("failed to register tool: %w", err)
		}
	}

	return registry, nil
}

// Close releases all held resources. Errors are logged, not returned; the
// runtime is shutting down either way.
func (rt *Runtime) Close() {
	if rt.Memory != nil {
		if err := rt.Memory.Close(); err != nil {
			slog.Warn("Failed to close memory store", "error", err)
		}
	}
	if rt.VectorStore != nil {
		if err := rt.VectorStore.Close(); err != nil {
			slog.Warn("Failed to close vector store", "error", err)
		}
	}
	if rt.Embedder != nil {
		if err := rt.Embedder.Close(); err != nil {
			slog.Warn("Failed to close embedder", "error", err)
		}
	}
}
