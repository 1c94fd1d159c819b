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

// Package tool defines the callable-tool contract agents consume and the
// closed registry resolving tool identifiers.
//
// The set of tool identifiers is a closed enum: registration of an unknown
// id is an error, so a config referencing a tool that was never wired
// fails at startup rather than at call time.
package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ID identifies a tool. Only the declared constants are valid.
type ID string

// The closed set of tool identifiers.
const (
	// IDCreateGraphRAG builds and persists a document similarity graph.
	IDCreateGraphRAG ID = "create-graph-rag"

	// IDGraphRAGQuery retrieves documents via graph-based expansion.
	IDGraphRAGQuery ID = "graph-rag-query"

	// IDVectorQuery retrieves documents by plain vector similarity.
	IDVectorQuery ID = "vector-query"

	// IDCalculator evaluates basic arithmetic expressions.
	IDCalculator ID = "calculator"
)

// knownIDs is the registry's admission list.
var knownIDs = map[ID]bool{
	IDCreateGraphRAG: true,
	IDGraphRAGQuery:  true,
	IDVectorQuery:    true,
	IDCalculator:     true,
}

// Valid reports whether id is part of the closed tool set.
func (id ID) Valid() bool {
	return knownIDs[id]
}

// CallableTool is a synchronously executable tool with a JSON-schema
// described parameter contract.
type CallableTool interface {
	// ID returns the tool's identifier from the closed set.
	ID() ID

	// Description explains what the tool does. Shown to LLMs to decide
	// when to use the tool.
	Description() string

	// Schema returns the JSON schema for the tool's parameters.
	Schema() map[string]any

	// Call executes the tool with the given arguments.
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Definition is a tool definition for LLM function calling.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToDefinition converts a tool to a Definition.
func ToDefinition(t CallableTool) Definition {
	return Definition{
		Name:        string(t.ID()),
		Description: t.Description(),
		Parameters:  t.Schema(),
	}
}

// Registry maps tool ids to implementations. Unlike an open map of
// name-to-function, it only admits ids from the closed set and rejects
// duplicates.
type Registry struct {
	mu    sync.RWMutex
	tools map[ID]CallableTool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[ID]CallableTool)}
}

// Register adds a tool. The id must be one of the declared constants and
// not yet registered.
func (r *Registry) Register(t CallableTool) error {
	if t == nil {
		return fmt.Errorf("tool cannot be nil")
	}

	id := t.ID()
	if !id.Valid() {
		return fmt.Errorf("unknown tool id %q", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[id]; exists {
		return fmt.Errorf("tool %q already registered", id)
	}

	r.tools[id] = t
	return nil
}

// Get retrieves a tool by id.
func (r *Registry) Get(id ID) (CallableTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	return t, ok
}

// Resolve maps ids to tools, returning an error naming every missing id.
func (r *Registry) Resolve(ids []ID) ([]CallableTool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]CallableTool, 0, len(ids))
	var missing []string

	for _, id := range ids {
		if t, ok := r.tools[id]; ok {
			tools = append(tools, t)
		} else {
			missing = append(missing, string(id))
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing tools: %v", missing)
	}
	return tools, nil
}

// IDs returns all registered tool ids, sorted.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ID, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Definitions returns the function-calling definitions of all registered
// tools, sorted by id.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, ToDefinition(t))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
