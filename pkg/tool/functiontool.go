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

package tool

import (
	"context"
	"fmt"
)

// NewFunc creates a CallableTool from a typed function. The parameter
// schema is generated from the Args struct tags, and incoming argument
// maps are decoded into Args before the function runs.
//
// Example:
//
//	type SearchArgs struct {
//	    Query string `json:"query" jsonschema:"required,description=Search query"`
//	    Limit int    `json:"limit,omitempty" jsonschema:"description=Max results,default=10"`
//	}
//
//	searchTool, err := tool.NewFunc(tool.IDVectorQuery, "Search documents",
//	    func(ctx context.Context, args SearchArgs) (map[string]any, error) {
//	        // ...
//	    })
func NewFunc[Args any](id ID, description string, fn func(context.Context, Args) (map[string]any, error)) (CallableTool, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("unknown tool id %q", id)
	}
	if description == "" {
		return nil, fmt.Errorf("tool %q requires a description", id)
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %q requires a function", id)
	}

	schema, err := generateSchema[Args]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", id, err)
	}

	return &funcTool[Args]{
		id:          id,
		description: description,
		fn:          fn,
		schema:      schema,
	}, nil
}

// funcTool implements CallableTool by wrapping a typed function.
type funcTool[Args any] struct {
	id          ID
	description string
	fn          func(context.Context, Args) (map[string]any, error)
	schema      map[string]any
}

func (t *funcTool[Args]) ID() ID {
	return t.id
}

func (t *funcTool[Args]) Description() string {
	return t.description
}

func (t *funcTool[Args]) Schema() map[string]any {
	return t.schema
}

func (t *funcTool[Args]) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	var typedArgs Args
	if err := decodeArgs(args, &typedArgs); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", t.id, err)
	}

	return t.fn(ctx, typedArgs)
}

// Ensure funcTool implements CallableTool.
var _ CallableTool = (*funcTool[struct{}])(nil)
