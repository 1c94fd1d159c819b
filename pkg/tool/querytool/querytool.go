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

// Package querytool exposes plain vector similarity search as a callable
// tool, without graph expansion.
package querytool

import (
	"context"
	"log/slog"

	"github.com/deanmachines/agentnet/pkg/graph"
	"github.com/deanmachines/agentnet/pkg/tool"
)

// Args are the parameters of the vector-query tool.
type Args struct {
	Query     string  `json:"query" jsonschema:"required,description=Query to search for"`
	Namespace string  `json:"namespace,omitempty" jsonschema:"description=Namespace to search in"`
	TopK      int     `json:"topK,omitempty" jsonschema:"description=Maximum number of results,default=5"`
	MinScore  float64 `json:"minScore,omitempty" jsonschema:"description=Minimum similarity score"`
}

type document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// New builds the vector-query tool over an injected graph store.
func New(store *graph.Store) (tool.CallableTool, error) {
	return tool.NewFunc(tool.IDVectorQuery,
		"Retrieves documents by vector similarity search",
		func(ctx context.Context, args Args) (map[string]any, error) {
			topK := args.TopK
			if topK <= 0 {
				topK = 5
			}

			results, err := store.SimilaritySearch(ctx, args.Namespace, args.Query, topK, args.MinScore)
			if err != nil {
				slog.Error("Vector query failed", "namespace", args.Namespace, "error", err)
				return map[string]any{
					"documents": []document{},
					"count":     0,
					"error":     err.Error(),
				}, nil
			}

			docs := make([]document, len(results))
			for i, r := range results {
				docs[i] = document{
					Content:  r.Node.Content,
					Metadata: r.Node.Metadata,
					Score:    r.Score,
				}
			}

			return map[string]any{
				"documents": docs,
				"count":     len(docs),
			}, nil
		})
}
