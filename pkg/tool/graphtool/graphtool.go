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

// Package graphtool exposes graph construction and graph-based retrieval
// as callable tools.
//
// Errors never cross the tool boundary as panics or raw failures: the
// create tool converts them into a structured {success: false, error}
// result, and the query tool returns an empty document list with a
// distinct error field, so agent callers can branch on failure without
// crashing and still tell "no matches" apart from "search failed".
package graphtool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deanmachines/agentnet/pkg/graph"
	"github.com/deanmachines/agentnet/pkg/tool"
)

// DocumentArg is one document in a create-graph-rag request.
type DocumentArg struct {
	Content  string         `json:"content" jsonschema:"required,description=Document text"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"description=Arbitrary document attributes"`
}

// CreateArgs are the parameters of the create-graph-rag tool.
type CreateArgs struct {
	Documents           []DocumentArg `json:"documents" jsonschema:"required,description=Documents to process and connect"`
	Namespace           string        `json:"namespace,omitempty" jsonschema:"description=Namespace to store the graph in"`
	SimilarityThreshold *float64      `json:"similarityThreshold,omitempty" jsonschema:"description=Threshold for creating connections (0-1),default=0.7"`
}

// QueryArgs are the parameters of the graph-rag-query tool.
type QueryArgs struct {
	Query                string  `json:"query" jsonschema:"required,description=Query to search for in the document graph"`
	Namespace            string  `json:"namespace,omitempty" jsonschema:"description=Namespace of the graph"`
	InitialDocumentCount int     `json:"initialDocumentCount,omitempty" jsonschema:"description=Initial number of documents to retrieve,default=3"`
	MaxHopCount          *int    `json:"maxHopCount,omitempty" jsonschema:"description=Maximum number of hops to traverse,default=2"`
	MinSimilarity        float64 `json:"minSimilarity,omitempty" jsonschema:"description=Minimum similarity for initial retrieval,default=0.6"`
}

// NewCreateTool builds the create-graph-rag tool over an injected builder
// and store.
func NewCreateTool(builder *graph.Builder, store *graph.Store) (tool.CallableTool, error) {
	return tool.NewFunc(tool.IDCreateGraphRAG,
		"Creates graph relationships between documents for improved retrieval",
		func(ctx context.Context, args CreateArgs) (map[string]any, error) {
			threshold := graph.DefaultThreshold
			if args.SimilarityThreshold != nil {
				threshold = *args.SimilarityThreshold
			}

			namespace := args.Namespace
			if namespace == "" {
				namespace = graph.DefaultNamespace
			}

			docs := make([]graph.Document, len(args.Documents))
			for i, d := range args.Documents {
				doc := graph.Document{
					Content:  d.Content,
					Metadata: d.Metadata,
				}
				// Caller-supplied ids live in metadata, matching the
				// stored record shape.
				if id, ok := d.Metadata["id"].(string); ok {
					doc.ID = id
				}
				docs[i] = doc
			}

			nodes, err := builder.Build(ctx, docs, threshold)
			if err != nil {
				return createFailure(err), nil
			}

			if err := store.UpsertNodes(ctx, namespace, nodes); err != nil {
				return createFailure(err), nil
			}

			edgeCount := graph.EdgeCount(nodes)
			slog.Info("Created document graph",
				"namespace", namespace,
				"nodes", len(nodes),
				"edges", edgeCount)

			return map[string]any{
				"success":   true,
				"graphId":   fmt.Sprintf("graph-%d", time.Now().UnixMilli()),
				"nodeCount": len(nodes),
				"edgeCount": edgeCount,
			}, nil
		})
}

func createFailure(err error) map[string]any {
	slog.Error("Graph creation failed", "error", err)
	return map[string]any{
		"success":   false,
		"nodeCount": 0,
		"edgeCount": 0,
		"error":     err.Error(),
	}
}

// NewQueryTool builds the graph-rag-query tool over an injected engine.
func NewQueryTool(engine *graph.Engine) (tool.CallableTool, error) {
	return tool.NewFunc(tool.IDGraphRAGQuery,
		"Retrieves documents using graph-based relationships for improved context",
		func(ctx context.Context, args QueryArgs) (map[string]any, error) {
			results, err := engine.Query(ctx, args.Namespace, args.Query, graph.QueryOptions{
				InitialK:      args.InitialDocumentCount,
				MaxHops:       args.MaxHopCount,
				MinSimilarity: args.MinSimilarity,
			})
			if err != nil {
				// Fail-soft: availability over strict surfacing, but the
				// error field keeps outages distinguishable from empty
				// result sets.
				slog.Error("Graph query failed", "namespace", args.Namespace, "error", err)
				return map[string]any{
					"documents": []graph.RetrievedNode{},
					"count":     0,
					"error":     err.Error(),
				}, nil
			}

			return map[string]any{
				"documents": results,
				"count":     len(results),
			}, nil
		})
}
