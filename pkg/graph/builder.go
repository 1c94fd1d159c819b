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

// Package graph implements graph-based retrieval-augmented generation:
// it builds a similarity graph over a document corpus, persists it as
// metadata in a vector store, and answers queries by combining vector
// similarity search with bounded-depth, score-decaying graph traversal.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/deanmachines/agentnet/pkg/embedder"
)

// DefaultThreshold is the similarity threshold for creating connections.
const DefaultThreshold = 0.7

// Builder constructs similarity graphs from document batches.
//
// Edges are computed pairwise within one batch only: adding documents to an
// existing namespace does not recompute edges against previously stored
// nodes. Pairwise comparison is O(n²), acceptable for the moderate batch
// sizes the tool contract implies (tens to low hundreds of documents).
type Builder struct {
	embedder embedder.Embedder
}

// NewBuilder creates a graph builder using the given embedding gateway.
func NewBuilder(e embedder.Embedder) *Builder {
	return &Builder{embedder: e}
}

// Build assigns stable ids, embeds all document contents in a single batch
// call, computes pairwise similarity, and materializes an undirected
// weighted graph on the returned nodes. Nodes are not persisted; pass them
// to Store.UpsertNodes.
//
// A pair (i, j) gains a bidirectional edge when cosine similarity meets
// threshold. Thresholds outside [0, 1] are not an error: above the maximum
// possible similarity the graph is fully disconnected, at or below 0 it is
// fully connected.
func (b *Builder) Build(ctx context.Context, docs []Document, threshold float64) ([]*Node, error) {
	ctx, span := tracer.Start(ctx, "graph.build")
	defer span.End()
	span.SetAttributes(
		attribute.Int("documents", len(docs)),
		attribute.Float64("threshold", threshold),
	)

	start := time.Now()

	nodes := make([]*Node, len(docs))
	contents := make([]string, len(docs))
	now := time.Now().UnixMilli()

	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("node-%d-%d", now, i)
		}
		nodes[i] = &Node{
			ID:                id,
			Content:           doc.Content,
			Metadata:          doc.Metadata,
			Connections:       []string{},
			ConnectionWeights: map[string]float64{},
		}
		contents[i] = doc.Content
	}

	// One provider round trip for the whole batch.
	vectors, err := b.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		span.RecordError(err)
		buildsTotal.WithLabelValues(statusError).Inc()
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		err := fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
		span.RecordError(err)
		buildsTotal.WithLabelValues(statusError).Inc()
		return nil, err
	}

	for i := range nodes {
		nodes[i].Embedding = vectors[i]
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			similarity, err := CosineSimilarity(vectors[i], vectors[j])
			if err != nil {
				span.RecordError(err)
				buildsTotal.WithLabelValues(statusError).Inc()
				return nil, fmt.Errorf("similarity between %s and %s: %w", nodes[i].ID, nodes[j].ID, err)
			}

			if similarity >= threshold {
				nodes[i].Connections = append(nodes[i].Connections, nodes[j].ID)
				nodes[i].ConnectionWeights[nodes[j].ID] = similarity

				nodes[j].Connections = append(nodes[j].Connections, nodes[i].ID)
				nodes[j].ConnectionWeights[nodes[i].ID] = similarity
			}
		}
	}

	edges := EdgeCount(nodes)
	span.SetAttributes(attribute.Int("edges", edges))
	buildsTotal.WithLabelValues(statusOK).Inc()
	buildDuration.Observe(time.Since(start).Seconds())

	slog.Debug("Built similarity graph",
		"nodes", len(nodes),
		"edges", edges,
		"threshold", threshold)

	return nodes, nil
}
