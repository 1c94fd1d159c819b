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

package graph

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/deanmachines/agentnet/pkg/embedder"
	"github.com/deanmachines/agentnet/pkg/vector"
)

// DefaultNamespace is the vector store partition used when callers don't
// name one.
const DefaultNamespace = "graph-rag"

// upsertConcurrency bounds parallel provider writes during UpsertNodes.
const upsertConcurrency = 8

// Store adapts a vector provider and an embedding gateway to the three
// operations graph traversal needs: node upsert, similarity search, and
// point lookup by id. All operations are scoped to one namespace.
type Store struct {
	provider vector.Provider
	embedder embedder.Embedder
}

// NewStore creates a graph store over the given provider and embedder.
// Both are injected explicitly; the store holds no global client state.
func NewStore(provider vector.Provider, e embedder.Embedder) *Store {
	return &Store{provider: provider, embedder: e}
}

// ScoredNode pairs a node with its raw similarity score from a search.
type ScoredNode struct {
	Node  *Node
	Score float64
}

// UpsertNodes persists nodes into a namespace. Writes are idempotent by
// node id, so re-running a build overwrites rather than duplicates.
// Partial failures are reported, never swallowed: the first write error
// aborts in-flight work and is returned.
func (s *Store) UpsertNodes(ctx context.Context, namespace string, nodes []*Node) error {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(upsertConcurrency)

	for _, node := range nodes {
		g.Go(func() error {
			if len(node.Embedding) == 0 {
				return fmt.Errorf("node %s has no embedding", node.ID)
			}

			metadata, err := node.storageMetadata()
			if err != nil {
				return err
			}

			if err := s.provider.Upsert(ctx, namespace, node.ID, node.Embedding, metadata); err != nil {
				return &StoreUnavailableError{Op: "upsert", Err: fmt.Errorf("node %s: %w", node.ID, err)}
			}
			return nil
		})
	}

	return g.Wait()
}

// SimilaritySearch embeds the query and returns up to k nodes with score
// >= minScore, ordered by descending score.
func (s *Store) SimilaritySearch(ctx context.Context, namespace, query string, k int, minScore float64) ([]ScoredNode, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.provider.Search(ctx, namespace, queryVector, k)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "similarity search", Err: err}
	}

	scored := make([]ScoredNode, 0, len(results))
	for i := range results {
		score := float64(results[i].Score)
		if score < minScore {
			continue
		}

		node, err := nodeFromResult(&results[i])
		if err != nil {
			return nil, err
		}

		scored = append(scored, ScoredNode{Node: node, Score: score})
	}

	return scored, nil
}

// GetNodeByID looks up one node. Returns (nil, nil) when the id has no
// record; traversal treats a missing neighbor as a dead end, not a failure.
func (s *Store) GetNodeByID(ctx context.Context, namespace, id string) (*Node, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	result, err := s.provider.Fetch(ctx, namespace, id)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "fetch", Err: fmt.Errorf("node %s: %w", id, err)}
	}
	if result == nil {
		return nil, nil
	}

	return nodeFromResult(result)
}
