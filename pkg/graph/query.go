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
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Query option defaults.
const (
	DefaultInitialK      = 3
	DefaultMaxHops       = 2
	DefaultMinSimilarity = 0.6

	// fallbackWeight is used when an edge has no entry in the weight
	// map. Should not occur given build invariants.
	fallbackWeight = 0.5
)

// QueryOptions tunes graph retrieval. Zero values take the defaults.
type QueryOptions struct {
	// InitialK is the number of seed documents from similarity search.
	InitialK int

	// MaxHops bounds graph expansion depth. 0 disables expansion.
	MaxHops *int

	// MinSimilarity filters seed matches below this score.
	MinSimilarity float64
}

func (o QueryOptions) withDefaults() (initialK int, maxHops int, minSimilarity float64) {
	initialK = o.InitialK
	if initialK <= 0 {
		initialK = DefaultInitialK
	}
	maxHops = DefaultMaxHops
	if o.MaxHops != nil {
		maxHops = *o.MaxHops
	}
	minSimilarity = o.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return initialK, maxHops, minSimilarity
}

// Engine answers queries against a persisted similarity graph.
//
// Retrieval is breadth-first expansion with score decay: seeds come from
// vector similarity search at hop 0, then neighbors are discovered by
// following stored connections, multiplying the parent's score by the edge
// weight at each hop. Since weights lie in [0, 1], relevance strictly
// decreases with hop distance, biasing ranking toward directly matched and
// closely connected content.
type Engine struct {
	store *Store
}

// NewEngine creates a query engine over a graph store.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// visit tracks one discovered node during traversal.
type visit struct {
	node  *Node
	score float64
	hop   int
}

type queueItem struct {
	id  string
	hop int
}

// Query retrieves nodes relevant to the query text from a namespace.
//
// A failing seed search fails the whole query: no partial result. Failing
// or missing neighbor fetches during expansion are logged and skipped, so
// traversal is best-effort past the seed step. Results are sorted by
// descending score; ties keep BFS discovery order.
func (e *Engine) Query(ctx context.Context, namespace, query string, opts QueryOptions) ([]RetrievedNode, error) {
	ctx, span := tracer.Start(ctx, "graph.query")
	defer span.End()

	initialK, maxHops, minSimilarity := opts.withDefaults()
	if namespace == "" {
		namespace = DefaultNamespace
	}
	span.SetAttributes(
		attribute.String("namespace", namespace),
		attribute.Int("initial_k", initialK),
		attribute.Int("max_hops", maxHops),
	)

	start := time.Now()

	seeds, err := e.store.SimilaritySearch(ctx, namespace, query, initialK, minSimilarity)
	if err != nil {
		span.RecordError(err)
		queriesTotal.WithLabelValues(statusError).Inc()
		return nil, err
	}

	visited := make(map[string]*visit, len(seeds))
	order := make([]string, 0, len(seeds))
	queue := make([]queueItem, 0, len(seeds))

	for _, seed := range seeds {
		if _, ok := visited[seed.Node.ID]; ok {
			continue
		}
		visited[seed.Node.ID] = &visit{node: seed.Node, score: seed.Score, hop: 0}
		order = append(order, seed.Node.ID)
		queue = append(queue, queueItem{id: seed.Node.ID, hop: 0})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		// Terminal for this branch: never expand past maxHops.
		if item.hop >= maxHops {
			continue
		}

		parent, ok := visited[item.id]
		if !ok {
			continue
		}

		for _, connectedID := range parent.node.Connections {
			if _, seen := visited[connectedID]; seen {
				continue
			}

			neighbor, err := e.store.GetNodeByID(ctx, namespace, connectedID)
			if err != nil {
				// Best-effort expansion: a transient fetch failure
				// drops this neighbor, not the query.
				slog.Warn("Failed to fetch connected node",
					"node", connectedID,
					"namespace", namespace,
					"error", err)
				continue
			}
			if neighbor == nil {
				// Dead edge, tolerated.
				continue
			}

			weight, ok := parent.node.ConnectionWeights[connectedID]
			if !ok {
				weight = fallbackWeight
			}

			visited[connectedID] = &visit{
				node:  neighbor,
				score: parent.score * weight,
				hop:   item.hop + 1,
			}
			order = append(order, connectedID)

			if item.hop+1 < maxHops {
				queue = append(queue, queueItem{id: connectedID, hop: item.hop + 1})
			}
		}
	}

	results := make([]RetrievedNode, 0, len(visited))
	for _, id := range order {
		v := visited[id]
		results = append(results, RetrievedNode{
			ID:          v.node.ID,
			Content:     v.node.Content,
			Metadata:    v.node.Metadata,
			Score:       v.score,
			HopDistance: v.hop,
		})
	}

	// Stable keeps BFS discovery order among equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	span.SetAttributes(attribute.Int("results", len(results)))
	queriesTotal.WithLabelValues(statusOK).Inc()
	queryDuration.Observe(time.Since(start).Seconds())
	queryResults.Observe(float64(len(results)))

	return results, nil
}
