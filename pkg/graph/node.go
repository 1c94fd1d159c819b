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
	"encoding/json"
	"fmt"

	"github.com/deanmachines/agentnet/pkg/vector"
)

// Metadata keys the graph layer reserves on stored records. The vector
// store itself has no graph awareness; these are opaque payload fields.
const (
	metaKeyID          = "id"
	metaKeyContent     = "content"
	metaKeyConnections = "connections"
	metaKeyWeights     = "connectionWeights"
)

// Document is a unit of content submitted for indexing.
type Document struct {
	// ID is optional; the builder assigns one when absent.
	ID string `json:"id,omitempty"`

	// Content is the raw text.
	Content string `json:"content"`

	// Metadata holds arbitrary caller-supplied attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Node is a Document enriched with graph structure, as persisted in the
// vector store. Edges are computed only within one build batch; nodes are
// never mutated after persistence except by a full rebuild.
type Node struct {
	// ID is the stable unique identifier within a namespace.
	ID string `json:"id"`

	// Content is the document text.
	Content string `json:"content"`

	// Metadata carries the caller-supplied attributes.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Embedding is the content vector, populated at build time.
	Embedding []float32 `json:"-"`

	// Connections holds neighbor node ids. Each entry has a weight in
	// ConnectionWeights, and the relation is symmetric: if A connects
	// to B with weight w, B connects to A with weight w.
	Connections []string `json:"connections"`

	// ConnectionWeights maps neighbor id to edge weight (cosine
	// similarity, range [0,1]).
	ConnectionWeights map[string]float64 `json:"connectionWeights"`
}

// RetrievedNode wraps a Node for query results. Graph structure fields are
// stripped; callers see only content, cleaned metadata, score, and hop
// distance.
type RetrievedNode struct {
	// ID of the underlying node.
	ID string `json:"id"`

	// Content is the document text.
	Content string `json:"content"`

	// Metadata is the stored metadata minus internal graph fields.
	Metadata map[string]any `json:"metadata"`

	// Score is the relevance, decayed by hop distance.
	Score float64 `json:"score"`

	// HopDistance is the number of edge traversals from the nearest
	// initially-matched node (0 for direct matches).
	HopDistance int `json:"hopDistance"`
}

// storageMetadata flattens a node into the metadata payload stored on its
// vector record. Graph fields are JSON-encoded strings so they round-trip
// through providers that only support string metadata values.
func (n *Node) storageMetadata() (map[string]any, error) {
	connections, err := json.Marshal(n.Connections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connections for node %s: %w", n.ID, err)
	}

	weights, err := json.Marshal(n.ConnectionWeights)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connection weights for node %s: %w", n.ID, err)
	}

	metadata := make(map[string]any, len(n.Metadata)+4)
	for k, v := range n.Metadata {
		metadata[k] = v
	}
	metadata[metaKeyID] = n.ID
	metadata[metaKeyContent] = n.Content
	metadata[metaKeyConnections] = string(connections)
	metadata[metaKeyWeights] = string(weights)

	return metadata, nil
}

// nodeFromResult reconstructs a Node from a stored vector record.
func nodeFromResult(r *vector.Result) (*Node, error) {
	node := &Node{
		ID:                r.ID,
		Content:           r.Content,
		Embedding:         r.Vector,
		Connections:       []string{},
		ConnectionWeights: map[string]float64{},
		Metadata:          make(map[string]any),
	}

	for k, v := range r.Metadata {
		switch k {
		case metaKeyID:
			if id, ok := v.(string); ok && id != "" {
				node.ID = id
			}
		case metaKeyContent:
			if content, ok := v.(string); ok {
				node.Content = content
			}
		case metaKeyConnections:
			connections, err := decodeConnections(v)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", r.ID, err)
			}
			node.Connections = connections
		case metaKeyWeights:
			weights, err := decodeWeights(v)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", r.ID, err)
			}
			node.ConnectionWeights = weights
		default:
			node.Metadata[k] = v
		}
	}

	// Output parity with the stored record: id stays visible in metadata,
	// graph structure does not.
	node.Metadata[metaKeyID] = node.ID

	return node, nil
}

// decodeConnections accepts either the JSON-string form written by
// storageMetadata or a native list form from providers with typed payloads.
func decodeConnections(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		var connections []string
		if err := json.Unmarshal([]byte(val), &connections); err != nil {
			return nil, fmt.Errorf("failed to decode connections: %w", err)
		}
		return connections, nil
	case []string:
		return val, nil
	case []any:
		connections := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				connections = append(connections, s)
			}
		}
		return connections, nil
	case nil:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("unexpected connections type %T", v)
	}
}

func decodeWeights(v any) (map[string]float64, error) {
	switch val := v.(type) {
	case string:
		var weights map[string]float64
		if err := json.Unmarshal([]byte(val), &weights); err != nil {
			return nil, fmt.Errorf("failed to decode connection weights: %w", err)
		}
		if weights == nil {
			weights = map[string]float64{}
		}
		return weights, nil
	case map[string]float64:
		return val, nil
	case map[string]any:
		weights := make(map[string]float64, len(val))
		for k, item := range val {
			switch num := item.(type) {
			case float64:
				weights[k] = num
			case float32:
				weights[k] = float64(num)
			case int64:
				weights[k] = float64(num)
			}
		}
		return weights, nil
	case nil:
		return map[string]float64{}, nil
	default:
		return nil, fmt.Errorf("unexpected connection weights type %T", v)
	}
}

// EdgeCount returns the number of undirected edges across a node set.
// Each edge appears in two adjacency lists, so the sum is halved.
func EdgeCount(nodes []*Node) int {
	total := 0
	for _, node := range nodes {
		total += len(node.Connections)
	}
	return total / 2
}
