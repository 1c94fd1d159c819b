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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deanmachines/agentnet/pkg/vector"
)

func TestNode_StorageMetadataRoundTrip(t *testing.T) {
	node := &Node{
		ID:      "node-1",
		Content: "hello world",
		Metadata: map[string]any{
			"source": "test.txt",
		},
		Embedding:         []float32{1, 0},
		Connections:       []string{"node-2", "node-3"},
		ConnectionWeights: map[string]float64{"node-2": 0.9, "node-3": 0.72},
	}

	metadata, err := node.storageMetadata()
	require.NoError(t, err)

	// Graph fields are stored as JSON strings so string-only providers
	// can round-trip them.
	assert.IsType(t, "", metadata[metaKeyConnections])
	assert.IsType(t, "", metadata[metaKeyWeights])
	assert.Equal(t, "node-1", metadata[metaKeyID])
	assert.Equal(t, "hello world", metadata[metaKeyContent])
	assert.Equal(t, "test.txt", metadata["source"])

	restored, err := nodeFromResult(&vector.Result{
		ID:       "node-1",
		Content:  "hello world",
		Vector:   []float32{1, 0},
		Metadata: metadata,
	})
	require.NoError(t, err)

	assert.Equal(t, node.ID, restored.ID)
	assert.Equal(t, node.Content, restored.Content)
	assert.Equal(t, node.Connections, restored.Connections)
	assert.Equal(t, node.ConnectionWeights, restored.ConnectionWeights)
}

func TestNodeFromResult_StripsGraphFields(t *testing.T) {
	node := &Node{
		ID:                "node-1",
		Content:           "content",
		Metadata:          map[string]any{"topic": "go"},
		Connections:       []string{"node-2"},
		ConnectionWeights: map[string]float64{"node-2": 0.8},
	}

	metadata, err := node.storageMetadata()
	require.NoError(t, err)

	restored, err := nodeFromResult(&vector.Result{ID: "node-1", Metadata: metadata})
	require.NoError(t, err)

	// Caller-visible metadata keeps the id and user attributes, never the
	// adjacency structure.
	assert.Equal(t, "node-1", restored.Metadata[metaKeyID])
	assert.Equal(t, "go", restored.Metadata["topic"])
	assert.NotContains(t, restored.Metadata, metaKeyConnections)
	assert.NotContains(t, restored.Metadata, metaKeyWeights)
	assert.NotContains(t, restored.Metadata, metaKeyContent)
}

func TestNodeFromResult_NativeListForms(t *testing.T) {
	// Providers with typed payloads return lists and maps directly.
	restored, err := nodeFromResult(&vector.Result{
		ID: "node-1",
		Metadata: map[string]any{
			metaKeyConnections: []any{"node-2", "node-3"},
			metaKeyWeights:     map[string]any{"node-2": 0.5, "node-3": 0.25},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"node-2", "node-3"}, restored.Connections)
	assert.Equal(t, map[string]float64{"node-2": 0.5, "node-3": 0.25}, restored.ConnectionWeights)
}

func TestNodeFromResult_MissingGraphFields(t *testing.T) {
	restored, err := nodeFromResult(&vector.Result{
		ID:       "node-1",
		Content:  "plain record",
		Metadata: map[string]any{},
	})
	require.NoError(t, err)
	assert.Empty(t, restored.Connections)
	assert.Empty(t, restored.ConnectionWeights)
}

func TestEdgeCount(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*Node
		want  int
	}{
		{"no nodes", nil, 0},
		{
			"one undirected edge",
			[]*Node{
				{ID: "a", Connections: []string{"b"}},
				{ID: "b", Connections: []string{"a"}},
			},
			1,
		},
		{
			"triangle",
			[]*Node{
				{ID: "a", Connections: []string{"b", "c"}},
				{ID: "b", Connections: []string{"a", "c"}},
				{ID: "c", Connections: []string{"a", "b"}},
			},
			3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EdgeCount(tt.nodes))
		})
	}
}
