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

package graphtool

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deanmachines/agentnet/pkg/graph"
	"github.com/deanmachines/agentnet/pkg/tool"
	"github.com/deanmachines/agentnet/pkg/vector"
)

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return 3 }
func (s *stubEmbedder) Model() string  { return "stub" }
func (s *stubEmbedder) Close() error   { return nil }

type stubProvider struct {
	records    map[string]map[string]vector.Result
	failSearch bool
}

func newStubProvider() *stubProvider {
	return &stubProvider{records: make(map[string]map[string]vector.Result)}
}

func (p *stubProvider) Upsert(_ context.Context, collection, id string, vec []float32, metadata map[string]any) error {
	if p.records[collection] == nil {
		p.records[collection] = make(map[string]vector.Result)
	}
	content, _ := metadata["content"].(string)
	p.records[collection][id] = vector.Result{ID: id, Content: content, Vector: vec, Metadata: metadata}
	return nil
}

func (p *stubProvider) Search(_ context.Context, collection string, vec []float32, topK int) ([]vector.Result, error) {
	if p.failSearch {
		return nil, fmt.Errorf("search unavailable")
	}
	results := make([]vector.Result, 0, len(p.records[collection]))
	for _, r := range p.records[collection] {
		score, err := graph.CosineSimilarity(vec, r.Vector)
		if err != nil {
			return nil, err
		}
		r.Score = float32(score)
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (p *stubProvider) SearchWithFilter(ctx context.Context, collection string, vec []float32, topK int, _ map[string]any) ([]vector.Result, error) {
	return p.Search(ctx, collection, vec, topK)
}

func (p *stubProvider) Fetch(_ context.Context, collection, id string) (*vector.Result, error) {
	r, ok := p.records[collection][id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (p *stubProvider) Delete(_ context.Context, collection, id string) error {
	delete(p.records[collection], id)
	return nil
}

func (p *stubProvider) CreateCollection(_ context.Context, _ string, _ int) error  { return nil }
func (p *stubProvider) DeleteCollection(_ context.Context, collection string) error {
	delete(p.records, collection)
	return nil
}
func (p *stubProvider) Name() string { return "stub" }
func (p *stubProvider) Close() error { return nil }

func testComponents(provider *stubProvider) (*graph.Builder, *graph.Store, *graph.Engine) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"go concurrency":  {1, 0.1, 0},
		"go channels":     {1, 0.2, 0},
		"french pastries": {0, 0, 1},
	}}
	builder := graph.NewBuilder(emb)
	store := graph.NewStore(provider, emb)
	engine := graph.NewEngine(store)
	return builder, store, engine
}

func TestCreateTool_Success(t *testing.T) {
	builder, store, _ := testComponents(newStubProvider())
	createTool, err := NewCreateTool(builder, store)
	require.NoError(t, err)

	assert.Equal(t, tool.IDCreateGraphRAG, createTool.ID())

	result, err := createTool.Call(context.Background(), map[string]any{
		"documents": []any{
			map[string]any{"content": "go concurrency"},
			map[string]any{"content": "go channels"},
			map[string]any{"content": "french pastries"},
		},
		"namespace": "test",
	})
	require.NoError(t, err)

	assert.Equal(t, true, result["success"])
	assert.Equal(t, 3, result["nodeCount"])
	assert.Equal(t, 1, result["edgeCount"])

	graphID, ok := result["graphId"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(graphID, "graph-"), "graphId: %s", graphID)
	assert.NotContains(t, result, "error")
}

func TestCreateTool_CustomThreshold(t *testing.T) {
	builder, store, _ := testComponents(newStubProvider())
	createTool, err := NewCreateTool(builder, store)
	require.NoError(t, err)

	// Threshold 0 connects every pair.
	result, err := createTool.Call(context.Background(), map[string]any{
		"documents": []any{
			map[string]any{"content": "go concurrency"},
			map[string]any{"content": "go channels"},
			map[string]any{"content": "french pastries"},
		},
		"similarityThreshold": 0.0,
	})
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, 3, result["edgeCount"])
}

func TestCreateTool_FailureIsStructured(t *testing.T) {
	builder, store, _ := testComponents(newStubProvider())
	createTool, err := NewCreateTool(builder, store)
	require.NoError(t, err)

	// The embedder has no vector for this content.
	result, err := createTool.Call(context.Background(), map[string]any{
		"documents": []any{
			map[string]any{"content": "unembeddable"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, false, result["success"])
	assert.Equal(t, 0, result["nodeCount"])
	assert.Equal(t, 0, result["edgeCount"])
	assert.NotEmpty(t, result["error"])
	assert.NotContains(t, result, "graphId")
}

func TestCreateTool_MissingDocuments(t *testing.T) {
	builder, store, _ := testComponents(newStubProvider())
	createTool, err := NewCreateTool(builder, store)
	require.NoError(t, err)

	result, err := createTool.Call(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, 0, result["nodeCount"])
	assert.Equal(t, 0, result["edgeCount"])
}

func TestQueryTool_EndToEnd(t *testing.T) {
	provider := newStubProvider()
	builder, store, engine := testComponents(provider)

	createTool, err := NewCreateTool(builder, store)
	require.NoError(t, err)
	queryTool, err := NewQueryTool(engine)
	require.NoError(t, err)

	_, err = createTool.Call(context.Background(), map[string]any{
		"documents": []any{
			map[string]any{"content": "go concurrency"},
			map[string]any{"content": "go channels"},
			map[string]any{"content": "french pastries"},
		},
		"namespace": "test",
	})
	require.NoError(t, err)

	result, err := queryTool.Call(context.Background(), map[string]any{
		"query":     "go concurrency",
		"namespace": "test",
	})
	require.NoError(t, err)

	docs, ok := result["documents"].([]graph.RetrievedNode)
	require.True(t, ok)
	assert.Equal(t, len(docs), result["count"])
	require.NotEmpty(t, docs)

	// The exact match seeds at hop 0; its neighbor arrives via the edge.
	assert.Equal(t, "go concurrency", docs[0].Content)
	assert.Equal(t, 0, docs[0].HopDistance)
	assert.NotContains(t, result, "error")
}

func TestQueryTool_FailSoftOnStoreError(t *testing.T) {
	provider := newStubProvider()
	provider.failSearch = true
	_, _, engine := testComponents(provider)

	queryTool, err := NewQueryTool(engine)
	require.NoError(t, err)

	result, err := queryTool.Call(context.Background(), map[string]any{
		"query": "go concurrency",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result["count"])
	assert.Empty(t, result["documents"])
	assert.NotEmpty(t, result["error"])
}
