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

package querytool

import (
	"context"
	"fmt"
	"sort"
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

func (s *stubEmbedder) Dimension() int { return 2 }
func (s *stubEmbedder) Model() string  { return "stub" }
func (s *stubEmbedder) Close() error   { return nil }

type stubProvider struct {
	records    map[string]vector.Result
	failSearch bool
}

func (p *stubProvider) Upsert(_ context.Context, _ string, id string, vec []float32, metadata map[string]any) error {
	content, _ := metadata["content"].(string)
	p.records[id] = vector.Result{ID: id, Content: content, Vector: vec, Metadata: metadata}
	return nil
}

func (p *stubProvider) Search(_ context.Context, _ string, vec []float32, topK int) ([]vector.Result, error) {
	if p.failSearch {
		return nil, fmt.Errorf("search unavailable")
	}
	results := make([]vector.Result, 0, len(p.records))
	for _, r := range p.records {
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

func (p *stubProvider) Fetch(_ context.Context, _ string, id string) (*vector.Result, error) {
	r, ok := p.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (p *stubProvider) Delete(_ context.Context, _ string, id string) error {
	delete(p.records, id)
	return nil
}

func (p *stubProvider) CreateCollection(_ context.Context, _ string, _ int) error { return nil }
func (p *stubProvider) DeleteCollection(_ context.Context, _ string) error       { return nil }
func (p *stubProvider) Name() string                                             { return "stub" }
func (p *stubProvider) Close() error                                             { return nil }

func testStore(t *testing.T, provider *stubProvider) *graph.Store {
	t.Helper()

	emb := &stubEmbedder{vectors: map[string][]float32{
		"close":    {1, 0},
		"far":      {0, 1},
		"the blue query": {1, 0.1},
	}}
	store := graph.NewStore(provider, emb)

	builder := graph.NewBuilder(emb)
	nodes, err := builder.Build(context.Background(), []graph.Document{
		{ID: "close", Content: "close"},
		{ID: "far", Content: "far"},
	}, 0.99)
	require.NoError(t, err)
	require.NoError(t, store.UpsertNodes(context.Background(), "test", nodes))

	return store
}

func TestVectorQueryTool(t *testing.T) {
	provider := &stubProvider{records: make(map[string]vector.Result)}
	store := testStore(t, provider)

	queryTool, err := New(store)
	require.NoError(t, err)
	assert.Equal(t, tool.IDVectorQuery, queryTool.ID())

	result, err := queryTool.Call(context.Background(), map[string]any{
		"query":     "the blue query",
		"namespace": "test",
		"minScore":  0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result["count"])
	docs, ok := result["documents"].([]document)
	require.True(t, ok)
	require.Len(t, docs, 1)
	assert.Equal(t, "close", docs[0].Content)
	assert.Greater(t, docs[0].Score, 0.5)
	assert.NotContains(t, result, "error")
}

func TestVectorQueryTool_FailSoft(t *testing.T) {
	provider := &stubProvider{records: make(map[string]vector.Result), failSearch: true}
	store := testStore(t, provider)

	queryTool, err := New(store)
	require.NoError(t, err)

	result, err := queryTool.Call(context.Background(), map[string]any{
		"query": "the blue query",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result["count"])
	assert.NotEmpty(t, result["error"])
}
