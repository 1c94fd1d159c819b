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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAndUpsert(t *testing.T, provider *fakeProvider, emb *fakeEmbedder, namespace string, docs []Document, threshold float64) []*Node {
	t.Helper()

	builder := NewBuilder(emb)
	store := NewStore(provider, emb)

	nodes, err := builder.Build(context.Background(), docs, threshold)
	require.NoError(t, err)
	require.NoError(t, store.UpsertNodes(context.Background(), namespace, nodes))
	return nodes
}

func TestStore_UpsertAndFetch(t *testing.T) {
	provider := newFakeProvider()
	emb := similarPairEmbedder()
	store := NewStore(provider, emb)

	nodes := buildAndUpsert(t, provider, emb, "test", []Document{
		{ID: "a", Content: "doc a"},
		{ID: "b", Content: "doc b"},
	}, 0.5)
	require.Len(t, nodes, 2)

	got, err := store.GetNodeByID(context.Background(), "test", "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "doc a", got.Content)
	assert.Equal(t, []string{"b"}, got.Connections)
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	provider := newFakeProvider()
	emb := similarPairEmbedder()
	store := NewStore(provider, emb)

	docs := []Document{{ID: "a", Content: "doc a"}}
	buildAndUpsert(t, provider, emb, "test", docs, 0.5)
	buildAndUpsert(t, provider, emb, "test", docs, 0.5)

	results, err := store.SimilaritySearch(context.Background(), "test", "doc a", 10, 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestStore_UpsertRejectsMissingEmbedding(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, similarPairEmbedder())

	err := store.UpsertNodes(context.Background(), "test", []*Node{
		{ID: "bare", Content: "no embedding"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no embedding")
}

func TestStore_SimilaritySearchFiltersByScore(t *testing.T) {
	provider := newFakeProvider()
	emb := similarPairEmbedder()
	store := NewStore(provider, emb)

	buildAndUpsert(t, provider, emb, "test", []Document{
		{ID: "a", Content: "doc a"},
		{ID: "c", Content: "doc c"},
	}, 0.9)

	// "doc a" matches itself perfectly; "doc c" is orthogonal.
	results, err := store.SimilaritySearch(context.Background(), "test", "doc a", 10, 0.6)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Node.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestStore_GetNodeByID_MissingIsNil(t *testing.T) {
	store := NewStore(newFakeProvider(), similarPairEmbedder())

	got, err := store.GetNodeByID(context.Background(), "test", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SearchErrorIsStoreUnavailable(t *testing.T) {
	provider := newFakeProvider()
	provider.failSearch = true
	store := NewStore(provider, similarPairEmbedder())

	_, err := store.SimilaritySearch(context.Background(), "test", "doc a", 3, 0)
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}
