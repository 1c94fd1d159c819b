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
	"sort"
	"sync"

	"github.com/deanmachines/agentnet/pkg/vector"
)

// fakeEmbedder returns canned vectors per text. Unknown texts fail.
type fakeEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func newFakeEmbedder(vectors map[string][]float32) *fakeEmbedder {
	dim := 0
	for _, v := range vectors {
		dim = len(v)
		break
	}
	return &fakeEmbedder{vectors: vectors, dim: dim}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Model() string  { return "fake" }
func (f *fakeEmbedder) Close() error   { return nil }

// fakeProvider is an in-memory vector.Provider with exact cosine search.
type fakeProvider struct {
	mu      sync.RWMutex
	records map[string]map[string]vector.Result

	// failSearch and failFetch force errors for fault-path tests.
	failSearch bool
	failFetch  map[string]bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		records:   make(map[string]map[string]vector.Result),
		failFetch: make(map[string]bool),
	}
}

func (p *fakeProvider) Upsert(_ context.Context, collection, id string, vec []float32, metadata map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.records[collection] == nil {
		p.records[collection] = make(map[string]vector.Result)
	}
	content, _ := metadata["content"].(string)
	p.records[collection][id] = vector.Result{
		ID:       id,
		Content:  content,
		Vector:   vec,
		Metadata: metadata,
	}
	return nil
}

func (p *fakeProvider) Search(_ context.Context, collection string, vec []float32, topK int) ([]vector.Result, error) {
	if p.failSearch {
		return nil, fmt.Errorf("search unavailable")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	results := make([]vector.Result, 0, len(p.records[collection]))
	for _, r := range p.records[collection] {
		score, err := CosineSimilarity(vec, r.Vector)
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

func (p *fakeProvider) SearchWithFilter(ctx context.Context, collection string, vec []float32, topK int, _ map[string]any) ([]vector.Result, error) {
	return p.Search(ctx, collection, vec, topK)
}

func (p *fakeProvider) Fetch(_ context.Context, collection, id string) (*vector.Result, error) {
	if p.failFetch[id] {
		return nil, fmt.Errorf("fetch unavailable")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.records[collection][id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (p *fakeProvider) Delete(_ context.Context, collection, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.records[collection], id)
	return nil
}

func (p *fakeProvider) CreateCollection(_ context.Context, _ string, _ int) error { return nil }

func (p *fakeProvider) DeleteCollection(_ context.Context, collection string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.records, collection)
	return nil
}

func (p *fakeProvider) Name() string { return "fake" }
func (p *fakeProvider) Close() error { return nil }

var _ vector.Provider = (*fakeProvider)(nil)

func intPtr(v int) *int { return &v }
