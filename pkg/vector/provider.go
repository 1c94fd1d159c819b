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

// Package vector provides vector database providers behind a uniform
// interface. Providers store pre-computed embeddings; embedding generation
// happens externally via the embedder package.
package vector

import "context"

// Provider is the interface all vector database providers implement.
//
// A collection is a logical partition of the store (callers may call it a
// namespace). Metadata values are stored opaquely; providers that only
// support string metadata stringify values on write.
type Provider interface {
	// Upsert adds or updates a document with its vector embedding.
	// Idempotent on id: writing the same id twice overwrites.
	Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error

	// Search finds the topK most similar vectors in a collection.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)

	// SearchWithFilter combines vector similarity with metadata filtering.
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)

	// Fetch looks up a single document by id.
	// Returns (nil, nil) when the id does not exist.
	Fetch(ctx context.Context, collection string, id string) (*Result, error)

	// Delete removes a document from a collection by id.
	Delete(ctx context.Context, collection string, id string) error

	// CreateCollection creates a collection with the given vector dimension.
	// Providers that create collections implicitly treat this as a no-op.
	CreateCollection(ctx context.Context, collection string, vectorDimension int) error

	// DeleteCollection removes a collection and all its documents.
	DeleteCollection(ctx context.Context, collection string) error

	// Name returns the provider name.
	Name() string

	// Close releases resources held by the provider.
	Close() error
}

// Result is a single document returned by a provider.
type Result struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Content  string         `json:"content"`
	Vector   []float32      `json:"vector,omitempty"`
	Metadata map[string]any `json:"metadata"`
}
