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

package embedder

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GoogleConfig configures the Google Gemini embedder.
type GoogleConfig struct {
	// APIKey is required.
	APIKey string `yaml:"api_key"`

	// Model defaults to text-embedding-004.
	Model string `yaml:"model,omitempty"`

	// Dimension overrides the model's default output dimension.
	Dimension int `yaml:"dimension,omitempty"`
}

// GoogleEmbedder implements Embedder using the official genai SDK.
type GoogleEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGoogleEmbedder creates a Gemini embedder from configuration.
func NewGoogleEmbedder(cfg GoogleConfig) (*GoogleEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Google embedder")
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = 768
	}

	// Constructors shouldn't require context.
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GoogleEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

// Embed converts a single text to a vector embedding.
func (e *GoogleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch converts multiple texts in one API call.
func (e *GoogleEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(e.dimension)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "google", Err: err}
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, &ProviderError{
			Provider: "google",
			Err:      fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings)),
		}
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, &ProviderError{
				Provider: "google",
				Err:      fmt.Errorf("missing embedding at index %d", i),
			}
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (e *GoogleEmbedder) Dimension() int {
	return e.dimension
}

// Model returns the model name.
func (e *GoogleEmbedder) Model() string {
	return e.model
}

// Close releases resources.
func (e *GoogleEmbedder) Close() error {
	return nil
}

// Ensure GoogleEmbedder implements Embedder.
var _ Embedder = (*GoogleEmbedder)(nil)
