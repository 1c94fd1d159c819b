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

package vector

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeConfig configures the Pinecone vector provider.
type PineconeConfig struct {
	// APIKey is required for Pinecone authentication.
	APIKey string `yaml:"api_key"`

	// Host is the Pinecone API host (optional, defaults to https://api.pinecone.io).
	Host string `yaml:"host,omitempty"`

	// IndexName is the Pinecone index holding all collections. Collections
	// map to Pinecone namespaces within this index.
	IndexName string `yaml:"index_name"`
}

// PineconeProvider implements Provider using the Pinecone managed vector
// database. Unlike Qdrant, Pinecone indexes are heavyweight, so one index
// is shared and the Provider's collection argument selects the namespace.
type PineconeProvider struct {
	client    *pinecone.Client
	config    PineconeConfig
	indexName string
}

// NewPineconeProvider creates a new Pinecone provider.
func NewPineconeProvider(cfg PineconeConfig) (*PineconeProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Pinecone")
	}

	clientParams := pinecone.NewClientParams{
		ApiKey: cfg.APIKey,
	}
	if cfg.Host != "" {
		clientParams.Host = cfg.Host
	}

	client, err := pinecone.NewClient(clientParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	indexName := cfg.IndexName
	if indexName == "" {
		indexName = "agentnet-index"
	}

	return &PineconeProvider{
		client:    client,
		config:    cfg,
		indexName: indexName,
	}, nil
}

// Name returns the provider name.
func (p *PineconeProvider) Name() string {
	return "pinecone"
}

// getIndexConnection opens an IndexConnection scoped to a namespace.
func (p *PineconeProvider) getIndexConnection(ctx context.Context, namespace string) (*pinecone.IndexConnection, error) {
	index, err := p.client.DescribeIndex(ctx, p.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %s: %w", p.indexName, err)
	}

	indexConn, err := p.client.Index(pinecone.NewIndexConnParams{
		Host:      index.Host,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return indexConn, nil
}

// Upsert adds or updates a document with its vector.
func (p *PineconeProvider) Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error {
	indexConn, err := p.getIndexConnection(ctx, collection)
	if err != nil {
		return err
	}
	defer indexConn.Close()

	var pineconeMetadata *pinecone.Metadata
	if len(metadata) > 0 {
		pineconeMetadata, err = structpb.NewStruct(metadata)
		if err != nil {
			return fmt.Errorf("failed to convert metadata: %w", err)
		}
	}

	pineconeVector := &pinecone.Vector{
		Id:       id,
		Values:   vector,
		Metadata: pineconeMetadata,
	}

	_, err = indexConn.UpsertVectors(ctx, []*pinecone.Vector{pineconeVector})
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	return nil
}

// Search finds the most similar vectors.
func (p *PineconeProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error) {
	return p.SearchWithFilter(ctx, collection, vector, topK, nil)
}

// SearchWithFilter combines vector similarity with metadata filtering.
func (p *PineconeProvider) SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error) {
	indexConn, err := p.getIndexConnection(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer indexConn.Close()

	var metadataFilter *pinecone.MetadataFilter
	if len(filter) > 0 {
		metadataFilter, err = structpb.NewStruct(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to convert filter: %w", err)
		}
	}

	queryResponse, err := indexConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		MetadataFilter:  metadataFilter,
		IncludeMetadata: true,
		IncludeValues:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query Pinecone: %w", err)
	}

	results := make([]Result, 0, len(queryResponse.Matches))
	for _, scoredVector := range queryResponse.Matches {
		if scoredVector.Vector == nil {
			continue
		}
		result := pineconeVectorToResult(scoredVector.Vector)
		result.Score = scoredVector.Score
		results = append(results, result)
	}

	return results, nil
}

// Fetch looks up a single vector by id. Returns (nil, nil) when absent.
func (p *PineconeProvider) Fetch(ctx context.Context, collection string, id string) (*Result, error) {
	indexConn, err := p.getIndexConnection(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer indexConn.Close()

	resp, err := indexConn.FetchVectors(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vector %s: %w", id, err)
	}

	v, ok := resp.Vectors[id]
	if !ok || v == nil {
		return nil, nil
	}

	result := pineconeVectorToResult(v)
	return &result, nil
}

// Delete removes a document by ID.
func (p *PineconeProvider) Delete(ctx context.Context, collection string, id string) error {
	indexConn, err := p.getIndexConnection(ctx, collection)
	if err != nil {
		return err
	}
	defer indexConn.Close()

	if err := indexConn.DeleteVectorsById(ctx, []string{id}); err != nil {
		return fmt.Errorf("failed to delete vector: %w", err)
	}

	return nil
}

// CreateCollection checks that the shared index exists. Namespaces are
// created implicitly on first upsert; indexes must be created out of band.
func (p *PineconeProvider) CreateCollection(ctx context.Context, collection string, vectorDimension int) error {
	indexes, err := p.client.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	for _, idx := range indexes {
		if idx.Name == p.indexName {
			return nil
		}
	}

	return fmt.Errorf("index %s does not exist, create it via the Pinecone console or API", p.indexName)
}

// DeleteCollection removes all vectors in a namespace.
func (p *PineconeProvider) DeleteCollection(ctx context.Context, collection string) error {
	indexConn, err := p.getIndexConnection(ctx, collection)
	if err != nil {
		return err
	}
	defer indexConn.Close()

	if err := indexConn.DeleteAllVectorsInNamespace(ctx); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", collection, err)
	}
	return nil
}

// Close closes the Pinecone client.
func (p *PineconeProvider) Close() error {
	// The Pinecone client has no explicit close
	return nil
}

func pineconeVectorToResult(v *pinecone.Vector) Result {
	metadata := make(map[string]any)
	if v.Metadata != nil {
		for k, val := range v.Metadata.AsMap() {
			metadata[k] = val
		}
	}

	return Result{
		ID:       v.Id,
		Content:  contentFromMetadata(metadata),
		Vector:   v.Values,
		Metadata: metadata,
	}
}

// Ensure PineconeProvider implements Provider.
var _ Provider = (*PineconeProvider)(nil)
