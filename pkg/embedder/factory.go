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
	"fmt"
	"os"
)

// ProviderType identifies an embedding provider implementation.
type ProviderType string

const (
	// ProviderOpenAI uses the OpenAI embeddings API.
	ProviderOpenAI ProviderType = "openai"

	// ProviderGoogle uses Google Gemini embeddings via the genai SDK.
	ProviderGoogle ProviderType = "google"
)

// Config is the configuration for creating embedders.
type Config struct {
	// Type identifies which provider to create.
	Type ProviderType `yaml:"type"`

	// OpenAI configuration (used when Type == "openai").
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`

	// Google configuration (used when Type == "google").
	Google *GoogleConfig `yaml:"google,omitempty"`
}

// SetDefaults applies default values. Missing API keys fall back to the
// provider's conventional environment variable.
func (c *Config) SetDefaults() {
	if c.Type == "" {
		c.Type = ProviderGoogle
	}
	switch c.Type {
	case ProviderGoogle:
		if c.Google == nil {
			c.Google = &GoogleConfig{}
		}
		if c.Google.APIKey == "" {
			c.Google.APIKey = os.Getenv("GEMINI_API_KEY")
		}
		if c.Google.APIKey == "" {
			c.Google.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAI == nil {
			c.OpenAI = &OpenAIConfig{}
		}
		if c.OpenAI.APIKey == "" {
			c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Type {
	case ProviderOpenAI:
		if c.OpenAI == nil || c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai api_key is required")
		}
		return nil
	case ProviderGoogle:
		if c.Google == nil || c.Google.APIKey == "" {
			return fmt.Errorf("google api_key is required")
		}
		return nil
	case "":
		return fmt.Errorf("embedder type is required")
	default:
		return fmt.Errorf("unknown embedder type: %q", c.Type)
	}
}

// New creates an embedder from configuration.
func New(cfg *Config) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embedder configuration is required")
	}

	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai configuration is required")
		}
		return NewOpenAIEmbedder(*cfg.OpenAI)

	case ProviderGoogle:
		if cfg.Google == nil {
			return nil, fmt.Errorf("google configuration is required")
		}
		return NewGoogleEmbedder(*cfg.Google)

	default:
		return nil, fmt.Errorf("unknown embedder type: %q", cfg.Type)
	}
}
