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

// Package config loads and validates the application configuration from a
// YAML file, with ${VAR} and ${VAR:-default} environment expansion.
package config

import (
	"fmt"

	"github.com/deanmachines/agentnet/pkg/agent"
	"github.com/deanmachines/agentnet/pkg/embedder"
	"github.com/deanmachines/agentnet/pkg/logger"
	"github.com/deanmachines/agentnet/pkg/memory"
	"github.com/deanmachines/agentnet/pkg/network"
	"github.com/deanmachines/agentnet/pkg/vector"
)

// Config is the root application configuration.
type Config struct {
	Logger      LoggerConfig          `yaml:"logger"`
	Server      ServerConfig          `yaml:"server"`
	Embedder    embedder.Config       `yaml:"embedder"`
	VectorStore vector.ProviderConfig `yaml:"vector_store"`
	Memory      memory.SQLiteConfig   `yaml:"memory"`
	Agents      []agent.Config        `yaml:"agents"`
	Networks    []network.Config      `yaml:"networks"`
}

// LoggerConfig configures structured logging.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SetDefaults applies defaults across all sections. A configuration without
// agents or networks gets the built-in rosters.
func (c *Config) SetDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "text"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	c.Embedder.SetDefaults()
	c.VectorStore.SetDefaults()
	c.Memory.SetDefaults()

	if len(c.Agents) == 0 {
		c.Agents = agent.DefaultConfigs()
	}
	if len(c.Networks) == 0 {
		c.Networks = network.DefaultConfigs()
	}

	for i := range c.Agents {
		c.Agents[i].SetDefaults()
	}
	for i := range c.Networks {
		c.Networks[i].SetDefaults()
	}
}

// Validate checks all sections. Call SetDefaults first.
func (c *Config) Validate() error {
	switch c.Logger.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logger: invalid level '%s' (valid: debug, info, warn, error)", c.Logger.Level)
	}
	switch logger.Format(c.Logger.Format) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("logger: invalid format '%s' (valid: text, json)", c.Logger.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}

	if err := c.Embedder.Validate(); err != nil {
		return fmt.Errorf("embedder: %w", err)
	}
	if err := c.VectorStore.Validate(); err != nil {
		return fmt.Errorf("vector_store: %w", err)
	}
	if err := c.Memory.Validate(); err != nil {
		return fmt.Errorf("memory: %w", err)
	}

	agentIDs := make(map[string]bool, len(c.Agents))
	for i := range c.Agents {
		if err := c.Agents[i].Validate(); err != nil {
			return err
		}
		if agentIDs[c.Agents[i].ID] {
			return fmt.Errorf("duplicate agent id '%s'", c.Agents[i].ID)
		}
		agentIDs[c.Agents[i].ID] = true
	}

	networkIDs := make(map[string]bool, len(c.Networks))
	for i := range c.Networks {
		if err := c.Networks[i].Validate(); err != nil {
			return err
		}
		if networkIDs[c.Networks[i].ID] {
			return fmt.Errorf("duplicate network id '%s'", c.Networks[i].ID)
		}
		networkIDs[c.Networks[i].ID] = true
		for _, agentID := range c.Networks[i].AgentIDs {
			if !agentIDs[agentID] {
				return fmt.Errorf("network '%s' references unknown agent '%s'", c.Networks[i].ID, agentID)
			}
		}
	}

	return nil
}

// Default returns a ready-to-use configuration without a file: built-in
// agents and networks over a local chromem store.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}
