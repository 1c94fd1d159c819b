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

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deanmachines/agentnet/pkg/config"
	"github.com/deanmachines/agentnet/pkg/graph"
	"github.com/deanmachines/agentnet/pkg/runtime"
	"github.com/deanmachines/agentnet/pkg/server"
)

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Port int `help:"Port to listen on (overrides config)." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	rt, err := runtime.New(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := server.New(server.Options{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Agents:   rt.Agents,
		Networks: rt.Networks,
		Tools:    rt.Tools,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	return srv.Start()
}

// ValidateCmd validates a configuration file.
type ValidateCmd struct {
	Show bool `help:"Print the effective configuration after defaults are applied."`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	if cli.Config == "" {
		return fmt.Errorf("--config is required for validate")
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	fmt.Printf("Configuration valid: %d agents, %d networks\n", len(cfg.Agents), len(cfg.Networks))

	if c.Show {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		fmt.Println(string(out))
	}
	return nil
}

// IndexCmd builds a knowledge graph from document files, or from stdin
// when no files are given (one document per run).
type IndexCmd struct {
	Namespace string   `help:"Graph namespace." default:"graph-rag"`
	Threshold float64  `help:"Similarity threshold for edges." default:"0.7"`
	Files     []string `arg:"" optional:"" help:"Document files to index. Reads stdin when omitted." type:"existingfile"`
}

func (c *IndexCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	rt, err := runtime.New(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	docs := make([]graph.Document, 0, len(c.Files))
	for _, path := range c.Files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, graph.Document{
			Content: string(content),
			Metadata: map[string]any{
				"source": filepath.Base(path),
			},
		})
	}
	if len(docs) == 0 {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(content) == 0 {
			return fmt.Errorf("no documents to index")
		}
		docs = append(docs, graph.Document{
			Content:  string(content),
			Metadata: map[string]any{"source": "stdin"},
		})
	}

	ctx := context.Background()
	nodes, err := rt.Builder.Build(ctx, docs, c.Threshold)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	if err := rt.Store.UpsertNodes(ctx, c.Namespace, nodes); err != nil {
		return fmt.Errorf("failed to store graph: %w", err)
	}

	fmt.Printf("Indexed %d documents into '%s' (%d edges)\n",
		len(nodes), c.Namespace, graph.EdgeCount(nodes))
	return nil
}

// QueryCmd queries a knowledge graph.
type QueryCmd struct {
	Namespace     string  `help:"Graph namespace." default:"graph-rag"`
	TopK          int     `help:"Number of seed documents." default:"3"`
	MaxHops       int     `help:"Maximum graph traversal depth." default:"2"`
	MinSimilarity float64 `help:"Minimum seed similarity." default:"0.6"`
	Query         string  `arg:"" help:"Query text."`
}

func (c *QueryCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	rt, err := runtime.New(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.Engine.Query(context.Background(), c.Namespace, c.Query, graph.QueryOptions{
		InitialK:      c.TopK,
		MaxHops:       &c.MaxHops,
		MinSimilarity: c.MinSimilarity,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.Score, r.Content)
	}
	return nil
}
