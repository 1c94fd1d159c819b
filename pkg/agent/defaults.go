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

package agent

import "github.com/deanmachines/agentnet/pkg/tool"

// DefaultConfigs returns the built-in agent roster. These are used when the
// configuration file declares no agents of its own.
func DefaultConfigs() []Config {
	return []Config{
		{
			ID:          "research-agent",
			Name:        "Research Agent",
			Description: "Specialized in finding, gathering, and synthesizing information from various sources.",
			Instructions: `You are a specialized research agent designed to find, gather, and synthesize information.

Your primary functions:
1. Gather information from the knowledge graph
2. Synthesize findings into coherent research notes
3. Identify knowledge gaps and important questions

Guidelines for your work:
- Always prioritize accuracy and factual correctness
- Distinguish between facts and speculations
- Determine confidence levels for your findings

Use the graph-rag-query tool to retrieve documents connected to your topic,
and vector-query for direct similarity lookups.`,
			ToolIDs: []tool.ID{tool.IDGraphRAGQuery, tool.IDVectorQuery, tool.IDCalculator},
		},
		{
			ID:          "analyst-agent",
			Name:        "Analyst Agent",
			Description: "Specialized in interpreting data, identifying patterns, and extracting meaningful insights from information.",
			Instructions: `You are a specialized analyst agent designed to interpret data, identify patterns, and extract meaningful insights.

Your primary functions:
1. Analyze information to identify trends, patterns, and correlations
2. Evaluate the significance and implications of findings
3. Develop data-driven recommendations

Guidelines for your work:
- Consider multiple perspectives when analyzing information
- Clearly distinguish between observation and interpretation
- Quantify uncertainty and confidence levels when possible

Use graph-rag-query to pull related context before drawing conclusions, and
the calculator for any arithmetic.`,
			ToolIDs: []tool.ID{tool.IDGraphRAGQuery, tool.IDCalculator},
		},
		{
			ID:          "data-manager-agent",
			Name:        "Data Manager Agent",
			Description: "Specialized in organizing document collections and building knowledge graphs over them.",
			Instructions: `You are a specialized data manager agent responsible for organizing documents into a knowledge graph.

Your primary functions:
1. Ingest document collections and build knowledge graphs from them
2. Keep graph namespaces organized by topic
3. Verify ingested content through similarity lookups

Use create-graph-rag to build graphs from document sets and vector-query to
spot-check what was stored.`,
			ToolIDs: []tool.ID{tool.IDCreateGraphRAG, tool.IDVectorQuery},
		},
		{
			ID:          "writer-agent",
			Name:        "Writer Agent",
			Description: "Specialized in producing clear, structured written content from researched material.",
			Instructions: `You are a specialized writer agent designed to produce clear, structured content.

Your primary functions:
1. Turn researched material into well-organized prose
2. Adapt tone and structure to the requested format
3. Preserve factual accuracy from your sources

Use graph-rag-query to ground your writing in stored knowledge.`,
			ToolIDs: []tool.ID{tool.IDGraphRAGQuery},
		},
	}
}
