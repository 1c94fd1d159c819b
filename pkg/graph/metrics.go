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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/deanmachines/agentnet/pkg/graph"

// tracer is resolved once; the global provider may be a no-op.
var tracer trace.Tracer = otel.Tracer(tracerName)

const (
	statusOK    = "ok"
	statusError = "error"
)

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentnet",
		Subsystem: "graph",
		Name:      "builds_total",
		Help:      "Graph build operations by status.",
	}, []string{"status"})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentnet",
		Subsystem: "graph",
		Name:      "build_duration_seconds",
		Help:      "Duration of graph builds, including the batch embedding call.",
		Buckets:   prometheus.DefBuckets,
	})

	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentnet",
		Subsystem: "graph",
		Name:      "queries_total",
		Help:      "Graph queries by status.",
	}, []string{"status"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentnet",
		Subsystem: "graph",
		Name:      "query_duration_seconds",
		Help:      "Duration of graph queries, including traversal fetches.",
		Buckets:   prometheus.DefBuckets,
	})

	queryResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentnet",
		Subsystem: "graph",
		Name:      "query_results",
		Help:      "Number of nodes returned per query.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)
