// Copyright 2026 The Ramfs Authors.
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

// Package metrics exposes the engine's runtime counters through
// github.com/prometheus/client_golang, in place of gcsfuse's OpenCensus/OTel
// stack (dropped; see SPEC_FULL.md §6.2 and DESIGN.md): a single registry
// the engine updates directly, with an optional HTTP exposition endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every gauge/counter the engine updates during mount
// lifetime. A fresh Registry is created per mount so concurrent test mounts
// do not collide on prometheus's default global registry.
type Registry struct {
	reg *prometheus.Registry

	ChunksInUse          prometheus.Gauge
	SpilloverChunksInUse prometheus.Gauge
	DescriptorsOpen      prometheus.Gauge
	ENOSPCTotal          prometheus.Counter
	OpsTotal             *prometheus.CounterVec
	OpErrorsTotal        *prometheus.CounterVec
}

// New constructs a Registry and registers all collectors against a private
// prometheus.Registry, which Registerer exposes so a caller can wire it into
// an HTTP handler (see cmd/ramfsctl/serve_metrics.go).
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Registry{
		reg: reg,
		ChunksInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ramfs_chunks_in_use",
			Help: "Number of memory-tier chunks currently allocated.",
		}),
		SpilloverChunksInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ramfs_spillover_chunks_in_use",
			Help: "Number of spillover-tier chunks currently allocated.",
		}),
		DescriptorsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ramfs_descriptors_open",
			Help: "Number of open file descriptors across the descriptor table.",
		}),
		ENOSPCTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ramfs_enospc_total",
			Help: "Total number of operations that failed with ENOSPC.",
		}),
		OpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ramfs_ops_total",
			Help: "Total number of filesystem operations, by name.",
		}, []string{"op"}),
		OpErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ramfs_op_errors_total",
			Help: "Total number of filesystem operation errors, by name and error code.",
		}, []string{"op", "code"}),
	}
	return r
}

// Registerer exposes the underlying prometheus.Registry for HTTP handlers
// (promhttp.HandlerFor) without leaking the full Registry struct.
func (r *Registry) Registerer() *prometheus.Registry {
	return r.reg
}

// ObserveOp records one completed operation and, if errCode is non-empty,
// its error code as reported by internal/errs.Code.String(). ENOSPCTotal is
// not touched here: internal/pipeline increments it directly at the point
// an allocation actually fails, which is the one place that count is exact.
func (r *Registry) ObserveOp(op string, errCode string) {
	r.OpsTotal.WithLabelValues(op).Inc()
	if errCode != "" {
		r.OpErrorsTotal.WithLabelValues(op, errCode).Inc()
	}
}
