// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("aleutian.ai/vargraph/graph")

	initMetricsOnce sync.Once

	mutationsTotal      metric.Int64Counter
	cascadeEdgesRemoved metric.Int64Counter
	cascadeStepsRemoved metric.Int64Counter
	mutationSeconds     metric.Float64Histogram
)

// initMetrics registers the package's instruments against the global
// meter provider. Instrument creation only fails on malformed names, so
// failures are reported through the otel error handler rather than
// propagated.
func initMetrics() {
	initMetricsOnce.Do(func() {
		var err error
		mutationsTotal, err = meter.Int64Counter(
			"vargraph_mutations_total",
			metric.WithDescription("Count of graph mutations by operation."),
		)
		if err != nil {
			otel.Handle(err)
		}
		cascadeEdgesRemoved, err = meter.Int64Counter(
			"vargraph_cascade_edges_removed_total",
			metric.WithDescription("Edges removed by cascading node deletes."),
		)
		if err != nil {
			otel.Handle(err)
		}
		cascadeStepsRemoved, err = meter.Int64Counter(
			"vargraph_cascade_steps_removed_total",
			metric.WithDescription("Path steps removed by cascading node deletes."),
		)
		if err != nil {
			otel.Handle(err)
		}
		mutationSeconds, err = meter.Float64Histogram(
			"vargraph_mutation_duration_seconds",
			metric.WithDescription("Latency of multi-store mutations by operation."),
			metric.WithUnit("s"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

func recordMutation(op string, n int64) {
	if mutationsTotal == nil {
		return
	}
	mutationsTotal.Add(context.Background(), n,
		metric.WithAttributes(attribute.String("op", op)))
}

// recordDuration times one multi-store mutation from start to the
// deferred call site.
func recordDuration(op string, start time.Time) {
	if mutationSeconds == nil {
		return
	}
	mutationSeconds.Record(context.Background(), time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("op", op)))
}

func recordCascade(edges, steps int) {
	if cascadeEdgesRemoved != nil && edges > 0 {
		cascadeEdgesRemoved.Add(context.Background(), int64(edges))
	}
	if cascadeStepsRemoved != nil && steps > 0 {
		cascadeStepsRemoved.Add(context.Background(), int64(steps))
	}
}
