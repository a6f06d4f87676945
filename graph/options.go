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

// Options configures a Graph at construction time.
type Options struct {
	// MaxNodes caps the number of live nodes. Zero means unlimited.
	MaxNodes int

	// MaxEdges caps the number of live edges. Zero means unlimited.
	MaxEdges int

	// RecycleIDs controls whether node IDs freed by deletion are reused
	// by later automatic allocations. When false (the default), automatic
	// IDs are strictly increasing for the lifetime of the graph, which
	// keeps IDs stable references across a session.
	RecycleIDs bool

	// InitialCapacity pre-sizes the internal stores for the expected
	// node count. Zero lets the stores grow from empty.
	InitialCapacity int
}

// Option mutates Options during NewGraph.
type Option func(*Options)

// DefaultOptions returns the baseline configuration: unbounded graph,
// no ID recycling, stores sized on demand.
func DefaultOptions() Options {
	return Options{}
}

// WithMaxNodes caps the number of live nodes. Creations beyond the cap
// fail with ErrMaxNodesExceeded.
func WithMaxNodes(n int) Option {
	return func(o *Options) {
		o.MaxNodes = n
	}
}

// WithMaxEdges caps the number of live edges. Creations beyond the cap
// fail with ErrMaxEdgesExceeded.
func WithMaxEdges(n int) Option {
	return func(o *Options) {
		o.MaxEdges = n
	}
}

// WithIDRecycling makes automatic node allocation reuse the smallest
// freed ID before minting fresh ones. Off by default; see
// Options.RecycleIDs for the trade-off.
func WithIDRecycling() Option {
	return func(o *Options) {
		o.RecycleIDs = true
	}
}

// WithInitialCapacity pre-sizes the internal stores for n nodes.
func WithInitialCapacity(n int) Option {
	return func(o *Options) {
		o.InitialCapacity = n
	}
}
