// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph implements a compact, mutable variation graph: a
// bidirected sequence graph in which nodes carry DNA sequences, edges
// connect oriented node ends, and named paths record walks through the
// graph as doubly linked lists of steps.
//
// The package is organized as three internal stores behind one facade:
//
//   - nodeStore owns node sequences and ID allocation.
//   - adjacencyStore owns the canonical edge set and per-end neighbor
//     lists.
//   - pathStore owns path metadata and a shared step arena with a
//     free-list, plus a node-to-step occurrence index.
//
// The stores never call each other. Every invariant that spans stores,
// such as "no edge or step may reference a missing node", is enforced by
// the Graph facade, which also serializes access behind a single
// read-write mutex. All multi-store mutations validate their inputs
// before touching any store, so a failed operation leaves the graph
// unchanged.
package graph

import "errors"

// Sentinel errors returned by graph operations. Callers should match them
// with errors.Is; the returned errors usually wrap these with context such
// as the offending node ID or path name.
var (
	// ErrNodeNotFound indicates an operation referenced a node ID that is
	// not present in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode indicates an explicit-ID node creation collided
	// with an existing node.
	ErrDuplicateNode = errors.New("node already exists")

	// ErrEmptySequence indicates a node creation or sequence replacement
	// was given a zero-length sequence.
	ErrEmptySequence = errors.New("empty sequence")

	// ErrEdgeNotFound indicates an edge removal referenced an edge that
	// is not present.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrNodeHasEdges indicates a non-cascading delete was attempted on a
	// node that still has incident edges.
	ErrNodeHasEdges = errors.New("node has incident edges")

	// ErrNodeHasSteps indicates a non-cascading delete was attempted on a
	// node that is still referenced by path steps.
	ErrNodeHasSteps = errors.New("node referenced by path steps")

	// ErrPathNotFound indicates an operation referenced a path ID that is
	// not present.
	ErrPathNotFound = errors.New("path not found")

	// ErrDuplicatePathName indicates a path creation reused an existing
	// path name.
	ErrDuplicatePathName = errors.New("path name already exists")

	// ErrStepNotFound indicates a step ID does not name a live step, or
	// names a step on a different path than the operation expected.
	ErrStepNotFound = errors.New("step not found")

	// ErrOffsetOutOfRange indicates a divide offset was zero, negative,
	// or at or beyond the node's sequence length.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrInvalidRange indicates a segment rewrite was given step bounds
	// that do not form a contiguous run on one path.
	ErrInvalidRange = errors.New("invalid step range")

	// ErrMaxNodesExceeded indicates a node creation would exceed the
	// configured node capacity.
	ErrMaxNodesExceeded = errors.New("max node count exceeded")

	// ErrMaxEdgesExceeded indicates an edge creation would exceed the
	// configured edge capacity.
	ErrMaxEdgesExceeded = errors.New("max edge count exceeded")
)
