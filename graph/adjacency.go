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
	"fmt"

	"github.com/AleutianAI/vargraph/handle"
)

// Direction aliases so callers working at the graph level do not need a
// second import for navigation queries.
const (
	Outgoing = handle.Outgoing
	Incoming = handle.Incoming
)

// adjacencyStore owns the edge set. Each physical edge is held once,
// keyed by its canonical representative, and mirrored into per-node
// neighbor lists so navigation from either endpoint is O(degree).
//
// List placement follows the bidirected attachment rule: for a stored
// edge (from, to), the neighbor "to" lives in from-node's left list when
// from is reverse and right list otherwise, and "from.Flip()" lives in
// to-node's right list when to is reverse and left list otherwise. The
// one exception is a reversing self-loop with from == to.Flip(), which
// would mirror onto its own entry and is therefore stored once.
type adjacencyStore struct {
	left  map[handle.NodeID][]handle.Handle
	right map[handle.NodeID][]handle.Handle
	edges map[handle.Edge]struct{}
}

func newAdjacencyStore(capacity int) *adjacencyStore {
	return &adjacencyStore{
		left:  make(map[handle.NodeID][]handle.Handle, capacity),
		right: make(map[handle.NodeID][]handle.Handle, capacity),
		edges: make(map[handle.Edge]struct{}, capacity),
	}
}

// add inserts the edge (a, b) if its physical connection is not already
// present. Returns true when a new edge was stored.
func (s *adjacencyStore) add(a, b handle.Handle) bool {
	e := handle.CanonicalEdge(a, b)
	if _, ok := s.edges[e]; ok {
		return false
	}
	s.edges[e] = struct{}{}
	if e.From.IsReverse() {
		s.left[e.From.ID()] = append(s.left[e.From.ID()], e.To)
	} else {
		s.right[e.From.ID()] = append(s.right[e.From.ID()], e.To)
	}
	if e.From != e.To.Flip() {
		if e.To.IsReverse() {
			s.right[e.To.ID()] = append(s.right[e.To.ID()], e.From.Flip())
		} else {
			s.left[e.To.ID()] = append(s.left[e.To.ID()], e.From.Flip())
		}
	}
	return true
}

// remove deletes the edge (a, b) in either directed reading.
func (s *adjacencyStore) remove(a, b handle.Handle) error {
	e := handle.CanonicalEdge(a, b)
	if _, ok := s.edges[e]; !ok {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, e)
	}
	delete(s.edges, e)
	if e.From.IsReverse() {
		s.left[e.From.ID()] = removeFirst(s.left[e.From.ID()], e.To)
	} else {
		s.right[e.From.ID()] = removeFirst(s.right[e.From.ID()], e.To)
	}
	if e.From != e.To.Flip() {
		if e.To.IsReverse() {
			s.right[e.To.ID()] = removeFirst(s.right[e.To.ID()], e.From.Flip())
		} else {
			s.left[e.To.ID()] = removeFirst(s.left[e.To.ID()], e.From.Flip())
		}
	}
	return nil
}

// removeFirst deletes the first occurrence of h from list, preserving the
// order of the remaining entries.
func removeFirst(list []handle.Handle, h handle.Handle) []handle.Handle {
	for i, v := range list {
		if v == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// has reports whether the physical connection (a, b) is present.
func (s *adjacencyStore) has(a, b handle.Handle) bool {
	_, ok := s.edges[handle.CanonicalEdge(a, b)]
	return ok
}

// list selects the neighbor list a navigation query reads from. Walking
// a reverse handle swaps which physical end is "ahead".
func (s *adjacencyStore) list(h handle.Handle, dir handle.Direction) []handle.Handle {
	if (dir == Incoming) != h.IsReverse() {
		return s.left[h.ID()]
	}
	return s.right[h.ID()]
}

// neighbors returns a snapshot of the handles adjacent to h in the given
// direction, oriented for continued traversal: ranging Outgoing yields
// handles a walk can proceed to, Incoming yields handles it could have
// arrived from.
func (s *adjacencyStore) neighbors(h handle.Handle, dir handle.Direction) []handle.Handle {
	src := s.list(h, dir)
	out := make([]handle.Handle, len(src))
	for i, n := range src {
		out[i] = n.FlipIf(dir == Incoming)
	}
	return out
}

// degree returns the number of edges incident to h's side in dir.
func (s *adjacencyStore) degree(h handle.Handle, dir handle.Direction) int {
	return len(s.list(h, dir))
}

// hasIncident reports whether any edge touches the node.
func (s *adjacencyStore) hasIncident(id handle.NodeID) bool {
	return len(s.left[id])+len(s.right[id]) > 0
}

// incident returns every distinct edge touching the node, in canonical
// form. Self-loops appear once.
func (s *adjacencyStore) incident(id handle.NodeID) []handle.Edge {
	fwd := handle.MustPack(id, false)
	seen := make(map[handle.Edge]struct{})
	var out []handle.Edge
	for _, n := range s.neighbors(fwd, Outgoing) {
		e := handle.CanonicalEdge(fwd, n)
		if _, ok := seen[e]; !ok {
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	for _, n := range s.neighbors(fwd, Incoming) {
		e := handle.CanonicalEdge(n, fwd)
		if _, ok := seen[e]; !ok {
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// removeAllIncident deletes every edge touching the node and returns how
// many were removed.
func (s *adjacencyStore) removeAllIncident(id handle.NodeID) int {
	edges := s.incident(id)
	for _, e := range edges {
		// incident only reports live edges, so remove cannot fail here.
		_ = s.remove(e.From, e.To)
	}
	delete(s.left, id)
	delete(s.right, id)
	return len(edges)
}

func (s *adjacencyStore) count() int {
	return len(s.edges)
}

// all returns a snapshot of every edge in canonical form, in unspecified
// order.
func (s *adjacencyStore) all() []handle.Edge {
	out := make([]handle.Edge, 0, len(s.edges))
	for e := range s.edges {
		out = append(out, e)
	}
	return out
}
