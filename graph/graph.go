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
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/AleutianAI/vargraph/dna"
	"github.com/AleutianAI/vargraph/handle"
)

// Graph is the facade over the node, adjacency, and path stores. All
// cross-store invariants live here: every edge endpoint and every path
// step must reference a live node, and multi-store mutations validate
// before they touch anything, so a failed call leaves the graph
// unchanged.
//
// Thread Safety: all methods are safe for concurrent use. Reads take a
// shared lock; mutations take an exclusive lock. Iterators snapshot
// under the lock at call time and release it before yielding.
type Graph struct {
	mu    sync.RWMutex
	opts  Options
	nodes *nodeStore
	adj   *adjacencyStore
	paths *pathStore
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	initMetrics()
	return &Graph{
		opts:  o,
		nodes: newNodeStore(o.InitialCapacity, o.RecycleIDs),
		adj:   newAdjacencyStore(o.InitialCapacity),
		paths: newPathStore(),
	}
}

// ---------------------------------------------------------------------------
// Node operations
// ---------------------------------------------------------------------------

// AppendHandle creates a node with an automatically allocated ID and
// returns its forward handle. The sequence is copied.
//
// Errors:
//
//	ErrEmptySequence - seq is empty.
//	ErrMaxNodesExceeded - the configured node cap is reached.
func (g *Graph) AppendHandle(seq []byte) (handle.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.opts.MaxNodes > 0 && g.nodes.count() >= g.opts.MaxNodes {
		return 0, fmt.Errorf("%w: %d", ErrMaxNodesExceeded, g.opts.MaxNodes)
	}
	id, err := g.nodes.create(seq)
	if err != nil {
		return 0, err
	}
	recordMutation("create_node", 1)
	return handle.MustPack(id, false), nil
}

// CreateHandle creates a node under a caller-chosen ID and returns its
// forward handle. Automatic allocation never reuses an explicitly chosen
// ID.
//
// Errors:
//
//	handle.ErrInvalidNodeID - id is zero or too large to pack.
//	ErrDuplicateNode - id is already in use.
//	ErrEmptySequence - seq is empty.
//	ErrMaxNodesExceeded - the configured node cap is reached.
func (g *Graph) CreateHandle(seq []byte, id handle.NodeID) (handle.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.opts.MaxNodes > 0 && g.nodes.count() >= g.opts.MaxNodes {
		return 0, fmt.Errorf("%w: %d", ErrMaxNodesExceeded, g.opts.MaxNodes)
	}
	if err := g.nodes.createWithID(id, seq); err != nil {
		return 0, err
	}
	recordMutation("create_node", 1)
	return handle.MustPack(id, false), nil
}

// HasNode reports whether the node is present.
func (g *Graph) HasNode(id handle.NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.has(id)
}

// Sequence returns the node's sequence as read along the handle: the
// stored forward strand for a forward handle, its reverse complement for
// a reverse handle. The result is a fresh copy.
func (g *Graph) Sequence(h handle.Handle) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seq, ok := g.nodes.sequence(h.ID())
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	if h.IsReverse() {
		return dna.ReverseComplement(seq), nil
	}
	return append([]byte(nil), seq...), nil
}

// NodeLen returns the node's sequence length, which is the same in both
// orientations.
func (g *Graph) NodeLen(h handle.Handle) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes.length(h.ID())
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	return n, nil
}

// SetSequence replaces the node's sequence with seq as read along the
// handle: a reverse handle stores the reverse complement so that reading
// back along the same handle yields seq. Edges and steps are unaffected.
func (g *Graph) SetSequence(h handle.Handle, seq []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	stored := seq
	if h.IsReverse() {
		stored = dna.ReverseComplement(seq)
	}
	if err := g.nodes.setSequence(h.ID(), stored); err != nil {
		return err
	}
	recordMutation("set_sequence", 1)
	return nil
}

// DeleteNode removes a node along with everything referencing it: all
// incident edges are removed and every path step visiting the node is
// unlinked, then the node itself is deleted. Paths that visited the node
// shrink but remain valid walks over their surviving steps.
//
// The only failure is ErrNodeNotFound, checked before any mutation, so
// a failed delete changes nothing.
func (g *Graph) DeleteNode(id handle.NodeID) error {
	defer recordDuration("delete_node", time.Now())
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.nodes.has(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	edges := g.adj.removeAllIncident(id)
	steps := g.paths.removeStepsOn(id)
	// The existence check above is the only way delete can fail.
	_ = g.nodes.delete(id)
	recordMutation("delete_node", 1)
	recordCascade(edges, steps)
	return nil
}

// DeleteIsolatedNode removes a node only if nothing references it.
//
// Errors:
//
//	ErrNodeNotFound - the node is not present.
//	ErrNodeHasEdges - an edge still touches the node.
//	ErrNodeHasSteps - a path step still visits the node.
func (g *Graph) DeleteIsolatedNode(id handle.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.nodes.has(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if g.adj.hasIncident(id) {
		return fmt.Errorf("%w: %d", ErrNodeHasEdges, id)
	}
	if g.paths.hasStepsOn(id) {
		return fmt.Errorf("%w: %d", ErrNodeHasSteps, id)
	}
	_ = g.nodes.delete(id)
	recordMutation("delete_node", 1)
	return nil
}

// DivideHandle splits a node at one or more offsets, measured in bases
// along the handle's orientation. The original ID keeps the first piece
// in the node's forward frame; the remaining pieces get fresh IDs.
//
// Edges into the node's start stay attached to it; edges out of the
// node's end move to the last piece; fresh edges chain consecutive
// pieces. Every path step visiting the node is replaced, in place, by the
// run of pieces oriented to match the step, so path sequences are
// unchanged.
//
// The returned handles are ordered and oriented along h: concatenating
// their sequences reproduces Sequence(h).
//
// Errors:
//
//	ErrNodeNotFound - the node is not present.
//	ErrOffsetOutOfRange - an offset is not strictly inside the sequence,
//	  or the offsets are not strictly increasing.
//	ErrMaxNodesExceeded, ErrMaxEdgesExceeded - a configured cap would be
//	  exceeded.
//
// All validation happens before any mutation.
func (g *Graph) DivideHandle(h handle.Handle, offsets ...int) ([]handle.Handle, error) {
	defer recordDuration("divide_handle", time.Now())
	g.mu.Lock()
	defer g.mu.Unlock()

	id := h.ID()
	seq, ok := g.nodes.sequence(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if len(offsets) == 0 {
		return []handle.Handle{h}, nil
	}
	prev := 0
	for _, o := range offsets {
		if o <= 0 || o >= len(seq) {
			return nil, fmt.Errorf("%w: offset %d in node of length %d",
				ErrOffsetOutOfRange, o, len(seq))
		}
		if o <= prev {
			return nil, fmt.Errorf("%w: offsets must be strictly increasing", ErrOffsetOutOfRange)
		}
		prev = o
	}
	if g.opts.MaxNodes > 0 && g.nodes.count()+len(offsets) > g.opts.MaxNodes {
		return nil, fmt.Errorf("%w: %d", ErrMaxNodesExceeded, g.opts.MaxNodes)
	}
	if g.opts.MaxEdges > 0 && g.adj.count()+len(offsets) > g.opts.MaxEdges {
		return nil, fmt.Errorf("%w: %d", ErrMaxEdgesExceeded, g.opts.MaxEdges)
	}

	// Cut points in the node's forward frame.
	cuts := make([]int, len(offsets))
	if h.IsReverse() {
		for i, o := range offsets {
			cuts[len(offsets)-1-i] = len(seq) - o
		}
	} else {
		copy(cuts, offsets)
	}

	incident := g.adj.incident(id)
	affected := g.paths.stepsOn(id)

	// The original node keeps the first forward piece; each later piece
	// becomes a new node. Cut bounds are strictly interior, so every
	// piece is non-empty and create cannot fail.
	first := append([]byte(nil), seq[:cuts[0]]...)
	fwdParts := make([]handle.Handle, 0, len(cuts)+1)
	fwdParts = append(fwdParts, handle.MustPack(id, false))
	bounds := append(cuts, len(seq))
	pieces := make([][]byte, 0, len(cuts))
	for i := 0; i < len(cuts); i++ {
		pieces = append(pieces, append([]byte(nil), seq[bounds[i]:bounds[i+1]]...))
	}
	_ = g.nodes.setSequence(id, first)
	for _, piece := range pieces {
		nid, _ := g.nodes.create(piece)
		fwdParts = append(fwdParts, handle.MustPack(nid, false))
	}
	last := fwdParts[len(fwdParts)-1]

	// Rewire incident edges: attachments at the node's forward end move
	// to the last piece, attachments at its start stay. For a directed
	// edge (from, to), the from endpoint leaves the node's end when
	// forward, and the to endpoint enters the node's end when reverse.
	for _, e := range incident {
		_ = g.adj.remove(e.From, e.To)
	}
	for _, e := range incident {
		from, to := e.From, e.To
		if from.ID() == id && !from.IsReverse() {
			from = last
		}
		if to.ID() == id && to.IsReverse() {
			to = last.Flip()
		}
		g.adj.add(from, to)
	}
	for i := 0; i+1 < len(fwdParts); i++ {
		g.adj.add(fwdParts[i], fwdParts[i+1])
	}

	// Replace each visiting step with the run of pieces in the step's
	// orientation.
	revParts := make([]handle.Handle, len(fwdParts))
	for i, p := range fwdParts {
		revParts[len(fwdParts)-1-i] = p.Flip()
	}
	for _, st := range affected {
		run := fwdParts
		if st.Handle.IsReverse() {
			run = revParts
		}
		// The step was validated live by stepsOn.
		_, _, _ = g.paths.rewriteSegment(st.Path, st.ID, st.ID, run)
	}

	recordMutation("divide_handle", 1)
	if h.IsReverse() {
		return revParts, nil
	}
	return fwdParts, nil
}

// ApplyOrientation rewrites a node so its forward strand matches the
// handle's orientation. For a forward handle this is a no-op. For a
// reverse handle the stored sequence is reverse-complemented, every
// incident edge endpoint on the node is flipped, and every path step
// visiting the node is flipped, so all observable sequences and walks
// are unchanged. Returns the handle that now denotes the same traversal,
// which is always forward.
func (g *Graph) ApplyOrientation(h handle.Handle) (handle.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := h.ID()
	seq, ok := g.nodes.sequence(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if !h.IsReverse() {
		return h, nil
	}
	_ = g.nodes.setSequence(id, dna.ReverseComplement(seq))
	incident := g.adj.incident(id)
	for _, e := range incident {
		_ = g.adj.remove(e.From, e.To)
	}
	for _, e := range incident {
		from, to := e.From, e.To
		if from.ID() == id {
			from = from.Flip()
		}
		if to.ID() == id {
			to = to.Flip()
		}
		g.adj.add(from, to)
	}
	for _, st := range g.paths.stepsOn(id) {
		_ = g.paths.setHandle(st.ID, st.Handle.Flip())
	}
	recordMutation("apply_orientation", 1)
	return h.Flip(), nil
}

// ---------------------------------------------------------------------------
// Edge operations
// ---------------------------------------------------------------------------

// AddEdge connects two handles. The edge is stored once under its
// canonical representative, so adding (a, b) and (flip(b), flip(a)) are
// the same operation and re-adding an existing edge is a no-op.
//
// Errors:
//
//	ErrNodeNotFound - either endpoint references a missing node.
//	ErrMaxEdgesExceeded - the configured edge cap is reached.
func (g *Graph) AddEdge(a, b handle.Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, h := range []handle.Handle{a, b} {
		if !g.nodes.has(h.ID()) {
			return fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
		}
	}
	if g.opts.MaxEdges > 0 && g.adj.count() >= g.opts.MaxEdges && !g.adj.has(a, b) {
		return fmt.Errorf("%w: %d", ErrMaxEdgesExceeded, g.opts.MaxEdges)
	}
	if g.adj.add(a, b) {
		recordMutation("add_edge", 1)
	}
	return nil
}

// RemoveEdge disconnects two handles. Either directed reading of the
// edge is accepted.
//
// Errors:
//
//	ErrNodeNotFound - either endpoint references a missing node.
//	ErrEdgeNotFound - the edge is not present.
func (g *Graph) RemoveEdge(a, b handle.Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, h := range []handle.Handle{a, b} {
		if !g.nodes.has(h.ID()) {
			return fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
		}
	}
	if err := g.adj.remove(a, b); err != nil {
		return err
	}
	recordMutation("remove_edge", 1)
	return nil
}

// HasEdge reports whether the physical connection (a, b) exists, in
// either directed reading. Missing nodes simply report false.
func (g *Graph) HasEdge(a, b handle.Handle) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.has(a, b)
}

// Neighbors returns the handles adjacent to h in the given direction,
// oriented for continued traversal. The result is a snapshot taken at
// call time.
func (g *Graph) Neighbors(h handle.Handle, dir handle.Direction) ([]handle.Handle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.nodes.has(h.ID()) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	return g.adj.neighbors(h, dir), nil
}

// Degree returns the number of edges on h's side in dir.
func (g *Graph) Degree(h handle.Handle, dir handle.Direction) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.nodes.has(h.ID()) {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	return g.adj.degree(h, dir), nil
}

// ---------------------------------------------------------------------------
// Path operations
// ---------------------------------------------------------------------------

// CreatePath registers an empty named path.
func (g *Graph) CreatePath(name string, circular bool) (PathID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := g.paths.create(name, circular)
	if err != nil {
		return 0, err
	}
	recordMutation("create_path", 1)
	return id, nil
}

// DestroyPath removes a path and all its steps. Nodes and edges are
// unaffected.
func (g *Graph) DestroyPath(id PathID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.paths.destroy(id); err != nil {
		return err
	}
	recordMutation("destroy_path", 1)
	return nil
}

// PathByName resolves a path name to its ID.
func (g *Graph) PathByName(name string) (PathID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paths.byName(name)
}

// PathName returns the path's name.
func (g *Graph) PathName(id PathID) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, err := g.paths.get(id)
	if err != nil {
		return "", err
	}
	return p.name, nil
}

// PathIsCircular reports whether the path is marked circular.
func (g *Graph) PathIsCircular(id PathID) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, err := g.paths.get(id)
	if err != nil {
		return false, err
	}
	return p.circular, nil
}

// SetCircularity marks or unmarks the path as circular. Circularity only
// affects traversal wrap-around; the step list itself is unchanged.
func (g *Graph) SetCircularity(id PathID, circular bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.paths.get(id)
	if err != nil {
		return err
	}
	p.circular = circular
	return nil
}

// AppendStep adds a step at the end of the path.
//
// Errors:
//
//	ErrPathNotFound - the path is not present.
//	ErrNodeNotFound - the handle references a missing node.
func (g *Graph) AppendStep(id PathID, h handle.Handle) (StepID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.nodes.has(h.ID()) {
		return NoStep, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	sid, err := g.paths.append(id, h)
	if err != nil {
		return NoStep, err
	}
	recordMutation("append_step", 1)
	return sid, nil
}

// PrependStep adds a step at the start of the path.
func (g *Graph) PrependStep(id PathID, h handle.Handle) (StepID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.nodes.has(h.ID()) {
		return NoStep, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	sid, err := g.paths.prepend(id, h)
	if err != nil {
		return NoStep, err
	}
	recordMutation("prepend_step", 1)
	return sid, nil
}

// InsertStepAfter adds a step immediately after an existing step on the
// path. Existing StepIDs are unaffected.
func (g *Graph) InsertStepAfter(id PathID, after StepID, h handle.Handle) (StepID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.nodes.has(h.ID()) {
		return NoStep, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	sid, err := g.paths.insertAfter(id, after, h)
	if err != nil {
		return NoStep, err
	}
	recordMutation("insert_step", 1)
	return sid, nil
}

// RemoveStep unlinks and frees one step. All other StepIDs stay valid.
func (g *Graph) RemoveStep(sid StepID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.paths.remove(sid); err != nil {
		return err
	}
	recordMutation("remove_step", 1)
	return nil
}

// FlipStep reverses the orientation of one step in place.
func (g *Graph) FlipStep(sid StepID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.paths.flip(sid); err != nil {
		return err
	}
	recordMutation("flip_step", 1)
	return nil
}

// RewriteSegment replaces the contiguous run of steps from..to
// (inclusive) with steps over the given handles, which may be empty to
// delete the run. Steps outside the run keep their StepIDs. Returns the
// first and last new StepID, or NoStep for both on pure deletion.
//
// Errors:
//
//	ErrPathNotFound, ErrStepNotFound - bad path or step reference.
//	ErrInvalidRange - to does not follow from on the path.
//	ErrNodeNotFound - a replacement handle references a missing node.
//
// All validation happens before any mutation.
func (g *Graph) RewriteSegment(id PathID, from, to StepID, handles []handle.Handle) (StepID, StepID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, h := range handles {
		if !g.nodes.has(h.ID()) {
			return NoStep, NoStep, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
		}
	}
	first, last, err := g.paths.rewriteSegment(id, from, to, handles)
	if err != nil {
		return NoStep, NoStep, err
	}
	recordMutation("rewrite_segment", 1)
	return first, last, nil
}

// Steps returns a snapshot of the path's steps in order.
func (g *Graph) Steps(id PathID) ([]Step, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paths.walk(id)
}

// StepsReverse returns a snapshot of the path's steps in reverse order,
// the same steps Steps returns walked tail to head.
func (g *Graph) StepsReverse(id PathID) ([]Step, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	steps, err := g.paths.walk(id)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps, nil
}

// WalkSequence concatenates the oriented sequence of each handle in the
// walk, in order. An empty walk yields an empty sequence.
func (g *Graph) WalkSequence(walk []handle.Handle) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var buf []byte
	for _, h := range walk {
		seq, ok := g.nodes.sequence(h.ID())
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
		}
		if h.IsReverse() {
			buf = append(buf, dna.ReverseComplement(seq)...)
		} else {
			buf = append(buf, seq...)
		}
	}
	return buf, nil
}

// PathSequence materializes the path's full nucleotide content, the
// concatenation of each step's oriented sequence from head to tail.
func (g *Graph) PathSequence(id PathID) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	steps, err := g.paths.walk(id)
	if err != nil {
		return nil, err
	}
	var buf []byte
	for _, st := range steps {
		seq, _ := g.nodes.sequence(st.Handle.ID())
		if st.Handle.IsReverse() {
			buf = append(buf, dna.ReverseComplement(seq)...)
		} else {
			buf = append(buf, seq...)
		}
	}
	return buf, nil
}

// StepHandle returns the oriented node a step visits.
func (g *Graph) StepHandle(sid StepID) (handle.Handle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, err := g.paths.record(sid)
	if err != nil {
		return 0, err
	}
	return rec.handle, nil
}

// NextStep returns the step after sid on its path. On a circular path the
// tail wraps to the head. ok is false at the end of a linear path.
func (g *Graph) NextStep(sid StepID) (StepID, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, err := g.paths.record(sid)
	if err != nil {
		return NoStep, false, err
	}
	if rec.next != NoStep {
		return rec.next, true, nil
	}
	p := g.paths.paths[rec.path]
	if p.circular {
		return p.head, true, nil
	}
	return NoStep, false, nil
}

// PrevStep returns the step before sid on its path. On a circular path
// the head wraps to the tail. ok is false at the start of a linear path.
func (g *Graph) PrevStep(sid StepID) (StepID, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, err := g.paths.record(sid)
	if err != nil {
		return NoStep, false, err
	}
	if rec.prev != NoStep {
		return rec.prev, true, nil
	}
	p := g.paths.paths[rec.path]
	if p.circular {
		return p.tail, true, nil
	}
	return NoStep, false, nil
}

// StepsOn returns every step, across all paths, that visits the handle's
// node in either orientation. Order is unspecified.
func (g *Graph) StepsOn(h handle.Handle) ([]Step, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.nodes.has(h.ID()) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, h.ID())
	}
	return g.paths.stepsOn(h.ID()), nil
}

// PathStepCount returns the number of steps on the path.
func (g *Graph) PathStepCount(id PathID) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, err := g.paths.get(id)
	if err != nil {
		return 0, err
	}
	return p.steps, nil
}

// PathBasesLen returns the total sequence length of the path's walk.
func (g *Graph) PathBasesLen(id PathID) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	steps, err := g.paths.walk(id)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, st := range steps {
		n, _ := g.nodes.length(st.Handle.ID())
		total += n
	}
	return total, nil
}

// StepBaseOffset returns the base position at which the step's visit
// begins along its path's walk, counting from zero at the head.
func (g *Graph) StepBaseOffset(sid StepID) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, err := g.paths.record(sid)
	if err != nil {
		return 0, err
	}
	at := 0
	p := g.paths.paths[rec.path]
	for cur := p.head; cur != NoStep; cur = g.paths.arena[cur].next {
		if cur == sid {
			return at, nil
		}
		n, _ := g.nodes.length(g.paths.arena[cur].handle.ID())
		at += n
	}
	return 0, fmt.Errorf("%w: %d", ErrStepNotFound, sid)
}

// StepAtBase locates the step covering base position pos on the path,
// returning the step and the offset of pos within it. Positions count
// from zero along the path's walk.
//
// Errors:
//
//	ErrPathNotFound - the path is not present.
//	ErrOffsetOutOfRange - pos is negative or at or beyond the path's
//	  total base length.
func (g *Graph) StepAtBase(id PathID, pos int) (Step, int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	steps, err := g.paths.walk(id)
	if err != nil {
		return Step{}, 0, err
	}
	if pos >= 0 {
		at := 0
		for _, st := range steps {
			n, _ := g.nodes.length(st.Handle.ID())
			if pos < at+n {
				return st, pos - at, nil
			}
			at += n
		}
	}
	return Step{}, 0, fmt.Errorf("%w: position %d on path %d", ErrOffsetOutOfRange, pos, id)
}

// ---------------------------------------------------------------------------
// Statistics and iteration
// ---------------------------------------------------------------------------

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.count()
}

// EdgeCount returns the number of live edges, counting each physical
// connection once.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.count()
}

// PathCount returns the number of paths.
func (g *Graph) PathCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paths.count()
}

// TotalSequenceLength returns the summed length of all node sequences.
func (g *Graph) TotalSequenceLength() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.totalLength()
}

// MinNodeID returns the smallest live node ID, or zero when empty.
func (g *Graph) MinNodeID() handle.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	min, _ := g.nodes.minMaxID()
	return min
}

// MaxNodeID returns the largest live node ID, or zero when empty.
func (g *Graph) MaxNodeID() handle.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, max := g.nodes.minMaxID()
	return max
}

// Handles iterates the forward handle of every node in ascending ID
// order. The iteration works over a snapshot taken at call time, so the
// graph may be mutated while ranging.
func (g *Graph) Handles() iter.Seq[handle.Handle] {
	g.mu.RLock()
	ids := g.nodes.ids()
	g.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return func(yield func(handle.Handle) bool) {
		for _, id := range ids {
			if !yield(handle.MustPack(id, false)) {
				return
			}
		}
	}
}

// Edges iterates every edge in canonical form, over a snapshot taken at
// call time. Order is unspecified.
func (g *Graph) Edges() iter.Seq[handle.Edge] {
	g.mu.RLock()
	edges := g.adj.all()
	g.mu.RUnlock()
	return func(yield func(handle.Edge) bool) {
		for _, e := range edges {
			if !yield(e) {
				return
			}
		}
	}
}

// Paths iterates every path ID with its name, over a snapshot taken at
// call time. Order is unspecified.
func (g *Graph) Paths() iter.Seq2[PathID, string] {
	g.mu.RLock()
	ids := g.paths.ids()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.paths.paths[id].name
	}
	g.mu.RUnlock()
	return func(yield func(PathID, string) bool) {
		for i, id := range ids {
			if !yield(id, names[i]) {
				return
			}
		}
	}
}
