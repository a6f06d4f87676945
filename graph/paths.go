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

// PathID identifies a named path. IDs start at 1 and are never reused.
type PathID uint64

// StepID identifies one step in the shared step arena. A StepID stays
// valid until its step is removed, regardless of insertions or removals
// elsewhere on the path.
type StepID int32

// NoStep is the null step reference.
const NoStep StepID = -1

// Step is one oriented node visit on a path, as surfaced by traversal
// iterators.
type Step struct {
	ID     StepID
	Path   PathID
	Handle handle.Handle
}

// stepRecord is one arena slot. A slot with path == 0 is free, and its
// next field threads the free-list.
type stepRecord struct {
	handle     handle.Handle
	path       PathID
	prev, next StepID
}

// pathRecord is the metadata for one named path. Steps are linked
// head-to-tail; circularity is a flag interpreted by traversal, not a
// physical link, so list surgery never has to special-case the wrap.
type pathRecord struct {
	id       PathID
	name     string
	head     StepID
	tail     StepID
	steps    int
	circular bool
}

// pathStore owns paths, their steps, and the occurrence index that maps
// each node to the steps visiting it. Step records for all paths share
// one arena with a free-list, so removing and re-adding steps does not
// churn allocations.
type pathStore struct {
	paths    map[PathID]*pathRecord
	names    map[string]PathID
	arena    []stepRecord
	freeHead StepID
	occ      map[handle.NodeID]map[StepID]struct{}
	nextID   PathID
}

func newPathStore() *pathStore {
	return &pathStore{
		paths:    make(map[PathID]*pathRecord),
		names:    make(map[string]PathID),
		freeHead: NoStep,
		occ:      make(map[handle.NodeID]map[StepID]struct{}),
		nextID:   1,
	}
}

// allocStep takes a slot from the free-list or grows the arena.
func (s *pathStore) allocStep() StepID {
	if s.freeHead != NoStep {
		sid := s.freeHead
		s.freeHead = s.arena[sid].next
		return sid
	}
	s.arena = append(s.arena, stepRecord{})
	return StepID(len(s.arena) - 1)
}

// freeStep clears the slot and pushes it on the free-list.
func (s *pathStore) freeStep(sid StepID) {
	s.arena[sid] = stepRecord{path: 0, prev: NoStep, next: s.freeHead}
	s.freeHead = sid
}

// record returns the live step record for sid, or an error if sid never
// existed or has been removed.
func (s *pathStore) record(sid StepID) (*stepRecord, error) {
	if sid < 0 || int(sid) >= len(s.arena) || s.arena[sid].path == 0 {
		return nil, fmt.Errorf("%w: %d", ErrStepNotFound, sid)
	}
	return &s.arena[sid], nil
}

func (s *pathStore) trackOccurrence(id handle.NodeID, sid StepID) {
	m, ok := s.occ[id]
	if !ok {
		m = make(map[StepID]struct{})
		s.occ[id] = m
	}
	m[sid] = struct{}{}
}

func (s *pathStore) untrackOccurrence(id handle.NodeID, sid StepID) {
	m, ok := s.occ[id]
	if !ok {
		return
	}
	delete(m, sid)
	if len(m) == 0 {
		delete(s.occ, id)
	}
}

// create registers a new path with a unique name.
func (s *pathStore) create(name string, circular bool) (PathID, error) {
	if _, ok := s.names[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicatePathName, name)
	}
	id := s.nextID
	s.nextID++
	s.paths[id] = &pathRecord{
		id:       id,
		name:     name,
		head:     NoStep,
		tail:     NoStep,
		circular: circular,
	}
	s.names[name] = id
	return id, nil
}

// destroy removes a path and frees all its steps.
func (s *pathStore) destroy(id PathID) error {
	p, ok := s.paths[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrPathNotFound, id)
	}
	for sid := p.head; sid != NoStep; {
		rec := s.arena[sid]
		s.untrackOccurrence(rec.handle.ID(), sid)
		s.freeStep(sid)
		sid = rec.next
	}
	delete(s.names, p.name)
	delete(s.paths, id)
	return nil
}

func (s *pathStore) get(id PathID) (*pathRecord, error) {
	p, ok := s.paths[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPathNotFound, id)
	}
	return p, nil
}

func (s *pathStore) byName(name string) (PathID, bool) {
	id, ok := s.names[name]
	return id, ok
}

func (s *pathStore) count() int {
	return len(s.paths)
}

// ids returns a snapshot of all path IDs in unspecified order.
func (s *pathStore) ids() []PathID {
	out := make([]PathID, 0, len(s.paths))
	for id := range s.paths {
		out = append(out, id)
	}
	return out
}

// append adds a step at the tail of the path.
func (s *pathStore) append(id PathID, h handle.Handle) (StepID, error) {
	p, err := s.get(id)
	if err != nil {
		return NoStep, err
	}
	sid := s.allocStep()
	s.arena[sid] = stepRecord{handle: h, path: id, prev: p.tail, next: NoStep}
	if p.tail != NoStep {
		s.arena[p.tail].next = sid
	} else {
		p.head = sid
	}
	p.tail = sid
	p.steps++
	s.trackOccurrence(h.ID(), sid)
	return sid, nil
}

// prepend adds a step at the head of the path.
func (s *pathStore) prepend(id PathID, h handle.Handle) (StepID, error) {
	p, err := s.get(id)
	if err != nil {
		return NoStep, err
	}
	sid := s.allocStep()
	s.arena[sid] = stepRecord{handle: h, path: id, prev: NoStep, next: p.head}
	if p.head != NoStep {
		s.arena[p.head].prev = sid
	} else {
		p.tail = sid
	}
	p.head = sid
	p.steps++
	s.trackOccurrence(h.ID(), sid)
	return sid, nil
}

// insertAfter adds a step immediately after an existing step on the same
// path.
func (s *pathStore) insertAfter(id PathID, after StepID, h handle.Handle) (StepID, error) {
	p, err := s.get(id)
	if err != nil {
		return NoStep, err
	}
	rec, err := s.record(after)
	if err != nil {
		return NoStep, err
	}
	if rec.path != id {
		return NoStep, fmt.Errorf("%w: step %d is not on path %d", ErrStepNotFound, after, id)
	}
	sid := s.allocStep()
	next := s.arena[after].next
	s.arena[sid] = stepRecord{handle: h, path: id, prev: after, next: next}
	s.arena[after].next = sid
	if next != NoStep {
		s.arena[next].prev = sid
	} else {
		p.tail = sid
	}
	p.steps++
	s.trackOccurrence(h.ID(), sid)
	return sid, nil
}

// remove unlinks and frees one step. Neighboring StepIDs stay valid.
func (s *pathStore) remove(sid StepID) error {
	rec, err := s.record(sid)
	if err != nil {
		return err
	}
	p := s.paths[rec.path]
	if rec.prev != NoStep {
		s.arena[rec.prev].next = rec.next
	} else {
		p.head = rec.next
	}
	if rec.next != NoStep {
		s.arena[rec.next].prev = rec.prev
	} else {
		p.tail = rec.prev
	}
	p.steps--
	s.untrackOccurrence(rec.handle.ID(), sid)
	s.freeStep(sid)
	return nil
}

// flip reverses the orientation of one step in place. The StepID and the
// step's position on the path are unchanged.
func (s *pathStore) flip(sid StepID) error {
	rec, err := s.record(sid)
	if err != nil {
		return err
	}
	rec.handle = rec.handle.Flip()
	return nil
}

// setHandle points an existing step at a different oriented node,
// keeping the occurrence index consistent.
func (s *pathStore) setHandle(sid StepID, h handle.Handle) error {
	rec, err := s.record(sid)
	if err != nil {
		return err
	}
	if rec.handle.ID() != h.ID() {
		s.untrackOccurrence(rec.handle.ID(), sid)
		s.trackOccurrence(h.ID(), sid)
	}
	rec.handle = h
	return nil
}

// run validates that from..to is a contiguous forward run on path id and
// returns the StepIDs in order. It walks at most the path's step count,
// so a to that precedes from fails rather than looping.
func (s *pathStore) run(id PathID, from, to StepID) ([]StepID, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	for _, sid := range []StepID{from, to} {
		rec, err := s.record(sid)
		if err != nil {
			return nil, err
		}
		if rec.path != id {
			return nil, fmt.Errorf("%w: step %d is not on path %d", ErrStepNotFound, sid, id)
		}
	}
	run := make([]StepID, 0, 8)
	for sid, n := from, 0; sid != NoStep && n < p.steps; sid, n = s.arena[sid].next, n+1 {
		run = append(run, sid)
		if sid == to {
			return run, nil
		}
	}
	return nil, fmt.Errorf("%w: step %d does not follow step %d on path %d",
		ErrInvalidRange, to, from, id)
}

// rewriteSegment replaces the contiguous run from..to (inclusive) with a
// fresh run of steps over handles, preserving everything before and
// after the run. handles may be empty, which deletes the run. Returns the
// first and last StepID of the new run, or NoStep for both when handles
// is empty.
//
// Validation happens before any mutation, so a failed rewrite leaves the
// path untouched.
func (s *pathStore) rewriteSegment(id PathID, from, to StepID, handles []handle.Handle) (StepID, StepID, error) {
	run, err := s.run(id, from, to)
	if err != nil {
		return NoStep, NoStep, err
	}
	p := s.paths[id]
	prevOut := s.arena[from].prev
	nextOut := s.arena[to].next

	for _, sid := range run {
		rec := s.arena[sid]
		s.untrackOccurrence(rec.handle.ID(), sid)
		s.freeStep(sid)
	}
	p.steps -= len(run)

	first, last := NoStep, NoStep
	prev := prevOut
	for _, h := range handles {
		sid := s.allocStep()
		s.arena[sid] = stepRecord{handle: h, path: id, prev: prev, next: NoStep}
		if prev != NoStep {
			s.arena[prev].next = sid
		} else {
			p.head = sid
		}
		if first == NoStep {
			first = sid
		}
		prev = sid
		p.steps++
		s.trackOccurrence(h.ID(), sid)
	}
	last = prev
	if len(handles) == 0 {
		// Pure deletion: stitch the surrounding steps together.
		if prevOut != NoStep {
			s.arena[prevOut].next = nextOut
		} else {
			p.head = nextOut
		}
		if nextOut != NoStep {
			s.arena[nextOut].prev = prevOut
		} else {
			p.tail = prevOut
		}
		return NoStep, NoStep, nil
	}
	s.arena[last].next = nextOut
	if nextOut != NoStep {
		s.arena[nextOut].prev = last
	} else {
		p.tail = last
	}
	return first, last, nil
}

// walk returns a snapshot of the path's steps in order.
func (s *pathStore) walk(id PathID) ([]Step, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	out := make([]Step, 0, p.steps)
	for sid := p.head; sid != NoStep; sid = s.arena[sid].next {
		out = append(out, Step{ID: sid, Path: id, Handle: s.arena[sid].handle})
	}
	return out, nil
}

// stepsOn returns a snapshot of every step visiting the node, across all
// paths, in unspecified order.
func (s *pathStore) stepsOn(id handle.NodeID) []Step {
	m := s.occ[id]
	out := make([]Step, 0, len(m))
	for sid := range m {
		rec := s.arena[sid]
		out = append(out, Step{ID: sid, Path: rec.path, Handle: rec.handle})
	}
	return out
}

// hasStepsOn reports whether any path visits the node.
func (s *pathStore) hasStepsOn(id handle.NodeID) bool {
	return len(s.occ[id]) > 0
}

// removeStepsOn removes every step visiting the node and returns how many
// were removed. Paths shrink but remain valid walks over the surviving
// steps.
func (s *pathStore) removeStepsOn(id handle.NodeID) int {
	steps := s.stepsOn(id)
	for _, st := range steps {
		// stepsOn only reports live steps, so remove cannot fail here.
		_ = s.remove(st.ID)
	}
	return len(steps)
}
