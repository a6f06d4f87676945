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
	"container/heap"
	"fmt"

	"github.com/AleutianAI/vargraph/handle"
)

// idHeap is a min-heap of freed node IDs, used only when ID recycling is
// enabled so that the smallest freed ID is reused first.
type idHeap []handle.NodeID

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x interface{}) { *h = append(*h, x.(handle.NodeID)) }
func (h *idHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// nodeStore owns node sequences and ID allocation. It knows nothing about
// edges or paths; cross-store checks belong to the Graph facade.
type nodeStore struct {
	seqs     map[handle.NodeID][]byte
	nextID   handle.NodeID
	free     idHeap
	recycle  bool
	totalLen int
}

func newNodeStore(capacity int, recycle bool) *nodeStore {
	return &nodeStore{
		seqs:    make(map[handle.NodeID][]byte, capacity),
		nextID:  1,
		recycle: recycle,
	}
}

// allocID returns the next node ID, preferring the smallest freed ID when
// recycling is enabled.
func (s *nodeStore) allocID() handle.NodeID {
	if s.recycle && len(s.free) > 0 {
		return heap.Pop(&s.free).(handle.NodeID)
	}
	id := s.nextID
	s.nextID++
	return id
}

// create stores seq under a freshly allocated ID. The sequence is copied.
func (s *nodeStore) create(seq []byte) (handle.NodeID, error) {
	if len(seq) == 0 {
		return 0, ErrEmptySequence
	}
	id := s.allocID()
	s.seqs[id] = append([]byte(nil), seq...)
	s.totalLen += len(seq)
	return id, nil
}

// createWithID stores seq under a caller-chosen ID. Later automatic
// allocations are bumped past id so they can never collide with it.
func (s *nodeStore) createWithID(id handle.NodeID, seq []byte) error {
	if id == 0 || id > handle.MaxNodeID {
		return fmt.Errorf("%w: %d", handle.ErrInvalidNodeID, id)
	}
	if len(seq) == 0 {
		return fmt.Errorf("%w: node %d", ErrEmptySequence, id)
	}
	if _, ok := s.seqs[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	s.seqs[id] = append([]byte(nil), seq...)
	s.totalLen += len(seq)
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return nil
}

func (s *nodeStore) has(id handle.NodeID) bool {
	_, ok := s.seqs[id]
	return ok
}

// sequence returns the stored forward-strand sequence. The returned slice
// is the store's own backing array; callers must not modify it.
func (s *nodeStore) sequence(id handle.NodeID) ([]byte, bool) {
	seq, ok := s.seqs[id]
	return seq, ok
}

func (s *nodeStore) length(id handle.NodeID) (int, bool) {
	seq, ok := s.seqs[id]
	return len(seq), ok
}

// setSequence replaces the node's forward-strand sequence in place.
func (s *nodeStore) setSequence(id handle.NodeID, seq []byte) error {
	old, ok := s.seqs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if len(seq) == 0 {
		return fmt.Errorf("%w: node %d", ErrEmptySequence, id)
	}
	s.totalLen += len(seq) - len(old)
	s.seqs[id] = append([]byte(nil), seq...)
	return nil
}

// delete removes the node's sequence and releases its ID. The facade is
// responsible for clearing edges and steps first.
func (s *nodeStore) delete(id handle.NodeID) error {
	seq, ok := s.seqs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	s.totalLen -= len(seq)
	delete(s.seqs, id)
	if s.recycle {
		heap.Push(&s.free, id)
	}
	return nil
}

func (s *nodeStore) count() int {
	return len(s.seqs)
}

func (s *nodeStore) totalLength() int {
	return s.totalLen
}

// minMaxID scans for the smallest and largest live node IDs. Both are
// zero when the store is empty.
func (s *nodeStore) minMaxID() (handle.NodeID, handle.NodeID) {
	var min, max handle.NodeID
	for id := range s.seqs {
		if min == 0 || id < min {
			min = id
		}
		if id > max {
			max = id
		}
	}
	return min, max
}

// ids returns a snapshot of all live node IDs in unspecified order.
func (s *nodeStore) ids() []handle.NodeID {
	out := make([]handle.NodeID, 0, len(s.seqs))
	for id := range s.seqs {
		out = append(out, id)
	}
	return out
}
