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
	"iter"

	"github.com/AleutianAI/vargraph/handle"
)

// The interfaces below slice the Graph facade into capability groups so
// algorithms can declare only the access they need: a traversal takes a
// HandleGraph, a serializer takes a HandleGraph plus a PathReader, and
// only code that edits topology asks for the mutable interfaces. *Graph
// satisfies all of them.

// HandleGraph is read-only access to nodes, sequences, and topology.
type HandleGraph interface {
	HasNode(id handle.NodeID) bool
	Sequence(h handle.Handle) ([]byte, error)
	NodeLen(h handle.Handle) (int, error)
	HasEdge(a, b handle.Handle) bool
	Neighbors(h handle.Handle, dir handle.Direction) ([]handle.Handle, error)
	Degree(h handle.Handle, dir handle.Direction) (int, error)
	NodeCount() int
	EdgeCount() int
	TotalSequenceLength() int
	MinNodeID() handle.NodeID
	MaxNodeID() handle.NodeID
	Handles() iter.Seq[handle.Handle]
	Edges() iter.Seq[handle.Edge]
	WalkSequence(walk []handle.Handle) ([]byte, error)
}

// MutableGraph is write access to nodes and edges.
type MutableGraph interface {
	AppendHandle(seq []byte) (handle.Handle, error)
	CreateHandle(seq []byte, id handle.NodeID) (handle.Handle, error)
	SetSequence(h handle.Handle, seq []byte) error
	AddEdge(a, b handle.Handle) error
	RemoveEdge(a, b handle.Handle) error
	DeleteNode(id handle.NodeID) error
	DeleteIsolatedNode(id handle.NodeID) error
	DivideHandle(h handle.Handle, offsets ...int) ([]handle.Handle, error)
	ApplyOrientation(h handle.Handle) (handle.Handle, error)
}

// PathReader is read-only access to paths and steps.
type PathReader interface {
	PathCount() int
	Paths() iter.Seq2[PathID, string]
	PathByName(name string) (PathID, bool)
	PathName(id PathID) (string, error)
	PathIsCircular(id PathID) (bool, error)
	PathStepCount(id PathID) (int, error)
	Steps(id PathID) ([]Step, error)
	StepsReverse(id PathID) ([]Step, error)
	StepHandle(sid StepID) (handle.Handle, error)
	NextStep(sid StepID) (StepID, bool, error)
	PrevStep(sid StepID) (StepID, bool, error)
	StepsOn(h handle.Handle) ([]Step, error)
	PathBasesLen(id PathID) (int, error)
	PathSequence(id PathID) ([]byte, error)
	StepAtBase(id PathID, pos int) (Step, int, error)
	StepBaseOffset(sid StepID) (int, error)
}

// PathWriter is write access to paths and steps.
type PathWriter interface {
	CreatePath(name string, circular bool) (PathID, error)
	DestroyPath(id PathID) error
	SetCircularity(id PathID, circular bool) error
	AppendStep(id PathID, h handle.Handle) (StepID, error)
	PrependStep(id PathID, h handle.Handle) (StepID, error)
	InsertStepAfter(id PathID, after StepID, h handle.Handle) (StepID, error)
	RemoveStep(sid StepID) error
	FlipStep(sid StepID) error
	RewriteSegment(id PathID, from, to StepID, handles []handle.Handle) (StepID, StepID, error)
}

// Interface satisfaction checks.
var (
	_ HandleGraph  = (*Graph)(nil)
	_ MutableGraph = (*Graph)(nil)
	_ PathReader   = (*Graph)(nil)
	_ PathWriter   = (*Graph)(nil)
)
