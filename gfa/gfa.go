// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gfa reads and writes variation graphs in GFA 1.0, the
// tab-separated Graphical Fragment Assembly interchange format.
//
// Segment names must be positive integers, since they become node IDs
// directly. Link overlaps are ignored on read and written as 0M. Record
// types other than H, S, L, and P are skipped.
package gfa

import (
	"errors"
	"iter"

	"github.com/AleutianAI/vargraph/graph"
	"github.com/AleutianAI/vargraph/handle"
)

var (
	// ErrMalformedRecord indicates a line that does not parse as its
	// declared record type. The wrapped error carries the line number.
	ErrMalformedRecord = errors.New("malformed GFA record")

	// ErrBadSegmentName indicates a segment or path visit whose name is
	// not a positive integer.
	ErrBadSegmentName = errors.New("segment name is not a positive integer")

	// ErrBadOrientation indicates an orientation field that is neither
	// "+" nor "-".
	ErrBadOrientation = errors.New("orientation must be + or -")
)

// Builder is the graph mutation surface Read needs. *graph.Graph
// satisfies it.
type Builder interface {
	CreateHandle(seq []byte, id handle.NodeID) (handle.Handle, error)
	AddEdge(a, b handle.Handle) error
	CreatePath(name string, circular bool) (graph.PathID, error)
	AppendStep(id graph.PathID, h handle.Handle) (graph.StepID, error)
}

// Source is the read-only surface Write needs. *graph.Graph satisfies it.
type Source interface {
	Handles() iter.Seq[handle.Handle]
	Edges() iter.Seq[handle.Edge]
	Sequence(h handle.Handle) ([]byte, error)
	Paths() iter.Seq2[graph.PathID, string]
	Steps(id graph.PathID) ([]graph.Step, error)
}

var (
	_ Builder = (*graph.Graph)(nil)
	_ Source  = (*graph.Graph)(nil)
)
