// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handle implements the packed node-orientation codec at the base
// of the variation graph engine.
//
// A Handle names "a node traversed in a given orientation" as one opaque
// uint64: the node ID shifted left by one bit, with the low bit set when
// the traversal is along the reverse complement. Packing and unpacking are
// pure bit operations, and flipping orientation is a single XOR, so a
// Handle can be passed around, stored in adjacency lists, and compared
// cheaply without ever consulting the graph.
//
// The codec is stateless. Whether a Handle refers to a live node is the
// graph's concern, not this package's.
package handle

import (
	"errors"
	"fmt"
)

// NodeID identifies a node in a variation graph. Zero is never a valid ID.
type NodeID uint64

// MaxNodeID is the largest node ID the packed encoding can hold. One bit
// of the 64-bit handle carries the orientation, so IDs must fit in 63 bits.
const MaxNodeID = NodeID(1)<<63 - 1

// ErrInvalidNodeID is returned when an ID is zero or does not fit in the
// 63 bits the packed encoding reserves for it.
var ErrInvalidNodeID = errors.New("invalid node ID")

// Handle is a node ID plus an orientation, packed as a single uint64.
//
// Two handles are equal iff they name the same node in the same
// orientation, so Handle is directly usable as a map key.
type Handle uint64

// Pack encodes a node ID and orientation into a Handle.
//
// Outputs:
//
//	Handle - The packed handle. Zero-valued if err is non-nil.
//	error - ErrInvalidNodeID if id is zero or exceeds MaxNodeID.
func Pack(id NodeID, reverse bool) (Handle, error) {
	if id == 0 || id > MaxNodeID {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNodeID, id)
	}
	h := Handle(id) << 1
	if reverse {
		h |= 1
	}
	return h, nil
}

// MustPack is Pack for IDs already known to be valid. It panics on an
// invalid ID and is intended for tests and internal call sites that have
// validated the ID through the node store.
func MustPack(id NodeID, reverse bool) Handle {
	h, err := Pack(id, reverse)
	if err != nil {
		panic(err)
	}
	return h
}

// Forward returns the forward-oriented handle for a node ID. It carries
// the same validity requirements as Pack.
func Forward(id NodeID) (Handle, error) {
	return Pack(id, false)
}

// ID unpacks the node ID from the handle.
func (h Handle) ID() NodeID {
	return NodeID(h >> 1)
}

// IsReverse reports whether the handle traverses the node's reverse
// complement.
func (h Handle) IsReverse() bool {
	return h&1 != 0
}

// Flip toggles the handle's orientation. Flip is its own inverse.
func (h Handle) Flip() Handle {
	return h ^ 1
}

// FlipIf toggles the orientation only when cond is true.
func (h Handle) FlipIf(cond bool) Handle {
	if cond {
		return h.Flip()
	}
	return h
}

// AsForward returns the forward-oriented handle for the same node.
func (h Handle) AsForward() Handle {
	return h &^ 1
}

// String renders the handle as the node ID followed by its orientation
// sign, e.g. "12+" or "12-". This matches the segment orientation syntax
// used by graph interchange formats.
func (h Handle) String() string {
	if h.IsReverse() {
		return fmt.Sprintf("%d-", h.ID())
	}
	return fmt.Sprintf("%d+", h.ID())
}

// Direction selects which side of a handle a navigation query applies to.
type Direction int

const (
	// Outgoing follows edges leaving the handle's end: the places a
	// traversal can continue to after walking the handle.
	Outgoing Direction = iota

	// Incoming follows edges arriving at the handle's start: the places
	// a traversal could have come from.
	Incoming
)

// String returns the string representation of the Direction.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	default:
		return "unknown"
	}
}

// Edge is one physical connection between two handle ends, directed from
// From's end into To's start. The same physical connection has two
// directed readings: (a, b) and (flip(b), flip(a)). Exactly one of them is
// the canonical representative; see Canonical.
type Edge struct {
	From Handle
	To   Handle
}

// Canonical returns the canonical representative of the edge's physical
// connection, choosing deterministically between (From, To) and
// (flip(To), flip(From)) so that both readings map to the same Edge value.
func (e Edge) Canonical() Edge {
	flippedTo := e.To.Flip()
	switch {
	case e.From > flippedTo:
		return Edge{From: flippedTo, To: e.From.Flip()}
	case e.From == flippedTo && e.To > e.From.Flip():
		return Edge{From: flippedTo, To: e.From.Flip()}
	default:
		return e
	}
}

// CanonicalEdge is shorthand for Edge{a, b}.Canonical().
func CanonicalEdge(a, b Handle) Edge {
	return Edge{From: a, To: b}.Canonical()
}

// String renders the edge as "from->to" using handle notation.
func (e Edge) String() string {
	return e.From.String() + "->" + e.To.String()
}
