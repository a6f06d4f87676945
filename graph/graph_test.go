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
	"errors"
	"testing"

	"github.com/AleutianAI/vargraph/handle"
)

// mustAppend creates a node or fails the test.
func mustAppend(t *testing.T, g *Graph, seq string) handle.Handle {
	t.Helper()
	h, err := g.AppendHandle([]byte(seq))
	if err != nil {
		t.Fatalf("AppendHandle(%q): %v", seq, err)
	}
	return h
}

// pathSequence concatenates the oriented sequences of a path's steps.
func pathSequence(t *testing.T, g *Graph, id PathID) string {
	t.Helper()
	seq, err := g.PathSequence(id)
	if err != nil {
		t.Fatalf("PathSequence(%d): %v", id, err)
	}
	return string(seq)
}

func TestAppendHandle(t *testing.T) {
	g := NewGraph()

	t.Run("ids are sequential", func(t *testing.T) {
		a := mustAppend(t, g, "ACGT")
		b := mustAppend(t, g, "TTG")
		if a.ID() != 1 || b.ID() != 2 {
			t.Errorf("got ids %d, %d, want 1, 2", a.ID(), b.ID())
		}
	})
	t.Run("empty sequence rejected", func(t *testing.T) {
		if _, err := g.AppendHandle(nil); !errors.Is(err, ErrEmptySequence) {
			t.Errorf("error = %v, want ErrEmptySequence", err)
		}
	})
	t.Run("sequence is copied", func(t *testing.T) {
		buf := []byte("ACGT")
		h, err := g.AppendHandle(buf)
		if err != nil {
			t.Fatal(err)
		}
		buf[0] = 'T'
		seq, _ := g.Sequence(h)
		if string(seq) != "ACGT" {
			t.Errorf("stored sequence aliased caller buffer: %q", seq)
		}
	})
}

func TestCreateHandleExplicitID(t *testing.T) {
	g := NewGraph()

	h, err := g.CreateHandle([]byte("ACGT"), 10)
	if err != nil {
		t.Fatalf("CreateHandle: %v", err)
	}
	if h.ID() != 10 {
		t.Fatalf("got id %d, want 10", h.ID())
	}

	t.Run("duplicate id rejected", func(t *testing.T) {
		if _, err := g.CreateHandle([]byte("T"), 10); !errors.Is(err, ErrDuplicateNode) {
			t.Errorf("error = %v, want ErrDuplicateNode", err)
		}
	})
	t.Run("zero id rejected", func(t *testing.T) {
		if _, err := g.CreateHandle([]byte("T"), 0); !errors.Is(err, handle.ErrInvalidNodeID) {
			t.Errorf("error = %v, want ErrInvalidNodeID", err)
		}
	})
	t.Run("auto allocation skips past explicit ids", func(t *testing.T) {
		h2 := mustAppend(t, g, "GG")
		if h2.ID() != 11 {
			t.Errorf("auto id = %d, want 11", h2.ID())
		}
	})
}

func TestSequenceOrientation(t *testing.T) {
	g := NewGraph()
	h := mustAppend(t, g, "AAATCCCG")

	fwd, err := g.Sequence(h)
	if err != nil {
		t.Fatal(err)
	}
	if string(fwd) != "AAATCCCG" {
		t.Errorf("forward sequence = %q", fwd)
	}
	rev, err := g.Sequence(h.Flip())
	if err != nil {
		t.Fatal(err)
	}
	if string(rev) != "CGGGATTT" {
		t.Errorf("reverse sequence = %q, want CGGGATTT", rev)
	}
	t.Run("missing node", func(t *testing.T) {
		if _, err := g.Sequence(handle.MustPack(99, false)); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestSetSequence(t *testing.T) {
	g := NewGraph()
	h := mustAppend(t, g, "ACGT")

	t.Run("forward handle", func(t *testing.T) {
		if err := g.SetSequence(h, []byte("TTAGG")); err != nil {
			t.Fatal(err)
		}
		seq, _ := g.Sequence(h)
		if string(seq) != "TTAGG" {
			t.Errorf("sequence = %q, want TTAGG", seq)
		}
	})
	t.Run("reverse handle stores reverse complement", func(t *testing.T) {
		if err := g.SetSequence(h.Flip(), []byte("AAACG")); err != nil {
			t.Fatal(err)
		}
		seq, _ := g.Sequence(h.Flip())
		if string(seq) != "AAACG" {
			t.Errorf("sequence along reverse handle = %q, want AAACG", seq)
		}
		fwd, _ := g.Sequence(h)
		if string(fwd) != "CGTTT" {
			t.Errorf("forward strand = %q, want CGTTT", fwd)
		}
	})
	t.Run("total length tracks replacements", func(t *testing.T) {
		if got := g.TotalSequenceLength(); got != 5 {
			t.Errorf("TotalSequenceLength() = %d, want 5", got)
		}
	})
}

func TestEdges(t *testing.T) {
	g := NewGraph()
	a := mustAppend(t, g, "A")
	b := mustAppend(t, g, "C")
	c := mustAppend(t, g, "G")

	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}

	t.Run("both readings visible", func(t *testing.T) {
		if !g.HasEdge(a, b) {
			t.Error("HasEdge(a, b) = false")
		}
		if !g.HasEdge(b.Flip(), a.Flip()) {
			t.Error("HasEdge(flip(b), flip(a)) = false")
		}
	})
	t.Run("add is idempotent", func(t *testing.T) {
		if err := g.AddEdge(b.Flip(), a.Flip()); err != nil {
			t.Fatal(err)
		}
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
		}
	})
	t.Run("missing endpoint rejected", func(t *testing.T) {
		if err := g.AddEdge(a, handle.MustPack(99, false)); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("error = %v, want ErrNodeNotFound", err)
		}
	})
	t.Run("remove either reading", func(t *testing.T) {
		if err := g.RemoveEdge(b.Flip(), a.Flip()); err != nil {
			t.Fatal(err)
		}
		if g.HasEdge(a, b) {
			t.Error("edge still present after removal")
		}
		if err := g.RemoveEdge(a, b); !errors.Is(err, ErrEdgeNotFound) {
			t.Errorf("second removal error = %v, want ErrEdgeNotFound", err)
		}
	})
	t.Run("reversing self loop", func(t *testing.T) {
		if err := g.AddEdge(c, c.Flip()); err != nil {
			t.Fatal(err)
		}
		if !g.HasEdge(c, c.Flip()) {
			t.Error("self loop not visible")
		}
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
		}
		if err := g.RemoveEdge(c, c.Flip()); err != nil {
			t.Fatal(err)
		}
	})
}

func TestNeighbors(t *testing.T) {
	g := NewGraph()
	a := mustAppend(t, g, "A") // 1
	b := mustAppend(t, g, "C") // 2
	c := mustAppend(t, g, "G") // 3

	for _, e := range [][2]handle.Handle{
		{a, b},
		{b, c},
		{a, c.Flip()},
	} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	want := func(t *testing.T, h handle.Handle, dir handle.Direction, expect ...handle.Handle) {
		t.Helper()
		got, err := g.Neighbors(h, dir)
		if err != nil {
			t.Fatalf("Neighbors(%s, %s): %v", h, dir, err)
		}
		seen := make(map[handle.Handle]bool, len(got))
		for _, n := range got {
			seen[n] = true
		}
		if len(got) != len(expect) {
			t.Fatalf("Neighbors(%s, %s) = %v, want %v", h, dir, got, expect)
		}
		for _, e := range expect {
			if !seen[e] {
				t.Errorf("Neighbors(%s, %s) = %v, missing %s", h, dir, got, e)
			}
		}
	}

	want(t, a, Outgoing, b, c.Flip())
	want(t, b, Outgoing, c)
	want(t, b, Incoming, a)
	want(t, c, Incoming, b)
	// Edge a -> c- means a precedes the reverse traversal of c.
	want(t, c.Flip(), Incoming, a)
	// Walking c forward, that same edge leads back to a-.
	want(t, c, Outgoing, a.Flip())

	t.Run("degree matches", func(t *testing.T) {
		d, err := g.Degree(a, Outgoing)
		if err != nil {
			t.Fatal(err)
		}
		if d != 2 {
			t.Errorf("Degree(a, Outgoing) = %d, want 2", d)
		}
	})
	t.Run("missing node", func(t *testing.T) {
		if _, err := g.Neighbors(handle.MustPack(99, false), Outgoing); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestDeleteNodeCascades(t *testing.T) {
	g := NewGraph()
	a := mustAppend(t, g, "AC")
	b := mustAppend(t, g, "GT")
	c := mustAppend(t, g, "TT")
	for _, e := range [][2]handle.Handle{{a, b}, {b, c}, {a, c}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	p, err := g.CreatePath("walk", false)
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range []handle.Handle{a, b, c} {
		if _, err := g.AppendStep(p, h); err != nil {
			t.Fatal(err)
		}
	}

	if err := g.DeleteNode(b.ID()); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	t.Run("node gone", func(t *testing.T) {
		if g.HasNode(b.ID()) {
			t.Error("node still present")
		}
		if g.NodeCount() != 2 {
			t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
		}
	})
	t.Run("incident edges gone", func(t *testing.T) {
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
		}
		if !g.HasEdge(a, c) {
			t.Error("unrelated edge removed")
		}
	})
	t.Run("path skips the node", func(t *testing.T) {
		if got := pathSequence(t, g, p); got != "ACTT" {
			t.Errorf("path sequence = %q, want ACTT", got)
		}
		n, _ := g.PathStepCount(p)
		if n != 2 {
			t.Errorf("PathStepCount() = %d, want 2", n)
		}
	})
	t.Run("missing node", func(t *testing.T) {
		if err := g.DeleteNode(b.ID()); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestDeleteIsolatedNode(t *testing.T) {
	g := NewGraph()
	a := mustAppend(t, g, "A")
	b := mustAppend(t, g, "C")
	if err := g.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}

	t.Run("refuses node with edges", func(t *testing.T) {
		if err := g.DeleteIsolatedNode(a.ID()); !errors.Is(err, ErrNodeHasEdges) {
			t.Errorf("error = %v, want ErrNodeHasEdges", err)
		}
	})
	t.Run("refuses node with steps", func(t *testing.T) {
		c := mustAppend(t, g, "G")
		p, err := g.CreatePath("w", false)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.AppendStep(p, c); err != nil {
			t.Fatal(err)
		}
		if err := g.DeleteIsolatedNode(c.ID()); !errors.Is(err, ErrNodeHasSteps) {
			t.Errorf("error = %v, want ErrNodeHasSteps", err)
		}
	})
	t.Run("deletes truly isolated node", func(t *testing.T) {
		d := mustAppend(t, g, "T")
		if err := g.DeleteIsolatedNode(d.ID()); err != nil {
			t.Fatal(err)
		}
		if g.HasNode(d.ID()) {
			t.Error("node still present")
		}
	})
}

func TestDivideHandle(t *testing.T) {
	t.Run("forward multi offset", func(t *testing.T) {
		g := NewGraph()
		pre := mustAppend(t, g, "TT")
		h := mustAppend(t, g, "ABCDEFGHIJKLMNOPQ")
		post := mustAppend(t, g, "GG")
		if err := g.AddEdge(pre, h); err != nil {
			t.Fatal(err)
		}
		if err := g.AddEdge(h, post); err != nil {
			t.Fatal(err)
		}
		p, err := g.CreatePath("w", false)
		if err != nil {
			t.Fatal(err)
		}
		for _, x := range []handle.Handle{pre, h, post} {
			if _, err := g.AppendStep(p, x); err != nil {
				t.Fatal(err)
			}
		}

		parts, err := g.DivideHandle(h, 4, 14)
		if err != nil {
			t.Fatalf("DivideHandle: %v", err)
		}
		if len(parts) != 3 {
			t.Fatalf("got %d parts, want 3", len(parts))
		}
		wantSeqs := []string{"ABCD", "EFGHIJKLMN", "OPQ"}
		for i, part := range parts {
			seq, err := g.Sequence(part)
			if err != nil {
				t.Fatal(err)
			}
			if string(seq) != wantSeqs[i] {
				t.Errorf("part %d sequence = %q, want %q", i, seq, wantSeqs[i])
			}
		}
		if parts[0] != h {
			t.Errorf("first part = %s, want original handle %s", parts[0], h)
		}
		// Incoming edge stays on the first part, outgoing moves to the
		// last, and the parts are chained.
		if !g.HasEdge(pre, parts[0]) {
			t.Error("incoming edge lost")
		}
		if !g.HasEdge(parts[2], post) {
			t.Error("outgoing edge not moved to last part")
		}
		if !g.HasEdge(parts[0], parts[1]) || !g.HasEdge(parts[1], parts[2]) {
			t.Error("chain edges missing")
		}
		if got := pathSequence(t, g, p); got != "TTABCDEFGHIJKLMNOPQGG" {
			t.Errorf("path sequence = %q", got)
		}
		n, _ := g.PathStepCount(p)
		if n != 5 {
			t.Errorf("PathStepCount() = %d, want 5", n)
		}
	})

	t.Run("reverse handle", func(t *testing.T) {
		g := NewGraph()
		h := mustAppend(t, g, "AAATCCCG")
		p, err := g.CreatePath("w", false)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.AppendStep(p, h.Flip()); err != nil {
			t.Fatal(err)
		}

		parts, err := g.DivideHandle(h.Flip(), 4)
		if err != nil {
			t.Fatalf("DivideHandle: %v", err)
		}
		if len(parts) != 2 {
			t.Fatalf("got %d parts, want 2", len(parts))
		}
		var got []byte
		for _, part := range parts {
			seq, err := g.Sequence(part)
			if err != nil {
				t.Fatal(err)
			}
			got = append(got, seq...)
		}
		if string(got) != "CGGGATTT" {
			t.Errorf("concatenated parts = %q, want CGGGATTT", got)
		}
		if got := pathSequence(t, g, p); got != "CGGGATTT" {
			t.Errorf("path sequence = %q, want CGGGATTT", got)
		}
	})

	t.Run("bad offsets", func(t *testing.T) {
		g := NewGraph()
		h := mustAppend(t, g, "ACGT")
		for _, offsets := range [][]int{{0}, {4}, {5}, {-1}, {2, 2}, {3, 1}} {
			if _, err := g.DivideHandle(h, offsets...); !errors.Is(err, ErrOffsetOutOfRange) {
				t.Errorf("DivideHandle(%v) error = %v, want ErrOffsetOutOfRange", offsets, err)
			}
		}
		// A failed divide must not change the graph.
		if g.NodeCount() != 1 {
			t.Errorf("NodeCount() = %d after failed divides, want 1", g.NodeCount())
		}
		seq, _ := g.Sequence(h)
		if string(seq) != "ACGT" {
			t.Errorf("sequence changed after failed divides: %q", seq)
		}
	})

	t.Run("no offsets is a no-op", func(t *testing.T) {
		g := NewGraph()
		h := mustAppend(t, g, "ACGT")
		parts, err := g.DivideHandle(h)
		if err != nil {
			t.Fatal(err)
		}
		if len(parts) != 1 || parts[0] != h {
			t.Errorf("parts = %v, want [%s]", parts, h)
		}
	})
}

func TestApplyOrientation(t *testing.T) {
	g := NewGraph()
	a := mustAppend(t, g, "TT")
	b := mustAppend(t, g, "AAATC")
	c := mustAppend(t, g, "GG")
	if err := g.AddEdge(a, b.Flip()); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(b.Flip(), c); err != nil {
		t.Fatal(err)
	}
	p, err := g.CreatePath("w", false)
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range []handle.Handle{a, b.Flip(), c} {
		if _, err := g.AppendStep(p, h); err != nil {
			t.Fatal(err)
		}
	}
	before := pathSequence(t, g, p)

	nh, err := g.ApplyOrientation(b.Flip())
	if err != nil {
		t.Fatalf("ApplyOrientation: %v", err)
	}
	if nh.IsReverse() {
		t.Error("returned handle should be forward")
	}
	if nh.ID() != b.ID() {
		t.Errorf("returned handle on node %d, want %d", nh.ID(), b.ID())
	}

	t.Run("forward strand rewritten", func(t *testing.T) {
		seq, _ := g.Sequence(nh)
		if string(seq) != "GATTT" {
			t.Errorf("sequence = %q, want GATTT", seq)
		}
	})
	t.Run("edges preserved", func(t *testing.T) {
		if !g.HasEdge(a, nh) || !g.HasEdge(nh, c) {
			t.Error("edges not rewritten to the new orientation")
		}
		if g.EdgeCount() != 2 {
			t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
		}
	})
	t.Run("path sequence unchanged", func(t *testing.T) {
		if got := pathSequence(t, g, p); got != before {
			t.Errorf("path sequence = %q, want %q", got, before)
		}
	})
	t.Run("steps now forward", func(t *testing.T) {
		steps, _ := g.StepsOn(nh)
		for _, st := range steps {
			if st.Handle.IsReverse() {
				t.Errorf("step %d still reverse", st.ID)
			}
		}
	})
	t.Run("forward handle is a no-op", func(t *testing.T) {
		got, err := g.ApplyOrientation(nh)
		if err != nil || got != nh {
			t.Errorf("ApplyOrientation(forward) = %s, %v", got, err)
		}
	})
}

func TestCapacityLimits(t *testing.T) {
	t.Run("max nodes", func(t *testing.T) {
		g := NewGraph(WithMaxNodes(2))
		mustAppend(t, g, "A")
		mustAppend(t, g, "C")
		if _, err := g.AppendHandle([]byte("G")); !errors.Is(err, ErrMaxNodesExceeded) {
			t.Errorf("error = %v, want ErrMaxNodesExceeded", err)
		}
	})
	t.Run("max edges", func(t *testing.T) {
		g := NewGraph(WithMaxEdges(1))
		a := mustAppend(t, g, "A")
		b := mustAppend(t, g, "C")
		c := mustAppend(t, g, "G")
		if err := g.AddEdge(a, b); err != nil {
			t.Fatal(err)
		}
		if err := g.AddEdge(b, c); !errors.Is(err, ErrMaxEdgesExceeded) {
			t.Errorf("error = %v, want ErrMaxEdgesExceeded", err)
		}
		// Re-adding the existing edge is still a no-op, not an error.
		if err := g.AddEdge(a, b); err != nil {
			t.Errorf("idempotent re-add failed at cap: %v", err)
		}
	})
}

func TestIDRecycling(t *testing.T) {
	t.Run("off by default", func(t *testing.T) {
		g := NewGraph()
		a := mustAppend(t, g, "A")
		mustAppend(t, g, "C")
		if err := g.DeleteNode(a.ID()); err != nil {
			t.Fatal(err)
		}
		h := mustAppend(t, g, "G")
		if h.ID() != 3 {
			t.Errorf("got id %d, want 3 (no reuse)", h.ID())
		}
	})
	t.Run("reuses smallest freed id", func(t *testing.T) {
		g := NewGraph(WithIDRecycling())
		a := mustAppend(t, g, "A")
		b := mustAppend(t, g, "C")
		mustAppend(t, g, "G")
		if err := g.DeleteNode(b.ID()); err != nil {
			t.Fatal(err)
		}
		if err := g.DeleteNode(a.ID()); err != nil {
			t.Fatal(err)
		}
		h := mustAppend(t, g, "T")
		if h.ID() != a.ID() {
			t.Errorf("got id %d, want recycled %d", h.ID(), a.ID())
		}
	})
}

func TestStats(t *testing.T) {
	g := NewGraph()
	if g.MinNodeID() != 0 || g.MaxNodeID() != 0 {
		t.Error("empty graph should report zero bounds")
	}
	mustAppend(t, g, "ACGT")
	if _, err := g.CreateHandle([]byte("TT"), 7); err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if g.TotalSequenceLength() != 6 {
		t.Errorf("TotalSequenceLength() = %d, want 6", g.TotalSequenceLength())
	}
	if g.MinNodeID() != 1 || g.MaxNodeID() != 7 {
		t.Errorf("ID bounds = [%d, %d], want [1, 7]", g.MinNodeID(), g.MaxNodeID())
	}

	t.Run("handles iterate in id order", func(t *testing.T) {
		var ids []handle.NodeID
		for h := range g.Handles() {
			ids = append(ids, h.ID())
		}
		if len(ids) != 2 || ids[0] != 1 || ids[1] != 7 {
			t.Errorf("Handles() ids = %v, want [1 7]", ids)
		}
	})
	t.Run("early break", func(t *testing.T) {
		n := 0
		for range g.Handles() {
			n++
			break
		}
		if n != 1 {
			t.Errorf("iterated %d handles after break, want 1", n)
		}
	})
}
