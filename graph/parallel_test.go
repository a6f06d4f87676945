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
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/AleutianAI/vargraph/handle"
)

func TestForEachHandle(t *testing.T) {
	g := NewGraph()
	for i := 0; i < 5; i++ {
		mustAppend(t, g, "ACGT")
	}

	t.Run("visits every node in order", func(t *testing.T) {
		var ids []handle.NodeID
		err := g.ForEachHandle(func(h handle.Handle) error {
			ids = append(ids, h.ID())
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(ids) != 5 {
			t.Fatalf("visited %d nodes, want 5", len(ids))
		}
		for i := 1; i < len(ids); i++ {
			if ids[i] <= ids[i-1] {
				t.Fatalf("ids not ascending: %v", ids)
			}
		}
	})
	t.Run("stops on error", func(t *testing.T) {
		sentinel := errors.New("stop")
		n := 0
		err := g.ForEachHandle(func(handle.Handle) error {
			n++
			if n == 2 {
				return sentinel
			}
			return nil
		})
		if !errors.Is(err, sentinel) {
			t.Errorf("error = %v, want sentinel", err)
		}
		if n != 2 {
			t.Errorf("visited %d nodes after error, want 2", n)
		}
	})
}

func TestForEachHandleParallel(t *testing.T) {
	g := NewGraph()
	const nodes = 500
	for i := 0; i < nodes; i++ {
		mustAppend(t, g, "ACGT")
	}

	t.Run("visits every node once", func(t *testing.T) {
		var visited atomic.Int64
		err := g.ForEachHandleParallel(context.Background(), func(h handle.Handle) error {
			visited.Add(1)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if visited.Load() != nodes {
			t.Errorf("visited %d nodes, want %d", visited.Load(), nodes)
		}
	})
	t.Run("first error wins", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := g.ForEachHandleParallel(context.Background(), func(h handle.Handle) error {
			if h.ID() == 250 {
				return fmt.Errorf("node %d: %w", h.ID(), sentinel)
			}
			return nil
		})
		if !errors.Is(err, sentinel) {
			t.Errorf("error = %v, want sentinel", err)
		}
	})
	t.Run("respects cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := g.ForEachHandleParallel(ctx, func(handle.Handle) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
	t.Run("small graphs run sequentially", func(t *testing.T) {
		small := NewGraph()
		mustAppend(t, small, "A")
		var n int
		if err := small.ForEachHandleParallel(context.Background(), func(handle.Handle) error {
			n++
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("visited %d, want 1", n)
		}
	})
}
