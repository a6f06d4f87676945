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
	"runtime"
	"sync"

	"github.com/AleutianAI/vargraph/handle"
)

const (
	// parallelThreshold is the node count below which ForEachHandleParallel
	// runs sequentially. Spawning workers for tiny graphs costs more than
	// it saves.
	parallelThreshold = 64

	// maxParallelWorkers bounds the worker pool regardless of GOMAXPROCS.
	maxParallelWorkers = 8
)

// ForEachHandle calls fn on the forward handle of every node, in
// ascending ID order, over a snapshot taken at call time. Iteration stops
// at the first error, which is returned.
func (g *Graph) ForEachHandle(fn func(handle.Handle) error) error {
	for h := range g.Handles() {
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

// ForEachHandleParallel calls fn on the forward handle of every node,
// spread across a bounded worker pool, over a snapshot taken at call
// time. Order is unspecified. The first error cancels the remaining
// work and is returned, as is ctx's error if the context is done first.
//
// fn runs outside the graph's lock and may read the graph, but must not
// mutate it: mutations would deadlock against a concurrent exclusive
// lock or observe the snapshot drifting from the live graph.
func (g *Graph) ForEachHandleParallel(ctx context.Context, fn func(handle.Handle) error) error {
	g.mu.RLock()
	ids := g.nodes.ids()
	g.mu.RUnlock()

	if len(ids) < parallelThreshold {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(handle.MustPack(id, false)); err != nil {
				return err
			}
		}
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > maxParallelWorkers {
		workers = maxParallelWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan handle.NodeID)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for id := range work {
				if ctx.Err() != nil {
					return
				}
				if err := fn(handle.MustPack(id, false)); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		select {
		case work <- id:
		case <-ctx.Done():
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
