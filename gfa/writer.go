// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gfa

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/AleutianAI/vargraph/graph"
	"github.com/AleutianAI/vargraph/handle"
)

// Write serializes the graph as GFA 1.0. Output is deterministic:
// segments in ascending ID order, links sorted by their canonical
// endpoints, paths in name order.
func Write(w io.Writer, g Source) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, "H\tVN:Z:1.0"); err != nil {
		return err
	}

	for h := range g.Handles() {
		seq, err := g.Sequence(h)
		if err != nil {
			return fmt.Errorf("segment %d: %w", h.ID(), err)
		}
		if _, err := fmt.Fprintf(bw, "S\t%d\t%s\n", h.ID(), seq); err != nil {
			return err
		}
	}

	edges := make([]handle.Edge, 0)
	for e := range g.Edges() {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		if _, err := fmt.Fprintf(bw, "L\t%d\t%s\t%d\t%s\t0M\n",
			e.From.ID(), orientSign(e.From), e.To.ID(), orientSign(e.To)); err != nil {
			return err
		}
	}

	type namedPath struct {
		id   graph.PathID
		name string
	}
	var paths []namedPath
	for id, name := range g.Paths() {
		paths = append(paths, namedPath{id: id, name: name})
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].name < paths[j].name })
	for _, p := range paths {
		steps, err := g.Steps(p.id)
		if err != nil {
			return fmt.Errorf("path %q: %w", p.name, err)
		}
		visits := make([]string, len(steps))
		for i, st := range steps {
			visits[i] = fmt.Sprintf("%d%s", st.Handle.ID(), orientSign(st.Handle))
		}
		visitField := strings.Join(visits, ",")
		if visitField == "" {
			visitField = "*"
		}
		if _, err := fmt.Fprintf(bw, "P\t%s\t%s\t*\n", p.name, visitField); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func orientSign(h handle.Handle) string {
	if h.IsReverse() {
		return "-"
	}
	return "+"
}
