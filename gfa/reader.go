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
	"strconv"
	"strings"

	"github.com/AleutianAI/vargraph/graph"
	"github.com/AleutianAI/vargraph/handle"
)

// maxLineBytes bounds a single GFA line. Segment sequences can be long,
// so this is generous.
const maxLineBytes = 64 << 20

type segmentRec struct {
	line int
	id   handle.NodeID
	seq  string
}

type linkRec struct {
	line int
	from handle.Handle
	to   handle.Handle
}

type pathRec struct {
	line   int
	name   string
	visits []handle.Handle
}

// Read parses GFA 1.0 from r and builds the graph through g. Records are
// applied segments first, then links, then paths, so a link or path may
// reference a segment defined later in the file.
//
// Errors:
//
//	ErrMalformedRecord, ErrBadSegmentName, ErrBadOrientation - parse
//	  failures, each wrapped with the offending line number.
//	graph errors - duplicate segment IDs, duplicate path names, or links
//	  and visits referencing segments the file never defines.
func Read(r io.Reader, g Builder) error {
	var (
		segments []segmentRec
		links    []linkRec
		paths    []pathRec
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "H":
			// Header tags carry no graph content.
		case "S":
			rec, err := parseSegment(fields, lineNo)
			if err != nil {
				return err
			}
			segments = append(segments, rec)
		case "L":
			rec, err := parseLink(fields, lineNo)
			if err != nil {
				return err
			}
			links = append(links, rec)
		case "P":
			rec, err := parsePath(fields, lineNo)
			if err != nil {
				return err
			}
			paths = append(paths, rec)
		default:
			// Containments, walks, and custom records are out of scope.
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading GFA: %w", err)
	}

	for _, s := range segments {
		if _, err := g.CreateHandle([]byte(s.seq), s.id); err != nil {
			return fmt.Errorf("line %d: %w", s.line, err)
		}
	}
	for _, l := range links {
		if err := g.AddEdge(l.from, l.to); err != nil {
			return fmt.Errorf("line %d: %w", l.line, err)
		}
	}
	for _, p := range paths {
		pid, err := g.CreatePath(p.name, false)
		if err != nil {
			return fmt.Errorf("line %d: %w", p.line, err)
		}
		for _, h := range p.visits {
			if _, err := g.AppendStep(pid, h); err != nil {
				return fmt.Errorf("line %d: %w", p.line, err)
			}
		}
	}
	return nil
}

func parseSegment(fields []string, line int) (segmentRec, error) {
	if len(fields) < 3 {
		return segmentRec{}, fmt.Errorf("line %d: %w: S record needs name and sequence",
			line, ErrMalformedRecord)
	}
	id, err := parseSegmentName(fields[1], line)
	if err != nil {
		return segmentRec{}, err
	}
	seq := fields[2]
	if seq == "" || seq == "*" {
		return segmentRec{}, fmt.Errorf("line %d: %w: segment %d has no sequence",
			line, ErrMalformedRecord, id)
	}
	return segmentRec{line: line, id: id, seq: seq}, nil
}

func parseLink(fields []string, line int) (linkRec, error) {
	if len(fields) < 5 {
		return linkRec{}, fmt.Errorf("line %d: %w: L record needs two oriented segments",
			line, ErrMalformedRecord)
	}
	from, err := parseOriented(fields[1], fields[2], line)
	if err != nil {
		return linkRec{}, err
	}
	to, err := parseOriented(fields[3], fields[4], line)
	if err != nil {
		return linkRec{}, err
	}
	return linkRec{line: line, from: from, to: to}, nil
}

func parsePath(fields []string, line int) (pathRec, error) {
	if len(fields) < 3 {
		return pathRec{}, fmt.Errorf("line %d: %w: P record needs a name and visits",
			line, ErrMalformedRecord)
	}
	name := fields[1]
	if name == "" {
		return pathRec{}, fmt.Errorf("line %d: %w: empty path name", line, ErrMalformedRecord)
	}
	rec := pathRec{line: line, name: name}
	if fields[2] == "" || fields[2] == "*" {
		// An empty visit list is a declared-but-empty path.
		return rec, nil
	}
	for _, visit := range strings.Split(fields[2], ",") {
		if len(visit) < 2 {
			return pathRec{}, fmt.Errorf("line %d: %w: path visit %q",
				line, ErrMalformedRecord, visit)
		}
		orient := visit[len(visit)-1:]
		id, err := parseSegmentName(visit[:len(visit)-1], line)
		if err != nil {
			return pathRec{}, err
		}
		h, err := orientedHandle(id, orient, line)
		if err != nil {
			return pathRec{}, err
		}
		rec.visits = append(rec.visits, h)
	}
	return rec, nil
}

func parseSegmentName(name string, line int) (handle.NodeID, error) {
	id, err := strconv.ParseUint(name, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("line %d: %w: %q", line, ErrBadSegmentName, name)
	}
	return handle.NodeID(id), nil
}

func parseOriented(name, orient string, line int) (handle.Handle, error) {
	id, err := parseSegmentName(name, line)
	if err != nil {
		return 0, err
	}
	return orientedHandle(id, orient, line)
}

func orientedHandle(id handle.NodeID, orient string, line int) (handle.Handle, error) {
	var reverse bool
	switch orient {
	case "+":
		reverse = false
	case "-":
		reverse = true
	default:
		return 0, fmt.Errorf("line %d: %w: %q", line, ErrBadOrientation, orient)
	}
	h, err := handle.Pack(id, reverse)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", line, err)
	}
	return h, nil
}

// ReadGraph is a convenience wrapper that builds a fresh graph from GFA.
func ReadGraph(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	g := graph.NewGraph(opts...)
	if err := Read(r, g); err != nil {
		return nil, err
	}
	return g, nil
}
