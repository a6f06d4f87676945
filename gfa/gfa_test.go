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
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/vargraph/graph"
	"github.com/AleutianAI/vargraph/handle"
)

const sampleGFA = `H	VN:Z:1.0
S	1	CAAATAAG
S	2	A
S	3	G
S	4	T
L	1	+	2	+	0M
L	1	+	3	+	0M
L	2	+	4	+	0M
L	3	+	4	-	0M
P	ref	1+,2+,4+	*
P	alt	1+,3+,4-	*
`

func TestRead(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleGFA))
	require.NoError(t, err)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, 2, g.PathCount())

	seq, err := g.Sequence(handle.MustPack(1, false))
	require.NoError(t, err)
	assert.Equal(t, "CAAATAAG", string(seq))

	assert.True(t, g.HasEdge(handle.MustPack(3, false), handle.MustPack(4, true)))

	ref, ok := g.PathByName("ref")
	require.True(t, ok)
	steps, err := g.Steps(ref)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, handle.MustPack(4, false), steps[2].Handle)

	alt, ok := g.PathByName("alt")
	require.True(t, ok)
	steps, err = g.Steps(alt)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, handle.MustPack(4, true), steps[2].Handle)
}

func TestReadForwardReferences(t *testing.T) {
	// Links and paths may reference segments defined later in the file.
	const input = "L\t1\t+\t2\t+\t0M\nP\tw\t1+,2+\t*\nS\t1\tAC\nS\t2\tGT\n"
	g, err := ReadGraph(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestReadSkipsUnknownRecords(t *testing.T) {
	const input = "# comment\nS\t1\tAC\nC\tcontainment line\nW\twalk line\n"
	g, err := ReadGraph(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())
}

func TestReadEmptyPath(t *testing.T) {
	const input = "S\t1\tAC\nP\tempty\t*\t*\n"
	g, err := ReadGraph(strings.NewReader(input))
	require.NoError(t, err)
	p, ok := g.PathByName("empty")
	require.True(t, ok)
	n, err := g.PathStepCount(p)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReadErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"truncated segment", "S\t1\n", ErrMalformedRecord},
		{"missing sequence", "S\t1\t*\n", ErrMalformedRecord},
		{"non numeric segment", "S\tchr1\tACGT\n", ErrBadSegmentName},
		{"zero segment id", "S\t0\tACGT\n", ErrBadSegmentName},
		{"truncated link", "L\t1\t+\t2\n", ErrMalformedRecord},
		{"bad orientation", "S\t1\tA\nS\t2\tC\nL\t1\t+\t2\t?\t0M\n", ErrBadOrientation},
		{"truncated path", "P\tref\n", ErrMalformedRecord},
		{"bad path visit", "S\t1\tA\nP\tref\t1?\t*\n", ErrBadOrientation},
		{"duplicate segment", "S\t1\tA\nS\t1\tC\n", graph.ErrDuplicateNode},
		{"duplicate path name", "S\t1\tA\nP\tref\t1+\t*\nP\tref\t1+\t*\n", graph.ErrDuplicatePathName},
		{"link to unknown segment", "S\t1\tA\nL\t1\t+\t9\t+\t0M\n", graph.ErrNodeNotFound},
		{"visit to unknown segment", "S\t1\tA\nP\tref\t9+\t*\n", graph.ErrNodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestWrite(t *testing.T) {
	g := graph.NewGraph()
	a, err := g.CreateHandle([]byte("AC"), 1)
	require.NoError(t, err)
	b, err := g.CreateHandle([]byte("GT"), 2)
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(a, b))
	p, err := g.CreatePath("ref", false)
	require.NoError(t, err)
	_, err = g.AppendStep(p, a)
	require.NoError(t, err)
	_, err = g.AppendStep(p, b.Flip())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))

	want := "H\tVN:Z:1.0\n" +
		"S\t1\tAC\n" +
		"S\t2\tGT\n" +
		"L\t1\t+\t2\t+\t0M\n" +
		"P\tref\t1+,2-\t*\n"
	assert.Equal(t, want, buf.String())
}

func TestRoundTrip(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleGFA))
	require.NoError(t, err)

	var first bytes.Buffer
	require.NoError(t, Write(&first, g))
	firstOut := first.String()

	g2, err := ReadGraph(&first)
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, Write(&second, g2))

	assert.Equal(t, firstOut, second.String())
	assert.Equal(t, g.NodeCount(), g2.NodeCount())
	assert.Equal(t, g.EdgeCount(), g2.EdgeCount())
	assert.Equal(t, g.PathCount(), g2.PathCount())
}
