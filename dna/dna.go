// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dna provides nucleotide complement and reverse-complement
// helpers over raw byte sequences.
//
// The complement covers the full IUPAC ambiguity alphabet and preserves
// case. Bytes outside the alphabet map to themselves, so arbitrary
// sequences round-trip through ReverseComplement without loss.
package dna

// complement maps each byte to its IUPAC complement. Built once at init.
var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	pairs := []struct{ a, b byte }{
		{'A', 'T'},
		{'G', 'C'},
		{'Y', 'R'},
		{'K', 'M'},
		{'D', 'H'},
		{'V', 'B'},
	}
	for _, p := range pairs {
		complement[p.a] = p.b
		complement[p.b] = p.a
		lowerA, lowerB := p.a+'a'-'A', p.b+'a'-'A'
		complement[lowerA] = lowerB
		complement[lowerB] = lowerA
	}
	// W, S, N and their lowercase forms are self-complementary and already
	// identity-mapped.
}

// Complement returns the IUPAC complement of a single nucleotide byte.
func Complement(b byte) byte {
	return complement[b]
}

// ReverseComplement returns a new slice holding the reverse complement of
// seq. The input is not modified.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complement[b]
	}
	return out
}

// ReverseComplementInPlace reverses and complements seq in place.
func ReverseComplementInPlace(seq []byte) {
	i, j := 0, len(seq)-1
	for i < j {
		seq[i], seq[j] = complement[seq[j]], complement[seq[i]]
		i++
		j--
	}
	if i == j {
		seq[i] = complement[seq[i]]
	}
}
