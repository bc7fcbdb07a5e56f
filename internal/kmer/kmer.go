// internal/kmer/kmer.go

// Package kmer packs nucleotide windows into 2-bit integers.
//
// Bases map to A=0, C=1, G=2, T=3 so that complementary bases are bitwise
// complements of each other. The first base of a window occupies the most
// significant occupied field.
package kmer

import (
	"github.com/pkg/errors"
	"github.com/shenwei356/kmers"
)

// MaxK is the widest window that fits one uint64.
const MaxK = 32

// Params holds the width-dependent masks for a fixed k. Build it once with
// New and share it; it is immutable.
type Params struct {
	k        int
	mask     uint64 // low 2k bits
	ambigMsk uint32 // low k bits
}

// New validates k and precomputes the masks used by scanners built from it.
func New(k int) (Params, error) {
	if k < 1 || k > MaxK {
		return Params{}, errors.Errorf("k must be in [1,%d], got %d", MaxK, k)
	}
	p := Params{k: k}
	if k == MaxK {
		p.mask = ^uint64(0)
		p.ambigMsk = ^uint32(0)
	} else {
		p.mask = (uint64(1) << (2 * uint(k))) - 1
		p.ambigMsk = (uint32(1) << uint(k)) - 1
	}
	return p, nil
}

// K returns the window width.
func (p Params) K() int { return p.k }

// Mask returns the low 2k bit mask.
func (p Params) Mask() uint64 { return p.mask }

// ReverseComplement reverses the 2-bit fields of kmer, complements every
// base and keeps the low 2k bits. It is an involution on masked values and
// agrees with kmers.RevComp; the branch-free swap runs once per window.
func (p Params) ReverseComplement(kmer uint64) uint64 {
	kmer = ((kmer >> 2) & 0x3333333333333333) | ((kmer & 0x3333333333333333) << 2)
	kmer = ((kmer >> 4) & 0x0F0F0F0F0F0F0F0F) | ((kmer & 0x0F0F0F0F0F0F0F0F) << 4)
	kmer = ((kmer >> 8) & 0x00FF00FF00FF00FF) | ((kmer & 0x00FF00FF00FF00FF) << 8)
	kmer = ((kmer >> 16) & 0x0000FFFF0000FFFF) | ((kmer & 0x0000FFFF0000FFFF) << 16)
	kmer = (kmer >> 32) | (kmer << 32)
	return (^kmer) >> (64 - 2*uint(p.k))
}

// Canonical returns the smaller of kmer and its reverse complement.
func (p Params) Canonical(kmer uint64) uint64 {
	return kmers.Canonical(kmer&p.mask, p.k)
}

// Code returns the 2-bit code of b and whether b is an unambiguous base.
// Lowercase a/c/g/t are accepted; every other byte is ambiguous.
func Code(b byte) (uint64, bool) {
	switch b {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	default:
		return 0, false
	}
}

// Pack encodes seq (1 ≤ len ≤ MaxK) into a k-mer; ok is false if any base
// is ambiguous. Only A/C/G/T in either case count as bases.
func Pack(seq []byte) (kmer uint64, ok bool) {
	for _, b := range seq {
		if _, good := Code(b); !good {
			return 0, false
		}
	}
	kmer, err := kmers.Encode(seq)
	if err != nil {
		return 0, false
	}
	return kmer, true
}

// Unpack renders the low 2k bits of kmer as an upper-case ACGT string.
func Unpack(kmer uint64, k int) string {
	return string(kmers.MustDecode(kmer, k))
}
