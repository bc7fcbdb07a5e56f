// internal/seed/seed.go

// Package seed projects raw k-mers onto a spaced-seed pattern.
//
// The projection is defined once (Pattern.Squash); the database builder and
// the read classifier must both go through it or lookups silently miss.
package seed

import (
	"strings"

	"github.com/pkg/errors"

	"kclassify/internal/kmer"
)

// MaskChar marks an included position in a pattern string.
const MaskChar = '#'

type run struct {
	shift uint   // right shift that brings the run to bit 0
	mask  uint64 // 2*len bits
	width uint   // 2*len
}

// Pattern is a compiled spaced seed. It is immutable and safe for
// concurrent use.
type Pattern struct {
	text   string
	span   int
	weight int
	runs   []run
}

// Compile parses a pattern such as "##_#_###". Its length is the span k
// and must not exceed kmer.MaxK; at least one position must be included.
func Compile(text string) (*Pattern, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty spaced seed")
	}
	k := len(text)
	if k > kmer.MaxK {
		return nil, errors.Errorf("spaced seed %q spans %d positions, max %d", text, k, kmer.MaxK)
	}
	p := &Pattern{text: text, span: k}
	for i := 0; i < k; {
		if text[i] != MaskChar {
			i++
			continue
		}
		j := i
		for j+1 < k && text[j+1] == MaskChar {
			j++
		}
		n := uint(j - i + 1)
		r := run{shift: 2 * uint(k-1-j), width: 2 * n}
		if r.width == 64 {
			r.mask = ^uint64(0)
		} else {
			r.mask = (uint64(1) << r.width) - 1
		}
		p.runs = append(p.runs, r)
		p.weight += int(n)
		i = j + 1
	}
	if p.weight == 0 {
		return nil, errors.Errorf("spaced seed %q selects no positions (use %q)", text, MaskChar)
	}
	return p, nil
}

// String returns the pattern text.
func (p *Pattern) String() string { return p.text }

// Span is the raw window width k.
func (p *Pattern) Span() int { return p.span }

// Weight is the number of included positions, i.e. the squashed width.
func (p *Pattern) Weight() int { return p.weight }

// Squash keeps the base fields at included positions and repacks them
// contiguously, left to right.
func (p *Pattern) Squash(raw uint64) uint64 {
	var out uint64
	for _, r := range p.runs {
		out = out<<r.width | (raw>>r.shift)&r.mask
	}
	return out
}

// SquashForRead is the query-side projection.
func (p *Pattern) SquashForRead(raw uint64) uint64 { return p.Squash(raw) }

// SquashForIndex is the build-side projection. It is Squash by definition.
func (p *Pattern) SquashForIndex(raw uint64) uint64 { return p.Squash(raw) }
