// internal/kmer/scanner.go
package kmer

// Scanner slides a k-wide window over a sequence, one position per Next.
// It is finite and not restartable; do not share it between goroutines.
type Scanner struct {
	p      Params
	seq    []byte
	pos    int // next byte to load
	loaded int // bases currently in the window
	kmer   uint64
	ambig  uint32 // bit i set: i-th most recent base is ambiguous
}

// NewScanner returns a scanner over seq. Sequences shorter than k yield
// nothing.
func (p Params) NewScanner(seq []byte) *Scanner {
	return &Scanner{p: p, seq: seq}
}

// Next advances to the following window. It returns false once the
// sequence is exhausted.
func (s *Scanner) Next() bool {
	if s.loaded > 0 {
		s.loaded--
	}
	for s.loaded < s.p.k {
		if s.pos >= len(s.seq) {
			return false
		}
		c, ok := Code(s.seq[s.pos])
		s.pos++
		s.kmer = (s.kmer<<2 | c) & s.p.mask
		s.ambig <<= 1
		if !ok {
			s.ambig |= 1
		}
		s.ambig &= s.p.ambigMsk
		s.loaded++
	}
	return true
}

// Kmer is the packed current window.
func (s *Scanner) Kmer() uint64 { return s.kmer }

// Ambiguous reports whether the current window holds a non-ACGT base.
func (s *Scanner) Ambiguous() bool { return s.ambig != 0 }

// Windows is the number of windows a sequence of length n yields at width k.
func (p Params) Windows(n int) int {
	if n < p.k {
		return 0
	}
	return n - p.k + 1
}
