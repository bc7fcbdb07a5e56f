// internal/engine/classify.go
package engine

import (
	"kclassify/internal/krakendb"
	"kclassify/internal/taxonomy"
)

// Strand is the outcome of scanning one strand of a read.
type Strand struct {
	Taxa  []uint32 // per window, left to right; 0 when ambiguous or missed
	Ambig []bool   // per window
	Hits  map[uint32]uint32
	Total uint32 // sum of Hits
	Last  uint32 // taxon of the most recent hit
	Call  uint32
}

// Result is the classification of one read.
type Result struct {
	Call    uint32
	Length  int
	Forward Strand
	Reverse Strand
	// ReverseChosen is set when the antisense strand supplied Call.
	ReverseChosen bool
}

// Chosen returns the strand that supplied the call.
func (r *Result) Chosen() *Strand {
	if r.ReverseChosen {
		return &r.Reverse
	}
	return &r.Forward
}

// Classified reports whether the read got a nonzero call.
func (r *Result) Classified() bool { return r.Call != 0 }

// Classify runs both strand scans over seq and resolves the call.
func (e *Engine) Classify(seq []byte) Result {
	res := Result{Length: len(seq)}
	res.Forward = e.scanStrand(seq, identity)
	res.Reverse = e.scanStrand(seq, e.kp.ReverseComplement)

	fwd, rev := &res.Forward, &res.Reverse
	switch e.cfg.Mode {
	case Quick:
		fwd.Call = quickCall(fwd, e.cfg.MinHits)
		rev.Call = quickCall(rev, e.cfg.MinHits)
		res.ReverseChosen = rev.Total > fwd.Total
	case Combined:
		merged := make(map[uint32]uint32, len(fwd.Hits)+len(rev.Hits))
		for t, c := range fwd.Hits {
			merged[t] += c
		}
		for t, c := range rev.Hits {
			merged[t] += c
		}
		fwd.Call = taxonomy.ResolveTree(merged, e.cfg.Taxonomy)
		rev.Call = 0
	default:
		if rev.Total > fwd.Total {
			rev.Call = taxonomy.ResolveTree(rev.Hits, e.cfg.Taxonomy)
			res.ReverseChosen = true
		} else {
			fwd.Call = taxonomy.ResolveTree(fwd.Hits, e.cfg.Taxonomy)
		}
	}
	res.Call = res.Chosen().Call
	return res
}

func identity(x uint64) uint64 { return x }

func quickCall(s *Strand, min uint32) uint32 {
	if s.Total >= min {
		return s.Last
	}
	return 0
}

// scanStrand walks every window of seq, applies transform to the raw
// k-mer, squashes it and queries the oracle. The trace is recorded for
// every window whether or not it hits.
func (e *Engine) scanStrand(seq []byte, transform func(uint64) uint64) Strand {
	n := e.kp.Windows(len(seq))
	st := Strand{
		Taxa:  make([]uint32, 0, n),
		Ambig: make([]bool, 0, n),
		Hits:  make(map[uint32]uint32),
	}
	if n == 0 {
		return st
	}
	quick := e.cfg.Mode == Quick
	var cur krakendb.Cursor
	sc := e.kp.NewScanner(seq)
	for sc.Next() {
		if sc.Ambiguous() {
			st.Taxa = append(st.Taxa, 0)
			st.Ambig = append(st.Ambig, true)
			continue
		}
		taxon, ok := e.db.Query(e.cfg.Seed.SquashForRead(transform(sc.Kmer())), &cur)
		if !ok {
			taxon = 0
		}
		st.Taxa = append(st.Taxa, taxon)
		st.Ambig = append(st.Ambig, false)
		if taxon == 0 {
			continue
		}
		st.Hits[taxon]++
		st.Total++
		st.Last = taxon
		if quick && st.Total >= e.cfg.MinHits {
			break
		}
	}
	return st
}
