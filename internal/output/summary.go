// internal/output/summary.go
package output

import (
	"fmt"
	"io"
	"time"
)

// Summary is the end-of-run tally.
type Summary struct {
	Sequences  uint64
	Bases      uint64
	Classified uint64
	Elapsed    time.Duration
}

// WriteSummary prints counts, timing and throughput in the classic
// three-line form.
func WriteSummary(w io.Writer, s Summary) error {
	secs := s.Elapsed.Seconds()
	var seqRate, bpRate float64
	if secs > 0 {
		seqRate = float64(s.Sequences) / 1e3 / (secs / 60)
		bpRate = float64(s.Bases) / 1e6 / (secs / 60)
	}
	unclassified := s.Sequences - s.Classified
	_, err := fmt.Fprintf(w,
		"%d sequences (%.2f Mbp) processed in %.3fs (%.1f Kseq/m, %.2f Mbp/m).\n"+
			"  %d sequences classified (%.2f%%)\n"+
			"  %d sequences unclassified (%.2f%%)\n",
		s.Sequences, float64(s.Bases)/1e6, secs, seqRate, bpRate,
		s.Classified, percent(s.Classified, s.Sequences),
		unclassified, percent(unclassified, s.Sequences),
	)
	return err
}

func percent(n, of uint64) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) * 100 / float64(of)
}
