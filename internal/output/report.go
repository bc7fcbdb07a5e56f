// internal/output/report.go

// Package output renders classification results: the per-read report line,
// re-emitted FASTA/FASTQ records and the end-of-run summary.
package output

import (
	"strconv"

	"kclassify/internal/engine"
)

// Status codes that open every report line.
const (
	StatusClassified   = 'C'
	StatusUnclassified = 'U'
)

// AppendHitList appends the run-length encoded trace of one strand:
// space-separated "<taxon>:<run>" items, with ambiguous windows collapsed to
// "A:<run>". A strand with no windows encodes as "0:0".
func AppendHitList(buf []byte, taxa []uint32, ambig []bool) []byte {
	if len(taxa) == 0 {
		return append(buf, "0:0"...)
	}
	const ambigCode = -1
	code := func(i int) int64 {
		if ambig[i] {
			return ambigCode
		}
		return int64(taxa[i])
	}
	emit := func(c int64, n int) {
		if c == ambigCode {
			buf = append(buf, 'A')
		} else {
			buf = strconv.AppendInt(buf, c, 10)
		}
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(n), 10)
	}
	last, run := code(0), 1
	for i := 1; i < len(taxa); i++ {
		c := code(i)
		if c == last {
			run++
			continue
		}
		emit(last, run)
		buf = append(buf, ' ')
		last, run = c, 1
	}
	emit(last, run)
	return buf
}

// hitList is AppendHitList into a fresh string.
func hitList(taxa []uint32, ambig []bool) string {
	return string(AppendHitList(nil, taxa, ambig))
}

// AppendReport appends the tab-separated report line for one read:
// status, id, call, length, then "Q:<hits>" in quick mode or the forward
// and antisense hit lists joined by '|'.
func AppendReport(buf []byte, id string, res *engine.Result, quick bool) []byte {
	if res.Classified() {
		buf = append(buf, StatusClassified)
	} else {
		buf = append(buf, StatusUnclassified)
	}
	buf = append(buf, '\t')
	buf = append(buf, id...)
	buf = append(buf, '\t')
	buf = strconv.AppendUint(buf, uint64(res.Call), 10)
	buf = append(buf, '\t')
	buf = strconv.AppendInt(buf, int64(res.Length), 10)
	buf = append(buf, '\t')
	if quick {
		buf = append(buf, "Q:"...)
		buf = strconv.AppendUint(buf, uint64(res.Chosen().Total), 10)
	} else {
		buf = AppendHitList(buf, res.Forward.Taxa, res.Forward.Ambig)
		buf = append(buf, '|')
		buf = AppendHitList(buf, res.Reverse.Taxa, res.Reverse.Ambig)
	}
	return append(buf, '\n')
}
