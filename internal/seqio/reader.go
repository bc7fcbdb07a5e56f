// internal/seqio/reader.go

// Package seqio reads FASTA/FASTQ sequence records (plain, gzip or stdin)
// for the classifier.
package seqio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

func init() {
	// Reads may carry any IUPAC or junk symbol; the scanner treats them as
	// ambiguous instead of rejecting the record.
	seq.ValidateSeq = false
}

// Record is one input read. It owns its byte slices.
type Record struct {
	ID     string // first word of the header
	Header string // full header line without the leading '>' or '@'
	Seq    []byte
	Qual   []byte // empty for FASTA
}

// Reader streams records from one file. It is not safe for concurrent use;
// callers serialise access.
type Reader struct {
	path  string
	fastq bool
	r     *fastx.Reader
	n     int
}

// Open opens path ("-" = stdin). With fastq set, every record must carry
// qualities.
func Open(path string, fastq bool) (*Reader, error) {
	r, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &Reader{path: path, fastq: fastq, r: r}, nil
}

// Next returns the following record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	rec, err := r.r.Read()
	if err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, errors.Wrapf(err, "%s: record %d", r.path, r.n+1)
	}
	r.n++
	out := Record{
		ID:     string(rec.ID),
		Header: string(rec.Name),
		Seq:    append([]byte(nil), rec.Seq.Seq...),
	}
	if len(rec.Seq.Qual) > 0 {
		out.Qual = append([]byte(nil), rec.Seq.Qual...)
	}
	if r.fastq && len(out.Qual) != len(out.Seq) {
		return Record{}, errors.Errorf("%s: record %d (%s) has no matching quality string; is the input FASTQ?", r.path, r.n, out.ID)
	}
	return out, nil
}

// Close releases the underlying file.
func (r *Reader) Close() {
	r.r.Close()
}
