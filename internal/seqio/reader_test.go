// internal/seqio/reader_test.go
package seqio

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plain = `>seq1 first read
ACGT
ACGT
>seq2
NNnn
`

func readAll(t *testing.T, path string, fastq bool) []Record {
	t.Helper()
	r, err := Open(path, fastq)
	require.NoError(t, err)
	defer r.Close()
	var out []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestReadFASTA(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "x.fa")
	require.NoError(t, os.WriteFile(fn, []byte(plain), 0o644))

	recs := readAll(t, fn, false)
	require.Len(t, recs, 2)
	assert.Equal(t, "seq1", recs[0].ID)
	assert.Equal(t, "seq1 first read", recs[0].Header)
	assert.Equal(t, "ACGTACGT", string(recs[0].Seq))
	assert.Empty(t, recs[0].Qual)
	assert.Equal(t, "NNnn", string(recs[1].Seq))
}

func TestReadFASTQ(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "x.fq")
	require.NoError(t, os.WriteFile(fn, []byte("@r1\nACGT\n+\nIIII\n@r2\nGG\n+\n##\n"), 0o644))

	recs := readAll(t, fn, true)
	require.Len(t, recs, 2)
	assert.Equal(t, "IIII", string(recs[0].Qual))
	assert.Equal(t, "GG", string(recs[1].Seq))
}

func TestFASTQFlagRejectsFASTA(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "x.fa")
	require.NoError(t, os.WriteFile(fn, []byte(plain), 0o644))
	r, err := Open(fn, true)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Next()
	assert.Error(t, err)
}

func TestReadGzip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "x.fa.gz")
	fh, err := os.Create(fn)
	require.NoError(t, err)
	gw := gzip.NewWriter(fh)
	_, err = gw.Write([]byte(plain))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, fh.Close())

	recs := readAll(t, fn, false)
	assert.Len(t, recs, 2)
}

func TestRecordsAreIndependentCopies(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "x.fa")
	require.NoError(t, os.WriteFile(fn, []byte(plain), 0o644))
	recs := readAll(t, fn, false)
	recs[1].Seq[0] = 'X'
	assert.Equal(t, "ACGTACGT", string(recs[0].Seq))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.fa"), false)
	assert.Error(t, err)
}
