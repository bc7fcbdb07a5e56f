// internal/kmer/kmer_test.go
package kmer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/shenwei356/kmers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParams(t *testing.T, k int) Params {
	t.Helper()
	p, err := New(k)
	require.NoError(t, err)
	return p
}

func TestNewRejectsOutOfRangeK(t *testing.T) {
	for _, k := range []int{0, -1, 33} {
		_, err := New(k)
		assert.Error(t, err, "k=%d", k)
	}
}

func TestReverseComplementKnown(t *testing.T) {
	p := mustParams(t, 4)
	fwd, ok := Pack([]byte("AGTC"))
	require.True(t, ok)
	want, _ := Pack([]byte("GACT"))
	assert.Equal(t, want, p.ReverseComplement(fwd))
	assert.Equal(t, "GACT", Unpack(p.ReverseComplement(fwd), 4))
}

func TestReverseComplementIsInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for k := 1; k <= MaxK; k++ {
		p := mustParams(t, k)
		for i := 0; i < 200; i++ {
			x := rng.Uint64() & p.Mask()
			require.Equal(t, x, p.ReverseComplement(p.ReverseComplement(x)), "k=%d x=%#x", k, x)
		}
	}
}

func TestCanonicalPicksSmaller(t *testing.T) {
	p := mustParams(t, 3)
	ttt, _ := Pack([]byte("TTT"))
	aaa, _ := Pack([]byte("AAA"))
	assert.Equal(t, aaa, p.Canonical(ttt))
	assert.Equal(t, aaa, p.Canonical(aaa))
}

func TestCodeAcceptsLowercaseACGTOnly(t *testing.T) {
	for _, b := range []byte("acgtACGT") {
		_, ok := Code(b)
		assert.True(t, ok, "%c", b)
	}
	for _, b := range []byte("NnRyX-") {
		_, ok := Code(b)
		assert.False(t, ok, "%c", b)
	}
}

func TestReverseComplementMatchesKmersLibrary(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for k := 1; k <= MaxK; k++ {
		p := mustParams(t, k)
		for i := 0; i < 200; i++ {
			x := rng.Uint64() & p.Mask()
			require.Equal(t, kmers.RevComp(x, k), p.ReverseComplement(x), "k=%d x=%#x", k, x)
			require.Equal(t, kmers.Canonical(x, k), p.Canonical(x), "k=%d x=%#x", k, x)
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, s := range []string{"A", "ACGT", "acgtTGCA", "GATTACAGATTACAGATTACAGATTACAGATT"} {
		v, ok := Pack([]byte(s))
		require.True(t, ok, s)
		assert.Equal(t, strings.ToUpper(s), Unpack(v, len(s)))
	}
}

func TestPackRejectsAmbiguousAndOversized(t *testing.T) {
	for _, s := range []string{"", "ACNT", "ACGU", "ACGR", strings.Repeat("A", MaxK+1)} {
		_, ok := Pack([]byte(s))
		assert.False(t, ok, "%q", s)
	}
}
