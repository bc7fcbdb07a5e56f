// internal/testkit/testkit.go

// Package testkit writes small on-disk fixtures for tests: Kraken-format
// database/index pairs, taxonomy nodes files and sequence files.
package testkit

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"kclassify/internal/kmer"
	"kclassify/internal/krakendb"
	"kclassify/internal/seed"
)

// KrakenDB renders a database and a version-2 index holding entries
// (raw span-wide k-mer → taxon). Every key goes through
// pat.SquashForIndex, so the stored width is the seed weight. Keys are
// canonicalised and sorted within their nt-base minimizer bins.
func KrakenDB(pat *seed.Pattern, nt int, entries map[uint64]uint32) (db, idx []byte, err error) {
	k := pat.Weight()
	kp, err := kmer.New(k)
	if err != nil {
		return nil, nil, err
	}
	type pair struct {
		bin, key uint64
		val      uint32
	}
	byKey := make(map[uint64]uint32, len(entries))
	for raw, v := range entries {
		byKey[kp.Canonical(pat.SquashForIndex(raw))] = v
	}
	pairs := make([]pair, 0, len(byKey))
	for key, v := range byKey {
		bin, err := krakendb.BinKey(2, k, nt, key)
		if err != nil {
			return nil, nil, err
		}
		pairs = append(pairs, pair{bin: bin, key: key, val: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].bin != pairs[j].bin {
			return pairs[i].bin < pairs[j].bin
		}
		return pairs[i].key < pairs[j].key
	})

	keyBits := uint64(2 * k)
	keyLen := int((keyBits + 7) / 8)
	hdr := 72 + 2*(4+8*int(keyBits))
	db = make([]byte, hdr, hdr+len(pairs)*(keyLen+4))
	copy(db, "JFLISTDN")
	binary.LittleEndian.PutUint64(db[8:], keyBits)
	binary.LittleEndian.PutUint64(db[16:], 4)
	binary.LittleEndian.PutUint64(db[48:], uint64(len(pairs)))
	var kb [8]byte
	var vb [4]byte
	for _, p := range pairs {
		binary.LittleEndian.PutUint64(kb[:], p.key)
		db = append(db, kb[:keyLen]...)
		binary.LittleEndian.PutUint32(vb[:], p.val)
		db = append(db, vb[:]...)
	}

	bins := krakendb.BinCount(nt)
	idx = make([]byte, 8+8*(bins+1))
	copy(idx, "KRAKIX2")
	idx[7] = byte(nt)
	next := 0
	for b := uint64(0); b <= bins; b++ {
		for next < len(pairs) && pairs[next].bin < b {
			next++
		}
		binary.LittleEndian.PutUint64(idx[8+8*b:], uint64(next))
	}
	return db, idx, nil
}

// WriteKrakenDB writes a KrakenDB fixture under dir and returns both paths.
func WriteKrakenDB(t testing.TB, dir string, pat *seed.Pattern, nt int, entries map[uint64]uint32) (dbPath, idxPath string) {
	t.Helper()
	db, idx, err := KrakenDB(pat, nt, entries)
	if err != nil {
		t.Fatalf("build db fixture: %v", err)
	}
	return WriteFile(t, dir, "database.kdb", string(db)), WriteFile(t, dir, "database.idx", string(idx))
}

// WriteNodes writes a nodes.dmp-style taxonomy for parents (child → parent).
func WriteNodes(t testing.TB, dir string, parents map[uint32]uint32) string {
	t.Helper()
	ids := make([]uint32, 0, len(parents))
	for c := range parents {
		ids = append(ids, c)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var b strings.Builder
	for _, c := range ids {
		fmt.Fprintf(&b, "%d\t|\t%d\t|\tno rank\t|\n", c, parents[c])
	}
	return WriteFile(t, dir, "nodes.dmp", b.String())
}

// WriteFile writes data to dir/name.
func WriteFile(t testing.TB, dir, name, data string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", fn, err)
	}
	return fn
}

// Pack packs an ACGT string, failing the test on ambiguous input.
func Pack(t testing.TB, s string) uint64 {
	t.Helper()
	v, ok := kmer.Pack([]byte(s))
	if !ok {
		t.Fatalf("ambiguous fixture k-mer %q", s)
	}
	return v
}

// Seed compiles a pattern, failing the test on error.
func Seed(t testing.TB, pattern string) *seed.Pattern {
	t.Helper()
	p, err := seed.Compile(pattern)
	if err != nil {
		t.Fatalf("seed %q: %v", pattern, err)
	}
	return p
}
