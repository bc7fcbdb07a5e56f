// internal/krakendb/db_test.go
package krakendb_test

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kclassify/internal/kmer"
	"kclassify/internal/krakendb"
	"kclassify/internal/testkit"
)

func fixture(t *testing.T) map[uint64]uint32 {
	return map[uint64]uint32{
		testkit.Pack(t, "ACGTA"): 11,
		testkit.Pack(t, "CCCCA"): 22,
		testkit.Pack(t, "GATTC"): 33,
		testkit.Pack(t, "TTTAG"): 44,
		testkit.Pack(t, "AAAAA"): 55,
	}
}

func openBytes(t *testing.T, entries map[uint64]uint32) *krakendb.DB {
	t.Helper()
	dbb, idxb, err := testkit.KrakenDB(testkit.Seed(t, "#####"), 2, entries)
	require.NoError(t, err)
	db, err := krakendb.FromBytes(dbb, idxb)
	require.NoError(t, err)
	return db
}

func TestQueryFindsEveryKeyOnBothStrands(t *testing.T) {
	entries := fixture(t)
	db := openBytes(t, entries)
	assert.Equal(t, 5, db.K())
	assert.Equal(t, uint64(5), db.KeyCount())
	assert.Equal(t, 2, db.IndexNT())
	assert.Equal(t, 2, db.IndexVersion())

	kp, err := kmer.New(5)
	require.NoError(t, err)
	for km, want := range entries {
		got, ok := db.Query(km, nil)
		require.True(t, ok, kmer.Unpack(km, 5))
		assert.Equal(t, want, got)

		got, ok = db.Query(kp.ReverseComplement(km), nil)
		require.True(t, ok, "revcomp of %s", kmer.Unpack(km, 5))
		assert.Equal(t, want, got)
	}
}

func TestQueryMiss(t *testing.T) {
	db := openBytes(t, fixture(t))
	_, ok := db.Query(testkit.Pack(t, "GGGAC"), nil)
	assert.False(t, ok)
}

func TestCursorReuseMatchesFreshLookups(t *testing.T) {
	entries := fixture(t)
	db := openBytes(t, entries)
	queries := []string{"ACGTA", "ACGTA", "GGGAC", "CCCCA", "TTTAG", "TTTAG", "AAAAA", "GATTC", "CCCCC"}

	var cur krakendb.Cursor
	for _, s := range queries {
		km := testkit.Pack(t, s)
		wantV, wantOK := db.Query(km, nil)
		gotV, gotOK := db.Query(km, &cur)
		assert.Equal(t, wantOK, gotOK, s)
		assert.Equal(t, wantV, gotV, s)
	}
}

func TestEmptyDatabase(t *testing.T) {
	db := openBytes(t, map[uint64]uint32{})
	var cur krakendb.Cursor
	_, ok := db.Query(testkit.Pack(t, "ACGTA"), &cur)
	assert.False(t, ok)
	_, ok = db.Query(testkit.Pack(t, "ACGTA"), &cur)
	assert.False(t, ok)
}

func TestOpenMappedAndPreloaded(t *testing.T) {
	dir := t.TempDir()
	entries := fixture(t)
	dbPath, idxPath := testkit.WriteKrakenDB(t, dir, testkit.Seed(t, "#####"), 2, entries)

	for _, preload := range []bool{false, true} {
		db, err := krakendb.Open(krakendb.Options{DBPath: dbPath, IndexPath: idxPath, Preload: preload})
		require.NoError(t, err, "preload=%v", preload)
		v, ok := db.Query(testkit.Pack(t, "GATTC"), nil)
		assert.True(t, ok)
		assert.Equal(t, uint32(33), v)
		require.NoError(t, db.Close())
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	dbPath, idxPath := testkit.WriteKrakenDB(t, dir, testkit.Seed(t, "#####"), 2, fixture(t))
	junk := testkit.WriteFile(t, dir, "junk.bin", "not a database at all, definitely not")

	_, err := krakendb.Open(krakendb.Options{DBPath: dir + "/absent", IndexPath: idxPath})
	assert.Error(t, err)

	_, err = krakendb.Open(krakendb.Options{DBPath: junk, IndexPath: idxPath, Preload: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, krakendb.ErrFormat))

	_, err = krakendb.Open(krakendb.Options{DBPath: dbPath, IndexPath: junk, Preload: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, krakendb.ErrFormat))
}

func TestBinKeyIsStrandIndependent(t *testing.T) {
	kp, err := kmer.New(7)
	require.NoError(t, err)
	km := testkit.Pack(t, "ACGGTCA")
	for _, v := range []int{1, 2} {
		a, err := krakendb.BinKey(v, 7, 3, km)
		require.NoError(t, err)
		b, err := krakendb.BinKey(v, 7, 3, kp.ReverseComplement(km))
		require.NoError(t, err)
		assert.Equal(t, a, b, "version %d", v)
	}
	_, err = krakendb.BinKey(2, 3, 4, km)
	assert.Error(t, err)
}

func TestBuildSquashesThroughSeed(t *testing.T) {
	pat := testkit.Seed(t, "##_##")
	dbb, idxb, err := testkit.KrakenDB(pat, 2, map[uint64]uint32{testkit.Pack(t, "ACGTA"): 7})
	require.NoError(t, err)
	db, err := krakendb.FromBytes(dbb, idxb)
	require.NoError(t, err)
	assert.Equal(t, pat.Weight(), db.K())

	v, ok := db.Query(pat.SquashForRead(testkit.Pack(t, "ACGTA")), nil)
	assert.True(t, ok)
	assert.Equal(t, uint32(7), v)
	v, ok = db.Query(testkit.Pack(t, "ACTA"), nil)
	assert.True(t, ok, "stored key is the squashed k-mer")
	assert.Equal(t, uint32(7), v)
}

func TestQueryClampsCorruptOffsets(t *testing.T) {
	dbb, idxb, err := testkit.KrakenDB(testkit.Seed(t, "#####"), 2, fixture(t))
	require.NoError(t, err)
	// every bin boundary points far past the end, beyond int64
	for off := 8; off < len(idxb); off += 8 {
		binary.LittleEndian.PutUint64(idxb[off:], 1<<63+5)
	}
	db, err := krakendb.FromBytes(dbb, idxb)
	require.NoError(t, err)

	var cur krakendb.Cursor
	assert.NotPanics(t, func() {
		for km := range fixture(t) {
			_, ok := db.Query(km, &cur)
			assert.False(t, ok)
		}
	})
}
