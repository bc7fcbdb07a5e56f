// internal/krakendb/db.go
package krakendb

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Options locate the database pair on disk.
type Options struct {
	DBPath    string
	IndexPath string
	Preload   bool // read both files into memory instead of mapping them
}

// DB is an opened database plus its index.
type DB struct {
	hdr      header
	pairs    []byte
	pairSize int
	keyMask  uint64

	bins     binner
	idx      []byte // offsets, 8 bytes each
	binCount uint64

	release []func() error
}

// Cursor carries bin-range state between consecutive Query calls of one
// scan. The zero value is ready to use. Never share one across strands,
// reads or goroutines.
type Cursor struct {
	binKey   uint64
	min, max int64
	valid    bool
}

// Open loads the database and index named by o.
func Open(o Options) (*DB, error) {
	load := mapFile
	if o.Preload {
		load = readFile
	}
	dbData, dbRelease, err := load(o.DBPath)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	idxData, idxRelease, err := load(o.IndexPath)
	if err != nil {
		_ = dbRelease()
		return nil, errors.Wrap(err, "open database index")
	}
	db, err := FromBytes(dbData, idxData)
	if err != nil {
		_ = dbRelease()
		_ = idxRelease()
		return nil, err
	}
	db.release = []func() error{dbRelease, idxRelease}
	return db, nil
}

// FromBytes builds a DB over in-memory database and index images.
func FromBytes(dbData, idxData []byte) (*DB, error) {
	h, err := parseHeader(dbData)
	if err != nil {
		return nil, err
	}
	ih, err := parseIndexHeader(idxData)
	if err != nil {
		return nil, err
	}
	if ih.nt > h.k {
		return nil, errors.Wrapf(ErrFormat, "index nt %d exceeds database k %d", ih.nt, h.k)
	}
	bn, err := newBinner(ih.version, h.k, ih.nt)
	if err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	start := headerSize(h.keyBits)
	pairSize := h.keyLen + valLen
	db := &DB{
		hdr:      h,
		pairs:    dbData[start : start+int(h.keyCt)*pairSize],
		pairSize: pairSize,
		keyMask:  bn.kp.Mask(),
		bins:     bn,
		idx:      idxData[8:],
		binCount: BinCount(ih.nt),
	}
	return db, nil
}

// Close releases mapped memory. The DB must not be used afterwards.
func (db *DB) Close() error {
	var first error
	for _, fn := range db.release {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	db.release = nil
	return first
}

// K is the width of the stored (squashed) k-mers.
func (db *DB) K() int { return db.hdr.k }

// KeyCount is the number of stored k-mers.
func (db *DB) KeyCount() uint64 { return db.hdr.keyCt }

// IndexVersion is 1 for prefix-binned and 2 for minimizer-binned indexes.
func (db *DB) IndexVersion() int { return db.bins.version }

// IndexNT is the index bin prefix length.
func (db *DB) IndexNT() int { return db.bins.nt }

// binRange returns the inclusive pair range of bin. Offsets past the key
// count (a corrupt index) are clamped so the range stays inside the pairs.
func (db *DB) binRange(bin uint64) (lo, hi int64) {
	n := db.hdr.keyCt
	start := binary.LittleEndian.Uint64(db.idx[8*bin:])
	end := binary.LittleEndian.Uint64(db.idx[8*(bin+1):])
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return int64(start), int64(end) - 1
}

func (db *DB) keyAt(i int64) uint64 {
	p := db.pairs[i*int64(db.pairSize):]
	var v uint64
	for j := db.hdr.keyLen - 1; j >= 0; j-- {
		v = v<<8 | uint64(p[j])
	}
	return v & db.keyMask
}

func (db *DB) valueAt(i int64) uint32 {
	return binary.LittleEndian.Uint32(db.pairs[i*int64(db.pairSize)+int64(db.hdr.keyLen):])
}

// Query looks km up. cur may be nil; when given, it is updated so the next
// query in the same bin skips the index lookup.
func (db *DB) Query(km uint64, cur *Cursor) (uint32, bool) {
	km &= db.keyMask
	b := db.bins.key(km)
	if b >= db.binCount {
		return 0, false
	}
	var lo, hi int64
	if cur != nil && cur.valid && cur.binKey == b {
		lo, hi = cur.min, cur.max
	} else {
		lo, hi = db.binRange(b)
		if cur != nil {
			*cur = Cursor{binKey: b, min: lo, max: hi, valid: true}
		}
	}
	want := db.bins.kp.Canonical(km)
	for lo <= hi {
		mid := lo + (hi-lo)/2
		got := db.keyAt(mid)
		switch {
		case want > got:
			lo = mid + 1
		case want < got:
			hi = mid - 1
		default:
			return db.valueAt(mid), true
		}
	}
	return 0, false
}

func readFile(path string) ([]byte, func() error, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return b, func() error { return nil }, nil
}
