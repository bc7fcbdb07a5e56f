// internal/krakendb/format.go
package krakendb

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"kclassify/internal/kmer"
)

const (
	dbMagic      = "JFLISTDN"
	idxMagicV1   = "KRAKIDX"
	idxMagicV2   = "KRAKIX2"
	indexXORMask = uint64(0xe37e28c4271b5a2d)

	valLen = 4
)

// headerSize is the byte offset of the first key/value pair.
func headerSize(keyBits uint64) int { return 72 + 2*(4+8*int(keyBits)) }

// ErrFormat marks a database or index file that does not parse.
var ErrFormat = errors.New("bad database format")

type header struct {
	keyBits uint64
	keyCt   uint64
	keyLen  int
	k       int
}

func parseHeader(data []byte) (header, error) {
	if len(data) < 72 || string(data[:len(dbMagic)]) != dbMagic {
		return header{}, errors.Wrap(ErrFormat, "database magic")
	}
	h := header{
		keyBits: binary.LittleEndian.Uint64(data[8:]),
		keyCt:   binary.LittleEndian.Uint64(data[48:]),
	}
	if vl := binary.LittleEndian.Uint64(data[16:]); vl != valLen {
		return header{}, errors.Wrapf(ErrFormat, "value length %d, want %d", vl, valLen)
	}
	if h.keyBits == 0 || h.keyBits > 64 || h.keyBits%2 != 0 {
		return header{}, errors.Wrapf(ErrFormat, "key bits %d", h.keyBits)
	}
	h.k = int(h.keyBits / 2)
	h.keyLen = int((h.keyBits + 7) / 8)
	need := uint64(headerSize(h.keyBits)) + h.keyCt*uint64(h.keyLen+valLen)
	if uint64(len(data)) < need {
		return header{}, errors.Wrapf(ErrFormat, "database truncated: %d bytes, want %d", len(data), need)
	}
	return h, nil
}

type indexHeader struct {
	version int
	nt      int
}

func parseIndexHeader(data []byte) (indexHeader, error) {
	if len(data) < 8 {
		return indexHeader{}, errors.Wrap(ErrFormat, "index too short")
	}
	var h indexHeader
	switch string(data[:7]) {
	case idxMagicV1:
		h.version = 1
	case idxMagicV2:
		h.version = 2
	default:
		return indexHeader{}, errors.Wrap(ErrFormat, "index magic")
	}
	h.nt = int(data[7])
	if h.nt < 1 || h.nt > 31 {
		return indexHeader{}, errors.Wrapf(ErrFormat, "index nt %d", h.nt)
	}
	if need := 8 + 8*(BinCount(h.nt)+1); uint64(len(data)) < need {
		return indexHeader{}, errors.Wrapf(ErrFormat, "index truncated: %d bytes, want %d", len(data), need)
	}
	return h, nil
}

// BinCount is the number of bins an nt-base index has.
func BinCount(nt int) uint64 { return uint64(1) << (2 * uint(nt)) }

type binner struct {
	version int
	k, nt   int
	kp      kmer.Params
	np      kmer.Params
	xor     uint64
}

func newBinner(version, k, nt int) (binner, error) {
	kp, err := kmer.New(k)
	if err != nil {
		return binner{}, err
	}
	np, err := kmer.New(nt)
	if err != nil {
		return binner{}, err
	}
	return binner{version: version, k: k, nt: nt, kp: kp, np: np, xor: indexXORMask & np.Mask()}, nil
}

func (b binner) key(km uint64) uint64 {
	if b.version == 1 {
		return b.kp.Canonical(km) >> (2 * uint(b.k-b.nt))
	}
	mask := b.np.Mask()
	minKey := ^uint64(0)
	for i := 0; i < b.k-b.nt+1; i++ {
		if v := b.xor ^ b.np.Canonical(km&mask); v < minKey {
			minKey = v
		}
		km >>= 2
	}
	return minKey
}

// BinKey computes the bin of a k-mer at width k for an index of the given
// version and nt. Version 1 bins by the leading nt bases of the canonical
// k-mer; version 2 by the smallest scrambled canonical nt-mer. Both are
// strand independent.
func BinKey(version, k, nt int, km uint64) (uint64, error) {
	if nt > k {
		return 0, errors.Errorf("index nt %d exceeds k %d", nt, k)
	}
	b, err := newBinner(version, k, nt)
	if err != nil {
		return 0, err
	}
	return b.key(km), nil
}
