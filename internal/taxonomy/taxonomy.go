// internal/taxonomy/taxonomy.go

// Package taxonomy holds the child→parent taxon map and the algorithms that
// resolve conflicting k-mer votes through it.
//
// Taxon 0 means "unclassified". A root is a node whose parent is itself or
// 0. A taxon that is absent from the map is distinct from 0: it has no known
// parent and is treated as a root of its own.
package taxonomy

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"
)

// ParentMap maps taxon id to parent taxon id. It is immutable after load and
// safe for concurrent readers.
type ParentMap struct {
	parent map[uint32]uint32
}

// NewParentMap wraps an existing mapping. The map must not be mutated
// afterwards.
func NewParentMap(m map[uint32]uint32) *ParentMap {
	if m == nil {
		m = map[uint32]uint32{}
	}
	return &ParentMap{parent: m}
}

// LoadParentMap parses an NCBI-style nodes.dmp file ("child\t|\tparent\t|\t...").
func LoadParentMap(path string) (*ParentMap, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open taxonomy nodes")
	}
	defer fh.Close()
	pm, err := ReadParentMap(fh)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return pm, nil
}

// ReadParentMap parses nodes records from r. Blank lines are skipped; any
// other line without two numeric leading fields is an error.
func ReadParentMap(r io.Reader) (*ParentMap, error) {
	m := make(map[uint32]uint32, 1<<16)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f := strings.SplitN(line, "|", 3)
		if len(f) < 2 {
			return nil, errors.Errorf("line %d: want \"child | parent\", got %q", ln, line)
		}
		child, err := parseTaxon(f[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: child id", ln)
		}
		parent, err := parseTaxon(f[1])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: parent id", ln)
		}
		m[child] = parent
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read taxonomy nodes")
	}
	return &ParentMap{parent: m}, nil
}

func parseTaxon(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Len is the number of taxa with a recorded parent.
func (pm *ParentMap) Len() int { return len(pm.parent) }

// Parent returns t's parent and whether t is present in the map.
func (pm *ParentMap) Parent(t uint32) (uint32, bool) {
	p, ok := pm.parent[t]
	return p, ok
}

// up returns the next node above t, or 0 when t is a root or unknown.
func (pm *ParentMap) up(t uint32) uint32 {
	p, ok := pm.parent[t]
	if !ok || p == t {
		return 0
	}
	return p
}

// walk calls fn for t and each ancestor up to its root. The step bound
// guarantees termination on malformed (cyclic) maps.
func (pm *ParentMap) walk(t uint32, fn func(uint32)) {
	limit := len(pm.parent) + 1
	for n := t; n != 0 && limit > 0; n = pm.up(n) {
		fn(n)
		limit--
	}
}

// Ancestry returns the set of t and all its ancestors.
func (pm *ParentMap) Ancestry(t uint32) *roaring.Bitmap {
	path := roaring.New()
	pm.walk(t, func(n uint32) { path.Add(n) })
	return path
}

// LCA returns the lowest common ancestor of a and b. 0 is the identity:
// LCA(0, x) = LCA(x, 0) = x. Taxa in disjoint trees have LCA 0.
func (pm *ParentMap) LCA(a, b uint32) uint32 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	path := pm.Ancestry(a)
	found := uint32(0)
	limit := len(pm.parent) + 1
	for n := b; n != 0 && limit > 0; n = pm.up(n) {
		if path.Contains(n) {
			found = n
			break
		}
		limit--
	}
	return found
}
