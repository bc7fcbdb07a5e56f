// internal/integration/fixture_test.go
package integration

import (
	"testing"

	"kclassify/internal/testkit"
)

// tree: 1 is the root; 2 and 3 under 1; 5 and 6 under 2.
var parents = map[uint32]uint32{1: 1, 2: 1, 3: 1, 5: 2, 6: 2}

const readsFASTA = ">r1 all A\nAAAAAAAA\n" +
	">r2\nAAAAACCCCC\n" +
	">r3\nACG\n" +
	">r4\nGCGCGCGC\n"

const readsFASTQ = "@r1 all A\nAAAAAAAA\n+\nIIIIIIII\n" +
	"@r4\nGCGCGCGC\n+\nIIIIIIII\n"

type fixture struct {
	dir, db, idx, nodes, reads string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	db, idx := testkit.WriteKrakenDB(t, dir, testkit.Seed(t, "#####"), 2, map[uint64]uint32{
		testkit.Pack(t, "AAAAA"): 5,
		testkit.Pack(t, "CCCCC"): 6,
	})
	return fixture{
		dir:   dir,
		db:    db,
		idx:   idx,
		nodes: testkit.WriteNodes(t, dir, parents),
		reads: testkit.WriteFile(t, dir, "reads.fa", readsFASTA),
	}
}

// args returns the base invocation with a contiguous 5-base seed.
func (f fixture) args(extra ...string) []string {
	a := []string{"-d", f.db, "-i", f.idx, "-Z", "#####", "-n", f.nodes}
	return append(a, extra...)
}
