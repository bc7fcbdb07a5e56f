// internal/taxonomy/resolve.go
package taxonomy

// ResolveTree reduces weighted taxon votes to one call by majority descent.
//
// Each vote counts for its taxon and every ancestor. Starting above the
// roots, the walk moves to the child whose subtree score is strictly more
// than half of all votes, and stops when no child qualifies. Sibling
// subtrees are disjoint, so at most one child can hold a strict majority;
// a child at exactly half never qualifies and the walk stays at the parent.
// An empty or all-zero vote set resolves to 0.
func ResolveTree(hits map[uint32]uint32, pm *ParentMap) uint32 {
	if len(hits) == 0 {
		return 0
	}
	score := make(map[uint32]uint64, 4*len(hits))
	var total uint64
	for t, c := range hits {
		if t == 0 || c == 0 {
			continue
		}
		total += uint64(c)
		pm.walk(t, func(n uint32) { score[n] += uint64(c) })
	}
	if total == 0 {
		return 0
	}

	children := make(map[uint32][]uint32, len(score))
	for n := range score {
		p := pm.up(n)
		children[p] = append(children[p], n)
	}

	cur := uint32(0)
	for steps := len(score); steps > 0; steps-- {
		next := uint32(0)
		for _, c := range children[cur] {
			if 2*score[c] > total {
				next = c
				break
			}
		}
		if next == 0 {
			break
		}
		cur = next
	}
	return cur
}
