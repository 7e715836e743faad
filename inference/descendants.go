package inference

import (
	G "gorgonia.org/gorgonia"
)

// ancestorIDs returns the ids of every node some root depends on,
// roots included. The expression graph's edges point from a node to
// its inputs, so walking outgoing edges descends toward the leaves.
func ancestorIDs(g *G.ExprGraph, roots G.Nodes) map[int64]struct{} {
	seen := make(map[int64]struct{}, len(roots))
	stack := make([]int64, 0, len(roots))
	for _, r := range roots {
		if r == nil {
			continue
		}
		if _, ok := seen[r.ID()]; !ok {
			seen[r.ID()] = struct{}{}
			stack = append(stack, r.ID())
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		it := g.From(id)
		for it.Next() {
			cid := it.Node().ID()
			if _, ok := seen[cid]; !ok {
				seen[cid] = struct{}{}
				stack = append(stack, cid)
			}
		}
	}

	return seen
}
