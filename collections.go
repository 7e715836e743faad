package edward

import (
	"sync"

	G "gorgonia.org/gorgonia"
)

// trainables tracks the trainable parameter nodes registered against
// each expression graph. Inference routines use it to default their
// variable lists when the caller supplies none.
var (
	trainablesMu sync.Mutex
	trainables   = make(map[*G.ExprGraph]G.Nodes)
)

// Trainable registers n as a trainable parameter of its graph and
// returns n unchanged. Registration order is preserved.
func Trainable(n *G.Node) *G.Node {
	trainablesMu.Lock()
	defer trainablesMu.Unlock()

	g := n.Graph()
	trainables[g] = append(trainables[g], n)

	return n
}

// Trainables returns the trainable parameter nodes registered against
// g, in registration order. The returned slice is a copy.
func Trainables(g *G.ExprGraph) G.Nodes {
	trainablesMu.Lock()
	defer trainablesMu.Unlock()

	ns := make(G.Nodes, len(trainables[g]))
	copy(ns, trainables[g])

	return ns
}
