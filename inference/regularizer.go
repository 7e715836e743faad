package inference

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
)

// Regularizer accumulates scalar penalty terms. The trainer adds the
// summed penalty to both of its losses, so every term registered here
// regularizes model and variational parameters alike.
type Regularizer struct {
	terms G.Nodes
}

// Add registers a penalty term. Terms must be scalar nodes.
func (r *Regularizer) Add(terms ...*G.Node) error {
	for _, t := range terms {
		if t == nil {
			return errors.New("regularizer: nil penalty term")
		}
		if !t.IsScalar() {
			return errors.Errorf("regularizer: penalty term %v has shape "+
				"%v, want a scalar", t.Name(), t.Shape())
		}
		r.terms = append(r.terms, t)
	}

	return nil
}

// Penalty returns the sum of all registered terms as a node of g, or a
// zero constant when no terms are registered.
func (r *Regularizer) Penalty(g *G.ExprGraph) (*G.Node, error) {
	if r == nil || len(r.terms) == 0 {
		return g.Constant(G.NewF64(0.0)), nil
	}

	sum := r.terms[0]
	for _, t := range r.terms[1:] {
		var err error
		sum, err = G.Add(sum, t)
		if err != nil {
			return nil, errors.Wrap(err, "regularizer: sum penalty terms")
		}
	}

	return sum, nil
}
