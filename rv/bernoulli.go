package rv

import (
	"fmt"

	"golang.org/x/exp/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// bernoulliEps keeps success probabilities strictly inside (0, 1)
// before logs are taken
const bernoulliEps = 1e-7

// Bernoulli is an element-wise Bernoulli distribution with success
// probability p. Scalar p is expanded to a one-element vector.
//
// Bernoulli supports the following data types:
// - tensor.Float64
type Bernoulli struct {
	p *G.Node

	seed uint64
}

// NewBernoulli returns a new Bernoulli.
func NewBernoulli(p *G.Node, seed uint64) (*Bernoulli, error) {
	if p.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newBernoulli: data type %v unsupported",
			p.Dtype())
	}

	var err error
	if p.IsScalar() {
		p, err = G.Reshape(p, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newBernoulli: could not expand p to "+
				"shape (1): %v", err)
		}
	}

	return &Bernoulli{
		p:    p,
		seed: seed,
	}, nil
}

// LogProb calculates the element-wise log mass of x, which must have
// the same shape as the distribution.
func (b *Bernoulli) LogProb(x *G.Node) (*G.Node, error) {
	if !x.Shape().Eq(b.p.Shape()) {
		return nil, fmt.Errorf("logProb: expected shape to match "+
			"distribution shape %v but got %v", b.p.Shape(), x.Shape())
	}

	p, err := edward.Clamp(b.p, bernoulliEps, 1-bernoulliEps, false)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	one := x.Graph().Constant(G.NewF64(1.0))

	lnP := G.Must(G.Log(p))
	lnQ := G.Must(G.Log(G.Must(G.Sub(one, p))))

	hit := G.Must(G.HadamardProd(x, lnP))
	miss := G.Must(G.HadamardProd(G.Must(G.Sub(one, x)), lnQ))

	return G.Add(hit, miss)
}

// Sample builds a node holding one draw of the distribution. Each
// element of the drawn tensor is 0 or 1.
func (b *Bernoulli) Sample(sc *Scope) (*G.Node, error) {
	op, err := newSampleOp("bernoulli", b.p.Dtype(), b.p.Shape(), 1,
		b.seed, sc, bernoulliSampleKernel)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return G.ApplyOp(op, b.p)
}

// Shape returns the number of distributions stored by the receiver
func (b *Bernoulli) Shape() tensor.Shape {
	return b.p.Shape()
}

// Support returns the support of the distribution
func (b *Bernoulli) Support() Support { return Discrete }

func bernoulliSampleKernel(src rand.Source, params ...tensor.Tensor) (
	*tensor.Dense, error) {
	p, err := floats(params[0])
	if err != nil {
		return nil, fmt.Errorf("bernoulliSampleKernel: p: %v", err)
	}

	backing := make([]float64, len(p))
	for i := range backing {
		backing[i] = stats.BernoulliRvs(p[i], 1, src)[0]
	}

	return tensor.NewDense(
		tensor.Float64,
		params[0].Shape().Clone(),
		tensor.WithBacking(backing),
	), nil
}
