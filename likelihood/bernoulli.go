package likelihood

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// probEps keeps probabilities strictly inside (0, 1) before logs are
// taken
const probEps = 1e-7

// Bernoulli is the mean-field Bernoulli family
//
//	q(z | λ) = Π_{i=1}^d Bernoulli(z_i | p_i)
//
// After SetParams, the last coordinate's probability is one minus the
// sum of the others, so the probabilities total 1 across coordinates.
type Bernoulli struct {
	base

	raw G.Nodes
	p   *G.Node
}

// NewBernoulli returns a new Bernoulli family over numVars dimensions.
func NewBernoulli(g *G.ExprGraph, numVars int, seed uint64) (*Bernoulli,
	error) {
	if numVars <= 0 {
		return nil, fmt.Errorf("newBernoulli: numVars must be positive "+
			"but got %v", numVars)
	}

	return &Bernoulli{
		base: newBase(g, numVars, numVars, seed),
	}, nil
}

// Mapping returns the constrained probability vector derived from a
// fresh unconstrained parameter vector.
func (b *Bernoulli) Mapping(x *G.Node) ([]*G.Node, error) {
	raw := edward.Trainable(G.NewVector(
		b.g,
		tensor.Float64,
		G.WithName(edward.NextName("bernoulli_p")),
		G.WithShape(b.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	b.raw = G.Nodes{raw}

	p, err := G.Sigmoid(raw)
	if err != nil {
		return nil, fmt.Errorf("mapping: %v", err)
	}

	return []*G.Node{p}, nil
}

// SetParams binds the probability vector. For more than one dimension
// the last coordinate is replaced by one minus the sum of the others.
func (b *Bernoulli) SetParams(params []*G.Node) error {
	if len(params) != 1 {
		return fmt.Errorf("setParams: expected 1 parameter tensor but "+
			"got %v", len(params))
	}

	p := params[0]
	d := b.numVars
	if d > 1 {
		head, err := G.Slice(p, G.S(0, d-1))
		if err != nil {
			return fmt.Errorf("setParams: could not slice first %v "+
				"probabilities: %v", d-1, err)
		}
		// A slice of length 1 collapses to a scalar, which Concat
		// rejects.
		head, err = G.Reshape(head, []int{d - 1})
		if err != nil {
			return fmt.Errorf("setParams: %v", err)
		}

		sum, err := G.Sum(head)
		if err != nil {
			return fmt.Errorf("setParams: %v", err)
		}

		one := p.Graph().Constant(G.NewF64(1.0))
		last, err := G.Sub(one, sum)
		if err != nil {
			return fmt.Errorf("setParams: %v", err)
		}
		last, err = G.Reshape(last, []int{1})
		if err != nil {
			return fmt.Errorf("setParams: %v", err)
		}

		p, err = G.Concat(0, head, last)
		if err != nil {
			return fmt.Errorf("setParams: could not rebuild probability "+
				"vector: %v", err)
		}
	}

	b.p = p

	return nil
}

// Sample draws size[0] rows of 0/1 values under the current
// probabilities
func (b *Bernoulli) Sample(size []int, ev Evaluator) (*tensor.Dense, error) {
	if err := b.checkSize(size); err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	if b.p == nil {
		return nil, fmt.Errorf("sample: parameters not set")
	}

	vals, err := evalFloats(ev, b.p)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	p := vals[0]

	backing := make([]float64, size[0]*size[1])
	for d := 0; d < b.numVars; d++ {
		draws := stats.BernoulliRvs(p[d], size[0], b.src)
		for j := range draws {
			backing[j*b.numVars+d] = draws[j]
		}
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{size[0], size[1]},
		tensor.WithBacking(backing),
	), nil
}

// LogProbZi returns log q(z_i | p_i) evaluated at column i of z
func (b *Bernoulli) LogProbZi(i int, z *G.Node) (*G.Node, error) {
	if err := b.checkIndex(i); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	if b.p == nil {
		return nil, fmt.Errorf("logProbZi: parameters not set")
	}

	p, err := edward.Clamp(b.p, probEps, 1-probEps, false)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	pi, err := G.Slice(p, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	zi, err := column(z, i)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	one := z.Graph().Constant(G.NewF64(1.0))

	hit := G.Must(G.HadamardProd(zi, G.Must(G.Log(pi))))
	miss := G.Must(G.HadamardProd(
		G.Must(G.Sub(one, zi)),
		G.Must(G.Log(G.Must(G.Sub(one, pi)))),
	))

	return G.Add(hit, miss)
}

// PrintParams evaluates and reports the current probabilities
func (b *Bernoulli) PrintParams(ev Evaluator) error {
	if b.p == nil {
		return fmt.Errorf("printParams: parameters not set")
	}

	vals, err := evalFloats(ev, b.p)
	if err != nil {
		return fmt.Errorf("printParams: %v", err)
	}

	klog.InfoS("bernoulli family", "probability", vals[0])

	return nil
}
