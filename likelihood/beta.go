package likelihood

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// Beta is the mean-field Beta family
//
//	q(z | λ) = Π_{i=1}^d Beta(z_i | a_i, b_i)
type Beta struct {
	base

	raw  G.Nodes
	a, b *G.Node
}

// NewBeta returns a new Beta family over numVars dimensions.
func NewBeta(g *G.ExprGraph, numVars int, seed uint64) (*Beta, error) {
	if numVars <= 0 {
		return nil, fmt.Errorf("newBeta: numVars must be positive but "+
			"got %v", numVars)
	}

	return &Beta{
		base: newBase(g, numVars, 2*numVars, seed),
	}, nil
}

// Mapping returns the constrained shape parameter vectors derived from
// fresh unconstrained parameter vectors.
func (bt *Beta) Mapping(x *G.Node) ([]*G.Node, error) {
	rawA := edward.Trainable(G.NewVector(
		bt.g,
		tensor.Float64,
		G.WithName(edward.NextName("beta_alpha")),
		G.WithShape(bt.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	rawB := edward.Trainable(G.NewVector(
		bt.g,
		tensor.Float64,
		G.WithName(edward.NextName("beta_beta")),
		G.WithShape(bt.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	bt.raw = G.Nodes{rawA, rawB}

	a, err := edward.Softplus(rawA)
	if err != nil {
		return nil, fmt.Errorf("mapping: %v", err)
	}
	b, err := edward.Softplus(rawB)
	if err != nil {
		return nil, fmt.Errorf("mapping: %v", err)
	}

	return []*G.Node{a, b}, nil
}

// SetParams binds the shape parameter vectors
func (bt *Beta) SetParams(params []*G.Node) error {
	if len(params) != 2 {
		return fmt.Errorf("setParams: expected 2 parameter tensors but "+
			"got %v", len(params))
	}

	bt.a = params[0]
	bt.b = params[1]

	return nil
}

// Sample draws size[0] rows under the current shape parameters
func (bt *Beta) Sample(size []int, ev Evaluator) (*tensor.Dense, error) {
	if err := bt.checkSize(size); err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	if bt.a == nil || bt.b == nil {
		return nil, fmt.Errorf("sample: parameters not set")
	}

	vals, err := evalFloats(ev, bt.a, bt.b)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	a, b := vals[0], vals[1]

	backing := make([]float64, size[0]*size[1])
	for d := 0; d < bt.numVars; d++ {
		draws := stats.BetaRvs(a[d], b[d], size[0], bt.src)
		for j := range draws {
			backing[j*bt.numVars+d] = draws[j]
		}
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{size[0], size[1]},
		tensor.WithBacking(backing),
	), nil
}

// LogProbZi returns log q(z_i | a_i, b_i) evaluated at column i of z
func (bt *Beta) LogProbZi(i int, z *G.Node) (*G.Node, error) {
	if err := bt.checkIndex(i); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	if bt.a == nil || bt.b == nil {
		return nil, fmt.Errorf("logProbZi: parameters not set")
	}

	ai, err := G.Slice(bt.a, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	bi, err := G.Slice(bt.b, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	zi, err := column(z, i)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	one := z.Graph().Constant(G.NewF64(1.0))

	aTerm := G.Must(G.HadamardProd(
		G.Must(G.Sub(ai, one)),
		G.Must(G.Log(zi)),
	))
	bTerm := G.Must(G.HadamardProd(
		G.Must(G.Sub(bi, one)),
		G.Must(G.Log(G.Must(G.Sub(one, zi)))),
	))

	lnBeta, err := lbeta(ai, bi)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	return G.Sub(G.Must(G.Add(aTerm, bTerm)), lnBeta)
}

// PrintParams evaluates and reports the current shape parameters
func (bt *Beta) PrintParams(ev Evaluator) error {
	if bt.a == nil || bt.b == nil {
		return fmt.Errorf("printParams: parameters not set")
	}

	vals, err := evalFloats(ev, bt.a, bt.b)
	if err != nil {
		return fmt.Errorf("printParams: %v", err)
	}

	klog.InfoS("beta family", "shape", vals[0], "scale", vals[1])

	return nil
}

// lbeta computes the element-wise log beta function
// lnΓ(a) + lnΓ(b) - lnΓ(a+b)
func lbeta(a, b *G.Node) (*G.Node, error) {
	lgA, err := edward.Lgamma(a)
	if err != nil {
		return nil, fmt.Errorf("lbeta: %v", err)
	}
	lgB, err := edward.Lgamma(b)
	if err != nil {
		return nil, fmt.Errorf("lbeta: %v", err)
	}
	lgAB, err := edward.Lgamma(G.Must(G.Add(a, b)))
	if err != nil {
		return nil, fmt.Errorf("lbeta: %v", err)
	}

	return G.Sub(G.Must(G.Add(lgA, lgB)), lgAB)
}
