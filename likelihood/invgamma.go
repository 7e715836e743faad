package likelihood

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// InvGamma is the mean-field inverse-gamma family
//
//	q(z | λ) = Π_{i=1}^d InvGamma(z_i | a_i, b_i)
type InvGamma struct {
	base

	raw  G.Nodes
	a, b *G.Node
}

// NewInvGamma returns a new InvGamma family over numVars dimensions.
func NewInvGamma(g *G.ExprGraph, numVars int, seed uint64) (*InvGamma,
	error) {
	if numVars <= 0 {
		return nil, fmt.Errorf("newInvGamma: numVars must be positive "+
			"but got %v", numVars)
	}

	return &InvGamma{
		base: newBase(g, numVars, 2*numVars, seed),
	}, nil
}

// Mapping returns the constrained shape and scale vectors derived from
// fresh unconstrained parameter vectors.
func (ig *InvGamma) Mapping(x *G.Node) ([]*G.Node, error) {
	rawA := edward.Trainable(G.NewVector(
		ig.g,
		tensor.Float64,
		G.WithName(edward.NextName("invgamma_a")),
		G.WithShape(ig.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	rawB := edward.Trainable(G.NewVector(
		ig.g,
		tensor.Float64,
		G.WithName(edward.NextName("invgamma_b")),
		G.WithShape(ig.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	ig.raw = G.Nodes{rawA, rawB}

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

// SetParams binds the shape and scale vectors
func (ig *InvGamma) SetParams(params []*G.Node) error {
	if len(params) != 2 {
		return fmt.Errorf("setParams: expected 2 parameter tensors but "+
			"got %v", len(params))
	}

	ig.a = params[0]
	ig.b = params[1]

	return nil
}

// Sample draws size[0] rows under the current parameters
func (ig *InvGamma) Sample(size []int, ev Evaluator) (*tensor.Dense, error) {
	if err := ig.checkSize(size); err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	if ig.a == nil || ig.b == nil {
		return nil, fmt.Errorf("sample: parameters not set")
	}

	vals, err := evalFloats(ev, ig.a, ig.b)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	a, b := vals[0], vals[1]

	backing := make([]float64, size[0]*size[1])
	for d := 0; d < ig.numVars; d++ {
		draws := stats.InvGammaRvs(a[d], b[d], size[0], ig.src)
		for j := range draws {
			backing[j*ig.numVars+d] = draws[j]
		}
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{size[0], size[1]},
		tensor.WithBacking(backing),
	), nil
}

// LogProbZi returns log q(z_i | a_i, b_i) evaluated at column i of z:
//
//	a·ln(b) - lnΓ(a) - (a+1)·ln(z_i) - b/z_i
func (ig *InvGamma) LogProbZi(i int, z *G.Node) (*G.Node, error) {
	if err := ig.checkIndex(i); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	if ig.a == nil || ig.b == nil {
		return nil, fmt.Errorf("logProbZi: parameters not set")
	}

	ai, err := G.Slice(ig.a, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	bi, err := G.Slice(ig.b, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	zi, err := column(z, i)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	one := z.Graph().Constant(G.NewF64(1.0))

	norm := G.Must(G.HadamardProd(ai, G.Must(G.Log(bi))))

	lgA, err := edward.Lgamma(ai)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	norm = G.Must(G.Sub(norm, lgA))

	shapeTerm := G.Must(G.HadamardProd(
		G.Must(G.Add(ai, one)),
		G.Must(G.Log(zi)),
	))
	rateTerm := G.Must(G.HadamardDiv(bi, zi))

	out := G.Must(G.Sub(norm, shapeTerm))

	return G.Sub(out, rateTerm)
}

// PrintParams evaluates and reports the current shape and scale
func (ig *InvGamma) PrintParams(ev Evaluator) error {
	if ig.a == nil || ig.b == nil {
		return fmt.Errorf("printParams: parameters not set")
	}

	vals, err := evalFloats(ev, ig.a, ig.b)
	if err != nil {
		return fmt.Errorf("printParams: %v", err)
	}

	klog.InfoS("inverse-gamma family", "shape", vals[0], "scale", vals[1])

	return nil
}
