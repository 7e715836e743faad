package likelihood

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// Gaussian is the mean-field Gaussian family
//
//	q(z | λ) = Π_{i=1}^d 𝒩(z_i | m_i, s_i)
//
// It is the only family with reparameterized sampling: a draw is
// m + ε·s for standard normal noise ε, so gradients flow through
// samples to the parameters.
type Gaussian struct {
	base

	raw  G.Nodes
	m, s *G.Node
}

// NewGaussian returns a new Gaussian family over numVars dimensions.
func NewGaussian(g *G.ExprGraph, numVars int, seed uint64) (*Gaussian,
	error) {
	if numVars <= 0 {
		return nil, fmt.Errorf("newGaussian: numVars must be positive "+
			"but got %v", numVars)
	}

	return &Gaussian{
		base: newBase(g, numVars, 2*numVars, seed),
	}, nil
}

// Mapping returns the location and (positive) scale vectors derived
// from fresh unconstrained parameter vectors.
func (n *Gaussian) Mapping(x *G.Node) ([]*G.Node, error) {
	rawM := edward.Trainable(G.NewVector(
		n.g,
		tensor.Float64,
		G.WithName(edward.NextName("gaussian_mu")),
		G.WithShape(n.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	rawS := edward.Trainable(G.NewVector(
		n.g,
		tensor.Float64,
		G.WithName(edward.NextName("gaussian_sigma")),
		G.WithShape(n.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	n.raw = G.Nodes{rawM, rawS}

	s, err := edward.Softplus(rawS)
	if err != nil {
		return nil, fmt.Errorf("mapping: %v", err)
	}

	return []*G.Node{rawM, s}, nil
}

// SetParams binds the location and scale vectors
func (n *Gaussian) SetParams(params []*G.Node) error {
	if len(params) != 2 {
		return fmt.Errorf("setParams: expected 2 parameter tensors but "+
			"got %v", len(params))
	}

	n.m = params[0]
	n.s = params[1]

	return nil
}

// SampleNoise draws standard normal noise of the given size,
// independent of the current parameter values
func (n *Gaussian) SampleNoise(size []int) (*tensor.Dense, error) {
	if err := n.checkSize(size); err != nil {
		return nil, fmt.Errorf("sampleNoise: %v", err)
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{size[0], size[1]},
		tensor.WithBacking(stats.NormalRvs(0, 1, size[0]*size[1], n.src)),
	), nil
}

// Reparam deterministically transforms base noise eps into a sample:
// m + eps·s, broadcast over the batch dimension of eps.
func (n *Gaussian) Reparam(eps *G.Node) (*G.Node, error) {
	if n.m == nil || n.s == nil {
		return nil, fmt.Errorf("reparam: parameters not set")
	}

	batchDim := []byte{0}
	scaled, err := G.BroadcastHadamardProd(eps, n.s, nil, batchDim)
	if err != nil {
		return nil, fmt.Errorf("reparam: %v", err)
	}

	out, err := G.BroadcastAdd(scaled, n.m, nil, batchDim)
	if err != nil {
		return nil, fmt.Errorf("reparam: %v", err)
	}

	return out, nil
}

// Sample draws size[0] rows by reparameterizing fresh noise
func (n *Gaussian) Sample(size []int, ev Evaluator) (*tensor.Dense, error) {
	noise, err := n.SampleNoise(size)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	eps := G.NewMatrix(
		n.g,
		tensor.Float64,
		G.WithName(edward.NextName("gaussian_eps")),
		G.WithShape(size[0], size[1]),
		G.WithValue(noise),
	)

	z, err := n.Reparam(eps)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	vals, err := ev.Eval(z)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	out, ok := vals[0].(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("sample: expected dense sample but got %T",
			vals[0])
	}

	return out, nil
}

// LogProbZi returns log q(z_i | m_i, s_i) evaluated at column i of z
func (n *Gaussian) LogProbZi(i int, z *G.Node) (*G.Node, error) {
	if err := n.checkIndex(i); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	if n.m == nil || n.s == nil {
		return nil, fmt.Errorf("logProbZi: parameters not set")
	}

	mi, err := G.Slice(n.m, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	si, err := G.Slice(n.s, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	zi, err := column(z, i)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	two := z.Graph().Constant(G.NewF64(2.0))
	negativeHalf := z.Graph().Constant(G.NewF64(-0.5))
	lnRootTwoPi := z.Graph().Constant(G.NewF64(math.Log(math.Sqrt(
		math.Pi * 2.))))

	out := G.Must(G.Sub(zi, mi))
	out = G.Must(G.HadamardDiv(out, si))
	out = G.Must(G.Pow(out, two))
	out = G.Must(G.HadamardProd(negativeHalf, out))
	out = G.Must(G.Sub(out, G.Must(G.Log(si))))

	return G.Sub(out, lnRootTwoPi)
}

// PrintParams evaluates and reports the current location and scale
func (n *Gaussian) PrintParams(ev Evaluator) error {
	if n.m == nil || n.s == nil {
		return fmt.Errorf("printParams: parameters not set")
	}

	vals, err := evalFloats(ev, n.m, n.s)
	if err != nil {
		return fmt.Errorf("printParams: %v", err)
	}

	klog.InfoS("gaussian family", "mean", vals[0], "stddev", vals[1])

	return nil
}
