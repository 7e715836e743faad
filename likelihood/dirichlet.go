package likelihood

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// Dirichlet is the mean-field Dirichlet family
//
//	q(z | λ) = Π_{i=1}^d Dirichlet(z_i | α_i)
//
// Each of the d variables is a K-simplex draw, so samples carry an
// extra leading dimension: Sample returns a (d, batch, K) tensor.
type Dirichlet struct {
	base

	k     int
	raw   G.Nodes
	alpha *G.Node
}

// NewDirichlet returns a new Dirichlet family of numVars variables,
// each a K-dimensional simplex.
func NewDirichlet(g *G.ExprGraph, numVars, k int, seed uint64) (*Dirichlet,
	error) {
	if numVars <= 0 {
		return nil, fmt.Errorf("newDirichlet: numVars must be positive "+
			"but got %v", numVars)
	}
	if k < 2 {
		return nil, fmt.Errorf("newDirichlet: simplex dimension must be "+
			"at least 2 but got %v", k)
	}

	return &Dirichlet{
		base: newBase(g, numVars, k*numVars, seed),
		k:    k,
	}, nil
}

// K returns the simplex dimension of each variable
func (d *Dirichlet) K() int { return d.k }

// Mapping returns the constrained concentration matrix derived from a
// fresh unconstrained parameter matrix.
func (d *Dirichlet) Mapping(x *G.Node) ([]*G.Node, error) {
	raw := edward.Trainable(G.NewMatrix(
		d.g,
		tensor.Float64,
		G.WithName(edward.NextName("dirichlet_alpha")),
		G.WithShape(d.numVars, d.k),
		G.WithInit(G.Gaussian(0, 1)),
	))
	d.raw = G.Nodes{raw}

	alpha, err := edward.Softplus(raw)
	if err != nil {
		return nil, fmt.Errorf("mapping: %v", err)
	}

	return []*G.Node{alpha}, nil
}

// SetParams binds the concentration matrix
func (d *Dirichlet) SetParams(params []*G.Node) error {
	if len(params) != 1 {
		return fmt.Errorf("setParams: expected 1 parameter tensor but "+
			"got %v", len(params))
	}

	d.alpha = params[0]

	return nil
}

// Sample draws size[0] simplex realizations of each of the family's
// variables under the current concentrations. The result has shape
// (numVars, size[0], K).
func (d *Dirichlet) Sample(size []int, ev Evaluator) (*tensor.Dense, error) {
	if err := d.checkSize(size); err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	if d.alpha == nil {
		return nil, fmt.Errorf("sample: parameters not set")
	}

	vals, err := evalFloats(ev, d.alpha)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	alpha := vals[0] // row-major (numVars, K)

	n := size[0]
	backing := make([]float64, d.numVars*n*d.k)
	for v := 0; v < d.numVars; v++ {
		rows := stats.DirichletRvs(alpha[v*d.k:(v+1)*d.k], n, d.src)
		for j := range rows {
			copy(backing[(v*n+j)*d.k:(v*n+j+1)*d.k], rows[j])
		}
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{d.numVars, n, d.k},
		tensor.WithBacking(backing),
	), nil
}

// LogProbZi returns log q(z_i | α_i). The rows of z hold simplex
// draws in their first K columns; the index selects the concentration
// row α_i those draws are evaluated under.
func (d *Dirichlet) LogProbZi(i int, z *G.Node) (*G.Node, error) {
	if err := d.checkIndex(i); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	if d.alpha == nil {
		return nil, fmt.Errorf("logProbZi: parameters not set")
	}

	if z.Dims() != 2 || z.Shape()[1] < d.k {
		return nil, fmt.Errorf("logProbZi: expected z rows of at least "+
			"%v columns but got shape %v", d.k, z.Shape())
	}

	alphaI, err := G.Slice(d.alpha, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	block, err := G.Slice(z, nil, G.S(0, d.k))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: could not slice simplex "+
			"block: %v", err)
	}
	// Explicit shape so single-row batches stay matrices.
	block, err = G.Reshape(block, []int{z.Shape()[0], d.k})
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	one := z.Graph().Constant(G.NewF64(1.0))
	batchDim := []byte{0}

	am1 := G.Must(G.Sub(alphaI, one))
	terms := G.Must(G.BroadcastHadamardProd(
		G.Must(G.Log(block)), am1, nil, batchDim,
	))
	lp := G.Must(G.Sum(terms, 1))

	// Normalizer: ΣlnΓ(α_j) - lnΓ(Σα_j)
	lgEach, err := edward.Lgamma(alphaI)
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	lgSum, err := edward.Lgamma(G.Must(G.Sum(alphaI)))
	if err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	lnB := G.Must(G.Sub(G.Must(G.Sum(lgEach)), lgSum))

	return G.Sub(lp, lnB)
}

// PrintParams evaluates and reports the current concentrations
func (d *Dirichlet) PrintParams(ev Evaluator) error {
	if d.alpha == nil {
		return fmt.Errorf("printParams: parameters not set")
	}

	vals, err := evalFloats(ev, d.alpha)
	if err != nil {
		return fmt.Errorf("printParams: %v", err)
	}

	klog.InfoS("dirichlet family", "concentration", vals[0])

	return nil
}
