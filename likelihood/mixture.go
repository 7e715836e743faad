package likelihood

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MixGaussian is a variational family for a K-component mixture of
// Gaussians over D dimensions. It composes a Dirichlet family over the
// mixing proportions with Gaussian and InvGamma families over the
// K*D component means and variances:
//
//	q(z | λ) = Dirichlet(z | λ1) * Gaussian(z | λ2) * InvGamma(z | λ3)
type MixGaussian struct {
	g *G.ExprGraph
	k int

	dirich *Dirichlet
	gauss  *Gaussian
	invgam *InvGamma
}

// NewMixGaussian returns a new mixture family with K components over
// D dimensions
func NewMixGaussian(g *G.ExprGraph, d, k int, seed uint64) (*MixGaussian,
	error) {
	if d <= 0 || k < 2 {
		return nil, fmt.Errorf("newMixGaussian: need positive dimension "+
			"and at least 2 components but got d=%v k=%v", d, k)
	}

	dirich, err := NewDirichlet(g, k, k, seed)
	if err != nil {
		return nil, fmt.Errorf("newMixGaussian: %v", err)
	}
	gauss, err := NewGaussian(g, k*d, seed+1)
	if err != nil {
		return nil, fmt.Errorf("newMixGaussian: %v", err)
	}
	invgam, err := NewInvGamma(g, k*d, seed+2)
	if err != nil {
		return nil, fmt.Errorf("newMixGaussian: %v", err)
	}

	return &MixGaussian{
		g:      g,
		k:      k,
		dirich: dirich,
		gauss:  gauss,
		invgam: invgam,
	}, nil
}

// NumVars returns the total latent dimensionality across the three
// sub-families
func (m *MixGaussian) NumVars() int {
	return m.dirich.NumVars() + m.gauss.NumVars() + m.invgam.NumVars()
}

// NumParams returns the total number of variational parameters
func (m *MixGaussian) NumParams() int {
	return m.dirich.NumParams() + m.gauss.NumParams() + m.invgam.NumParams()
}

// Mapping returns the constrained parameter tensors of all three
// sub-families, in sub-family order.
func (m *MixGaussian) Mapping(x *G.Node) ([]*G.Node, error) {
	var params []*G.Node
	for _, l := range []Likelihood{m.dirich, m.gauss, m.invgam} {
		p, err := l.Mapping(x)
		if err != nil {
			return nil, fmt.Errorf("mapping: %v", err)
		}
		params = append(params, p...)
	}

	return params, nil
}

// SetParams splits the parameter tensors among the sub-families
func (m *MixGaussian) SetParams(params []*G.Node) error {
	if len(params) != 5 {
		return fmt.Errorf("setParams: expected 5 parameter tensors but "+
			"got %v", len(params))
	}

	if err := m.dirich.SetParams(params[:1]); err != nil {
		return fmt.Errorf("setParams: %v", err)
	}
	if err := m.gauss.SetParams(params[1:3]); err != nil {
		return fmt.Errorf("setParams: %v", err)
	}

	return m.invgam.SetParams(params[3:])
}

// Sample draws size[0] realizations of the full latent vector. Each
// row concatenates a mixing-proportion simplex with the component
// means and variances, giving a (size[0], NumVars) matrix.
func (m *MixGaussian) Sample(size []int, ev Evaluator) (*tensor.Dense,
	error) {
	if len(size) != 2 || size[0] <= 0 || size[1] != m.NumVars() {
		return nil, fmt.Errorf("sample: expected size (n, %v) but got %v",
			m.NumVars(), size)
	}
	n := size[0]

	ds, err := m.dirich.Sample([]int{n, m.dirich.NumVars()}, ev)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	gs, err := m.gauss.Sample([]int{n, m.gauss.NumVars()}, ev)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	is, err := m.invgam.Sample([]int{n, m.invgam.NumVars()}, ev)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	dd := ds.Data().([]float64) // (numVars, n, K) row-major
	gd := gs.Data().([]float64) // (n, K*D)
	id := is.Data().([]float64) // (n, K*D)

	gn := m.gauss.NumVars()
	in := m.invgam.NumVars()
	cols := m.NumVars()
	backing := make([]float64, n*cols)
	for j := 0; j < n; j++ {
		row := backing[j*cols : (j+1)*cols]
		// Proportions come from the first Dirichlet variable.
		copy(row[:m.k], dd[j*m.k:(j+1)*m.k])
		copy(row[m.k:m.k+gn], gd[j*gn:(j+1)*gn])
		copy(row[m.k+gn:], id[j*in:(j+1)*in])
	}

	return tensor.NewDense(
		tensor.Float64,
		[]int{n, cols},
		tensor.WithBacking(backing),
	), nil
}

// LogProbZi sums log q(z_i | λ_i) over every sub-family whose index
// range contains i. The sub-families index the shared latent matrix
// from its first column, so low indices accumulate several terms.
func (m *MixGaussian) LogProbZi(i int, z *G.Node) (*G.Node, error) {
	if i < 0 || i >= m.NumVars() {
		return nil, fmt.Errorf("logProbZi: index %v out of range [0, %v)",
			i, m.NumVars())
	}

	var lp *G.Node
	add := func(l Likelihood, n int) error {
		if i >= n {
			return nil
		}
		term, err := l.LogProbZi(i, z)
		if err != nil {
			return err
		}
		if lp == nil {
			lp = term
		} else {
			lp = G.Must(G.Add(lp, term))
		}
		return nil
	}

	if err := add(m.dirich, m.dirich.NumVars()); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	if err := add(m.gauss, m.gauss.NumVars()); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}
	if err := add(m.invgam, m.invgam.NumVars()); err != nil {
		return nil, fmt.Errorf("logProbZi: %v", err)
	}

	if lp == nil {
		lp = m.g.Constant(G.NewF64(0.0))
	}

	return lp, nil
}

// PrintParams reports the parameters of all three sub-families
func (m *MixGaussian) PrintParams(ev Evaluator) error {
	for _, l := range []Likelihood{m.dirich, m.gauss, m.invgam} {
		if err := l.PrintParams(ev); err != nil {
			return fmt.Errorf("printParams: %v", err)
		}
	}

	return nil
}
