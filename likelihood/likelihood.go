// Package likelihood provides mean-field variational families
// q(z | λ). Each family owns its variational parameters in
// unconstrained form and exposes sampling and per-dimension
// log-density evaluation through a uniform contract, so inference
// routines never need to know the concrete family.
package likelihood

import (
	"fmt"

	"golang.org/x/exp/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Evaluator evaluates graph nodes to concrete values. It is the
// boundary to whatever runtime executes the expression graph; this
// package never constructs virtual machines itself.
type Evaluator interface {
	Eval(ns ...*G.Node) ([]G.Value, error)
}

// Likelihood is a variational family q(z | λ) over a fixed-size latent
// block. NumVars and NumParams are fixed at construction and never
// change.
type Likelihood interface {
	// NumVars returns the dimensionality of the latent block
	NumVars() int

	// NumParams returns the number of trainable parameters
	NumParams() int

	// Mapping returns the ordered constrained parameter tensors
	// derived from a fresh set of unconstrained trainable parameters.
	// The conditioning input x is ignored by the mean-field families;
	// amortized variants condition on it.
	Mapping(x *G.Node) ([]*G.Node, error)

	// SetParams binds the output of Mapping to the family's internal
	// state for subsequent use
	SetParams(params []*G.Node) error

	// Sample draws size[0] independent realizations of the full
	// NumVars-dimensional vector under the current parameter values
	Sample(size []int, ev Evaluator) (*tensor.Dense, error)

	// LogProbZi returns log q(z_i | λ_i) evaluated at the i-th
	// coordinate of every row of z. It fails for i outside
	// [0, NumVars).
	LogProbZi(i int, z *G.Node) (*G.Node, error)

	// PrintParams evaluates and reports the current parameter values.
	// A diagnostic, not used in the hot path.
	PrintParams(ev Evaluator) error
}

// Reparameterizer is a Likelihood whose samples can be expressed as a
// deterministic, differentiable transform of parameter-free noise.
type Reparameterizer interface {
	Likelihood

	// SampleNoise draws standard base-distribution noise, independent
	// of the current parameter values
	SampleNoise(size []int) (*tensor.Dense, error)

	// Reparam deterministically transforms base noise into a sample
	// under the current parameter values. It is differentiable with
	// respect to the parameters.
	Reparam(eps *G.Node) (*G.Node, error)
}

// base carries the state shared by every family and supplies failing
// stubs for each optional capability, so a family only implements what
// it supports.
type base struct {
	g         *G.ExprGraph
	numVars   int
	numParams int
	src       rand.Source
}

func newBase(g *G.ExprGraph, numVars, numParams int, seed uint64) base {
	return base{
		g:         g,
		numVars:   numVars,
		numParams: numParams,
		src:       rand.NewSource(seed),
	}
}

// NumVars returns the dimensionality of the latent block
func (b *base) NumVars() int { return b.numVars }

// NumParams returns the number of trainable parameters
func (b *base) NumParams() int { return b.numParams }

func (b *base) Mapping(x *G.Node) ([]*G.Node, error) {
	return nil, fmt.Errorf("mapping: not implemented")
}

func (b *base) SetParams(params []*G.Node) error {
	return fmt.Errorf("setParams: not implemented")
}

func (b *base) Sample(size []int, ev Evaluator) (*tensor.Dense, error) {
	return nil, fmt.Errorf("sample: not implemented")
}

func (b *base) SampleNoise(size []int) (*tensor.Dense, error) {
	return nil, fmt.Errorf("sampleNoise: not implemented")
}

func (b *base) Reparam(eps *G.Node) (*G.Node, error) {
	return nil, fmt.Errorf("reparam: not implemented")
}

func (b *base) LogProbZi(i int, z *G.Node) (*G.Node, error) {
	return nil, fmt.Errorf("logProbZi: not implemented")
}

func (b *base) PrintParams(ev Evaluator) error {
	return fmt.Errorf("printParams: not implemented")
}

// checkIndex fails for a dimension index outside [0, numVars)
func (b *base) checkIndex(i int) error {
	if i < 0 || i >= b.numVars {
		return fmt.Errorf("index %v out of range [0, %v)", i, b.numVars)
	}
	return nil
}

// checkSize validates a sample size of the form (batch, numVars)
func (b *base) checkSize(size []int) error {
	if len(size) != 2 {
		return fmt.Errorf("expected size of form (batch, numVars) but "+
			"got %v", size)
	} else if size[0] <= 0 {
		return fmt.Errorf("batch size must be positive but got %v", size[0])
	} else if size[1] != b.numVars {
		return fmt.Errorf("expected %v variables but got size %v",
			b.numVars, size)
	}
	return nil
}

// column selects column i of the latent matrix z, reshaped to an
// explicit (rows,) vector. A plain slice of a single-row batch
// materializes as a scalar, which downstream element-wise ops reject.
func column(z *G.Node, i int) (*G.Node, error) {
	zi, err := G.Slice(z, nil, G.S(i))
	if err != nil {
		return nil, fmt.Errorf("could not slice column %v: %v", i, err)
	}

	return G.Reshape(zi, []int{z.Shape()[0]})
}

// evalFloats evaluates nodes and returns their elements in index order
func evalFloats(ev Evaluator, ns ...*G.Node) ([][]float64, error) {
	vals, err := ev.Eval(ns...)
	if err != nil {
		return nil, fmt.Errorf("evalFloats: %v", err)
	}

	out := make([][]float64, len(vals))
	for i, v := range vals {
		switch data := v.Data().(type) {
		case []float64:
			out[i] = data
		case float64:
			out[i] = []float64{data}
		default:
			return nil, fmt.Errorf("evalFloats: expected float64 values "+
				"but got %T", v.Data())
		}
	}

	return out, nil
}
