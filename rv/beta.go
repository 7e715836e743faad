package rv

import (
	"fmt"

	"golang.org/x/exp/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// Beta is an element-wise Beta distribution with shape parameters
// alpha and beta. Scalar parameters are expanded to one-element
// vectors.
//
// Beta supports the following data types:
// - tensor.Float64
type Beta struct {
	alpha *G.Node
	beta  *G.Node

	seed uint64
}

// NewBeta returns a new Beta.
func NewBeta(alpha, beta *G.Node, seed uint64) (*Beta, error) {
	if !alpha.Shape().Eq(beta.Shape()) {
		return nil, fmt.Errorf("newBeta: expected alpha and beta to have "+
			"the same shape but got %v and %v", alpha.Shape(), beta.Shape())
	}

	if alpha.Dtype() != beta.Dtype() {
		return nil, fmt.Errorf("newBeta: expected alpha and beta to have "+
			"the same data type but got %v and %v", alpha.Dtype(),
			beta.Dtype())
	} else if alpha.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newBeta: data type %v unsupported",
			alpha.Dtype())
	}

	var err error
	if alpha.IsScalar() {
		alpha, err = G.Reshape(alpha, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newBeta: could not expand alpha to "+
				"shape (1): %v", err)
		}
		beta, err = G.Reshape(beta, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newBeta: could not expand beta to "+
				"shape (1): %v", err)
		}
	}

	return &Beta{
		alpha: alpha,
		beta:  beta,
		seed:  seed,
	}, nil
}

// LogProb calculates the element-wise log probability of x, which must
// have the same shape as the distribution:
//
//	(α-1)ln(x) + (β-1)ln(1-x) - lnB(α, β)
func (b *Beta) LogProb(x *G.Node) (*G.Node, error) {
	if !x.Shape().Eq(b.alpha.Shape()) {
		return nil, fmt.Errorf("logProb: expected shape to match "+
			"distribution shape %v but got %v", b.alpha.Shape(), x.Shape())
	}

	one := x.Graph().Constant(G.NewF64(1.0))

	aTerm := G.Must(G.HadamardProd(
		G.Must(G.Sub(b.alpha, one)),
		G.Must(G.Log(x)),
	))
	bTerm := G.Must(G.HadamardProd(
		G.Must(G.Sub(b.beta, one)),
		G.Must(G.Log(G.Must(G.Sub(one, x)))),
	))

	lnBeta, err := lbeta(b.alpha, b.beta)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return G.Sub(G.Must(G.Add(aTerm, bTerm)), lnBeta)
}

// Sample builds a node holding one draw of the distribution
func (b *Beta) Sample(sc *Scope) (*G.Node, error) {
	op, err := newSampleOp("beta", b.alpha.Dtype(), b.alpha.Shape(), 2,
		b.seed, sc, betaSampleKernel)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return G.ApplyOp(op, b.alpha, b.beta)
}

// Shape returns the number of distributions stored by the receiver
func (b *Beta) Shape() tensor.Shape {
	return b.alpha.Shape()
}

// Support returns the support of the distribution
func (b *Beta) Support() Support { return UnitInterval }

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

func betaSampleKernel(src rand.Source, params ...tensor.Tensor) (
	*tensor.Dense, error) {
	alpha, err := floats(params[0])
	if err != nil {
		return nil, fmt.Errorf("betaSampleKernel: alpha: %v", err)
	}
	beta, err := floats(params[1])
	if err != nil {
		return nil, fmt.Errorf("betaSampleKernel: beta: %v", err)
	}

	backing := make([]float64, len(alpha))
	for i := range backing {
		backing[i] = stats.BetaRvs(alpha[i], beta[i], 1, src)[0]
	}

	return tensor.NewDense(
		tensor.Float64,
		params[0].Shape().Clone(),
		tensor.WithBacking(backing),
	), nil
}
