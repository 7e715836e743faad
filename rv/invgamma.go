package rv

import (
	"fmt"

	"golang.org/x/exp/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/stats"
)

// InvGamma is an element-wise inverse-gamma distribution with shape
// alpha and scale beta. Scalar parameters are expanded to one-element
// vectors.
//
// InvGamma supports the following data types:
// - tensor.Float64
type InvGamma struct {
	alpha *G.Node
	beta  *G.Node

	seed uint64
}

// NewInvGamma returns a new InvGamma.
func NewInvGamma(alpha, beta *G.Node, seed uint64) (*InvGamma, error) {
	if !alpha.Shape().Eq(beta.Shape()) {
		return nil, fmt.Errorf("newInvGamma: expected alpha and beta to "+
			"have the same shape but got %v and %v", alpha.Shape(),
			beta.Shape())
	}

	if alpha.Dtype() != beta.Dtype() {
		return nil, fmt.Errorf("newInvGamma: expected alpha and beta to "+
			"have the same data type but got %v and %v", alpha.Dtype(),
			beta.Dtype())
	} else if alpha.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newInvGamma: data type %v unsupported",
			alpha.Dtype())
	}

	var err error
	if alpha.IsScalar() {
		alpha, err = G.Reshape(alpha, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newInvGamma: could not expand alpha "+
				"to shape (1): %v", err)
		}
		beta, err = G.Reshape(beta, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newInvGamma: could not expand beta "+
				"to shape (1): %v", err)
		}
	}

	return &InvGamma{
		alpha: alpha,
		beta:  beta,
		seed:  seed,
	}, nil
}

// LogProb calculates the element-wise log probability of x, which must
// have the same shape as the distribution:
//
//	α·ln(β) - lnΓ(α) - (α+1)·ln(x) - β/x
func (ig *InvGamma) LogProb(x *G.Node) (*G.Node, error) {
	if !x.Shape().Eq(ig.alpha.Shape()) {
		return nil, fmt.Errorf("logProb: expected shape to match "+
			"distribution shape %v but got %v", ig.alpha.Shape(), x.Shape())
	}

	one := x.Graph().Constant(G.NewF64(1.0))

	norm := G.Must(G.HadamardProd(ig.alpha, G.Must(G.Log(ig.beta))))

	lgA, err := edward.Lgamma(ig.alpha)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	norm = G.Must(G.Sub(norm, lgA))

	shapeTerm := G.Must(G.HadamardProd(
		G.Must(G.Add(ig.alpha, one)),
		G.Must(G.Log(x)),
	))
	rateTerm := G.Must(G.HadamardDiv(ig.beta, x))

	out := G.Must(G.Sub(norm, shapeTerm))

	return G.Sub(out, rateTerm)
}

// Sample builds a node holding one draw of the distribution
func (ig *InvGamma) Sample(sc *Scope) (*G.Node, error) {
	op, err := newSampleOp("invgamma", ig.alpha.Dtype(), ig.alpha.Shape(),
		2, ig.seed, sc, invGammaSampleKernel)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return G.ApplyOp(op, ig.alpha, ig.beta)
}

// Shape returns the number of distributions stored by the receiver
func (ig *InvGamma) Shape() tensor.Shape {
	return ig.alpha.Shape()
}

// Support returns the support of the distribution
func (ig *InvGamma) Support() Support { return Positive }

func invGammaSampleKernel(src rand.Source, params ...tensor.Tensor) (
	*tensor.Dense, error) {
	alpha, err := floats(params[0])
	if err != nil {
		return nil, fmt.Errorf("invGammaSampleKernel: alpha: %v", err)
	}
	beta, err := floats(params[1])
	if err != nil {
		return nil, fmt.Errorf("invGammaSampleKernel: beta: %v", err)
	}

	backing := make([]float64, len(alpha))
	for i := range backing {
		backing[i] = stats.InvGammaRvs(alpha[i], beta[i], 1, src)[0]
	}

	return tensor.NewDense(
		tensor.Float64,
		params[0].Shape().Clone(),
		tensor.WithBacking(backing),
	), nil
}
