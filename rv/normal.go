package rv

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/mehrdaad/edward/stats"
)

// Normal is a univariate normal distribution, which may hold a batch
// of normal distributions simultaneously: each element of the mean and
// standard deviation tensors defines a distribution element-wise. If
// the mean and standard deviation are scalars, they are expanded to
// one-element vectors.
//
// Normal supports the following data types:
// - tensor.Float64
type Normal struct {
	mean   *G.Node
	stddev *G.Node

	seed uint64
}

// NewNormal returns a new Normal.
func NewNormal(mean, stddev *G.Node, seed uint64) (*Normal, error) {
	if !mean.Shape().Eq(stddev.Shape()) {
		return nil, fmt.Errorf("newNormal: expected mean and stddev to "+
			"have the same shape but got %v and %v", mean.Shape(),
			stddev.Shape())
	}

	if mean.Dtype() != stddev.Dtype() {
		return nil, fmt.Errorf("newNormal: expected mean and stddev to "+
			"have the same data type but got %v and %v", mean.Dtype(),
			stddev.Dtype())
	} else if mean.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newNormal: data type %v unsupported",
			mean.Dtype())
	}

	var err error
	if mean.IsScalar() {
		mean, err = G.Reshape(mean, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newNormal: could not expand mean to "+
				"shape (1): %v", err)
		}
		stddev, err = G.Reshape(stddev, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newNormal: could not expand stddev to "+
				"shape (1): %v", err)
		}
	}

	return &Normal{
		mean:   mean,
		stddev: stddev,
		seed:   seed,
	}, nil
}

// LogProb calculates the element-wise log probability of x. If x has
// one more dimension than the distribution, the first dimension of x
// is treated as a batch dimension.
func (n *Normal) LogProb(x *G.Node) (*G.Node, error) {
	x, err := n.fixShape(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	two := x.Graph().Constant(G.NewF64(2.0))
	negativeHalf := x.Graph().Constant(G.NewF64(-0.5))
	lnRootTwoPi := x.Graph().Constant(G.NewF64(math.Log(math.Sqrt(
		math.Pi * 2.))))

	if n.isBatch(x) {
		batchDim := []byte{0}
		x = G.Must(G.BroadcastSub(x, n.mean, nil, batchDim))
		x = G.Must(G.BroadcastHadamardDiv(x, n.stddev, nil, batchDim))
		x = G.Must(G.Pow(x, two))
		x = G.Must(G.HadamardProd(negativeHalf, x))
		lnStd := G.Must(G.Log(n.stddev))
		x = G.Must(G.BroadcastSub(x, lnStd, nil, batchDim))
		x = G.Must(G.Sub(x, lnRootTwoPi))
	} else {
		x = G.Must(G.Sub(x, n.mean))
		x = G.Must(G.HadamardDiv(x, n.stddev))
		x = G.Must(G.Pow(x, two))
		x = G.Must(G.HadamardProd(negativeHalf, x))
		lnStd := G.Must(G.Log(n.stddev))
		x = G.Must(G.Sub(x, lnStd))
		x = G.Must(G.Sub(x, lnRootTwoPi))
	}

	return x, nil
}

// Sample builds a node holding one draw of the distribution
func (n *Normal) Sample(sc *Scope) (*G.Node, error) {
	op, err := newSampleOp("normal", n.mean.Dtype(), n.mean.Shape(), 2,
		n.seed, sc, normalSampleKernel)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return G.ApplyOp(op, n.mean, n.stddev)
}

// Shape returns the number of distributions stored by the receiver
func (n *Normal) Shape() tensor.Shape {
	return n.mean.Shape()
}

// Support returns the support of the distribution
func (n *Normal) Support() Support { return Real }

// Mean returns the mean of the distribution(s) stored by the receiver
func (n *Normal) Mean() *G.Node {
	return n.mean
}

// StdDev returns the standard deviation of the distribution(s) stored
// by the receiver
func (n *Normal) StdDev() *G.Node {
	return n.stddev
}

// isBatch returns whether x is a batch of samples
func (n *Normal) isBatch(x *G.Node) bool {
	return !x.Shape().Eq(n.mean.Shape())
}

// fixShape adjusts the shape of x so that it can be used in some
// method. It returns an error indicating if x is of an invalid shape
// which could not be adjusted.
func (n *Normal) fixShape(x *G.Node) (*G.Node, error) {
	if x.IsScalar() && n.mean.Shape()[0] == 1 {
		return G.Reshape(x, []int{1})

	} else if len(x.Shape()) == 1 && n.mean.Shape()[0] == 1 &&
		x.Shape()[0] != 1 {
		// A vector input against a one-element distribution is a
		// batch: batch dim = 0, sample shape = dim 1
		return G.Reshape(x, []int{x.Shape()[0], 1})

	} else if n.isBatch(x) && !tensor.Shape(x.Shape()[1:]).Eq(n.Shape()) {
		msg := "expected shape to match distribution shape %v at all " +
			"dimensions except batch (dim 0) but got x shape %v"
		return nil, fmt.Errorf(msg, n.Shape(), x.Shape())
	}

	return x, nil
}

func normalSampleKernel(src rand.Source, params ...tensor.Tensor) (
	*tensor.Dense, error) {
	mean, err := floats(params[0])
	if err != nil {
		return nil, fmt.Errorf("normalSampleKernel: mean: %v", err)
	}
	stddev, err := floats(params[1])
	if err != nil {
		return nil, fmt.Errorf("normalSampleKernel: stddev: %v", err)
	}

	backing := make([]float64, len(mean))
	for i := range backing {
		backing[i] = stats.NormalRvs(mean[i], stddev[i], 1, src)[0]
	}

	return tensor.NewDense(
		tensor.Float64,
		params[0].Shape().Clone(),
		tensor.WithBacking(backing),
	), nil
}
