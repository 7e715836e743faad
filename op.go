// Package edward provides extended Gorgonia operations used by the
// probabilistic inference packages of this module.
package edward

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// StopGradient returns a node that evaluates to x but through which no
// gradient flows. Density evaluations of sampled values use this so
// that only a distribution's own parameters receive gradient.
func StopGradient(x *G.Node) (*G.Node, error) {
	op := newStopGradientOp()

	return G.ApplyOp(op, x)
}

// Lgamma computes the element-wise log-gamma function
func Lgamma(x *G.Node) (*G.Node, error) {
	op := newLgammaOp()

	return G.ApplyOp(op, x)
}

// Softplus computes the element-wise softplus log(1 + exp(x)). It is
// the transform used to constrain unconstrained parameters to be
// positive.
func Softplus(x *G.Node) (*G.Node, error) {
	op := newSoftplusOp()

	return G.ApplyOp(op, x)
}

// Clamp clamps a node's values to be between min and max. This function
// can clamp a tensor storing float64's, float32's, or any integer
// type, but is only differentiable if the tensor stores floating point
// types. If passGradient is true, then the gradient is passed through
// the clamping operation unchanged; otherwise the gradient is zero
// outside [min, max].
func Clamp(x *G.Node, min, max interface{}, passGradient bool) (*G.Node,
	error) {
	op, err := newClampOp(min, max, passGradient)
	if err != nil {
		return nil, fmt.Errorf("clamp: %v", err)
	}

	return G.ApplyOp(op, x)
}
