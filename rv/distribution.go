// Package rv provides random variables over Gorgonia expression
// graphs: graph-level distributions, sampled values, and the
// copy-with-substitution primitive that inference routines use to
// realize independent draws of a model.
package rv

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Support describes the set a distribution's samples live on. The
// transform registry keys bijectors on it.
type Support int

const (
	// Real is unconstrained continuous support
	Real Support = iota

	// Positive is continuous support on (0, ∞)
	Positive

	// UnitInterval is continuous support on (0, 1)
	UnitInterval

	// Discrete is countable support; such variables are never
	// reparameterized or transformed
	Discrete
)

// Distribution is a probability distribution whose parameters are
// nodes of an expression graph.
type Distribution interface {
	// Sample builds a node holding one fresh draw of the full
	// variable. The node is not differentiable. The scope controls
	// naming and the draw's random stream.
	Sample(sc *Scope) (*G.Node, error)

	// LogProb returns the element-wise log-density of x, which must
	// have the same shape as the distribution
	LogProb(x *G.Node) (*G.Node, error)

	Shape() tensor.Shape

	Support() Support
}
