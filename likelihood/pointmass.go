package likelihood

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	"github.com/mehrdaad/edward"
)

// Transform constrains an unconstrained parameter vector. The identity
// is used when no constraint is needed.
type Transform func(*G.Node) (*G.Node, error)

// PointMass is a degenerate variational family that places all its
// mass on a single point. It carries parameters for MAP-style
// estimation and supports neither sampling nor density evaluation.
type PointMass struct {
	base

	transform Transform
	raw       G.Nodes
	params    *G.Node
}

// NewPointMass returns a new point mass family. A nil transform leaves
// the parameters unconstrained.
func NewPointMass(g *G.ExprGraph, numVars int, transform Transform) (
	*PointMass, error) {
	if numVars <= 0 {
		return nil, fmt.Errorf("newPointMass: numVars must be positive "+
			"but got %v", numVars)
	}
	if transform == nil {
		transform = func(n *G.Node) (*G.Node, error) { return n, nil }
	}

	return &PointMass{
		base:      newBase(g, numVars, numVars, 0),
		transform: transform,
	}, nil
}

// Mapping returns the constrained point derived from a fresh
// unconstrained parameter vector
func (p *PointMass) Mapping(x *G.Node) ([]*G.Node, error) {
	raw := edward.Trainable(G.NewVector(
		p.g,
		tensor.Float64,
		G.WithName(edward.NextName("pointmass_params")),
		G.WithShape(p.numVars),
		G.WithInit(G.Gaussian(0, 1)),
	))
	p.raw = G.Nodes{raw}

	point, err := p.transform(raw)
	if err != nil {
		return nil, fmt.Errorf("mapping: %v", err)
	}

	return []*G.Node{point}, nil
}

// SetParams binds the constrained point
func (p *PointMass) SetParams(params []*G.Node) error {
	if len(params) != 1 {
		return fmt.Errorf("setParams: expected 1 parameter tensor but "+
			"got %v", len(params))
	}

	p.params = params[0]

	return nil
}

// GetParams returns the constrained point, or nil before SetParams
func (p *PointMass) GetParams() *G.Node { return p.params }

// PrintParams evaluates and reports the current point
func (p *PointMass) PrintParams(ev Evaluator) error {
	if p.params == nil {
		return fmt.Errorf("printParams: parameters not set")
	}

	vals, err := evalFloats(ev, p.params)
	if err != nil {
		return fmt.Errorf("printParams: %v", err)
	}

	klog.InfoS("point mass family", "params", vals[0])

	return nil
}
