// Package inference provides variational inference routines over
// models expressed as random variable graphs. The trainers here build
// loss nodes and gradient pairs; stepping an optimizer and running the
// graph are left to the caller.
package inference

import (
	"sort"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"

	"github.com/mehrdaad/edward/rv"
)

// Phase selects which sample source updates the variational
// parameters.
type Phase int

const (
	// PhaseSleep updates variational parameters against draws from the
	// model prior
	PhaseSleep Phase = iota

	// PhaseWake updates variational parameters against draws from the
	// variational distribution itself, with the draws held fixed
	PhaseWake
)

func (p Phase) String() string {
	switch p {
	case PhaseSleep:
		return "sleep"
	case PhaseWake:
		return "wake"
	default:
		return "unknown"
	}
}

// Binding binds an observed variable to either a literal value node or
// a stochastic stand-in variable.
type Binding struct {
	node  *G.Node
	stoch *rv.RandomVariable
}

// Lit binds an observation to a literal value node
func Lit(n *G.Node) Binding { return Binding{node: n} }

// Stoch binds an observation to another random variable. A fresh draw
// of the bound variable stands in for the observation on every use.
func Stoch(v *rv.RandomVariable) Binding { return Binding{stoch: v} }

// Config configures a trainer. The zero value of every optional field
// selects its default.
type Config struct {
	// LatentVars pairs each latent model variable with its variational
	// counterpart
	LatentVars map[*rv.RandomVariable]*rv.RandomVariable

	// Data binds observed model variables to their observations
	Data map[*rv.RandomVariable]Binding

	// NSamples is the number of Monte Carlo samples per loss term.
	// Zero means 1.
	NSamples int

	// PhaseQ selects the sample source for variational updates
	PhaseQ Phase

	// SkipTransform leaves constrained latent variables on their native
	// support instead of transforming them to unconstrained space
	SkipTransform bool

	// Scale weights individual variables' density terms. Missing
	// entries weigh 1.
	Scale map[*rv.RandomVariable]float64

	// VarList is the set of parameter nodes to differentiate with
	// respect to. Nil means every trainable registered against the
	// model graph.
	VarList G.Nodes

	// Collector receives the loss metric nodes. Nil disables metrics.
	Collector Collector

	// Reg holds penalty terms added to every loss. Nil means no
	// penalty.
	Reg *Regularizer
}

// buildLatentVars validates a latent binding map and returns it with
// iteration order fixed by variable creation order.
func buildLatentVars(latents map[*rv.RandomVariable]*rv.RandomVariable) (
	[]*rv.RandomVariable, map[*rv.RandomVariable]*rv.RandomVariable, error) {
	out := make(map[*rv.RandomVariable]*rv.RandomVariable, len(latents))
	keys := make([]*rv.RandomVariable, 0, len(latents))
	for z, qz := range latents {
		if z == nil || qz == nil {
			return nil, nil, errors.New("latent vars: nil variable in " +
				"binding")
		}
		if !z.Dist().Shape().Eq(qz.Dist().Shape()) {
			return nil, nil, errors.Errorf("latent vars: %v has shape %v "+
				"but %v has shape %v", z.Name(), z.Dist().Shape(),
				qz.Name(), qz.Dist().Shape())
		}
		out[z] = qz
		keys = append(keys, z)
	}
	sortByID(keys)

	return keys, out, nil
}

// buildData validates an observation binding map and returns it with
// iteration order fixed by variable creation order.
func buildData(data map[*rv.RandomVariable]Binding) ([]*rv.RandomVariable,
	map[*rv.RandomVariable]Binding, error) {
	out := make(map[*rv.RandomVariable]Binding, len(data))
	keys := make([]*rv.RandomVariable, 0, len(data))
	for x, b := range data {
		if x == nil {
			return nil, nil, errors.New("data: nil variable in binding")
		}
		switch {
		case b.node != nil && b.stoch != nil:
			return nil, nil, errors.Errorf("data: %v bound to both a "+
				"value and a variable", x.Name())
		case b.node == nil && b.stoch == nil:
			return nil, nil, errors.Errorf("data: %v has an empty binding",
				x.Name())
		case b.node != nil && !x.Dist().Shape().Eq(b.node.Shape()):
			return nil, nil, errors.Errorf("data: %v has shape %v but its "+
				"observation has shape %v", x.Name(), x.Dist().Shape(),
				b.node.Shape())
		case b.stoch != nil && !x.Dist().Shape().Eq(b.stoch.Dist().Shape()):
			return nil, nil, errors.Errorf("data: %v has shape %v but its "+
				"stand-in %v has shape %v", x.Name(), x.Dist().Shape(),
				b.stoch.Name(), b.stoch.Dist().Shape())
		}
		out[x] = b
		keys = append(keys, x)
	}
	sortByID(keys)

	return keys, out, nil
}

// buildScale validates per-variable density weights
func buildScale(scale map[*rv.RandomVariable]float64) (
	map[*rv.RandomVariable]float64, error) {
	out := make(map[*rv.RandomVariable]float64, len(scale))
	for v, s := range scale {
		if v == nil {
			return nil, errors.New("scale: nil variable")
		}
		if s <= 0 {
			return nil, errors.Errorf("scale: %v has non-positive scale %v",
				v.Name(), s)
		}
		out[v] = s
	}

	return out, nil
}

// buildVarList validates an explicit differentiation target list
func buildVarList(varList G.Nodes) (G.Nodes, error) {
	seen := make(map[*G.Node]struct{}, len(varList))
	out := make(G.Nodes, 0, len(varList))
	for _, v := range varList {
		if v == nil {
			return nil, errors.New("var list: nil node")
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out, nil
}

// graphOf returns the single expression graph every binding lives on
func graphOf(latentKeys []*rv.RandomVariable,
	latents map[*rv.RandomVariable]*rv.RandomVariable,
	dataKeys []*rv.RandomVariable,
	data map[*rv.RandomVariable]Binding) (*G.ExprGraph, error) {
	var g *G.ExprGraph

	check := func(n *G.Node, name string) error {
		if g == nil {
			g = n.Graph()
		} else if n.Graph() != g {
			return errors.Errorf("%v lives on a different expression "+
				"graph", name)
		}
		return nil
	}

	for _, z := range latentKeys {
		if err := check(z.Value(), z.Name()); err != nil {
			return nil, err
		}
		if err := check(latents[z].Value(), latents[z].Name()); err != nil {
			return nil, err
		}
	}
	for _, x := range dataKeys {
		if err := check(x.Value(), x.Name()); err != nil {
			return nil, err
		}
		b := data[x]
		if b.node != nil {
			if err := check(b.node, b.node.Name()); err != nil {
				return nil, err
			}
		} else {
			if err := check(b.stoch.Value(), b.stoch.Name()); err != nil {
				return nil, err
			}
		}
	}

	if g == nil {
		return nil, errors.New("no bindings: cannot determine the " +
			"expression graph")
	}

	return g, nil
}

func sortByID(vs []*rv.RandomVariable) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].ID() < vs[j].ID() })
}
