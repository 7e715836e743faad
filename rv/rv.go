package rv

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"

	"github.com/mehrdaad/edward"
)

// Resolver maps a parent variable to the node standing in for its
// value during one realization of a Def.
type Resolver func(parent *RandomVariable) (*G.Node, error)

// Def builds a variable's distribution. Parent values must be obtained
// through resolve, never read directly, so that copies can substitute
// them.
type Def func(resolve Resolver) (Distribution, error)

// RandomVariable is a random quantity in a model: a distribution over
// an expression graph together with one realized sample node. Copying
// a variable under a new scope re-runs its Def, producing a fresh,
// independently sampled realization.
type RandomVariable struct {
	id      uint64
	name    string
	def     Def
	parents []*RandomVariable
	dist    Distribution
	value   *G.Node
}

// New builds a variable named name from def. parents must list every
// variable the def resolves; they are realized with their own current
// values.
func New(name string, def Def, parents ...*RandomVariable) (*RandomVariable,
	error) {
	v := &RandomVariable{
		id:      edward.NextSerial(),
		name:    name,
		def:     def,
		parents: parents,
	}

	resolve := func(p *RandomVariable) (*G.Node, error) {
		if p == nil || p.value == nil {
			return nil, errors.Errorf("rv %v: unrealized parent", name)
		}
		return p.value, nil
	}

	dist, err := def(resolve)
	if err != nil {
		return nil, errors.Wrapf(err, "rv %v: build distribution", name)
	}

	value, err := dist.Sample(NewScope(name))
	if err != nil {
		return nil, errors.Wrapf(err, "rv %v: draw value", name)
	}

	v.dist = dist
	v.value = value

	return v, nil
}

// Name returns the variable's name
func (v *RandomVariable) Name() string { return v.name }

// ID returns the variable's creation-order identifier. IDs are unique
// and monotonically increasing, giving map-valued collections of
// variables a stable iteration order.
func (v *RandomVariable) ID() uint64 { return v.id }

// Value returns the node holding the variable's realized sample
func (v *RandomVariable) Value() *G.Node { return v.value }

// Def returns the variable's distribution builder. Derived variables
// wrap it to change the distribution while keeping the parent
// resolution machinery intact.
func (v *RandomVariable) Def() Def { return v.def }

// Parents returns the variables the Def resolves
func (v *RandomVariable) Parents() []*RandomVariable { return v.parents }

// Dist returns the variable's distribution
func (v *RandomVariable) Dist() Distribution { return v.dist }

// LogProb returns the element-wise log-density of x under the
// variable's distribution
func (v *RandomVariable) LogProb(x *G.Node) (*G.Node, error) {
	return v.dist.LogProb(x)
}

// Swap maps variables to the nodes that stand in for their values
// within a copy
type Swap map[*RandomVariable]*G.Node

// Copy realizes v again under scope. Ancestors present in swap are
// replaced by their mapped nodes; all other ancestors are themselves
// copied into the same scope, once each, so shared ancestors do not
// fan out into multiple realizations. A nil or empty swap yields an
// unconditioned structural copy.
func Copy(v *RandomVariable, swap Swap, scope *Scope) (*RandomVariable,
	error) {
	memo := make(map[*RandomVariable]*RandomVariable)

	return copyMemo(v, swap, scope, memo)
}

func copyMemo(v *RandomVariable, swap Swap, scope *Scope,
	memo map[*RandomVariable]*RandomVariable) (*RandomVariable, error) {
	if c, ok := memo[v]; ok {
		return c, nil
	}

	resolve := func(p *RandomVariable) (*G.Node, error) {
		if n, ok := swap[p]; ok {
			return n, nil
		}

		pc, err := copyMemo(p, swap, scope, memo)
		if err != nil {
			return nil, err
		}

		return pc.value, nil
	}

	dist, err := v.def(resolve)
	if err != nil {
		return nil, errors.Wrapf(err, "copy %v: build distribution", v.name)
	}

	value, err := dist.Sample(scope)
	if err != nil {
		return nil, errors.Wrapf(err, "copy %v: draw value", v.name)
	}

	c := &RandomVariable{
		id:      edward.NextSerial(),
		name:    scope.Name() + "/" + v.name,
		def:     v.def,
		parents: v.parents,
		dist:    dist,
		value:   value,
	}
	memo[v] = c

	return c, nil
}
