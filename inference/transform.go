package inference

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/mehrdaad/edward/rv"
)

// bijector is an invertible transform between a distribution's native
// support and unconstrained real space.
type bijector interface {
	// forward maps a constrained value to unconstrained space
	forward(x *G.Node) (*G.Node, error)

	// inverse maps an unconstrained value back to the native support
	inverse(y *G.Node) (*G.Node, error)

	// logDetJacInv is the element-wise log-determinant of the inverse
	// map's Jacobian, the density correction for the transformed
	// distribution
	logDetJacInv(y *G.Node) (*G.Node, error)
}

// bijectorFor returns the bijector that unconstrains the given
// support, or nil when the support needs no transform.
func bijectorFor(s rv.Support) bijector {
	switch s {
	case rv.Positive:
		return logBijector{}
	case rv.UnitInterval:
		return logitBijector{}
	default:
		return nil
	}
}

// logBijector maps (0, ∞) to the reals via the natural log
type logBijector struct{}

func (logBijector) forward(x *G.Node) (*G.Node, error) { return G.Log(x) }

func (logBijector) inverse(y *G.Node) (*G.Node, error) { return G.Exp(y) }

func (logBijector) logDetJacInv(y *G.Node) (*G.Node, error) {
	// d/dy exp(y) = exp(y), so the log-correction is y itself
	return y, nil
}

// logitBijector maps (0, 1) to the reals via the log-odds
type logitBijector struct{}

func (logitBijector) forward(x *G.Node) (*G.Node, error) {
	one := x.Graph().Constant(G.NewF64(1.0))

	num, err := G.Log(x)
	if err != nil {
		return nil, err
	}
	den, err := G.Log(G.Must(G.Sub(one, x)))
	if err != nil {
		return nil, err
	}

	return G.Sub(num, den)
}

func (logitBijector) inverse(y *G.Node) (*G.Node, error) {
	return G.Sigmoid(y)
}

func (logitBijector) logDetJacInv(y *G.Node) (*G.Node, error) {
	one := y.Graph().Constant(G.NewF64(1.0))

	s, err := G.Sigmoid(y)
	if err != nil {
		return nil, err
	}

	return G.Add(
		G.Must(G.Log(s)),
		G.Must(G.Log(G.Must(G.Sub(one, s)))),
	)
}

// transformedDist is a base distribution pushed forward through a
// bijector onto unconstrained support.
type transformedDist struct {
	base rv.Distribution
	bij  bijector
}

func (t *transformedDist) Sample(sc *rv.Scope) (*G.Node, error) {
	x, err := t.base.Sample(sc)
	if err != nil {
		return nil, err
	}

	return t.bij.forward(x)
}

func (t *transformedDist) LogProb(y *G.Node) (*G.Node, error) {
	x, err := t.bij.inverse(y)
	if err != nil {
		return nil, errors.Wrap(err, "transformed logprob: invert")
	}

	lp, err := t.base.LogProb(x)
	if err != nil {
		return nil, errors.Wrap(err, "transformed logprob: base density")
	}

	adj, err := t.bij.logDetJacInv(y)
	if err != nil {
		return nil, errors.Wrap(err, "transformed logprob: jacobian")
	}

	return G.Add(lp, adj)
}

func (t *transformedDist) Shape() tensor.Shape { return t.base.Shape() }

func (t *transformedDist) Support() rv.Support { return rv.Real }

// maybeTransform returns v pushed onto unconstrained support, or v
// itself when its support needs no transform. The derived variable
// shares v's parents and builder, so copies substitute through it.
func maybeTransform(v *rv.RandomVariable) (*rv.RandomVariable, error) {
	bij := bijectorFor(v.Dist().Support())
	if bij == nil {
		return v, nil
	}

	baseDef := v.Def()
	def := func(resolve rv.Resolver) (rv.Distribution, error) {
		base, err := baseDef(resolve)
		if err != nil {
			return nil, err
		}
		return &transformedDist{base: base, bij: bij}, nil
	}

	tv, err := rv.New(v.Name()+"_unconstrained", def, v.Parents()...)
	if err != nil {
		return nil, errors.Wrapf(err, "transform %v", v.Name())
	}

	return tv, nil
}

// transformLatents rebuilds every latent binding on unconstrained
// support. Bindings already on unconstrained or discrete support pass
// through unchanged, in place.
func transformLatents(keys []*rv.RandomVariable,
	latents map[*rv.RandomVariable]*rv.RandomVariable) ([]*rv.RandomVariable,
	map[*rv.RandomVariable]*rv.RandomVariable, error) {
	outKeys := make([]*rv.RandomVariable, 0, len(keys))
	out := make(map[*rv.RandomVariable]*rv.RandomVariable, len(latents))
	for _, z := range keys {
		tz, err := maybeTransform(z)
		if err != nil {
			return nil, nil, err
		}
		tqz, err := maybeTransform(latents[z])
		if err != nil {
			return nil, nil, err
		}
		outKeys = append(outKeys, tz)
		out[tz] = tqz
	}

	return outKeys, out, nil
}
