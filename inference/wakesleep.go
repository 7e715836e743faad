package inference

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"k8s.io/klog/v2"

	"github.com/mehrdaad/edward"
	"github.com/mehrdaad/edward/rv"
)

// GradVar pairs a parameter node with its gradient node. The gradient
// is nil when the parameter does not influence the corresponding loss.
type GradVar struct {
	Var  *G.Node
	Grad *G.Node
}

// WakeSleep builds the wake-sleep objective [@hinton1995wake] over the
// configured model.
//
// The wake phase maximizes log p(x, z) with respect to model
// parameters using bottom-up samples z ~ q(z | x). The sleep phase
// maximizes log q(z | x) with respect to variational parameters using
// top-down fantasy samples z ~ p(x, z); with PhaseWake the variational
// update instead reuses the bottom-up samples, held fixed.
//
// It returns the model loss node and gradient pairs for the
// variational parameters followed by the model parameters. Callers
// feed the pairs to an optimizer and run the graph themselves.
func WakeSleep(cfg Config) (*G.Node, []GradVar, error) {
	if cfg.NSamples < 0 {
		return nil, nil, errors.Errorf("wake-sleep: negative sample "+
			"count %v", cfg.NSamples)
	}
	n := cfg.NSamples
	if n == 0 {
		n = 1
	}

	latentKeys, latents, err := buildLatentVars(cfg.LatentVars)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}
	dataKeys, data, err := buildData(cfg.Data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}
	if !cfg.SkipTransform {
		latentKeys, latents, err = transformLatents(latentKeys, latents)
		if err != nil {
			return nil, nil, errors.Wrap(err, "wake-sleep")
		}
	}
	scale, err := buildScale(cfg.Scale)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}

	g, err := graphOf(latentKeys, latents, dataKeys, data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}

	varList := cfg.VarList
	if varList == nil {
		varList = edward.Trainables(g)
	}
	varList, err = buildVarList(varList)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}

	klog.V(2).InfoS("wake-sleep objective", "latents", len(latentKeys),
		"observed", len(dataKeys), "nSamples", n, "phaseQ", cfg.PhaseQ,
		"vars", len(varList))

	var pTotal, qTotal *G.Node
	base := rv.NewScope("inference")
	for s := 0; s < n; s++ {
		scope := base.Sub("q_sample")

		// Condition every observed variable on its bound value, or on
		// a fresh draw of its stochastic stand-in.
		dictSwap := make(rv.Swap, len(data))
		for _, x := range dataKeys {
			b := data[x]
			if b.stoch != nil {
				qxCopy, err := rv.Copy(b.stoch, nil, scope)
				if err != nil {
					return nil, nil, errors.Wrap(err, "wake-sleep")
				}
				dictSwap[x] = qxCopy.Value()
			} else {
				dictSwap[x] = b.node
			}
		}

		// Sample z ~ q(z), then evaluate log p(x, z) at the samples.
		qSwap := cloneSwap(dictSwap)
		for _, z := range latentKeys {
			qzCopy, err := rv.Copy(latents[z], nil, scope)
			if err != nil {
				return nil, nil, errors.Wrap(err, "wake-sleep")
			}
			qSwap[z] = qzCopy.Value()

			if cfg.PhaseQ != PhaseSleep {
				held, err := edward.StopGradient(qSwap[z])
				if err != nil {
					return nil, nil, errors.Wrap(err, "wake-sleep")
				}
				lp, err := qzCopy.LogProb(held)
				if err != nil {
					return nil, nil, errors.Wrapf(err,
						"wake-sleep: q density of %v", z.Name())
				}
				qTotal, err = addScaled(qTotal, scaleOf(scale, z), lp)
				if err != nil {
					return nil, nil, errors.Wrap(err, "wake-sleep")
				}
			}
		}

		for _, z := range latentKeys {
			zCopy, err := rv.Copy(z, qSwap, scope)
			if err != nil {
				return nil, nil, errors.Wrap(err, "wake-sleep")
			}
			lp, err := zCopy.LogProb(qSwap[z])
			if err != nil {
				return nil, nil, errors.Wrapf(err,
					"wake-sleep: prior density of %v", z.Name())
			}
			pTotal, err = addScaled(pTotal, scaleOf(scale, z), lp)
			if err != nil {
				return nil, nil, errors.Wrap(err, "wake-sleep")
			}
		}

		for _, x := range dataKeys {
			xCopy, err := rv.Copy(x, qSwap, scope)
			if err != nil {
				return nil, nil, errors.Wrap(err, "wake-sleep")
			}
			lp, err := xCopy.LogProb(qSwap[x])
			if err != nil {
				return nil, nil, errors.Wrapf(err,
					"wake-sleep: likelihood of %v", x.Name())
			}
			pTotal, err = addScaled(pTotal, scaleOf(scale, x), lp)
			if err != nil {
				return nil, nil, errors.Wrap(err, "wake-sleep")
			}
		}

		if cfg.PhaseQ == PhaseSleep {
			// Sample z ~ p(z), then evaluate log q(z) at the fantasy
			// samples.
			scope = base.Sub("p_sample")
			pSwap := cloneSwap(dictSwap)
			var lastZ *rv.RandomVariable
			for _, z := range latentKeys {
				zCopy, err := rv.Copy(z, nil, scope)
				if err != nil {
					return nil, nil, errors.Wrap(err, "wake-sleep")
				}
				pSwap[latents[z]] = zCopy.Value()
				lastZ = z
			}
			for _, z := range latentKeys {
				qz := latents[z]
				qzCopy, err := rv.Copy(qz, pSwap, scope)
				if err != nil {
					return nil, nil, errors.Wrap(err, "wake-sleep")
				}
				held, err := edward.StopGradient(pSwap[qz])
				if err != nil {
					return nil, nil, errors.Wrap(err, "wake-sleep")
				}
				lp, err := qzCopy.LogProb(held)
				if err != nil {
					return nil, nil, errors.Wrapf(err,
						"wake-sleep: q density of %v", qz.Name())
				}
				qTotal, err = addScaled(qTotal, scaleOf(scale, lastZ), lp)
				if err != nil {
					return nil, nil, errors.Wrap(err, "wake-sleep")
				}
			}
		}
	}

	pMean, err := meanOverSamples(g, pTotal, n)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}
	qMean, err := meanOverSamples(g, qTotal, n)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}
	regPenalty, err := cfg.Reg.Penalty(g)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep")
	}

	if cfg.Collector != nil {
		cfg.Collector.Scalar("loss/p_log_prob", pMean)
		cfg.Collector.Scalar("loss/q_log_prob", qMean)
		cfg.Collector.Scalar("loss/reg_penalty", regPenalty)
	}

	lossP, err := negPlus(pMean, regPenalty)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep: model loss")
	}
	lossQ, err := negPlus(qMean, regPenalty)
	if err != nil {
		return nil, nil, errors.Wrap(err, "wake-sleep: variational loss")
	}

	// Parameters that the variational samples depend on get the
	// variational loss; everything else gets the model loss.
	qValues := make(G.Nodes, 0, len(latentKeys))
	for _, z := range latentKeys {
		qValues = append(qValues, latents[z].Value())
	}
	anc := ancestorIDs(g, qValues)

	var qVars, pVars G.Nodes
	for _, v := range varList {
		if _, ok := anc[v.ID()]; ok {
			qVars = append(qVars, v)
		} else {
			pVars = append(pVars, v)
		}
	}

	qGrads := gradsOrNil(lossQ, qVars)
	pGrads := gradsOrNil(lossP, pVars)

	pairs := make([]GradVar, 0, len(qVars)+len(pVars))
	for i, v := range qVars {
		pairs = append(pairs, GradVar{Var: v, Grad: qGrads[i]})
	}
	for i, v := range pVars {
		pairs = append(pairs, GradVar{Var: v, Grad: pGrads[i]})
	}

	return lossP, pairs, nil
}

func cloneSwap(s rv.Swap) rv.Swap {
	out := make(rv.Swap, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

func scaleOf(scale map[*rv.RandomVariable]float64,
	v *rv.RandomVariable) float64 {
	if s, ok := scale[v]; ok {
		return s
	}

	return 1.0
}

// addScaled accumulates the scaled full reduction of a density term
func addScaled(total *G.Node, sc float64, lp *G.Node) (*G.Node, error) {
	term := lp
	if !term.IsScalar() {
		var err error
		term, err = G.Sum(term)
		if err != nil {
			return nil, errors.Wrap(err, "reduce density term")
		}
	}

	if sc != 1.0 {
		var err error
		c := term.Graph().Constant(G.NewF64(sc))
		term, err = G.Mul(c, term)
		if err != nil {
			return nil, errors.Wrap(err, "scale density term")
		}
	}

	if total == nil {
		return term, nil
	}

	return G.Add(total, term)
}

// meanOverSamples averages an accumulated sum over the Monte Carlo
// sample count. A nil accumulator means no terms contributed.
func meanOverSamples(g *G.ExprGraph, total *G.Node, n int) (*G.Node, error) {
	if total == nil {
		return g.Constant(G.NewF64(0.0)), nil
	}
	if n == 1 {
		return total, nil
	}

	return G.Div(total, g.Constant(G.NewF64(float64(n))))
}

func negPlus(mean, penalty *G.Node) (*G.Node, error) {
	neg, err := G.Neg(mean)
	if err != nil {
		return nil, err
	}

	return G.Add(neg, penalty)
}

// gradsOrNil differentiates loss with respect to vars. Vars that do
// not influence the loss get a nil gradient instead of failing the
// whole set.
func gradsOrNil(loss *G.Node, vars G.Nodes) []*G.Node {
	if len(vars) == 0 {
		return nil
	}

	grads, err := G.Grad(loss, vars...)
	if err == nil {
		return grads
	}

	out := make([]*G.Node, len(vars))
	for i, v := range vars {
		gs, err := G.Grad(loss, v)
		if err != nil {
			klog.V(2).InfoS("variable disconnected from loss",
				"var", v.Name(), "err", err)
			continue
		}
		out[i] = gs[0]
	}

	return out
}
