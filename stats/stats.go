// Package stats provides elementary sampling and log-density functions
// for the distributions used by the variational families and random
// variables of this module. It is a thin boundary over gonum's
// distuv/distmv so that no other package handles gonum types directly.
package stats

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalRvs draws size samples from a normal distribution with the
// given location and scale
func NormalRvs(loc, scale float64, size int, src rand.Source) []float64 {
	dist := distuv.Normal{
		Mu:    loc,
		Sigma: scale,
		Src:   src,
	}

	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}

	return out
}

// NormalLogPdf evaluates the normal log-density at x
func NormalLogPdf(x, loc, scale float64) float64 {
	dist := distuv.Normal{
		Mu:    loc,
		Sigma: scale,
	}

	return dist.LogProb(x)
}

// BernoulliRvs draws size samples from a Bernoulli distribution with
// success probability p
func BernoulliRvs(p float64, size int, src rand.Source) []float64 {
	dist := distuv.Bernoulli{
		P:   p,
		Src: src,
	}

	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}

	return out
}

// BernoulliLogPmf evaluates the Bernoulli log-mass at x
func BernoulliLogPmf(x, p float64) float64 {
	dist := distuv.Bernoulli{P: p}

	return dist.LogProb(x)
}

// BetaRvs draws size samples from a Beta(a, b) distribution
func BetaRvs(a, b float64, size int, src rand.Source) []float64 {
	dist := distuv.Beta{
		Alpha: a,
		Beta:  b,
		Src:   src,
	}

	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}

	return out
}

// BetaLogPdf evaluates the Beta(a, b) log-density at x
func BetaLogPdf(x, a, b float64) float64 {
	dist := distuv.Beta{
		Alpha: a,
		Beta:  b,
	}

	return dist.LogProb(x)
}

// InvGammaRvs draws size samples from an inverse-gamma distribution
// with shape a and scale b
func InvGammaRvs(a, b float64, size int, src rand.Source) []float64 {
	dist := distuv.InverseGamma{
		Alpha: a,
		Beta:  b,
		Src:   src,
	}

	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}

	return out
}

// InvGammaLogPdf evaluates the inverse-gamma log-density at x
func InvGammaLogPdf(x, a, b float64) float64 {
	dist := distuv.InverseGamma{
		Alpha: a,
		Beta:  b,
	}

	return dist.LogProb(x)
}

// DirichletRvs draws size samples from a Dirichlet distribution with
// concentration alpha. Each returned row is one simplex draw of
// length len(alpha).
func DirichletRvs(alpha []float64, size int, src rand.Source) [][]float64 {
	dist := distmv.NewDirichlet(alpha, src)

	out := make([][]float64, size)
	for i := range out {
		out[i] = dist.Rand(nil)
	}

	return out
}

// DirichletLogPdf evaluates the Dirichlet log-density of the simplex
// point x under concentration alpha
func DirichletLogPdf(x, alpha []float64) float64 {
	dist := distmv.NewDirichlet(alpha, nil)

	return dist.LogProb(x)
}
