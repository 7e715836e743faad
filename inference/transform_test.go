package inference

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"

	"github.com/mehrdaad/edward/rv"
	"github.com/mehrdaad/edward/stats"
)

func TestBijectorRegistry(t *testing.T) {
	require.Nil(t, bijectorFor(rv.Real))
	require.Nil(t, bijectorFor(rv.Discrete))
	require.IsType(t, logBijector{}, bijectorFor(rv.Positive))
	require.IsType(t, logitBijector{}, bijectorFor(rv.UnitInterval))
}

func TestLogTransformedDensity(t *testing.T) {
	g := G.NewGraph()
	alpha := constVec(g, "alpha", 2.0)
	beta := constVec(g, "beta", 1.5)

	base, err := rv.NewInvGamma(alpha, beta, 1)
	require.NoError(t, err)

	td := &transformedDist{base: base, bij: logBijector{}}
	require.Equal(t, rv.Real, td.Support())

	y := constVec(g, "y", -0.3)
	lp, err := td.LogProb(y)
	require.NoError(t, err)

	var lpVal G.Value
	G.Read(lp, &lpVal)
	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	// Density in transformed space: base density at exp(y) plus the
	// log-Jacobian y.
	expected := stats.InvGammaLogPdf(math.Exp(-0.3), 2.0, 1.5) - 0.3
	assert.InDelta(t, expected, lpVal.Data().([]float64)[0], 1e-10)
}

func TestLogitTransformedDensity(t *testing.T) {
	g := G.NewGraph()
	alpha := constVec(g, "alpha", 2.0)
	beta := constVec(g, "beta", 3.0)

	base, err := rv.NewBeta(alpha, beta, 1)
	require.NoError(t, err)

	td := &transformedDist{base: base, bij: logitBijector{}}
	require.Equal(t, rv.Real, td.Support())

	y := constVec(g, "y", 0.4)
	lp, err := td.LogProb(y)
	require.NoError(t, err)

	var lpVal G.Value
	G.Read(lp, &lpVal)
	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	sig := 1. / (1. + math.Exp(-0.4))
	expected := stats.BetaLogPdf(sig, 2.0, 3.0) + math.Log(sig) +
		math.Log(1-sig)
	assert.InDelta(t, expected, lpVal.Data().([]float64)[0], 1e-10)
}

func TestMaybeTransformPassThrough(t *testing.T) {
	g := G.NewGraph()
	one := constVec(g, "one", 1)
	zero := constVec(g, "zero", 0)

	z := newNormalRV(t, "z", zero, one, 1)
	tz, err := maybeTransform(z)
	require.NoError(t, err)
	require.Equal(t, z, tz, "real support passes through untouched")
}

func TestMaybeTransformPositive(t *testing.T) {
	g := G.NewGraph()
	alpha := constVec(g, "alpha", 2.0)
	beta := constVec(g, "beta", 1.5)

	z, err := rv.New("z", func(resolve rv.Resolver) (rv.Distribution,
		error) {
		return rv.NewInvGamma(alpha, beta, 1)
	})
	require.NoError(t, err)

	tz, err := maybeTransform(z)
	require.NoError(t, err)
	require.NotEqual(t, z, tz)
	require.Equal(t, rv.Real, tz.Dist().Support())

	// The transformed draw is the log of a positive draw, so
	// exponentiating it must always give a positive value.
	var val G.Value
	G.Read(tz.Value(), &val)
	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())
	require.False(t, math.IsNaN(val.Data().([]float64)[0]))
}
