package likelihood

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func TestGaussianReparamExact(t *testing.T) {
	const d, n = 3, 2

	l, g, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewGaussian(g, d, 1)
	})
	gauss := l.(*Gaussian)

	epsBacking := []float64{0.5, -1.2, 2.0, 0.0, 3.3, -0.4}
	eps := matrixOf(g, "eps", n, d, epsBacking)

	z, err := gauss.Reparam(eps)
	require.NoError(t, err)

	vals, err := evalFloats(ev, z, gauss.m, gauss.s)
	require.NoError(t, err)
	zData, m, s := vals[0], vals[1], vals[2]

	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			expected := m[j] + epsBacking[i*d+j]*s[j]
			assert.Equal(t, expected, zData[i*d+j],
				"reparameterization must be m + eps*s exactly")
		}
	}
}

func TestGaussianSampleMatchesReparam(t *testing.T) {
	const d, n, seed = 2, 4, 7

	// Two families with the same seed consume identical noise streams
	l1, _, ev1 := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewGaussian(g, d, seed)
	})
	l2, _, _ := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewGaussian(g, d, seed)
	})
	g1 := l1.(*Gaussian)
	g2 := l2.(*Gaussian)

	sampled, err := g1.Sample([]int{n, d}, ev1)
	require.NoError(t, err)

	// The second family replays the first's noise stream; transform it
	// with the first family's parameters by hand.
	noise, err := g2.SampleNoise([]int{n, d})
	require.NoError(t, err)

	vals, err := evalFloats(ev1, g1.m, g1.s)
	require.NoError(t, err)
	m, s := vals[0], vals[1]

	sampledData := sampled.Data().([]float64)
	noiseData := noise.Data().([]float64)
	for i := range sampledData {
		expected := m[i%d] + noiseData[i]*s[i%d]
		assert.Equal(t, expected, sampledData[i],
			"sampling must compose noise and reparameterization")
	}
}

func TestGaussianLogProbZiValue(t *testing.T) {
	const d = 2

	l, g, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewGaussian(g, d, 1)
	})
	gauss := l.(*Gaussian)

	zBacking := []float64{0.3, -0.7, 1.1, 0.2}
	z := matrixOf(g, "z", 2, d, zBacking)

	for i := 0; i < d; i++ {
		lp, err := gauss.LogProbZi(i, z)
		require.NoError(t, err)

		vals, err := evalFloats(ev, lp, gauss.m, gauss.s)
		require.NoError(t, err)
		lpData, m, s := vals[0], vals[1], vals[2]

		require.Len(t, lpData, 2)
		for row := 0; row < 2; row++ {
			x := zBacking[row*d+i]
			diff := (x - m[i]) / s[i]
			expected := -0.5*diff*diff - math.Log(s[i]) -
				math.Log(math.Sqrt(2*math.Pi))
			assert.InDelta(t, expected, lpData[row], 1e-10)
		}
	}
}
