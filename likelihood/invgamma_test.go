package likelihood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"

	"github.com/mehrdaad/edward/stats"
)

func TestInvGammaLogProbZiValue(t *testing.T) {
	const d = 2

	l, g, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewInvGamma(g, d, 1)
	})
	ig := l.(*InvGamma)

	zBacking := []float64{0.4, 1.7, 2.3, 0.8}
	z := matrixOf(g, "z", 2, d, zBacking)

	for i := 0; i < d; i++ {
		lp, err := ig.LogProbZi(i, z)
		require.NoError(t, err)

		vals, err := evalFloats(ev, lp, ig.a, ig.b)
		require.NoError(t, err)
		lpData, a, b := vals[0], vals[1], vals[2]

		for row := 0; row < 2; row++ {
			expected := stats.InvGammaLogPdf(zBacking[row*d+i], a[i], b[i])
			assert.InDelta(t, expected, lpData[row], 1e-9)
		}
	}
}

func TestInvGammaSamplePositive(t *testing.T) {
	const d, n = 3, 20

	l, _, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewInvGamma(g, d, 1)
	})

	z, err := l.Sample([]int{n, d}, ev)
	require.NoError(t, err)
	require.Equal(t, []int{n, d}, []int(z.Shape()))

	for _, v := range z.Data().([]float64) {
		require.Greater(t, v, 0.0)
	}
}
