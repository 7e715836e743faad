package likelihood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"

	"github.com/mehrdaad/edward/stats"
)

func TestBetaLogProbZiValue(t *testing.T) {
	const d = 2

	l, g, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewBeta(g, d, 1)
	})
	bt := l.(*Beta)

	zBacking := []float64{0.3, 0.7, 0.9, 0.1}
	z := matrixOf(g, "z", 2, d, zBacking)

	for i := 0; i < d; i++ {
		lp, err := bt.LogProbZi(i, z)
		require.NoError(t, err)

		vals, err := evalFloats(ev, lp, bt.a, bt.b)
		require.NoError(t, err)
		lpData, a, b := vals[0], vals[1], vals[2]

		for row := 0; row < 2; row++ {
			expected := stats.BetaLogPdf(zBacking[row*d+i], a[i], b[i])
			assert.InDelta(t, expected, lpData[row], 1e-9)
		}
	}
}

// Evaluating the constrained parameters must be idempotent. The
// softplus in Mapping reads the raw parameters and may not write back
// through them.
func TestBetaParamsStableAcrossEvals(t *testing.T) {
	const d = 2

	l, _, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewBeta(g, d, 1)
	})
	bt := l.(*Beta)

	first, err := evalFloats(ev, bt.a, bt.b)
	require.NoError(t, err)
	a := append([]float64(nil), first[0]...)
	b := append([]float64(nil), first[1]...)

	second, err := evalFloats(ev, bt.a, bt.b)
	require.NoError(t, err)

	assert.Equal(t, a, second[0])
	assert.Equal(t, b, second[1])
}

func TestBetaSampleInUnitInterval(t *testing.T) {
	const d, n = 3, 20

	l, _, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewBeta(g, d, 1)
	})

	z, err := l.Sample([]int{n, d}, ev)
	require.NoError(t, err)
	require.Equal(t, []int{n, d}, []int(z.Shape()))

	for _, v := range z.Data().([]float64) {
		require.Greater(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
