package likelihood

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"

	"github.com/mehrdaad/edward/stats"
)

func TestDirichletSampleShape(t *testing.T) {
	const d, k, n = 2, 3, 5

	l, _, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewDirichlet(g, d, k, 1)
	})

	z, err := l.Sample([]int{n, d}, ev)
	require.NoError(t, err)
	require.Equal(t, []int{d, n, k}, []int(z.Shape()))

	data := z.Data().([]float64)
	for v := 0; v < d; v++ {
		for j := 0; j < n; j++ {
			var sum float64
			for c := 0; c < k; c++ {
				x := data[(v*n+j)*k+c]
				require.Greater(t, x, 0.0)
				sum += x
			}
			assert.InDelta(t, 1.0, sum, 1e-9,
				"each draw must lie on the simplex")
		}
	}
}

func TestDirichletLogProbZiValue(t *testing.T) {
	const d, k = 2, 3

	l, g, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewDirichlet(g, d, k, 1)
	})
	dir := l.(*Dirichlet)

	zBacking := []float64{0.2, 0.3, 0.5, 0.1, 0.6, 0.3}
	z := matrixOf(g, "z", 2, k, zBacking)

	for i := 0; i < d; i++ {
		lp, err := dir.LogProbZi(i, z)
		require.NoError(t, err)

		vals, err := evalFloats(ev, lp, dir.alpha)
		require.NoError(t, err)
		lpData, alpha := vals[0], vals[1]
		require.Len(t, lpData, 2)

		ai := alpha[i*k : (i+1)*k]
		for row := 0; row < 2; row++ {
			expected := stats.DirichletLogPdf(zBacking[row*k:(row+1)*k], ai)
			assert.InDelta(t, expected, lpData[row], 1e-9)
			require.False(t, math.IsNaN(lpData[row]))
		}
	}
}

func TestDirichletRejectsNarrowZ(t *testing.T) {
	const d, k = 2, 3

	l, g, _ := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewDirichlet(g, d, k, 1)
	})

	z := matrixOf(g, "z", 2, 2, []float64{0.5, 0.5, 0.4, 0.6})
	_, err := l.LogProbZi(0, z)
	require.Error(t, err)
}
