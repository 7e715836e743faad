package likelihood

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// vmEvaluator runs the whole expression graph on a fresh tape machine
// per call
type vmEvaluator struct {
	g *G.ExprGraph
}

func (e vmEvaluator) Eval(ns ...*G.Node) ([]G.Value, error) {
	vals := make([]G.Value, len(ns))
	for i, n := range ns {
		G.Read(n, &vals[i])
	}

	vm := G.NewTapeMachine(e.g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, err
	}

	return vals, nil
}

// newFitted builds a family, runs Mapping and binds its parameters
func newFitted(t *testing.T, build func(g *G.ExprGraph) (Likelihood,
	error)) (Likelihood, *G.ExprGraph, vmEvaluator) {
	g := G.NewGraph()

	l, err := build(g)
	require.NoError(t, err)

	params, err := l.Mapping(nil)
	require.NoError(t, err)
	require.NoError(t, l.SetParams(params))

	return l, g, vmEvaluator{g}
}

func matrixOf(g *G.ExprGraph, name string, rows, cols int,
	backing []float64) *G.Node {
	return G.NewMatrix(g, tensor.Float64, G.WithName(name),
		G.WithShape(rows, cols), G.WithValue(tensor.NewDense(tensor.Float64,
			[]int{rows, cols}, tensor.WithBacking(backing))))
}

func TestFamilySizes(t *testing.T) {
	g := G.NewGraph()

	bern, err := NewBernoulli(g, 3, 1)
	require.NoError(t, err)
	require.Equal(t, 3, bern.NumVars())
	require.Equal(t, 3, bern.NumParams())

	beta, err := NewBeta(g, 4, 1)
	require.NoError(t, err)
	require.Equal(t, 4, beta.NumVars())
	require.Equal(t, 8, beta.NumParams())

	gauss, err := NewGaussian(g, 5, 1)
	require.NoError(t, err)
	require.Equal(t, 5, gauss.NumVars())
	require.Equal(t, 10, gauss.NumParams())

	ig, err := NewInvGamma(g, 2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, ig.NumVars())
	require.Equal(t, 4, ig.NumParams())

	dir, err := NewDirichlet(g, 2, 3, 1)
	require.NoError(t, err)
	require.Equal(t, 2, dir.NumVars())
	require.Equal(t, 6, dir.NumParams())

	mix, err := NewMixGaussian(g, 2, 3, 1)
	require.NoError(t, err)
	// K + 2*K*D variables; K*K + 2*(2*K*D) parameters
	require.Equal(t, 3+6+6, mix.NumVars())
	require.Equal(t, 9+12+12, mix.NumParams())

	pm, err := NewPointMass(g, 6, nil)
	require.NoError(t, err)
	require.Equal(t, 6, pm.NumVars())
	require.Equal(t, 6, pm.NumParams())
}

func TestLogProbZiRange(t *testing.T) {
	builders := map[string]func(g *G.ExprGraph) (Likelihood, error){
		"bernoulli": func(g *G.ExprGraph) (Likelihood, error) {
			return NewBernoulli(g, 3, 1)
		},
		"beta": func(g *G.ExprGraph) (Likelihood, error) {
			return NewBeta(g, 3, 1)
		},
		"gaussian": func(g *G.ExprGraph) (Likelihood, error) {
			return NewGaussian(g, 3, 1)
		},
		"invgamma": func(g *G.ExprGraph) (Likelihood, error) {
			return NewInvGamma(g, 3, 1)
		},
		"dirichlet": func(g *G.ExprGraph) (Likelihood, error) {
			return NewDirichlet(g, 3, 2, 1)
		},
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			l, g, _ := newFitted(t, build)

			z := matrixOf(g, "z", 1, 3, []float64{0.2, 0.3, 0.5})

			_, err := l.LogProbZi(-1, z)
			require.Error(t, err)
			_, err = l.LogProbZi(l.NumVars(), z)
			require.Error(t, err)
		})
	}
}

// A single-row z is a valid batch: column slices must not collapse to
// scalars.
func TestLogProbZiSingleRow(t *testing.T) {
	builders := map[string]func(g *G.ExprGraph) (Likelihood, error){
		"bernoulli": func(g *G.ExprGraph) (Likelihood, error) {
			return NewBernoulli(g, 3, 1)
		},
		"beta": func(g *G.ExprGraph) (Likelihood, error) {
			return NewBeta(g, 3, 1)
		},
		"gaussian": func(g *G.ExprGraph) (Likelihood, error) {
			return NewGaussian(g, 3, 1)
		},
		"invgamma": func(g *G.ExprGraph) (Likelihood, error) {
			return NewInvGamma(g, 3, 1)
		},
		"dirichlet": func(g *G.ExprGraph) (Likelihood, error) {
			return NewDirichlet(g, 3, 2, 1)
		},
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			l, g, ev := newFitted(t, build)

			z := matrixOf(g, "z", 1, 3, []float64{0.2, 0.3, 0.5})

			lp, err := l.LogProbZi(0, z)
			require.NoError(t, err)

			total, err := G.Sum(lp)
			require.NoError(t, err)

			vals, err := ev.Eval(total)
			require.NoError(t, err)

			v := vals[0].Data().(float64)
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0),
				"log density %v", v)
		})
	}
}

func TestSampleSizeValidation(t *testing.T) {
	l, _, ev := newFitted(t, func(g *G.ExprGraph) (Likelihood, error) {
		return NewGaussian(g, 3, 1)
	})

	_, err := l.Sample([]int{4}, ev)
	require.Error(t, err)
	_, err = l.Sample([]int{0, 3}, ev)
	require.Error(t, err)
	_, err = l.Sample([]int{4, 2}, ev)
	require.Error(t, err)
}
