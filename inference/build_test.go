package inference

import (
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"

	"github.com/mehrdaad/edward/rv"
)

func TestBuildLatentVarsValidation(t *testing.T) {
	g := G.NewGraph()
	one := constVec(g, "one", 1)
	zero := constVec(g, "zero", 0)

	z := newNormalRV(t, "z", zero, one, 1)
	qzWide, err := rv.New("qz", func(resolve rv.Resolver) (rv.Distribution,
		error) {
		return rv.NewNormal(constVec(g, "m2", 0, 0), constVec(g, "s2", 1, 1),
			2)
	})
	require.NoError(t, err)

	_, _, err = buildLatentVars(
		map[*rv.RandomVariable]*rv.RandomVariable{z: nil})
	require.Error(t, err)

	_, _, err = buildLatentVars(
		map[*rv.RandomVariable]*rv.RandomVariable{z: qzWide})
	require.Error(t, err, "shape mismatch must fail fast")
}

func TestBuildDataValidation(t *testing.T) {
	g := G.NewGraph()
	one := constVec(g, "one", 1)
	zero := constVec(g, "zero", 0)

	x := newNormalRV(t, "x", zero, one, 1)

	_, _, err := buildData(map[*rv.RandomVariable]Binding{x: {}})
	require.Error(t, err, "empty binding must fail")

	bad := Binding{node: constVec(g, "v", 1), stoch: x}
	_, _, err = buildData(map[*rv.RandomVariable]Binding{x: bad})
	require.Error(t, err, "double binding must fail")

	wide := constVec(g, "wide", 1, 2)
	_, _, err = buildData(map[*rv.RandomVariable]Binding{x: Lit(wide)})
	require.Error(t, err, "shape mismatch must fail")

	ok := constVec(g, "ok", 1)
	keys, data, err := buildData(map[*rv.RandomVariable]Binding{x: Lit(ok)})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, ok, data[x].node)
}

func TestBuildDataOrderedByID(t *testing.T) {
	g := G.NewGraph()
	one := constVec(g, "one", 1)
	zero := constVec(g, "zero", 0)

	a := newNormalRV(t, "a", zero, one, 1)
	b := newNormalRV(t, "b", zero, one, 2)
	c := newNormalRV(t, "c", zero, one, 3)

	obs := constVec(g, "obs", 0)
	keys, _, err := buildData(map[*rv.RandomVariable]Binding{
		c: Lit(obs), a: Lit(obs), b: Lit(obs),
	})
	require.NoError(t, err)
	require.Equal(t, []*rv.RandomVariable{a, b, c}, keys)
}

func TestBuildScaleValidation(t *testing.T) {
	g := G.NewGraph()
	one := constVec(g, "one", 1)
	zero := constVec(g, "zero", 0)
	z := newNormalRV(t, "z", zero, one, 1)

	_, err := buildScale(map[*rv.RandomVariable]float64{z: 0})
	require.Error(t, err)
	_, err = buildScale(map[*rv.RandomVariable]float64{z: -1})
	require.Error(t, err)
	_, err = buildScale(map[*rv.RandomVariable]float64{nil: 1})
	require.Error(t, err)

	scale, err := buildScale(map[*rv.RandomVariable]float64{z: 2.5})
	require.NoError(t, err)
	require.Equal(t, 2.5, scale[z])
}

func TestBuildVarListDeduplicates(t *testing.T) {
	g := G.NewGraph()
	a := constVec(g, "a", 1)
	b := constVec(g, "b", 2)

	_, err := buildVarList(G.Nodes{a, nil})
	require.Error(t, err)

	out, err := buildVarList(G.Nodes{a, b, a})
	require.NoError(t, err)
	require.Equal(t, G.Nodes{a, b}, out)
}
