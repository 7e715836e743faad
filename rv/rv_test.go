package rv

import (
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func constVec(g *G.ExprGraph, name string, vals ...float64) *G.Node {
	return G.NewVector(g, tensor.Float64, G.WithName(name),
		G.WithShape(len(vals)), G.WithValue(tensor.NewDense(tensor.Float64,
			[]int{len(vals)}, tensor.WithBacking(vals))))
}

// newChain builds z ~ N(0, 1) and x ~ N(z, 1)
func newChain(t *testing.T, g *G.ExprGraph) (*RandomVariable,
	*RandomVariable) {
	zero := constVec(g, "zero", 0)
	one := constVec(g, "one", 1)

	z, err := New("z", func(resolve Resolver) (Distribution, error) {
		return NewNormal(zero, one, 1)
	})
	if err != nil {
		t.Fatal(err)
	}

	x, err := New("x", func(resolve Resolver) (Distribution, error) {
		loc, err := resolve(z)
		if err != nil {
			return nil, err
		}
		return NewNormal(loc, one, 2)
	}, z)
	if err != nil {
		t.Fatal(err)
	}

	return z, x
}

func TestCopySubstitutesParents(t *testing.T) {
	g := G.NewGraph()
	z, x := newChain(t, g)

	obs := constVec(g, "obs", 3)
	scope := NewScope("test")

	xCopy, err := Copy(x, Swap{z: obs}, scope)
	if err != nil {
		t.Fatal(err)
	}

	dist, ok := xCopy.Dist().(*Normal)
	if !ok {
		t.Fatalf("expected a Normal, got %T", xCopy.Dist())
	}
	if dist.Mean() != obs {
		t.Error("copy did not substitute the swapped parent value")
	}
	if xCopy.Value() == x.Value() {
		t.Error("copy aliased the original's value node")
	}
	if x.Dist().(*Normal).Mean() != z.Value() {
		t.Error("copy mutated the original variable")
	}
}

func TestCopyUnconditioned(t *testing.T) {
	g := G.NewGraph()
	_, x := newChain(t, g)

	scope := NewScope("test")
	xCopy, err := Copy(x, nil, scope)
	if err != nil {
		t.Fatal(err)
	}

	// Without a swap the parent is itself copied, so the copy's mean
	// is a fresh draw, not the original z value.
	if xCopy.Dist().(*Normal).Mean() == x.Dist().(*Normal).Mean() {
		t.Error("unconditioned copy reused the original parent draw")
	}
	if !xCopy.Dist().Shape().Eq(x.Dist().Shape()) {
		t.Errorf("copy changed shape: got %v, want %v",
			xCopy.Dist().Shape(), x.Dist().Shape())
	}
}

func TestCopySharedAncestorCopiedOnce(t *testing.T) {
	g := G.NewGraph()
	zero := constVec(g, "zero", 0)
	one := constVec(g, "one", 1)

	z, err := New("z", func(resolve Resolver) (Distribution, error) {
		return NewNormal(zero, one, 1)
	})
	if err != nil {
		t.Fatal(err)
	}

	// y's location and scale both resolve z, a diamond dependency
	y, err := New("y", func(resolve Resolver) (Distribution, error) {
		loc, err := resolve(z)
		if err != nil {
			return nil, err
		}
		sc, err := resolve(z)
		if err != nil {
			return nil, err
		}
		return NewNormal(loc, sc, 2)
	}, z)
	if err != nil {
		t.Fatal(err)
	}

	yCopy, err := Copy(y, nil, NewScope("test"))
	if err != nil {
		t.Fatal(err)
	}

	dist := yCopy.Dist().(*Normal)
	if dist.Mean() != dist.StdDev() {
		t.Error("shared ancestor fanned out into separate copies")
	}
}

func TestSampleReplaysAcrossScopes(t *testing.T) {
	g := G.NewGraph()
	mean := constVec(g, "mean", 0, 0, 0)
	stddev := constVec(g, "stddev", 1, 1, 1)

	dist, err := NewNormal(mean, stddev, 42)
	if err != nil {
		t.Fatal(err)
	}

	// Fresh root scopes draw at the same positions, so the streams
	// replay. A later draw in the same scope advances the stream.
	s1, err := dist.Sample(NewScope("run"))
	if err != nil {
		t.Fatal(err)
	}
	s2, err := dist.Sample(NewScope("run"))
	if err != nil {
		t.Fatal(err)
	}
	sameScope := NewScope("run")
	s3, err := dist.Sample(sameScope)
	if err != nil {
		t.Fatal(err)
	}
	s4, err := dist.Sample(sameScope)
	if err != nil {
		t.Fatal(err)
	}

	var v1, v2, v3, v4 G.Value
	G.Read(s1, &v1)
	G.Read(s2, &v2)
	G.Read(s3, &v3)
	G.Read(s4, &v4)

	vm := G.NewTapeMachine(g)
	err = vm.RunAll()
	if err != nil {
		t.Fatal(err)
	}
	defer vm.Close()

	d1 := v1.Data().([]float64)
	d2 := v2.Data().([]float64)
	d3 := v3.Data().([]float64)
	d4 := v4.Data().([]float64)
	for i := range d1 {
		if d1[i] != d2[i] || d1[i] != d3[i] {
			t.Errorf("draw at position 1 did not replay: %v, %v, %v",
				d1[i], d2[i], d3[i])
		}
	}

	same := true
	for i := range d3 {
		if d3[i] != d4[i] {
			same = false
		}
	}
	if same {
		t.Error("successive draws in one scope produced identical values")
	}
}
