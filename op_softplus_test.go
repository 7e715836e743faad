package edward

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestSoftplus(t *testing.T) {
	const numTests int = 10
	const sizeMin, sizeMax int = 1, 10
	const threshold float64 = 1e-10

	for i := 0; i < numTests; i++ {
		size := randInt(1, sizeMin, sizeMax)[0]
		backing := randF64(size, -20., 20.)

		g := G.NewGraph()
		x := G.NewVector(
			g,
			tensor.Float64,
			G.WithName("x"),
			G.WithShape(size),
			G.WithValue(tensor.NewDense(
				tensor.Float64,
				[]int{size},
				tensor.WithBacking(backing),
			)),
		)

		sp, err := Softplus(x)
		if err != nil {
			t.Fatal(err)
		}
		y := G.Must(G.Sum(sp))

		grads, err := G.Grad(y, x)
		if err != nil {
			t.Fatal(err)
		}

		var spVal, gradVal G.Value
		G.Read(sp, &spVal)
		G.Read(grads[0], &gradVal)

		vm := G.NewTapeMachine(g)
		err = vm.RunAll()
		if err != nil {
			t.Error(err)
		}
		vm.Reset()

		spData := spVal.Data().([]float64)
		gradData := gradVal.Data().([]float64)
		for j, v := range backing {
			expected := math.Log1p(math.Exp(-math.Abs(v)))
			if v > 0 {
				expected += v
			}
			if math.Abs(spData[j]-expected) > threshold {
				t.Errorf("forward pass at index %d: got %v, want %v", j,
					spData[j], expected)
			}

			sigmoid := 1. / (1. + math.Exp(-v))
			if math.Abs(gradData[j]-sigmoid) > threshold {
				t.Errorf("gradient at index %d: got %v, want %v", j,
					gradData[j], sigmoid)
			}

			if spData[j] < 0 {
				t.Errorf("softplus at index %d is negative: %v", j,
					spData[j])
			}
		}
		vm.Close()
	}
}

// Repeated runs must see the same input values: the forward op may not
// write its result into the input buffer.
func TestSoftplusLeavesInputIntact(t *testing.T) {
	backing := []float64{-1.5, 0.25, 2.0}

	g := G.NewGraph()
	x := G.NewVector(
		g,
		tensor.Float64,
		G.WithName("x"),
		G.WithShape(3),
		G.WithValue(tensor.NewDense(
			tensor.Float64,
			[]int{3},
			tensor.WithBacking(append([]float64(nil), backing...)),
		)),
	)

	sp, err := Softplus(x)
	if err != nil {
		t.Fatal(err)
	}

	var spVal G.Value
	G.Read(sp, &spVal)

	vm := G.NewTapeMachine(g)
	defer vm.Close()

	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
	first := append([]float64(nil), spVal.Data().([]float64)...)
	vm.Reset()

	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
	second := spVal.Data().([]float64)

	in := x.Value().Data().([]float64)
	for i := range backing {
		if in[i] != backing[i] {
			t.Errorf("input at index %d changed: got %v, want %v", i,
				in[i], backing[i])
		}
		if first[i] != second[i] {
			t.Errorf("output at index %d differs between runs: %v then %v",
				i, first[i], second[i])
		}
	}
}
