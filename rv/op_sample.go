package rv

import (
	"fmt"
	"hash"

	"golang.org/x/exp/rand"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/mehrdaad/edward"
)

// sampleKernel fills one draw from a family's elementary sampler given
// the current parameter tensors
type sampleKernel func(src rand.Source, params ...tensor.Tensor) (
	*tensor.Dense, error)

// sampleOp draws one realization of a distribution whose parameters
// are the op's inputs. It is not differentiable. Each op carries a
// process-unique serial mixed into its hash, so structurally identical
// draws are never merged by the expression graph, and a random source
// derived from the owning scope's draw position, so identical
// top-level calls replay identical streams.
type sampleOp struct {
	family string
	dt     tensor.Dtype
	shape  tensor.Shape
	arity  int
	serial uint64
	src    rand.Source
	kernel sampleKernel
}

func newSampleOp(family string, dt tensor.Dtype, shape tensor.Shape,
	arity int, seed uint64, sc *Scope, kernel sampleKernel) (*sampleOp,
	error) {
	if dt != tensor.Float64 {
		return nil, fmt.Errorf("newSampleOp: dtype %v not supported", dt)
	}

	return &sampleOp{
		family: family,
		dt:     dt,
		shape:  shape.Clone(),
		arity:  arity,
		serial: edward.NextSerial(),
		src:    rand.NewSource(mixSeed(seed, sc.draw())),
		kernel: kernel,
	}, nil
}

func (s *sampleOp) Arity() int { return s.arity }

func (s *sampleOp) Type() hm.Type {
	tt := G.TensorType{
		Dims: s.shape.Dims(),
		Of:   s.dt,
	}

	types := make([]hm.Type, s.arity+1)
	for i := range types {
		types[i] = tt
	}

	return hm.NewFnType(types...)
}

func (s *sampleOp) InferShape(...G.DimSizer) (tensor.Shape, error) {
	return s.shape, nil
}

func (s *sampleOp) ReturnsPtr() bool { return false }

func (s *sampleOp) CallsExtern() bool { return false }

func (s *sampleOp) OverwritesInput() int { return -1 }

func (s *sampleOp) String() string {
	return fmt.Sprintf("Sample{family=%v, shape=%v}()", s.family, s.shape)
}

func (s *sampleOp) WriteHash(h hash.Hash) {
	fmt.Fprintf(h, "Sample{family=%v, shape=%v, serial=%v}()", s.family,
		s.shape, s.serial)
}

func (s *sampleOp) Hashcode() uint32 { return edward.SimpleHash(s) }

func (s *sampleOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := s.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	params := make([]tensor.Tensor, len(inputs))
	for i := range inputs {
		params[i] = inputs[i].(tensor.Tensor)
	}

	return s.kernel(s.src, params...)
}

func (s *sampleOp) checkInputs(inputs ...G.Value) error {
	if err := edward.CheckArity(s, len(inputs)); err != nil {
		return err
	}

	for i := range inputs {
		t, ok := inputs[i].(tensor.Tensor)
		if !ok {
			return fmt.Errorf("expected parameter %v to be a tensor but "+
				"got %T", i, inputs[i])
		} else if t.Size() == 0 {
			return fmt.Errorf("cannot sample from empty parameter %v", i)
		} else if !t.Dtype().Eq(s.dt) {
			return fmt.Errorf("expected parameter %v to have dtype %v but "+
				"got %v", i, s.dt, t.Dtype())
		}
	}

	return nil
}

// floats returns the elements of t in index order
func floats(t tensor.Tensor) ([]float64, error) {
	data, ok := t.Data().([]float64)
	if !ok {
		// A scalar-backed value
		if f, ok := t.Data().(float64); ok {
			return []float64{f}, nil
		}
		return nil, fmt.Errorf("expected float64 backing but got %T",
			t.Data())
	}

	return data, nil
}
