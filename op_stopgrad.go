package edward

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// stopGradientOp is the identity on the forward pass but is not
// differentiable with respect to its input, so backpropagation
// terminates at it.
type stopGradientOp struct{}

func newStopGradientOp() *stopGradientOp {
	return &stopGradientOp{}
}

func (s *stopGradientOp) Arity() int { return 1 }

func (s *stopGradientOp) Type() hm.Type {
	a := hm.TypeVariable('a')

	return hm.NewFnType(a, a)
}

func (s *stopGradientOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
	error) {
	err := CheckArity(s, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (s *stopGradientOp) ReturnsPtr() bool { return true }

func (s *stopGradientOp) CallsExtern() bool { return false }

func (s *stopGradientOp) OverwritesInput() int { return 0 }

func (s *stopGradientOp) String() string { return "StopGradient" }

// WriteHash writes the hash of the receiver to a hash struct
func (s *stopGradientOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, "StopGradient()")
}

// Hashcode returns the hash code of the receiver
func (s *stopGradientOp) Hashcode() uint32 { return SimpleHash(s) }

func (s *stopGradientOp) DiffWRT(inputs int) []bool {
	if inputs != 1 {
		panic(fmt.Sprintf("stopGradient operator only supports one input, "+
			"got %d instead", inputs))
	}
	return []bool{false}
}

func (s *stopGradientOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := s.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	return inputs[0], nil
}

// checkInputs returns an error if the input to this Op is invalid
func (s *stopGradientOp) checkInputs(inputs ...G.Value) error {
	if err := CheckArity(s, len(inputs)); err != nil {
		return err
	}

	if inputs[0] == nil {
		return fmt.Errorf("no input")
	}

	_, okF64 := inputs[0].(*G.F64)
	_, okF32 := inputs[0].(*G.F32)
	_, okTensor := inputs[0].(tensor.Tensor)

	if !(okF64 || okF32 || okTensor) {
		return fmt.Errorf("expected input to be a tensor, got %T", inputs[0])
	}

	return nil
}
