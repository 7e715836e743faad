package edward

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	"github.com/chewxy/math32"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// softplusOp is the element-wise softplus log(1 + exp(x))
type softplusOp struct{}

func newSoftplusOp() *softplusOp {
	return &softplusOp{}
}

func (s *softplusOp) Arity() int { return 1 }

func (s *softplusOp) Type() hm.Type {
	// All pointwise unary operations have this type:
	// op :: (Arithable a) => a -> a
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (s *softplusOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	err := CheckArity(s, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (s *softplusOp) ReturnsPtr() bool { return false }

func (s *softplusOp) CallsExtern() bool { return false }

func (s *softplusOp) OverwritesInput() int { return -1 }

func (s *softplusOp) String() string { return "Softplus" }

// WriteHash writes the hash of the receiver to a hash struct
func (s *softplusOp) WriteHash(h hash.Hash) { fmt.Fprint(h, "Softplus()") }

// Hashcode returns the hash code of the receiver
func (s *softplusOp) Hashcode() uint32 { return SimpleHash(s) }

func (s *softplusOp) Do(values ...G.Value) (G.Value, error) {
	err := s.checkInputs(values...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	return computePointwise(values[0], softplus64, softplus32)
}

func (s *softplusOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	err := CheckArity(s, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	diffOp := &softplusDiffOp{}
	nodes := make(G.Nodes, 1)

	nodes[0], err = G.ApplyOp(diffOp, inputs[0], grad)

	return nodes, err
}

func (s *softplusOp) DiffWRT(inputs int) []bool {
	if inputs != 1 {
		panic(fmt.Sprintf("softplus operator only supports one input, got "+
			"%d instead", inputs))
	}
	return []bool{true}
}

// checkInputs returns an error if the input to this Op is invalid
func (s *softplusOp) checkInputs(inputs ...G.Value) error {
	if err := CheckArity(s, len(inputs)); err != nil {
		return err
	}

	_, okF64 := inputs[0].(*G.F64)
	_, okF32 := inputs[0].(*G.F32)
	_, okTensor := inputs[0].(tensor.Tensor)

	if !(okF64 || okF32 || okTensor) {
		return fmt.Errorf("expected input to be a tensor, got %T", inputs[0])
	}

	return nil
}

// softplusDiffOp is the gradient of softplusOp. The derivative of
// softplus is the logistic sigmoid.
type softplusDiffOp struct{}

func (s *softplusDiffOp) Arity() int { return 2 }

func (s *softplusDiffOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a, a)
}

func (s *softplusDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
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

func (s *softplusDiffOp) ReturnsPtr() bool { return false }

func (s *softplusDiffOp) CallsExtern() bool { return false }

func (s *softplusDiffOp) OverwritesInput() int { return -1 }

func (s *softplusDiffOp) String() string { return "SoftplusDiff()" }

// WriteHash writes the hash of the receiver to a hash struct
func (s *softplusDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, s.String()) }

// Hashcode returns the hash code of the receiver
func (s *softplusDiffOp) Hashcode() uint32 { return SimpleHash(s) }

func (s *softplusDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	err := s.checkInputs(inputs...)
	if err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	x := inputs[0].(tensor.Tensor)
	grad := inputs[1].(tensor.Tensor)

	var ret *tensor.Dense
	switch x.Dtype() {
	case tensor.Float64:
		ret = s.f64Kernel(x.Shape().Clone(), x, grad)

	case tensor.Float32:
		ret = s.f32Kernel(x.Shape().Clone(), x, grad)
	}

	return ret, nil
}

func (s *softplusDiffOp) f64Kernel(shape tensor.Shape, inputData,
	gradData tensor.Tensor) *tensor.Dense {
	x := inputData.Data().([]float64)
	grad := gradData.Data().([]float64)

	ret := tensor.New(
		tensor.WithShape(shape...),
		tensor.Of(inputData.Dtype()),
	)

	for i, elem := range x {
		newGrad := grad[i] / (1.0 + math.Exp(-elem))
		ret.Set(i, newGrad)
	}

	return ret
}

func (s *softplusDiffOp) f32Kernel(shape tensor.Shape, inputData,
	gradData tensor.Tensor) *tensor.Dense {
	x := inputData.Data().([]float32)
	grad := gradData.Data().([]float32)

	ret := tensor.New(
		tensor.WithShape(shape...),
		tensor.Of(inputData.Dtype()),
	)

	for i, elem := range x {
		newGrad := grad[i] / (1.0 + math32.Exp(-elem))
		ret.Set(i, newGrad)
	}

	return ret
}

// checkInputs returns an error if the input to this Op is invalid
func (s *softplusDiffOp) checkInputs(inputs ...G.Value) error {
	if err := CheckArity(s, len(inputs)); err != nil {
		return err
	}

	_, okTensor := inputs[0].(tensor.Tensor)
	_, okGrad := inputs[1].(tensor.Tensor)

	if !(okTensor || okGrad) {
		return fmt.Errorf("expected input to be a tensor, got %T", inputs[0])
	}

	return nil
}

// softplus64 computes the softplus on a float64 input value. For large
// inputs softplus(x) = x to working precision; the direct formula is
// used otherwise with log1p for stability.
func softplus64(val float64) float64 {
	if val > 30 {
		return val
	}
	return math.Log1p(math.Exp(val))
}

// softplus32 computes the softplus on a float32 input value
func softplus32(val float32) float32 {
	if val > 15 {
		return val
	}
	return math32.Log(1 + math32.Exp(val))
}
