package edward

import (
	"fmt"
	"hash/fnv"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// SimpleHash constructs the 32-bit FNV-1a hash of a Gorgonia Op.
// Taken from Gorgonia.
func SimpleHash(op G.Op) uint32 {
	h := fnv.New32a()
	op.WriteHash(h)
	return h.Sum32()
}

// CheckArity returns an error if an op was given a number of inputs
// different from its arity
func CheckArity(op G.Op, inputs int) error {
	if inputs != op.Arity() && op.Arity() >= 0 {
		return fmt.Errorf("%v has an arity of %d. Got %d instead", op,
			op.Arity(), inputs)
	}
	return nil
}

// computePointwise applies f64 (or f32, depending on the dtype) to
// every element of value. The result is a fresh value; the input is
// never written, so it may alias live parameter state.
func computePointwise(value G.Value, f64 func(float64) float64,
	f32 func(float32) float32) (G.Value, error) {
	switch v := value.(type) {
	case *G.F64:
		return G.NewF64(f64(float64(*v))), nil

	case *G.F32:
		return G.NewF32(f32(float32(*v))), nil

	case tensor.Tensor:
		if len(v.Shape()) == 0 {
			return nil, fmt.Errorf("do: cannot compute on empty tensor")
		}

		switch data := v.Data().(type) {
		case []float64:
			out := make([]float64, len(data))
			for i := range data {
				out[i] = f64(data[i])
			}
			return tensor.New(
				tensor.WithShape(v.Shape().Clone()...),
				tensor.WithBacking(out),
			), nil

		case []float32:
			out := make([]float32, len(data))
			for i := range data {
				out[i] = f32(data[i])
			}
			return tensor.New(
				tensor.WithShape(v.Shape().Clone()...),
				tensor.WithBacking(out),
			), nil

		default:
			return nil, fmt.Errorf("do: unsupported tensor dtype %v",
				v.Dtype())
		}

	default:
		return nil, fmt.Errorf("do: unable to compute on type %T", v)
	}
}
