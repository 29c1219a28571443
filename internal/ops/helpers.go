// Package ops implements the engine's built-in operator kernels and their
// gradients: add_two, mul_two, scale, and softmax. Each kernel registers
// itself with the op registry from init, keyed by its type tag.
package ops

import (
	"fmt"

	"github.com/born-ml/opcheck/internal/scope"
	"github.com/born-ml/opcheck/internal/tensor"
)

// scopeTensor resolves a variable the operator declared, panicking when it is
// absent: a missing declared variable is a caller contract violation.
func scopeTensor(s *scope.Scope, opType, name string) *tensor.Tensor {
	v, ok := s.FindVar(name)
	if !ok {
		panic(fmt.Sprintf("%s: variable %q not found in scope", opType, name))
	}
	return v.GetTensor()
}

// inputData resolves a declared input and returns its float32 data.
// Panics if the tensor is unallocated.
func inputData(s *scope.Scope, opType, name string) []float32 {
	t := scopeTensor(s, opType, name)
	if !t.Allocated() {
		panic(fmt.Sprintf("%s: input %q is not allocated", opType, name))
	}
	return t.AsFloat32()
}

// outputData resolves a declared output and returns its float32 data.
// Panics if the tensor has no inferred shape or no allocated buffer.
func outputData(s *scope.Scope, opType, name string) []float32 {
	t := scopeTensor(s, opType, name)
	if t.Dims() == nil {
		panic(fmt.Sprintf("%s: output %q has no inferred shape", opType, name))
	}
	if !t.Allocated() {
		panic(fmt.Sprintf("%s: output %q is not allocated", opType, name))
	}
	return t.AsFloat32()
}

// sameShape panics unless the two named tensors have equal shapes.
func sameShape(opType string, a, b *tensor.Tensor, aName, bName string) {
	if !a.Dims().Equal(b.Dims()) {
		panic(fmt.Sprintf("%s: shape mismatch: %s is %s, %s is %s",
			opType, aName, a.Dims(), bName, b.Dims()))
	}
}
