// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gradcheck provides the public API for gradient verification.
//
// CheckGrad compares an operator's analytic gradients, computed by its
// synthesized backward operator, against central-difference numeric
// estimates, on CPU and (when available and supported) on GPU.
//
// Example:
//
//	fwd := ops.NewAdd("X", "Y", "Z")
//	inputs := map[string]gradcheck.Input{
//	    "X": gradcheck.Random(tensor.Shape{10, 1}),
//	    "Y": gradcheck.Random(tensor.Shape{10, 1}),
//	}
//	err := gradcheck.CheckGrad(fwd, inputs, []string{"X", "Y"}, "Z", gradcheck.Config{})
package gradcheck

import (
	"github.com/born-ml/opcheck/internal/gradcheck"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/tensor"
)

// Defaults for the perturbation step and comparator tolerances.
const (
	DefaultDelta            = gradcheck.DefaultDelta
	DefaultMaxRelativeError = gradcheck.DefaultMaxRelativeError
	DefaultAbsTolerance     = gradcheck.DefaultAbsTolerance
)

// Input is a host-side value for one operator input variable.
type Input = gradcheck.Input

// Config holds the tunable knobs of a gradient check.
type Config = gradcheck.Config

// Random returns an Input with uniform-random values in [0, 1).
func Random(shape tensor.Shape) Input { return gradcheck.Random(shape) }

// NumericGradient estimates d(sum(outputName))/d(inputToCheck) by central
// differences with step delta, running on CPU.
func NumericGradient(fwd op.Operator, inputs map[string]Input, outputName, inputToCheck string, delta float32) (*tensor.Tensor, error) {
	return gradcheck.NumericGradient(fwd, inputs, outputName, inputToCheck, delta)
}

// IsClose reports whether |numeric - analytic| <= atol + rtol*|analytic|
// holds for every element.
func IsClose(numeric, analytic []float32, rtol, atol float32) bool {
	return gradcheck.IsClose(numeric, analytic, rtol, atol)
}

// CheckGrad verifies the analytic gradients of a forward operator against
// numeric estimates for every name in inputsToCheck.
func CheckGrad(fwd op.Operator, inputs map[string]Input, inputsToCheck []string, outputName string, cfg Config) error {
	return gradcheck.CheckGrad(fwd, inputs, inputsToCheck, outputName, cfg)
}
