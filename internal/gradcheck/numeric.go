// Package gradcheck verifies analytic operator gradients against
// central-difference numeric estimates.
//
// The numeric differencer perturbs one scalar element of one input tensor at
// a time, re-runs the forward operator, and estimates the gradient of the
// sum of the designated output. The comparator then runs the synthesized
// backward operator with output gradients seeded to ones (the same
// sum-reduction convention) and asserts elementwise closeness under a
// relative+absolute tolerance.
package gradcheck

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/scope"
	"github.com/born-ml/opcheck/internal/tensor"
)

// DefaultDelta is the default perturbation step. Smaller improves truncation
// error, larger improves stability against floating-point cancellation.
const DefaultDelta = 0.005

// Input is a host-side value for one operator input variable.
type Input struct {
	Shape  tensor.Shape
	Values []float32
}

// Random returns an Input with uniform-random values in [0, 1).
func Random(shape tensor.Shape) Input {
	values := make([]float32, shape.NumElements())
	for i := range values {
		values[i] = rand.Float32()
	}
	return Input{Shape: shape, Values: values}
}

// NumericGradient estimates d(sum(outputName))/d(inputToCheck) for the
// forward operator by central differences with step delta, running on CPU.
//
// The returned tensor has the checked input's shape. The checked tensor is
// restored after every perturbation, so repeated calls over the same values
// produce identical results.
func NumericGradient(fwd op.Operator, inputs map[string]Input, outputName, inputToCheck string, delta float32) (*tensor.Tensor, error) {
	if err := validateNames(fwd, inputs, outputName, inputToCheck); err != nil {
		return nil, err
	}

	s := scope.New()
	place := tensor.CPUPlace()

	for name, in := range inputs {
		t := s.Var(name).GetTensor()
		t.SetDims(in.Shape)
		t.Set(in.Values, place)
	}

	for _, name := range fwd.Outputs() {
		if _, ok := s.FindVar(name); !ok {
			s.Var(name).GetTensor()
		}
	}

	fwd.InferShape(s)

	for _, name := range fwd.Outputs() {
		v, _ := s.FindVar(name)
		v.GetTensor().Allocate(place)
	}

	ctx, err := device.NewContext(place)
	if err != nil {
		return nil, err
	}
	defer ctx.Release()

	outVar, _ := s.FindVar(outputName)
	outTensor := outVar.GetTensor()

	runAndSum := func() float64 {
		fwd.Run(s, ctx)
		sum := float64(0)
		for _, v := range outTensor.AsFloat32() {
			sum += float64(v)
		}
		return sum
	}

	checkVar, _ := s.FindVar(inputToCheck)
	checked := checkVar.GetTensor()
	size := checked.NumElements()
	gradient := make([]float32, size)

	for i := 0; i < size; i++ {
		origin := checked.GetFloatElement(i)

		checked.SetFloatElement(i, origin+delta)
		yPos := runAndSum()

		checked.SetFloatElement(i, origin-delta)
		yNeg := runAndSum()

		// Restore before moving on: perturbations must not leak into the
		// next element or back to the caller.
		checked.SetFloatElement(i, origin)

		gradient[i] = float32((yPos - yNeg) / (2 * float64(delta)))
	}

	result := tensor.New()
	result.SetDims(checked.Dims())
	result.Set(gradient, place)
	return result, nil
}

// validateNames reports setup-time usage errors before any operator run.
func validateNames(fwd op.Operator, inputs map[string]Input, outputName, inputToCheck string) error {
	for name := range inputs {
		if !contains(fwd.Inputs(), name) {
			return errors.Errorf("gradcheck: %q is not an input of %q", name, fwd.Type())
		}
	}
	if !contains(fwd.Inputs(), inputToCheck) {
		return errors.Errorf("gradcheck: checked name %q is not an input of %q", inputToCheck, fwd.Type())
	}
	if _, ok := inputs[inputToCheck]; !ok {
		return errors.Errorf("gradcheck: no value given for checked input %q", inputToCheck)
	}
	if !contains(fwd.Outputs(), outputName) {
		return errors.Errorf("gradcheck: %q is not an output of %q", outputName, fwd.Type())
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
