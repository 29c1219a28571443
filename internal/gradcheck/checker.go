package gradcheck

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/scope"
	"github.com/born-ml/opcheck/internal/tensor"
)

// Default comparator tolerances.
//
// The absolute term is deliberately large: it keeps the comparison driven by
// relative error everywhere except near-zero analytic gradients, matching the
// corpus this checker was validated against. Override via Config for stricter
// absolute checking.
const (
	DefaultMaxRelativeError = 0.005
	DefaultAbsTolerance     = 100
)

// Config holds the tunable knobs of a gradient check.
// Zero values mean "use the default".
type Config struct {
	// NoGradSet lists forward inputs excluded from differentiation.
	NoGradSet []string

	// OnlyCPU skips GPU verification even when a GPU kernel exists.
	OnlyCPU bool

	// Delta is the central-difference perturbation step.
	Delta float32

	// MaxRelativeError is the comparator's relative tolerance.
	MaxRelativeError float32

	// AbsTolerance is the comparator's absolute tolerance.
	AbsTolerance float32
}

func (c Config) withDefaults() Config {
	if c.Delta == 0 {
		c.Delta = DefaultDelta
	}
	if c.MaxRelativeError == 0 {
		c.MaxRelativeError = DefaultMaxRelativeError
	}
	if c.AbsTolerance == 0 {
		c.AbsTolerance = DefaultAbsTolerance
	}
	return c
}

// IsClose reports whether |numeric - analytic| <= atol + rtol*|analytic|
// holds for every element. Slices of different lengths are never close, and
// neither is any pair with a non-finite difference: a NaN or infinite
// gradient is a failure, not a match.
func IsClose(numeric, analytic []float32, rtol, atol float32) bool {
	if len(numeric) != len(analytic) {
		return false
	}
	for i := range numeric {
		diff := numeric[i] - analytic[i]
		if diff < 0 {
			diff = -diff
		}
		ref := analytic[i]
		if ref < 0 {
			ref = -ref
		}
		if math.IsNaN(float64(diff)) || math.IsInf(float64(diff), 0) {
			return false
		}
		if diff > atol+rtol*ref {
			return false
		}
	}
	return true
}

// CheckGrad verifies the analytic gradients of a forward operator against
// central-difference numeric estimates for every name in inputsToCheck.
//
// Malformed requests (an operator with other than one non-temporary output, a
// no-gradient or checked name that is not a forward input) fail immediately,
// before any operator runs. The numeric pass runs on CPU; the analytic
// backward pass runs on CPU and, when a GPU adapter is usable, the forward
// and backward kernels support it, and OnlyCPU is unset, independently on the
// GPU with an isolated scope and context.
func CheckGrad(fwd op.Operator, inputs map[string]Input, inputsToCheck []string, outputName string, cfg Config) error {
	cfg = cfg.withDefaults()

	if n := len(op.NonTempOutputs(fwd)); n != 1 {
		return errors.Errorf("gradcheck: operator %q must have exactly one non-temporary output, got %d", fwd.Type(), n)
	}
	for _, name := range inputsToCheck {
		if !contains(fwd.Inputs(), name) {
			return errors.Errorf("gradcheck: checked name %q is not an input of %q", name, fwd.Type())
		}
		if contains(cfg.NoGradSet, name) {
			return errors.Errorf("gradcheck: checked name %q is in the no-gradient set", name)
		}
		if _, ok := inputs[name]; !ok {
			return errors.Errorf("gradcheck: no value given for checked input %q", name)
		}
	}
	for name := range inputs {
		if !contains(fwd.Inputs(), name) {
			return errors.Errorf("gradcheck: %q is not an input of %q", name, fwd.Type())
		}
	}

	backward, err := op.Backward(fwd, cfg.NoGradSet)
	if err != nil {
		return errors.Wrap(err, "gradcheck: synthesize backward operator")
	}

	places := []tensor.Place{tensor.CPUPlace()}
	if !cfg.OnlyCPU && device.GPUAvailable() && fwd.SupportGPU() && backward.SupportGPU() {
		places = append(places, tensor.GPUPlace(0))
	}

	numeric := make(map[string]*tensor.Tensor, len(inputsToCheck))
	for _, name := range inputsToCheck {
		grad, err := NumericGradient(fwd, inputs, outputName, name, cfg.Delta)
		if err != nil {
			return err
		}
		numeric[name] = grad
	}

	for _, place := range places {
		if err := checkOnPlace(fwd, backward, inputs, inputsToCheck, numeric, place, cfg); err != nil {
			return err
		}
	}
	return nil
}

// checkOnPlace runs the forward and backward operators on one placement in a
// fresh scope and compares the analytic gradients against numeric.
func checkOnPlace(fwd, backward op.Operator, inputs map[string]Input, inputsToCheck []string,
	numeric map[string]*tensor.Tensor, place tensor.Place, cfg Config) error {

	ctx, err := device.NewContext(place)
	if err != nil {
		return errors.Wrapf(err, "gradcheck: create %s context", place)
	}
	defer ctx.Release()

	s := scope.New()

	for name, in := range inputs {
		t := s.Var(name).GetTensor()
		t.SetDims(in.Shape)
		t.Set(in.Values, place)
	}

	for _, name := range fwd.Outputs() {
		s.Var(name).GetTensor()
	}

	fwd.InferShape(s)
	for _, name := range fwd.Outputs() {
		v, _ := s.FindVar(name)
		v.GetTensor().Allocate(place)
	}
	fwd.Run(s, ctx)

	// Seed every output gradient with ones, matching the sum-reduction
	// convention of the numeric differencer.
	for _, name := range fwd.Outputs() {
		outVar, _ := s.FindVar(name)
		out := outVar.GetTensor()

		ones := make([]float32, out.NumElements())
		for i := range ones {
			ones[i] = 1
		}

		grad := s.Var(op.GradVarName(name)).GetTensor()
		grad.SetDims(out.Dims())
		grad.Set(ones, place)
	}

	for _, name := range backward.Outputs() {
		s.Var(name).GetTensor()
	}

	backward.InferShape(s)
	for _, name := range backward.Outputs() {
		v, _ := s.FindVar(name)
		v.GetTensor().Allocate(place)
	}
	backward.Run(s, ctx)

	for _, name := range inputsToCheck {
		gradVar, ok := s.FindVar(op.GradVarName(name))
		if !ok {
			return errors.Errorf("gradcheck: backward operator produced no gradient for %q", name)
		}
		analytic := gradVar.GetTensor().AsFloat32()

		if !IsClose(numeric[name].AsFloat32(), analytic, cfg.MaxRelativeError, cfg.AbsTolerance) {
			tag := "GPU"
			if place.IsCPU() {
				tag = "CPU"
			}
			return errors.Errorf("%s kernel gradient is not close to numeric gradient", tag)
		}
	}
	return nil
}
