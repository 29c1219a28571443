package gradcheck_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/gradcheck"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/ops"
	"github.com/born-ml/opcheck/internal/scope"
	"github.com/born-ml/opcheck/internal/tensor"
)

func TestCheckGradAdd(t *testing.T) {
	fwd := ops.NewAdd("X", "Y", "Z")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{10, 1}),
		"Y": gradcheck.Random(tensor.Shape{10, 1}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X", "Y"}, "Z", gradcheck.Config{})
	assert.NoError(t, err)
}

func TestCheckGradAddWithNoGradSet(t *testing.T) {
	fwd := ops.NewAdd("X", "Y", "Z")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{10, 1}),
		"Y": gradcheck.Random(tensor.Shape{10, 1}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Z",
		gradcheck.Config{NoGradSet: []string{"Y"}})
	assert.NoError(t, err)
}

func TestCheckGradMul(t *testing.T) {
	fwd := ops.NewMul("X", "Y", "Out")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{4, 4}),
		"Y": gradcheck.Random(tensor.Shape{4, 4}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X", "Y"}, "Out", gradcheck.Config{})
	assert.NoError(t, err)
}

func TestCheckGradScale(t *testing.T) {
	fwd := ops.NewScale("X", "Out", 3.7)
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{5, 3}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Out", gradcheck.Config{})
	assert.NoError(t, err)
}

func TestCheckGradSoftmax(t *testing.T) {
	fwd := ops.NewSoftmax("X", "Y")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{2, 2}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Y", gradcheck.Config{})
	assert.NoError(t, err)
}

func TestCheckGradOnlyCPU(t *testing.T) {
	fwd := ops.NewAdd("X", "Y", "Z")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{3}),
		"Y": gradcheck.Random(tensor.Shape{3}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Z",
		gradcheck.Config{OnlyCPU: true})
	assert.NoError(t, err)
}

func TestCheckGradDetectsBadGradient(t *testing.T) {
	fwd := newBadIdent("X", "Out")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{4}),
	}

	// The identity kernel's true gradient is 1 but the registered backward
	// claims 2. A tight absolute tolerance must catch the discrepancy.
	err := gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Out",
		gradcheck.Config{AbsTolerance: 1e-3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CPU kernel gradient is not close to numeric gradient")
}

func TestCheckGradDefaultAbsToleranceIsLoose(t *testing.T) {
	// With the default absolute tolerance of 100 an off-by-one gradient
	// still passes. The default favors relative checking of large
	// gradients; tighten AbsTolerance to catch small absolute errors.
	fwd := newBadIdent("X", "Out")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{4}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Out", gradcheck.Config{})
	assert.NoError(t, err)
}

func TestCheckGradRejectsMultiOutputOperator(t *testing.T) {
	fwd := &twoOutOp{}
	fwd.Base = op.NewBase("two_out", []string{"X"}, []string{"A", "B"}, nil, nil)

	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{2}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "A", gradcheck.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one non-temporary output")
	assert.Zero(t, fwd.runs, "a malformed request must not run the operator")
}

func TestCheckGradUsageErrors(t *testing.T) {
	fwd := ops.NewAdd("X", "Y", "Z")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{2}),
		"Y": gradcheck.Random(tensor.Shape{2}),
	}

	err := gradcheck.CheckGrad(fwd, inputs, []string{"W"}, "Z", gradcheck.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"W"`)

	err = gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Z",
		gradcheck.Config{NoGradSet: []string{"X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-gradient set")

	err = gradcheck.CheckGrad(fwd, inputs, []string{"X"}, "Z",
		gradcheck.Config{NoGradSet: []string{"NotAnInput"}})
	require.Error(t, err)

	err = gradcheck.CheckGrad(fwd, map[string]gradcheck.Input{"Y": inputs["Y"]},
		[]string{"X"}, "Z", gradcheck.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value")

	bad := map[string]gradcheck.Input{
		"X":     inputs["X"],
		"Y":     inputs["Y"],
		"Extra": gradcheck.Random(tensor.Shape{2}),
	}
	err = gradcheck.CheckGrad(fwd, bad, []string{"X"}, "Z", gradcheck.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Extra"`)
}

func TestIsClose(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name       string
		numeric    []float32
		analytic   []float32
		rtol, atol float32
		want       bool
	}{
		{"exact", []float32{1, 2, 3}, []float32{1, 2, 3}, 0, 0, true},
		{"within rtol", []float32{100.4}, []float32{100}, 0.005, 0, true},
		{"beyond rtol", []float32{101}, []float32{100}, 0.005, 0, false},
		{"within atol", []float32{0.05}, []float32{0}, 0, 0.1, true},
		{"beyond atol", []float32{0.2}, []float32{0}, 0, 0.1, false},
		{"one bad element", []float32{1, 2, 9}, []float32{1, 2, 3}, 0.005, 0.1, false},
		{"negative analytic", []float32{-100.4}, []float32{-100}, 0.005, 0, true},
		{"length mismatch", []float32{1, 2}, []float32{1}, 1, 1000, false},
		{"nan numeric", []float32{nan}, []float32{1}, 0.005, 100, false},
		{"nan analytic", []float32{1}, []float32{nan}, 0.005, 100, false},
		{"nan both", []float32{nan}, []float32{nan}, 0.005, 100, false},
		{"inf numeric", []float32{inf}, []float32{1}, 0.005, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want,
				gradcheck.IsClose(tt.numeric, tt.analytic, tt.rtol, tt.atol))
		})
	}
}

// twoOutOp is a malformed operator with two non-temporary outputs, used to
// verify that request validation happens before any kernel run.
type twoOutOp struct {
	op.Base
	runs int
}

func (o *twoOutOp) InferShape(*scope.Scope)           {}
func (o *twoOutOp) Run(*scope.Scope, *device.Context) { o.runs++ }
func (o *twoOutOp) SupportGPU() bool                  { return false }

// badIdentOp is an identity forward whose registered backward deliberately
// reports twice the true gradient.
type badIdentOp struct {
	op.Base
}

const badIdentType = "bad_ident"

func init() {
	op.Register(badIdentType, op.Info{
		Make: func(inputs, outputs []string, _ op.Attrs) (op.Operator, error) {
			return newBadIdent(inputs[0], outputs[0]), nil
		},
		MakeGrad: func(fwd op.Operator, outputGrads, inputGrads []string) op.Operator {
			g := &badIdentGradOp{outGrad: outputGrads[0], xGrad: inputGrads[0]}
			g.Base = op.NewBase(badIdentType+"_grad",
				op.GradInputNames(fwd, outputGrads), op.NonEmpty(inputGrads), nil, nil)
			return g
		},
	})
}

func newBadIdent(x, out string) op.Operator {
	o := &badIdentOp{}
	o.Base = op.NewBase(badIdentType, []string{x}, []string{out}, nil, nil)
	return o
}

func (o *badIdentOp) InferShape(s *scope.Scope) {
	x, _ := s.FindVar(o.Inputs()[0])
	out, _ := s.FindVar(o.Outputs()[0])
	out.GetTensor().SetDims(x.GetTensor().Dims())
}

func (o *badIdentOp) Run(s *scope.Scope, _ *device.Context) {
	x, _ := s.FindVar(o.Inputs()[0])
	out, _ := s.FindVar(o.Outputs()[0])
	copy(out.GetTensor().AsFloat32(), x.GetTensor().AsFloat32())
}

func (o *badIdentOp) SupportGPU() bool { return false }

type badIdentGradOp struct {
	op.Base
	outGrad string
	xGrad   string
}

func (o *badIdentGradOp) InferShape(s *scope.Scope) {
	if o.xGrad == "" {
		return
	}
	dout, _ := s.FindVar(o.outGrad)
	dx, _ := s.FindVar(o.xGrad)
	dx.GetTensor().SetDims(dout.GetTensor().Dims())
}

func (o *badIdentGradOp) Run(s *scope.Scope, _ *device.Context) {
	if o.xGrad == "" {
		return
	}
	doutVar, _ := s.FindVar(o.outGrad)
	dxVar, _ := s.FindVar(o.xGrad)
	dout := doutVar.GetTensor().AsFloat32()
	dx := dxVar.GetTensor().AsFloat32()
	for i := range dx {
		dx[i] = 2 * dout[i]
	}
}

func (o *badIdentGradOp) SupportGPU() bool { return false }
