package gradcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opcheck/internal/gradcheck"
	"github.com/born-ml/opcheck/internal/ops"
	"github.com/born-ml/opcheck/internal/tensor"
)

func TestNumericGradientAdd(t *testing.T) {
	fwd := ops.NewAdd("X", "Y", "Z")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{10, 1}),
		"Y": gradcheck.Random(tensor.Shape{10, 1}),
	}

	grad, err := gradcheck.NumericGradient(fwd, inputs, "Z", "X", gradcheck.DefaultDelta)
	require.NoError(t, err)

	require.True(t, grad.Dims().Equal(tensor.Shape{10, 1}))

	// d(sum(X+Y))/dX is exactly ones, so the estimate should land very close.
	values := grad.AsFloat32()
	mean := float64(0)
	for _, v := range values {
		mean += float64(v)
	}
	mean /= float64(len(values))
	assert.InDelta(t, 1.0, mean, 1e-2)
}

func TestNumericGradientScale(t *testing.T) {
	fwd := ops.NewScale("X", "Out", 2.5)
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{3, 4}),
	}

	grad, err := gradcheck.NumericGradient(fwd, inputs, "Out", "X", gradcheck.DefaultDelta)
	require.NoError(t, err)

	for _, v := range grad.AsFloat32() {
		assert.InDelta(t, 2.5, float64(v), 1e-2)
	}
}

func TestNumericGradientSoftmax(t *testing.T) {
	fwd := ops.NewSoftmax("X", "Y")
	x := gradcheck.Random(tensor.Shape{2, 2})
	inputs := map[string]gradcheck.Input{"X": x}

	grad, err := gradcheck.NumericGradient(fwd, inputs, "Y", "X", gradcheck.DefaultDelta)
	require.NoError(t, err)

	// sum(softmax(X)) is constant per row, so the true gradient is zero
	// everywhere. Equivalently, with all-ones output gradients the analytic
	// formula Y*(dY - dot(Y, dY)) collapses to zero.
	for _, v := range grad.AsFloat32() {
		assert.InDelta(t, 0.0, float64(v), 1e-2)
	}
}

func TestNumericGradientIsRepeatable(t *testing.T) {
	// Every perturbation must be restored, so two runs over the same values
	// are bit-identical and the caller's values stay untouched.
	fwd := ops.NewMul("X", "Y", "Out")
	x := gradcheck.Random(tensor.Shape{4, 4})
	y := gradcheck.Random(tensor.Shape{4, 4})
	xBefore := append([]float32(nil), x.Values...)

	inputs := map[string]gradcheck.Input{"X": x, "Y": y}

	first, err := gradcheck.NumericGradient(fwd, inputs, "Out", "X", gradcheck.DefaultDelta)
	require.NoError(t, err)
	second, err := gradcheck.NumericGradient(fwd, inputs, "Out", "X", gradcheck.DefaultDelta)
	require.NoError(t, err)

	assert.Equal(t, first.AsFloat32(), second.AsFloat32())
	assert.Equal(t, xBefore, x.Values)
}

func TestNumericGradientUsageErrors(t *testing.T) {
	fwd := ops.NewAdd("X", "Y", "Z")
	inputs := map[string]gradcheck.Input{
		"X": gradcheck.Random(tensor.Shape{2}),
		"Y": gradcheck.Random(tensor.Shape{2}),
	}

	_, err := gradcheck.NumericGradient(fwd, inputs, "Z", "W", gradcheck.DefaultDelta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"W"`)

	_, err = gradcheck.NumericGradient(fwd, inputs, "NotAnOutput", "X", gradcheck.DefaultDelta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"NotAnOutput"`)

	bad := map[string]gradcheck.Input{
		"X":     inputs["X"],
		"Y":     inputs["Y"],
		"Extra": gradcheck.Random(tensor.Shape{2}),
	}
	_, err = gradcheck.NumericGradient(fwd, bad, "Z", "X", gradcheck.DefaultDelta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Extra"`)

	noValue := map[string]gradcheck.Input{"Y": inputs["Y"]}
	_, err = gradcheck.NumericGradient(fwd, noValue, "Z", "X", gradcheck.DefaultDelta)
	require.Error(t, err)
}
