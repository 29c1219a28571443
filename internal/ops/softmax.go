package ops

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/scope"
)

// SoftmaxType is the type tag of the row-wise softmax operator.
const SoftmaxType = "softmax"

func init() {
	op.Register(SoftmaxType, op.Info{
		Make: func(inputs, outputs []string, attrs op.Attrs) (op.Operator, error) {
			if len(inputs) != 1 || len(outputs) != 1 {
				return nil, errors.Errorf("%s: want 1 input and 1 output, got %d and %d",
					SoftmaxType, len(inputs), len(outputs))
			}
			return NewSoftmax(inputs[0], outputs[0]), nil
		},
		MakeGrad: newSoftmaxGrad,
	})
}

// softmaxOp computes Y = softmax(X) row-wise on a 2D [batch, classes] input,
// with max-shifting for numerical stability. CPU only.
type softmaxOp struct {
	op.Base
}

// NewSoftmax creates a softmax operator over the named scope variables.
func NewSoftmax(x, y string) op.Operator {
	o := &softmaxOp{}
	o.Base = op.NewBase(SoftmaxType, []string{x}, []string{y}, nil, nil)
	return o
}

func (o *softmaxOp) InferShape(s *scope.Scope) {
	x := scopeTensor(s, SoftmaxType, o.Inputs()[0])
	if len(x.Dims()) != 2 {
		panic(fmt.Sprintf("%s: input must be 2D [batch, classes], got %s", SoftmaxType, x.Dims()))
	}
	scopeTensor(s, SoftmaxType, o.Outputs()[0]).SetDims(x.Dims())
}

func (o *softmaxOp) Run(s *scope.Scope, ctx *device.Context) {
	if !ctx.Place().IsCPU() {
		panic(fmt.Sprintf("%s: no kernel for %s", SoftmaxType, ctx.Place()))
	}

	xt := scopeTensor(s, SoftmaxType, o.Inputs()[0])
	x := inputData(s, SoftmaxType, o.Inputs()[0])
	y := outputData(s, SoftmaxType, o.Outputs()[0])

	batch := xt.Dims()[0]
	classes := xt.Dims()[1]
	for b := 0; b < batch; b++ {
		offset := b * classes

		// Shift by the row max so exp cannot overflow.
		maxVal := x[offset]
		for j := 1; j < classes; j++ {
			if x[offset+j] > maxVal {
				maxVal = x[offset+j]
			}
		}

		sumExp := float32(0)
		for j := 0; j < classes; j++ {
			y[offset+j] = float32(math.Exp(float64(x[offset+j] - maxVal)))
			sumExp += y[offset+j]
		}

		for j := 0; j < classes; j++ {
			y[offset+j] /= sumExp
		}
	}
}

func (o *softmaxOp) SupportGPU() bool { return false }

// softmaxGradOp computes dX[b,j] = Y[b,j] * (dY[b,j] - dot(Y[b,:], dY[b,:])).
type softmaxGradOp struct {
	op.Base
	y     string
	yGrad string
	xGrad string // "" = omitted
}

func newSoftmaxGrad(fwd op.Operator, outputGrads, inputGrads []string) op.Operator {
	g := &softmaxGradOp{
		y:     fwd.Outputs()[0],
		yGrad: outputGrads[0],
		xGrad: inputGrads[0],
	}
	g.Base = op.NewBase(SoftmaxType+"_grad",
		op.GradInputNames(fwd, outputGrads), op.NonEmpty(inputGrads), nil, nil)
	return g
}

func (o *softmaxGradOp) InferShape(s *scope.Scope) {
	if o.xGrad == "" {
		return
	}
	scopeTensor(s, o.Type(), o.xGrad).SetDims(scopeTensor(s, o.Type(), o.y).Dims())
}

func (o *softmaxGradOp) Run(s *scope.Scope, ctx *device.Context) {
	if o.xGrad == "" {
		return
	}
	if !ctx.Place().IsCPU() {
		panic(fmt.Sprintf("%s: no kernel for %s", o.Type(), ctx.Place()))
	}

	yt := scopeTensor(s, o.Type(), o.y)
	y := inputData(s, o.Type(), o.y)
	dy := inputData(s, o.Type(), o.yGrad)
	dx := outputData(s, o.Type(), o.xGrad)

	batch := yt.Dims()[0]
	classes := yt.Dims()[1]
	for b := 0; b < batch; b++ {
		offset := b * classes

		dot := float32(0)
		for j := 0; j < classes; j++ {
			dot += y[offset+j] * dy[offset+j]
		}

		for j := 0; j < classes; j++ {
			dx[offset+j] = y[offset+j] * (dy[offset+j] - dot)
		}
	}
}

func (o *softmaxGradOp) SupportGPU() bool { return false }
