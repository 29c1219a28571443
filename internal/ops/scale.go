package ops

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/scope"
	"github.com/born-ml/opcheck/internal/tensor"
)

// ScaleType is the type tag of the scalar multiplication operator.
const ScaleType = "scale"

// ScaleAttr is the attribute key holding the scale factor (default 1.0).
const ScaleAttr = "scale"

func init() {
	op.Register(ScaleType, op.Info{
		Make: func(inputs, outputs []string, attrs op.Attrs) (op.Operator, error) {
			if len(inputs) != 1 || len(outputs) != 1 {
				return nil, errors.Errorf("%s: want 1 input and 1 output, got %d and %d",
					ScaleType, len(inputs), len(outputs))
			}
			return NewScale(inputs[0], outputs[0], attrs.Float(ScaleAttr, 1)), nil
		},
		MakeGrad: newScaleGrad,
	})
}

// scaleOp computes Out = scale * X element-wise, with the factor carried as
// an operator attribute.
type scaleOp struct {
	op.Base
}

// NewScale creates a scale operator over the named scope variables.
func NewScale(x, out string, scale float32) op.Operator {
	o := &scaleOp{}
	o.Base = op.NewBase(ScaleType, []string{x}, []string{out}, nil,
		op.Attrs{ScaleAttr: scale})
	return o
}

func (o *scaleOp) InferShape(s *scope.Scope) {
	x := scopeTensor(s, ScaleType, o.Inputs()[0])
	scopeTensor(s, ScaleType, o.Outputs()[0]).SetDims(x.Dims())
}

func (o *scaleOp) Run(s *scope.Scope, ctx *device.Context) {
	x := inputData(s, ScaleType, o.Inputs()[0])
	out := outputData(s, ScaleType, o.Outputs()[0])
	k := o.Attrs().Float(ScaleAttr, 1)

	switch ctx.Place().Device {
	case tensor.CPU:
		for i := range out {
			out[i] = k * x[i]
		}
	case tensor.WebGPU:
		if err := ctx.GPU().ScaleFloat32(x, k, out); err != nil {
			panic(fmt.Sprintf("%s: WebGPU kernel failed: %v", ScaleType, err))
		}
	default:
		panic(fmt.Sprintf("%s: no kernel for %s", ScaleType, ctx.Place()))
	}
}

func (o *scaleOp) SupportGPU() bool { return true }

// scaleGradOp computes dX = scale * dOut. The factor is inherited from the
// forward operator's attributes.
type scaleGradOp struct {
	op.Base
	x       string
	outGrad string
	xGrad   string // "" = omitted
}

func newScaleGrad(fwd op.Operator, outputGrads, inputGrads []string) op.Operator {
	g := &scaleGradOp{
		x:       fwd.Inputs()[0],
		outGrad: outputGrads[0],
		xGrad:   inputGrads[0],
	}
	g.Base = op.NewBase(ScaleType+"_grad",
		op.GradInputNames(fwd, outputGrads), op.NonEmpty(inputGrads), nil,
		op.Attrs{ScaleAttr: fwd.Attrs().Float(ScaleAttr, 1)})
	return g
}

func (o *scaleGradOp) InferShape(s *scope.Scope) {
	if o.xGrad == "" {
		return
	}
	scopeTensor(s, o.Type(), o.xGrad).SetDims(scopeTensor(s, o.Type(), o.x).Dims())
}

func (o *scaleGradOp) Run(s *scope.Scope, ctx *device.Context) {
	if o.xGrad == "" {
		return
	}
	dout := inputData(s, o.Type(), o.outGrad)
	dst := outputData(s, o.Type(), o.xGrad)
	k := o.Attrs().Float(ScaleAttr, 1)

	switch ctx.Place().Device {
	case tensor.CPU:
		for i := range dst {
			dst[i] = k * dout[i]
		}
	case tensor.WebGPU:
		if err := ctx.GPU().ScaleFloat32(dout, k, dst); err != nil {
			panic(fmt.Sprintf("%s: WebGPU kernel failed: %v", o.Type(), err))
		}
	default:
		panic(fmt.Sprintf("%s: no kernel for %s", o.Type(), ctx.Place()))
	}
}

func (o *scaleGradOp) SupportGPU() bool { return true }
