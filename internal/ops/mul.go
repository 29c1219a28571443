package ops

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/scope"
	"github.com/born-ml/opcheck/internal/tensor"
)

// MulType is the type tag of the elementwise multiplication operator.
const MulType = "mul_two"

func init() {
	op.Register(MulType, op.Info{
		Make: func(inputs, outputs []string, attrs op.Attrs) (op.Operator, error) {
			if len(inputs) != 2 || len(outputs) != 1 {
				return nil, errors.Errorf("%s: want 2 inputs and 1 output, got %d and %d",
					MulType, len(inputs), len(outputs))
			}
			return NewMul(inputs[0], inputs[1], outputs[0]), nil
		},
		MakeGrad: newMulGrad,
	})
}

// mulOp computes Out = X * Y element-wise.
type mulOp struct {
	op.Base
}

// NewMul creates a mul_two operator over the named scope variables.
func NewMul(x, y, out string) op.Operator {
	m := &mulOp{}
	m.Base = op.NewBase(MulType, []string{x, y}, []string{out}, nil, nil)
	return m
}

func (o *mulOp) InferShape(s *scope.Scope) {
	x := scopeTensor(s, MulType, o.Inputs()[0])
	y := scopeTensor(s, MulType, o.Inputs()[1])
	sameShape(MulType, x, y, o.Inputs()[0], o.Inputs()[1])
	scopeTensor(s, MulType, o.Outputs()[0]).SetDims(x.Dims())
}

func (o *mulOp) Run(s *scope.Scope, ctx *device.Context) {
	x := inputData(s, MulType, o.Inputs()[0])
	y := inputData(s, MulType, o.Inputs()[1])
	out := outputData(s, MulType, o.Outputs()[0])

	switch ctx.Place().Device {
	case tensor.CPU:
		for i := range out {
			out[i] = x[i] * y[i]
		}
	case tensor.WebGPU:
		if err := ctx.GPU().MulFloat32(x, y, out); err != nil {
			panic(fmt.Sprintf("%s: WebGPU kernel failed: %v", MulType, err))
		}
	default:
		panic(fmt.Sprintf("%s: no kernel for %s", MulType, ctx.Place()))
	}
}

func (o *mulOp) SupportGPU() bool { return true }

// mulGradOp computes dX = dOut * Y and dY = dOut * X.
type mulGradOp struct {
	op.Base
	x, y    string
	outGrad string
	xGrad   string // "" = omitted
	yGrad   string // "" = omitted
}

func newMulGrad(fwd op.Operator, outputGrads, inputGrads []string) op.Operator {
	g := &mulGradOp{
		x:       fwd.Inputs()[0],
		y:       fwd.Inputs()[1],
		outGrad: outputGrads[0],
		xGrad:   inputGrads[0],
		yGrad:   inputGrads[1],
	}
	g.Base = op.NewBase(MulType+"_grad",
		op.GradInputNames(fwd, outputGrads), op.NonEmpty(inputGrads), nil, nil)
	return g
}

func (o *mulGradOp) InferShape(s *scope.Scope) {
	if o.xGrad != "" {
		scopeTensor(s, o.Type(), o.xGrad).SetDims(scopeTensor(s, o.Type(), o.x).Dims())
	}
	if o.yGrad != "" {
		scopeTensor(s, o.Type(), o.yGrad).SetDims(scopeTensor(s, o.Type(), o.y).Dims())
	}
}

func (o *mulGradOp) Run(s *scope.Scope, ctx *device.Context) {
	dout := inputData(s, o.Type(), o.outGrad)

	run := func(other, grad string) {
		src := inputData(s, o.Type(), other)
		dst := outputData(s, o.Type(), grad)
		switch ctx.Place().Device {
		case tensor.CPU:
			for i := range dst {
				dst[i] = dout[i] * src[i]
			}
		case tensor.WebGPU:
			if err := ctx.GPU().MulFloat32(dout, src, dst); err != nil {
				panic(fmt.Sprintf("%s: WebGPU kernel failed: %v", o.Type(), err))
			}
		default:
			panic(fmt.Sprintf("%s: no kernel for %s", o.Type(), ctx.Place()))
		}
	}

	if o.xGrad != "" {
		run(o.y, o.xGrad)
	}
	if o.yGrad != "" {
		run(o.x, o.yGrad)
	}
}

func (o *mulGradOp) SupportGPU() bool { return true }
