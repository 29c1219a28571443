package ops

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/scope"
	"github.com/born-ml/opcheck/internal/tensor"
)

// AddType is the type tag of the elementwise addition operator.
const AddType = "add_two"

func init() {
	op.Register(AddType, op.Info{
		Make: func(inputs, outputs []string, attrs op.Attrs) (op.Operator, error) {
			if len(inputs) != 2 || len(outputs) != 1 {
				return nil, errors.Errorf("%s: want 2 inputs and 1 output, got %d and %d",
					AddType, len(inputs), len(outputs))
			}
			return NewAdd(inputs[0], inputs[1], outputs[0]), nil
		},
		MakeGrad: newAddGrad,
	})
}

// addOp computes Out = X + Y element-wise.
type addOp struct {
	op.Base
}

// NewAdd creates an add_two operator over the named scope variables.
func NewAdd(x, y, out string) op.Operator {
	a := &addOp{}
	a.Base = op.NewBase(AddType, []string{x, y}, []string{out}, nil, nil)
	return a
}

func (o *addOp) InferShape(s *scope.Scope) {
	x := scopeTensor(s, AddType, o.Inputs()[0])
	y := scopeTensor(s, AddType, o.Inputs()[1])
	sameShape(AddType, x, y, o.Inputs()[0], o.Inputs()[1])
	scopeTensor(s, AddType, o.Outputs()[0]).SetDims(x.Dims())
}

func (o *addOp) Run(s *scope.Scope, ctx *device.Context) {
	x := inputData(s, AddType, o.Inputs()[0])
	y := inputData(s, AddType, o.Inputs()[1])
	out := outputData(s, AddType, o.Outputs()[0])

	switch ctx.Place().Device {
	case tensor.CPU:
		for i := range out {
			out[i] = x[i] + y[i]
		}
	case tensor.WebGPU:
		if err := ctx.GPU().AddFloat32(x, y, out); err != nil {
			panic(fmt.Sprintf("%s: WebGPU kernel failed: %v", AddType, err))
		}
	default:
		panic(fmt.Sprintf("%s: no kernel for %s", AddType, ctx.Place()))
	}
}

func (o *addOp) SupportGPU() bool { return true }

// addGradOp computes dX = dOut and dY = dOut. Either gradient output may be
// omitted when the corresponding input is in the no-gradient set.
type addGradOp struct {
	op.Base
	fwdInputs []string
	outGrad   string
	inGrads   []string // positional, "" = omitted
}

func newAddGrad(fwd op.Operator, outputGrads, inputGrads []string) op.Operator {
	g := &addGradOp{
		fwdInputs: fwd.Inputs(),
		outGrad:   outputGrads[0],
		inGrads:   inputGrads,
	}
	g.Base = op.NewBase(AddType+"_grad",
		op.GradInputNames(fwd, outputGrads), op.NonEmpty(inputGrads), nil, nil)
	return g
}

func (o *addGradOp) InferShape(s *scope.Scope) {
	for i, grad := range o.inGrads {
		if grad == "" {
			continue
		}
		in := scopeTensor(s, o.Type(), o.fwdInputs[i])
		scopeTensor(s, o.Type(), grad).SetDims(in.Dims())
	}
}

func (o *addGradOp) Run(s *scope.Scope, ctx *device.Context) {
	dout := inputData(s, o.Type(), o.outGrad)

	for _, grad := range o.inGrads {
		if grad == "" {
			continue
		}
		dst := outputData(s, o.Type(), grad)
		switch ctx.Place().Device {
		case tensor.CPU:
			copy(dst, dout)
		case tensor.WebGPU:
			if err := ctx.GPU().ScaleFloat32(dout, 1, dst); err != nil {
				panic(fmt.Sprintf("%s: WebGPU kernel failed: %v", o.Type(), err))
			}
		default:
			panic(fmt.Sprintf("%s: no kernel for %s", o.Type(), ctx.Place()))
		}
	}
}

func (o *addGradOp) SupportGPU() bool { return true }
