// Package op defines the operator abstraction of the execution engine:
// the Operator interface, the type-tag registry kernels register into, and
// backward-operator synthesis.
//
// An operator is a named computation with declared input and output variable
// names. It reads its inputs from a Scope, infers output shapes, and writes
// output values back into the Scope when run on a device context. Operators
// are immutable once constructed.
package op

import (
	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/scope"
)

// Operator is a named computation over scope variables.
//
// Contract: InferShape must be called, and succeed, before Run. Run requires
// every input tensor to be allocated with valid data and every output tensor
// to have an inferred shape and an allocated buffer. Contract violations
// (missing variable, shape mismatch, unallocated buffer) panic: they indicate
// a caller bug, not a runtime condition to tolerate.
type Operator interface {
	// Type returns the operator's registered type tag, e.g. "add_two".
	Type() string

	// Inputs returns the declared input variable names, in order.
	Inputs() []string

	// Outputs returns the declared output variable names, in order.
	Outputs() []string

	// TempOutputs returns the subset of outputs that are intermediates,
	// not user-visible gradient targets.
	TempOutputs() []string

	// Attrs returns the operator's configuration attributes.
	Attrs() Attrs

	// InferShape reads input tensor shapes from the scope and writes the
	// computed shapes into the output tensors, without allocating buffers
	// or computing values.
	InferShape(s *scope.Scope)

	// Run computes output values on the context's placement. Its only
	// observable effect is through the scope's tensors. Running on a
	// placement with no kernel panics; there is no silent fallback.
	Run(s *scope.Scope, ctx *device.Context)

	// SupportGPU reports whether a GPU kernel exists for this operator.
	SupportGPU() bool
}

// Base carries the declared name lists and attributes shared by every
// operator implementation. Kernels embed it and add InferShape/Run/SupportGPU.
type Base struct {
	opType  string
	inputs  []string
	outputs []string
	temps   []string
	attrs   Attrs
}

// NewBase constructs the immutable descriptor part of an operator.
// temps must be a subset of outputs; attrs may be nil.
func NewBase(opType string, inputs, outputs, temps []string, attrs Attrs) Base {
	if attrs == nil {
		attrs = Attrs{}
	}
	return Base{
		opType:  opType,
		inputs:  append([]string(nil), inputs...),
		outputs: append([]string(nil), outputs...),
		temps:   append([]string(nil), temps...),
		attrs:   attrs,
	}
}

// Type returns the operator type tag.
func (b *Base) Type() string { return b.opType }

// Inputs returns the declared input variable names.
func (b *Base) Inputs() []string { return b.inputs }

// Outputs returns the declared output variable names.
func (b *Base) Outputs() []string { return b.outputs }

// TempOutputs returns the outputs marked as intermediates.
func (b *Base) TempOutputs() []string { return b.temps }

// Attrs returns the operator's configuration attributes.
func (b *Base) Attrs() Attrs { return b.attrs }

// NonTempOutputs returns the declared outputs that are not intermediates,
// preserving declaration order.
func NonTempOutputs(o Operator) []string {
	temps := make(map[string]bool, len(o.TempOutputs()))
	for _, name := range o.TempOutputs() {
		temps[name] = true
	}
	var out []string
	for _, name := range o.Outputs() {
		if !temps[name] {
			out = append(out, name)
		}
	}
	return out
}
