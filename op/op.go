// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package op provides the public API for operators, the type registry, and
// backward-operator synthesis.
//
// Example:
//
//	fwd, err := op.New("add_two", []string{"X", "Y"}, []string{"Out"}, nil)
//	if err != nil {
//	    return err
//	}
//	bwd, err := op.Backward(fwd, nil)
package op

import (
	"github.com/born-ml/opcheck/internal/op"
)

// Operator is a named computation over scope variables.
type Operator = op.Operator

// Base carries the declared name lists and attributes of an operator.
type Base = op.Base

// Attrs holds operator configuration attributes.
type Attrs = op.Attrs

// MakeFunc constructs a forward operator from declared names and attributes.
type MakeFunc = op.MakeFunc

// GradMakeFunc constructs the backward operator for a forward operator.
type GradMakeFunc = op.GradMakeFunc

// Info describes one registered operator type.
type Info = op.Info

// GradSuffix is appended to a variable name to form its gradient's name.
const GradSuffix = op.GradSuffix

// NewBase constructs the immutable descriptor part of an operator.
func NewBase(opType string, inputs, outputs, temps []string, attrs Attrs) Base {
	return op.NewBase(opType, inputs, outputs, temps, attrs)
}

// Register adds an operator type to the registry.
func Register(opType string, info Info) { op.Register(opType, info) }

// Lookup returns the registration for a type tag.
func Lookup(opType string) (Info, bool) { return op.Lookup(opType) }

// Types returns all registered operator type tags, sorted.
func Types() []string { return op.Types() }

// New constructs a forward operator by type tag.
func New(opType string, inputs, outputs []string, attrs Attrs) (Operator, error) {
	return op.New(opType, inputs, outputs, attrs)
}

// Backward synthesizes the backward operator for a forward operator,
// omitting gradients for the names in noGradSet.
func Backward(fwd Operator, noGradSet []string) (Operator, error) {
	return op.Backward(fwd, noGradSet)
}

// GradVarName returns the conventional gradient variable name for name.
func GradVarName(name string) string { return op.GradVarName(name) }

// NonTempOutputs returns the declared outputs that are not intermediates.
func NonTempOutputs(o Operator) []string { return op.NonTempOutputs(o) }
