// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package scope provides the public API for hierarchical variable scopes.
//
// A Scope maps names to Variables, each lazily holding one Tensor. Lookup
// walks parent scopes; creation is always local.
//
// Example:
//
//	s := scope.New()
//	x := s.Var("X").GetTensor()
//	x.SetDims(tensor.Shape{2, 2})
package scope

import (
	"github.com/born-ml/opcheck/internal/scope"
)

// Scope is a hierarchical namespace of Variables.
type Scope = scope.Scope

// Variable is a named slot holding one tensor.
type Variable = scope.Variable

// New creates a root scope.
func New() *Scope { return scope.New() }
