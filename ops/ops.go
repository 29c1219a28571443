// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the public API for the built-in operator kernels.
//
// Importing this package registers the kernels with the operator registry,
// so op.New and op.Backward can construct them by type tag.
package ops

import (
	"github.com/born-ml/opcheck/internal/op"
	"github.com/born-ml/opcheck/internal/ops"
)

// Registered operator type tags.
const (
	AddType     = ops.AddType
	MulType     = ops.MulType
	ScaleType   = ops.ScaleType
	SoftmaxType = ops.SoftmaxType
)

// ScaleAttr is the attribute key holding the scale factor.
const ScaleAttr = ops.ScaleAttr

// NewAdd creates an add_two operator: Out = X + Y element-wise.
func NewAdd(x, y, out string) op.Operator { return ops.NewAdd(x, y, out) }

// NewMul creates a mul_two operator: Out = X * Y element-wise.
func NewMul(x, y, out string) op.Operator { return ops.NewMul(x, y, out) }

// NewScale creates a scale operator: Out = scale * X.
func NewScale(x, out string, scale float32) op.Operator {
	return ops.NewScale(x, out, scale)
}

// NewSoftmax creates a row-wise softmax operator over a 2D input. CPU only.
func NewSoftmax(x, y string) op.Operator { return ops.NewSoftmax(x, y) }
