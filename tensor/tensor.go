// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensors and placements.
//
// A Tensor follows a three-step lifecycle: create, SetDims, then Allocate on
// a Place. Kernels read and write the buffer through the typed accessors.
//
// Example:
//
//	t := tensor.New()
//	t.SetDims(tensor.Shape{2, 3})
//	t.Set([]float32{1, 2, 3, 4, 5, 6}, tensor.CPUPlace())
package tensor

import (
	"github.com/born-ml/opcheck/internal/tensor"
)

// DataType identifies the element type of a tensor buffer.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device identifies a kind of compute device.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{10, 1} is a 10×1 matrix.
type Shape = tensor.Shape

// Place identifies where a tensor's buffer lives.
type Place = tensor.Place

// CPUPlace returns the host memory placement.
func CPUPlace() Place { return tensor.CPUPlace() }

// GPUPlace returns the placement of GPU device index.
func GPUPlace(index int) Place { return tensor.GPUPlace(index) }

// Tensor is an n-dimensional array with an explicit allocation lifecycle.
type Tensor = tensor.Tensor

// New creates an unallocated Float32 tensor.
func New() *Tensor { return tensor.New() }

// NewOfType creates an unallocated tensor of the given element type.
func NewOfType(dtype DataType) *Tensor { return tensor.NewOfType(dtype) }
