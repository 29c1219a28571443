// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device provides the public API for per-placement execution
// contexts.
//
// Example:
//
//	ctx, err := device.NewContext(tensor.CPUPlace())
//	if err != nil {
//	    return err
//	}
//	defer ctx.Release()
package device

import (
	"github.com/born-ml/opcheck/internal/device"
	"github.com/born-ml/opcheck/internal/tensor"
)

// Context selects the kernel and memory space operators run against.
type Context = device.Context

// NewContext creates an execution context for the given place.
func NewContext(place tensor.Place) (*Context, error) {
	return device.NewContext(place)
}

// GPUAvailable reports whether a WebGPU adapter can be initialized.
func GPUAvailable() bool { return device.GPUAvailable() }
