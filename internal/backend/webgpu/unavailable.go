//go:build !windows

// Package webgpu provides the WebGPU compute kernels behind the engine's GPU
// placement. On platforms where go-webgpu is not supported this stub keeps
// the package compiling and reports the GPU as unavailable.
package webgpu

import "errors"

// ErrNotCompiledIn is returned by New on platforms without WebGPU support.
var ErrNotCompiledIn = errors.New("webgpu: not compiled in on this platform")

// Backend is a placeholder on platforms without WebGPU support.
// Its kernel methods must never be reached: callers gate on IsAvailable.
type Backend struct{}

// New always fails: WebGPU is not compiled in.
func New() (*Backend, error) {
	return nil, ErrNotCompiledIn
}

// IsAvailable reports false: WebGPU is not compiled in.
func IsAvailable() bool {
	return false
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU (unavailable)"
}

// Release is a no-op.
func (b *Backend) Release() {}

// AddFloat32 panics: no GPU kernels are compiled in.
func (b *Backend) AddFloat32(a, c, out []float32) error {
	panic("webgpu: AddFloat32 called without WebGPU support")
}

// MulFloat32 panics: no GPU kernels are compiled in.
func (b *Backend) MulFloat32(a, c, out []float32) error {
	panic("webgpu: MulFloat32 called without WebGPU support")
}

// ScaleFloat32 panics: no GPU kernels are compiled in.
func (b *Backend) ScaleFloat32(x []float32, k float32, out []float32) error {
	panic("webgpu: ScaleFloat32 called without WebGPU support")
}
