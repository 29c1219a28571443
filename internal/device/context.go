// Package device provides execution contexts per placement.
//
// A Context is the single resource-acquisition point of the engine: creating
// one for a GPU place initializes the WebGPU device, and Release frees it.
// Contexts are scoped to one comparison pass and recreated per placement;
// there is no global device registry.
package device

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/opcheck/internal/backend/webgpu"
	"github.com/born-ml/opcheck/internal/tensor"
)

// Context selects the kernel and memory space operators run against.
type Context struct {
	place tensor.Place
	gpu   *webgpu.Backend // non-nil only for GPU places
}

// NewContext creates an execution context for the given place.
// For GPU places it initializes the WebGPU backend and fails if no adapter
// is available or the backend is not compiled in.
func NewContext(place tensor.Place) (*Context, error) {
	switch place.Device {
	case tensor.CPU:
		return &Context{place: place}, nil
	case tensor.WebGPU:
		gpu, err := webgpu.New()
		if err != nil {
			return nil, fmt.Errorf("device: create context for %s: %w", place, err)
		}
		klog.V(1).Infof("device: created %s context (%s)", place, gpu.Name())
		return &Context{place: place, gpu: gpu}, nil
	default:
		return nil, fmt.Errorf("device: unknown place %s", place)
	}
}

// Place returns the placement this context executes on.
func (c *Context) Place() tensor.Place {
	return c.place
}

// GPU returns the WebGPU backend. Panics on a CPU context: a kernel asking
// for GPU resources on a CPU context is a dispatch bug, not a runtime state.
func (c *Context) GPU() *webgpu.Backend {
	if c.gpu == nil {
		panic(fmt.Sprintf("device: GPU() on %s context", c.place))
	}
	return c.gpu
}

// Release frees the context's device resources. Safe to call on CPU contexts.
func (c *Context) Release() {
	if c.gpu != nil {
		c.gpu.Release()
		c.gpu = nil
		klog.V(1).Infof("device: released %s context", c.place)
	}
}

// GPUAvailable reports whether a WebGPU adapter can be initialized on this
// system. It is the "compiled in and usable" gate for GPU verification.
func GPUAvailable() bool {
	ok := webgpu.IsAvailable()
	klog.V(2).Infof("device: WebGPU available: %v", ok)
	return ok
}
