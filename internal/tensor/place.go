package tensor

import "fmt"

// Device represents the compute device class for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// Place identifies a concrete execution target: a device class plus an
// adapter index within that class. Places are plain values and safe to copy.
type Place struct {
	Device Device
	Index  int
}

// CPUPlace returns the host CPU placement.
func CPUPlace() Place {
	return Place{Device: CPU}
}

// GPUPlace returns the placement for the GPU adapter at the given index.
func GPUPlace(index int) Place {
	return Place{Device: WebGPU, Index: index}
}

// IsCPU reports whether the place targets the host CPU.
func (p Place) IsCPU() bool {
	return p.Device == CPU
}

// IsGPU reports whether the place targets a GPU adapter.
func (p Place) IsGPU() bool {
	return p.Device == WebGPU
}

// String returns a human-readable placement name, e.g. "CPU" or "WebGPU:0".
func (p Place) String() string {
	if p.Device == CPU {
		return "CPU"
	}
	return fmt.Sprintf("%s:%d", p.Device, p.Index)
}
