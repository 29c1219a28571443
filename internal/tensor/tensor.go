package tensor

import (
	"fmt"
	"unsafe"
)

// Tensor is a dense, typed, shaped array bound to a placement.
//
// A tensor starts out empty: it has no shape and no backing buffer. Callers
// fix the shape with SetDims, then reserve memory with Allocate (or Set,
// which allocates as a side effect). Element access is by flat row-major
// index. All placements are host-resident; GPU kernels stage device buffers
// per dispatch and read results back.
type Tensor struct {
	shape Shape
	dtype DataType
	place Place
	data  []byte
}

// New creates an empty float32 tensor with no shape and no buffer.
func New() *Tensor {
	return &Tensor{dtype: Float32}
}

// NewOfType creates an empty tensor of the given data type.
func NewOfType(dtype DataType) *Tensor {
	return &Tensor{dtype: dtype}
}

// SetDims fixes the tensor's shape. Must be called before Allocate.
// Panics if the shape is invalid.
func (t *Tensor) SetDims(shape Shape) {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: set dims: %v", err))
	}
	t.shape = shape.Clone()
}

// Dims returns the tensor's shape. The returned slice must not be mutated.
func (t *Tensor) Dims() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// Place returns the placement the tensor was allocated on.
// Meaningful only once Allocated() reports true.
func (t *Tensor) Place() Place {
	return t.place
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the buffer size in bytes once allocated.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.dtype.Size()
}

// Allocated reports whether the tensor has a backing buffer.
func (t *Tensor) Allocated() bool {
	return t.data != nil
}

// Allocate reserves a buffer sized to the current shape on the given place.
// Panics if the shape has not been set: allocating an unshaped tensor is a
// caller contract violation, not a runtime condition.
func (t *Tensor) Allocate(place Place) {
	if t.shape == nil {
		panic("tensor: allocate called before SetDims")
	}
	t.place = place
	t.data = make([]byte, t.ByteSize())
}

// Set bulk-copies a host float32 slice into the tensor's buffer on the given
// place, allocating if needed. The value length must match the current shape.
func (t *Tensor) Set(values []float32, place Place) {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor: Set on %s tensor", t.dtype))
	}
	if t.shape == nil {
		panic("tensor: Set called before SetDims")
	}
	if len(values) != t.NumElements() {
		panic(fmt.Sprintf("tensor: Set with %d values for shape %s (%d elements)",
			len(values), t.shape, t.NumElements()))
	}
	if !t.Allocated() || t.place != place || len(t.data) != t.ByteSize() {
		t.Allocate(place)
	}
	copy(t.AsFloat32(), values)
}

// AsFloat32 interprets the buffer as []float32 without copying.
// Panics if the tensor is unallocated or not Float32.
func (t *Tensor) AsFloat32() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor: dtype is %s, not float32", t.dtype))
	}
	if !t.Allocated() {
		panic("tensor: AsFloat32 on unallocated tensor")
	}
	if t.NumElements() == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&t.data[0])), t.NumElements())
}

// AsFloat64 interprets the buffer as []float64 without copying.
// Panics if the tensor is unallocated or not Float64.
func (t *Tensor) AsFloat64() []float64 {
	if t.dtype != Float64 {
		panic(fmt.Sprintf("tensor: dtype is %s, not float64", t.dtype))
	}
	if !t.Allocated() {
		panic("tensor: AsFloat64 on unallocated tensor")
	}
	if t.NumElements() == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&t.data[0])), t.NumElements())
}

// GetFloatElement returns the element at flat row-major index i.
func (t *Tensor) GetFloatElement(i int) float32 {
	return t.AsFloat32()[i]
}

// SetFloatElement writes the element at flat row-major index i.
func (t *Tensor) SetFloatElement(i int, v float32) {
	t.AsFloat32()[i] = v
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	if !t.Allocated() {
		return fmt.Sprintf("Tensor[%s]%s unallocated", t.dtype, t.shape)
	}
	return fmt.Sprintf("Tensor[%s]%s on %s", t.dtype, t.shape, t.place)
}
