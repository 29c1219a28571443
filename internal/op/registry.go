package op

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// MakeFunc constructs a forward operator from declared variable names and
// attributes, validating arity. Returned errors are usage errors.
type MakeFunc func(inputs, outputs []string, attrs Attrs) (Operator, error)

// GradMakeFunc constructs the backward operator for a forward operator.
// outputGrads[i] names the gradient of fwd.Outputs()[i]; inputGrads[i] names
// the gradient of fwd.Inputs()[i], or is empty when that input is excluded
// from differentiation.
type GradMakeFunc func(fwd Operator, outputGrads, inputGrads []string) Operator

// Info describes one registered operator type.
type Info struct {
	Make     MakeFunc
	MakeGrad GradMakeFunc // nil when the operator has no gradient
}

var registry = make(map[string]Info)

// Register adds an operator type to the registry. Kernel packages call this
// from init; registering the same tag twice panics.
func Register(opType string, info Info) {
	if _, exists := registry[opType]; exists {
		panic(fmt.Sprintf("op: duplicate registration of %q", opType))
	}
	if info.Make == nil {
		panic(fmt.Sprintf("op: registration of %q without a Make function", opType))
	}
	registry[opType] = info
}

// Lookup returns the registration for a type tag.
func Lookup(opType string) (Info, bool) {
	info, ok := registry[opType]
	return info, ok
}

// Types returns all registered operator type tags, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New constructs a forward operator by type tag.
func New(opType string, inputs, outputs []string, attrs Attrs) (Operator, error) {
	info, ok := Lookup(opType)
	if !ok {
		return nil, errors.Errorf("op: type %q is not registered", opType)
	}
	return info.Make(inputs, outputs, attrs)
}
