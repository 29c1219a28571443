package op

import "github.com/pkg/errors"

// GradSuffix is appended to a variable name to form its gradient's name.
const GradSuffix = "@GRAD"

// GradVarName returns the conventional name of the gradient variable for the
// input or output named name.
func GradVarName(name string) string {
	return name + GradSuffix
}

// Backward synthesizes the backward operator for a forward operator.
//
// This is a pure description-to-description transform: it derives the
// backward operator's input names ({forward inputs, forward outputs,
// forward-output gradients}) and output names ({forward-input gradients},
// omitting entries in noGradSet), then delegates kernel construction to the
// forward type's registered gradient maker. No scope is touched.
//
// Every name in noGradSet must appear among the forward inputs; a violation
// is a usage error reported before any computation runs.
func Backward(fwd Operator, noGradSet []string) (Operator, error) {
	inputs := fwd.Inputs()
	noGrad := make(map[string]bool, len(noGradSet))
	for _, name := range noGradSet {
		found := false
		for _, in := range inputs {
			if in == name {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Errorf("op: no-gradient name %q is not an input of %q", name, fwd.Type())
		}
		noGrad[name] = true
	}

	info, ok := Lookup(fwd.Type())
	if !ok {
		return nil, errors.Errorf("op: type %q is not registered", fwd.Type())
	}
	if info.MakeGrad == nil {
		return nil, errors.Errorf("op: type %q has no gradient operator", fwd.Type())
	}

	outputGrads := make([]string, len(fwd.Outputs()))
	for i, name := range fwd.Outputs() {
		outputGrads[i] = GradVarName(name)
	}

	inputGrads := make([]string, len(inputs))
	for i, name := range inputs {
		if !noGrad[name] {
			inputGrads[i] = GradVarName(name)
		}
	}

	return info.MakeGrad(fwd, outputGrads, inputGrads), nil
}

// GradInputNames lists the names a synthesized backward operator reads:
// the forward inputs, the forward outputs, and the output gradients.
func GradInputNames(fwd Operator, outputGrads []string) []string {
	names := make([]string, 0, len(fwd.Inputs())+len(fwd.Outputs())+len(outputGrads))
	names = append(names, fwd.Inputs()...)
	names = append(names, fwd.Outputs()...)
	names = append(names, outputGrads...)
	return names
}

// NonEmpty filters empty entries out of a name list, preserving order.
// Grad makers use it to turn a positional input-gradient list (with holes
// for no-gradient inputs) into the backward operator's output declaration.
func NonEmpty(names []string) []string {
	var out []string
	for _, name := range names {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
