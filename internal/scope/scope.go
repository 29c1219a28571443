// Package scope implements the hierarchical variable namespace the operator
// engine executes against.
//
// A Scope owns named Variables; a Variable owns (at most) one Tensor, created
// lazily on first access. Scopes form a tree: child scopes hold a non-owning
// reference to their parent and lookups walk the parent chain, so an operator
// can run in an isolated child scope while still seeing enclosing variables.
package scope

import "github.com/born-ml/opcheck/internal/tensor"

// Variable is a named container holding exactly one tensor payload.
// Its identity is distinct from its value: the variable exists as soon as it
// is created in a scope, while the tensor is materialized on first access.
type Variable struct {
	name string
	t    *tensor.Tensor
}

// Name returns the variable's name, unique within its owning scope.
func (v *Variable) Name() string {
	return v.name
}

// GetTensor returns the variable's tensor, creating an empty float32 tensor
// on first access.
func (v *Variable) GetTensor() *tensor.Tensor {
	if v.t == nil {
		v.t = tensor.New()
	}
	return v.t
}

// Scope maps names to Variables and optionally chains to a parent scope.
type Scope struct {
	vars   map[string]*Variable
	parent *Scope // non-owning; nil for the root scope
}

// New creates a root scope with no parent.
func New() *Scope {
	return &Scope{vars: make(map[string]*Variable)}
}

// NewChild creates a scope whose lookups fall through to s.
// The child owns its own variables; it does not own s.
func (s *Scope) NewChild() *Scope {
	return &Scope{vars: make(map[string]*Variable), parent: s}
}

// Var returns the local variable with the given name, creating it if absent.
// It never consults the parent chain: an operator writing an output always
// writes into the scope it runs in.
func (s *Scope) Var(name string) *Variable {
	if v, ok := s.vars[name]; ok {
		return v
	}
	v := &Variable{name: name}
	s.vars[name] = v
	return v
}

// FindVar looks the name up locally, then along the parent chain.
// Absence is a valid result, not an error: callers use the second return to
// decide whether to create the variable.
func (s *Scope) FindVar(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LocalNames returns the names defined directly in this scope.
func (s *Scope) LocalNames() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	return names
}
