package templates

import "sort"

// Binding is an immutable set of template variables for a single render.
// The zero value is an empty binding.
type Binding struct {
	vars map[string]any
}

// NewBinding creates a binding from a deep copy of vars.
func NewBinding(vars map[string]any) Binding {
	b := Binding{vars: make(map[string]any, len(vars))}
	for k, v := range vars {
		b.vars[k] = deepCopy(v)
	}
	return b
}

// With returns a new binding with key set to value.
// The receiver is left unchanged.
func (b Binding) With(key string, value any) Binding {
	next := Binding{vars: make(map[string]any, len(b.vars)+1)}
	for k, v := range b.vars {
		next.vars[k] = v
	}
	next.vars[key] = deepCopy(value)
	return next
}

// Get returns the value bound to key.
func (b Binding) Get(key string) (any, bool) {
	v, ok := b.vars[key]
	return v, ok
}

// Keys returns the bound variable names in sorted order.
func (b Binding) Keys() []string {
	keys := make([]string, 0, len(b.vars))
	for k := range b.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a deep copy of the bound variables.
func (b Binding) Map() map[string]any {
	result := make(map[string]any, len(b.vars))
	for k, v := range b.vars {
		result[k] = deepCopy(v)
	}
	return result
}
