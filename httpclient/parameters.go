package httpclient

import (
	"slices"
)

// Parameters is an ordered parameter list. Insertion order is kept so
// repeated query parameters reach the wire in the order they were added.
type Parameters struct {
	items []Parameter
}

// Add appends p.
func (ps *Parameters) Add(p Parameter) {
	ps.items = append(ps.items, p)
}

// AddOrUpdate removes every parameter matching p's name and type, then
// appends p.
func (ps *Parameters) AddOrUpdate(p Parameter) {
	ps.Remove(p.Name, p.Type)
	ps.items = append(ps.items, p)
}

// Remove deletes every parameter with the given name and type and returns
// how many were removed.
func (ps *Parameters) Remove(name string, typ ParameterType) int {
	before := len(ps.items)
	ps.items = slices.DeleteFunc(ps.items, func(p Parameter) bool { return p.Matches(name, typ) })
	return before - len(ps.items)
}

// Find returns the first parameter with the given name and type.
func (ps *Parameters) Find(name string, typ ParameterType) (Parameter, bool) {
	for _, p := range ps.items {
		if p.Matches(name, typ) {
			return p, true
		}
	}
	return Parameter{}, false
}

// Exists reports whether a parameter with the given name and type exists.
func (ps *Parameters) Exists(name string, typ ParameterType) bool {
	_, ok := ps.Find(name, typ)
	return ok
}

// OfType returns the parameters whose type is one of types, in order.
func (ps *Parameters) OfType(types ...ParameterType) []Parameter {
	var out []Parameter
	for _, p := range ps.items {
		if slices.Contains(types, p.Type) {
			out = append(out, p)
		}
	}
	return out
}

// All returns a copy of every parameter in order.
func (ps *Parameters) All() []Parameter {
	return slices.Clone(ps.items)
}

// Len returns the number of parameters.
func (ps *Parameters) Len() int {
	return len(ps.items)
}

// mergeDefaults returns own followed by every default that own does not
// already define by name and type. Body defaults only apply when own has
// no body. With allowMultiple set, query-like defaults are always kept.
func mergeDefaults(own, defaults []Parameter, allowMultiple bool) []Parameter {
	merged := slices.Clone(own)
	hasBody := slices.ContainsFunc(own, func(p Parameter) bool { return p.Type == ParameterBody })
	for _, d := range defaults {
		switch {
		case d.Type == ParameterBody:
			if hasBody {
				continue
			}
			hasBody = true
		case allowMultiple && d.Type.queryLike():
		case slices.ContainsFunc(own, func(p Parameter) bool { return p.Matches(d.Name, d.Type) }):
			continue
		}
		merged = append(merged, d)
	}
	return merged
}
