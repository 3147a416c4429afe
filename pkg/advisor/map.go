package advisor

import (
	"fmt"
	"strings"
)

// Binding is the ordered list of advices one plugin contributes to a call
// site, keyed by the plugin type assigned by the registry.
type Binding struct {
	PluginType string
	Advices    []any
}

// Map holds every binding for one intercepted site in insertion order. It is
// immutable once constructed and safe for concurrent reads. A nil *Map is an
// empty map.
type Map struct {
	bindings []Binding
}

// NewMap builds a Map from bindings, preserving their order. The advice
// slices are copied so later changes by the caller are not observed.
func NewMap(bindings ...Binding) (*Map, error) {
	seen := make(map[string]struct{}, len(bindings))
	copied := make([]Binding, 0, len(bindings))
	for i, binding := range bindings {
		if strings.TrimSpace(binding.PluginType) == "" {
			return nil, fmt.Errorf("binding %d: plugin type is required", i)
		}
		if _, exists := seen[binding.PluginType]; exists {
			return nil, fmt.Errorf("plugin type %q bound more than once", binding.PluginType)
		}
		seen[binding.PluginType] = struct{}{}

		advices := make([]any, len(binding.Advices))
		for j, a := range binding.Advices {
			if a == nil {
				return nil, fmt.Errorf("plugin type %q: advice %d is nil", binding.PluginType, j)
			}
			advices[j] = a
		}
		copied = append(copied, Binding{PluginType: binding.PluginType, Advices: advices})
	}
	return &Map{bindings: copied}, nil
}

// MustNewMap is like NewMap but panics on invalid bindings.
func MustNewMap(bindings ...Binding) *Map {
	m, err := NewMap(bindings...)
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the number of plugin types bound.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.bindings)
}

// AdviceCount returns the number of advices across all plugin types.
func (m *Map) AdviceCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, b := range m.bindings {
		n += len(b.Advices)
	}
	return n
}

// PluginTypes returns the plugin types in insertion order.
func (m *Map) PluginTypes() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.bindings))
	for i, b := range m.bindings {
		out[i] = b.PluginType
	}
	return out
}

// Advices returns a copy of the advices bound for pluginType.
func (m *Map) Advices(pluginType string) []any {
	if m == nil {
		return nil
	}
	for _, b := range m.bindings {
		if b.PluginType == pluginType {
			return append([]any(nil), b.Advices...)
		}
	}
	return nil
}

// each visits plugin types in insertion order and their advices in list
// order, stopping at the first error.
func (m *Map) each(visit func(pluginType string, a any) error) error {
	if m == nil {
		return nil
	}
	for _, b := range m.bindings {
		for _, a := range b.Advices {
			if err := visit(b.PluginType, a); err != nil {
				return err
			}
		}
	}
	return nil
}
