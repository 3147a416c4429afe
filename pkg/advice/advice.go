// Package advice defines the surface plugin code sees when it observes an
// intercepted call. Every hook is an optional single-method interface; an
// advice value implements whichever subset it needs and the engine discovers
// the capabilities by type assertion.
//
// Hooks return an error to report a failure. A returned error or a panic
// abandons the remaining advices of the same phase for that call; it is
// logged by the engine and never reaches the caller of the intercepted
// method.
package advice

import (
	"fmt"
	"reflect"
)

// Method is the identity of an intercepted method as exposed to advices.
// Only the name is visible so plugins stay decoupled from the weaving
// mechanism's own method representation.
type Method struct {
	Name string
}

// String returns the method name.
func (m Method) String() string {
	return m.Name
}

// Class identifies a type. Static-method and constructor advices receive a
// Class instead of an object handle.
type Class struct {
	Name string
}

// String returns the class name.
func (c Class) String() string {
	return c.Name
}

// ClassOf returns the Class describing the dynamic type of v.
func ClassOf(v any) Class {
	if v == nil {
		return Class{Name: "<nil>"}
	}
	return Class{Name: reflect.TypeOf(v).String()}
}

// Args is the argument buffer of one intercepted call. The same slice is
// handed to every phase, every advice and the original body, so writing an
// element in a before-hook rewrites the argument the body observes.
type Args []any

// At returns the argument at index i, or nil when i is out of range.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Set replaces the argument at index i in place.
func (a Args) Set(i int, v any) error {
	if i < 0 || i >= len(a) {
		return fmt.Errorf("argument index %d out of range [0,%d)", i, len(a))
	}
	a[i] = v
	return nil
}

// PluginEnabler is implemented by advices whose participation can be switched
// at runtime. A disabled advice receives no hook calls.
type PluginEnabler interface {
	IsPluginEnabled() bool
}
