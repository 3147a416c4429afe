// Package errors defines the typed errors shared across advisor packages.
// Every type supports errors.Is and errors.As through Unwrap.
package errors

import (
	"fmt"
	"runtime/debug"
)

// ParseError reports a configuration document that could not be read or
// decoded. Line is 0 when the decoder did not report one.
type ParseError struct {
	Path string
	Line int
	Err  error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	return &ParseError{Path: path, Line: line, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	location := e.Path
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return fmt.Sprintf("cannot parse %s: %v", location, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError names the configuration field that failed a rule.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Field == "":
		return "invalid configuration: " + e.Message
	default:
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PluginError reports a plugin that could not be registered or
// initialized. Plugin is empty when the plugin could not be named.
type PluginError struct {
	Plugin string
	Err    error
}

// NewPluginError constructs a PluginError.
func NewPluginError(plugin string, err error) error {
	return &PluginError{Plugin: plugin, Err: err}
}

func (e *PluginError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin == "" {
		return fmt.Sprintf("plugin: %v", e.Err)
	}
	return fmt.Sprintf("plugin %q: %v", e.Plugin, e.Err)
}

func (e *PluginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AdviceError records a failure raised by advice code during one phase of an
// intercepted call. The engine only logs it.
type AdviceError struct {
	PluginType string
	Phase      string
	Err        error
}

// NewAdviceError constructs an AdviceError.
func NewAdviceError(pluginType, phase string, err error) error {
	return &AdviceError{PluginType: pluginType, Phase: phase, Err: err}
}

func (e *AdviceError) Error() string {
	if e == nil {
		return ""
	}
	if e.PluginType != "" {
		return fmt.Sprintf("advice error [%s] in %s: %v", e.PluginType, e.Phase, e.Err)
	}
	return fmt.Sprintf("advice error in %s: %v", e.Phase, e.Err)
}

// Unwrap exposes the underlying error.
func (e *AdviceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PanicError carries a value recovered from a panic together with the stack
// captured at recovery time.
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError constructs a PanicError for a recovered value. Call it from
// the deferred function that recovered so the stack points at the panic site.
func NewPanicError(value any) *PanicError {
	return &PanicError{Value: value, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the recovered value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if e == nil {
		return nil
	}
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// InvocationError reports a failure to route a call through a woven class,
// such as an unknown method or arguments that do not fit its signature.
type InvocationError struct {
	Class  string
	Method string
	Err    error
}

// NewInvocationError constructs an InvocationError.
func NewInvocationError(class, method string, err error) error {
	return &InvocationError{Class: class, Method: method, Err: err}
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Method != "" {
		return fmt.Sprintf("invocation error on %s.%s: %v", e.Class, e.Method, e.Err)
	}
	return fmt.Sprintf("invocation error on %s: %v", e.Class, e.Err)
}

// Unwrap exposes the root error.
func (e *InvocationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
