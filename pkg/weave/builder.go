// Package weave binds intercepted call sites to handlers. It is a runtime
// proxy weaver: a Builder collects the bodies of a type's methods, handlers
// are bound to the methods a Pointcut selects, and Build produces a Type
// whose Invoke, InvokeStatic and New route every call through the bound
// handler with a fresh Invocation and a single-use Callable.
package weave

import (
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
)

var (
	// ErrMethodNotFound is reported when a call names a method the type does not define.
	ErrMethodNotFound = errors.New("method not defined")
	// ErrCallableReused is returned when a Callable is invoked more than once.
	ErrCallableReused = errors.New("original call already invoked")
	// ErrNilTarget is reported when an instance method is invoked without a receiver.
	ErrNilTarget = errors.New("instance method invoked on nil target")
)

// Callable invokes the original, un-instrumented method body. A Callable
// produced by this package may be called once.
type Callable func() (any, error)

// Invocation is the identity of one intercepted call.
type Invocation struct {
	// Target is the receiver of an instance method and nil otherwise.
	Target any
	Class  advice.Class
	Method advice.Method
	Args   advice.Args
}

// Handler receives every call routed to a bound method. It must invoke call
// at most once and return its result to preserve the method's semantics.
type Handler func(inv Invocation, call Callable) (any, error)

// Body is the unadvised code of a method. target is nil for static
// methods and constructors.
type Body func(target any, args advice.Args) (any, error)

type methodKey struct {
	kind Kind
	name string
}

type method struct {
	desc    MethodDescription
	body    Body
	handler Handler
}

// Builder collects the methods of one type and the handlers bound to them.
// A Builder is not safe for concurrent use; the Type it builds is.
type Builder struct {
	class   string
	methods []*method
	index   map[methodKey]*method
	err     error
}

// NewBuilder starts a builder for the named type.
func NewBuilder(class string) *Builder {
	return &Builder{
		class: class,
		index: make(map[methodKey]*method),
	}
}

// Class returns the name of the type being prepared.
func (b *Builder) Class() string {
	return b.class
}

// Method defines an instance method.
func (b *Builder) Method(name string, body Body) *Builder {
	return b.define(KindInstanceMethod, name, body)
}

// Static defines a static method.
func (b *Builder) Static(name string, body func(args advice.Args) (any, error)) *Builder {
	if body == nil {
		return b.define(KindStaticMethod, name, nil)
	}
	return b.define(KindStaticMethod, name, func(_ any, args advice.Args) (any, error) {
		return body(args)
	})
}

// Constructor defines the constructor of the type.
func (b *Builder) Constructor(body func(args advice.Args) (any, error)) *Builder {
	if body == nil {
		return b.define(KindConstructor, ConstructorName, nil)
	}
	return b.define(KindConstructor, ConstructorName, func(_ any, args advice.Args) (any, error) {
		return body(args)
	})
}

func (b *Builder) define(kind Kind, name string, body Body) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = fmt.Errorf("%s: %s method name is required", b.class, kind)
		return b
	}
	if body == nil {
		b.err = fmt.Errorf("%s.%s: method body is nil", b.class, name)
		return b
	}
	key := methodKey{kind: kind, name: name}
	if _, exists := b.index[key]; exists {
		b.err = fmt.Errorf("%s.%s: %s method already defined", b.class, name, kind)
		return b
	}

	m := &method{
		desc: MethodDescription{Owner: b.class, Name: name, Kind: kind},
		body: body,
	}
	b.methods = append(b.methods, m)
	b.index[key] = m
	return b
}

// Methods lists the defined methods in definition order.
func (b *Builder) Methods() []MethodDescription {
	out := make([]MethodDescription, len(b.methods))
	for i, m := range b.methods {
		out[i] = m.desc
	}
	return out
}

// Err reports the first definition or binding error recorded so far.
func (b *Builder) Err() error {
	return b.err
}

// Interception is a pending binding of the methods selected by a pointcut.
type Interception struct {
	builder  *Builder
	pointcut Pointcut
}

// Matching selects the methods a subsequent Intercept call binds.
func (b *Builder) Matching(p Pointcut) *Interception {
	return &Interception{builder: b, pointcut: p}
}

// Intercept binds h to every selected method and returns the builder. When a
// method already has a handler, h wraps it: h runs first and its Callable
// enters the previously bound handler.
func (i *Interception) Intercept(h Handler) *Builder {
	b := i.builder
	if b.err != nil {
		return b
	}
	if i.pointcut == nil {
		b.err = fmt.Errorf("%s: pointcut is nil", b.class)
		return b
	}
	if h == nil {
		b.err = fmt.Errorf("%s: handler is nil", b.class)
		return b
	}

	for _, m := range b.methods {
		if !i.pointcut.Matches(m.desc) {
			continue
		}
		inner := m.handler
		if inner == nil {
			m.handler = h
			continue
		}
		outer := h
		m.handler = func(inv Invocation, call Callable) (any, error) {
			return outer(inv, func() (any, error) {
				return inner(inv, call)
			})
		}
	}
	return b
}

// Build freezes the builder into a Type. Later changes to the builder do not
// affect the returned Type.
func (b *Builder) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	t := &Type{
		class:   b.class,
		methods: make(map[methodKey]method, len(b.methods)),
	}
	for _, m := range b.methods {
		t.methods[methodKey{kind: m.desc.Kind, name: m.desc.Name}] = *m
	}
	return t, nil
}
