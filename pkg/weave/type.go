package weave

import (
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	adviceerrors "github.com/alexisbeaulieu97/advisor/pkg/errors"
)

// Type is a woven type. It is immutable and safe for concurrent use.
type Type struct {
	class   string
	methods map[methodKey]method
}

// Class returns the woven type's name.
func (t *Type) Class() string {
	return t.class
}

// Intercepted reports whether a handler is bound to the described method.
func (t *Type) Intercepted(kind Kind, name string) bool {
	m, ok := t.methods[methodKey{kind: kind, name: name}]
	return ok && m.handler != nil
}

// Invoke calls an instance method on target.
func (t *Type) Invoke(target any, name string, args ...any) (any, error) {
	m, ok := t.methods[methodKey{kind: KindInstanceMethod, name: name}]
	if !ok {
		return nil, adviceerrors.NewInvocationError(t.class, name, ErrMethodNotFound)
	}
	if target == nil {
		return nil, adviceerrors.NewInvocationError(t.class, name, ErrNilTarget)
	}
	return t.dispatch(m, target, advice.Args(args))
}

// InvokeStatic calls a static method.
func (t *Type) InvokeStatic(name string, args ...any) (any, error) {
	m, ok := t.methods[methodKey{kind: KindStaticMethod, name: name}]
	if !ok {
		return nil, adviceerrors.NewInvocationError(t.class, name, ErrMethodNotFound)
	}
	return t.dispatch(m, nil, advice.Args(args))
}

// New calls the constructor.
func (t *Type) New(args ...any) (any, error) {
	m, ok := t.methods[methodKey{kind: KindConstructor, name: ConstructorName}]
	if !ok {
		return nil, adviceerrors.NewInvocationError(t.class, ConstructorName, ErrMethodNotFound)
	}
	return t.dispatch(m, nil, advice.Args(args))
}

func (t *Type) dispatch(m method, target any, args advice.Args) (any, error) {
	invoked := false
	call := func() (any, error) {
		if invoked {
			return nil, ErrCallableReused
		}
		invoked = true
		return m.body(target, args)
	}
	if m.handler == nil {
		return call()
	}

	inv := Invocation{
		Target: target,
		Class:  advice.Class{Name: t.class},
		Method: advice.Method{Name: m.desc.Name},
		Args:   args,
	}
	return m.handler(inv, call)
}
