package advisor

import (
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// ConstructorExecutor advises constructors. The after phase hands the
// constructed value to advice.ConstructorAdvice; a failing constructor
// reaches advice.ConstructorThrowing first.
type ConstructorExecutor struct {
	executor
}

// NewConstructorExecutor creates an executor over advices.
func NewConstructorExecutor(advices *Map, opts ...Option) *ConstructorExecutor {
	return &ConstructorExecutor{executor: newExecutor(advices, "constructor_executor", opts)}
}

// Advise runs the advices around call, which must construct a value of class.
func (e *ConstructorExecutor) Advise(class advice.Class, args advice.Args, call weave.Callable) (any, error) {
	method := weave.ConstructorName
	return e.advise(call, phases{
		before: func() {
			e.runPhase(PhaseBefore, method, class.Name, func(pluginType string, a any) error {
				if h, ok := a.(advice.ConstructorBefore); ok {
					return h.BeforeConstructor(class, args, pluginType)
				}
				return nil
			})
		},
		throwing: func(err error) {
			e.runPhase(PhaseThrowing, method, class.Name, func(pluginType string, a any) error {
				if h, ok := a.(advice.ConstructorThrowing); ok {
					return h.OnConstructorThrowing(class, args, err, pluginType)
				}
				return nil
			})
		},
		after: func(result any) {
			e.runPhase(PhaseAfter, method, class.Name, func(pluginType string, a any) error {
				if h, ok := a.(advice.ConstructorAdvice); ok {
					return h.OnConstructor(result, args, pluginType)
				}
				return nil
			})
		},
	})
}

// Kind implements Executor.
func (e *ConstructorExecutor) Kind() weave.Kind {
	return weave.KindConstructor
}

// Intercept implements Executor.
func (e *ConstructorExecutor) Intercept(b *weave.Builder, p weave.Pointcut) *weave.Builder {
	return b.Matching(weave.And(weave.OfKind(weave.KindConstructor), p)).Intercept(func(inv weave.Invocation, call weave.Callable) (any, error) {
		return e.Advise(inv.Class, inv.Args, call)
	})
}

// NewExecutor returns the executor for kind.
func NewExecutor(kind weave.Kind, advices *Map, opts ...Option) Executor {
	switch kind {
	case weave.KindStaticMethod:
		return NewStaticMethodExecutor(advices, opts...)
	case weave.KindConstructor:
		return NewConstructorExecutor(advices, opts...)
	default:
		return NewInstanceMethodExecutor(advices, opts...)
	}
}

var _ Executor = (*ConstructorExecutor)(nil)
