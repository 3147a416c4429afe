package advisor

import (
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// StaticMethodExecutor advises methods that have no receiver. Advices see
// the owning type's Class in place of a target.
type StaticMethodExecutor struct {
	executor
}

// NewStaticMethodExecutor creates an executor over advices.
func NewStaticMethodExecutor(advices *Map, opts ...Option) *StaticMethodExecutor {
	return &StaticMethodExecutor{executor: newExecutor(advices, "static_method_executor", opts)}
}

// Advise runs the advices around call.
func (e *StaticMethodExecutor) Advise(class advice.Class, method advice.Method, args advice.Args, call weave.Callable) (any, error) {
	return e.advise(call, phases{
		before: func() {
			e.runPhase(PhaseBefore, method.Name, class.Name, func(pluginType string, a any) error {
				if h, ok := a.(advice.StaticMethodBefore); ok {
					return h.BeforeStaticMethod(class, method, args, pluginType)
				}
				return nil
			})
		},
		throwing: func(err error) {
			e.runPhase(PhaseThrowing, method.Name, class.Name, func(pluginType string, a any) error {
				if h, ok := a.(advice.StaticMethodThrowing); ok {
					return h.OnStaticThrowing(class, method, args, err, pluginType)
				}
				return nil
			})
		},
		after: func(result any) {
			e.runPhase(PhaseAfter, method.Name, class.Name, func(pluginType string, a any) error {
				if h, ok := a.(advice.StaticMethodAfter); ok {
					return h.AfterStaticMethod(class, method, args, result, pluginType)
				}
				return nil
			})
		},
	})
}

// Kind implements Executor.
func (e *StaticMethodExecutor) Kind() weave.Kind {
	return weave.KindStaticMethod
}

// Intercept implements Executor.
func (e *StaticMethodExecutor) Intercept(b *weave.Builder, p weave.Pointcut) *weave.Builder {
	return b.Matching(weave.And(weave.OfKind(weave.KindStaticMethod), p)).Intercept(func(inv weave.Invocation, call weave.Callable) (any, error) {
		return e.Advise(inv.Class, inv.Method, inv.Args, call)
	})
}

var _ Executor = (*StaticMethodExecutor)(nil)
