package advisor

import (
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// InstanceMethodExecutor advises methods called on a live receiver.
type InstanceMethodExecutor struct {
	executor
}

// NewInstanceMethodExecutor creates an executor over advices.
func NewInstanceMethodExecutor(advices *Map, opts ...Option) *InstanceMethodExecutor {
	return &InstanceMethodExecutor{executor: newExecutor(advices, "instance_method_executor", opts)}
}

// Advise runs the advices around call, which must invoke method on target
// with args.
func (e *InstanceMethodExecutor) Advise(target any, method advice.Method, args advice.Args, call weave.Callable) (any, error) {
	class := advice.ClassOf(target).Name
	return e.advise(call, phases{
		before: func() {
			e.runPhase(PhaseBefore, method.Name, class, func(pluginType string, a any) error {
				if h, ok := a.(advice.InstanceMethodBefore); ok {
					return h.BeforeMethod(target, method, args, pluginType)
				}
				return nil
			})
		},
		throwing: func(err error) {
			e.runPhase(PhaseThrowing, method.Name, class, func(pluginType string, a any) error {
				if h, ok := a.(advice.InstanceMethodThrowing); ok {
					return h.OnThrowing(target, method, args, err, pluginType)
				}
				return nil
			})
		},
		after: func(result any) {
			e.runPhase(PhaseAfter, method.Name, class, func(pluginType string, a any) error {
				if h, ok := a.(advice.InstanceMethodAfter); ok {
					return h.AfterMethod(target, method, args, result, pluginType)
				}
				return nil
			})
		},
	})
}

// Kind implements Executor.
func (e *InstanceMethodExecutor) Kind() weave.Kind {
	return weave.KindInstanceMethod
}

// Intercept implements Executor.
func (e *InstanceMethodExecutor) Intercept(b *weave.Builder, p weave.Pointcut) *weave.Builder {
	return b.Matching(weave.And(weave.OfKind(weave.KindInstanceMethod), p)).Intercept(func(inv weave.Invocation, call weave.Callable) (any, error) {
		return e.Advise(inv.Target, inv.Method, inv.Args, call)
	})
}

var _ Executor = (*InstanceMethodExecutor)(nil)
