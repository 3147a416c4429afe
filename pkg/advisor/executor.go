// Package advisor runs plugin advices around intercepted calls.
//
// An executor owns an immutable Map of advices. For every call it runs the
// before phase, invokes the original body exactly once, runs the error phase
// when the body failed and finally runs the after phase on every exit path.
// Advice failures are isolated per phase and only logged; the caller always
// observes the body's own result and error.
//
// Executors hold no mutable state and may be shared by any number of
// goroutines. Everything runs inline on the calling goroutine.
package advisor

import (
	"os"

	adviceerrors "github.com/alexisbeaulieu97/advisor/pkg/errors"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// Executor is the contract a weaver binds call sites to.
type Executor interface {
	// Kind reports which methods the executor accepts.
	Kind() weave.Kind
	// Intercept routes every method of b matching p and Kind into the executor.
	Intercept(b *weave.Builder, p weave.Pointcut) *weave.Builder
}

// Option configures an executor.
type Option func(*options)

type options struct {
	log *logger.Logger
}

// WithLogger sets the logger used for isolated advice failures.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

type executor struct {
	advices *Map
	log     *logger.Logger
}

func newExecutor(advices *Map, component string, opts []Option) executor {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = defaultLogger()
	}
	return executor{
		advices: advices,
		log:     o.log.WithField("component", component),
	}
}

func defaultLogger() *logger.Logger {
	l, err := logger.New(logger.Options{Level: "error", Writer: os.Stderr})
	if err != nil {
		return logger.Nop()
	}
	return l
}

// Advices returns the executor's advice map.
func (e *executor) Advices() *Map {
	return e.advices
}

type phases struct {
	before   func()
	throwing func(err error)
	after    func(result any)
}

// advise drives BEFORE -> INVOKE -> (ERROR ->) AFTER for one call. The body's
// result and error are returned untouched; a panicking body is re-panicked
// with its original value once the after phase has run.
func (e *executor) advise(call weave.Callable, p phases) (result any, err error) {
	p.before()

	returned := false
	defer func() {
		if returned {
			if err != nil {
				p.after(nil)
			} else {
				p.after(result)
			}
			return
		}
		// The body panicked, or called runtime.Goexit when r is nil.
		r := recover()
		if r != nil {
			p.throwing(adviceerrors.NewPanicError(r))
		}
		p.after(nil)
		if r != nil {
			panic(r)
		}
	}()

	result, err = call()
	returned = true
	if err != nil {
		p.throwing(err)
	}
	return result, err
}
