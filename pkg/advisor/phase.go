package advisor

import (
	"errors"
	"fmt"

	adviceerrors "github.com/alexisbeaulieu97/advisor/pkg/errors"
)

// Phase is one traversal of the advice map during a call.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseThrowing
	PhaseAfter
)

func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "pre-method"
	case PhaseThrowing:
		return "error handler"
	case PhaseAfter:
		return "post-method"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// runPhase visits every enabled advice inside a single failure boundary. The
// first error or panic abandons the rest of the phase for this call and is
// logged; nothing escapes to the caller.
func (e *executor) runPhase(phase Phase, method, class string, visit func(pluginType string, a any) error) {
	var current string
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = adviceerrors.NewPanicError(r)
			}
		}()
		return e.advices.each(func(pluginType string, a any) error {
			current = pluginType
			if !IsPluginEnabled(a) {
				return nil
			}
			return visit(pluginType, a)
		})
	}()
	if err == nil {
		return
	}

	message := safeMessage(err)
	failure := adviceerrors.NewAdviceError(current, phase.String(), errors.New(message))
	e.log.WithFields(map[string]any{
		"method":      method,
		"class":       class,
		"phase":       phase.String(),
		"plugin_type": current,
	}).Error(failure, fmt.Sprintf("Failed to execute the %s of method `%s` in class `%s`, %s.", phase, method, class, message))
}

// safeMessage renders err without letting a panicking Error method escape.
func safeMessage(err error) (message string) {
	defer func() {
		if r := recover(); r != nil {
			message = fmt.Sprintf("%T (message unavailable: %v)", err, r)
		}
	}()
	return err.Error()
}
