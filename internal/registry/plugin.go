package registry

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// Plugin contributes one advice value to every call site its advisors select.
type Plugin interface {
	// PluginMetadata returns the plugin's identity and dependencies.
	PluginMetadata() PluginMetadata

	// Advice returns the advice value handed to the executors. It implements
	// any subset of the hook interfaces in package advice and must be safe
	// for concurrent use.
	Advice() any
}

// AdvisorProvider is implemented by plugins that declare their own pointcuts
// in code. Configuration can add more through Registry.Bind.
type AdvisorProvider interface {
	Advisors() []Advisor
}

// PluginInitializer lets a plugin reach the registry during startup, after
// every plugin it depends on has been initialized.
type PluginInitializer interface {
	Init(registry *Registry) error
}

// Advisor selects the methods of matching classes a plugin advises.
type Advisor struct {
	// Class is a doublestar glob matched against the woven type's name.
	Class    string
	Pointcut weave.Pointcut
}

// NewAdvisor builds an Advisor for methods of kind whose names match any of
// methods. No method patterns means every method of that kind.
func NewAdvisor(class string, kind weave.Kind, methods ...string) (Advisor, error) {
	if !doublestar.ValidatePattern(class) {
		return Advisor{}, fmt.Errorf("invalid class pattern %q", class)
	}
	names := weave.Any()
	if len(methods) > 0 {
		globs := make([]weave.Pointcut, 0, len(methods))
		for _, pattern := range methods {
			p, err := weave.NameGlob(pattern)
			if err != nil {
				return Advisor{}, err
			}
			globs = append(globs, p)
		}
		names = weave.Or(globs...)
	}
	return Advisor{Class: class, Pointcut: weave.And(weave.OfKind(kind), names)}, nil
}

// Matches reports whether the advisor selects desc.
func (a Advisor) Matches(desc weave.MethodDescription) bool {
	if a.Pointcut == nil {
		return false
	}
	ok, err := doublestar.Match(a.Class, desc.Owner)
	return err == nil && ok && a.Pointcut.Matches(desc)
}
