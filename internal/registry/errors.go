package registry

import (
	"fmt"
	"sort"
	"strings"
)

// ErrPluginNotFound is returned when the requested plugin is not registered
// or was disabled by validation.
type ErrPluginNotFound struct {
	Name string
}

func (e ErrPluginNotFound) Error() string {
	return fmt.Sprintf("plugin '%s' not found in registry\nHint: register the plugin before binding advisors to it", e.Name)
}

// ErrCircularDependency is returned when plugins depend on each other in a loop.
type ErrCircularDependency struct {
	Cycle []string
}

func (e ErrCircularDependency) Error() string {
	if len(e.Cycle) == 0 {
		return "circular dependency detected"
	}
	loop := append(append([]string{}, e.Cycle...), e.Cycle[0])
	return fmt.Sprintf("circular dependency detected: %s\nHint: remove one of the dependencies", strings.Join(loop, " -> "))
}

// ErrVersionConflict lists every dependent whose constraint a plugin fails.
type ErrVersionConflict struct {
	Plugin        string
	ActualVersion string
	RequiredBy    map[string]string
}

func (e ErrVersionConflict) Error() string {
	conflicts := make([]string, 0, len(e.RequiredBy))
	for dependent, constraint := range e.RequiredBy {
		conflicts = append(conflicts, fmt.Sprintf("%s requires %s", dependent, constraint))
	}
	sort.Strings(conflicts)
	return fmt.Sprintf("version conflict for plugin '%s' (actual %s):\n  %s", e.Plugin, e.ActualVersion, strings.Join(conflicts, "\n  "))
}

// ErrUndeclaredDependency is returned when a plugin accesses a plugin it did
// not list in its metadata.
type ErrUndeclaredDependency struct {
	Caller     string
	Dependency string
}

func (e ErrUndeclaredDependency) Error() string {
	return fmt.Sprintf("plugin '%s' attempted to access undeclared dependency '%s'\nHint: add '%s' to PluginMetadata.Dependencies", e.Caller, e.Dependency, e.Dependency)
}

// ErrMissingDependency is returned when a declared dependency is not registered.
type ErrMissingDependency struct {
	Plugin     string
	Dependency string
}

func (e ErrMissingDependency) Error() string {
	return fmt.Sprintf("plugin '%s' declares dependency '%s' which is not registered", e.Plugin, e.Dependency)
}

// ErrNotToggleable is returned by SetEnabled for advices without a runtime switch.
type ErrNotToggleable struct {
	Name string
}

func (e ErrNotToggleable) Error() string {
	return fmt.Sprintf("plugin '%s' advice cannot be enabled or disabled at runtime\nHint: embed advice.Toggle in the advice type", e.Name)
}
