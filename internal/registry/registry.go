// Package registry assembles advice maps from registered plugins and binds
// them to woven types.
package registry

import (
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/advisor/pkg/advisor"
	adviceerrors "github.com/alexisbeaulieu97/advisor/pkg/errors"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

type entry struct {
	plugin   Plugin
	meta     PluginMetadata
	advice   any
	advisors []Advisor
}

// Registry holds plugins in registration order. That order is the plugin
// type order of every advice map it assembles.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	entries  map[string]*entry
	graph    *dependencyGraph
	disabled map[string]error
	base     *logger.Logger
	logger   *logger.Logger
	config   *Config
}

// New returns an empty registry.
func New(cfg *Config, log *logger.Logger) *Registry {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		entries:  make(map[string]*entry),
		graph:    newDependencyGraph(),
		disabled: make(map[string]error),
		base:     log,
		logger:   log.WithField("component", "registry"),
		config:   cfg,
	}
}

// Register adds a plugin. Advisors declared by an AdvisorProvider are bound
// immediately.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return adviceerrors.NewPluginError("", fmt.Errorf("plugin is nil"))
	}
	meta := p.PluginMetadata()
	if meta.APIVersion == "" {
		meta.APIVersion = "1.x"
	}
	if err := meta.Validate(); err != nil {
		return adviceerrors.NewPluginError(meta.Name, err)
	}
	a := p.Advice()
	if a == nil {
		return adviceerrors.NewPluginError(meta.Name, fmt.Errorf("advice is nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[meta.Name]; exists {
		return adviceerrors.NewPluginError(meta.Name, fmt.Errorf("plugin '%s' already registered", meta.Name))
	}

	e := &entry{plugin: p, meta: meta, advice: a}
	if provider, ok := p.(AdvisorProvider); ok {
		e.advisors = append(e.advisors, provider.Advisors()...)
	}
	r.entries[meta.Name] = e
	r.order = append(r.order, meta.Name)
	r.graph.addNode(meta.Name)
	for _, dep := range meta.Dependencies {
		r.graph.addEdge(meta.Name, dep.Name)
	}
	return nil
}

// Bind adds advisors to a registered plugin.
func (r *Registry) Bind(name string, advisors ...Advisor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return ErrPluginNotFound{Name: name}
	}
	e.advisors = append(e.advisors, advisors...)
	return nil
}

// Validate checks dependencies, versions and cycles. Under PolicyStrict the
// first problem is returned; under PolicyGraceful the affected plugins are
// disabled and a warning is logged for each problem.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disabled = make(map[string]error)
	var issues []error
	conflicts := make(map[string]*ErrVersionConflict)

	for _, name := range r.order {
		meta := r.entries[name].meta
		for _, dep := range meta.Dependencies {
			target, ok := r.entries[dep.Name]
			if !ok {
				err := ErrMissingDependency{Plugin: name, Dependency: dep.Name}
				if r.config.DependencyPolicy == PolicyStrict {
					return err
				}
				r.disabled[name] = err
				issues = append(issues, err)
				continue
			}
			if !dep.VersionConstraint.Satisfies(target.meta.Version) {
				vc := conflicts[dep.Name]
				if vc == nil {
					vc = &ErrVersionConflict{Plugin: dep.Name, ActualVersion: target.meta.Version, RequiredBy: make(map[string]string)}
					conflicts[dep.Name] = vc
				}
				vc.RequiredBy[name] = dep.VersionConstraint.String()
				if r.config.DependencyPolicy == PolicyStrict {
					return *vc
				}
			}
		}
	}
	for _, name := range r.order {
		vc, ok := conflicts[name]
		if !ok {
			continue
		}
		for dependent := range vc.RequiredBy {
			r.disabled[dependent] = *vc
		}
		issues = append(issues, *vc)
	}

	// Each pass disables one cycle, so disjoint cycles are all reported.
	for {
		cycle := r.graph.cycle(r.isDisabled)
		if cycle == nil {
			break
		}
		err := ErrCircularDependency{Cycle: cycle}
		if r.config.DependencyPolicy == PolicyStrict {
			return err
		}
		for _, name := range cycle {
			r.disabled[name] = err
		}
		issues = append(issues, err)
	}

	for _, issue := range issues {
		r.logger.Warn(issue.Error())
	}
	r.propagateDisabled()
	return nil
}

// isDisabled must be called with r.mu held.
func (r *Registry) isDisabled(name string) bool {
	_, off := r.disabled[name]
	return off
}

// propagateDisabled disables every plugin depending on a disabled one.
func (r *Registry) propagateDisabled() {
	for changed := true; changed; {
		changed = false
		for _, name := range r.order {
			if _, off := r.disabled[name]; off {
				continue
			}
			for _, dep := range r.entries[name].meta.Dependencies {
				if cause, off := r.disabled[dep.Name]; off {
					r.disabled[name] = cause
					changed = true
					break
				}
			}
		}
	}
}

// Initialize calls PluginInitializer.Init on active plugins, dependencies
// first.
func (r *Registry) Initialize() error {
	r.mu.RLock()
	order, err := r.graph.sorted(r.isDisabled)
	if err != nil {
		r.mu.RUnlock()
		return err
	}
	var targets []*entry
	for _, name := range order {
		if e, ok := r.entries[name]; ok {
			targets = append(targets, e)
		}
	}
	r.mu.RUnlock()

	for _, e := range targets {
		if initializer, ok := e.plugin.(PluginInitializer); ok {
			if err := initializer.Init(r); err != nil {
				return adviceerrors.NewPluginError(e.meta.Name, fmt.Errorf("init: %w", err))
			}
		}
	}
	return nil
}

// Get returns an active plugin by name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, ErrPluginNotFound{Name: name}
	}
	if _, off := r.disabled[name]; off {
		return nil, ErrPluginNotFound{Name: name}
	}
	return e.plugin, nil
}

// GetForDependent returns plugin name on behalf of dependent, enforcing the
// access policy for undeclared dependencies.
func (r *Registry) GetForDependent(dependent, name string) (Plugin, error) {
	target, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	caller, ok := r.entries[dependent]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrPluginNotFound{Name: dependent}
	}

	if !caller.meta.Declares(name) {
		switch r.config.AccessPolicy {
		case AccessStrict:
			return nil, ErrUndeclaredDependency{Caller: dependent, Dependency: name}
		case AccessWarn:
			r.logger.Warn(fmt.Sprintf("plugin '%s' accessed undeclared dependency '%s'", dependent, name))
		}
	}
	return target, nil
}

// List returns active plugin names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if _, off := r.disabled[name]; !off {
			names = append(names, name)
		}
	}
	return names
}

// Info summarizes one plugin for display.
type Info struct {
	Metadata PluginMetadata
	Advisors int
	// Enabled is the advice's runtime switch.
	Enabled bool
	// Disabled is the validation problem that deactivated the plugin, if any.
	Disabled error
}

// Describe returns every registered plugin in registration order.
func (r *Registry) Describe() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		out = append(out, Info{
			Metadata: e.meta,
			Advisors: len(e.advisors),
			Enabled:  advisor.IsPluginEnabled(e.advice),
			Disabled: r.disabled[name],
		})
	}
	return out
}

type toggler interface {
	SetEnabled(enabled bool)
}

// SetEnabled flips the runtime switch of a plugin's advice. Advice maps that
// were already assembled observe the change on their next call.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return ErrPluginNotFound{Name: name}
	}

	t, ok := e.advice.(toggler)
	if !ok {
		return ErrNotToggleable{Name: name}
	}
	t.SetEnabled(enabled)
	r.logger.WithFields(map[string]any{"plugin": name, "enabled": enabled}).Info("plugin toggled")
	return nil
}

// AdviceMap assembles the advices of every active plugin with an advisor
// selecting desc, in registration order.
func (r *Registry) AdviceMap(desc weave.MethodDescription) (*advisor.Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bindings []advisor.Binding
	for _, name := range r.order {
		if _, off := r.disabled[name]; off {
			continue
		}
		e := r.entries[name]
		for _, a := range e.advisors {
			if a.Matches(desc) {
				bindings = append(bindings, advisor.Binding{PluginType: name, Advices: []any{e.advice}})
				break
			}
		}
	}
	return advisor.NewMap(bindings...)
}

// Transform binds an executor to every method of b that at least one plugin
// advises. Methods with an empty advice map stay unbound.
func (r *Registry) Transform(b *weave.Builder) (*weave.Builder, error) {
	if err := b.Err(); err != nil {
		return b, err
	}
	for _, desc := range b.Methods() {
		m, err := r.AdviceMap(desc)
		if err != nil {
			return b, fmt.Errorf("assemble advices for %s: %w", desc, err)
		}
		if m.Len() == 0 {
			continue
		}
		exec := advisor.NewExecutor(desc.Kind, m, advisor.WithLogger(r.base))
		exec.Intercept(b, weave.Named(desc.Name))
		r.logger.WithFields(map[string]any{
			"class":   desc.Owner,
			"method":  desc.Name,
			"kind":    desc.Kind.String(),
			"plugins": m.PluginTypes(),
		}).Debug("advices bound")
	}
	return b, b.Err()
}
