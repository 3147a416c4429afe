package config

import (
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// Advisor converts the entry into a registry advisor.
func (a AdvisorConfig) Advisor() (registry.Advisor, error) {
	kind, err := weave.ParseKind(a.Kind)
	if err != nil {
		return registry.Advisor{}, err
	}
	return registry.NewAdvisor(a.Class, kind, a.Methods...)
}

// BindAdvisors attaches every configured advisor to its registered plugin.
func (c *Config) BindAdvisors(r *registry.Registry) error {
	for i, p := range c.Plugins {
		advisors := make([]registry.Advisor, 0, len(p.Advisors))
		for j, ac := range p.Advisors {
			a, err := ac.Advisor()
			if err != nil {
				return fmt.Errorf("plugins[%d].advisors[%d]: %w", i, j, err)
			}
			advisors = append(advisors, a)
		}
		if err := r.Bind(p.Name, advisors...); err != nil {
			return fmt.Errorf("plugins[%d]: %w", i, err)
		}
	}
	return nil
}

// ApplyEnabled flips each configured plugin's runtime switch. Plugins whose
// advice cannot be toggled are only an error when the configuration asks to
// disable them.
func (c *Config) ApplyEnabled(r *registry.Registry) error {
	var errs []error
	for _, p := range c.Plugins {
		err := r.SetEnabled(p.Name, p.Enabled)
		var notToggleable registry.ErrNotToggleable
		if errors.As(err, &notToggleable) && p.Enabled {
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
