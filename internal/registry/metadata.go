package registry

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	semverPattern     = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	apiVersionPattern = regexp.MustCompile(`^\d+\.x$`)
	namePattern       = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// PluginMetadata describes a plugin's identity and what it depends on. The
// name doubles as the plugin type advices are keyed by.
type PluginMetadata struct {
	Name         string
	Version      string
	APIVersion   string
	Dependencies []Dependency
	Description  string
}

// Dependency captures a dependency on another plugin.
type Dependency struct {
	Name              string
	VersionConstraint *VersionConstraint
}

// ValidPluginName reports whether name is usable as a plugin type.
func ValidPluginName(name string) bool {
	return namePattern.MatchString(name)
}

// Validate ensures metadata is well-formed.
func (m PluginMetadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("plugin metadata requires a non-empty Name")
	}
	if !ValidPluginName(m.Name) {
		return fmt.Errorf("plugin name '%s' must be lower case letters, digits, '-' or '_'", m.Name)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("plugin '%s' has invalid Version '%s' (expected format: X.Y.Z)", m.Name, m.Version)
	}
	if !apiVersionPattern.MatchString(m.APIVersion) {
		return fmt.Errorf("plugin '%s' has invalid APIVersion '%s' (expected format: N.x)", m.Name, m.APIVersion)
	}

	seen := make(map[string]struct{}, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		if strings.TrimSpace(dep.Name) == "" {
			return fmt.Errorf("plugin '%s' declares dependency with empty name", m.Name)
		}
		if dep.Name == m.Name {
			return fmt.Errorf("plugin '%s' cannot depend on itself", m.Name)
		}
		if _, dup := seen[dep.Name]; dup {
			return fmt.Errorf("plugin '%s' lists dependency '%s' more than once", m.Name, dep.Name)
		}
		seen[dep.Name] = struct{}{}
	}
	return nil
}

// Declares reports whether the metadata lists name as a dependency.
func (m PluginMetadata) Declares(name string) bool {
	for _, dep := range m.Dependencies {
		if dep.Name == name {
			return true
		}
	}
	return false
}
