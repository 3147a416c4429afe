package registry

import (
	"fmt"
	"os"
	"strings"
)

// DependencyPolicy controls how validation failures are handled.
type DependencyPolicy string

const (
	// PolicyStrict fails validation on the first problem.
	PolicyStrict DependencyPolicy = "strict"
	// PolicyGraceful disables the affected plugins and keeps going.
	PolicyGraceful DependencyPolicy = "graceful"
)

// AccessPolicy controls what happens when a plugin reaches for a dependency
// it never declared.
type AccessPolicy string

const (
	AccessStrict AccessPolicy = "strict"
	AccessWarn   AccessPolicy = "warn"
	AccessOff    AccessPolicy = "off"
)

// Config holds the registry policies.
type Config struct {
	DependencyPolicy DependencyPolicy
	AccessPolicy     AccessPolicy
}

// DefaultConfig is strict on CI and lenient elsewhere.
func DefaultConfig() *Config {
	if isCIEnvironment() {
		return &Config{DependencyPolicy: PolicyStrict, AccessPolicy: AccessStrict}
	}
	return &Config{DependencyPolicy: PolicyGraceful, AccessPolicy: AccessWarn}
}

// ConfigFrom builds a Config from policy names, falling back to
// DefaultConfig for empty values.
func ConfigFrom(dependencyPolicy, accessPolicy string) (*Config, error) {
	cfg := DefaultConfig()
	switch DependencyPolicy(dependencyPolicy) {
	case "":
	case PolicyStrict, PolicyGraceful:
		cfg.DependencyPolicy = DependencyPolicy(dependencyPolicy)
	default:
		return nil, fmt.Errorf("unknown dependency policy %q", dependencyPolicy)
	}
	switch AccessPolicy(accessPolicy) {
	case "":
	case AccessStrict, AccessWarn, AccessOff:
		cfg.AccessPolicy = AccessPolicy(accessPolicy)
	default:
		return nil, fmt.Errorf("unknown access policy %q", accessPolicy)
	}
	return cfg, nil
}

var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_HOME",
}

func isCIEnvironment() bool {
	for _, key := range ciEnvVars {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" && !strings.EqualFold(value, "false") && value != "0" {
			return true
		}
	}
	return false
}
