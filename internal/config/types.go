package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the advisor configuration document.
type Config struct {
	Version  string         `yaml:"version" validate:"required,semver"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Registry RegistryConfig `yaml:"registry,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	Tracing  TracingConfig  `yaml:"tracing,omitempty"`
	Plugins  []PluginConfig `yaml:"plugins" validate:"omitempty,dive"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level         string `yaml:"level,omitempty" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	HumanReadable bool   `yaml:"human_readable,omitempty"`
}

// RegistryConfig selects the registry policies. Empty values fall back to the
// environment-aware defaults.
type RegistryConfig struct {
	DependencyPolicy string `yaml:"dependency_policy,omitempty" validate:"omitempty,oneof=strict graceful"`
	AccessPolicy     string `yaml:"access_policy,omitempty" validate:"omitempty,oneof=strict warn off"`
}

// MetricsConfig configures the Prometheus collectors and their endpoint.
type MetricsConfig struct {
	Namespace     string `yaml:"namespace,omitempty" validate:"omitempty,metric_name"`
	ListenAddress string `yaml:"listen_address,omitempty" validate:"omitempty,hostname_port"`
	Path          string `yaml:"path,omitempty" validate:"omitempty,startswith=/"`
}

// TracingConfig configures the span exporter.
type TracingConfig struct {
	Exporter    string `yaml:"exporter,omitempty" validate:"omitempty,oneof=none stdout"`
	ServiceName string `yaml:"service_name,omitempty"`
}

// PluginConfig switches a plugin on or off and binds it to call sites.
type PluginConfig struct {
	Name     string          `yaml:"name" validate:"required,plugin_name"`
	Enabled  bool            `yaml:"enabled"`
	Advisors []AdvisorConfig `yaml:"advisors,omitempty" validate:"omitempty,dive"`
}

// UnmarshalYAML defaults Enabled to true when the key is absent.
func (p *PluginConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawPlugin struct {
		Name     string          `yaml:"name"`
		Enabled  *bool           `yaml:"enabled"`
		Advisors []AdvisorConfig `yaml:"advisors"`
	}

	if err := knownKeys(value, "plugin", "name", "enabled", "advisors"); err != nil {
		return err
	}
	var raw rawPlugin
	if err := value.Decode(&raw); err != nil {
		return err
	}

	p.Name = raw.Name
	p.Enabled = raw.Enabled == nil || *raw.Enabled
	p.Advisors = raw.Advisors
	return nil
}

// AdvisorConfig selects methods by class glob, method globs and kind.
type AdvisorConfig struct {
	Class   string   `yaml:"class" validate:"required,glob"`
	Methods []string `yaml:"methods,omitempty" validate:"omitempty,dive,required,glob"`
	Kind    string   `yaml:"kind,omitempty" validate:"omitempty,pointcut_kind"`
}

// UnmarshalYAML rejects unknown keys.
func (a *AdvisorConfig) UnmarshalYAML(value *yaml.Node) error {
	if err := knownKeys(value, "advisor", "class", "methods", "kind"); err != nil {
		return err
	}
	type plain AdvisorConfig
	return value.Decode((*plain)(a))
}

// knownKeys applies KnownFields to a mapping decoded by a custom
// unmarshaler, which yaml.v3 does not do on its own.
func knownKeys(value *yaml.Node, what string, allowed ...string) error {
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(value.Content); i += 2 {
		key := value.Content[i]
		found := false
		for _, name := range allowed {
			if key.Value == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("line %d: field %s not found in %s", key.Line, key.Value, what)
		}
	}
	return nil
}

// Plugin returns the configuration for name.
func (c *Config) Plugin(name string) (PluginConfig, bool) {
	for _, p := range c.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return PluginConfig{}, false
}

// Defaults fills unset optional values.
func (c *Config) Defaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "advisor"
	}
	if c.Metrics.ListenAddress == "" {
		c.Metrics.ListenAddress = ":9464"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "none"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "advisor"
	}
}
