package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/alexisbeaulieu97/advisor/internal/config"
	"github.com/alexisbeaulieu97/advisor/internal/demo/bank"
	"github.com/alexisbeaulieu97/advisor/internal/plugins/logging"
	"github.com/alexisbeaulieu97/advisor/internal/plugins/metrics"
	"github.com/alexisbeaulieu97/advisor/internal/plugins/tracing"
	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
)

const (
	tracerName            = "github.com/alexisbeaulieu97/advisor"
	defaultAuditThreshold = 500
)

type appOptions struct {
	verbose        bool
	strict         bool
	auditThreshold int
	logOutput      io.Writer
	traceOutput    io.Writer
}

// app bundles the services every command needs once a configuration has
// been loaded.
type app struct {
	config   *config.Config
	log      *logger.Logger
	registry *registry.Registry
	metrics  *prometheus.Registry
	tracer   *sdktrace.TracerProvider
	audit    *bank.AuditPlugin
}

func loadConfig(operation, path string) (*config.Config, error) {
	cfg, err := config.ParseConfig(path)
	if err != nil {
		return nil, newCommandError(operation, fmt.Sprintf("loading configuration %q", path), err, "Fix the reported field or pass another file with --config.")
	}
	return cfg, nil
}

// newApp registers the built-in plugins, binds the configured advisors and
// brings the registry to a validated, initialized state.
func newApp(operation string, cfg *config.Config, opts appOptions) (*app, error) {
	if opts.logOutput == nil {
		opts.logOutput = os.Stderr
	}
	if opts.auditThreshold <= 0 {
		opts.auditThreshold = defaultAuditThreshold
	}

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: cfg.Logging.HumanReadable, Writer: opts.logOutput})
	if err != nil {
		return nil, newCommandError(operation, "creating logger", err, "Use one of trace, debug, info, warn or error for logging.level.")
	}

	regCfg, err := registry.ConfigFrom(cfg.Registry.DependencyPolicy, cfg.Registry.AccessPolicy)
	if err != nil {
		return nil, newCommandError(operation, "reading registry policies", err, "Check registry.dependency_policy and registry.access_policy.")
	}
	if opts.strict {
		regCfg.DependencyPolicy = registry.PolicyStrict
	}
	reg := registry.New(regCfg, log)

	promRegistry := prometheus.NewRegistry()
	metricsPlugin, err := metrics.New(cfg.Metrics.Namespace, promRegistry)
	if err != nil {
		return nil, newCommandError(operation, "creating metric collectors", err, "Choose a different metrics.namespace.")
	}

	provider, err := tracing.NewProvider(cfg.Tracing.Exporter, cfg.Tracing.ServiceName, opts.traceOutput)
	if err != nil {
		return nil, newCommandError(operation, "creating tracer provider", err, "Set tracing.exporter to none or stdout.")
	}

	a := &app{
		config:   cfg,
		log:      log,
		registry: reg,
		metrics:  promRegistry,
		tracer:   provider,
		audit:    bank.NewAuditPlugin(opts.auditThreshold),
	}

	plugins := []registry.Plugin{
		logging.New(log),
		metricsPlugin,
		tracing.New(provider.Tracer(tracerName)),
		a.audit,
	}
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			return nil, newCommandError(operation, "registering plugins", err, "Report this as a bug: built-in plugins must register cleanly.")
		}
	}

	if err := cfg.BindAdvisors(reg); err != nil {
		return nil, newCommandError(operation, "binding advisors", err, "Every entry under plugins must name a registered plugin: "+strings.Join(reg.List(), ", ")+".")
	}
	if err := reg.Validate(); err != nil {
		return nil, newCommandError(operation, "validating plugin dependencies", err, "Resolve the dependency problem or use the graceful dependency policy.")
	}
	if err := reg.Initialize(); err != nil {
		return nil, newCommandError(operation, "initializing plugins", err, "Check the plugin named in the error.")
	}
	if err := cfg.ApplyEnabled(reg); err != nil {
		return nil, newCommandError(operation, "applying plugin switches", err, "Only plugins with a runtime switch can be disabled.")
	}

	return a, nil
}

// Close flushes pending spans.
func (a *app) Close(ctx context.Context) error {
	return tracing.Shutdown(ctx, a.tracer)
}
