package plugins

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/alexisbeaulieu97/advisor/internal/plugins/logging"
	"github.com/alexisbeaulieu97/advisor/internal/plugins/metrics"
	"github.com/alexisbeaulieu97/advisor/internal/plugins/tracing"
	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
)

var errBoom = errors.New("boom")

type contractTarget struct{}

// builtinPlugins returns every built-in plugin for contract testing.
func builtinPlugins(t *testing.T) []registry.Plugin {
	t.Helper()
	metricsPlugin, err := metrics.New("contract", prometheus.NewRegistry())
	require.NoError(t, err)
	return []registry.Plugin{
		logging.New(logger.Nop()),
		metricsPlugin,
		tracing.New(noop.NewTracerProvider().Tracer("contract")),
	}
}

func TestMetadataContract(t *testing.T) {
	t.Parallel()

	for _, p := range builtinPlugins(t) {
		meta := p.PluginMetadata()
		t.Run(meta.Name, func(t *testing.T) {
			require.NoError(t, meta.Validate())
			require.Equal(t, "1.x", meta.APIVersion)
			require.NotEmpty(t, meta.Description)
		})
	}
}

func TestAdvicesAreToggleable(t *testing.T) {
	t.Parallel()

	r := registry.New(&registry.Config{DependencyPolicy: registry.PolicyStrict, AccessPolicy: registry.AccessStrict}, nil)
	for _, p := range builtinPlugins(t) {
		require.NoError(t, r.Register(p))
	}
	require.NoError(t, r.Validate())
	require.NoError(t, r.Initialize())

	for _, name := range r.List() {
		require.NoError(t, r.SetEnabled(name, false), name)
	}
	for _, info := range r.Describe() {
		require.False(t, info.Enabled, info.Metadata.Name)
	}
}

// Hooks must cope with calls that carry no leading context.
func TestHooksWithoutContext(t *testing.T) {
	t.Parallel()

	method := advice.Method{Name: "Run"}
	class := advice.ClassOf(&contractTarget{})
	for _, p := range builtinPlugins(t) {
		a := p.Advice()
		t.Run(p.PluginMetadata().Name, func(t *testing.T) {
			args := advice.Args{"no context", 1}

			before, ok := a.(advice.InstanceMethodBefore)
			require.True(t, ok)
			require.NoError(t, before.BeforeMethod(&contractTarget{}, method, args, "contract"))

			throwing, ok := a.(advice.InstanceMethodThrowing)
			require.True(t, ok)
			require.NoError(t, throwing.OnThrowing(&contractTarget{}, method, args, errBoom, "contract"))

			after, ok := a.(advice.InstanceMethodAfter)
			require.True(t, ok)
			require.NoError(t, after.AfterMethod(&contractTarget{}, method, args, nil, "contract"))

			staticBefore, ok := a.(advice.StaticMethodBefore)
			require.True(t, ok)
			require.NoError(t, staticBefore.BeforeStaticMethod(class, method, nil, "contract"))

			staticAfter, ok := a.(advice.StaticMethodAfter)
			require.True(t, ok)
			require.NoError(t, staticAfter.AfterStaticMethod(class, method, nil, 42, "contract"))

			require.Equal(t, advice.Args{"no context", 1}, args)
		})
	}
}
