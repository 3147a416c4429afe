package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/advisor"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
)

type vault struct{}

func newExecutor(t *testing.T) (*advisor.InstanceMethodExecutor, *Plugin, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	p, err := New("test", reg)
	require.NoError(t, err)

	tick := time.Unix(0, 0)
	p.advice.now = func() time.Time {
		tick = tick.Add(250 * time.Millisecond)
		return tick
	}
	m := advisor.MustNewMap(advisor.Binding{PluginType: Name, Advices: []any{p.Advice()}})
	return advisor.NewInstanceMethodExecutor(m, advisor.WithLogger(logger.Nop())), p, reg
}

func TestAdviceCountsCallsAndErrors(t *testing.T) {
	exec, p, _ := newExecutor(t)
	c := p.advice.collectors

	for i := 0; i < 3; i++ {
		_, err := exec.Advise(&vault{}, advice.Method{Name: "Open"}, advice.Args{context.Background()}, func() (any, error) {
			require.Equal(t, 1.0, testutil.ToFloat64(c.InFlight.WithLabelValues("*metrics.vault", "Open")))
			return nil, nil
		})
		require.NoError(t, err)
	}
	_, err := exec.Advise(&vault{}, advice.Method{Name: "Open"}, advice.Args{context.Background()}, func() (any, error) {
		return nil, errors.New("jammed")
	})
	require.Error(t, err)

	require.Equal(t, 4.0, testutil.ToFloat64(c.Calls.WithLabelValues("*metrics.vault", "Open")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Errors.WithLabelValues("*metrics.vault", "Open")))
	require.Equal(t, 0.0, testutil.ToFloat64(c.InFlight.WithLabelValues("*metrics.vault", "Open")))
}

func TestAdviceObservesDurationForContextCalls(t *testing.T) {
	exec, _, reg := newExecutor(t)

	_, err := exec.Advise(&vault{}, advice.Method{Name: "Open"}, advice.Args{context.Background()}, func() (any, error) { return nil, nil })
	require.NoError(t, err)
	_, err = exec.Advise(&vault{}, advice.Method{Name: "Close"}, advice.Args{1}, func() (any, error) { return nil, nil })
	require.NoError(t, err)

	expected := `
# HELP test_method_duration_seconds Duration of advised method calls carrying a context
# TYPE test_method_duration_seconds histogram
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="0.005"} 0
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="0.01"} 0
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="0.025"} 0
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="0.05"} 0
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="0.1"} 0
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="0.25"} 1
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="0.5"} 1
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="1"} 1
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="2.5"} 1
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="5"} 1
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="10"} 1
test_method_duration_seconds_bucket{class="*metrics.vault",method="Open",le="+Inf"} 1
test_method_duration_seconds_sum{class="*metrics.vault",method="Open"} 0.25
test_method_duration_seconds_count{class="*metrics.vault",method="Open"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_method_duration_seconds"))
}

func TestStaticHooksShareCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := New("test", reg)
	require.NoError(t, err)
	m := advisor.MustNewMap(advisor.Binding{PluginType: Name, Advices: []any{p.Advice()}})
	exec := advisor.NewStaticMethodExecutor(m, advisor.WithLogger(logger.Nop()))

	_, err = exec.Advise(advice.Class{Name: "bank.Rates"}, advice.Method{Name: "Prime"}, nil, func() (any, error) {
		return nil, errors.New("offline")
	})
	require.Error(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(p.advice.collectors.Calls.WithLabelValues("bank.Rates", "Prime")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.advice.collectors.Errors.WithLabelValues("bank.Rates", "Prime")))
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New("dup", reg)
	require.NoError(t, err)
	_, err = New("dup", reg)
	require.Error(t, err)
}

func TestDisabledAdviceRecordsNothing(t *testing.T) {
	exec, p, _ := newExecutor(t)
	p.advice.SetEnabled(false)

	_, err := exec.Advise(&vault{}, advice.Method{Name: "Open"}, advice.Args{context.Background()}, func() (any, error) { return nil, nil })
	require.NoError(t, err)
	require.Equal(t, 0, testutil.CollectAndCount(p.advice.collectors.Calls))
	require.NoError(t, p.PluginMetadata().Validate())
}
