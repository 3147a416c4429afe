package tracing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/advisor"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
)

type teller struct{}

func newExecutor(t *testing.T) (*advisor.InstanceMethodExecutor, *tracetest.SpanRecorder, *Plugin) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	p := New(provider.Tracer("test"))
	m := advisor.MustNewMap(advisor.Binding{PluginType: Name, Advices: []any{p.Advice()}})
	return advisor.NewInstanceMethodExecutor(m, advisor.WithLogger(logger.Nop())), recorder, p
}

func TestAdviceWrapsCallInSpan(t *testing.T) {
	exec, recorder, _ := newExecutor(t)

	args := advice.Args{context.Background(), 5}
	var inBody trace.SpanContext
	_, err := exec.Advise(&teller{}, advice.Method{Name: "Count"}, args, func() (any, error) {
		inBody = trace.SpanContextFromContext(args[0].(context.Context))
		return 5, nil
	})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	require.Equal(t, "*tracing.teller.Count", span.Name())
	require.Equal(t, span.SpanContext().SpanID(), inBody.SpanID())
	require.Equal(t, codes.Unset, span.Status().Code)

	attrs := map[string]string{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	require.Equal(t, "Count", attrs["code.function"])
	require.Equal(t, "instance", attrs["advisor.kind"])
}

func TestAdviceRecordsErrors(t *testing.T) {
	exec, recorder, _ := newExecutor(t)

	_, err := exec.Advise(&teller{}, advice.Method{Name: "Pay"}, advice.Args{context.Background()}, func() (any, error) {
		return nil, errors.New("drawer stuck")
	})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Equal(t, "drawer stuck", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestNestedCallsGetChildSpans(t *testing.T) {
	exec, recorder, _ := newExecutor(t)

	outerArgs := advice.Args{context.Background()}
	_, err := exec.Advise(&teller{}, advice.Method{Name: "Outer"}, outerArgs, func() (any, error) {
		innerArgs := advice.Args{outerArgs[0]}
		return exec.Advise(&teller{}, advice.Method{Name: "Inner"}, innerArgs, func() (any, error) { return nil, nil })
	})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	inner, outer := spans[0], spans[1]
	require.Equal(t, "*tracing.teller.Inner", inner.Name())
	require.Equal(t, "*tracing.teller.Outer", outer.Name())
	require.Equal(t, outer.SpanContext().SpanID(), inner.Parent().SpanID())
}

func TestToggledMidCallDoesNotEndForeignSpan(t *testing.T) {
	exec, recorder, p := newExecutor(t)
	parentCtx, parent := p.advice.tracer.Start(context.Background(), "request")
	p.advice.SetEnabled(false)

	args := advice.Args{parentCtx}
	_, err := exec.Advise(&teller{}, advice.Method{Name: "Count"}, args, func() (any, error) {
		p.advice.SetEnabled(true)
		return nil, nil
	})
	require.NoError(t, err)
	require.Len(t, recorder.Started(), 1)
	require.Empty(t, recorder.Ended())

	parent.End()
	require.Len(t, recorder.Ended(), 1)
}

func TestCallsWithoutContextAreNotTraced(t *testing.T) {
	exec, recorder, _ := newExecutor(t)
	_, err := exec.Advise(&teller{}, advice.Method{Name: "Count"}, advice.Args{3}, func() (any, error) { return nil, nil })
	require.NoError(t, err)
	require.Empty(t, recorder.Started())
}

func TestNewProvider(t *testing.T) {
	var buf bytes.Buffer
	provider, err := NewProvider("stdout", "advisor-test", &buf)
	require.NoError(t, err)

	_, span := provider.Tracer("test").Start(context.Background(), "export-check")
	span.End()
	require.NoError(t, Shutdown(context.Background(), provider))
	require.Contains(t, buf.String(), "export-check")
	require.Contains(t, buf.String(), "advisor-test")

	none, err := NewProvider("none", "advisor", nil)
	require.NoError(t, err)
	require.NoError(t, Shutdown(context.Background(), none))

	_, err = NewProvider("jaeger", "advisor", nil)
	require.Error(t, err)
	require.NoError(t, Shutdown(context.Background(), nil))
}
