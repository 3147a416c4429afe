// Package tracing provides an advice that wraps every advised call carrying a
// leading context.Context in an OpenTelemetry span.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexisbeaulieu97/advisor/internal/plugins/callctx"
	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// Name is the plugin type of the tracing plugin.
const Name = "tracing"

type spanKey struct{}

// Advice starts a span in the before phase, replaces the call's context with
// the span's context, records failures and ends the span in the after phase.
type Advice struct {
	advice.Toggle
	tracer trace.Tracer
}

// NewAdvice returns an advice starting spans from tracer.
func NewAdvice(tracer trace.Tracer) *Advice {
	return &Advice{tracer: tracer}
}

func (a *Advice) start(class, method string, kind weave.Kind, args advice.Args) {
	ctx, ok := callctx.Context(args)
	if !ok {
		return
	}
	ctx, span := a.tracer.Start(ctx, class+"."+method,
		trace.WithAttributes(
			attribute.String("code.namespace", class),
			attribute.String("code.function", method),
			attribute.String("advisor.kind", kind.String()),
		),
	)
	callctx.Replace(args, ctx)
	callctx.Attach(args, spanKey{}, span)
}

func (a *Advice) fail(args advice.Args, err error) {
	if span, ok := spanOf(args); ok {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (a *Advice) end(args advice.Args) {
	if span, ok := spanOf(args); ok {
		span.End()
	}
}

func spanOf(args advice.Args) (trace.Span, bool) {
	v, ok := callctx.Lookup(args, spanKey{})
	if !ok {
		return nil, false
	}
	span, ok := v.(trace.Span)
	return span, ok
}

// BeforeMethod implements advice.InstanceMethodBefore.
func (a *Advice) BeforeMethod(target any, method advice.Method, args advice.Args, _ string) error {
	a.start(advice.ClassOf(target).Name, method.Name, weave.KindInstanceMethod, args)
	return nil
}

// OnThrowing implements advice.InstanceMethodThrowing.
func (a *Advice) OnThrowing(_ any, _ advice.Method, args advice.Args, err error, _ string) error {
	a.fail(args, err)
	return nil
}

// AfterMethod implements advice.InstanceMethodAfter.
func (a *Advice) AfterMethod(_ any, _ advice.Method, args advice.Args, _ any, _ string) error {
	a.end(args)
	return nil
}

// BeforeStaticMethod implements advice.StaticMethodBefore.
func (a *Advice) BeforeStaticMethod(class advice.Class, method advice.Method, args advice.Args, _ string) error {
	a.start(class.Name, method.Name, weave.KindStaticMethod, args)
	return nil
}

// OnStaticThrowing implements advice.StaticMethodThrowing.
func (a *Advice) OnStaticThrowing(_ advice.Class, _ advice.Method, args advice.Args, err error, _ string) error {
	a.fail(args, err)
	return nil
}

// AfterStaticMethod implements advice.StaticMethodAfter.
func (a *Advice) AfterStaticMethod(_ advice.Class, _ advice.Method, args advice.Args, _ any, _ string) error {
	a.end(args)
	return nil
}

// Plugin registers the tracing advice.
type Plugin struct {
	advice *Advice
}

// New returns the tracing plugin using tracer.
func New(tracer trace.Tracer) *Plugin {
	return &Plugin{advice: NewAdvice(tracer)}
}

// PluginMetadata implements registry.Plugin.
func (p *Plugin) PluginMetadata() registry.PluginMetadata {
	return registry.PluginMetadata{
		Name:        Name,
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Description: "opentelemetry span per call",
	}
}

// Advice implements registry.Plugin.
func (p *Plugin) Advice() any {
	return p.advice
}

// NewProvider builds a tracer provider for exporter "none" or "stdout".
// Stdout spans are written to w, or os.Stdout when w is nil.
func NewProvider(exporter, serviceName string, w io.Writer) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	switch exporter {
	case "", "none":
	case "stdout":
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSyncer(exp))
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", exporter)
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// Shutdown flushes and stops provider.
func Shutdown(ctx context.Context, provider *sdktrace.TracerProvider) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}
