// Package metrics provides an advice that records Prometheus metrics for
// every advised call.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexisbeaulieu97/advisor/internal/plugins/callctx"
	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
)

// Name is the plugin type of the metrics plugin.
const Name = "metrics"

var labels = []string{"class", "method"}

type startKey struct{}

// Collectors holds the metric vectors shared by every advised call.
type Collectors struct {
	Calls    *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	InFlight *prometheus.GaugeVec
	Duration *prometheus.HistogramVec
}

// NewCollectors creates the collectors and registers them with reg.
func NewCollectors(namespace string, reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "method_calls_total",
				Help:      "Total number of advised method calls",
			},
			labels,
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "method_errors_total",
				Help:      "Total number of advised method calls that failed",
			},
			labels,
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "method_in_flight",
				Help:      "Advised method calls currently executing",
			},
			labels,
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "method_duration_seconds",
				Help:      "Duration of advised method calls carrying a context",
				Buckets:   prometheus.DefBuckets,
			},
			labels,
		),
	}

	if reg != nil {
		for _, collector := range []prometheus.Collector{c.Calls, c.Errors, c.InFlight, c.Duration} {
			if err := reg.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Advice updates the collectors around advised calls.
type Advice struct {
	advice.Toggle
	collectors *Collectors
	now        func() time.Time
}

// NewAdvice returns an advice recording into c.
func NewAdvice(c *Collectors) *Advice {
	return &Advice{collectors: c, now: time.Now}
}

func (a *Advice) enter(class, method string, args advice.Args) {
	a.collectors.Calls.WithLabelValues(class, method).Inc()
	a.collectors.InFlight.WithLabelValues(class, method).Inc()
	callctx.Attach(args, startKey{}, a.now())
}

func (a *Advice) fail(class, method string) {
	a.collectors.Errors.WithLabelValues(class, method).Inc()
}

func (a *Advice) exit(class, method string, args advice.Args) {
	a.collectors.InFlight.WithLabelValues(class, method).Dec()
	if v, ok := callctx.Lookup(args, startKey{}); ok {
		a.collectors.Duration.WithLabelValues(class, method).Observe(a.now().Sub(v.(time.Time)).Seconds())
	}
}

// BeforeMethod implements advice.InstanceMethodBefore.
func (a *Advice) BeforeMethod(target any, method advice.Method, args advice.Args, _ string) error {
	a.enter(advice.ClassOf(target).Name, method.Name, args)
	return nil
}

// OnThrowing implements advice.InstanceMethodThrowing.
func (a *Advice) OnThrowing(target any, method advice.Method, _ advice.Args, _ error, _ string) error {
	a.fail(advice.ClassOf(target).Name, method.Name)
	return nil
}

// AfterMethod implements advice.InstanceMethodAfter.
func (a *Advice) AfterMethod(target any, method advice.Method, args advice.Args, _ any, _ string) error {
	a.exit(advice.ClassOf(target).Name, method.Name, args)
	return nil
}

// BeforeStaticMethod implements advice.StaticMethodBefore.
func (a *Advice) BeforeStaticMethod(class advice.Class, method advice.Method, args advice.Args, _ string) error {
	a.enter(class.Name, method.Name, args)
	return nil
}

// OnStaticThrowing implements advice.StaticMethodThrowing.
func (a *Advice) OnStaticThrowing(class advice.Class, method advice.Method, _ advice.Args, _ error, _ string) error {
	a.fail(class.Name, method.Name)
	return nil
}

// AfterStaticMethod implements advice.StaticMethodAfter.
func (a *Advice) AfterStaticMethod(class advice.Class, method advice.Method, args advice.Args, _ any, _ string) error {
	a.exit(class.Name, method.Name, args)
	return nil
}

// Plugin registers the metrics advice.
type Plugin struct {
	advice *Advice
}

// New creates the collectors under namespace, registers them with reg and
// returns the plugin.
func New(namespace string, reg prometheus.Registerer) (*Plugin, error) {
	c, err := NewCollectors(namespace, reg)
	if err != nil {
		return nil, err
	}
	return &Plugin{advice: NewAdvice(c)}, nil
}

// PluginMetadata implements registry.Plugin.
func (p *Plugin) PluginMetadata() registry.PluginMetadata {
	return registry.PluginMetadata{
		Name:        Name,
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Description: "prometheus call counts, errors, in-flight and latency",
	}
}

// Advice implements registry.Plugin.
func (p *Plugin) Advice() any {
	return p.advice
}
