// Package logging provides an advice that writes a structured record around
// every advised call.
package logging

import (
	"time"

	"github.com/alexisbeaulieu97/advisor/internal/plugins/callctx"
	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// Name is the plugin type of the logging plugin.
const Name = "logging"

type startKey struct{}

// Advice logs entry, completion and failure of advised calls. Calls carrying
// a leading context get a correlation id, reusing one already present.
type Advice struct {
	advice.Toggle
	log *logger.Logger
	now func() time.Time
}

// NewAdvice returns a logging advice writing to log.
func NewAdvice(log *logger.Logger) *Advice {
	if log == nil {
		log = logger.Nop()
	}
	return &Advice{log: log.WithField("plugin", Name), now: time.Now}
}

func (a *Advice) enter(class, method string, kind weave.Kind, args advice.Args, pluginType string) {
	id := ""
	if ctx, ok := callctx.Context(args); ok {
		id = logger.GetCorrelationID(ctx)
		if id == "" {
			id = logger.GenerateCorrelationID()
			callctx.Replace(args, logger.WithCorrelationID(ctx, id))
		}
		callctx.Attach(args, startKey{}, a.now())
	}
	a.fields(class, method, kind, id, pluginType).Debug("method entered")
}

func (a *Advice) fail(class, method string, kind weave.Kind, args advice.Args, err error, pluginType string) {
	a.fields(class, method, kind, correlationID(args), pluginType).Error(err, "method failed")
}

func (a *Advice) exit(class, method string, kind weave.Kind, args advice.Args, pluginType string) {
	l := a.fields(class, method, kind, correlationID(args), pluginType)
	if v, ok := callctx.Lookup(args, startKey{}); ok {
		l = l.WithField("duration_ms", float64(a.now().Sub(v.(time.Time)).Microseconds())/1000)
	}
	l.Info("method completed")
}

func (a *Advice) fields(class, method string, kind weave.Kind, id, pluginType string) *logger.Logger {
	fields := map[string]any{
		"class":       class,
		"method":      method,
		"kind":        kind.String(),
		"plugin_type": pluginType,
	}
	if id != "" {
		fields["correlation_id"] = id
	}
	return a.log.WithFields(fields)
}

func correlationID(args advice.Args) string {
	ctx, _ := callctx.Context(args)
	return logger.GetCorrelationID(ctx)
}

// BeforeMethod implements advice.InstanceMethodBefore.
func (a *Advice) BeforeMethod(target any, method advice.Method, args advice.Args, pluginType string) error {
	a.enter(advice.ClassOf(target).Name, method.Name, weave.KindInstanceMethod, args, pluginType)
	return nil
}

// OnThrowing implements advice.InstanceMethodThrowing.
func (a *Advice) OnThrowing(target any, method advice.Method, args advice.Args, err error, pluginType string) error {
	a.fail(advice.ClassOf(target).Name, method.Name, weave.KindInstanceMethod, args, err, pluginType)
	return nil
}

// AfterMethod implements advice.InstanceMethodAfter.
func (a *Advice) AfterMethod(target any, method advice.Method, args advice.Args, _ any, pluginType string) error {
	a.exit(advice.ClassOf(target).Name, method.Name, weave.KindInstanceMethod, args, pluginType)
	return nil
}

// BeforeStaticMethod implements advice.StaticMethodBefore.
func (a *Advice) BeforeStaticMethod(class advice.Class, method advice.Method, args advice.Args, pluginType string) error {
	a.enter(class.Name, method.Name, weave.KindStaticMethod, args, pluginType)
	return nil
}

// OnStaticThrowing implements advice.StaticMethodThrowing.
func (a *Advice) OnStaticThrowing(class advice.Class, method advice.Method, args advice.Args, err error, pluginType string) error {
	a.fail(class.Name, method.Name, weave.KindStaticMethod, args, err, pluginType)
	return nil
}

// AfterStaticMethod implements advice.StaticMethodAfter.
func (a *Advice) AfterStaticMethod(class advice.Class, method advice.Method, args advice.Args, _ any, pluginType string) error {
	a.exit(class.Name, method.Name, weave.KindStaticMethod, args, pluginType)
	return nil
}

// BeforeConstructor implements advice.ConstructorBefore.
func (a *Advice) BeforeConstructor(class advice.Class, args advice.Args, pluginType string) error {
	a.enter(class.Name, weave.ConstructorName, weave.KindConstructor, args, pluginType)
	return nil
}

// OnConstructorThrowing implements advice.ConstructorThrowing.
func (a *Advice) OnConstructorThrowing(class advice.Class, args advice.Args, err error, pluginType string) error {
	a.fail(class.Name, weave.ConstructorName, weave.KindConstructor, args, err, pluginType)
	return nil
}

// OnConstructor implements advice.ConstructorAdvice.
func (a *Advice) OnConstructor(target any, args advice.Args, pluginType string) error {
	a.exit(advice.ClassOf(target).Name, weave.ConstructorName, weave.KindConstructor, args, pluginType)
	return nil
}

// Plugin registers the logging advice.
type Plugin struct {
	advice *Advice
	log    *logger.Logger
}

// New returns the logging plugin.
func New(log *logger.Logger) *Plugin {
	if log == nil {
		log = logger.Nop()
	}
	return &Plugin{advice: NewAdvice(log), log: log}
}

// Logger returns the logger the plugin was created with so dependent
// plugins can share it.
func (p *Plugin) Logger() *logger.Logger {
	return p.log
}

// PluginMetadata implements registry.Plugin.
func (p *Plugin) PluginMetadata() registry.PluginMetadata {
	return registry.PluginMetadata{
		Name:        Name,
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Description: "structured records for entry, completion and failure",
	}
}

// Advice implements registry.Plugin.
func (p *Plugin) Advice() any {
	return p.advice
}
