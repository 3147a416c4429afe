package bank

import (
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// AuditName is the plugin type of the audit plugin.
const AuditName = "audit"

// AuditEntry is one large withdrawal seen by the Auditor.
type AuditEntry struct {
	Owner  string
	Amount int
	Err    error
}

// Auditor records withdrawals at or above a threshold.
type Auditor struct {
	advice.Toggle
	threshold int
	log       *logger.Logger

	mu      sync.Mutex
	entries []AuditEntry
}

// BeforeMethod implements advice.InstanceMethodBefore.
func (a *Auditor) BeforeMethod(target any, method advice.Method, args advice.Args, _ string) error {
	if method.Name != "Withdraw" {
		return nil
	}
	acct, ok := target.(*Account)
	if !ok {
		return fmt.Errorf("audit: unexpected target %T", target)
	}
	amount, ok := args.At(1).(int)
	if !ok {
		return fmt.Errorf("audit: unexpected amount %T", args.At(1))
	}
	if amount < a.threshold {
		return nil
	}

	a.mu.Lock()
	a.entries = append(a.entries, AuditEntry{Owner: acct.Owner(), Amount: amount})
	a.mu.Unlock()
	a.log.WithFields(map[string]any{"owner": acct.Owner(), "amount": amount}).Warn("large withdrawal")
	return nil
}

// OnThrowing implements advice.InstanceMethodThrowing. The failure is
// attached to the latest matching entry.
func (a *Auditor) OnThrowing(target any, method advice.Method, args advice.Args, err error, _ string) error {
	acct, ok := target.(*Account)
	if method.Name != "Withdraw" || !ok {
		return nil
	}
	amount, _ := args.At(1).(int)

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := &a.entries[i]
		if e.Owner == acct.Owner() && e.Amount == amount && e.Err == nil {
			e.Err = err
			break
		}
	}
	return nil
}

// Entries returns a copy of the audit trail.
func (a *Auditor) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditEntry(nil), a.entries...)
}

// AuditPlugin registers the Auditor. It declares its own advisors and takes
// its logger from the logging plugin during initialization.
type AuditPlugin struct {
	auditor *Auditor
}

// NewAuditPlugin audits withdrawals of at least threshold.
func NewAuditPlugin(threshold int) *AuditPlugin {
	return &AuditPlugin{auditor: &Auditor{threshold: threshold, log: logger.Nop()}}
}

// PluginMetadata implements registry.Plugin.
func (p *AuditPlugin) PluginMetadata() registry.PluginMetadata {
	return registry.PluginMetadata{
		Name:        AuditName,
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Description: "audit trail of large withdrawals",
		Dependencies: []registry.Dependency{
			{Name: "logging", VersionConstraint: registry.MustParseVersionConstraint("1.x")},
		},
	}
}

// Advice implements registry.Plugin.
func (p *AuditPlugin) Advice() any {
	return p.auditor
}

// Auditor returns the plugin's advice.
func (p *AuditPlugin) Auditor() *Auditor {
	return p.auditor
}

// Advisors implements registry.AdvisorProvider.
func (p *AuditPlugin) Advisors() []registry.Advisor {
	a, err := registry.NewAdvisor(Class, weave.KindInstanceMethod, "Withdraw")
	if err != nil {
		return nil
	}
	return []registry.Advisor{a}
}

type loggerSource interface {
	Logger() *logger.Logger
}

// Init implements registry.PluginInitializer.
func (p *AuditPlugin) Init(r *registry.Registry) error {
	dep, err := r.GetForDependent(AuditName, "logging")
	if err != nil {
		return err
	}
	if src, ok := dep.(loggerSource); ok {
		p.auditor.log = src.Logger().WithField("plugin", AuditName)
	}
	return nil
}
