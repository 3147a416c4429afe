package advice

import "sync/atomic"

// Toggle is an embeddable PluginEnabler backed by an atomic flag. The zero
// value is enabled.
type Toggle struct {
	disabled atomic.Bool
}

// IsPluginEnabled implements PluginEnabler.
func (t *Toggle) IsPluginEnabled() bool {
	return !t.disabled.Load()
}

// SetEnabled switches the advice on or off for subsequent hook calls.
func (t *Toggle) SetEnabled(enabled bool) {
	t.disabled.Store(!enabled)
}

var _ PluginEnabler = (*Toggle)(nil)
