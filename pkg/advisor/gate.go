package advisor

import "github.com/alexisbeaulieu97/advisor/pkg/advice"

// IsPluginEnabled reports whether a currently takes part in hook calls. It is
// true unless a implements advice.PluginEnabler and reports false.
func IsPluginEnabled(a any) bool {
	enabler, ok := a.(advice.PluginEnabler)
	return !ok || enabler.IsPluginEnabled()
}
