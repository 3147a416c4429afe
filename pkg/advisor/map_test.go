package advisor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
)

func TestNewMap_PreservesInsertionOrder(t *testing.T) {
	a, b, c := &beforeOnly{}, &beforeOnly{}, &beforeOnly{}
	m, err := NewMap(
		Binding{PluginType: "metrics", Advices: []any{a, b}},
		Binding{PluginType: "logging", Advices: []any{c}},
	)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	require.Equal(t, 3, m.AdviceCount())
	require.Equal(t, []string{"metrics", "logging"}, m.PluginTypes())

	var visited []string
	require.NoError(t, m.each(func(pluginType string, _ any) error {
		visited = append(visited, pluginType)
		return nil
	}))
	require.Equal(t, []string{"metrics", "metrics", "logging"}, visited)
}

func TestNewMap_CopiesAdviceSlices(t *testing.T) {
	advices := []any{&beforeOnly{}}
	m := MustNewMap(Binding{PluginType: "p", Advices: advices})
	advices[0] = &recorder{}

	require.IsType(t, &beforeOnly{}, m.Advices("p")[0])

	returned := m.Advices("p")
	returned[0] = nil
	require.NotNil(t, m.Advices("p")[0])
	require.Nil(t, m.Advices("missing"))
}

func TestNewMap_RejectsInvalidBindings(t *testing.T) {
	tests := map[string][]Binding{
		"empty plugin type": {{PluginType: " ", Advices: []any{&beforeOnly{}}}},
		"duplicate type":    {{PluginType: "p"}, {PluginType: "p"}},
		"nil advice":        {{PluginType: "p", Advices: []any{nil}}},
	}
	for name, bindings := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewMap(bindings...)
			require.Error(t, err)
			require.Panics(t, func() { MustNewMap(bindings...) })
		})
	}
}

func TestMap_NilIsEmpty(t *testing.T) {
	var m *Map
	require.Zero(t, m.Len())
	require.Zero(t, m.AdviceCount())
	require.Nil(t, m.PluginTypes())
	require.Nil(t, m.Advices("p"))
	require.NoError(t, m.each(func(string, any) error { return errors.New("unreachable") }))
}

func TestIsPluginEnabled(t *testing.T) {
	require.True(t, IsPluginEnabled(&beforeOnly{}))

	toggled := &recorder{}
	require.True(t, IsPluginEnabled(toggled))
	toggled.SetEnabled(false)
	require.False(t, IsPluginEnabled(toggled))
	toggled.SetEnabled(true)
	require.True(t, IsPluginEnabled(toggled))
}

type brokenError struct{}

func (brokenError) Error() string { panic("no message") }

func TestSafeMessage_SurvivesPanickingError(t *testing.T) {
	require.Equal(t, "plain", safeMessage(errors.New("plain")))
	require.Contains(t, safeMessage(brokenError{}), "message unavailable")
}

func TestPhase_String(t *testing.T) {
	require.Equal(t, "pre-method", PhaseBefore.String())
	require.Equal(t, "error handler", PhaseThrowing.String())
	require.Equal(t, "post-method", PhaseAfter.String())
	require.Equal(t, "phase(9)", Phase(9).String())
}

var _ advice.PluginEnabler = (*recorder)(nil)
