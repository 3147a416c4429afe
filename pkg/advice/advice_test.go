package advice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type account struct{}

func TestClassOfUsesDynamicType(t *testing.T) {
	t.Parallel()

	require.Equal(t, "*advice.account", ClassOf(&account{}).Name)
	require.Equal(t, "int", ClassOf(42).String())
	require.Equal(t, "<nil>", ClassOf(nil).Name)
}

func TestArgsShareBackingArray(t *testing.T) {
	t.Parallel()

	args := Args{100, "memo"}
	view := args
	require.NoError(t, view.Set(0, 200))
	require.Equal(t, 200, args[0])
	require.Equal(t, "memo", args.At(1))
	require.Nil(t, args.At(5))
	require.Error(t, args.Set(2, "x"))
}

func TestToggleDefaultsToEnabled(t *testing.T) {
	t.Parallel()

	var toggle Toggle
	require.True(t, toggle.IsPluginEnabled())

	toggle.SetEnabled(false)
	require.False(t, toggle.IsPluginEnabled())

	toggle.SetEnabled(true)
	require.True(t, toggle.IsPluginEnabled())
}
