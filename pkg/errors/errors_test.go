package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("agent.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "agent.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "agent.yaml:12")
}

func TestValidationErrorIncludesField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("plugins[1].advisors[0].kind", "unknown kind", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "plugins[1].advisors[0].kind", validationErr.Field)
	require.Contains(t, err.Error(), "unknown kind")
}

func TestPluginErrorIncludesPluginName(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("not supported")
	err := NewPluginError("tracing", underlying)

	var pluginErr *PluginError
	require.ErrorAs(t, err, &pluginErr)
	require.Equal(t, "tracing", pluginErr.Plugin)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestAdviceErrorIncludesPhaseAndPlugin(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("counter overflow")
	err := NewAdviceError("metrics", "post-method", underlying)

	var adviceErr *AdviceError
	require.ErrorAs(t, err, &adviceErr)
	require.Equal(t, "metrics", adviceErr.PluginType)
	require.Equal(t, "advice error [metrics] in post-method: counter overflow", err.Error())
	require.True(t, stdErrors.Is(err, underlying))
}

func TestPanicErrorUnwrapsErrorValues(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("nil map write")
	err := NewPanicError(underlying)
	require.True(t, stdErrors.Is(err, underlying))
	require.NotEmpty(t, err.Stack)

	plain := NewPanicError("boom")
	require.Nil(t, plain.Unwrap())
	require.Equal(t, "panic: boom", plain.Error())
}

func TestInvocationErrorIncludesMethod(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("method not defined")
	err := NewInvocationError("bank.Account", "Transfer", underlying)

	var invocationErr *InvocationError
	require.ErrorAs(t, err, &invocationErr)
	require.Equal(t, "Transfer", invocationErr.Method)
	require.Contains(t, err.Error(), "bank.Account.Transfer")
	require.True(t, stdErrors.Is(err, underlying))
}
