package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, key := range ciEnvVars {
		t.Setenv(key, "")
	}
}

func TestDefaultConfigIsStrictOnCI(t *testing.T) {
	for _, env := range ciEnvVars {
		t.Run(env, func(t *testing.T) {
			clearCIEnv(t)
			t.Setenv(env, "true")

			cfg := DefaultConfig()
			require.Equal(t, PolicyStrict, cfg.DependencyPolicy)
			require.Equal(t, AccessStrict, cfg.AccessPolicy)
		})
	}
}

func TestDefaultConfigIsLenientInteractively(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("CI", "false")

	cfg := DefaultConfig()
	require.Equal(t, PolicyGraceful, cfg.DependencyPolicy)
	require.Equal(t, AccessWarn, cfg.AccessPolicy)
}

func TestConfigFrom(t *testing.T) {
	clearCIEnv(t)

	cfg, err := ConfigFrom("strict", "off")
	require.NoError(t, err)
	require.Equal(t, &Config{DependencyPolicy: PolicyStrict, AccessPolicy: AccessOff}, cfg)

	cfg, err = ConfigFrom("", "")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	_, err = ConfigFrom("lenient", "")
	require.Error(t, err)
	_, err = ConfigFrom("", "sometimes")
	require.Error(t, err)
}
