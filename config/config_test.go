//go:build unit

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dambileh/civitas-bus/config"
)

func TestNewWithoutEnvFile(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestDefaultsAndOverrides(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)

	cfg.SetDefault("STORE_TYPE", "ram")
	assert.Equal(t, "ram", cfg.GetString("STORE_TYPE"))

	cfg.Set("STORE_TYPE", "redis")
	assert.Equal(t, "redis", cfg.GetString("STORE_TYPE"))
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("MQ_TYPE", "nats")

	cfg, err := config.New()
	require.NoError(t, err)

	cfg.SetDefault("MQ_TYPE", "redis")
	assert.Equal(t, "nats", cfg.GetString("MQ_TYPE"))
}
