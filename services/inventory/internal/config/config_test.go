package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_LocalDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "local")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvLocal, cfg.AppEnv)
	require.Equal(t, "127.0.0.1:8081", cfg.HTTPAddr)
	require.Equal(t, 42, cfg.DefaultStock)
	require.Empty(t, cfg.Seed)
	require.False(t, cfg.Observability.Enabled)
}

func TestLoad_DockerDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "docker")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDocker, cfg.AppEnv)
	require.Equal(t, "0.0.0.0:8081", cfg.HTTPAddr)
	require.Equal(t, "otel-collector:4317", cfg.Observability.OTLPEndpoint)
}

func TestLoad_Seed(t *testing.T) {
	os.Clearenv()
	os.Setenv("INVENTORY_SEED", "P1:100, P2:0")
	os.Setenv("INVENTORY_DEFAULT_STOCK", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, map[string]int{"P1": 100, "P2": 0}, cfg.Seed)
	require.Zero(t, cfg.DefaultStock)
}

func TestParseSeed_Invalid(t *testing.T) {
	for _, raw := range []string{"P1", "P1:x", ":5", "P1:-1"} {
		_, err := ParseSeed(raw)
		require.Error(t, err, raw)
	}
}
