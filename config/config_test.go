package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestLoadFile
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
market:
  request_spacing: 250ms
game:
  state_key: "Other"
storage:
  driver: "postgres"
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Market.RequestSpacing)
	assert.Equal(t, "Other", cfg.Game.StateKey)
	assert.Equal(t, "postgres", cfg.Storage.Driver)

	// untouched keys keep their defaults
	assert.Equal(t, 3, cfg.Market.MarketRetries)
	assert.Equal(t, 1, cfg.Market.ChartRetries)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "CRYPTOGOD_DB_HOST", cfg.Postgres.SSM.Host)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o644))
	t.Setenv("SERVER_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		DBName:   "cryptogod",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cryptogod sslmode=disable TimeZone=UTC", cfg.DSN("dev"))
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=postgres sslmode=disable TimeZone=UTC", cfg.AdminDSN())
}
