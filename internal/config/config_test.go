package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(20), cfg.Sim.ScopeRadius)
	assert.Equal(t, uint64(2), cfg.Sim.StepInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridsync.yaml")
	yml := `
server:
  addr: ":9000"
simulation:
  tick_rate: 20
  scope_radius: 8
world:
  width: 40
  depth: 30
bot:
  think: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("GRIDSYNC_SCOPE_RADIUS", "12")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Sim.TickRate)
	assert.Equal(t, uint32(12), cfg.Sim.ScopeRadius, "env wins over yaml")
	assert.Equal(t, uint32(40), cfg.World.Width)
	assert.Equal(t, uint32(30), cfg.World.Depth)
	assert.Equal(t, uint64(2), cfg.Sim.StepInterval, "untouched default")
	assert.Equal(t, 500*time.Millisecond, cfg.Bot.Think)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	cfg := Default()
	env := map[string]string{"GRIDSYNC_TICK_RATE": "fast"}
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRIDSYNC_TICK_RATE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero tick rate", func(c *Config) { c.Sim.TickRate = 0 }, "tick_rate"},
		{"zero step interval", func(c *Config) { c.Sim.StepInterval = 0 }, "step_interval"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "unknown storage driver"},
		{"redis without url", func(c *Config) { c.Storage.Driver = "redis" }, "needs a dsn"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, "needs a dsn"},
		{"empty world", func(c *Config) { c.World.Width = 0 }, "world size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	cfg := Default()
	cfg.Storage.Driver = "redis"
	cfg.Storage.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "redis://localhost:6379/0", cfg.StorageDSN())
}
