package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"KV_DRIVER", "COMPARISON_LIMIT", "SESSION_TTL", "PORT"} {
		t.Setenv(k, "")
	}
	// t.Setenv cannot unset; an empty value is an invalid int/duration and falls back.
	t.Setenv("KV_DRIVER", DriverMemory)

	cfg := FromEnv()
	assert.Equal(t, DriverMemory, cfg.KVDriver)
	assert.Equal(t, 4, cfg.ComparisonLimit)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KV_DRIVER", DriverBadger)
	t.Setenv("BADGER_PATH", "/tmp/state")
	t.Setenv("COMPARISON_LIMIT", "6")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := FromEnv()
	assert.Equal(t, DriverBadger, cfg.KVDriver)
	assert.Equal(t, "/tmp/state", cfg.BadgerPath)
	assert.Equal(t, 6, cfg.ComparisonLimit)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int32(7), cfg.DBMaxConns)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "memory ok", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.KVDriver = "redis" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.KVDriver = DriverPostgres; c.DBUrl = "" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) { c.KVDriver = DriverPostgres; c.DBUrl = "postgres://localhost/db" }},
		{name: "r2 without bucket", mutate: func(c *Config) { c.KVDriver = DriverR2; c.R2AccountID = "acct" }, wantErr: true},
		{name: "zero comparison limit", mutate: func(c *Config) { c.ComparisonLimit = 0 }, wantErr: true},
		{name: "zero session ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{KVDriver: DriverMemory, ComparisonLimit: 4, SessionTTL: time.Minute}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
