package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"STEPATTEND_API_URL", "API_TIMEOUT", "API_RATE_LIMIT", "API_RATE_BURST",
		"SESSION_BACKEND", "SESSION_DATABASE_FILE", "SESSION_REDIS_URL", "SESSION_REDIS_PREFIX",
		"REGISTER_LOGIN_DELAY", "ENV", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "http://10.0.2.2:8080", cfg.APIURL)
	require.Equal(t, 10*time.Second, cfg.APITimeout)
	require.Zero(t, cfg.RateLimit)
	require.Equal(t, 1, cfg.RateBurst)
	require.Equal(t, BackendSQLite, cfg.SessionBackend)
	require.Equal(t, "stepattend.db", cfg.DatabaseFile)
	require.Equal(t, "stepattend", cfg.RedisPrefix)
	require.Equal(t, 500*time.Millisecond, cfg.RegisterLoginDelay)
	require.Equal(t, "warn", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STEPATTEND_API_URL", "https://attend.example.edu")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("API_RATE_BURST", "4")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REGISTER_LOGIN_DELAY", "250")

	cfg := LoadConfig()
	require.Equal(t, "https://attend.example.edu", cfg.APIURL)
	require.Equal(t, 3*time.Second, cfg.APITimeout)
	require.InDelta(t, 2.5, cfg.RateLimit, 1e-9)
	require.Equal(t, 4, cfg.RateBurst)
	require.Equal(t, BackendRedis, cfg.SessionBackend)
	require.Equal(t, 250*time.Millisecond, cfg.RegisterLoginDelay)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_MalformedFallsBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("API_RATE_BURST", "lots")
	t.Setenv("API_RATE_LIMIT", "fast")

	cfg := LoadConfig()
	require.Equal(t, 10*time.Second, cfg.APITimeout)
	require.Equal(t, 1, cfg.RateBurst)
	require.Zero(t, cfg.RateLimit)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	base := Config{APIURL: "http://x", SessionBackend: BackendMemory}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"memory ok", func(*Config) {}, ""},
		{"empty url", func(c *Config) { c.APIURL = "" }, "STEPATTEND_API_URL"},
		{"unknown backend", func(c *Config) { c.SessionBackend = "etcd" }, "unknown SESSION_BACKEND"},
		{"redis without url", func(c *Config) { c.SessionBackend = BackendRedis }, "SESSION_REDIS_URL"},
		{"sqlite without file", func(c *Config) { c.SessionBackend = BackendSQLite }, "SESSION_DATABASE_FILE"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "API_RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
