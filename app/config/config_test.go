package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "/api", cfg.HTTP.Prefix)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=directory sslmode=disable", cfg.Database.ConnString())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
http:
  addr: ":9090"
  read_timeout: 3s
app:
  base_url: https://directory.example.com
database:
  dsn: postgres://u:p@db:5432/directory
rate_limit:
  rps: 0
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "https://directory.example.com", cfg.App.BaseURL)
	assert.Equal(t, "postgres://u:p@db:5432/directory", cfg.Database.ConnString())
	assert.Zero(t, cfg.RateLimit.RPS)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()

	err := cfg.applyEnv(mapLookup(map[string]string{
		"HTTP_ADDR":              ":7070",
		"APP_URL":                "https://cdn.example.com",
		"POSTGRES_HOST":          "db",
		"POSTGRES_PASSWORD":      "secret",
		"DB_MAX_OPEN_CONNS":      "5",
		"DB_SLOW_THRESHOLD":      "1s",
		"RATE_LIMIT_RPS":         "2.5",
		"RATE_LIMIT_TRUST_PROXY": "true",
		"LOG_LEVEL":              "debug",
	}))

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "https://cdn.example.com", cfg.App.BaseURL)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Second, cfg.Database.SlowThreshold)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.True(t, cfg.RateLimit.TrustProxy)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Contains(t, cfg.Database.ConnString(), "host=db")
	assert.Contains(t, cfg.Database.ConnString(), "password=secret")
}

func TestApplyEnvMalformed(t *testing.T) {
	cfg := Default()

	err := cfg.applyEnv(mapLookup(map[string]string{
		"DB_MAX_OPEN_CONNS":      "many",
		"HTTP_READ_TIMEOUT":      "soon",
		"RATE_LIMIT_RPS":         "fast",
		"RATE_LIMIT_TRUST_PROXY": "maybe",
		"HTTP_WRITE_TIMEOUT":     "5s",
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
	assert.Contains(t, err.Error(), "HTTP_READ_TIMEOUT")
	assert.Contains(t, err.Error(), "RATE_LIMIT_RPS")
	assert.Contains(t, err.Error(), "RATE_LIMIT_TRUST_PROXY")
	assert.Equal(t, 5*time.Second, cfg.HTTP.WriteTimeout, "valid keys are still applied")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{name: "Empty addr", modify: func(c *Config) { c.HTTP.Addr = "" }, errMsg: "http.addr"},
		{name: "Prefix with trailing slash", modify: func(c *Config) { c.HTTP.Prefix = "/api/" }, errMsg: "http.prefix"},
		{name: "Empty prefix is allowed", modify: func(c *Config) { c.HTTP.Prefix = "" }},
		{name: "Relative base url", modify: func(c *Config) { c.App.BaseURL = "localhost" }, errMsg: "app.base_url"},
		{name: "No database", modify: func(c *Config) { c.Database.Host = "" }, errMsg: "database.dsn"},
		{name: "DSN only", modify: func(c *Config) { c.Database.Host = ""; c.Database.DSN = "postgres://db" }},
		{name: "Burst required with rate", modify: func(c *Config) { c.RateLimit.Burst = 0 }, errMsg: "rate_limit.burst"},
		{name: "Rate limiting disabled", modify: func(c *Config) { c.RateLimit.RPS = 0; c.RateLimit.Burst = 0 }},
		{name: "Unknown log level", modify: func(c *Config) { c.Log.Level = "verbose" }, errMsg: "log.level"},
		{name: "Unknown log format", modify: func(c *Config) { c.Log.Format = "xml" }, errMsg: "log.format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)

			err := cfg.Validate()

			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
