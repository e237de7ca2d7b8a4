// Package config loads the service configuration.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// a .env file in the working directory, and finally the process
// environment. Later sources win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	App       AppConfig       `yaml:"app"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	Prefix          string        `yaml:"prefix"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type AppConfig struct {
	// BaseURL prefixes stored logo paths in API responses.
	BaseURL string `yaml:"base_url"`
}

type StorageConfig struct {
	// Dir is served under /storage/ and receives seeded logos.
	Dir string `yaml:"dir"`
}

type DatabaseConfig struct {
	// DSN takes precedence over the individual connection fields.
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SlowThreshold   time.Duration `yaml:"slow_threshold"`
}

type RateLimitConfig struct {
	// RPS is the sustained per-client request rate. Zero disables limiting.
	RPS        float64 `yaml:"rps"`
	Burst      int     `yaml:"burst"`
	// TrustProxy keys clients on X-Forwarded-For instead of the peer
	// address. Enable only behind a proxy that sets the header.
	TrustProxy bool    `yaml:"trust_proxy"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			Prefix:          "/api",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		App: AppConfig{
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Dir: "storage/public",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "directory",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: time.Hour,
			SlowThreshold:   200 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. path may be empty, in which case no YAML
// file is read; a missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.setString("HTTP_ADDR", &c.HTTP.Addr)
	e.setString("HTTP_PREFIX", &c.HTTP.Prefix)
	e.setDuration("HTTP_READ_TIMEOUT", &c.HTTP.ReadTimeout)
	e.setDuration("HTTP_WRITE_TIMEOUT", &c.HTTP.WriteTimeout)
	e.setDuration("HTTP_SHUTDOWN_TIMEOUT", &c.HTTP.ShutdownTimeout)

	e.setString("APP_URL", &c.App.BaseURL)
	e.setString("STORAGE_DIR", &c.Storage.Dir)

	e.setString("DATABASE_URL", &c.Database.DSN)
	e.setString("POSTGRES_HOST", &c.Database.Host)
	e.setString("POSTGRES_PORT", &c.Database.Port)
	e.setString("POSTGRES_USER", &c.Database.User)
	e.setString("POSTGRES_PASSWORD", &c.Database.Password)
	e.setString("POSTGRES_DB", &c.Database.Name)
	e.setString("POSTGRES_SSLMODE", &c.Database.SSLMode)
	e.setInt("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	e.setInt("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	e.setDuration("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)
	e.setDuration("DB_SLOW_THRESHOLD", &c.Database.SlowThreshold)

	e.setFloat("RATE_LIMIT_RPS", &c.RateLimit.RPS)
	e.setInt("RATE_LIMIT_BURST", &c.RateLimit.Burst)
	e.setBool("RATE_LIMIT_TRUST_PROXY", &c.RateLimit.TrustProxy)

	e.setString("LOG_LEVEL", &c.Log.Level)
	e.setString("LOG_FORMAT", &c.Log.Format)

	return errors.Join(e.errs...)
}

// ConnString returns the PostgreSQL connection string.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Validate checks the config and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr must not be empty"))
	}
	if c.HTTP.Prefix != "" && (!strings.HasPrefix(c.HTTP.Prefix, "/") || strings.HasSuffix(c.HTTP.Prefix, "/")) {
		errs = append(errs, fmt.Errorf("http.prefix must start and not end with '/', got %q", c.HTTP.Prefix))
	}
	if c.HTTP.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.read_timeout must be > 0, got %s", c.HTTP.ReadTimeout))
	}
	if c.HTTP.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.write_timeout must be > 0, got %s", c.HTTP.WriteTimeout))
	}
	if c.HTTP.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("http.shutdown_timeout must be >= 0, got %s", c.HTTP.ShutdownTimeout))
	}
	if !strings.HasPrefix(c.App.BaseURL, "http://") && !strings.HasPrefix(c.App.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("app.base_url must be an http(s) URL, got %q", c.App.BaseURL))
	}
	if c.Storage.Dir == "" {
		errs = append(errs, errors.New("storage.dir must not be empty"))
	}
	if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.Name == "") {
		errs = append(errs, errors.New("database.dsn or database host and name are required"))
	}
	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("database.max_open_conns must be >= 1, got %d", c.Database.MaxOpenConns))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("database.max_idle_conns must be >= 0, got %d", c.Database.MaxIdleConns))
	}
	if c.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.rps must be >= 0, got %g", c.RateLimit.RPS))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("rate_limit.burst must be >= 1, got %d", c.RateLimit.Burst))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) setString(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) setInt(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) setFloat(key string, dst *float64) {
	if v, ok := e.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = f
	}
}

func (e *envReader) setBool(key string, dst *bool) {
	if v, ok := e.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
}

func (e *envReader) setDuration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}
