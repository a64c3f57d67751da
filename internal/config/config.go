package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/labelsort/pkg/database"
	"github.com/JaimeStill/labelsort/pkg/envvar"
	"github.com/JaimeStill/labelsort/pkg/middleware"
	"github.com/JaimeStill/labelsort/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLabelsortEnv             = "LABELSORT_ENV"
	EnvLabelsortShutdownTimeout = "LABELSORT_SHUTDOWN_TIMEOUT"
	EnvLabelsortVersion         = "LABELSORT_VERSION"
	EnvLabelsortLogLevel        = "LABELSORT_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	URL:             "LABELSORT_DB_URL",
	Host:            "LABELSORT_DB_HOST",
	Port:            "LABELSORT_DB_PORT",
	Name:            "LABELSORT_DB_NAME",
	User:            "LABELSORT_DB_USER",
	Password:        "LABELSORT_DB_PASSWORD",
	SSLMode:         "LABELSORT_DB_SSL_MODE",
	MaxOpenConns:    "LABELSORT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LABELSORT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LABELSORT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LABELSORT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "LABELSORT_STORAGE_PROVIDER",
	Root:             "LABELSORT_STORAGE_ROOT",
	ContainerName:    "LABELSORT_STORAGE_CONTAINER_NAME",
	ConnectionString: "LABELSORT_STORAGE_CONNECTION_STRING",
	ServiceURL:       "LABELSORT_STORAGE_SERVICE_URL",
	MaxRetries:       "LABELSORT_STORAGE_MAX_RETRIES",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "LABELSORT_AUTH_ENABLED",
	Issuer:   "LABELSORT_AUTH_ISSUER",
	ClientID: "LABELSORT_AUTH_CLIENT_ID",
}

// Config is the root configuration for the labelsort service.
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        database.Config       `toml:"database"`
	Storage         storage.Config        `toml:"storage"`
	API             APIConfig             `toml:"api"`
	Auth            middleware.AuthConfig `toml:"auth"`
	Labels          LabelsConfig          `toml:"labels"`
	ShutdownTimeout string                `toml:"shutdown_timeout"`
	Version         string                `toml:"version"`
	LogLevel        string                `toml:"log_level"`
}

// Env returns the LABELSORT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLabelsortEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads config.toml when present, merges the config.<env>.toml overlay
// selected by LABELSORT_ENV, and finalizes every section. Without any files,
// defaults and environment variables supply the configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Labels.Merge(&overlay.Labels)
}

// Finalize applies defaults, environment overrides, and validation to the
// root values and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Labels.Finalize(); err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	envvar.String(&c.ShutdownTimeout, EnvLabelsortShutdownTimeout)
	envvar.String(&c.Version, EnvLabelsortVersion)
	envvar.String(&c.LogLevel, EnvLabelsortLogLevel)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLabelsortEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
