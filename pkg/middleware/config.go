package middleware

import (
	"fmt"
	"time"

	"github.com/JaimeStill/labelsort/pkg/envvar"
)

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv maps CORS config fields to environment variable names for override injection.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults and environment variable overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if env != nil {
		envvar.Bool(&c.Enabled, env.Enabled)
		envvar.List(&c.Origins, env.Origins)
		envvar.List(&c.AllowedMethods, env.AllowedMethods)
		envvar.List(&c.AllowedHeaders, env.AllowedHeaders)
		envvar.Bool(&c.AllowCredentials, env.AllowCredentials)
		envvar.Int(&c.MaxAge, env.MaxAge)
	}
	return nil
}

// Merge overwrites fields from overlay. Boolean fields always apply; slice and int
// fields only apply when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

// RateLimitConfig bounds requests per client address.
type RateLimitConfig struct {
	Enabled bool `toml:"enabled"`
	// RequestsPerMinute is the sustained rate allowed per client.
	RequestsPerMinute int `toml:"requests_per_minute"`
	Burst             int `toml:"burst"`
	// IdleTTL is how long an idle client's limiter is retained.
	IdleTTL string `toml:"idle_ttl"`
}

// RateLimitEnv maps rate limit fields to environment variable names.
type RateLimitEnv struct {
	Enabled           string
	RequestsPerMinute string
	Burst             string
	IdleTTL           string
}

// IdleTTLDuration returns IdleTTL as a time.Duration.
func (c *RateLimitConfig) IdleTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 60
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if c.IdleTTL == "" {
		c.IdleTTL = "10m"
	}

	if env != nil {
		envvar.Bool(&c.Enabled, env.Enabled)
		envvar.Int(&c.RequestsPerMinute, env.RequestsPerMinute)
		envvar.Int(&c.Burst, env.Burst)
		envvar.String(&c.IdleTTL, env.IdleTTL)
	}

	if c.RequestsPerMinute < 1 || c.Burst < 1 {
		return fmt.Errorf("requests_per_minute and burst must be positive")
	}
	if _, err := time.ParseDuration(c.IdleTTL); err != nil {
		return fmt.Errorf("invalid idle_ttl: %w", err)
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	c.Enabled = overlay.Enabled
	if overlay.RequestsPerMinute > 0 {
		c.RequestsPerMinute = overlay.RequestsPerMinute
	}
	if overlay.Burst > 0 {
		c.Burst = overlay.Burst
	}
	if overlay.IdleTTL != "" {
		c.IdleTTL = overlay.IdleTTL
	}
}

// AuthConfig enables OIDC bearer-token authentication.
type AuthConfig struct {
	Enabled  bool   `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
}

// AuthEnv maps auth fields to environment variable names.
type AuthEnv struct {
	Enabled  string
	Issuer   string
	ClientID string
}

// Finalize applies environment variable overrides and validation.
func (c *AuthConfig) Finalize(env *AuthEnv) error {
	if env != nil {
		envvar.Bool(&c.Enabled, env.Enabled)
		envvar.String(&c.Issuer, env.Issuer)
		envvar.String(&c.ClientID, env.ClientID)
	}

	if c.Enabled && (c.Issuer == "" || c.ClientID == "") {
		return fmt.Errorf("issuer and client_id required when auth is enabled")
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}
