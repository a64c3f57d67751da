package config

import (
	"fmt"

	"github.com/JaimeStill/labelsort/pkg/envvar"
	"github.com/JaimeStill/labelsort/pkg/formatting"
	"github.com/JaimeStill/labelsort/pkg/middleware"
	"github.com/JaimeStill/labelsort/pkg/pagination"
)

const (
	EnvAPIBasePath      = "LABELSORT_API_BASE_PATH"
	EnvAPIMaxUploadSize = "LABELSORT_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "LABELSORT_CORS_ENABLED",
	Origins:          "LABELSORT_CORS_ORIGINS",
	AllowedMethods:   "LABELSORT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "LABELSORT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "LABELSORT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "LABELSORT_CORS_MAX_AGE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "LABELSORT_RATE_LIMIT_ENABLED",
	RequestsPerMinute: "LABELSORT_RATE_LIMIT_REQUESTS_PER_MINUTE",
	Burst:             "LABELSORT_RATE_LIMIT_BURST",
	IdleTTL:           "LABELSORT_RATE_LIMIT_IDLE_TTL",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "LABELSORT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "LABELSORT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, CORS, rate limiting, and pagination.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize formatting.ByteSize        `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
	Pagination    pagination.Config          `toml:"pagination"`
}

// Finalize applies defaults, environment overrides, and validation for the
// API config and its nested configs.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 50 << 20
	}

	envvar.String(&c.BasePath, EnvAPIBasePath)
	var size string
	envvar.String(&size, EnvAPIMaxUploadSize)
	if size != "" {
		if err := c.MaxUploadSize.UnmarshalText([]byte(size)); err != nil {
			return fmt.Errorf("max_upload_size: %w", err)
		}
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != 0 {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Pagination.Merge(&overlay.Pagination)
}
