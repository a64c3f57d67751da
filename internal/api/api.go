// Package api assembles the API module with its domain systems, middleware,
// and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/labelsort/internal/config"
	"github.com/JaimeStill/labelsort/internal/infrastructure"
	"github.com/JaimeStill/labelsort/pkg/middleware"
	"github.com/JaimeStill/labelsort/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When rate limiting is enabled, the limiter's idle-client sweep runs until
// the lifecycle context is cancelled.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	var limiter *middleware.Limiter
	if cfg.API.RateLimit.Enabled {
		limiter = middleware.NewLimiter(&cfg.API.RateLimit)
		go limiter.Run(runtime.Lifecycle.Context())
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime, limiter)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	if runtime.Verifier != nil {
		m.Use(middleware.Auth(runtime.Verifier, runtime.Logger))
	}

	return m, nil
}
