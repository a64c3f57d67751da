package api

import (
	"net/http"

	"github.com/JaimeStill/labelsort/internal/config"
	"github.com/JaimeStill/labelsort/pkg/middleware"
	"github.com/JaimeStill/labelsort/pkg/routes"
)

// registerRoutes mounts every API group. The limiter, when set, guards only
// the upload routes that run the pipeline.
func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
	limiter *middleware.Limiter,
) {
	jobs := domain.Jobs.Handler(int64(cfg.API.MaxUploadSize))

	labelRoutes := jobs.LabelRoutes()
	if limiter != nil {
		labelRoutes.Middleware = append(labelRoutes.Middleware, middleware.RateLimit(limiter, runtime.Logger))
	}

	routes.Register(
		mux,
		labelRoutes,
		jobs.JobRoutes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
