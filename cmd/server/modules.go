package main

import (
	"net/http"

	"github.com/JaimeStill/labelsort/internal/api"
	"github.com/JaimeStill/labelsort/internal/config"
	"github.com/JaimeStill/labelsort/internal/infrastructure"
	"github.com/JaimeStill/labelsort/pkg/handlers"
	"github.com/JaimeStill/labelsort/pkg/middleware"
	"github.com/JaimeStill/labelsort/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type readiness struct {
	Status  string          `json:"status"`
	Version string          `json:"version"`
	Checks  map[string]bool `json:"checks"`
}

func buildRouter(infra *infrastructure.Infrastructure, version string) *module.Router {
	router := module.NewRouter()
	router.Use(middleware.Recover(infra.Logger))

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		body := readiness{
			Status:  "ready",
			Version: version,
			Checks:  infra.Lifecycle.Readiness(),
		}
		if !infra.Lifecycle.Ready() {
			body.Status = "not ready"
			handlers.RespondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, body)
	})

	return router
}
