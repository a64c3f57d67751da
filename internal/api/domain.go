package api

import (
	"github.com/JaimeStill/labelsort/internal/config"
	"github.com/JaimeStill/labelsort/internal/jobs"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Jobs jobs.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	return &Domain{
		Jobs: jobs.New(
			runtime.Database.Connection(),
			runtime.Storage,
			runtime.Sorter,
			runtime.Logger,
			runtime.Pagination,
			cfg.Labels.MaxConcurrentSorts,
		),
	}
}
