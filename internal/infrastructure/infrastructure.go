// Package infrastructure assembles the shared systems every domain module
// depends on: logging, lifecycle coordination, database, blob storage,
// token verification, and the label sorter.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/labelsort/internal/config"
	"github.com/JaimeStill/labelsort/pkg/database"
	"github.com/JaimeStill/labelsort/pkg/labels"
	"github.com/JaimeStill/labelsort/pkg/lifecycle"
	"github.com/JaimeStill/labelsort/pkg/middleware"
	"github.com/JaimeStill/labelsort/pkg/storage"
)

const discoveryTimeout = 15 * time.Second

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Sorter    *labels.Sorter
	// Verifier is nil when authentication is disabled.
	Verifier middleware.TokenVerifier
}

// New creates an Infrastructure that logs to stderr.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates an Infrastructure whose logger writes to w. Systems
// are initialized but not started; call Start separately.
func NewWithWriter(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	sorter, err := labels.New(
		cfg.Labels.Rules(),
		labels.WithObserver(labels.LogObserver(logger.With("system", "labels"))),
	)
	if err != nil {
		return nil, fmt.Errorf("labels init failed: %w", err)
	}

	var verifier middleware.TokenVerifier
	if cfg.Auth.Enabled {
		ctx, cancel := context.WithTimeout(lc.Context(), discoveryTimeout)
		defer cancel()

		verifier, err = middleware.NewOIDCVerifier(ctx, cfg.Auth.Issuer, cfg.Auth.ClientID)
		if err != nil {
			return nil, fmt.Errorf("auth init failed: %w", err)
		}
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Sorter:    sorter,
		Verifier:  verifier,
	}, nil
}

// Start registers database and storage hooks with the lifecycle coordinator
// and the database as a readiness check.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	i.Lifecycle.Check("database", i.Database)
	return nil
}
