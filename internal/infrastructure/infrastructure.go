// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, blob storage, model
// agents, context lookups) that domain systems require.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/agents"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/catalog"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/config"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/database"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/geocode"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/lifecycle"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/metrics"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/storage"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/weather"
)

// Infrastructure holds the core systems required by all domain modules.
// Reasoner is nil when the reasoning provider is "none".
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Storage    storage.System
	Metrics    *metrics.Recorder
	Classifier *agents.Agent
	Reasoner   *agents.Agent
	Weather    weather.Client
	Geocode    geocode.Client
	Catalog    *catalog.Catalog
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	classifier, err := agents.New(lc.Context(), &cfg.Classifier, logger)
	if err != nil {
		return nil, fmt.Errorf("classifier init failed: %w", err)
	}

	reasoner, err := agents.New(lc.Context(), &cfg.Reasoning, logger)
	if err != nil && !errors.Is(err, agents.ErrDisabled) {
		return nil, fmt.Errorf("reasoner init failed: %w", err)
	}
	if reasoner == nil {
		logger.Warn("reasoning provider disabled; verification passes through and chat is unavailable")
	}

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Database:   db,
		Storage:    store,
		Metrics:    metrics.New(),
		Classifier: classifier,
		Reasoner:   reasoner,
		Weather:    weather.New(&cfg.Weather),
		Geocode:    geocode.New(&cfg.Geocode),
		Catalog:    catalog.Default(),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// Ping checks the database. Storage readiness is covered by the startup hook.
func (i *Infrastructure) Ping(ctx context.Context) error {
	return i.Database.Ping(ctx)
}
