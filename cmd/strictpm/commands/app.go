package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/strictpm/core/internal/adapters/kvstore"
	"github.com/strictpm/core/internal/adapters/llm"
	"github.com/strictpm/core/internal/adapters/repository"
	"github.com/strictpm/core/internal/application/services"
	"github.com/strictpm/core/internal/infrastructure/config"
	"github.com/strictpm/core/internal/infrastructure/logger"
	"github.com/strictpm/core/internal/infrastructure/metrics"
	"github.com/strictpm/core/internal/ports"
)

// app is the wired dependency graph shared by every command.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	location *time.Location
	store    ports.KeyValueStore
	tasks    *repository.TaskStore
}

// bootstrap loads configuration, opens storage and loads the task snapshot.
// CLI commands log to stderr so stdout stays clean.
func bootstrap(ctx context.Context, cli bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cli {
		cfg.Logger.Output = "stderr"
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	tasks := repository.NewTaskStore(store, appLogger, m)
	if err := tasks.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   appLogger,
		metrics:  m,
		location: loc,
		store:    store,
		tasks:    tasks,
	}, nil
}

func (a *app) model(ctx context.Context) (ports.LanguageModel, error) {
	return llm.NewGeminiClient(ctx, a.cfg.AI, a.logger, a.metrics)
}

func (a *app) taskService() *services.TaskService {
	return services.NewTaskService(a.tasks, a.location, a.logger)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warnw("Failed to close storage", "error", err)
	}
	_ = a.logger.Close()
}
