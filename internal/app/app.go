// Package app assembles the pipeline and its collaborators from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulseboard/social-listener/internal/aggregation"
	"github.com/pulseboard/social-listener/internal/analysis"
	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/database"
	"github.com/pulseboard/social-listener/internal/llm"
	"github.com/pulseboard/social-listener/internal/notifications"
	"github.com/pulseboard/social-listener/internal/pipeline"
	"github.com/pulseboard/social-listener/internal/sources"
	"github.com/pulseboard/social-listener/internal/storage"
	"github.com/sirupsen/logrus"
)

var (
	_ pipeline.Store    = (*database.Store)(nil)
	_ aggregation.Store = (*database.Store)(nil)
)

// App holds the wired components shared by the server and the CLI
type App struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	Store     *database.Store
	Collector *sources.Collector
	Archive   storage.StorageInterface
	Pipeline  *pipeline.Service
}

// NewSources creates the collectors for every supported platform
func NewSources(cfg *config.Config) []sources.Source {
	return []sources.Source{
		sources.NewRedditSource(sources.RedditOptions{
			ClientID:     cfg.RedditClientID,
			ClientSecret: cfg.RedditClientSecret,
			Subreddits:   cfg.RedditSubreddits,
			Keywords:     cfg.Keywords,
			Pause:        cfg.RedditPause,
		}),
		sources.NewHackerNewsSource(cfg.Keywords, cfg.HNStoriesPerList),
		sources.NewBlueskySource(sources.BlueskyOptions{
			Keywords:     cfg.Keywords,
			KeywordLimit: cfg.BlueskyKeywordLimit,
			Pause:        cfg.BlueskyPause,
		}),
	}
}

// New connects to the database, applies migrations when enabled and wires the pipeline.
// The archive and notification channels are optional and only attached when configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	generator, err := llm.New(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create language model client: %w", err)
	}
	logrus.Infof("Using language model %s", generator.Name())

	store := database.NewStore(pool)
	collector := sources.NewCollector(NewSources(cfg)...)

	a := &App{
		Config:    cfg,
		Pool:      pool,
		Store:     store,
		Collector: collector,
		Pipeline: pipeline.NewService(cfg, store, collector,
			analysis.NewAnalyzer(generator), aggregation.NewService(store)),
	}

	if cfg.StorageAccount != "" {
		archive, err := storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Errorf("Archive disabled, failed to initialize storage: %v", err)
		} else {
			a.Archive = archive
			a.Pipeline.WithArchive(archive)
		}
	}

	if cfg.NotificationsEnabled() {
		a.Pipeline.WithNotifier(notifications.NewService(cfg))
	}

	return a, nil
}

// Close releases the database pool
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
