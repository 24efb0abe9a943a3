// Package app assembles the similarity service from configuration.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/similar/internal/config"
	"github.com/kailas-cloud/similar/internal/db"
	dbBolt "github.com/kailas-cloud/similar/internal/db/bolt"
	"github.com/kailas-cloud/similar/internal/db/memory"
	dbRedis "github.com/kailas-cloud/similar/internal/db/redis"
	"github.com/kailas-cloud/similar/internal/domain/language"
	"github.com/kailas-cloud/similar/internal/events"
	"github.com/kailas-cloud/similar/internal/metrics"
	"github.com/kailas-cloud/similar/internal/repository/catalog"
	"github.com/kailas-cloud/similar/internal/repository/resultcache"
	chiTransport "github.com/kailas-cloud/similar/internal/transport/chi"
	healthuc "github.com/kailas-cloud/similar/internal/usecase/health"
	"github.com/kailas-cloud/similar/internal/usecase/similar"
	"github.com/kailas-cloud/similar/internal/watch"
)

// App holds the wired components. Close releases the store.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     db.Store
	Bus       *events.Bus
	Catalog   *catalog.Repo
	Importer  *catalog.Importer
	Cache     *resultcache.Cache
	Similar   *similar.Service
	Health    *healthuc.Service
	Languages language.Settings
	// Watcher is nil when no content directory is configured.
	Watcher *watch.Watcher
}

// New connects the store and builds every component on top of it.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("similar options: %w", err)
	}
	langs, err := cfg.LanguageSettings()
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}

	store, err := OpenStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterSimilarMetrics()

	bus := events.NewBus(logger)
	repo := catalog.New(store, bus).WithPrefix(cfg.Storage.KeyPrefix + "item:")
	rc := resultcache.New(store, metrics.ResultCacheTotal, logger).
		WithPrefix(cfg.Storage.KeyPrefix + "results:")
	svc := similar.New(repo, repo, rc, langs, opts, logger)
	bus.Subscribe(events.FlushOnMutation(svc))

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Bus:       bus,
		Catalog:   repo,
		Importer:  catalog.NewImporter(repo, opts.Delimiter, logger),
		Cache:     rc,
		Similar:   svc,
		Health:    healthuc.New(store),
		Languages: langs,
	}

	if dir := cfg.Content.Dir; dir != "" {
		a.Watcher = watch.New(dir, a.Importer, repo, logger)
		a.Health.WithCheck("content", healthuc.PingFunc(func(context.Context) error {
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("content dir: %w", err)
			}
			return nil
		}))
	}

	return a, nil
}

// OpenStore creates the store selected by the database driver.
func OpenStore(cfg config.DatabaseConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Username:   cfg.Username,
			Password:   cfg.Password,
			DB:         cfg.DB,
			ClientName: "similar",
		})
	case config.DriverBolt:
		store, err = dbBolt.NewStore(dbBolt.Config{Path: cfg.Path})
	case config.DriverMemory, "":
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}
	return store, nil
}

// Server builds the HTTP API on top of the wired components.
func (a *App) Server() *chiTransport.Server {
	return chiTransport.NewServer(a.Similar, a.Catalog, a.Bus, a.Health, a.Logger)
}

// LoadContent imports the content directory once. Returns 0 when none is configured.
func (a *App) LoadContent(ctx context.Context) (int, error) {
	if a.Watcher == nil {
		return 0, nil
	}
	n, err := a.Watcher.Sync(ctx)
	if err != nil {
		return n, fmt.Errorf("import %s: %w", a.Config.Content.Dir, err)
	}
	return n, nil
}

// Close releases the store.
func (a *App) Close() {
	a.Store.Close()
}
