// Package app wires configuration, storage, cache and services together.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ougirez/cbmreport/internal/api"
	"github.com/ougirez/cbmreport/internal/pkg/config"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
	"github.com/ougirez/cbmreport/internal/service/cache"
	"github.com/ougirez/cbmreport/internal/service/catalog"
	"github.com/ougirez/cbmreport/internal/service/ingest"
	"github.com/ougirez/cbmreport/internal/service/report"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg   *config.Config
	pool  *xpgx.Pool
	redis *redis.Client

	Ingest  *ingest.Service
	Catalog *catalog.Service
	Report  *report.Service

	api  *api.APIService
	done chan struct{}
}

// New connects to Postgres (and Redis when configured), applies migrations
// if enabled and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	pool, err := xpgx.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxConns, cfg.DB.ConnectRetries)
	if err != nil {
		return nil, fmt.Errorf("xpgx.Connect: %w", err)
	}

	if cfg.DB.Automigrate {
		if err = store.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("store.Migrate: %w", err)
		}
	}

	a := &App{cfg: cfg, pool: pool, done: make(chan struct{})}

	var c cache.Cache
	switch strings.ToLower(cfg.Cache.Backend) {
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err = a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		c = cache.NewRedis(a.redis, cfg.Redis.Prefix)
	case "", "memory":
		c = cache.NewMemory()
	default:
		a.Close()
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	logger.Infof(ctx, "using %s report cache", cfg.Cache.Backend)

	st := store.NewStore(pool)
	a.Catalog = catalog.NewService(st, c, cfg.Catalog.ChunkSize)
	a.Ingest = ingest.NewService(st, a.Catalog, c, cfg.Ingest.ChunkSize)
	a.Report = report.NewService(st, c, validator.New())

	return a, nil
}

// Start serves the HTTP API in the background; Done is closed when it stops.
func (a *App) Start(ctx context.Context) {
	a.api = api.NewAPIService(
		api.Options{
			AllowOrigins: a.cfg.HTTP.AllowOrigins,
			Debug:        strings.EqualFold(a.cfg.Logger.Level, "debug"),
		},
		validator.New(),
		a.Ingest,
		a.Catalog,
		a.Report,
	)

	go func() {
		defer close(a.done)
		if err := a.api.Serve(a.cfg.HTTP.Addr); err != nil {
			logger.Errorf(ctx, "http server: %s", err.Error())
		}
	}()
}

func (a *App) Done() <-chan struct{} {
	return a.done
}

// Stop shuts the HTTP server down gracefully and releases connections.
func (a *App) Stop(ctx context.Context) {
	if a.api != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := a.api.Shutdown(shutdownCtx); err != nil {
			logger.Errorf(ctx, "http shutdown: %s", err.Error())
		}
	}
	a.Close()
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.pool.Close()
}
