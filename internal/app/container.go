// Package app assembles the service graph.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/config"
	"github.com/feifeixp/neocore-go/internal/server"
	"github.com/feifeixp/neocore-go/internal/service/ai"
	"github.com/feifeixp/neocore-go/internal/service/cache"
	"github.com/feifeixp/neocore-go/internal/service/database"
	"github.com/feifeixp/neocore-go/internal/service/generator"
	"github.com/feifeixp/neocore-go/internal/service/registry"
	"github.com/feifeixp/neocore-go/internal/service/storage"
)

// Container bundles the assembled services and their teardown order.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Server *server.Server
	Hub    *server.Hub

	closers []func()
}

// Close tears services down in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure. Redis, Postgres, and the AI enhancer
// are attached only when configured; the file store always runs.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	store, err := storage.NewStore(cfg.Storage.BaseDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}

	checks := make(map[string]server.HealthCheck)

	var docCache server.DocumentCache
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		c.closers = append(c.closers, func() { _ = cacheSvc.Close() })
		docCache = cacheSvc
		checks["redis"] = func(ctx context.Context) any {
			if cacheSvc.IsConnected(ctx) {
				return "up"
			}
			return "down"
		}
	}

	var charStore generator.CharacterStore = store
	var reader server.WorldReader = store
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		c.closers = append(c.closers, func() { _ = postgresSvc.Close() })
		checks["postgres"] = func(ctx context.Context) any {
			if pingErr := postgresSvc.Ping(ctx); pingErr != nil {
				return pingErr.Error()
			}
			return "up"
		}

		repo := registry.NewRepository(postgresSvc, logger)
		if schemaErr := repo.EnsureSchema(ctx); schemaErr != nil {
			return nil, schemaErr
		}
		charStore = registry.NewIndexedStore(store, repo, logger)
		reader = registry.NewIndexedReader(store, repo, logger)
	}

	var enhancer generator.DescriptionEnhancer
	aiEnhancer, err := ai.NewEnhancer(ctx, cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create enhancer: %w", err)
	}
	if aiEnhancer != nil {
		enhancer = aiEnhancer
		checks["enhancer"] = func(ctx context.Context) any {
			return aiEnhancer.CircuitStatus()
		}
	}

	hub := server.NewHub(logger)
	c.closers = append(c.closers, func() { _ = hub.Close() })
	c.Hub = hub

	gen := generator.New(charStore, enhancer, hub, cfg.Generator, logger)

	c.Server = server.New(cfg.Server, gen, reader, docCache, hub, logger)
	for name, check := range checks {
		c.Server.AddHealthCheck(name, check)
	}
	return c, nil
}
