package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/constants"
	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

// CacheService fronts the file store with Redis. Every method is a no-op
// passthrough failure at worst; callers always fall back to the store.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// Cache keys.
func WorldListKey() string               { return "neocore:worlds" }
func WorldKey(worldID string) string     { return "neocore:world:" + worldID }
func WorldDescKey(worldID string) string { return "neocore:world:" + worldID + ":desc" }

func CharacterListKey(worldID string) string {
	return "neocore:world:" + worldID + ":characters"
}
func CharacterDescKey(worldID, soulID string) string {
	return "neocore:world:" + worldID + ":character:" + soulID + ":desc"
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) error {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // Key doesn't exist - not an error
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("get failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
			return errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	if err := c.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}

	return nil
}

func (c *CacheService) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.Strings("keys", keys), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", keys[0], err)
	}
	return nil
}

// GetWorldList returns the cached world summaries, or (nil, false) on miss.
func (c *CacheService) GetWorldList(ctx context.Context) ([]domain.WorldSummary, bool) {
	var worlds []domain.WorldSummary
	if err := c.Get(ctx, WorldListKey(), &worlds); err != nil {
		return nil, false
	}
	if worlds == nil {
		return nil, false
	}
	return worlds, true
}

func (c *CacheService) SetWorldList(ctx context.Context, worlds []domain.WorldSummary) {
	if err := c.Set(ctx, WorldListKey(), worlds, constants.CacheTTL.WorldList); err != nil {
		c.logger.Error("Failed to cache world list", zap.Error(err))
	}
}

// GetDescription returns a cached Markdown document, or ("", false) on miss.
func (c *CacheService) GetDescription(ctx context.Context, key string) (string, bool) {
	var doc string
	if err := c.Get(ctx, key, &doc); err != nil || doc == "" {
		return "", false
	}
	return doc, true
}

func (c *CacheService) SetDescription(ctx context.Context, key, doc string) {
	if err := c.Set(ctx, key, doc, constants.CacheTTL.Description); err != nil {
		c.logger.Error("Failed to cache description", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateWorld drops every cached entry derived from a world, the world
// list included.
func (c *CacheService) InvalidateWorld(ctx context.Context, worldID string) {
	keys := []string{
		WorldListKey(),
		WorldKey(worldID),
		WorldDescKey(worldID),
		CharacterListKey(worldID),
	}
	if err := c.Del(ctx, keys...); err != nil {
		c.logger.Error("Failed to invalidate world cache", zap.String("world_id", worldID), zap.Error(err))
	}
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	c.logger.Info("Redis disconnected")
	return nil
}
