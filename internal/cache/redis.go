package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skyreserve/config"
	"github.com/Domenick1991/skyreserve/internal/domain"
	"github.com/redis/go-redis/v9"
)

const catalogVersionKey = "cache:catalog:version"

// RedisCache stores catalog search pages. Keys embed the catalog version, so
// bumping the version after a committed reservation orphans every cached page
// and the TTL reclaims them.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, searchTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, searchTTL: searchTTL}
}

func (c *RedisCache) CatalogVersion(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get catalog version: %w", err)
	}
	return v, nil
}

func (c *RedisCache) BumpCatalogVersion(ctx context.Context) error {
	if err := c.client.Incr(ctx, catalogVersionKey).Err(); err != nil {
		return fmt.Errorf("bump catalog version: %w", err)
	}
	return nil
}

// GetSearch returns nil, nil on a miss.
func (c *RedisCache) GetSearch(ctx context.Context, version int64, key string) (*domain.FlightPage, error) {
	data, err := c.client.Get(ctx, searchKey(version, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var page domain.FlightPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode cached page: %w", err)
	}
	return &page, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, version int64, key string, page *domain.FlightPage) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(version, key), payload, c.searchTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func searchKey(version int64, key string) string {
	return fmt.Sprintf("cache:flights:v%d:%s", version, key)
}
