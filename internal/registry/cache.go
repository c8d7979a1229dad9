package registry

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const routeCacheKey = "registry:active_routes"

// RouteCache keeps the active-route set in Redis so the order and customer
// paths do not hit the routes table on every validation. Refills are guarded
// by singleflight so a cold cache triggers a single database query.
type RouteCache struct {
	client *redis.Client
	repo   Repository
	logger *slog.Logger
	ttl    time.Duration
	group  singleflight.Group
}

// NewRouteCache constructs a RouteCache. A nil client disables caching and
// every call falls through to the repository.
func NewRouteCache(client *redis.Client, repo Repository, logger *slog.Logger, ttl time.Duration) *RouteCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RouteCache{client: client, repo: repo, logger: logger, ttl: ttl}
}

// ActiveRoutes returns the active routes, from cache when possible.
func (c *RouteCache) ActiveRoutes(ctx context.Context) ([]Route, error) {
	if c.client == nil {
		return c.repo.ListRoutes(ctx, true)
	}

	payload, err := c.client.Get(ctx, routeCacheKey).Bytes()
	if err == nil {
		var routes []Route
		if err := json.Unmarshal(payload, &routes); err == nil {
			return routes, nil
		}
		c.logger.Warn("route cache payload corrupt, refilling")
	}

	result, err, _ := c.group.Do(routeCacheKey, func() (any, error) {
		routes, err := c.repo.ListRoutes(ctx, true)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(routes)
		if err == nil {
			if err := c.client.Set(ctx, routeCacheKey, data, c.ttl).Err(); err != nil {
				c.logger.Warn("route cache set failed", "error", err)
			}
		}
		return routes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Route), nil
}

// Invalidate drops the cached route set. Called after any route mutation.
func (c *RouteCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, routeCacheKey).Err(); err != nil {
		c.logger.Warn("route cache invalidate failed", "error", err)
	}
}
