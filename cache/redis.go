// Package cache is an optional Redis-backed ephemeral cache, used to avoid
// re-running specialist delegation for an identical recent turn. Grounded on
// the retrieved pack's manifold repo (internal/skills/redis_cache.go):
// a thin wrapper around redis.UniversalClient with a nil-receiver no-op
// pattern, so callers can hold a *Cache unconditionally and unavailability
// degrades caching only, never the request path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/errs"
)

// Cache wraps a Redis client scoped to one TTL. A nil *Cache is valid and
// every method degrades to a no-op / cache miss.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New connects to the configured Redis instance and pings it once to fail
// fast on misconfiguration.
func New(ctx context.Context, cfg config.CacheConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "cache: ping redis", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func delegationKey(userID, conversationID, message string) string {
	return fmt.Sprintf("delegation:%s:%s:%x", userID, conversationID, []byte(message))
}

// GetDelegation returns a previously cached specialist response for an
// identical (user, conversation, message) turn, if one exists.
func (c *Cache) GetDelegation(ctx context.Context, userID, conversationID, message string, out any) bool {
	if c == nil || c.client == nil {
		return false
	}
	key := delegationKey(userID, conversationID, message)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("cache get delegation error", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		slog.Debug("cache unmarshal delegation error", "key", key, "error", err)
		return false
	}
	return true
}

// SetDelegation caches a specialist response for an (user, conversation,
// message) turn under the configured TTL.
func (c *Cache) SetDelegation(ctx context.Context, userID, conversationID, message string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errs.Wrap(errs.InvalidInput, "cache: marshal delegation", err)
	}
	key := delegationKey(userID, conversationID, message)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Debug("cache set delegation error", "key", key, "error", err)
		return errs.Wrap(errs.Unavailable, "cache: set delegation", err)
	}
	return nil
}

// InvalidateConversation drops every cached delegation for one conversation,
// used when the supervisor workflow marks it complete.
func (c *Cache) InvalidateConversation(ctx context.Context, userID, conversationID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	pattern := fmt.Sprintf("delegation:%s:%s:*", userID, conversationID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Debug("cache invalidate error", "key", iter.Val(), "error", err)
		}
	}
	return iter.Err()
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
