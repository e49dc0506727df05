// Package cache stores computed dashboard reports in Redis. Entries are keyed
// by a version counter; lead mutations bump the counter so stale reports are
// never read again and simply expire.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadportal_backend/internal/events"
	"leadportal_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "report:"
	versionKey = keyPrefix + "version"
)

// RedisCache is a versioned report cache. A nil *RedisCache never hits.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient opens a Redis client for cfg. It returns nil when Redis is not configured.
func NewClient(cfg config.ReportingConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// New creates a cache with the given entry lifetime. A nil client or a
// non-positive ttl disables caching.
func New(client *redis.Client, ttl time.Duration) *RedisCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Key joins the identifying parts of one report request.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Get decodes the cached report for key into dst and reports whether it was found.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}
	full, err := c.versioned(ctx, key)
	if err != nil {
		return false, err
	}

	raw, err := c.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached report: %w", err)
	}
	return true, nil
}

// Set stores report under key for the configured ttl.
func (c *RedisCache) Set(ctx context.Context, key string, report any) error {
	if c == nil {
		return nil
	}
	full, err := c.versioned(ctx, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return c.client.Set(ctx, full, raw, c.ttl).Err()
}

// Bump invalidates every cached report.
func (c *RedisCache) Bump(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}

// Subscribe bumps the version whenever reportable lead data changes.
func (c *RedisCache) Subscribe(bus events.Subscriber) {
	if c == nil {
		return
	}
	handler := events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		return c.Bump(ctx)
	})
	for _, name := range events.MutationEventNames() {
		bus.Subscribe(name, handler)
	}
}

func (c *RedisCache) versioned(ctx context.Context, key string) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		version = 0
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sv%d:%s", keyPrefix, version, key), nil
}
