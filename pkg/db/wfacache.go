package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

const wfaStatusCacheKey = "referral-matcher:wfa-statuses"

// redisKV is the subset of the redis client used by the cache
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient creates and verifies a Redis client connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

// CachedWFAStatusStore is a read-through Redis cache in front of a WFAStatusStore.
// Redis failures are logged and fall through to the underlying store.
type CachedWFAStatusStore struct {
	next   WFAStatusStore
	rdb    redisKV
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedWFAStatusStore wraps next with a cache entry that lives for ttl
func NewCachedWFAStatusStore(next WFAStatusStore, rdb redisKV, ttl time.Duration, logger *zap.Logger) *CachedWFAStatusStore {
	return &CachedWFAStatusStore{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedWFAStatus struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	SortOrder *int   `json:"sortOrder"`
}

// ListWFAStatuses returns the cached table, loading it from the underlying store on a miss
func (c *CachedWFAStatusStore) ListWFAStatuses(ctx context.Context) ([]model.WFAStatus, error) {
	raw, err := c.rdb.Get(ctx, wfaStatusCacheKey).Result()
	switch {
	case err == nil:
		statuses, decodeErr := decodeWFAStatuses(raw)
		if decodeErr == nil {
			c.logger.Debug("WFA statuses served from cache", zap.Int("count", len(statuses)))
			return statuses, nil
		}
		c.logger.Warn("Discarding unreadable WFA status cache entry", zap.Error(decodeErr))
	case errors.Is(err, redis.Nil):
		c.logger.Debug("WFA status cache miss")
	default:
		c.logger.Warn("WFA status cache read failed, using database", zap.Error(err))
	}

	return c.load(ctx)
}

// RefreshWFAStatuses drops the cached table and reloads it from the underlying store
func (c *CachedWFAStatusStore) RefreshWFAStatuses(ctx context.Context) ([]model.WFAStatus, error) {
	if err := c.Invalidate(ctx); err != nil {
		c.logger.Warn("WFA status cache invalidation failed", zap.Error(err))
	}
	return c.load(ctx)
}

// load reads the table from the underlying store and writes it back to the cache
func (c *CachedWFAStatusStore) load(ctx context.Context) ([]model.WFAStatus, error) {
	statuses, err := c.next.ListWFAStatuses(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := encodeWFAStatuses(statuses)
	if err != nil {
		c.logger.Warn("Failed to encode WFA statuses for cache", zap.Error(err))
		return statuses, nil
	}
	if err := c.rdb.Set(ctx, wfaStatusCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("WFA status cache write failed", zap.Error(err))
	}

	return statuses, nil
}

// Invalidate drops the cached table so the next read goes to the database
func (c *CachedWFAStatusStore) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, wfaStatusCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate wfa status cache: %w", err)
	}
	return nil
}

func encodeWFAStatuses(statuses []model.WFAStatus) (string, error) {
	entries := make([]cachedWFAStatus, len(statuses))
	for i, s := range statuses {
		entries[i] = cachedWFAStatus{ID: s.ID, Code: s.Code, Name: s.Name, SortOrder: s.SortOrder}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeWFAStatuses(raw string) ([]model.WFAStatus, error) {
	var entries []cachedWFAStatus
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	statuses := make([]model.WFAStatus, len(entries))
	for i, e := range entries {
		statuses[i] = model.WFAStatus{ID: e.ID, Code: e.Code, Name: e.Name, SortOrder: e.SortOrder}
	}
	return statuses, nil
}
