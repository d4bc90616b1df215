package clinicdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

const (
	cacheKeyPrefix  = "clinicbot:lookup:"
	defaultCacheTTL = 5 * time.Minute
)

// CachedStore is a read-through Redis cache over the slow-changing
// collections. Appointment reads always go to the underlying store.
// Cache failures are logged and never fail a read.
type CachedStore struct {
	Store
	redis  redis.Cmdable
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedStore wraps store. A zero ttl uses five minutes.
func NewCachedStore(store Store, client redis.Cmdable, ttl time.Duration, logger *logging.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedStore{Store: store, redis: client, ttl: ttl, logger: logger}
}

// Specialties caches the distinct specialty list.
func (c *CachedStore) Specialties(ctx context.Context) ([]string, error) {
	return readThrough(ctx, c, "specialties", func() ([]string, error) {
		return c.Store.Specialties(ctx)
	})
}

// Services caches the price list per name filter.
func (c *CachedStore) Services(ctx context.Context, nameContains string) ([]Service, error) {
	return readThrough(ctx, c, "services:"+nameContains, func() ([]Service, error) {
		return c.Store.Services(ctx, nameContains)
	})
}

// Statistics caches rows per exact filter.
func (c *CachedStore) Statistics(ctx context.Context, filter StatisticFilter) ([]Statistic, error) {
	key := fmt.Sprintf("statistics:%s:%s:%s", filter.Category, filter.Name, filter.Period)
	return readThrough(ctx, c, key, func() ([]Statistic, error) {
		return c.Store.Statistics(ctx, filter)
	})
}

// MedicalInfo caches the article list.
func (c *CachedStore) MedicalInfo(ctx context.Context, limit int) ([]MedicalInfo, error) {
	return readThrough(ctx, c, fmt.Sprintf("medical_info:%d", limit), func() ([]MedicalInfo, error) {
		return c.Store.MedicalInfo(ctx, limit)
	})
}

func readThrough[T any](ctx context.Context, c *CachedStore, key string, load func() (T, error)) (T, error) {
	fullKey := cacheKeyPrefix + key
	raw, err := c.redis.Get(ctx, fullKey).Bytes()
	switch {
	case err == nil:
		var cached T
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("clinicdata: discarding unreadable cache entry", "key", fullKey, "error", jsonErr)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("clinicdata: cache read failed", "key", fullKey, "error", err)
	}

	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	if data, err := json.Marshal(value); err == nil {
		if err := c.redis.Set(ctx, fullKey, data, c.ttl).Err(); err != nil {
			c.logger.Warn("clinicdata: cache write failed", "key", fullKey, "error", err)
		}
	}
	return value, nil
}
