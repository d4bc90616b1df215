package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	appconfig "github.com/wolfman30/clinic-chat-assistant/internal/config"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// DataLayer is the read side the lookups run against.
type DataLayer struct {
	Store clinicdata.Store
	// Pool is nil when the in-memory sample dataset is served.
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// Ping reports whether the database answers. The sample dataset always does.
func (d *DataLayer) Ping(ctx context.Context) error {
	if d == nil || d.Store == nil {
		return clinicdata.ErrUnavailable
	}
	if d.Pool == nil {
		return nil
	}
	return d.Pool.Ping(ctx)
}

func (d *DataLayer) Close() {
	if d == nil {
		return
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

// BuildDataLayer connects to Postgres and wraps it with the Redis cache when
// one is given. Without DATABASE_URL the sample dataset is served, which is
// only meant for local development.
func BuildDataLayer(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (*DataLayer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("bootstrap: DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL not set; serving the sample clinic dataset")
		return &DataLayer{
			Store: clinicdata.NewMemoryStore(clinicdata.SampleData(time.Now().UTC())),
			Redis: redisClient,
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Warn("postgres not reachable at startup; lookups will fall through until it is", "error", err)
	}

	var store clinicdata.Store = clinicdata.NewPostgresStore(pool)
	if redisClient != nil {
		store = clinicdata.NewCachedStore(store, redisClient, cfg.LookupCacheTTL, logger)
		logger.Info("lookup cache enabled", "ttl", cfg.LookupCacheTTL.String())
	}
	return &DataLayer{Store: store, Pool: pool, Redis: redisClient}, nil
}
