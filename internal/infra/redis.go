package infra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

const exportKeyPrefix = "dailypos:export:"

// ExportCache keeps rendered exports of closed days. A closed day's payload
// never changes, so entries need no invalidation, only a TTL to bound memory.
type ExportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewExportCache returns nil when rdb is nil; a nil cache misses every Get
// and drops every Put.
func NewExportCache(rdb *redis.Client, ttl time.Duration) *ExportCache {
	if rdb == nil {
		return nil
	}
	return &ExportCache{rdb: rdb, ttl: ttl}
}

func (c *ExportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, exportKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("export cache: get failed")
		}
		return nil, false
	}
	return b, true
}

func (c *ExportCache) Put(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, exportKeyPrefix+key, body, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("export cache: set failed")
	}
}
