package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"icmasure/internal/config"
	"icmasure/internal/logging"
)

// Redis is nil when REDIS_ADDR is unset or the server is unreachable;
// every helper treats that as a cache miss, never a failure.
var Redis *redis.Client

func Init() {
	addr := config.Getenv("REDIS_ADDR", "")
	if addr == "" {
		logging.L().Infow("redis disabled (REDIS_ADDR unset)")
		return
	}

	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Getenv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		logging.L().Warnw("redis unreachable, running without cache", "addr", addr, "err", err)
		return
	}

	Redis = c
	logging.L().Infow("redis connected", "addr", addr)
}

// GetJSON loads key into dst. Returns false on miss, disabled cache, or
// a stale payload that no longer unmarshals.
func GetJSON(ctx context.Context, key string, dst any) bool {
	if Redis == nil {
		return false
	}
	raw, err := Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON stores v under key with a TTL. Errors are logged and swallowed;
// the cache is an optimization, not a dependency.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if Redis == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := Redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		logging.L().Debugw("cache set failed", "key", key, "err", err)
	}
}

// CountView bumps a page-view counter and returns the running total.
// Returns 0 with ok=false when the cache is disabled.
func CountView(ctx context.Context, page string) (int64, bool) {
	if Redis == nil {
		return 0, false
	}
	key := "page_views:" + page
	if err := Redis.Incr(ctx, key).Err(); err != nil {
		return 0, false
	}
	n, err := Redis.Get(ctx, key).Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// Invalidate drops keys, e.g. the stats snapshot after an admin action.
func Invalidate(ctx context.Context, keys ...string) {
	if Redis == nil {
		return
	}
	_ = Redis.Del(ctx, keys...).Err()
}
