package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mindsupport/internal/observability"
)

// Aside implements the cache-aside pattern: if key holds a cached JSON
// value it is unmarshalled into dest, otherwise loader is called to fill
// dest and the result is cached with the given TTL. When Redis is
// unavailable the loader runs directly; cache failures never fail the read.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func() error) error {
	if client != nil {
		ctx, span := observability.TraceRedisOperation(ctx, "get")
		raw, err := client.Get(ctx, key).Result()
		span.End()
		if err == nil {
			if err := json.Unmarshal([]byte(raw), dest); err == nil {
				return nil
			}
			// Corrupt entry; drop it and fall through to the loader.
			client.Del(ctx, key)
		} else if err != redis.Nil {
			observability.RecordErrorInContext(ctx, err)
		}
	}

	if err := loader(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}

	return nil
}
