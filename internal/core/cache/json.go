package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON caches load's result as JSON under key. An entry that no
// longer decodes into T is dropped and loaded again.
func GetOrLoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		c.Invalidate(ctx, key)
		return load(ctx)
	}
	return out, nil
}
