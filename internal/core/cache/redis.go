package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// genTTL outlives any load; an expired generation only costs one skipped fill.
const genTTL = time.Hour

// Cache is a read-through Redis cache. A nil *Cache is valid and always
// loads from the source.
type Cache struct {
	RDB    *redis.Client
	Prefix string
	sf     singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(rdb *redis.Client) *Cache {
	return &Cache{RDB: rdb, Prefix: "microblog:"}
}

func (c *Cache) key(k string) string { return c.Prefix + k }

func (c *Cache) genKey(k string) string { return c.Prefix + "gen:" + k }

// GetOrLoad returns the cached bytes or runs load. Concurrent misses share
// one load, detached from any single caller's cancellation. A fill is
// dropped when the key was invalidated while load ran.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return load(ctx)
	}
	k := c.key(key)
	if b, err := c.RDB.Get(ctx, k).Bytes(); err == nil {
		return b, nil
	}
	ch := c.sf.DoChan(k, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		gen, err := c.generation(fctx, c.RDB, key)
		if err != nil {
			return load(fctx)
		}
		b, err := load(fctx)
		if err != nil {
			return nil, err
		}
		c.fill(fctx, key, gen, b, ttl)
		return b, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) generation(ctx context.Context, cmd redis.Cmdable, key string) (int64, error) {
	gen, err := cmd.Get(ctx, c.genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// fill stores b only if the key's generation is still the one seen before
// loading.
func (c *Cache) fill(ctx context.Context, key string, gen int64, b []byte, ttl time.Duration) {
	gk := c.genKey(key)
	_ = c.RDB.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx, key)
		if err != nil || cur != gen {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key(key), b, ttl)
			return nil
		})
		return err
	}, gk)
}

// Invalidate drops keys and bumps their generation so loads already in
// flight do not write back stale values. Cache errors are ignored since the
// next read falls through to the source anyway.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	_, _ = c.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Del(ctx, c.key(k))
			p.Incr(ctx, c.genKey(k))
			p.Expire(ctx, c.genKey(k), genTTL)
		}
		return nil
	})
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.RDB.Close()
}
