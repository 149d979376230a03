// Package cache is the process-wide refresh policy in front of the external
// providers: a value younger than its ttl is served from memory, anything else
// is produced again. Failed productions are never stored.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/bond_etf_tracker/utils"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key joins an operation name and its arguments into a cache key.
func Key(op string, args ...string) string {
	return op + ":" + strings.Join(args, "|")
}

func (c *Cache) lookup(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Call returns the cached value for key if it is younger than ttl, otherwise it
// runs producer and caches its result. Concurrent misses on the same key share
// a single producer call. The producer is detached from the caller's
// cancellation, so one caller giving up does not fail the others; each caller
// still stops waiting when its own ctx is done.
func Call[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	var zero T

	if v, ok := c.lookup(key, ttl); ok {
		slog.Debug("cache hit", slog.String("rqID", rqID), slog.String("key", key))
		return v.(T), nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// another caller may have stored it while we were waiting for the group
		if v, ok := c.lookup(key, ttl); ok {
			return v, nil
		}

		slog.Debug("cache miss, producing", slog.String("rqID", rqID), slog.String("key", key))

		res, err := producer(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.store(key, res)
		return res, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		slog.Warn("cache wait cancelled", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", ctx.Err().Error()))
		return zero, ctx.Err()
	case r = <-ch:
	}

	if r.Err != nil {
		slog.Warn("cache producer failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", r.Err.Error()))
		return zero, r.Err
	}

	if r.Shared {
		slog.Debug("cache result shared", slog.String("rqID", rqID), slog.String("key", key))
	}

	res, ok := r.Val.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected value type %T for key %s", r.Val, key)
	}

	return res, nil
}
