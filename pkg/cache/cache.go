package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value cache with TTL support.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: item never expires
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error
	Close() error
}

// Marshaler serializes values for backends that store bytes.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// flighter is implemented by caches that own a singleflight group, so that
// equal keys in different caches never share a load.
type flighter interface {
	flight() *singleflight.Group
}

var sharedGroup singleflight.Group

func groupFor[V any](c Cache[V]) *singleflight.Group {
	if f, ok := c.(flighter); ok {
		return f.flight()
	}
	return &sharedGroup
}

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// Loader computes a value on a cache miss together with the TTL to store it for.
type Loader[V any] func(ctx context.Context) (V, time.Duration, error)

// GetOrSet returns the cached value for key, or calls fn on a miss.
// Concurrent misses for the same key share one fn call. The shared call runs
// detached from any single caller's cancellation; a canceled caller returns
// ctx.Err() while the load completes for the others.
//
// Errors from fn are returned and never cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn Loader[V]) (V, error) {
	var zero V
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := groupFor(c).DoChan(key, func() (any, error) {
		val, ttl, err := fn(detached)
		if err != nil {
			return nil, err
		}
		_ = c.Set(detached, key, val, ttl)
		return loaded[V]{val: val, ttl: ttl}, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(loaded[V]).val, nil
	}
}
