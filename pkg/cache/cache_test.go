package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sitekit/pkg/cache"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newMemory[V any](t *testing.T, opts ...cache.Option) (*cache.Memory[V], *clock) {
	t.Helper()
	clk := newClock()
	opts = append([]cache.Option{cache.WithClock(clk.Now), cache.WithCleanupInterval(0)}, opts...)
	c := cache.NewMemory[V](opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, clk
}

// --- Memory ---

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[string](t)
		_, err := c.Get(ctx, "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("stores and overwrites", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[int](t)
		require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "k", 2, time.Minute))

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("expires by ttl", func(t *testing.T) {
		t.Parallel()

		c, clk := newMemory[string](t)
		require.NoError(t, c.Set(ctx, "k", "v", 10*time.Second))

		clk.Advance(9 * time.Second)
		_, err := c.Get(ctx, "k")
		require.NoError(t, err)

		clk.Advance(time.Second)
		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
		assert.Zero(t, c.Len())
	})

	t.Run("zero ttl uses the default", func(t *testing.T) {
		t.Parallel()

		c, clk := newMemory[string](t, cache.WithDefaultTTL(time.Minute))
		require.NoError(t, c.Set(ctx, "k", "v", 0))

		clk.Advance(59 * time.Second)
		_, err := c.Get(ctx, "k")
		require.NoError(t, err)

		clk.Advance(time.Second)
		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		c, clk := newMemory[string](t)
		require.NoError(t, c.Set(ctx, "k", "v", -1))
		clk.Advance(1000 * time.Hour)

		_, err := c.Get(ctx, "k")
		require.NoError(t, err)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[string](t, cache.WithMaxEntries(2))
		require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
		require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
		_, err := c.Get(ctx, "a")
		require.NoError(t, err)

		require.NoError(t, c.Set(ctx, "c", "3", time.Minute))

		_, err = c.Get(ctx, "b")
		require.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "a")
		require.NoError(t, err)
		_, err = c.Get(ctx, "c")
		require.NoError(t, err)
	})

	t.Run("delete and clear", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[string](t)
		require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
		require.NoError(t, c.Set(ctx, "b", "2", time.Minute))

		require.NoError(t, c.Delete(ctx, "a"))
		require.NoError(t, c.Delete(ctx, "missing"))
		_, err := c.Get(ctx, "a")
		require.ErrorIs(t, err, cache.ErrNotFound)

		require.NoError(t, c.Clear(ctx))
		assert.Zero(t, c.Len())
	})

	t.Run("closed cache rejects operations", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		require.ErrorIs(t, c.Set(ctx, "k", "v", time.Minute), cache.ErrClosed)
		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrClosed)
		require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
		require.ErrorIs(t, c.Clear(ctx), cache.ErrClosed)
	})

	t.Run("sweeper removes expired entries", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(5 * time.Millisecond))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
		require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	})
}

// --- GetOrSet ---

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads once and caches", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[string](t)
		var calls atomic.Int64
		load := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			return "value", time.Minute, nil
		}

		for range 3 {
			v, err := cache.GetOrSet(ctx, c, "k", load)
			require.NoError(t, err)
			assert.Equal(t, "value", v)
		}
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("concurrent misses share one load", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[int](t)
		var calls atomic.Int64
		release := make(chan struct{})
		load := func(context.Context) (int, time.Duration, error) {
			calls.Add(1)
			<-release
			return 7, time.Minute, nil
		}

		const n = 10
		var wg sync.WaitGroup
		results := make([]int, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := cache.GetOrSet(ctx, c, "k", load)
				assert.NoError(t, err)
				results[i] = v
			}()
		}

		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int64(1), calls.Load())
		for _, v := range results {
			assert.Equal(t, 7, v)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[string](t)
		boom := errors.New("boom")
		var calls atomic.Int64
		load := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			return "", 0, boom
		}

		_, err := cache.GetOrSet(ctx, c, "k", load)
		require.ErrorIs(t, err, boom)
		_, err = cache.GetOrSet(ctx, c, "k", load)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, int64(2), calls.Load())
		assert.Zero(t, c.Len())
	})

	t.Run("ttl returned by the loader applies", func(t *testing.T) {
		t.Parallel()

		c, clk := newMemory[string](t)
		var calls atomic.Int64
		load := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			return "v", 5 * time.Second, nil
		}

		_, err := cache.GetOrSet(ctx, c, "k", load)
		require.NoError(t, err)
		clk.Advance(5 * time.Second)
		_, err = cache.GetOrSet(ctx, c, "k", load)
		require.NoError(t, err)
		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("equal keys in different caches load separately", func(t *testing.T) {
		t.Parallel()

		a, _ := newMemory[string](t)
		b, _ := newMemory[string](t)

		va, err := cache.GetOrSet(ctx, a, "k", func(context.Context) (string, time.Duration, error) {
			return "a", time.Minute, nil
		})
		require.NoError(t, err)
		vb, err := cache.GetOrSet(ctx, b, "k", func(context.Context) (string, time.Duration, error) {
			return "b", time.Minute, nil
		})
		require.NoError(t, err)

		assert.Equal(t, "a", va)
		assert.Equal(t, "b", vb)
	})

	t.Run("canceled caller does not abort the load", func(t *testing.T) {
		t.Parallel()

		c, _ := newMemory[string](t)
		release := make(chan struct{})
		started := make(chan struct{})
		load := func(ctx context.Context) (string, time.Duration, error) {
			close(started)
			select {
			case <-release:
				return "done", time.Minute, nil
			case <-ctx.Done():
				return "", 0, ctx.Err()
			}
		}

		cctx, cancel := context.WithCancel(ctx)
		errc := make(chan error, 1)
		go func() {
			_, err := cache.GetOrSet(cctx, c, "k", load)
			errc <- err
		}()

		<-started
		cancel()
		require.ErrorIs(t, <-errc, context.Canceled)

		close(release)
		require.Eventually(t, func() bool {
			v, err := c.Get(ctx, "k")
			return err == nil && v == "done"
		}, time.Second, time.Millisecond)
	})
}
