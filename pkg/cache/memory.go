package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type item[V any] struct {
	expiresAt time.Time // zero: never expires
	value     V
	key       string
}

// Memory is an in-process LRU cache with per-entry expiry.
type Memory[V any] struct {
	group singleflight.Group
	opts  *options

	mu     sync.Mutex
	items  map[string]*list.Element
	order  *list.List // front: most recently used
	done   chan struct{}
	closed bool
}

// NewMemory creates a memory cache.
//
//	c := cache.NewMemory[*backend.Site](
//	    cache.WithDefaultTTL(time.Minute),
//	    cache.WithMaxEntries(1024),
//	)
//	defer c.Close()
func NewMemory[V any](opts ...Option) *Memory[V] {
	m := &Memory[V]{
		opts:  newOptions(opts),
		items: make(map[string]*list.Element),
		order: list.New(),
		done:  make(chan struct{}),
	}
	if m.opts.cleanupInterval > 0 {
		go m.sweep(m.opts.cleanupInterval)
	}
	return m
}

func (m *Memory[V]) flight() *singleflight.Group { return &m.group }

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return zero, ErrClosed
	}
	elem, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	it := elem.Value.(*item[V])
	if m.expired(it, m.opts.now()) {
		m.remove(elem)
		return zero, ErrNotFound
	}
	m.order.MoveToFront(elem)
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.opts.now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		it := elem.Value.(*item[V])
		it.value, it.expiresAt = value, expiresAt
		m.order.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.order.PushFront(&item[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	clear(m.items)
	m.order.Init()
	return nil
}

// Len returns the number of stored entries, expired ones included until
// they are swept or read.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweeper. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

func (m *Memory[V]) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	for elem := m.order.Back(); elem != nil; {
		prev := elem.Prev()
		if m.expired(elem.Value.(*item[V]), now) {
			m.remove(elem)
		}
		elem = prev
	}
}

func (m *Memory[V]) expired(it *item[V], now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

// remove drops elem. Caller holds m.mu.
func (m *Memory[V]) remove(elem *list.Element) {
	m.order.Remove(elem)
	delete(m.items, elem.Value.(*item[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
