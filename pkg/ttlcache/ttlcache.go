package ttlcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
	touchedAt time.Time
}

// Cache is a capacity-bounded map whose entries expire after a fixed TTL.
// When full, the least recently touched entry is evicted.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*entry[V]
	ttl      time.Duration
	capacity int
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type Option[K comparable, V any] func(*Cache[K, V])

func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.now = now
	}
}

func New[K comparable, V any](capacity int, ttl time.Duration, opts ...Option[K, V]) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	c := &Cache[K, V]{
		items:    make(map[K]*entry[V], capacity),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	now := c.now()
	if !now.Before(e.expiresAt) {
		delete(c.items, key)
		return zero, false
	}
	e.touchedAt = now
	return e.value, true
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = now.Add(c.ttl)
		e.touchedAt = now
		return
	}
	if len(c.items) >= c.capacity {
		c.sweepLocked(now)
	}
	if len(c.items) >= c.capacity {
		c.evictOldestLocked()
	}
	c.items[key] = &entry[V]{value: value, expiresAt: now.Add(c.ttl), touchedAt: now}
}

// GetOrSet returns the live value for key, or stores and returns create().
func (c *Cache[K, V]) GetOrSet(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.items[key]; ok && now.Before(e.expiresAt) {
		e.touchedAt = now
		return e.value
	}
	if len(c.items) >= c.capacity {
		c.sweepLocked(now)
	}
	if len(c.items) >= c.capacity {
		c.evictOldestLocked()
	}
	v := create()
	c.items[key] = &entry[V]{value: v, expiresAt: now.Add(c.ttl), touchedAt: now}
	return v
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

// StartSweeper runs Sweep every interval until Close is called.
func (c *Cache[K, V]) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[K, V]) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[K, V]) evictOldestLocked() {
	var (
		oldestKey K
		oldest    time.Time
		found     bool
	)
	for k, e := range c.items {
		if !found || e.touchedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.touchedAt, true
		}
	}
	if found {
		delete(c.items, oldestKey)
	}
}
