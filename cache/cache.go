package cache

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultMaxSize is the default entry capacity.
	DefaultMaxSize = 50
	// DefaultTTL is the default time-to-live for Set.
	DefaultTTL = 10 * time.Minute
)

// Option configures a Cache.
type Option func(*config)

type config struct {
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
}

// WithMaxSize sets the entry capacity. Values <= 0 fall back to
// DefaultMaxSize.
func WithMaxSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithDefaultTTL sets the TTL applied by Set. Values <= 0 fall back
// to DefaultTTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// Stats is a snapshot of cache counters.
//
// Hits and Misses are monotone for the lifetime of the cache; only
// ClearAll resets them.
type Stats struct {
	Size    int
	Hits    int64
	Misses  int64
	HitRate float64
}

type entry[V any] struct {
	key       string
	value     V
	createdAt time.Time
	ttl       time.Duration
}

// Cache is a size-bounded key/value store with per-entry TTL.
//
// It is safe for concurrent use. Capacity is a soft bound: exceeding
// it triggers exactly one eviction per Set, never a batch.
type Cache[V any] struct {
	mu    sync.Mutex
	items map[string]*list.Element
	// order holds entries by insertion time, newest at the front.
	// Overwriting a key re-inserts it (fresh createdAt, fresh age).
	order *list.List

	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache with the given options.
func New[V any](opts ...Option) *Cache[V] {
	cfg := config{
		maxSize:    DefaultMaxSize,
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cache[V]{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxSize:    cfg.maxSize,
		defaultTTL: cfg.defaultTTL,
		now:        cfg.now,
	}
}

// Get returns the value stored under key.
//
// ok is false on a miss or when the entry's TTL has elapsed; an entry
// found expired is removed before returning. Get does not refresh the
// entry's insertion age.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return zero, false
	}

	ent := el.Value.(*entry[V])
	if c.expired(ent) {
		c.removeElement(el)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return ent.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
//
// Overwriting an existing key counts as a fresh insertion. When the
// cache is at capacity, the single oldest-inserted entry is evicted
// first.
func (c *Cache[V]) SetTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	} else if len(c.items) >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	el := c.order.PushFront(&entry[V]{
		key:       key,
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
	})
	c.items[key] = el
}

// Invalidate removes the entry stored under key. No-op if absent.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Collect first: removeElement mutates the list under iteration.
	var stale []*list.Element
	for key, el := range c.items {
		if strings.HasPrefix(key, prefix) {
			stale = append(stale, el)
		}
	}
	for _, el := range stale {
		c.removeElement(el)
	}
}

// ClearAll removes every entry and resets the hit/miss counters.
func (c *Cache[V]) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Len returns the number of physically present entries, expired ones
// included until a Get sweeps them.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	size := len(c.items)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Stats{Size: size, Hits: hits, Misses: misses, HitRate: rate}
}

func (c *Cache[V]) expired(ent *entry[V]) bool {
	return c.now().Sub(ent.createdAt) > ent.ttl
}

func (c *Cache[V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
