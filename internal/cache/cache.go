package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

const (
	// MaxEntries caps the store; on overflow only the most recently
	// inserted entries survive.
	MaxEntries = 500
	// FlushInterval is the coarse whole-cache expiry. There is no
	// per-entry TTL.
	FlushInterval = 30 * time.Minute
)

// Fetcher produces the value for a missing key.
type Fetcher func(ctx context.Context) (string, error)

// Cache memoizes remote metadata lookups keyed by request identity.
// Concurrent fetches of the same key are collapsed, and a fetch failure is
// never stored so the next request retries the remote call.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]string
	order     []string
	lastFlush time.Time
	now       func() time.Time

	group  singleflight.Group
	logger *log.Logger
}

type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]string),
		now:     time.Now,
		logger:  log.ForChannel(log.ChannelCore),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastFlush = c.now()
	return c
}

// GetOrFetch returns the cached value for key, or invokes fetch, stores
// the result, and returns it. Both eviction policies are checked on every
// access.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch Fetcher) (string, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent call may have populated the key while this one
		// waited on the flight group.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		val, err := fetch(ctx)
		if err != nil {
			return "", err
		}
		c.store(key, val)
		return val, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Get returns the cached value without fetching.
func (c *Cache) Get(key string) (string, bool) {
	return c.lookup(key)
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep applies the time-boxed flush without waiting for an access. Run
// periodically so a long-idle page does not serve a stale first hit.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeFlushLocked()
}

func (c *Cache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeFlushLocked()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) store(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeFlushLocked()

	if _, exists := c.entries[key]; exists {
		// Re-insertion moves the key to the youngest position.
		if i := slices.Index(c.order, key); i >= 0 {
			c.order = slices.Delete(c.order, i, i+1)
		}
	}
	c.entries[key] = value
	c.order = append(c.order, key)

	if over := len(c.order) - MaxEntries; over > 0 {
		for _, old := range c.order[:over] {
			delete(c.entries, old)
		}
		c.order = slices.Delete(c.order, 0, over)
		c.logger.Debug("cache trimmed to %d entries", MaxEntries)
	}
}

func (c *Cache) maybeFlushLocked() {
	if c.now().Sub(c.lastFlush) <= FlushInterval {
		return
	}
	if len(c.entries) > 0 {
		c.logger.Debug("cache flushed after %s (%d entries dropped)", FlushInterval, len(c.entries))
	}
	c.entries = make(map[string]string)
	c.order = nil
	c.lastFlush = c.now()
}
