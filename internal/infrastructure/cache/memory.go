package cache

import (
	"context"
	"sync"
	"time"

	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/sirupsen/logrus"
)

type entry struct {
	value     []byte
	timestamp time.Time
	ttl       time.Duration
	timer     *time.Timer
	gen       uint64
}

func (e *entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.timestamp) > e.ttl
}

func (e *entry) stop() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// MemoryCache is a process-local TTL cache. Each key owns at most one expiry
// timer; writes replace both the value and the timer. Reads also check the
// TTL so an entry whose timer has not fired yet is still reported absent.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
	expired uint64
	now     func() time.Time
	logger  *logrus.Logger
}

// NewMemoryCache creates an empty cache. Create one per process and inject it.
func NewMemoryCache(logger *logrus.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  logger,
	}
}

// Set implements Cache.Set.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		old.stop()
	}
	c.gen++
	e := &entry{value: buf, timestamp: c.now(), ttl: ttl, gen: c.gen}
	if ttl > 0 {
		gen := e.gen
		e.timer = time.AfterFunc(ttl, func() { c.expire(key, gen) })
	}
	c.entries[key] = e
	return nil
}

// expire runs on the timer goroutine. A timer belonging to a replaced entry
// finds a different generation and leaves the newer value alone.
func (c *MemoryCache) expire(key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.gen != gen {
		return
	}
	e.timer = nil
	delete(c.entries, key)
	c.expired++
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"key": key}).Debug("cache: entry expired")
	}
}

// Get implements Cache.Get.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		e.stop()
		delete(c.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Has reports whether key holds a live entry.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, ok, _ := c.Get(ctx, key)
	return ok
}

// Delete implements Cache.Delete.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.stop()
		delete(c.entries, key)
	}
	return nil
}

// Clear drops every entry and cancels every pending expiry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		e.stop()
		delete(c.entries, k)
	}
}

// Len counts stored entries, including expired ones not yet purged.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ ports.Cache = (*MemoryCache)(nil)
