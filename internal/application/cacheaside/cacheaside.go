// Package cacheaside holds the read-through helpers shared by services and
// repository decorators: JSON encoding over ports.Cache, miss coalescing and
// hit/miss metrics.
package cacheaside

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

var lookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "flink_cache_lookups_total",
		Help: "Cache lookups by key namespace and result",
	},
	[]string{"namespace", "result"},
)

func init() {
	prometheus.MustRegister(lookups)
}

// SetSilently stores v as JSON; encoding or cache errors are dropped because
// the cache is never a correctness dependency.
func SetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

// Get decodes the cached JSON value for key. Any failure counts as a miss.
func Get[T any](c ports.Cache, ctx context.Context, namespace, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		lookups.WithLabelValues(namespace, "miss").Inc()
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		lookups.WithLabelValues(namespace, "miss").Inc()
		return nil, false
	}
	lookups.WithLabelValues(namespace, "hit").Inc()
	return &v, true
}

// DeleteSilently removes every key, ignoring cache errors.
func DeleteSilently(c ports.Cache, ctx context.Context, keys ...string) {
	if c == nil {
		return
	}
	for _, k := range keys {
		_ = c.Delete(ctx, k)
	}
}

// Loader coalesces concurrent misses on the same key and keeps a load that
// was overtaken by an invalidation from writing its result back.
type Loader struct {
	cache ports.Cache
	sf    singleflight.Group

	mu       sync.Mutex
	inflight map[string]map[*flight]struct{}
}

// flight is one running load; stale is set when its key is invalidated
// before the load stores.
type flight struct {
	stale bool
}

// NewLoader returns a Loader over c. c may be nil, in which case every call
// loads.
func NewLoader(c ports.Cache) *Loader {
	return &Loader{cache: c, inflight: map[string]map[*flight]struct{}{}}
}

func (l *Loader) begin(key string) *flight {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := &flight{}
	if l.inflight[key] == nil {
		l.inflight[key] = map[*flight]struct{}{}
	}
	l.inflight[key][f] = struct{}{}
	return f
}

// finish unregisters f and, when store is set and f was not invalidated,
// caches v. The check and the write happen under the same lock Invalidate
// takes, so an invalidation either prevents the write or deletes it after.
func (l *Loader) finish(ctx context.Context, key string, f *flight, store bool, v any, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inflight[key], f)
	if len(l.inflight[key]) == 0 {
		delete(l.inflight, key)
	}
	if store && !f.stale {
		SetSilently(l.cache, ctx, key, v, ttl)
	}
}

// Invalidate removes keys from the cache. Loads already running for them
// still return to their callers but are not cached, and callers arriving
// afterwards start a fresh load.
func (l *Loader) Invalidate(ctx context.Context, keys ...string) {
	l.mu.Lock()
	for _, k := range keys {
		for f := range l.inflight[k] {
			f.stale = true
		}
		l.sf.Forget(k)
	}
	l.mu.Unlock()
	DeleteSilently(l.cache, ctx, keys...)
}

// LoadList returns the cached list under key or calls loader once for all
// concurrent callers missing the same key, caching its result for ttl.
func LoadList[T any](l *Loader, ctx context.Context, namespace, key string, ttl time.Duration, loader func() ([]T, error)) ([]T, error) {
	if v, ok := Get[[]T](l.cache, ctx, namespace, key); ok {
		return *v, nil
	}
	res, err, _ := l.sf.Do(key, func() (any, error) {
		f := l.begin(key)
		all, err := loader()
		if err != nil {
			l.finish(ctx, key, f, false, nil, 0)
			return nil, err
		}
		if all == nil {
			all = []T{}
		}
		l.finish(ctx, key, f, true, all, ttl)
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	all, ok := res.([]T)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return all, nil
}
