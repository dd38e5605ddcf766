package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/voyagen/tubestats/internal/metrics"
)

// DefaultLoadTimeout bounds a single table load.
const DefaultLoadTimeout = 2 * time.Minute

// TableCache holds the loaded table for the whole process. The first Get
// loads it; later calls return the same snapshot until Invalidate or Reload.
type TableCache struct {
	src         Source
	log         *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	loadTimeout time.Duration

	group singleflight.Group

	mu    sync.RWMutex
	snap  *Snapshot
	gen   uint64 // bumped by every install and Invalidate
	hooks []func(*Snapshot)
}

// CacheOption configures a TableCache.
type CacheOption func(*TableCache)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *TableCache) { c.log = l }
}

// WithMetrics records load counts, durations and row counts.
func WithMetrics(m *metrics.Metrics) CacheOption {
	return func(c *TableCache) { c.metrics = m }
}

// WithLoadTimeout bounds each load. Loads run detached from the caller's
// context, so this is what stops a hung source.
func WithLoadTimeout(d time.Duration) CacheOption {
	return func(c *TableCache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// NewTableCache creates an empty cache over src.
func NewTableCache(src Source, opts ...CacheOption) *TableCache {
	c := &TableCache{src: src, log: slog.Default(), now: time.Now, loadTimeout: DefaultLoadTimeout}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Source returns the underlying source.
func (c *TableCache) Source() Source { return c.src }

// Current returns the cached snapshot without loading, or nil.
func (c *TableCache) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Get returns the cached snapshot, loading it if the cache is empty.
// Concurrent callers on an empty cache share one load; a caller whose ctx
// ends stops waiting without failing the others.
func (c *TableCache) Get(ctx context.Context) (*Snapshot, error) {
	if s := c.Current(); s != nil {
		return s, nil
	}
	return c.shared(ctx, "get", func(lctx context.Context) (*Snapshot, error) {
		if s := c.Current(); s != nil {
			return s, nil
		}
		return c.loadAndInstall(lctx)
	})
}

// Invalidate drops the cached snapshot. The next Get reloads, and a load
// already in flight is not installed.
func (c *TableCache) Invalidate() {
	c.mu.Lock()
	prev := c.snap
	c.snap = nil
	c.gen++
	c.mu.Unlock()
	if prev != nil {
		c.log.Info("table cache invalidated", "snapshot", prev.ID)
	}
}

// Reload loads a fresh snapshot and swaps it in. On failure the previous
// snapshot stays in place and the error is returned.
func (c *TableCache) Reload(ctx context.Context) (*Snapshot, error) {
	return c.shared(ctx, "reload", func(lctx context.Context) (*Snapshot, error) {
		prev := c.Current()
		s, err := c.loadAndInstall(lctx)
		if err != nil && prev != nil {
			c.log.Warn("reload failed, keeping previous table", "snapshot", prev.ID, "error", err)
		}
		return s, err
	})
}

// OnReload registers fn to run after every snapshot swap.
func (c *TableCache) OnReload(fn func(*Snapshot)) {
	c.mu.Lock()
	c.hooks = append(c.hooks, fn)
	c.mu.Unlock()
}

// shared runs fn once per key for all concurrent callers. fn gets a context
// detached from ctx and bounded by the load timeout.
func (c *TableCache) shared(ctx context.Context, key string, fn func(context.Context) (*Snapshot, error)) (*Snapshot, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		return fn(lctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

// loadAndInstall loads a snapshot and installs it unless another install or
// an Invalidate happened while it loaded. A stale load yields the current
// snapshot instead, or the loaded one uninstalled when the cache is empty.
func (c *TableCache) loadAndInstall(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	s, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if cur, ok := c.install(s, gen); !ok {
		c.log.Info("discarding stale table load", "snapshot", s.ID)
		if cur != nil {
			return cur, nil
		}
	}
	return s, nil
}

func (c *TableCache) load(ctx context.Context) (*Snapshot, error) {
	info := c.src.Info()
	start := time.Now()
	table, err := c.src.Load(ctx)
	elapsed := time.Since(start)
	c.metrics.ObserveLoad(table.Len(), elapsed, err)
	if err != nil {
		c.log.Error("table load failed", "source", info.String(), "error", err)
		return nil, err
	}
	s := &Snapshot{
		ID:       uuid.New(),
		Table:    table,
		Source:   info,
		LoadedAt: c.now(),
	}
	c.log.Info("table loaded",
		"source", info.String(),
		"rows", table.Len(),
		"snapshot", s.ID,
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return s, nil
}

// install swaps s in if the generation is still gen and runs the reload
// hooks outside the lock. Otherwise it returns the current snapshot and false.
func (c *TableCache) install(s *Snapshot, gen uint64) (*Snapshot, bool) {
	c.mu.Lock()
	if c.gen != gen {
		cur := c.snap
		c.mu.Unlock()
		return cur, false
	}
	c.gen++
	c.snap = s
	hooks := slices.Clone(c.hooks)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn(s)
	}
	return s, true
}
