package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voyagen/tubestats/internal/cache"
	"github.com/voyagen/tubestats/internal/metrics"
	"github.com/voyagen/tubestats/internal/models"
	"github.com/voyagen/tubestats/internal/store"
)

// DefaultCacheTTL is used when NewCachedDashboards gets a zero TTL.
const DefaultCacheTTL = 2 * time.Minute

const dashboardKeyPattern = "dashboard:*"

// CachedDashboards serves dashboards from Redis when possible. Keys embed the
// snapshot id, so a reloaded table never serves results of the old one.
// Redis errors are logged and the dashboard is computed instead.
type CachedDashboards struct {
	inner   *DashboardService
	tables  *store.TableCache
	cache   *cache.Redis
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedDashboards wraps inner with a Redis read-through cache and
// registers a hook that purges cached dashboards whenever tables reloads.
func NewCachedDashboards(inner *DashboardService, tables *store.TableCache, c *cache.Redis, ttl time.Duration, log *slog.Logger, m *metrics.Metrics) *CachedDashboards {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	cd := &CachedDashboards{inner: inner, tables: tables, cache: c, ttl: ttl, log: log, metrics: m}
	tables.OnReload(func(s *store.Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if n, err := cd.Purge(ctx); err != nil {
			cd.log.Warn("cache: purge after reload", "snapshot", s.ID, "error", err)
		} else if n > 0 {
			cd.log.Info("cache: purged dashboards", "snapshot", s.ID, "keys", n)
		}
	})
	return cd
}

func (c *CachedDashboards) Build(ctx context.Context, q Query) (*Dashboard, error) {
	snap, err := c.tables.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	q = c.inner.Normalize(q)
	key := dashboardKey(snap, q)

	d, err := cache.Get[Dashboard](ctx, c.cache, key)
	switch {
	case err == nil:
		c.metrics.CacheHit()
		return &d, nil
	case !errors.Is(err, cache.ErrMiss):
		c.log.Warn("cache: get", "key", key, "error", err)
	}
	c.metrics.CacheMiss()

	built, err := Compose(snap, q)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, built, c.ttl); err != nil {
		c.log.Warn("cache: set", "key", key, "error", err)
	}
	return built, nil
}

// Purge deletes every cached dashboard and returns how many were removed.
func (c *CachedDashboards) Purge(ctx context.Context) (int, error) {
	return cache.DelPattern(ctx, c.cache, dashboardKeyPattern)
}

// dashboardKey is "dashboard:<snapshot>:<query hash>".
func dashboardKey(snap *store.Snapshot, q Query) string {
	return fmt.Sprintf("dashboard:%s:%s", snap.ID, queryHash(q))
}

// queryHash produces a short deterministic hash of a normalized query.
// Set order does not matter; nil and empty sets hash differently.
func queryHash(q Query) string {
	raw := fmt.Sprintf("%s|%s|%d|%s",
		setKey(q.Categories), setKey(q.Countries), q.TopN, strings.Join(q.Columns, ","))
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}

func setKey(s models.Set) string {
	if s == nil {
		return "*"
	}
	return fmt.Sprintf("%q", s.Sorted())
}
