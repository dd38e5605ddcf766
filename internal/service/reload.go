package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/voyagen/tubestats/internal/cache"
	"github.com/voyagen/tubestats/internal/store"
)

// ErrReloadInProgress is returned when another replica holds the reload lock.
var ErrReloadInProgress = errors.New("reload already in progress")

// ReloadLockKey is the Redis key replicas hold while reloading.
const ReloadLockKey = "tubestats:lock:reload"

const reloadLockTTL = 2 * time.Minute

// Reloader reloads the table cache. With Redis configured, replicas sharing
// it take a lock first so only one of them reloads at a time.
type Reloader struct {
	tables *store.TableCache
	redis  *cache.Redis // nil when REDIS_URL is not set
	log    *slog.Logger
}

// NewReloader returns a Reloader. r may be nil.
func NewReloader(tables *store.TableCache, r *cache.Redis, log *slog.Logger) *Reloader {
	if log == nil {
		log = slog.Default()
	}
	return &Reloader{tables: tables, redis: r, log: log}
}

// Reload loads a fresh snapshot. A failed load keeps the previous one.
func (rl *Reloader) Reload(ctx context.Context) (*store.Snapshot, error) {
	if rl.redis != nil {
		unlock, err := cache.TryLock(ctx, rl.redis, ReloadLockKey, reloadLockTTL)
		switch {
		case errors.Is(err, cache.ErrLocked):
			return nil, ErrReloadInProgress
		case err != nil:
			// Redis trouble must not block a local reload.
			rl.log.Warn("reload lock unavailable, reloading without it", "error", err)
		default:
			defer unlock()
		}
	}
	return rl.tables.Reload(ctx)
}

// Reloading reports whether some replica holds the reload lock. It is
// always false without Redis; lookup errors are logged and read as false.
func (rl *Reloader) Reloading(ctx context.Context) bool {
	if rl.redis == nil {
		return false
	}
	held, err := cache.IsLocked(ctx, rl.redis, ReloadLockKey)
	if err != nil {
		rl.log.Warn("reload lock lookup failed", "error", err)
		return false
	}
	return held
}

// Invalidate drops the cached snapshot so the next request reloads it.
func (rl *Reloader) Invalidate() {
	rl.tables.Invalidate()
}
