package core

// cache.go holds the current Snapshot and decides when to reload it.
//
// A snapshot is reused while all of these hold:
//   - it exists
//   - the dataset mtime still equals the mtime recorded at capture
//   - less than Window has passed since capture
//
// The read path is an atomic pointer load plus one stat call and never
// takes a lock. Reloads go through singleflight, so concurrent callers that
// find the snapshot stale share one load, and reloadMu keeps a Get-driven
// reload and a Refresh from ever reading the file at the same time.
//
// A failed reload never replaces or drops the published snapshot. Refresh
// discards validity up front, so after a failed Refresh the old snapshot is
// still readable through Current but the next Get reloads.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheWindow is the validity window used when none is configured.
const DefaultCacheWindow = 60 * time.Second

// CacheConfig configures a Cache.
type CacheConfig struct {
	// Window bounds how long a snapshot is trusted (default 60s).
	Window time.Duration

	// RequiredColumns is the schema checked on every load
	// (default DefaultRequiredColumns).
	RequiredColumns []string

	// ServeStale lets Get return the last good snapshot when a reload
	// fails instead of returning the error.
	ServeStale bool

	// Logger receives reload and rejection logs (default slog.Default()).
	Logger *slog.Logger

	// Now is the clock (default time.Now).
	Now func() time.Time
}

// CacheStatus is a point-in-time view of the cache.
type CacheStatus struct {
	Valid         bool
	CapturedAt    time.Time
	Remaining     time.Duration
	Window        time.Duration
	SnapshotID    string
	Records       int
	Rejections    int
	Fingerprint   string
	SourceModTime time.Time
	LastError     string
	LastErrorAt   time.Time
	Reloads       uint64
	Failures      uint64
}

// Cache serves the current dataset snapshot and reloads it when stale.
// Create one with NewCache; the zero value is not usable.
type Cache struct {
	source   Source
	window   time.Duration
	required []string
	stale    bool
	log      *slog.Logger
	now      func() time.Time

	current atomic.Pointer[Snapshot]
	flights singleflight.Group

	// invalidated is the snapshot a Refresh has discarded. It stays
	// published until a reload succeeds but never counts as valid.
	invalidated atomic.Pointer[Snapshot]

	// reloadMu serializes every read of the dataset.
	reloadMu sync.Mutex

	reloads  atomic.Uint64
	failures atomic.Uint64

	errMu     sync.Mutex
	lastErr   error
	lastErrAt time.Time
}

// NewCache creates a cache over source. Nothing is loaded until the first
// Get or Refresh.
func NewCache(source Source, cfg CacheConfig) *Cache {
	c := &Cache{
		source:   source,
		window:   cfg.Window,
		required: CanonicalColumns(cfg.RequiredColumns),
		stale:    cfg.ServeStale,
		log:      cfg.Logger,
		now:      cfg.Now,
	}
	if c.window <= 0 {
		c.window = DefaultCacheWindow
	}
	if len(c.required) == 0 {
		c.required = DefaultRequiredColumns
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.log = c.log.With("dataset", source.Path())
	return c
}

// Source returns the dataset source behind the cache.
func (c *Cache) Source() Source { return c.source }

// Window returns the configured validity window.
func (c *Cache) Window() time.Duration { return c.window }

// Get returns the current snapshot, reloading it first if it is no longer
// valid. Concurrent callers share a single reload and all see its result.
// ctx only bounds how long the caller waits; an abandoned reload still
// completes and publishes for later callers.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap != nil && c.valid(snap) {
		return snap, nil
	}

	snap, err := c.await(ctx, "get", func(ctx context.Context) (*Snapshot, error) {
		// Another flight may have published while we queued on reloadMu.
		if snap := c.current.Load(); snap != nil && c.valid(snap) {
			return snap, nil
		}
		return c.reload(ctx)
	})
	if err != nil {
		if c.stale && !isWaitError(ctx, err) {
			if old := c.current.Load(); old != nil {
				c.log.Warn("serving stale snapshot after failed reload",
					"snapshot_id", old.ID.String(),
					"captured_at", old.CapturedAt,
					"error", err,
				)
				return old, nil
			}
		}
		return nil, err
	}
	return snap, nil
}

// Refresh discards the validity of the published snapshot and reloads the
// dataset. On failure the error is returned and the old snapshot stays
// published but invalid, so the next Get tries the reload again.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	return c.await(ctx, "refresh", func(ctx context.Context) (*Snapshot, error) {
		if old := c.current.Load(); old != nil {
			c.invalidated.Store(old)
		}
		return c.reload(ctx)
	})
}

// Clear drops the published snapshot; the next Get reloads. It waits for a
// reload in progress so that reload cannot publish after the clear.
func (c *Cache) Clear() {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()
	c.current.Store(nil)
	c.log.Info("dataset cache cleared")
}

// Current returns the published snapshot without checking validity, or nil.
func (c *Cache) Current() *Snapshot {
	return c.current.Load()
}

// Status reports validity and freshness of the published snapshot.
func (c *Cache) Status() CacheStatus {
	st := CacheStatus{
		Window:   c.window,
		Reloads:  c.reloads.Load(),
		Failures: c.failures.Load(),
	}

	c.errMu.Lock()
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
		st.LastErrorAt = c.lastErrAt
	}
	c.errMu.Unlock()

	snap := c.current.Load()
	if snap == nil {
		return st
	}

	st.CapturedAt = snap.CapturedAt
	st.SnapshotID = snap.ID.String()
	st.Records = len(snap.Records)
	st.Rejections = len(snap.Rejections)
	st.Fingerprint = snap.Fingerprint
	st.SourceModTime = snap.SourceModTime
	st.Valid = c.valid(snap)
	if st.Valid {
		st.Remaining = snap.ExpiresAt().Sub(c.now())
	}
	return st
}

// valid applies the freshness rules to snap.
func (c *Cache) valid(snap *Snapshot) bool {
	if snap.SourceModTime.IsZero() || c.invalidated.Load() == snap {
		return false
	}
	mtime, err := c.source.ModTime()
	if err != nil || !mtime.Equal(snap.SourceModTime) {
		return false
	}
	return c.now().Sub(snap.CapturedAt) < c.window
}

// await runs fn as the single flight for key and waits for it or for ctx.
// fn gets a context detached from the caller's cancellation.
func (c *Cache) await(ctx context.Context, key string, fn func(context.Context) (*Snapshot, error)) (*Snapshot, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(c.source.Path()+"|"+key, func() (any, error) {
		c.reloadMu.Lock()
		defer c.reloadMu.Unlock()
		return fn(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for dataset reload: %w", ctx.Err())
	}
}

// reload reads and validates the dataset and publishes the result.
// Callers must hold reloadMu.
func (c *Cache) reload(ctx context.Context) (*Snapshot, error) {
	start := c.now()
	c.reloads.Add(1)

	before, beforeErr := c.source.ModTime()

	table, err := c.source.Load(ctx)
	if err != nil {
		return nil, c.fail(err)
	}

	result, err := ValidateRows(table, c.required)
	if err != nil {
		return nil, c.fail(err)
	}

	// The recorded mtime must describe the content we read. If the file
	// changed during the read, or cannot be stat'ed, leave it unknown so the
	// next check reloads instead of trusting a mismatched pair.
	after, afterErr := c.source.ModTime()
	modTime := after
	if afterErr != nil || beforeErr != nil || !before.Equal(after) {
		modTime = time.Time{}
		c.log.Warn("dataset mtime unknown after load; snapshot will not be reused",
			"stat_error", errors.Join(beforeErr, afterErr),
		)
	}

	snap := newSnapshot(result, table.Fingerprint, c.now(), modTime, c.window)
	c.current.Store(snap)

	c.errMu.Lock()
	c.lastErr = nil
	c.lastErrAt = time.Time{}
	c.errMu.Unlock()

	for _, rej := range result.Rejections {
		c.log.Warn("row rejected", "row", rej.Row, "id", rej.ID, "reason", rej.Reason)
	}
	c.log.Info("dataset reloaded",
		"snapshot_id", snap.ID.String(),
		"records", len(snap.Records),
		"rejected", len(snap.Rejections),
		"skipped", snap.Skipped,
		"bytes", table.Bytes,
		"fingerprint", snap.Fingerprint,
		"duration_ms", c.now().Sub(start).Milliseconds(),
	)
	return snap, nil
}

// fail records a reload failure and returns err unchanged.
func (c *Cache) fail(err error) error {
	c.failures.Add(1)
	c.errMu.Lock()
	c.lastErr = err
	c.lastErrAt = c.now()
	c.errMu.Unlock()
	c.log.Error("dataset reload failed", "error", err)
	return err
}

// isWaitError reports whether err came from the caller giving up rather
// than from the reload itself.
func isWaitError(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
