// Package cache memoizes the dashboard's single warehouse fetch.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"crash-dash/internal/domain"
	"crash-dash/internal/metrics"
)

// DefaultFetchTimeout bounds one fetch when no timeout is configured.
const DefaultFetchTimeout = 2 * time.Minute

const refreshKeyPrefix = "refresh:"

// entry is the single cache slot. A failed fetch is stored as an empty table
// together with its error.
type entry struct {
	table     *domain.Table
	err       error
	fetchedAt time.Time
}

// ResultCache holds at most one table, keyed by the source's fixed query.
// The first Get fetches; later calls return the stored result, including a
// stored failure, until Refresh or Reset drops the slot.
type ResultCache struct {
	source  domain.DataSource
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	slot  *entry
	cycle uint64 // bumped by Reset so an in-flight fill never restores a dropped slot
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithFetchTimeout bounds each fetch. Non-positive values keep the default.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *ResultCache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock overrides the time source used for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) { c.now = now }
}

// New creates an empty cache in front of source.
func New(source domain.DataSource, logger *slog.Logger, opts ...Option) *ResultCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &ResultCache{
		source:  source,
		timeout: DefaultFetchTimeout,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domain.TableProvider = (*ResultCache)(nil)

// Key returns the cache key: the source's constant query text.
func (c *ResultCache) Key() string {
	return c.source.Query()
}

// Get returns the cached table, fetching it on the first call. The returned
// table is never nil; after a failed fetch it is empty and err describes the
// failure. Concurrent misses share one fetch.
func (c *ResultCache) Get(ctx context.Context) (*domain.Table, error) {
	c.mu.RLock()
	slot := c.slot
	c.mu.RUnlock()
	if slot != nil {
		metrics.CacheHits.Inc()
		return slot.table, slot.err
	}
	return c.fill(ctx)
}

// Refresh drops the current slot and fetches again. Refreshes that overlap
// an in-flight refresh join it instead of starting another fetch.
func (c *ResultCache) Refresh(ctx context.Context) (*domain.Table, error) {
	ch := c.group.DoChan(refreshKeyPrefix+c.Key(), func() (interface{}, error) {
		c.Reset()
		res := <-c.start(ctx)
		return res.Val, nil
	})
	return wait(ctx, ch)
}

// Reset drops the current slot. The next Get fetches.
func (c *ResultCache) Reset() {
	c.mu.Lock()
	c.slot = nil
	c.cycle++
	c.mu.Unlock()
	c.group.Forget(c.Key())
}

// FetchedAt returns when the stored result was fetched, or the zero time
// when the slot is empty.
func (c *ResultCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.slot == nil {
		return time.Time{}
	}
	return c.slot.fetchedAt
}

func (c *ResultCache) fill(ctx context.Context) (*domain.Table, error) {
	return wait(ctx, c.start(ctx))
}

// start joins or begins the fill for the current cycle.
func (c *ResultCache) start(ctx context.Context) <-chan singleflight.Result {
	return c.group.DoChan(c.Key(), func() (interface{}, error) {
		c.mu.RLock()
		slot, cycle := c.slot, c.cycle
		c.mu.RUnlock()
		if slot != nil {
			return slot, nil
		}

		e := c.fetch(ctx)

		c.mu.Lock()
		if c.cycle == cycle {
			c.slot = e
		}
		c.mu.Unlock()
		return e, nil
	})
}

// wait blocks until the shared fetch behind ch finishes or ctx is done. A
// caller that gives up gets SourceUnavailable; the fetch keeps running.
func wait(ctx context.Context, ch <-chan singleflight.Result) (*domain.Table, error) {
	select {
	case res := <-ch:
		e := res.Val.(*entry)
		return e.table, e.err
	case <-ctx.Done():
		return domain.EmptyTable(), domain.ErrSourceUnavailable(ctx.Err(), "waiting for data")
	}
}

// fetch runs the source query detached from the caller's cancellation:
// other callers may be waiting on the same fetch.
func (c *ResultCache) fetch(ctx context.Context) *entry {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	start := time.Now()
	table, err := c.source.Fetch(fetchCtx)
	elapsed := time.Since(start)
	metrics.SourceFetchLatency.Observe(elapsed.Seconds())

	if err != nil {
		err = classify(err)
		metrics.SourceFetches.WithLabelValues(outcome(err)).Inc()
		metrics.CachedRows.Set(0)
		c.logger.Warn("source fetch failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return &entry{table: domain.EmptyTable(), err: err, fetchedAt: c.now()}
	}
	if table == nil {
		table = domain.EmptyTable()
	}

	metrics.SourceFetches.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.CachedRows.Set(float64(table.Len()))
	c.logger.Info("source fetch complete", "rows", table.Len(), "duration_ms", elapsed.Milliseconds())
	return &entry{table: table, fetchedAt: c.now()}
}

// classify keeps typed source errors and files everything else under
// SourceUnavailable, so callers only ever see the documented taxonomy.
func classify(err error) error {
	var auth *domain.AuthenticationFailedError
	var unavailable *domain.SourceUnavailableError
	if errors.As(err, &auth) || errors.As(err, &unavailable) {
		return err
	}
	return domain.ErrSourceUnavailable(err, "fetch data")
}

func outcome(err error) string {
	var auth *domain.AuthenticationFailedError
	if errors.As(err, &auth) {
		return metrics.OutcomeAuthFailed
	}
	return metrics.OutcomeUnavailable
}
