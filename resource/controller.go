// Package resource provides admission control for searches and document
// loading.
package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrRejected is returned by TryAcquireSearch when no slot is available.
var ErrRejected = errors.New("search rejected: concurrency or rate limit reached")

// Config holds resource limits. Zero values disable the respective limit.
type Config struct {
	// MaxConcurrentSearches bounds the number of searches evaluated at once.
	MaxConcurrentSearches int64

	// QueriesPerSecond is the sustained search rate.
	QueriesPerSecond float64

	// Burst is the number of searches admitted at once above the
	// sustained rate. If 0, defaults to 1.
	Burst int

	// LoadBytesPerSec is the maximum throughput of document loading.
	LoadBytesPerSec int64
}

// Controller admits searches and throttles document loading.
// A nil *Controller admits everything.
type Controller struct {
	cfg Config

	searchSem *semaphore.Weighted // nil if unlimited
	inFlight  atomic.Int64

	queryLimiter *rate.Limiter // nil if unlimited
	loadLimiter  *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentSearches > 0 {
		c.searchSem = semaphore.NewWeighted(cfg.MaxConcurrentSearches)
	}

	if cfg.QueriesPerSecond > 0 {
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), cfg.Burst)
	}

	if cfg.LoadBytesPerSec > 0 {
		c.loadLimiter = rate.NewLimiter(rate.Limit(cfg.LoadBytesPerSec), int(cfg.LoadBytesPerSec))
	}

	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireSearch waits for the rate limit and a search slot.
// It blocks until both are available or ctx is canceled.
// Every successful call must be paired with ReleaseSearch.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.queryLimiter != nil {
		if err := c.queryLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.searchSem != nil {
		if err := c.searchSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.inFlight.Add(1)
	return nil
}

// TryAcquireSearch admits a search without blocking.
// Returns ErrRejected if the rate or concurrency limit is reached.
func (c *Controller) TryAcquireSearch() error {
	if c == nil {
		return nil
	}

	if c.searchSem != nil && !c.searchSem.TryAcquire(1) {
		return ErrRejected
	}

	if c.queryLimiter != nil && !c.queryLimiter.Allow() {
		if c.searchSem != nil {
			c.searchSem.Release(1)
		}
		return ErrRejected
	}

	c.inFlight.Add(1)
	return nil
}

// ReleaseSearch releases a search slot.
func (c *Controller) ReleaseSearch() {
	if c == nil {
		return
	}

	if c.searchSem != nil {
		c.searchSem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlight returns the number of admitted searches that have not been
// released.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireLoad waits until the load limit allows the specified number of bytes.
func (c *Controller) AcquireLoad(ctx context.Context, bytes int) error {
	if c == nil || c.loadLimiter == nil || bytes <= 0 {
		return nil
	}
	// WaitN fails for requests above the burst size.
	burst := c.loadLimiter.Burst()
	for bytes > burst {
		if err := c.loadLimiter.WaitN(ctx, burst); err != nil {
			return err
		}
		bytes -= burst
	}
	return c.loadLimiter.WaitN(ctx, bytes)
}
