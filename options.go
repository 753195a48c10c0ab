package flexquery

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/flexquery/operator"
	"github.com/hupe1980/flexquery/query"
	"github.com/hupe1980/flexquery/resource"
)

const (
	// DefaultChunkSize is the number of documents evaluated per task.
	DefaultChunkSize = 1024
	// DefaultPlanCacheSize is the number of compiled textual queries kept.
	DefaultPlanCacheSize = 256
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	registry         *operator.Registry
	limits           query.Limits
	workers          int
	chunkSize        int
	resources        resource.Config
	rejectWhenBusy   bool
	pruning          bool
	planCacheSize    int
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		registry:         operator.Default(),
		limits:           query.DefaultLimits(),
		workers:          runtime.GOMAXPROCS(0),
		chunkSize:        DefaultChunkSize,
		pruning:          true,
		planCacheSize:    DefaultPlanCacheSize,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := flexquery.NewJSONLogger(slog.LevelInfo)
//	eng, _ := flexquery.New(ix, flexquery.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &flexquery.BasicMetricsCollector{}
//	eng, _ := flexquery.New(ix, flexquery.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithRegistry configures the operator registry. If nil is passed,
// operator.Default is used.
func WithRegistry(reg *operator.Registry) Option {
	return func(o *options) {
		if reg == nil {
			reg = operator.Default()
		}
		o.registry = reg
	}
}

// WithLimits bounds the accepted queries. Zero fields disable the
// respective bound.
func WithLimits(limits query.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithWorkers sets the size of the evaluation worker pool.
// If workers <= 1, documents are evaluated on the calling goroutine.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithChunkSize sets the number of documents evaluated per task.
// Values <= 0 select DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(o *options) {
		if size <= 0 {
			size = DefaultChunkSize
		}
		o.chunkSize = size
	}
}

// WithMaxConcurrentSearches bounds the number of searches evaluated at
// once. Further searches wait for a slot.
func WithMaxConcurrentSearches(n int) Option {
	return func(o *options) {
		o.resources.MaxConcurrentSearches = int64(n)
	}
}

// WithRateLimit limits searches to qps per second with the given burst.
func WithRateLimit(qps float64, burst int) Option {
	return func(o *options) {
		o.resources.QueriesPerSecond = qps
		o.resources.Burst = burst
	}
}

// WithRejectWhenBusy makes searches fail with ErrRejected instead of
// waiting when the concurrency or rate limit is reached.
func WithRejectWhenBusy() Option {
	return func(o *options) {
		o.rejectWhenBusy = true
	}
}

// WithPruning enables or disables skipping documents through the index
// postings. Pruning never changes results. It is enabled by default.
func WithPruning(enabled bool) Option {
	return func(o *options) {
		o.pruning = enabled
	}
}

// WithPlanCacheSize sets how many compiled textual queries SearchString
// keeps. 0 disables the cache.
func WithPlanCacheSize(n int) Option {
	return func(o *options) {
		o.planCacheSize = n
	}
}
