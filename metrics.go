package flexquery

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see package prommetrics).
type MetricsCollector interface {
	// RecordSearch is called after each search operation.
	// conditions is the number of conditions in the query, matches the
	// number of matching documents, err is nil if successful.
	RecordSearch(conditions, matches int, duration time.Duration, err error)

	// RecordEvaluation is called after the documents of a search have been
	// evaluated. skipped counts the documents pruned by the index.
	RecordEvaluation(evaluated, skipped int)

	// RecordRejection is called when admission control refuses a search.
	RecordRejection()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordEvaluation(int, int)                   {}
func (NoopMetricsCollector) RecordRejection()                            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	ConditionCount   atomic.Int64
	MatchCount       atomic.Int64
	EvaluatedDocs    atomic.Int64
	SkippedDocs      atomic.Int64
	Rejections       atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(conditions, matches int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.ConditionCount.Add(int64(conditions))
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.MatchCount.Add(int64(matches))
}

// RecordEvaluation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluation(evaluated, skipped int) {
	b.EvaluatedDocs.Add(int64(evaluated))
	b.SkippedDocs.Add(int64(skipped))
}

// RecordRejection implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRejection() {
	b.Rejections.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		ConditionCount: b.ConditionCount.Load(),
		MatchCount:     b.MatchCount.Load(),
		EvaluatedDocs:  b.EvaluatedDocs.Load(),
		SkippedDocs:    b.SkippedDocs.Load(),
		Rejections:     b.Rejections.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
	ConditionCount int64
	MatchCount     int64
	EvaluatedDocs  int64
	SkippedDocs    int64
	Rejections     int64
}
