// Package prommetrics exports flexquery engine metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c := prommetrics.New(prommetrics.WithRegisterer(reg))
//	eng, _ := flexquery.New(ix, flexquery.WithMetricsCollector(c))
package prommetrics

import (
	"errors"
	"time"

	"github.com/hupe1980/flexquery"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements flexquery.MetricsCollector with Prometheus metrics.
type Collector struct {
	searchLatency *prometheus.HistogramVec
	searches      *prometheus.CounterVec
	conditions    prometheus.Histogram
	matches       prometheus.Histogram
	documents     *prometheus.CounterVec
	rejections    prometheus.Counter
}

var _ flexquery.MetricsCollector = (*Collector)(nil)

type config struct {
	namespace  string
	registerer prometheus.Registerer
	buckets    []float64
}

// Option configures a Collector.
type Option func(*config)

// WithNamespace sets the metric namespace. Default: "flexquery".
func WithNamespace(ns string) Option {
	return func(c *config) { c.namespace = ns }
}

// WithRegisterer sets the registry the metrics are registered with.
// Default: prometheus.DefaultRegisterer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *config) { c.registerer = r }
}

// WithLatencyBuckets sets the search latency histogram buckets in seconds.
func WithLatencyBuckets(b []float64) Option {
	return func(c *config) { c.buckets = b }
}

// New creates and registers a Collector. It panics if a metric with the
// same name is already registered, like prometheus.MustRegister.
func New(opts ...Option) *Collector {
	cfg := config{
		namespace:  "flexquery",
		registerer: prometheus.DefaultRegisterer,
		buckets:    prometheus.DefBuckets,
	}
	for _, o := range opts {
		o(&cfg)
	}

	c := &Collector{
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "search_latency_seconds",
			Help:      "Latency of searches",
			Buckets:   cfg.buckets,
		}, []string{"status"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "searches_total",
			Help:      "Total searches by outcome",
		}, []string{"outcome"}),
		conditions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "query_conditions",
			Help:      "Number of conditions per query",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
		}),
		matches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "search_matches",
			Help:      "Number of matching documents per successful search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "documents_total",
			Help:      "Documents evaluated or skipped by index pruning",
		}, []string{"result"}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "search_rejections_total",
			Help:      "Searches refused by admission control",
		}),
	}

	cfg.registerer.MustRegister(
		c.searchLatency,
		c.searches,
		c.conditions,
		c.matches,
		c.documents,
		c.rejections,
	)
	return c
}

// outcome classifies a search error with low label cardinality.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, flexquery.ErrValidation):
		return "invalid"
	case errors.Is(err, flexquery.ErrMissingField):
		return "missing_field"
	case errors.Is(err, flexquery.ErrOperatorUnsupported):
		return "unsupported"
	default:
		return "error"
	}
}

// RecordSearch implements flexquery.MetricsCollector.
func (c *Collector) RecordSearch(conditions, matches int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.searchLatency.WithLabelValues(status).Observe(d.Seconds())
	c.searches.WithLabelValues(outcome(err)).Inc()
	if conditions > 0 {
		c.conditions.Observe(float64(conditions))
	}
	if err == nil {
		c.matches.Observe(float64(matches))
	}
}

// RecordEvaluation implements flexquery.MetricsCollector.
func (c *Collector) RecordEvaluation(evaluated, skipped int) {
	c.documents.WithLabelValues("evaluated").Add(float64(evaluated))
	c.documents.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordRejection implements flexquery.MetricsCollector.
func (c *Collector) RecordRejection() {
	c.rejections.Inc()
}
