package prommetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/flexquery"
	"github.com/hupe1980/flexquery/condition"
	"github.com/hupe1980/flexquery/index"
	"github.com/hupe1980/flexquery/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegisterer(reg), WithNamespace("test"))

	c.RecordSearch(2, 5, time.Millisecond, nil)
	c.RecordSearch(1, 0, time.Millisecond, &condition.MissingFieldError{Field: "age"})
	c.RecordSearch(0, 0, time.Millisecond, condition.NewValidationError(0, "a", "=", errors.New("bad")))
	c.RecordEvaluation(10, 90)
	c.RecordRejection()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("missing_field")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("invalid")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.documents.WithLabelValues("evaluated")))
	assert.Equal(t, 90.0, testutil.ToFloat64(c.documents.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejections))

	n, err := testutil.GatherAndCount(reg, "test_search_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegisterer(reg))
	assert.Panics(t, func() { New(WithRegisterer(reg)) })
}

func TestCollector_WithEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegisterer(reg))

	ix := index.NewMemoryIndex(nil)
	_, err := ix.Add(model.NewDocument("1", map[string]string{"type": "session"}))
	require.NoError(t, err)

	eng, err := flexquery.New(ix, flexquery.WithMetricsCollector(c))
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.SearchString(context.Background(), "type = 'session'", 10, 1)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.documents.WithLabelValues("evaluated")))
}
