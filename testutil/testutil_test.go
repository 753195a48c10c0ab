package testutil

import (
	"testing"

	"github.com/hupe1980/flexquery/condition"
	"github.com/hupe1980/flexquery/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Intn(1000)
	rng.Reset()
	assert.Equal(t, a, rng.Intn(1000))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestZipf(t *testing.T) {
	rng := NewRNG(4711)

	counts := make([]int, 5)
	for range 2000 {
		v := rng.Zipf(5, 1.5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
		counts[v]++
	}
	assert.Greater(t, counts[0], counts[4])
}

func TestSparseFields(t *testing.T) {
	rng := NewRNG(4711)

	all := rng.SparseFields(100, 0)
	for _, p := range all {
		assert.True(t, p)
	}
	none := rng.SparseFields(100, 1)
	for _, p := range none {
		assert.False(t, p)
	}
}

func TestDocuments(t *testing.T) {
	docs := NewRNG(4711).Documents(200, DocSpec{MissingRate: 0.3})
	require.Len(t, docs, 200)

	sch := DocumentSchema()
	missing := 0
	for _, d := range docs {
		require.NoError(t, sch.Validate(d.Fields))
		assert.Contains(t, Kinds, d.Fields["type"])
		if _, ok := d.Fields["age"]; !ok {
			missing++
		}
	}
	assert.Greater(t, missing, 0)
	assert.Less(t, missing, 200)

	again := NewRNG(4711).Documents(200, DocSpec{MissingRate: 0.3})
	assert.Equal(t, docs, again, "generation is deterministic")
}

func TestReferenceSearch(t *testing.T) {
	docs := NewRNG(4711).Documents(50, DocSpec{})
	plan, err := query.Compile(
		query.New(query.Cond(condition.New("type", "=", "session"))).WithPage(5, 1),
		nil, DocumentSchema(), query.DefaultLimits())
	require.NoError(t, err)

	rs, err := ReferenceSearch(plan, docs)
	require.NoError(t, err)
	assert.LessOrEqual(t, rs.Len(), 5)
	for _, d := range rs.Documents {
		assert.Equal(t, "session", d.Fields["type"])
	}
	for i := 1; i < rs.Len(); i++ {
		assert.Less(t, rs.Documents[i-1].ID, rs.Documents[i].ID)
	}
}
