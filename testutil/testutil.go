package testutil

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/query"
	"github.com/hupe1980/flexquery/schema"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// SparseFields reports for n documents whether a field is present.
// missingRate is the probability that a field is missing (0.3 = 30% missing).
func (r *RNG) SparseFields(n int, missingRate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	present := make([]bool, n)
	for i := range n {
		present[i] = r.rand.Float64() >= missingRate
	}

	return present
}

// Document kinds, in Zipf rank order.
var Kinds = []string{"session", "job", "report", "task", "audit"}

var names = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan", "judy"}

var words = []string{"duplicate", "detection", "customer", "record", "merge", "review", "batch", "import", "export", "quality"}

// DocSpec controls the synthetic documents of Documents.
type DocSpec struct {
	// MissingRate is the probability that an optional field is missing.
	MissingRate float64
	// KindSkew is the Zipf skew of the "type" field. If 0, defaults to 1.2.
	KindSkew float64
}

// DocumentSchema is the schema of the documents generated by Documents.
func DocumentSchema() schema.Schema {
	return schema.Schema{
		"type":    schema.FieldTypeKeyword,
		"owner":   schema.FieldTypeKeyword,
		"age":     schema.FieldTypeInt,
		"ratio":   schema.FieldTypeFloat,
		"created": schema.FieldTypeDate,
		"active":  schema.FieldTypeBool,
		"title":   schema.FieldTypeText,
	}
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Documents generates n documents with IDs doc-000000, doc-000001, ...
// Every document has "type"; the other fields of DocumentSchema are
// missing with probability spec.MissingRate.
func (r *RNG) Documents(n int, spec DocSpec) []model.Document {
	skew := spec.KindSkew
	if skew == 0 {
		skew = 1.2
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	optional := func(fields map[string]string, key, value string) {
		if r.rand.Float64() >= spec.MissingRate {
			fields[key] = value
		}
	}

	docs := make([]model.Document, n)
	for i := range n {
		fields := map[string]string{
			"type": Kinds[r.zipfLocked(len(Kinds), skew)],
		}
		optional(fields, "owner", names[r.rand.Intn(len(names))])
		optional(fields, "age", strconv.Itoa(r.rand.Intn(100)))
		optional(fields, "ratio", strconv.FormatFloat(r.rand.Float64(), 'f', 3, 64))
		optional(fields, "created", epoch.Add(time.Duration(r.rand.Intn(365*24))*time.Hour).Format(time.RFC3339))
		optional(fields, "active", strconv.FormatBool(r.rand.Intn(2) == 0))
		optional(fields, "title", words[r.rand.Intn(len(words))]+" "+words[r.rand.Intn(len(words))])

		docs[i] = model.NewDocument(fmt.Sprintf("doc-%06d", i), fields)
	}
	return docs
}

// ReferenceSearch evaluates plan over docs one by one and returns the
// requested page, best first. It is the ground truth for engine tests.
func ReferenceSearch(plan *query.Plan, docs []model.Document) (*model.ResultSet, error) {
	var matches []model.Document
	sorted := slices.Clone(docs)
	slices.SortFunc(sorted, func(a, b model.Document) int { return cmp.Compare(a.ID, b.ID) })

	for _, d := range sorted {
		ok, score, err := plan.Evaluate(d)
		if err != nil {
			return nil, err
		}
		if ok {
			d.Score = score
			matches = append(matches, d)
		}
	}

	slices.SortStableFunc(matches, func(a, b model.Document) int {
		return cmp.Compare(b.Score, a.Score)
	})

	lo, hi := plan.Window(len(matches))
	rs := &model.ResultSet{
		Documents:      make([]model.Document, 0, hi-lo),
		TotalAvailable: len(matches),
	}
	for _, d := range matches[lo:hi] {
		rs.Documents = append(rs.Documents, plan.Project(d))
	}
	return rs, nil
}
