package flexquery

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/flexquery/index"
	"github.com/hupe1980/flexquery/internal/cache"
	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/query"
	"github.com/hupe1980/flexquery/resource"
	"github.com/panjf2000/ants/v2"
)

// Engine evaluates queries against an index.
// Engine is safe for concurrent use.
type Engine struct {
	idx    index.Reader
	opts   options
	pool   *ants.Pool // nil: evaluate on the calling goroutine
	rc     *resource.Controller
	plans  *cache.LRU[planKey, *query.Plan] // nil: no caching
	closed atomic.Bool
}

// planKey identifies a textual search. Columns are joined with NUL.
type planKey struct {
	text        string
	limit, page int
	columns     string
}

// New creates an engine over idx.
func New(idx index.Reader, optFns ...Option) (*Engine, error) {
	if idx == nil {
		return nil, fmt.Errorf("flexquery: index must not be nil")
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Engine{
		idx:   idx,
		opts:  opts,
		rc:    resource.NewController(opts.resources),
		plans: cache.NewLRU[planKey, *query.Plan](opts.planCacheSize),
	}

	if opts.workers > 1 {
		pool, err := ants.NewPool(opts.workers, ants.WithPanicHandler(func(v any) {
			opts.logger.Error("evaluation worker panic", "panic", v)
		}))
		if err != nil {
			return nil, fmt.Errorf("flexquery: create worker pool: %w", err)
		}
		e.pool = pool
	}

	return e, nil
}

// Compile validates q against the engine's registry, limits and the
// index schema.
func (e *Engine) Compile(q query.CompositeQuery) (*query.Plan, error) {
	return query.Compile(q, e.opts.registry, e.idx.Schema(), e.opts.limits)
}

// Validate reports whether q would be accepted by Search. It evaluates no
// documents.
func (e *Engine) Validate(q query.CompositeQuery) error {
	_, err := e.Compile(q)
	return err
}

// SearchString parses and runs a textual query. Compiled plans are cached
// by query text and pagination.
func (e *Engine) SearchString(ctx context.Context, q string, limit, page int, columns ...string) (*model.ResultSet, error) {
	key := planKey{text: q, limit: limit, page: page, columns: strings.Join(columns, "\x00")}
	return e.search(ctx, func() (*query.Plan, error) {
		if plan, ok := e.plans.Get(key); ok {
			return plan, nil
		}
		cq := query.New(query.Raw(q)).WithPage(limit, page).WithColumns(columns...)
		plan, err := e.Compile(cq)
		if err != nil {
			return nil, err
		}
		e.plans.Set(key, plan)
		return plan, nil
	})
}

// PlanCacheStats returns the hits and misses of the SearchString plan
// cache.
func (e *Engine) PlanCacheStats() (hits, misses int64) {
	return e.plans.Stats()
}

// Search runs q and returns the requested page of matches, best first.
//
// The query is validated before any document is evaluated. Evaluation
// errors abort the search: no partial result is ever returned.
func (e *Engine) Search(ctx context.Context, q query.CompositeQuery) (*model.ResultSet, error) {
	return e.search(ctx, func() (*query.Plan, error) { return e.Compile(q) })
}

func (e *Engine) search(ctx context.Context, compile func() (*query.Plan, error)) (*model.ResultSet, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	queryID := uuid.NewString()
	log := e.opts.logger.WithQueryID(queryID)

	if err := e.admit(ctx); err != nil {
		e.opts.metricsCollector.RecordRejection()
		log.LogRejected(ctx, err)
		return nil, translateError(queryID, err)
	}
	defer e.rc.ReleaseSearch()

	start := time.Now()

	plan, err := compile()
	if err != nil {
		e.opts.metricsCollector.RecordSearch(0, 0, time.Since(start), err)
		log.LogValidation(ctx, err)
		return nil, err
	}
	log = log.WithQuery(plan.String())

	matches, err := e.evaluate(ctx, log, plan, e.idx.Snapshot())
	conditions := len(plan.Conditions())
	if err != nil {
		err = translateError(queryID, err)
		e.opts.metricsCollector.RecordSearch(conditions, 0, time.Since(start), err)
		log.LogSearch(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	slices.SortFunc(matches, compareMatches)

	lo, hi := plan.Window(len(matches))
	rs := &model.ResultSet{
		Documents:      make([]model.Document, 0, hi-lo),
		TotalAvailable: len(matches),
	}
	for _, d := range matches[lo:hi] {
		rs.Documents = append(rs.Documents, plan.Project(d))
	}

	e.opts.metricsCollector.RecordSearch(conditions, len(matches), time.Since(start), nil)
	log.LogSearch(ctx, rs.TotalAvailable, len(rs.Documents), time.Since(start), nil)
	return rs, nil
}

func (e *Engine) admit(ctx context.Context) error {
	if e.opts.rejectWhenBusy {
		return e.rc.TryAcquireSearch()
	}
	return e.rc.AcquireSearch(ctx)
}

// compareMatches orders by score descending, then ID ascending.
func compareMatches(a, b model.Document) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// chunkResult holds the matches of one chunk, or the error of its first
// failing document.
type chunkResult struct {
	matches []model.Document
	err     error
}

// evaluate returns every matching document of snap with its score.
//
// Documents are split into chunks of consecutive positions. When several
// chunks fail, the error of the lowest chunk is returned, which is the
// error sequential evaluation would have hit first.
func (e *Engine) evaluate(ctx context.Context, log *Logger, plan *query.Plan, snap *index.Snapshot) ([]model.Document, error) {
	positions, pruned := e.candidates(plan, snap)
	n := snap.Len()
	if pruned {
		n = len(positions)
	}
	docAt := func(i int) model.Document {
		if pruned {
			return snap.Doc(int(positions[i]))
		}
		return snap.Doc(i)
	}

	size := e.opts.chunkSize
	chunks := (n + size - 1) / size
	results := make([]chunkResult, chunks)

	run := func(c int) {
		lo, hi := c*size, min((c+1)*size, n)
		res := &results[c]
		for i := lo; i < hi; i++ {
			d := docAt(i)
			ok, score, err := plan.Evaluate(d)
			if err != nil {
				res.err = err
				return
			}
			if ok {
				d.Score = score
				res.matches = append(res.matches, d)
			}
		}
	}

	if e.pool == nil || chunks <= 1 {
		for c := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			run(c)
			if results[c].err != nil {
				return nil, results[c].err
			}
		}
	} else if err := e.runParallel(ctx, chunks, run); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		total += len(r.matches)
	}

	e.opts.metricsCollector.RecordEvaluation(n, snap.Len()-n)
	log.LogEvaluation(ctx, n, snap.Len()-n, chunks)

	matches := make([]model.Document, 0, total)
	for _, r := range results {
		matches = append(matches, r.matches...)
	}
	return matches, nil
}

// runParallel runs every chunk on the worker pool and waits for all of
// them. Chunks that start after ctx ended are skipped.
func (e *Engine) runParallel(ctx context.Context, chunks int, run func(int)) error {
	var (
		wg       sync.WaitGroup
		panicMu  sync.Mutex
		panicErr error
	)
	for c := range chunks {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if panicErr == nil {
						panicErr = fmt.Errorf("flexquery: evaluation panic: %v", r)
					}
					panicMu.Unlock()
				}
			}()
			if ctx.Err() != nil {
				return
			}
			run(c)
		}
		if err := e.pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return panicErr
}

func (e *Engine) candidates(plan *query.Plan, snap *index.Snapshot) ([]uint32, bool) {
	if !e.opts.pruning {
		return nil, false
	}
	pr, ok := plan.Pruning()
	if !ok {
		return nil, false
	}
	return snap.Candidates(pr)
}

// Close releases the worker pool and the cached plans. Searches after
// Close fail with ErrClosed. Close is idempotent.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	if e.pool != nil {
		e.pool.Release()
	}
	e.plans.Invalidate(func(planKey) bool { return true })
	return nil
}
