package flexquery

import (
	"context"
	"iter"

	"github.com/hupe1980/flexquery/condition"
	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/query"
)

// Query creates a fluent search builder. Conditions added with Where are
// joined with AND. root may be nil; executing a builder without any
// condition fails with a ValidationError.
//
// Example:
//
//	rs, err := eng.Query(nil).
//	    Where(condition.New("type", "=", "session")).
//	    Limit(10).
//	    Page(1).
//	    Execute(ctx)
//
//	// Or stream every match, page by page:
//	for doc, err := range eng.Query(query.Raw("type = 'session'")).Stream(ctx) {
//	    if err != nil { break }
//	    process(doc)
//	}
func (e *Engine) Query(root query.Node) *SearchBuilder {
	sb := &SearchBuilder{
		e:     e,
		limit: query.DefaultLimit,
		page:  1,
	}
	if root != nil {
		sb.nodes = append(sb.nodes, root)
	}
	return sb
}

// SearchBuilder is a fluent builder for constructing searches.
type SearchBuilder struct {
	e       *Engine
	nodes   []query.Node
	limit   int
	page    int
	columns []string
}

// Where adds conditions that every match must satisfy.
func (sb *SearchBuilder) Where(conds ...condition.Condition) *SearchBuilder {
	for _, c := range conds {
		sb.nodes = append(sb.nodes, query.Cond(c))
	}
	return sb
}

// WhereNode adds a subtree that every match must satisfy.
func (sb *SearchBuilder) WhereNode(n query.Node) *SearchBuilder {
	sb.nodes = append(sb.nodes, n)
	return sb
}

// Limit sets the page size.
func (sb *SearchBuilder) Limit(limit int) *SearchBuilder {
	sb.limit = limit
	return sb
}

// Page sets the 1-indexed page number.
func (sb *SearchBuilder) Page(page int) *SearchBuilder {
	sb.page = page
	return sb
}

// Columns selects the returned fields. "*" selects every field.
func (sb *SearchBuilder) Columns(columns ...string) *SearchBuilder {
	sb.columns = columns
	return sb
}

// Build returns the composite query.
func (sb *SearchBuilder) Build() query.CompositeQuery {
	var root query.Node
	switch len(sb.nodes) {
	case 0:
	case 1:
		root = sb.nodes[0]
	default:
		root = query.And(sb.nodes...)
	}
	return query.New(root).WithPage(sb.limit, sb.page).WithColumns(sb.columns...)
}

// Execute runs the search and returns the requested page.
func (sb *SearchBuilder) Execute(ctx context.Context) (*model.ResultSet, error) {
	return sb.e.Search(ctx, sb.Build())
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) *model.ResultSet {
	rs, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return rs
}

// Stream returns an iterator over every match from the configured page
// on, fetching one page per search. Each page is evaluated against the
// index as it is at that moment, so concurrent writes may shift matches
// between pages. The iterator stops after the first error.
func (sb *SearchBuilder) Stream(ctx context.Context) iter.Seq2[model.Document, error] {
	return func(yield func(model.Document, error) bool) {
		q := sb.Build()
		for page := q.Page; ; page++ {
			q.Page = page
			rs, err := sb.e.Search(ctx, q)
			if err != nil {
				yield(model.Document{}, err)
				return
			}
			for _, d := range rs.Documents {
				if !yield(d, nil) {
					return
				}
			}
			if len(rs.Documents) < q.Limit {
				return
			}
			if lo, _ := query.Window(q.Limit, page+1, rs.TotalAvailable); lo >= rs.TotalAvailable {
				return
			}
		}
	}
}

// First returns the best match, or ErrNotFound.
func (sb *SearchBuilder) First(ctx context.Context) (model.Document, error) {
	q := sb.Build()
	q.Limit, q.Page = 1, 1
	rs, err := sb.e.Search(ctx, q)
	if err != nil {
		return model.Document{}, err
	}
	if len(rs.Documents) == 0 {
		return model.Document{}, ErrNotFound
	}
	return rs.Documents[0], nil
}

// Count returns the number of matches.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	q := sb.Build()
	q.Limit, q.Page = 1, 1
	rs, err := sb.e.Search(ctx, q)
	if err != nil {
		return 0, err
	}
	return rs.TotalAvailable, nil
}

// Exists reports whether at least one document matches.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	n, err := sb.Count(ctx)
	return n > 0, err
}
