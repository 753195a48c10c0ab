package query

import "slices"

// DefaultLimit is the page size of New.
const DefaultLimit = 10

// Limits bound the size of accepted queries.
type Limits struct {
	MaxLimit      int // Max page size (default: 10000)
	MaxConditions int // Max conditions per query (default: 1024)
	MaxDepth      int // Max nesting depth (default: 10)
}

// DefaultLimits returns safe production defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxLimit:      10000,
		MaxConditions: 1024,
		MaxDepth:      10,
	}
}

// CompositeQuery is a query tree plus its pagination window.
type CompositeQuery struct {
	Root Node
	// Limit is the page size. It must be positive.
	Limit int
	// Page is the 1-indexed page number. It must be positive.
	Page int
	// Columns selects the returned fields. Empty or "*" returns all.
	Columns []string
}

// New creates a query returning the first page of DefaultLimit matches.
func New(root Node) CompositeQuery {
	return CompositeQuery{Root: root, Limit: DefaultLimit, Page: 1}
}

// WithPage returns a copy with the given pagination window.
func (q CompositeQuery) WithPage(limit, page int) CompositeQuery {
	q.Limit = limit
	q.Page = page
	return q
}

// WithColumns returns a copy returning only the given fields.
func (q CompositeQuery) WithColumns(columns ...string) CompositeQuery {
	q.Columns = slices.Clone(columns)
	return q
}

// String renders the query tree.
func (q CompositeQuery) String() string {
	if q.Root == nil {
		return ""
	}
	return q.Root.String()
}

// Window returns the slice bounds of the page within total matches:
// [(page-1)*limit, page*limit) clamped to [0, total].
func Window(limit, page, total int) (start, end int) {
	if limit <= 0 || page <= 0 || total <= 0 {
		return 0, 0
	}
	if page-1 > (total-1)/limit {
		return total, total
	}
	start = (page - 1) * limit
	end = start + min(limit, total-start)
	return start, end
}
