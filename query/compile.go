package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/flexquery/condition"
	"github.com/hupe1980/flexquery/operator"
	"github.com/hupe1980/flexquery/schema"
)

// Plan is a validated, compiled query. It is immutable and safe for
// concurrent use.
type Plan struct {
	root       planNode
	conditions []condition.Condition
	leaves     []*leafNode
	limit      int
	page       int
	columns    []string
}

// Compile validates q and compiles it into a Plan. reg may be nil
// (operator.Default) and sch may be nil (every field is FieldTypeAny).
//
// Validation is fail-fast: the first invalid condition, in depth-first
// order, is reported and no plan is produced.
func Compile(q CompositeQuery, reg *operator.Registry, sch schema.Schema, limits Limits) (*Plan, error) {
	if reg == nil {
		reg = operator.Default()
	}
	if err := validatePage(q, limits); err != nil {
		return nil, err
	}
	if q.Root == nil {
		return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: "query has no conditions"}
	}

	c := &compiler{reg: reg, schema: sch, limits: limits}
	root, err := c.compile(q.Root, 1)
	if err != nil {
		return nil, err
	}

	return &Plan{
		root:       root,
		conditions: c.conditions,
		leaves:     c.leaves,
		limit:      q.Limit,
		page:       q.Page,
		columns:    slices.Clone(q.Columns),
	}, nil
}

// ErrInvalidPagination is wrapped by the ValidationError of a query with
// an invalid limit or page.
var ErrInvalidPagination = errors.New("invalid pagination")

func validatePage(q CompositeQuery, limits Limits) error {
	var reason string
	switch {
	case q.Limit <= 0:
		reason = fmt.Sprintf("limit must be positive, got %d", q.Limit)
	case q.Page <= 0:
		reason = fmt.Sprintf("page must be positive, got %d", q.Page)
	case limits.MaxLimit > 0 && q.Limit > limits.MaxLimit:
		reason = fmt.Sprintf("limit %d exceeds maximum %d", q.Limit, limits.MaxLimit)
	default:
		return nil
	}
	return condition.NewValidationError(condition.NoIndex, "", "", fmt.Errorf("%w: %s", ErrInvalidPagination, reason))
}

type compiler struct {
	reg        *operator.Registry
	schema     schema.Schema
	limits     Limits
	conditions []condition.Condition
	leaves     []*leafNode
}

// compile translates n. depth counts the groups and negations enclosing
// n, including n itself; leaves do not nest.
func (c *compiler) compile(n Node, depth int) (planNode, error) {
	switch n.(type) {
	case *Group, *Negation:
		if c.limits.MaxDepth > 0 && depth > c.limits.MaxDepth {
			return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: fmt.Sprintf("query nesting exceeds maximum depth %d", c.limits.MaxDepth)}
		}
	}

	switch n := n.(type) {
	case *Leaf:
		return c.compileLeaf(n.Condition)
	case *Group:
		return c.compileGroup(n, depth)
	case *Negation:
		if n.Child == nil {
			return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: "NOT requires an operand"}
		}
		child, err := c.compile(n.Child, depth+1)
		if err != nil {
			return nil, err
		}
		return &notNode{child: child}, nil
	case *RawExpr:
		parsed, err := Parse(n.Text)
		if err != nil {
			return nil, err
		}
		return c.compile(parsed, depth)
	case nil:
		return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: "nil query node"}
	default:
		return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: fmt.Sprintf("unsupported query node %T", n)}
	}
}

func (c *compiler) compileGroup(g *Group, depth int) (planNode, error) {
	if len(g.Children) == 0 {
		return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: fmt.Sprintf("empty %s group", g.Connector)}
	}
	if g.Connector != ConnectorAnd && g.Connector != ConnectorOr {
		return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: fmt.Sprintf("unknown connector %d", g.Connector)}
	}

	children := make([]planNode, 0, len(g.Children))
	for _, child := range g.Children {
		pn, err := c.compile(child, depth+1)
		if err != nil {
			return nil, err
		}
		// AND(AND(a, b), c) == AND(a, b, c), likewise for OR.
		if inner, ok := pn.(*groupNode); ok && inner.connector == g.Connector {
			children = append(children, inner.children...)
			continue
		}
		children = append(children, pn)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &groupNode{connector: g.Connector, children: children}, nil
}

func (c *compiler) compileLeaf(cond condition.Condition) (planNode, error) {
	index := len(c.conditions)
	if c.limits.MaxConditions > 0 && index >= c.limits.MaxConditions {
		return nil, &condition.ValidationError{Index: condition.NoIndex, Reason: fmt.Sprintf("query exceeds maximum of %d conditions", c.limits.MaxConditions)}
	}

	cond = cond.Clone()
	spec, mv, err := cond.Resolve(c.reg)
	if err != nil {
		var ve *condition.ValidationError
		if errors.As(err, &ve) {
			return nil, ve.At(index)
		}
		return nil, err
	}

	ft := c.schema.Type(cond.FieldName)
	if !spec.SupportsType(ft) {
		return nil, condition.NewOperatorUnsupportedError(index, cond.FieldName, cond.Operator, ft,
			fmt.Errorf("%w for %s fields", operator.ErrUnsupported, ft))
	}
	if def, ok := mv.Default(); ok {
		if err := schema.CheckValue(ft, def); err != nil {
			return nil, condition.NewValidationError(index, cond.FieldName, cond.Operator, fmt.Errorf("default: %w", err))
		}
	}

	pred, err := spec.Compile(operator.Args{Type: ft, Values: cond.Values, Params: cond.Params})
	if err != nil {
		return nil, condition.NewValidationError(index, cond.FieldName, cond.Operator, err)
	}

	leaf := &leafNode{
		index:      index,
		field:      cond.FieldName,
		op:         cond.Operator,
		fieldType:  ft,
		missing:    mv,
		weight:     float64(cond.Weight()),
		pred:       pred,
		exact:      spec.Exact,
		infallible: spec.NeverFails(ft),
		values:     cond.Values,
	}
	cond.MissingValue = mv
	c.conditions = append(c.conditions, cond)
	c.leaves = append(c.leaves, leaf)
	return leaf, nil
}

// Limit returns the page size.
func (p *Plan) Limit() int { return p.limit }

// Page returns the 1-indexed page number.
func (p *Plan) Page() int { return p.page }

// Columns returns the projected fields.
func (p *Plan) Columns() []string { return slices.Clone(p.columns) }

// Window returns the page bounds within total matches.
func (p *Plan) Window(total int) (start, end int) {
	return Window(p.limit, p.page, total)
}

// Conditions returns copies of the compiled conditions in depth-first order.
func (p *Plan) Conditions() []condition.Condition {
	out := make([]condition.Condition, len(p.conditions))
	for i, c := range p.conditions {
		out[i] = c.Clone()
	}
	return out
}

// Fields returns the distinct tested fields, sorted.
func (p *Plan) Fields() []string {
	var fields []string
	for _, l := range p.leaves {
		fields = append(fields, l.field)
	}
	slices.Sort(fields)
	return slices.Compact(fields)
}

// String renders the compiled tree.
func (p *Plan) String() string {
	var b strings.Builder
	p.root.format(&b, p.conditions)
	return b.String()
}

// Requirement is an exact-match condition every matching document must
// satisfy: the document's value of Field is one of Values.
type Requirement struct {
	Field  string
	Values []string
}

// Pruning tells an index which documents it may skip without evaluating
// them.
type Pruning struct {
	// Requirements are exact-match conditions on Keyword fields that sit
	// directly under the root AND (or are the root).
	Requirements []Requirement
	// Required lists the fields of every ThrowError condition. Skipping is
	// only sound when every document has them, since a skipped document
	// would otherwise have failed the query.
	Required []string
}

// Pruning returns the plan's pruning information. ok is false when some
// predicate may fail on a stored value; every document must then be
// evaluated so that the failure is reported.
func (p *Plan) Pruning() (pr Pruning, ok bool) {
	for _, l := range p.leaves {
		if !l.infallible {
			return Pruning{}, false
		}
		if l.missing.Kind() == condition.MissingThrowError {
			pr.Required = append(pr.Required, l.field)
		}
	}
	slices.Sort(pr.Required)
	pr.Required = slices.Compact(pr.Required)

	var leaves []*leafNode
	switch root := p.root.(type) {
	case *leafNode:
		leaves = []*leafNode{root}
	case *groupNode:
		if root.connector == ConnectorAnd {
			for _, child := range root.children {
				if l, ok := child.(*leafNode); ok {
					leaves = append(leaves, l)
				}
			}
		}
	}
	for _, l := range leaves {
		if !l.exact || l.fieldType != schema.FieldTypeKeyword {
			continue
		}
		// A UseDefault leaf matches documents that lack the field.
		if l.missing.Kind() == condition.MissingUseDefault {
			continue
		}
		pr.Requirements = append(pr.Requirements, Requirement{Field: l.field, Values: slices.Clone(l.values)})
	}
	return pr, true
}
