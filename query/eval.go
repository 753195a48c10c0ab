package query

import (
	"errors"
	"strings"

	"github.com/hupe1980/flexquery/condition"
	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/operator"
	"github.com/hupe1980/flexquery/schema"
)

// state is the tri-state result of evaluating a node.
type state uint8

const (
	stateNoMatch state = iota
	stateMatch
	stateAbsent
)

type planNode interface {
	eval(doc *model.Document) (state, float64, error)
	format(b *strings.Builder, conds []condition.Condition)
}

type leafNode struct {
	index      int
	field      string
	op         string
	fieldType  schema.FieldType
	missing    condition.MissingValue
	weight     float64
	pred       operator.Predicate
	exact      bool
	infallible bool
	values     []string
}

func (l *leafNode) eval(doc *model.Document) (state, float64, error) {
	raw, found := doc.Lookup(l.field)
	v, outcome := l.missing.Resolve(raw, found)
	switch outcome {
	case condition.OutcomeAbsent:
		return stateAbsent, 0, nil
	case condition.OutcomeFail:
		return stateNoMatch, 0, &condition.MissingFieldError{
			Index:      l.index,
			Field:      l.field,
			Operator:   l.op,
			DocumentID: doc.ID,
		}
	}

	ok, err := l.pred(v)
	if err != nil {
		if errors.Is(err, operator.ErrUnsupported) {
			e := condition.NewOperatorUnsupportedError(l.index, l.field, l.op, l.fieldType, err)
			e.DocumentID = doc.ID
			return stateNoMatch, 0, e
		}
		return stateNoMatch, 0, err
	}
	if !ok {
		return stateNoMatch, 0, nil
	}
	return stateMatch, l.weight, nil
}

func (l *leafNode) format(b *strings.Builder, conds []condition.Condition) {
	b.WriteString(conds[l.index].String())
}

type groupNode struct {
	connector Connector
	children  []planNode
}

// eval evaluates every child so that the reported error does not depend
// on the outcome of earlier siblings.
func (g *groupNode) eval(doc *model.Document) (state, float64, error) {
	var (
		firstErr error
		score    float64
		matched  int
		absent   int
	)
	for _, child := range g.children {
		st, s, err := child.eval(doc)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		switch st {
		case stateMatch:
			matched++
			score += s
		case stateAbsent:
			absent++
		}
	}
	if firstErr != nil {
		return stateNoMatch, 0, firstErr
	}

	if g.connector == ConnectorAnd {
		switch {
		case matched == len(g.children):
			return stateMatch, score, nil
		case matched+absent == len(g.children):
			// Only absent children fail the conjunction.
			return stateAbsent, 0, nil
		default:
			return stateNoMatch, 0, nil
		}
	}
	switch {
	case matched > 0:
		return stateMatch, score, nil
	case absent == len(g.children):
		return stateAbsent, 0, nil
	default:
		return stateNoMatch, 0, nil
	}
}

func (g *groupNode) format(b *strings.Builder, conds []condition.Condition) {
	b.WriteByte('(')
	for i, child := range g.children {
		if i > 0 {
			b.WriteByte(' ')
			b.WriteString(g.connector.String())
			b.WriteByte(' ')
		}
		child.format(b, conds)
	}
	b.WriteByte(')')
}

type notNode struct {
	child planNode
}

func (n *notNode) eval(doc *model.Document) (state, float64, error) {
	st, _, err := n.child.eval(doc)
	if err != nil {
		return stateNoMatch, 0, err
	}
	switch st {
	case stateMatch:
		return stateNoMatch, 0, nil
	case stateNoMatch:
		return stateMatch, 0, nil
	default:
		return stateAbsent, 0, nil
	}
}

func (n *notNode) format(b *strings.Builder, conds []condition.Condition) {
	b.WriteString("NOT ")
	n.child.format(b, conds)
}

// Evaluate tests doc against the plan. It returns whether the document
// matches and its score. An error aborts the whole query: callers must
// discard partial results.
func (p *Plan) Evaluate(doc model.Document) (matched bool, score float64, err error) {
	st, score, err := p.root.eval(&doc)
	if err != nil {
		return false, 0, err
	}
	if st != stateMatch {
		return false, 0, nil
	}
	return true, score, nil
}

// Project applies the plan's column selection to doc.
func (p *Plan) Project(doc model.Document) model.Document {
	return doc.Project(p.columns)
}
