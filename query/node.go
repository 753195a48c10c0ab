package query

import (
	"strings"

	"github.com/hupe1980/flexquery/condition"
)

// Connector joins the children of a group.
type Connector uint8

const (
	// ConnectorAnd requires every child to match. It is the default.
	ConnectorAnd Connector = iota
	// ConnectorOr requires at least one child to match.
	ConnectorOr
)

func (c Connector) String() string {
	if c == ConnectorOr {
		return "OR"
	}
	return "AND"
}

// Node is an element of a query tree: *Leaf, *Group, *Negation or *RawExpr.
type Node interface {
	String() string
	node()
}

// Leaf holds a single condition.
type Leaf struct {
	Condition condition.Condition
}

// Group joins child nodes with a connector.
type Group struct {
	Connector Connector
	Children  []Node
}

// Negation inverts its child.
type Negation struct {
	Child Node
}

// RawExpr is a query-string fragment parsed during compilation.
type RawExpr struct {
	Text string
}

func (*Leaf) node()     {}
func (*Group) node()    {}
func (*Negation) node() {}
func (*RawExpr) node()  {}

func (l *Leaf) String() string { return l.Condition.String() }

func (g *Group) String() string {
	parts := make([]string, len(g.Children))
	for i, c := range g.Children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " "+g.Connector.String()+" ") + ")"
}

func (n *Negation) String() string { return "NOT " + n.Child.String() }

func (r *RawExpr) String() string { return "(" + r.Text + ")" }

// Cond wraps a condition into a node.
func Cond(c condition.Condition) Node { return &Leaf{Condition: c} }

// Conditions joins conditions with the default AND connector.
func Conditions(conds ...condition.Condition) Node {
	children := make([]Node, len(conds))
	for i, c := range conds {
		children[i] = Cond(c)
	}
	return And(children...)
}

// And joins nodes with AND.
func And(children ...Node) Node { return &Group{Connector: ConnectorAnd, Children: children} }

// Or joins nodes with OR.
func Or(children ...Node) Node { return &Group{Connector: ConnectorOr, Children: children} }

// Not negates a node.
func Not(child Node) Node { return &Negation{Child: child} }

// Raw embeds a query-string fragment.
func Raw(text string) Node { return &RawExpr{Text: text} }
