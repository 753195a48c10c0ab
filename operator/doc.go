// Package operator maps operator names to predicate semantics.
//
// A Spec describes one operator: how many values it takes, which field
// types it supports, which parameters it understands and how to compile
// a condition's values into a Predicate. Specs are collected in a Registry
// that is looked up by exact, case-sensitive name.
//
// # Built-in Operators
//
//   - "=", "eq": equality
//   - "!=", "ne": inequality
//   - ">", ">=", "<", "<=" (and "gt", "ge", "lt", "le"): ordering
//   - "range": inclusive range over two values
//   - "in": set membership
//   - "prefix": prefix match
//   - "fuzzy": edit-distance match (param "distance", "prefixlength")
//   - "like": wildcard match using '*' and '?'
//   - "phrase": ordered token match (param "slop")
//
// # Custom Operators
//
// Register a new Spec on a registry; conditions and queries pick it up by
// name without further changes:
//
//	reg := operator.NewDefaultRegistry()
//	reg.MustRegister(operator.Spec{
//	    Name:  "suffix",
//	    Arity: operator.Exactly(1),
//	    Compile: func(a operator.Args) (operator.Predicate, error) {
//	        want := a.Values[0]
//	        return func(v string) (bool, error) {
//	            return strings.HasSuffix(v, want), nil
//	        }, nil
//	    },
//	})
package operator
