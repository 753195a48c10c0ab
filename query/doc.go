// Package query composes conditions into an evaluable boolean query.
//
// A query is a tree of nodes:
//
//	q := query.New(query.And(
//	    query.Cond(condition.New("type", "=", "session")),
//	    query.Or(
//	        query.Cond(condition.New("age", "range", "10", "20").WithMissingValue(condition.Ignore())),
//	        query.Raw("name fuzzy 'jon' {distance:'1'}"),
//	    ),
//	)).WithPage(10, 1)
//
// or parsed from its textual form:
//
//	root, err := query.Parse("type = 'session' AND (age range ['10','20'] OR name fuzzy 'jon')")
//
// Compile validates every condition up front (fail-fast, no partial
// results) and produces an immutable Plan that evaluates documents
// concurrently without synchronization.
//
// # Evaluation
//
// Each node evaluates to match, no-match or absent. A condition is absent
// when its field is missing under the Ignore policy. AND fails when any
// child does not match; it is absent when every failing child is absent
// and no-match otherwise. OR skips absent children and is itself absent
// when all of its children are. NOT keeps absent as absent. An absent root
// excludes the document.
//
// # Scoring
//
// A matching condition scores its weight (Boost, or 1 when unboosted).
// AND and OR score the sum of their matching children; NOT scores 0.
package query
