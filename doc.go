// Package flexquery evaluates boolean queries of field conditions against
// a document index and returns paginated, ranked results.
//
// # Quick Start
//
//	ix := index.NewMemoryIndex(schema.Schema{
//	    "type": schema.FieldTypeKeyword,
//	    "age":  schema.FieldTypeInt,
//	})
//	ix.Add(model.NewDocument("s1", map[string]string{"type": "session", "age": "12"}))
//
//	eng, _ := flexquery.New(ix)
//	defer eng.Close()
//
//	rs, _ := eng.Search(ctx, query.New(query.And(
//	    query.Cond(condition.New("type", "=", "session")),
//	    query.Cond(condition.New("age", "range", "10", "20").WithMissingValue(condition.Ignore())),
//	)).WithPage(10, 1))
//
// or with the textual form:
//
//	rs, _ := eng.SearchString(ctx, "type = 'session' AND age range ['10','20'] {missing:'Ignore'}", 10, 1)
//
// # Conditions
//
// A condition tests one field with a named operator (see package operator
// for the builtins and for registering new ones). When a document lacks
// the field, the condition's missing-value policy decides: ThrowError (the
// default) fails the whole search with a *MissingFieldError, Ignore drops
// the condition for that document, UseDefault evaluates a substitute.
//
// # Results
//
// Matches are ordered by score descending and then by document ID. The
// score of a document is the sum of the boosts of its matching conditions
// (an unboosted condition weighs 1). ResultSet.TotalAvailable counts every
// match; Documents holds the requested page.
//
// # Errors
//
// Queries are validated up front: a malformed query yields a
// *ValidationError positioned at the first offending condition and no
// document is evaluated. Evaluation errors abort the search. Use
// errors.Is with ErrValidation, ErrMissingField, ErrOperatorUnsupported,
// ErrInvalidPagination or ErrClosed to classify failures.
//
// # Concurrency
//
// Documents are evaluated in chunks on a bounded worker pool; results are
// identical to sequential evaluation. Admission control bounds concurrent
// searches and their rate (WithMaxConcurrentSearches, WithRateLimit).
package flexquery
