// Package condition defines the atomic search predicate of a query.
//
// A Condition tests one field of a document with a named operator:
//
//	c := condition.New("age", "range", "10", "20").
//	    WithBoost(2).
//	    WithMissingValue(condition.Ignore())
//
//	if err := c.Validate(nil); err != nil { // nil selects operator.Default()
//	    // *condition.ValidationError
//	}
//
// # Missing Values
//
// MissingValue decides what happens when a document has no value for the
// tested field:
//
//   - ThrowError (default): evaluation fails with *MissingFieldError
//   - Ignore: the condition does not match and contributes nothing
//   - UseDefault(v): the field is evaluated as if it held v
//
// # Errors
//
// ValidationError, MissingFieldError and OperatorUnsupportedError identify
// the offending condition by its depth-first index in a query, its field
// and its operator. They match ErrValidation, ErrMissingField and
// ErrOperatorUnsupported via errors.Is.
package condition
