package condition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/flexquery/schema"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrMissingField matches every *MissingFieldError.
	ErrMissingField = errors.New("missing field")
	// ErrOperatorUnsupported matches every *OperatorUnsupportedError.
	ErrOperatorUnsupported = errors.New("operator unsupported")
)

// NoIndex marks errors that do not belong to a positioned condition.
const NoIndex = -1

func describe(b *strings.Builder, index int, field, op string) {
	if index >= 0 {
		fmt.Fprintf(b, "condition %d", index)
	} else {
		b.WriteString("condition")
	}
	if field != "" || op != "" {
		fmt.Fprintf(b, " (field %q, operator %q)", field, op)
	}
}

// ValidationError reports a malformed condition or query. It is detected
// before any document is evaluated.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type ValidationError struct {
	// Index is the depth-first position of the condition in its query,
	// or NoIndex.
	Index    int
	Field    string
	Operator string
	Reason   string
	cause    error
}

// NewValidationError creates a ValidationError wrapping cause.
func NewValidationError(index int, field, op string, cause error) *ValidationError {
	return &ValidationError{Index: index, Field: field, Operator: op, Reason: cause.Error(), cause: cause}
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed: ")
	if e.Index >= 0 || e.Field != "" || e.Operator != "" {
		describe(&b, e.Index, e.Field, e.Operator)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// At returns a copy of the error positioned at index.
func (e *ValidationError) At(index int) *ValidationError {
	c := *e
	c.Index = index
	return &c
}

// MissingFieldError is raised during evaluation when a document lacks the
// field of a condition whose policy is ThrowError. It aborts the query.
type MissingFieldError struct {
	Index    int
	Field    string
	Operator string
	// DocumentID identifies the first document found without the field.
	DocumentID string
}

func (e *MissingFieldError) Error() string {
	var b strings.Builder
	b.WriteString("missing field: ")
	describe(&b, e.Index, e.Field, e.Operator)
	if e.DocumentID != "" {
		fmt.Fprintf(&b, ": document %q has no value", e.DocumentID)
	}
	return b.String()
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// OperatorUnsupportedError reports an operator that is registered but
// cannot be applied to the field's declared type or stored value.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type OperatorUnsupportedError struct {
	Index      int
	Field      string
	Operator   string
	FieldType  schema.FieldType
	DocumentID string
	cause      error
}

// NewOperatorUnsupportedError creates an OperatorUnsupportedError wrapping cause.
func NewOperatorUnsupportedError(index int, field, op string, ft schema.FieldType, cause error) *OperatorUnsupportedError {
	return &OperatorUnsupportedError{Index: index, Field: field, Operator: op, FieldType: ft, cause: cause}
}

func (e *OperatorUnsupportedError) Error() string {
	var b strings.Builder
	b.WriteString("operator unsupported: ")
	describe(&b, e.Index, e.Field, e.Operator)
	fmt.Fprintf(&b, " on %s field", e.FieldType)
	if e.DocumentID != "" {
		fmt.Fprintf(&b, " (document %q)", e.DocumentID)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *OperatorUnsupportedError) Unwrap() error { return e.cause }

// Is reports whether target is ErrOperatorUnsupported.
func (e *OperatorUnsupportedError) Is(target error) bool { return target == ErrOperatorUnsupported }
