package flexquery

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/flexquery/condition"
	"github.com/hupe1980/flexquery/query"
	"github.com/hupe1980/flexquery/resource"
	"github.com/panjf2000/ants/v2"
)

var (
	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("engine is closed")

	// ErrNotFound is returned by SearchBuilder.First when nothing matches.
	ErrNotFound = errors.New("no matching document")

	// ErrInvalidPagination matches validation errors caused by a
	// non-positive limit or page, or a limit above the maximum.
	ErrInvalidPagination = query.ErrInvalidPagination

	// ErrRejected is returned when admission control refuses a search.
	ErrRejected = resource.ErrRejected

	// ErrValidation matches every *ValidationError.
	ErrValidation = condition.ErrValidation

	// ErrMissingField matches every *MissingFieldError.
	ErrMissingField = condition.ErrMissingField

	// ErrOperatorUnsupported matches every *OperatorUnsupportedError.
	ErrOperatorUnsupported = condition.ErrOperatorUnsupported
)

type (
	// ValidationError reports a malformed condition or query.
	ValidationError = condition.ValidationError

	// MissingFieldError reports a document lacking a field tested under
	// the ThrowError policy.
	MissingFieldError = condition.MissingFieldError

	// OperatorUnsupportedError reports an operator that cannot be applied
	// to a field's type or stored value.
	OperatorUnsupportedError = condition.OperatorUnsupportedError
)

// ErrSearchCanceled indicates that a search was abandoned because its
// context ended. No partial result is returned.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrSearchCanceled struct {
	QueryID string
	cause   error
}

func (e *ErrSearchCanceled) Error() string {
	return fmt.Sprintf("search %s canceled: %v", e.QueryID, e.cause)
}

func (e *ErrSearchCanceled) Unwrap() error { return e.cause }

func translateError(queryID string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ants.ErrPoolClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ErrSearchCanceled{QueryID: queryID, cause: err}
	}

	return err
}
