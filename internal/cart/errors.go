package cart

import (
	"errors"
	"fmt"

	"github.com/safar/cart-service/internal/database"
)

var (
	ErrEmptyBatch      = errors.New("items array is required")
	ErrInvalidName     = errors.New("provide a valid product name")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrUnavailable hides infrastructure failures from callers; the cause
	// is logged.
	ErrUnavailable = errors.New("cart service unavailable")
	ErrTimeout     = errors.New("cart operation timed out")
)

// ValidationError rejects a malformed batch before any storage call.
type ValidationError struct {
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ItemError names the batch item that aborted the transaction and the
// pipeline stage it failed in.
type ItemError struct {
	Index   int
	Product string
	Stage   Stage
	Err     error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Product)
}

func (e *ItemError) Unwrap() error { return e.Err }

// IsDomainError reports whether err is an expected, user-attributable
// failure of the pipeline.
func IsDomainError(err error) bool {
	return errors.Is(err, database.ErrProductNotFound) ||
		errors.Is(err, database.ErrStockNotFound) ||
		errors.Is(err, database.ErrInsufficientStock)
}
