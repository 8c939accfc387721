package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when user_id or items is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidItems is returned when items is not a non-empty list of valid line items.
	ErrInvalidItems = errors.New("invalid items")
	// ErrInvalidField is returned when an optional field has the wrong type.
	ErrInvalidField = errors.New("invalid field")
)

// MissingFieldError names the required field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// InvalidItemsError reports the first offending item. Index is -1 when the
// whole sequence is at fault.
type InvalidItemsError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidItemsError) Error() string {
	if e.Index < 0 {
		return e.Reason
	}
	return fmt.Sprintf("items[%d]: %s", e.Index, e.Reason)
}

func (e *InvalidItemsError) Unwrap() error { return ErrInvalidItems }

// InvalidFieldError reports an optional field with an unusable value.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InvalidFieldError) Unwrap() error { return ErrInvalidField }
