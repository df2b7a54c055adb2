package leandb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a required record is absent.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidIdentifier reports an identifier string that cannot be parsed
	// into the store's native representation.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrContractViolation reports a filter, projection or cursor that references
	// a field the record does not declare, or a read of a projected-away field.
	ErrContractViolation = errors.New("contract violation")
)

// InvalidIdentifierError carries the raw value and the underlying parse failure.
// It matches both ErrInvalidIdentifier and the parse error via errors.Is.
type InvalidIdentifierError struct {
	Value string
	Err   error
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier '%s': %v", e.Value, e.Err)
}

func (e *InvalidIdentifierError) Unwrap() []error {
	return []error{ErrInvalidIdentifier, e.Err}
}

func contractViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}
