package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors allow callers to handle specific ledger failures
// programmatically.
var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("operation conflicts with current state")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("data store unavailable")
)

// LedgerError wraps a sentinel error with human-readable details.
type LedgerError struct {
	Err     error
	Details string
}

func (e *LedgerError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func notFoundErr(format string, args ...any) error {
	return &LedgerError{Err: ErrNotFound, Details: fmt.Sprintf(format, args...)}
}

func conflictErr(format string, args ...any) error {
	return &LedgerError{Err: ErrConflict, Details: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...any) error {
	return &LedgerError{Err: ErrValidation, Details: fmt.Sprintf(format, args...)}
}

// storeErr translates a low-level store error into a ledger error kind.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &LedgerError{Err: ErrConflict, Details: "duplicate key"}
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
		return err
	default:
		return &LedgerError{Err: ErrStoreUnavailable, Details: err.Error()}
	}
}
