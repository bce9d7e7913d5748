package domain

import (
	"errors"
	"fmt"
)

var (
	ErrVersionConflict   = errors.New("version_conflict")
	ErrInvalidTransition = errors.New("invalid_transition")
)

// ValidationError rejects a malformed record at ingestion and names the offending field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// LedgerInconsistencyError reports a cash-flow day whose balances do not bridge its
// transactions. Expected is closing-opening; Actual is the signed transaction sum.
type LedgerInconsistencyError struct {
	Date     Date  `json:"date"`
	Expected int64 `json:"expected_delta"`
	Actual   int64 `json:"actual_delta"`
}

func (e *LedgerInconsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistency on %s: balances move by %d, transactions sum to %d",
		e.Date, e.Expected, e.Actual)
}

// Difference is the amount missing from the transactions (Expected-Actual).
func (e *LedgerInconsistencyError) Difference() int64 {
	return e.Expected - e.Actual
}
