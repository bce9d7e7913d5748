package domain

import (
	"errors"
	"strings"

	"github.com/smallbiznis/storeledger/pkg/money"
)

// ParseAmountField converts a request amount into minor units, reporting
// failures against field.
func ParseAmountField(field, raw string) (int64, error) {
	amount, err := money.ParseNonNegative(raw)
	switch {
	case err == nil:
		return amount, nil
	case strings.TrimSpace(raw) == "":
		return 0, NewValidationError(field, "required", field+" is required")
	case errors.Is(err, money.ErrTooManyDecimals):
		return 0, NewValidationError(field, "too_many_decimals", field+" allows at most two decimal places")
	case errors.Is(err, money.ErrNegativeAmount):
		return 0, NewValidationError(field, "negative_amount", field+" must not be negative")
	default:
		return 0, NewValidationError(field, "invalid_amount", field+" must be a decimal number")
	}
}

// ParseDateField parses an optional ISO date; empty input yields the zero Date.
func ParseDateField(field, raw string) (Date, error) {
	if strings.TrimSpace(raw) == "" {
		return Date{}, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return Date{}, NewValidationError(field, "invalid_date", field+" must be YYYY-MM-DD")
	}
	return d, nil
}

// ParseStoredStatus reads the status a client asks to store; empty means PENDING.
// Unknown values are kept as-is so ValidateRecord reports them.
func ParseStoredStatus(raw string) Status {
	if strings.TrimSpace(raw) == "" {
		return StatusPending
	}
	s, _ := ParseStatus(raw)
	return s
}
