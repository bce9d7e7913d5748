// Package money converts between decimal text and int64 minor units.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for every amount.
const Scale = 2

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrTooManyDecimals = errors.New("too_many_decimals")
	ErrNegativeAmount  = errors.New("negative_amount")
)

var hundred = decimal.NewFromInt(100)

// Parse converts a decimal string such as "159.90" into minor units (15990).
// Both "." and "," are accepted as decimal separator; thousands separators are not.
func Parse(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, ErrInvalidAmount
	}
	value = strings.Replace(value, ",", ".", 1)

	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// ParseNonNegative is Parse restricted to values >= 0.
func ParseNonNegative(raw string) (int64, error) {
	amount, err := Parse(raw)
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	return amount, nil
}

// FromDecimal converts d to minor units without rounding.
func FromDecimal(d decimal.Decimal) (int64, error) {
	minor := d.Mul(hundred)
	if !minor.IsInteger() {
		return 0, ErrTooManyDecimals
	}
	return minor.IntPart(), nil
}

// ToDecimal converts minor units back to a decimal value.
func ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// Format renders minor units as a plain decimal string ("3850.15").
func Format(minor int64) string {
	return ToDecimal(minor).StringFixed(Scale)
}
