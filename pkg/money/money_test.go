package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int64
		wantErr error
	}{
		{name: "two decimals", raw: "159.90", want: 15990},
		{name: "comma separator", raw: "3450,75", want: 345075},
		{name: "integer", raw: "300", want: 30000},
		{name: "one decimal", raw: "89.9", want: 8990},
		{name: "trailing zeros", raw: "50.000", want: 5000},
		{name: "negative", raw: "-12.34", want: -1234},
		{name: "empty", raw: " ", wantErr: ErrInvalidAmount},
		{name: "garbage", raw: "abc", wantErr: ErrInvalidAmount},
		{name: "three decimals", raw: "1.005", wantErr: ErrTooManyDecimals},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseNonNegativeRejectsNegative(t *testing.T) {
	_, err := ParseNonNegative("-0.01")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "3850.15", Format(385015))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "-3.00", Format(-300))
}

func TestFromDecimalExact(t *testing.T) {
	got, err := FromDecimal(decimal.RequireFromString("0.10").Add(decimal.RequireFromString("0.20")))
	require.NoError(t, err)
	assert.Equal(t, int64(30), got)
}
