package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 31)

	assert.Equal(t, "2024-02-01", d.AddDays(1).String())
	assert.Equal(t, "2024-02-29", NewDate(2024, time.February, 10).EndOfMonth().String())
	assert.Equal(t, "2023-02-28", NewDate(2023, time.February, 10).EndOfMonth().String())
	assert.Equal(t, "2024-12-31", NewDate(2024, time.December, 1).EndOfMonth().String())
	assert.Equal(t, "2024-01-01", d.StartOfMonth().String())
	assert.True(t, d.Between(d, d))
	assert.False(t, d.AddDays(1).Between(d.StartOfMonth(), d))
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	late := time.Date(2024, time.January, 15, 23, 59, 59, 0, loc)
	early := time.Date(2024, time.January, 15, 0, 0, 1, 0, loc)

	assert.Equal(t, DateOf(late), DateOf(early))
	assert.Equal(t, "2024-01-15", DateOf(late).String())
}

func TestDateJSONRoundTrip(t *testing.T) {
	var payload struct {
		Due Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-03-05"}`), &payload))
	assert.Equal(t, NewDate(2024, time.March, 5), payload.Due)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-03-05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"due":"05/03/2024"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-02", d.String())

	require.NoError(t, d.Scan("2024-05-03 00:00:00+00:00"))
	assert.Equal(t, "2024-05-03", d.String())

	require.NoError(t, d.Scan([]byte("2024-05-04")))
	assert.Equal(t, "2024-05-04", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestValidateRecord(t *testing.T) {
	valid := Record{
		Kind:        KindAccount,
		Description: "Aluguel",
		DueDate:     NewDate(2024, time.January, 10),
		Amount:      150000,
		Status:      StatusPending,
		Direction:   DirectionPayable,
	}
	require.NoError(t, ValidateRecord(valid))

	cases := []struct {
		name   string
		mutate func(r *Record)
		field  string
		code   string
	}{
		{"missing due date", func(r *Record) { r.DueDate = Date{} }, "due_date", "required"},
		{"negative amount", func(r *Record) { r.Amount = -1 }, "amount", "negative_amount"},
		{"unknown status", func(r *Record) { r.Status = "LATE" }, "status", "unknown_status"},
		{"stored overdue", func(r *Record) { r.Status = StatusOverdue }, "status", "derived_status"},
		{"unknown direction", func(r *Record) { r.Direction = "SIDEWAYS" }, "direction", "unknown_direction"},
		{"payable received", func(r *Record) { r.Status = StatusReceived }, "status", "status_direction_mismatch"},
		{"missing description", func(r *Record) { r.Description = " " }, "description", "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			err := ValidateRecord(r)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			assert.Equal(t, tc.code, vErr.Code)
		})
	}
}

func TestValidateInvoiceRecord(t *testing.T) {
	inv := Record{
		Kind:        KindInvoice,
		Description: "Plano Basico",
		ClientName:  "Loja Centro",
		IssueDate:   NewDate(2024, time.January, 1),
		DueDate:     NewDate(2024, time.January, 10),
		Status:      StatusPaid,
		Direction:   DirectionReceivable,
	}
	require.NoError(t, ValidateRecord(inv))

	late := inv
	late.IssueDate = NewDate(2024, time.January, 11)
	var vErr *ValidationError
	require.ErrorAs(t, ValidateRecord(late), &vErr)
	assert.Equal(t, "invoice_date", vErr.Field)

	received := inv
	received.Status = StatusReceived
	require.ErrorAs(t, ValidateRecord(received), &vErr)
	assert.Equal(t, "status_direction_mismatch", vErr.Code)
}

func TestValidateTransaction(t *testing.T) {
	txn := Transaction{Time: "09:15", Description: "Venda", Amount: 100, Type: TransactionIncome}
	require.NoError(t, ValidateTransaction(txn))

	bad := txn
	bad.Time = "25:00"
	assert.True(t, IsValidationError(ValidateTransaction(bad)))

	bad = txn
	bad.Type = "REFUND"
	assert.True(t, IsValidationError(ValidateTransaction(bad)))

	bad = txn
	bad.Amount = -5
	assert.True(t, IsValidationError(ValidateTransaction(bad)))
}

func TestNewCriteriaDegradesUnknownValues(t *testing.T) {
	c := NewCriteria("  aluguel ", "whatever", "ALL", "up", "this_week")

	assert.Equal(t, "aluguel", c.SearchText)
	assert.Equal(t, Status(""), c.Status)
	assert.Equal(t, "", c.Category)
	assert.Equal(t, Direction(""), c.Direction)
	assert.Equal(t, PeriodThisWeek, c.Period)

	c = NewCriteria("", "overdue", "Vendas", "receivable", "")
	assert.Equal(t, StatusOverdue, c.Status)
	assert.Equal(t, "Vendas", c.Category)
	assert.Equal(t, DirectionReceivable, c.Direction)
	assert.Equal(t, PeriodAll, c.Period)
}

func TestParseAmountField(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		code string
	}{
		{"159.90", 15990, ""},
		{"159,9", 15990, ""},
		{"0", 0, ""},
		{"", 0, "required"},
		{"1.999", 0, "too_many_decimals"},
		{"-1", 0, "negative_amount"},
		{"abc", 0, "invalid_amount"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseAmountField("amount", tc.raw)
			if tc.code == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "amount", vErr.Field)
			assert.Equal(t, tc.code, vErr.Code)
		})
	}
}

func TestParseStoredStatusDefaultsToPending(t *testing.T) {
	assert.Equal(t, StatusPending, ParseStoredStatus(" "))
	assert.Equal(t, StatusPaid, ParseStoredStatus("paid"))
	assert.Equal(t, Status("LOST"), ParseStoredStatus("lost"))
}
