package domain

import "strings"

// TransactionType is the sign of a cash-flow transaction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

func (t TransactionType) IsKnown() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// ParseTransactionType normalizes user input; ok is false for unknown values.
func ParseTransactionType(raw string) (TransactionType, bool) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t.IsKnown()
}

// Transaction is one movement of a cash-flow day. Amount is never negative;
// Type carries the sign.
type Transaction struct {
	Time        string
	Description string
	Amount      int64
	Type        TransactionType
	Method      string
}

// Signed returns the amount with INCOME positive and EXPENSE negative.
func (t Transaction) Signed() int64 {
	if t.Type == TransactionExpense {
		return -t.Amount
	}
	return t.Amount
}

// Day is a cash-flow day ledger. Transactions are kept in chronological order.
type Day struct {
	Date           Date
	OpeningBalance int64
	ClosingBalance int64
	Transactions   []Transaction
}
