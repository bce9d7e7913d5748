package engine

import "github.com/smallbiznis/storeledger/internal/ledger/domain"

// NetMovement is the signed sum of a day's transactions (INCOME +, EXPENSE -).
func NetMovement(day domain.Day) int64 {
	return SignedSum(day.Transactions)
}

// SignedSum sums transactions in order.
func SignedSum(txns []domain.Transaction) int64 {
	var net int64
	for _, txn := range txns {
		net += txn.Signed()
	}
	return net
}

// ClosingFor is the only closing balance consistent with opening and txns.
func ClosingFor(opening int64, txns []domain.Transaction) int64 {
	return opening + SignedSum(txns)
}

// ValidateDay returns a *domain.LedgerInconsistencyError when the day's balances
// do not bridge its transactions. It reports and never corrects.
func ValidateDay(day domain.Day) error {
	expected := day.ClosingBalance - day.OpeningBalance
	actual := NetMovement(day)
	if expected != actual {
		return &domain.LedgerInconsistencyError{
			Date:     day.Date,
			Expected: expected,
			Actual:   actual,
		}
	}
	return nil
}

// DaySummary is the per-day figure shown on the cash-flow screen.
type DaySummary struct {
	Date           domain.Date `json:"date"`
	OpeningBalance int64       `json:"opening_balance"`
	ClosingBalance int64       `json:"closing_balance"`
	Income         int64       `json:"income"`
	Expense        int64       `json:"expense"`
	Net            int64       `json:"net"`
	Transactions   int         `json:"transactions"`
}

// Summarize splits a day's movement into income and expense.
func Summarize(day domain.Day) DaySummary {
	s := DaySummary{
		Date:           day.Date,
		OpeningBalance: day.OpeningBalance,
		ClosingBalance: day.ClosingBalance,
		Transactions:   len(day.Transactions),
	}
	for _, txn := range day.Transactions {
		switch txn.Type {
		case domain.TransactionIncome:
			s.Income += txn.Amount
		case domain.TransactionExpense:
			s.Expense += txn.Amount
		}
	}
	s.Net = s.Income - s.Expense
	return s
}

// PeriodMovement sums the net movement of several days.
func PeriodMovement(days []domain.Day) int64 {
	var net int64
	for _, day := range days {
		net += NetMovement(day)
	}
	return net
}
