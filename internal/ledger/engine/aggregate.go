package engine

import (
	"strings"

	"github.com/smallbiznis/storeledger/internal/ledger/domain"
)

// Totals are sums of amounts, in minor units, over one derived record set.
type Totals struct {
	Pending    int64 `json:"pending"`
	Paid       int64 `json:"paid"`
	Received   int64 `json:"received"`
	Overdue    int64 `json:"overdue"`
	Canceled   int64 `json:"canceled"`
	Payable    int64 `json:"payable"`
	Receivable int64 `json:"receivable"`
	Total      int64 `json:"total"`
	Count      int   `json:"count"`
}

// Aggregate reduces an already derived and filtered set. It neither re-derives
// nor re-filters.
func Aggregate[T domain.MoneyRecord](items []domain.Derived[T]) Totals {
	var t Totals
	for _, item := range items {
		r := item.Item.LedgerRecord()
		t.Total += r.Amount
		t.Count++

		switch item.Status {
		case domain.StatusPending:
			t.Pending += r.Amount
		case domain.StatusPaid:
			t.Paid += r.Amount
		case domain.StatusReceived:
			t.Received += r.Amount
		case domain.StatusOverdue:
			t.Overdue += r.Amount
		case domain.StatusCanceled:
			t.Canceled += r.Amount
		}

		switch r.Direction {
		case domain.DirectionPayable:
			t.Payable += r.Amount
		case domain.DirectionReceivable:
			t.Receivable += r.Amount
		}
	}
	return t
}

// Settled is the amount already paid or received.
func (t Totals) Settled() int64 { return t.Paid + t.Received }

// Open is the amount still expected (pending plus overdue).
func (t Totals) Open() int64 { return t.Pending + t.Overdue }

// MRR sums plan price times the number of invoices on that plan whose derived
// status is PAID or PENDING. OVERDUE and CANCELED invoices do not count.
// Plan names match case-insensitively.
func MRR[T domain.MoneyRecord](invoices []domain.Derived[T], plans []domain.Plan) int64 {
	active := make(map[string]int64, len(plans))
	for _, item := range invoices {
		if item.Status != domain.StatusPaid && item.Status != domain.StatusPending {
			continue
		}
		active[strings.ToLower(strings.TrimSpace(item.Item.LedgerRecord().PlanName))]++
	}

	var total int64
	for _, plan := range plans {
		total += active[strings.ToLower(strings.TrimSpace(plan.Name))] * plan.Price
	}
	return total
}

// PctChange is the percentage change from previous to current. A zero previous
// value yields 0.
func PctChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
