package engine

import (
	"strings"

	"github.com/smallbiznis/storeledger/internal/ledger/domain"
)

// PeriodWindow returns the inclusive due-date window of p relative to today.
// ok is false for PeriodAll.
func PeriodWindow(p domain.Period, today domain.Date) (from, to domain.Date, ok bool) {
	switch p {
	case domain.PeriodThisWeek:
		return today, today.AddDays(7 - int(today.Weekday())), true
	case domain.PeriodThisMonth:
		return today, today.EndOfMonth(), true
	default:
		return domain.Date{}, domain.Date{}, false
	}
}

// Filter keeps the derived items matching every active criterion. Status is
// matched against the derived status carried by each item, never the stored one.
func Filter[T domain.MoneyRecord](items []domain.Derived[T], c domain.Criteria, today domain.Date) []domain.Derived[T] {
	from, to, windowed := PeriodWindow(c.Period, today)
	needle := strings.ToLower(strings.TrimSpace(c.SearchText))

	out := make([]domain.Derived[T], 0, len(items))
	for _, item := range items {
		r := item.Item.LedgerRecord()
		if c.Status != "" && item.Status != c.Status {
			continue
		}
		if c.Category != "" && r.Category != c.Category {
			continue
		}
		if c.Direction != "" && r.Direction != c.Direction {
			continue
		}
		if windowed && !r.DueDate.Between(from, to) {
			continue
		}
		if needle != "" && !matchesSearch(r, needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch(r domain.Record, needle string) bool {
	fields := []string{r.Description, r.Category, r.PaymentMethod}
	if r.Kind == domain.KindInvoice {
		fields = append(fields, r.ClientName, r.PlanName, r.InvoiceNumber)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
