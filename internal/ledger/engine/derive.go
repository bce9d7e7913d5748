// Package engine is the pure ledger core: status derivation, filtering,
// aggregation and cash-flow day checks. Nothing here performs I/O or reads the clock.
package engine

import "github.com/smallbiznis/storeledger/internal/ledger/domain"

// DeriveStatus returns OVERDUE for a PENDING record whose due date is strictly
// before asOf; every other record keeps its stored status.
func DeriveStatus(r domain.Record, asOf domain.Date) domain.Status {
	if r.Status == domain.StatusPending && r.DueDate.Before(asOf) {
		return domain.StatusOverdue
	}
	return r.Status
}

// Derive applies DeriveStatus to a single item.
func Derive[T domain.MoneyRecord](item T, asOf domain.Date) domain.Derived[T] {
	return domain.Derived[T]{Item: item, Status: DeriveStatus(item.LedgerRecord(), asOf)}
}

// Project derives every item for one as-of date. The input slice is not modified.
func Project[T domain.MoneyRecord](items []T, asOf domain.Date) []domain.Derived[T] {
	out := make([]domain.Derived[T], 0, len(items))
	for _, item := range items {
		out = append(out, Derive(item, asOf))
	}
	return out
}
