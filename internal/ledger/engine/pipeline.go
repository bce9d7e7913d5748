package engine

import "github.com/smallbiznis/storeledger/internal/ledger/domain"

// Result is the output of one query: the derived, filtered view and its totals.
type Result[T domain.MoneyRecord] struct {
	AsOf   domain.Date
	Items  []domain.Derived[T]
	Totals Totals
}

// Run is the composite query entry point. It always derives first, then
// filters on the derived status, then aggregates the filtered set, all against
// the single asOf date supplied by the caller.
func Run[T domain.MoneyRecord](records []T, c domain.Criteria, asOf domain.Date) Result[T] {
	derived := Project(records, asOf)
	filtered := Filter(derived, c, asOf)
	return Result[T]{
		AsOf:   asOf,
		Items:  filtered,
		Totals: Aggregate(filtered),
	}
}
