package domain

import (
	"context"
	"errors"

	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/ledger/engine"
)

type SummaryRequest struct {
	AsOf string
}

type Window struct {
	From ledgerdomain.Date `json:"from"`
	To   ledgerdomain.Date `json:"to"`
}

// Comparison is a month-to-date figure against the same span of the previous month.
type Comparison struct {
	Current   int64   `json:"current"`
	Previous  int64   `json:"previous"`
	ChangePct float64 `json:"change_pct"`
}

type TodayCash struct {
	Date     ledgerdomain.Date `json:"date"`
	HasEntry bool              `json:"has_entry"`
	Opening  int64             `json:"opening_balance"`
	Closing  int64             `json:"closing_balance"`
	Income   int64             `json:"income"`
	Expense  int64             `json:"expense"`
	Net      int64             `json:"net"`
}

// Summary backs the dashboard cards. Payable and Receivable cover records due
// in the current month; invoices count as receivable.
type Summary struct {
	AsOf       ledgerdomain.Date `json:"as_of"`
	Month      Window            `json:"month"`
	Payable    engine.Totals     `json:"payable"`
	Receivable engine.Totals     `json:"receivable"`
	MRR        int64             `json:"mrr"`
	Received   Comparison        `json:"received"`
	Today      TodayCash         `json:"today"`
}

type Service interface {
	Summary(ctx context.Context, req SummaryRequest) (Summary, error)
}

var ErrInvalidOrganization = errors.New("invalid_organization")
