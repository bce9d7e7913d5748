package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
)

type TransactionInput struct {
	Time        string `json:"time"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Method      string `json:"method"`
}

// RecordDayRequest stores a new day. An empty OpeningBalance continues from the
// previous stored day; an empty ClosingBalance is computed from the transactions.
type RecordDayRequest struct {
	Date           string
	OpeningBalance string
	ClosingBalance string
	Transactions   []TransactionInput
}

type AppendTransactionRequest struct {
	Date            string
	ExpectedVersion int64
	Transaction     TransactionInput
}

type GetDayRequest struct {
	Date string
}

type ListDaysRequest struct {
	From      string
	To        string
	PageToken string
	PageSize  int
}

type ListDaysResponse struct {
	pagination.PageInfo
	Days        []DayView `json:"days"`
	NetMovement int64     `json:"net_movement"`
}

type VerifyRequest struct {
	From string
	To   string
}

type Service interface {
	RecordDay(context.Context, RecordDayRequest) (DayView, error)
	AppendTransaction(context.Context, AppendTransactionRequest) (DayView, error)
	GetDay(context.Context, GetDayRequest) (DayView, error)
	ListDays(context.Context, ListDaysRequest) (ListDaysResponse, error)
	Verify(context.Context, VerifyRequest) (VerifyReport, error)
	Organizations(context.Context) ([]snowflake.ID, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidVersion      = errors.New("invalid_expected_version")
	ErrNotFound            = errors.New("cashflow_day_not_found")
	ErrDayExists           = errors.New("cashflow_day_exists")
)
