package domain

import (
	"context"
	"errors"

	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/ledger/engine"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	ClientName    string
	PlanName      string
	PlanPrice     string
	Description   string
	Category      string
	PaymentMethod string
	InvoiceDate   string
	DueDate       string
	Amount        string
	Status        string
	Metadata      map[string]any
}

type ListInvoiceRequest struct {
	Search    string
	Status    string
	Category  string
	Period    string
	AsOf      string
	PageToken string
	PageSize  int
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	AsOf     ledgerdomain.Date `json:"as_of"`
	Invoices []InvoiceView     `json:"invoices"`
	Totals   engine.Totals     `json:"totals"`
}

type GetInvoiceRequest struct {
	ID   string
	AsOf string
}

type TransitionInvoiceRequest struct {
	ID              string
	ExpectedVersion int64
}

type MRRRequest struct {
	AsOf string
}

type MRRResponse struct {
	AsOf  ledgerdomain.Date `json:"as_of"`
	MRR   int64             `json:"mrr"`
	Plans []PlanRevenue     `json:"plans"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (InvoiceView, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (InvoiceView, error)
	Pay(context.Context, TransitionInvoiceRequest) (InvoiceView, error)
	Cancel(context.Context, TransitionInvoiceRequest) (InvoiceView, error)
	MRR(context.Context, MRRRequest) (MRRResponse, error)
	Snapshot(context.Context) ([]Invoice, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidVersion      = errors.New("invalid_expected_version")
	ErrNotFound            = errors.New("invoice_not_found")
)
