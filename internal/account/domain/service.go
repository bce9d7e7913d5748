package domain

import (
	"context"
	"errors"

	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/internal/ledger/engine"
	"github.com/smallbiznis/storeledger/pkg/db/pagination"
)

type CreateAccountRequest struct {
	Scope         Scope
	Description   string
	Category      string
	PaymentMethod string
	DueDate       string
	Amount        string
	Status        string
	Direction     string
	Metadata      map[string]any
}

type ListAccountRequest struct {
	Scope     Scope
	Search    string
	Status    string
	Category  string
	Direction string
	Period    string
	AsOf      string
	PageToken string
	PageSize  int
}

type ListAccountResponse struct {
	pagination.PageInfo
	AsOf     ledgerdomain.Date `json:"as_of"`
	Accounts []AccountView     `json:"accounts"`
	Totals   engine.Totals     `json:"totals"`
}

type GetAccountRequest struct {
	Scope Scope
	ID    string
	AsOf  string
}

type TransitionAccountRequest struct {
	Scope           Scope
	ID              string
	ExpectedVersion int64
}

type Service interface {
	Create(context.Context, CreateAccountRequest) (AccountView, error)
	List(context.Context, ListAccountRequest) (ListAccountResponse, error)
	GetByID(context.Context, GetAccountRequest) (AccountView, error)
	// Settle moves a PENDING account to PAID or RECEIVED depending on its direction.
	Settle(context.Context, TransitionAccountRequest) (AccountView, error)
	Cancel(context.Context, TransitionAccountRequest) (AccountView, error)
	// Snapshot returns every stored account of the caller's tenant for read models.
	Snapshot(ctx context.Context, scope Scope) ([]Account, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidVersion      = errors.New("invalid_expected_version")
	ErrNotFound            = errors.New("account_not_found")
)
