// Package seed loads the demo ledger used by the UI and local development.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Accounts accountdomain.Service
	Invoices invoicedomain.Service
	Cashflow cashflowdomain.Service
}

// Seeder writes fixtures through the services so they pass the same
// validation and numbering as API traffic.
type Seeder struct {
	log      *zap.Logger
	accounts accountdomain.Service
	invoices invoicedomain.Service
	cashflow cashflowdomain.Service
}

// Report counts what a run created; skipped sections already had data.
type Report struct {
	PlatformAccounts int
	TenantAccounts   int
	Invoices         int
	CashflowDays     int
}

func New(p Params) *Seeder {
	return &Seeder{
		log:      p.Log.Named("seed"),
		accounts: p.Accounts,
		invoices: p.Invoices,
		cashflow: p.Cashflow,
	}
}

// Run is idempotent per section: a section with existing rows is left alone.
func (s *Seeder) Run(ctx context.Context, orgID snowflake.ID, withPlatform bool) (Report, error) {
	if orgID == 0 {
		return Report{}, orgcontext.ErrMissingOrganization
	}
	ctx = orgcontext.WithOrgID(ctx, orgID)

	var report Report
	var err error

	if withPlatform {
		report.PlatformAccounts, err = s.seedAccounts(ctx, accountdomain.ScopePlatform, platformAccounts)
		if err != nil {
			return report, err
		}
	}
	report.TenantAccounts, err = s.seedAccounts(ctx, accountdomain.ScopeTenant, tenantAccounts)
	if err != nil {
		return report, err
	}
	report.Invoices, err = s.seedInvoices(ctx)
	if err != nil {
		return report, err
	}
	report.CashflowDays, err = s.seedCashflow(ctx)
	if err != nil {
		return report, err
	}

	s.log.Info("seed completed",
		zap.String("org_id", orgID.String()),
		zap.Int("platform_accounts", report.PlatformAccounts),
		zap.Int("tenant_accounts", report.TenantAccounts),
		zap.Int("invoices", report.Invoices),
		zap.Int("cashflow_days", report.CashflowDays),
	)
	return report, nil
}

func (s *Seeder) seedAccounts(ctx context.Context, scope accountdomain.Scope, fixtures []accountdomain.CreateAccountRequest) (int, error) {
	existing, err := s.accounts.Snapshot(ctx, scope)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, req := range fixtures {
		req.Scope = scope
		req.Metadata = map[string]any{"source": "seed"}
		if _, err := s.accounts.Create(ctx, req); err != nil {
			return 0, err
		}
	}
	return len(fixtures), nil
}

func (s *Seeder) seedInvoices(ctx context.Context) (int, error) {
	existing, err := s.invoices.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, req := range invoices {
		req.Metadata = map[string]any{"source": "seed"}
		if _, err := s.invoices.Create(ctx, req); err != nil {
			return 0, err
		}
	}
	return len(invoices), nil
}

func (s *Seeder) seedCashflow(ctx context.Context) (int, error) {
	created := 0
	for _, req := range cashflowDays {
		_, err := s.cashflow.RecordDay(ctx, req)
		switch {
		case err == nil:
			created++
		case errors.Is(err, cashflowdomain.ErrDayExists):
		default:
			return created, err
		}
	}
	return created, nil
}
